// Package transform remaps depth rasters between the device's camera
// coordinate frames using the calibration recorded with the session.
package transform

import (
	"encoding/binary"
	"math"

	"github.com/mkvtools/mkv2image/internal/mkv"
)

// DepthToColor reprojects a depth raster into the color camera's frame.
// Every valid depth pixel is unprojected with the depth camera intrinsics,
// moved through the depth-to-color extrinsics and projected into a
// color-sized 16-bit raster; when several depth pixels land on the same
// color pixel the nearest one wins.
//
// Returns nil when the calibration is missing or incomplete, or when the
// raster does not match the depth camera geometry. Callers treat a nil
// result as "nothing to export for this frame", not as an error.
func DepthToColor(depth []byte, calib *mkv.Calibration) []byte {
	if !calib.Complete() {
		return nil
	}

	dw, dh := calib.Depth.Width, calib.Depth.Height
	cw, ch := calib.Color.Width, calib.Color.Height
	if len(depth) != dw*dh*2 {
		return nil
	}

	di := calib.Depth.Intrinsics
	ci := calib.Color.Intrinsics
	r := calib.DepthToColor.Rotation
	t := calib.DepthToColor.Translation

	out := make([]byte, cw*ch*2)
	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			z := binary.LittleEndian.Uint16(depth[(y*dw+x)*2:])
			if z == 0 {
				continue
			}

			// Unproject into depth camera space (millimeters).
			zd := float64(z)
			xd := (float64(x) - di.Cx) / di.Fx * zd
			yd := (float64(y) - di.Cy) / di.Fy * zd

			// Move into color camera space.
			xc := r[0]*xd + r[1]*yd + r[2]*zd + t[0]
			yc := r[3]*xd + r[4]*yd + r[5]*zd + t[1]
			zc := r[6]*xd + r[7]*yd + r[8]*zd + t[2]
			if zc <= 0 {
				continue
			}

			// Project onto the color image plane.
			u := int(math.Round(xc/zc*ci.Fx + ci.Cx))
			v := int(math.Round(yc/zc*ci.Fy + ci.Cy))
			if u < 0 || u >= cw || v < 0 || v >= ch {
				continue
			}

			idx := (v*cw + u) * 2
			prev := binary.LittleEndian.Uint16(out[idx:])
			depthMM := uint16(math.Round(zc))
			if prev == 0 || depthMM < prev {
				binary.LittleEndian.PutUint16(out[idx:], depthMM)
			}
		}
	}
	return out
}
