package transform

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mkvtools/mkv2image/internal/mkv"
)

// identityCalibration maps the depth camera onto an identically sized,
// identically parameterized color camera, so the transform must reproduce
// the input raster.
func identityCalibration(w, h int) *mkv.Calibration {
	in := mkv.Intrinsics{Fx: 100, Fy: 100, Cx: float64(w)/2 - 0.5, Cy: float64(h)/2 - 0.5}
	return &mkv.Calibration{
		Depth: mkv.Camera{Width: w, Height: h, Intrinsics: in},
		Color: mkv.Camera{Width: w, Height: h, Intrinsics: in},
		DepthToColor: mkv.Extrinsics{
			Rotation: [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1},
		},
	}
}

func raster(w, h int, fill func(x, y int) uint16) []byte {
	buf := make([]byte, w*h*2)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			binary.LittleEndian.PutUint16(buf[(y*w+x)*2:], fill(x, y))
		}
	}
	return buf
}

func TestDepthToColorIdentity(t *testing.T) {
	const w, h = 6, 4
	in := raster(w, h, func(x, y int) uint16 { return uint16(1000 + x*10 + y) })

	out := DepthToColor(in, identityCalibration(w, h))
	require.NotNil(t, out)
	require.Equal(t, in, out)
}

func TestDepthToColorSkipsInvalidPixels(t *testing.T) {
	const w, h = 4, 4
	in := raster(w, h, func(x, y int) uint16 {
		if x == 0 {
			return 0 // invalid depth, must stay empty in the output
		}
		return 2000
	})

	out := DepthToColor(in, identityCalibration(w, h))
	require.NotNil(t, out)
	for y := 0; y < h; y++ {
		got := binary.LittleEndian.Uint16(out[(y*w)*2:])
		require.Zero(t, got, "row %d col 0 should stay unmapped", y)
	}
}

func TestDepthToColorReturnsNil(t *testing.T) {
	const w, h = 4, 4
	valid := raster(w, h, func(int, int) uint16 { return 1500 })

	tests := []struct {
		name  string
		depth []byte
		calib *mkv.Calibration
	}{
		{"nil calibration", valid, nil},
		{"incomplete calibration", valid, &mkv.Calibration{}},
		{"raster size mismatch", valid[:10], identityCalibration(w, h)},
		{"zero rotation", valid, func() *mkv.Calibration {
			c := identityCalibration(w, h)
			c.DepthToColor.Rotation = [9]float64{}
			return c
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Nil(t, DepthToColor(tt.depth, tt.calib))
		})
	}
}

func TestDepthToColorTranslationShift(t *testing.T) {
	const w, h = 8, 8
	calib := identityCalibration(w, h)
	// Shift the color camera 2000mm along X: a point at depth 2000 lands
	// one focal-length-scaled pixel offset of fx*t/z = 100*2000/2000 = 100
	// pixels away, i.e. outside the 8x8 color image, so nothing maps.
	calib.DepthToColor.Translation = [3]float64{2000, 0, 0}

	in := raster(w, h, func(int, int) uint16 { return 2000 })
	out := DepthToColor(in, calib)
	require.NotNil(t, out)
	for i := 0; i < w*h; i++ {
		require.Zero(t, binary.LittleEndian.Uint16(out[i*2:]))
	}
}

func TestDepthToColorNearestWins(t *testing.T) {
	// Two depth pixels projecting onto the same color pixel: keep the nearer.
	// Depth pixels sit at +-0.5 of the principal point; the narrow color
	// focal length squeezes both onto color pixel 0.
	calib := &mkv.Calibration{
		Depth: mkv.Camera{Width: 2, Height: 1, Intrinsics: mkv.Intrinsics{Fx: 1, Fy: 1, Cx: 0.5, Cy: 0}},
		Color: mkv.Camera{Width: 1, Height: 1, Intrinsics: mkv.Intrinsics{Fx: 0.2, Fy: 1, Cx: 0.1, Cy: 0}},
		DepthToColor: mkv.Extrinsics{
			Rotation: [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1},
		},
	}

	in := make([]byte, 4)
	binary.LittleEndian.PutUint16(in[0:], 3000)
	binary.LittleEndian.PutUint16(in[2:], 1200)

	out := DepthToColor(in, calib)
	require.NotNil(t, out)
	require.Equal(t, uint16(1200), binary.LittleEndian.Uint16(out))
}
