package export

import "encoding/binary"

// Depth pixels map to display gray with pixel*(-255/5000)+255: zero depth
// renders white, five meters and beyond render black.
const (
	DepthScaleAlpha = -255.0 / 5000.0
	DepthScaleBeta  = 255.0
)

// Infrared intensity halves into the 8-bit range.
const (
	InfraredScaleAlpha = 0.5
	InfraredScaleBeta  = 0.0
)

// Rescale16To8 applies the affine mapping v*alpha+beta to every 16-bit
// little-endian sample of buf, saturating the result to [0,255]. The input
// must hold an even number of bytes.
func Rescale16To8(buf []byte, alpha, beta float64) []byte {
	out := make([]byte, len(buf)/2)
	for i := range out {
		v := float64(binary.LittleEndian.Uint16(buf[i*2:])) * alpha + beta
		switch {
		case v <= 0:
			out[i] = 0
		case v >= 255:
			out[i] = 255
		default:
			out[i] = byte(v + 0.5)
		}
	}
	return out
}
