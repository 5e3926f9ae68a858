package export

import (
	"fmt"
	"os"

	"gocv.io/x/gocv"
)

// Entry is one queued sub-image: the pixel payload and its device timestamp
// in microseconds. Immutable once enqueued; the popping exporter owns it
// exclusively until written.
type Entry struct {
	Buf       []byte
	Timestamp int64
}

// WriteStrategy encodes one dequeued entry to a file. One implementation
// exists per modality; the Exporter itself is modality-agnostic.
type WriteStrategy interface {
	// Ext returns the filename extension, including the dot.
	Ext() string
	// Write encodes buf and writes it to path in a single call.
	Write(path string, buf []byte) error
}

// ColorStrategy writes already-compressed MJPEG payloads verbatim.
type ColorStrategy struct{}

func (ColorStrategy) Ext() string { return ".jpg" }

func (ColorStrategy) Write(path string, buf []byte) error {
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("write color image: %w", err)
	}
	return nil
}

// DepthStrategy writes 16-bit depth rasters as PNG. With Scaling set the
// raster is first rescaled to 8-bit gray; otherwise the raw 16-bit values
// are preserved.
type DepthStrategy struct {
	Width   int
	Height  int
	Scaling bool
}

func (DepthStrategy) Ext() string { return ".png" }

func (s DepthStrategy) Write(path string, buf []byte) error {
	if len(buf) != s.Width*s.Height*2 {
		return fmt.Errorf("depth raster is %d bytes, want %d (%dx%d 16-bit)",
			len(buf), s.Width*s.Height*2, s.Width, s.Height)
	}

	var (
		mat gocv.Mat
		err error
	)
	if s.Scaling {
		mat, err = gocv.NewMatFromBytes(s.Height, s.Width, gocv.MatTypeCV8UC1,
			Rescale16To8(buf, DepthScaleAlpha, DepthScaleBeta))
	} else {
		mat, err = gocv.NewMatFromBytes(s.Height, s.Width, gocv.MatTypeCV16UC1, buf)
	}
	if err != nil {
		return fmt.Errorf("build depth mat: %w", err)
	}
	defer mat.Close()

	if ok := gocv.IMWrite(path, mat); !ok {
		return fmt.Errorf("encode depth png %q", path)
	}
	return nil
}

// InfraredStrategy writes 16-bit infrared rasters as 8-bit JPEG at the
// configured quality. Infrared is always rescaled.
type InfraredStrategy struct {
	Width   int
	Height  int
	Quality int
}

func (InfraredStrategy) Ext() string { return ".jpg" }

func (s InfraredStrategy) Write(path string, buf []byte) error {
	if len(buf) != s.Width*s.Height*2 {
		return fmt.Errorf("infrared raster is %d bytes, want %d (%dx%d 16-bit)",
			len(buf), s.Width*s.Height*2, s.Width, s.Height)
	}

	mat, err := gocv.NewMatFromBytes(s.Height, s.Width, gocv.MatTypeCV8UC1,
		Rescale16To8(buf, InfraredScaleAlpha, InfraredScaleBeta))
	if err != nil {
		return fmt.Errorf("build infrared mat: %w", err)
	}
	defer mat.Close()

	params := []int{gocv.IMWriteJpegQuality, s.Quality}
	if ok := gocv.IMWriteWithParams(path, mat, params); !ok {
		return fmt.Errorf("encode infrared jpeg %q", path)
	}
	return nil
}
