package pipeline

import (
	"gocv.io/x/gocv"

	"github.com/mkvtools/mkv2image/internal/export"
	"github.com/mkvtools/mkv2image/internal/mkv"
)

const quitKey = 'q'

// previewer owns one named window per displayed modality, created lazily on
// first show. Preview runs on the control goroutine only.
type previewer struct {
	windows map[string]*gocv.Window
}

func newPreviewer() *previewer {
	return &previewer{windows: make(map[string]*gocv.Window)}
}

func (pv *previewer) show(name string, mat gocv.Mat) {
	w, ok := pv.windows[name]
	if !ok {
		w = gocv.NewWindow(name)
		pv.windows[name] = w
	}
	w.IMShow(mat)
}

// poll services the window event loop for about a millisecond and returns
// the pressed key, or -1 when none.
func (pv *previewer) poll() int {
	for _, w := range pv.windows {
		return w.WaitKey(1)
	}
	return -1
}

func (pv *previewer) close() {
	for _, w := range pv.windows {
		w.Close()
	}
	pv.windows = nil
}

// renderPreview shows the frame's sub-images and reports whether the quit
// key was pressed. Displayed images are always scaled to 8-bit regardless of
// the scaling option; with the transform enabled the remapped depth is shown
// in place of the raw one.
func (p *Pipeline) renderPreview(frame *mkv.Frame, transformed []byte) bool {
	if p.preview == nil {
		p.preview = newPreviewer()
	}

	if sub := frame.Color; sub != nil {
		if mat, err := gocv.IMDecode(sub.Data, gocv.IMReadColor); err == nil {
			if !mat.Empty() {
				p.preview.show("color", mat)
			}
			mat.Close()
		}
	}

	if p.cfg.Transform {
		if transformed != nil {
			if calib := p.source.Calibration(); calib != nil {
				p.showGray("transformed depth", transformed,
					calib.Color.Width, calib.Color.Height,
					export.DepthScaleAlpha, export.DepthScaleBeta)
			}
		}
	} else if sub := frame.Depth; sub != nil {
		w, h := p.source.Dimensions(mkv.ModalityDepth)
		p.showGray("depth", sub.Data, w, h, export.DepthScaleAlpha, export.DepthScaleBeta)
	}

	if sub := frame.Infrared; sub != nil {
		w, h := p.source.Dimensions(mkv.ModalityInfrared)
		p.showGray("infrared", sub.Data, w, h, export.InfraredScaleAlpha, export.InfraredScaleBeta)
	}

	return p.preview.poll() == quitKey
}

func (p *Pipeline) showGray(name string, buf []byte, w, h int, alpha, beta float64) {
	if w <= 0 || h <= 0 || len(buf) != w*h*2 {
		return
	}
	mat, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC1, export.Rescale16To8(buf, alpha, beta))
	if err != nil {
		p.logger.Warnw("preview conversion failed", "window", name, "error", err)
		return
	}
	p.preview.show(name, mat)
	mat.Close()
}
