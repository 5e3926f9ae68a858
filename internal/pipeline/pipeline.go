// Package pipeline orchestrates the frame flow: one reader loop pulls
// captures from the recording and fans the sub-images out to per-modality
// exporter goroutines, optionally previewing them along the way.
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/mkvtools/mkv2image/internal/config"
	"github.com/mkvtools/mkv2image/internal/export"
	"github.com/mkvtools/mkv2image/internal/mkv"
	"github.com/mkvtools/mkv2image/internal/queue"
)

// Logger is a minimal structured-logging interface (compatible with
// zap.SugaredLogger).
type Logger interface {
	Debugw(msg string, keysAndValues ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
}

type noopLogger struct{}

func (noopLogger) Debugw(string, ...interface{}) {}
func (noopLogger) Infow(string, ...interface{})  {}
func (noopLogger) Warnw(string, ...interface{})  {}
func (noopLogger) Errorw(string, ...interface{}) {}

// Source is the sequential reader the pipeline drains. mkv.Playback is the
// production implementation.
type Source interface {
	Enabled(m mkv.Modality) bool
	Modalities() []mkv.Modality
	Calibration() *mkv.Calibration
	Dimensions(m mkv.Modality) (int, int)
	Next() (*mkv.Frame, error)
	Close() error
}

// Transformer remaps a depth raster into the color camera frame. A nil
// result means the transform produced nothing for this frame; the pipeline
// queues nothing and moves on.
type Transformer func(depth []byte, calib *mkv.Calibration) []byte

// Pipeline runs three linear phases: setup (open dirs, start one exporter
// goroutine per enabled modality), run (pull frames, distribute sub-images,
// drive the optional preview) and teardown (stop, drain, join, release).
type Pipeline struct {
	cfg       *config.Config
	source    Source
	transform Transformer

	logger Logger
	runID  string

	root       string
	modalities []mkv.Modality
	queues     map[mkv.Modality]*queue.FIFO[export.Entry]
	exporters  map[mkv.Modality]*export.Exporter
	stop       *export.StopToken
	wg         sync.WaitGroup

	preview *previewer
}

// New creates a pipeline over an opened source. The transformer is only
// consulted when the transform option is enabled.
func New(cfg *config.Config, source Source, transform Transformer) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		source:    source,
		transform: transform,
		logger:    noopLogger{},
		runID:     uuid.NewString(),
		queues:    make(map[mkv.Modality]*queue.FIFO[export.Entry]),
		exporters: make(map[mkv.Modality]*export.Exporter),
		stop:      export.NewStopToken(),
	}
}

// SetLogger lets you inject your own logger (e.g., zap Sugar()). Call it
// before Run.
func (p *Pipeline) SetLogger(l Logger) {
	if l == nil {
		p.logger = noopLogger{}
		return
	}
	p.logger = l
}

// Run executes the full export and blocks until every exporter has drained.
// It returns nil on a clean end-of-stream or quit-key exit.
func (p *Pipeline) Run() error {
	if err := p.setup(); err != nil {
		return err
	}

	runErr := p.run()
	teardownErr := p.teardown()

	if runErr != nil {
		return runErr
	}
	return teardownErr
}

func (p *Pipeline) setup() error {
	p.root = p.cfg.OutputRoot()
	if err := os.MkdirAll(p.root, 0o755); err != nil {
		return fmt.Errorf("create root directory %q: %w", p.root, err)
	}

	p.modalities = p.source.Modalities()
	p.logger.Infow("starting export",
		"run_id", p.runID,
		"input", p.cfg.InputPath,
		"root", p.root,
		"modalities", p.modalities,
		"scaling", p.cfg.Scaling,
		"transform", p.cfg.Transform,
	)

	for _, m := range p.modalities {
		dir := filepath.Join(p.root, string(m))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create sub directory %q: %w", dir, err)
		}

		q := queue.NewFIFO[export.Entry]()
		exp := export.New(dir, p.strategyFor(m), q, p.stop)
		exp.SetLogger(p.logger)
		p.queues[m] = q
		p.exporters[m] = exp

		p.wg.Add(1)
		go func(e *export.Exporter) {
			defer p.wg.Done()
			e.Run()
		}(exp)
	}

	return nil
}

// strategyFor builds the per-modality encode/write strategy. Raster sizes
// come from the source; transformed depth uses the color camera geometry.
func (p *Pipeline) strategyFor(m mkv.Modality) export.WriteStrategy {
	switch m {
	case mkv.ModalityColor:
		return export.ColorStrategy{}
	case mkv.ModalityDepth:
		w, h := p.source.Dimensions(m)
		if p.cfg.Transform {
			if calib := p.source.Calibration(); calib != nil && calib.Color.Width > 0 {
				w, h = calib.Color.Width, calib.Color.Height
			}
		}
		return export.DepthStrategy{Width: w, Height: h, Scaling: p.cfg.Scaling}
	default:
		w, h := p.source.Dimensions(m)
		return export.InfraredStrategy{Width: w, Height: h, Quality: p.cfg.Quality}
	}
}

func (p *Pipeline) run() error {
	for {
		if p.exportFailed() {
			// The failure itself is surfaced after the join in teardown.
			p.logger.Warnw("exporter failed, aborting run loop", "run_id", p.runID)
			return nil
		}

		frame, err := p.source.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read capture: %w", err)
		}

		var transformed []byte

		if sub := frame.Color; sub != nil && p.has(mkv.ModalityColor) {
			p.push(mkv.ModalityColor, sub)
		}

		if sub := frame.Depth; sub != nil && p.has(mkv.ModalityDepth) {
			if p.cfg.Transform {
				transformed = p.transform(sub.Data, p.source.Calibration())
				if transformed != nil {
					p.queues[mkv.ModalityDepth].Push(export.Entry{
						Buf:       transformed,
						Timestamp: sub.DeviceTimestamp,
					})
				}
			} else {
				p.push(mkv.ModalityDepth, sub)
			}
		}

		if sub := frame.Infrared; sub != nil && p.has(mkv.ModalityInfrared) {
			p.push(mkv.ModalityInfrared, sub)
		}

		if p.cfg.Display {
			if quit := p.renderPreview(frame, transformed); quit {
				p.logger.Infow("quit key pressed", "run_id", p.runID)
				return nil
			}
		}
	}
}

func (p *Pipeline) teardown() error {
	p.stop.RequestStop()
	p.wg.Wait()

	if p.preview != nil {
		p.preview.close()
		p.preview = nil
	}

	closeErr := p.source.Close()

	var exportErr error
	for _, m := range p.modalities {
		e := p.exporters[m]
		p.logger.Infow("modality export finished",
			"run_id", p.runID, "modality", m, "files", e.Written())
		if exportErr == nil && e.Err() != nil {
			exportErr = e.Err()
		}
	}

	if exportErr != nil {
		return exportErr
	}
	if closeErr != nil {
		return fmt.Errorf("close source: %w", closeErr)
	}
	p.logger.Infow("export complete", "run_id", p.runID)
	return nil
}

func (p *Pipeline) has(m mkv.Modality) bool {
	_, ok := p.queues[m]
	return ok
}

// push copies the sub-image payload into a queue entry; the frame may be
// released before the exporter gets to the entry.
func (p *Pipeline) push(m mkv.Modality, sub *mkv.SubImage) {
	p.queues[m].Push(export.Entry{
		Buf:       append([]byte(nil), sub.Data...),
		Timestamp: sub.DeviceTimestamp,
	})
}

func (p *Pipeline) exportFailed() bool {
	for _, e := range p.exporters {
		if e.Failed() {
			return true
		}
	}
	return false
}
