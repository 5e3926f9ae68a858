// Package export drains per-modality frame queues to numbered image files.
package export

import (
	"fmt"
	"path/filepath"
	"runtime"
	"sync/atomic"

	"github.com/mkvtools/mkv2image/internal/queue"
)

// Exporter continuously drains one modality's queue to disk. It runs on its
// own goroutine and polls: an empty queue yields the CPU and retries, and the
// loop exits only once a stop has been requested AND the queue was observed
// empty, so every queued entry is written before Run returns.
//
// Output files are named "<dir>/NNNNNN_TTTTTTTTTTT<ext>": a six-digit
// sequence starting at 0, incremented once per successful write, and the
// entry's device timestamp in microseconds. The sequence is strictly
// increasing, so no file is ever overwritten.
type Exporter struct {
	dir      string
	strategy WriteStrategy
	queue    *queue.FIFO[Entry]
	stop     *StopToken

	logger Logger

	seq    uint64
	wrote  atomic.Uint64
	failed atomic.Bool
	err    error
}

// New creates an exporter over the given queue. The stop token is shared
// with the producer, which requests the stop at teardown.
func New(dir string, strategy WriteStrategy, q *queue.FIFO[Entry], stop *StopToken) *Exporter {
	return &Exporter{
		dir:      dir,
		strategy: strategy,
		queue:    q,
		stop:     stop,
		logger:   noopLogger{},
	}
}

// SetLogger lets you inject your own logger (e.g., zap Sugar()).
func (e *Exporter) SetLogger(l Logger) {
	if l == nil {
		e.logger = noopLogger{}
		return
	}
	e.logger = l
}

// Run drains the queue until stop-and-empty, or until a write fails. Call it
// on a dedicated goroutine; it blocks until done.
func (e *Exporter) Run() {
	e.logger.Debugw("exporter started", "dir", e.dir)

	for {
		// The stop must be observed before the pop: the producer pushes its
		// last entries and only then requests the stop, so a stop seen here
		// makes a subsequent empty pop authoritative. Popping first would
		// let entries pushed between the two observations slip away.
		stopped := e.stop.Stopped()

		entry, ok := e.queue.TryPop()
		if !ok {
			if stopped {
				// Stop observed before the queue was seen empty: the
				// producer has quit, the drain is complete.
				e.logger.Debugw("exporter drained", "dir", e.dir, "written", e.wrote.Load())
				return
			}
			runtime.Gosched()
			continue
		}

		name := fmt.Sprintf("%06d_%011d%s", e.seq, entry.Timestamp, e.strategy.Ext())
		path := filepath.Join(e.dir, name)
		if err := e.strategy.Write(path, entry.Buf); err != nil {
			e.err = fmt.Errorf("export %s: %w", path, err)
			e.failed.Store(true)
			e.logger.Errorw("exporter write failed", "path", path, "error", err)
			return
		}
		e.seq++
		e.wrote.Add(1)
	}
}

// Failed reports whether the exporter stopped on a write failure. Safe to
// call while Run is still going; the producer uses it to abort early.
func (e *Exporter) Failed() bool {
	return e.failed.Load()
}

// Err returns the failure that stopped the exporter, if any. Valid once Run
// has returned or Failed reports true.
func (e *Exporter) Err() error {
	if !e.failed.Load() {
		return nil
	}
	return e.err
}

// Written returns the number of files written so far.
func (e *Exporter) Written() uint64 {
	return e.wrote.Load()
}
