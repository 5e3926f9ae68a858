package export

import "sync/atomic"

// StopToken tells an exporter to finish draining its queue and exit. It is
// handed to each exporter at construction; the pipeline requests the stop
// once, at teardown, and the exporters poll it every loop iteration.
type StopToken struct {
	stopped atomic.Bool
}

// NewStopToken returns a token in the running state.
func NewStopToken() *StopToken {
	return &StopToken{}
}

// RequestStop flips the token. Safe to call more than once.
func (t *StopToken) RequestStop() {
	t.stopped.Store(true)
}

// Stopped reports whether a stop has been requested.
func (t *StopToken) Stopped() bool {
	return t.stopped.Load()
}
