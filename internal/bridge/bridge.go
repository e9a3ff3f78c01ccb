// Package bridge defines the boundary between a front end and the process
// supervisor: one request/response call plus an event subscription.
package bridge

import (
	"sync"

	"github.com/google/uuid"

	"tts2sv-shell/internal/convert"
	"tts2sv-shell/internal/domain"
)

// Listener receives every event of every run, tagged with the run ID.
type Listener func(runID string, ev domain.LogEvent)

// Conversion is implemented by anything that can carry a run across a
// boundary: in-process channels, MCP, or another transport.
type Conversion interface {
	RunConversion(opts domain.RunOptions) domain.RunResult
	Subscribe(fn Listener) (unsubscribe func())
}

// runner is the supervisor surface used by Local.
type runner interface {
	RunConversion(opts domain.RunOptions, sink convert.Sink) domain.RunResult
}

// Local is the in-process Conversion backed by a supervisor.
type Local struct {
	runner runner
	newID  func() string

	mu        sync.RWMutex
	nextSub   int
	listeners map[int]Listener
}

// NewLocal wraps a supervisor.
func NewLocal(sup *convert.Supervisor) *Local {
	return newLocal(sup)
}

func newLocal(r runner) *Local {
	return &Local{
		runner:    r,
		newID:     func() string { return uuid.NewString() },
		listeners: make(map[int]Listener),
	}
}

// RunConversion blocks until the run completes, fanning its events out to
// subscribers registered at the time each event is emitted.
func (l *Local) RunConversion(opts domain.RunOptions) domain.RunResult {
	_, result := l.Run(opts)
	return result
}

// Run is RunConversion that also reports the run ID it allocated.
func (l *Local) Run(opts domain.RunOptions) (string, domain.RunResult) {
	runID := l.newID()
	result := l.runner.RunConversion(opts, func(ev domain.LogEvent) {
		l.broadcast(runID, ev)
	})
	return runID, result
}

// Subscribe registers fn and returns a function that removes it.
func (l *Local) Subscribe(fn Listener) func() {
	l.mu.Lock()
	id := l.nextSub
	l.nextSub++
	l.listeners[id] = fn
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.listeners, id)
			l.mu.Unlock()
		})
	}
}

func (l *Local) broadcast(runID string, ev domain.LogEvent) {
	l.mu.RLock()
	targets := make([]Listener, 0, len(l.listeners))
	for _, fn := range l.listeners {
		targets = append(targets, fn)
	}
	l.mu.RUnlock()

	for _, fn := range targets {
		fn(runID, ev)
	}
}

var _ Conversion = (*Local)(nil)
