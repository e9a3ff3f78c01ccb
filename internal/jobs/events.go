package jobs

import (
	"sync"
	"time"

	"tts2sv-shell/internal/domain"
)

// Event is a sequenced run event consumed by window subscribers.
type Event struct {
	Seq       int64             `json:"seq"`
	Timestamp time.Time         `json:"timestamp"`
	RunID     string            `json:"runId"`
	Kind      domain.EventKind  `json:"kind"`
	Text      string            `json:"text,omitempty"`
	Result    *domain.RunResult `json:"result,omitempty"`
}

// NewEvent tags a run event with its run ID.
func NewEvent(runID string, ev domain.LogEvent) Event {
	return Event{
		RunID:  runID,
		Kind:   ev.Kind,
		Text:   ev.Text,
		Result: ev.Result,
	}
}

// LogEvent strips the envelope back off.
func (e Event) LogEvent() domain.LogEvent {
	return domain.LogEvent{Kind: e.Kind, Text: e.Text, Result: e.Result}
}

// EventBus stores recent events and provides incremental reads.
type EventBus struct {
	mu        sync.RWMutex
	nextSeq   int64
	maxEvents int
	events    []Event
}

// NewEventBus creates a bounded in-memory event buffer.
func NewEventBus(maxEvents int) *EventBus {
	if maxEvents <= 0 {
		maxEvents = 500
	}

	return &EventBus{
		maxEvents: maxEvents,
		events:    make([]Event, 0, maxEvents),
	}
}

// Publish appends one event and assigns sequence and timestamp.
func (b *EventBus) Publish(event Event) Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextSeq++
	event.Seq = b.nextSeq
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	b.events = append(b.events, event)
	if len(b.events) > b.maxEvents {
		trim := len(b.events) - b.maxEvents
		b.events = append([]Event(nil), b.events[trim:]...)
	}

	return event
}

// Since returns events with sequence strictly greater than seq.
func (b *EventBus) Since(seq int64) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.events) == 0 {
		return nil
	}

	out := make([]Event, 0, len(b.events))
	for _, event := range b.events {
		if event.Seq > seq {
			out = append(out, event)
		}
	}
	return out
}

// LastSeq returns the sequence of the newest event, or 0.
func (b *EventBus) LastSeq() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.nextSeq
}
