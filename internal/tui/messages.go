package tui

import "tts2sv-shell/internal/domain"

// runEventMsg carries one bridge event into the update loop.
type runEventMsg struct {
	runID string
	ev    domain.LogEvent
}

// runDoneMsg is sent when RunConversion returns.
type runDoneMsg struct {
	result domain.RunResult
}

// pickedMsg carries a dialog result for one form field.
type pickedMsg struct {
	field int
	path  string
	err   error
}

// copiedMsg reports the outcome of a clipboard copy.
type copiedMsg struct {
	err error
}
