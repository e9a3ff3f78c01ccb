package domain

// ExitCodeNotStarted is reported when the external process never started.
const ExitCodeNotStarted = -1

// Form defaults applied when a numeric field is empty or not positive.
const (
	DefaultBPM          = 120.0
	DefaultLang         = "en"
	DefaultMinNoteBeats = 0.125
	DefaultTimebase     = 480
)

// RunOptions describes one conversion request for the external tool.
type RunOptions struct {
	WavPath          string  `json:"wavPath"`
	Text             string  `json:"text"`
	OutputPrefix     string  `json:"outputPrefix"`
	BPM              float64 `json:"bpm"`
	Lang             string  `json:"lang"`
	MinNoteBeats     float64 `json:"minNoteBeats"`
	Timebase         int     `json:"timebase"`
	Strict           bool    `json:"strict"`
	PythonCommand    string  `json:"pythonCommand,omitempty"`
	WorkingDirectory string  `json:"workingDirectory,omitempty"`
}

// RunResult is the terminal outcome of one run.
type RunResult struct {
	ExitCode     int    `json:"code"`
	ErrorMessage string `json:"error,omitempty"`
}

// Started reports whether the process was spawned at all.
func (r RunResult) Started() bool {
	return r.ExitCode != ExitCodeNotStarted
}

// Succeeded reports a zero exit code.
func (r RunResult) Succeeded() bool {
	return r.ExitCode == 0
}

// EventKind tags a LogEvent.
type EventKind string

const (
	EventLog      EventKind = "log"
	EventError    EventKind = "error"
	EventComplete EventKind = "complete"
)

// LogEvent is one element of a run's event sequence. Text is set for log
// and error events, Result only for the final complete event.
type LogEvent struct {
	Kind   EventKind  `json:"kind"`
	Text   string     `json:"text,omitempty"`
	Result *RunResult `json:"result,omitempty"`
}

// LogText builds a stdout event.
func LogText(text string) LogEvent {
	return LogEvent{Kind: EventLog, Text: text}
}

// ErrorText builds a stderr or failure event.
func ErrorText(text string) LogEvent {
	return LogEvent{Kind: EventError, Text: text}
}

// Complete builds the terminal event for result.
func Complete(result RunResult) LogEvent {
	return LogEvent{Kind: EventComplete, Result: &result}
}

// FormInput holds raw form values before conversion into RunOptions.
type FormInput struct {
	WavPath          string `json:"wavPath"`
	Text             string `json:"text"`
	OutputPrefix     string `json:"outputPrefix"`
	BPM              string `json:"bpm"`
	Lang             string `json:"lang"`
	MinNoteBeats     string `json:"minNoteBeats"`
	Timebase         string `json:"timebase"`
	Strict           bool   `json:"strict"`
	PythonCommand    string `json:"pythonCommand"`
	WorkingDirectory string `json:"workingDirectory"`
}

// RunState is the UI controller state.
type RunState string

const (
	RunStateIdle    RunState = "idle"
	RunStateRunning RunState = "running"
)

// Settings contains persisted form defaults. Runs themselves are never stored.
type Settings struct {
	PythonCommand    string  `json:"pythonCommand"`
	WorkingDirectory string  `json:"workingDirectory"`
	BPM              float64 `json:"bpm"`
	Lang             string  `json:"lang"`
	MinNoteBeats     float64 `json:"minNoteBeats"`
	Timebase         int     `json:"timebase"`
	Strict           bool    `json:"strict"`
}
