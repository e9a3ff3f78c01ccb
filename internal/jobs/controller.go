package jobs

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"tts2sv-shell/internal/domain"
)

// ErrorMarker prefixes error text in the visible log.
const ErrorMarker = "⚠️ "

// ErrRunInProgress is returned when submitting while a run is active.
var ErrRunInProgress = errors.New("run already in progress")

// ValidationError lists required form fields that were left empty.
type ValidationError struct {
	Fields []string
}

// Error formats the missing fields.
func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

const validationMessage = "Please provide WAV, text, and output prefix before running.\n"

// Controller owns form submission state and the visible log. It moves Idle
// to Running on a valid submit and back only when a complete event arrives.
type Controller struct {
	mu    sync.Mutex
	state domain.RunState
	log   strings.Builder
}

// NewController creates a controller in idle state with an empty log.
func NewController() *Controller {
	return &Controller{state: domain.RunStateIdle}
}

// Submit validates form and, when valid, enters Running and returns the
// options to hand to the supervisor. The log is reset on every submit.
func (c *Controller) Submit(form domain.FormInput) (domain.RunOptions, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == domain.RunStateRunning {
		return domain.RunOptions{}, ErrRunInProgress
	}

	c.log.Reset()
	opts := BuildOptions(form)
	if err := validate(opts); err != nil {
		c.log.WriteString(ErrorMarker + validationMessage)
		return domain.RunOptions{}, err
	}

	c.state = domain.RunStateRunning
	return opts, nil
}

// Apply renders one run event into the log. Complete returns to Idle.
func (c *Controller) Apply(ev domain.LogEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev.Kind {
	case domain.EventLog:
		c.log.WriteString(ev.Text)
	case domain.EventError:
		c.log.WriteString(ErrorMarker + ev.Text)
	case domain.EventComplete:
		code := domain.ExitCodeNotStarted
		if ev.Result != nil {
			code = ev.Result.ExitCode
		}
		fmt.Fprintf(&c.log, "\nProcess finished with exit code %d.\n", code)
		c.state = domain.RunStateIdle
	}
}

// ClearLog empties the visible log without touching run state.
func (c *Controller) ClearLog() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.log.Reset()
}

// Log returns the visible log text.
func (c *Controller) Log() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.log.String()
}

// State returns the current controller state.
func (c *Controller) State() domain.RunState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Running reports whether the form is currently locked.
func (c *Controller) Running() bool {
	return c.State() == domain.RunStateRunning
}

// BuildOptions converts raw form values into RunOptions, trimming text fields
// and falling back to defaults for empty or non-positive numbers.
func BuildOptions(form domain.FormInput) domain.RunOptions {
	lang := strings.TrimSpace(form.Lang)
	if lang == "" {
		lang = domain.DefaultLang
	}

	return domain.RunOptions{
		WavPath:          strings.TrimSpace(form.WavPath),
		Text:             strings.TrimSpace(form.Text),
		OutputPrefix:     strings.TrimSpace(form.OutputPrefix),
		BPM:              positiveFloat(form.BPM, domain.DefaultBPM),
		Lang:             lang,
		MinNoteBeats:     positiveFloat(form.MinNoteBeats, domain.DefaultMinNoteBeats),
		Timebase:         positiveInt(form.Timebase, domain.DefaultTimebase),
		Strict:           form.Strict,
		PythonCommand:    strings.TrimSpace(form.PythonCommand),
		WorkingDirectory: strings.TrimSpace(form.WorkingDirectory),
	}
}

// FormFromSettings seeds a form with persisted defaults.
func FormFromSettings(settings domain.Settings) domain.FormInput {
	form := domain.FormInput{
		Lang:             settings.Lang,
		Strict:           settings.Strict,
		PythonCommand:    settings.PythonCommand,
		WorkingDirectory: settings.WorkingDirectory,
	}
	if settings.BPM > 0 {
		form.BPM = strconv.FormatFloat(settings.BPM, 'f', -1, 64)
	}
	if settings.MinNoteBeats > 0 {
		form.MinNoteBeats = strconv.FormatFloat(settings.MinNoteBeats, 'f', -1, 64)
	}
	if settings.Timebase > 0 {
		form.Timebase = strconv.Itoa(settings.Timebase)
	}
	return form
}

// SettingsFromOptions captures the reusable parts of a submitted run.
func SettingsFromOptions(opts domain.RunOptions) domain.Settings {
	return domain.Settings{
		PythonCommand:    opts.PythonCommand,
		WorkingDirectory: opts.WorkingDirectory,
		BPM:              opts.BPM,
		Lang:             opts.Lang,
		MinNoteBeats:     opts.MinNoteBeats,
		Timebase:         opts.Timebase,
		Strict:           opts.Strict,
	}
}

// validate checks the three required fields.
func validate(opts domain.RunOptions) error {
	var missing []string
	if opts.WavPath == "" {
		missing = append(missing, "wavPath")
	}
	if opts.Text == "" {
		missing = append(missing, "text")
	}
	if opts.OutputPrefix == "" {
		missing = append(missing, "outputPrefix")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

func positiveFloat(raw string, fallback float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return fallback
	}
	return v
}

func positiveInt(raw string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
