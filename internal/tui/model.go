// Package tui is the terminal front end: the same form, controller and
// bridge as the desktop window, rendered with Bubble Tea.
package tui

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"tts2sv-shell/internal/bridge"
	"tts2sv-shell/internal/dialogs"
	"tts2sv-shell/internal/domain"
	"tts2sv-shell/internal/jobs"
)

// Form field indexes, in focus order. fieldStrict is the checkbox.
const (
	fieldWav = iota
	fieldText
	fieldOutput
	fieldBPM
	fieldLang
	fieldMinNote
	fieldTimebase
	fieldPython
	fieldWorkDir
	fieldStrict
	fieldCount
)

var fieldLabels = [...]string{
	fieldWav:      "WAV file",
	fieldText:     "Text",
	fieldOutput:   "Output prefix",
	fieldBPM:      "BPM",
	fieldLang:     "Language",
	fieldMinNote:  "Min note beats",
	fieldTimebase: "Timebase",
	fieldPython:   "Python",
	fieldWorkDir:  "Working dir",
	fieldStrict:   "Strict",
}

// formChrome is the number of lines outside the log box.
const formChrome = fieldCount + 6

// Model is the Bubble Tea model for the terminal UI.
type Model struct {
	controller *jobs.Controller
	conversion bridge.Conversion
	dialogs    dialogs.Bridge
	keys       KeyMap

	inputs  []textinput.Model
	strict  bool
	focus   int
	log     viewport.Model
	spinner spinner.Model
	status  string
	failed  bool

	events      chan runEventMsg
	done        chan struct{}
	closeOnce   sync.Once
	unsubscribe func()
	copy        func(string) error

	width  int
	height int
}

// New builds the model and subscribes to conv. Call Close when the program exits.
func New(conv bridge.Conversion, picker dialogs.Bridge, form domain.FormInput) *Model {
	m := &Model{
		controller: jobs.NewController(),
		conversion: conv,
		dialogs:    picker,
		keys:       DefaultKeyMap(),
		inputs:     make([]textinput.Model, fieldStrict),
		strict:     form.Strict,
		log:        viewport.New(80, 10),
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(runningStyle)),
		status:     "Ready.",
		events:     make(chan runEventMsg, 256),
		done:       make(chan struct{}),
		copy:       copyText,
		width:      80,
		height:     30,
	}

	values := [...]string{
		fieldWav:      form.WavPath,
		fieldText:     form.Text,
		fieldOutput:   form.OutputPrefix,
		fieldBPM:      form.BPM,
		fieldLang:     form.Lang,
		fieldMinNote:  form.MinNoteBeats,
		fieldTimebase: form.Timebase,
		fieldPython:   form.PythonCommand,
		fieldWorkDir:  form.WorkingDirectory,
	}
	placeholders := [...]string{
		fieldWav:      "path/to/voice.wav",
		fieldText:     "lyrics spoken in the recording",
		fieldOutput:   dialogs.DefaultOutputPrefix(),
		fieldBPM:      "120",
		fieldLang:     domain.DefaultLang,
		fieldMinNote:  "0.125",
		fieldTimebase: "480",
		fieldPython:   "python3",
		fieldWorkDir:  "current directory",
	}
	for i := range m.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 0
		ti.Placeholder = placeholders[i]
		ti.SetValue(values[i])
		m.inputs[i] = ti
	}
	m.inputs[fieldWav].Focus()

	m.unsubscribe = conv.Subscribe(func(runID string, ev domain.LogEvent) {
		select {
		case m.events <- runEventMsg{runID: runID, ev: ev}:
		case <-m.done:
		}
	})
	m.resize()
	return m
}

// Close removes the bridge subscription.
func (m *Model) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
		if m.unsubscribe != nil {
			m.unsubscribe()
		}
	})
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForEvent())
}

// waitForEvent blocks on the subscription channel for the next event.
func (m *Model) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		return <-events
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case runEventMsg:
		m.controller.Apply(msg.ev)
		m.refreshLog()
		return m, m.waitForEvent()

	case runDoneMsg:
		m.failed = msg.result.ExitCode != 0
		if msg.result.Started() {
			m.status = fmt.Sprintf("Finished with exit code %d.", msg.result.ExitCode)
		} else {
			m.status = "Could not start the interpreter."
		}
		return m, nil

	case pickedMsg:
		switch {
		case msg.err != nil:
			m.setError("Dialog failed: " + msg.err.Error())
		case msg.path != "":
			m.inputs[msg.field].SetValue(msg.path)
		}
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.setError("Copy failed: " + msg.err.Error())
		} else {
			m.setStatus("Log copied to clipboard.")
		}
		return m, nil

	case spinner.TickMsg:
		if !m.controller.Running() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Run):
		return m, m.submit()
	case key.Matches(msg, m.keys.Clear):
		m.controller.ClearLog()
		m.refreshLog()
		return m, nil
	case key.Matches(msg, m.keys.Copy):
		text := ansi.Strip(m.controller.Log())
		copyFn := m.copy
		return m, func() tea.Msg { return copiedMsg{err: copyFn(text)} }
	case key.Matches(msg, m.keys.PickInput):
		return m, m.pick(fieldWav, m.dialogs.PickInputFile)
	case key.Matches(msg, m.keys.PickOutput):
		return m, m.pick(fieldOutput, m.dialogs.PickOutputPath)
	case key.Matches(msg, m.keys.PickInterpreter):
		return m, m.pick(fieldPython, m.dialogs.PickInterpreterPath)
	case key.Matches(msg, m.keys.Next):
		m.setFocus((m.focus + 1) % fieldCount)
		return m, nil
	case key.Matches(msg, m.keys.Prev):
		m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		return m, nil
	}

	if m.focus == fieldStrict {
		if key.Matches(msg, m.keys.Toggle) {
			m.strict = !m.strict
		}
		return m, nil
	}
	if m.controller.Running() {
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// submit hands the form to the controller and starts the run.
func (m *Model) submit() tea.Cmd {
	opts, err := m.controller.Submit(m.Form())
	m.refreshLog()
	if err != nil {
		var verr *jobs.ValidationError
		if errors.As(err, &verr) {
			m.setError("Missing: " + strings.Join(verr.Fields, ", "))
		} else {
			m.setError(err.Error())
		}
		return nil
	}

	m.setStatus("Running…")
	conv := m.conversion
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return runDoneMsg{result: conv.RunConversion(opts)}
	})
}

func (m *Model) pick(field int, open func() (string, error)) tea.Cmd {
	if m.dialogs == nil || m.controller.Running() {
		return nil
	}
	return func() tea.Msg {
		path, err := open()
		return pickedMsg{field: field, path: path, err: err}
	}
}

// Form returns the current raw form values.
func (m *Model) Form() domain.FormInput {
	return domain.FormInput{
		WavPath:          m.inputs[fieldWav].Value(),
		Text:             m.inputs[fieldText].Value(),
		OutputPrefix:     m.inputs[fieldOutput].Value(),
		BPM:              m.inputs[fieldBPM].Value(),
		Lang:             m.inputs[fieldLang].Value(),
		MinNoteBeats:     m.inputs[fieldMinNote].Value(),
		Timebase:         m.inputs[fieldTimebase].Value(),
		Strict:           m.strict,
		PythonCommand:    m.inputs[fieldPython].Value(),
		WorkingDirectory: m.inputs[fieldWorkDir].Value(),
	}
}

// Log returns the visible log with escape sequences removed.
func (m *Model) Log() string {
	return ansi.Strip(m.controller.Log())
}

func (m *Model) setFocus(i int) {
	if m.focus < fieldStrict {
		m.inputs[m.focus].Blur()
	}
	m.focus = i
	if m.focus < fieldStrict {
		m.inputs[m.focus].Focus()
	}
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.failed = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.failed = true
}

func (m *Model) refreshLog() {
	m.log.SetContent(m.Log())
	m.log.GotoBottom()
}

func (m *Model) resize() {
	inputWidth := m.width - 20
	if inputWidth < 10 {
		inputWidth = 10
	}
	for i := range m.inputs {
		m.inputs[i].Width = inputWidth
	}

	m.log.Width = max(m.width-2, 10)
	m.log.Height = max(m.height-formChrome, 3)
	m.refreshLog()
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("TTS to Singing Voice"))
	b.WriteString("\n\n")

	for i := 0; i < fieldStrict; i++ {
		b.WriteString(m.label(i))
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
	}
	box := "[ ]"
	if m.strict {
		box = "[x]"
	}
	b.WriteString(m.label(fieldStrict))
	b.WriteString(box)
	b.WriteString("\n")

	b.WriteString(logBoxStyle.Width(m.log.Width).Render(m.log.View()))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.helpLine())
	return b.String()
}

func (m *Model) label(i int) string {
	if i == m.focus {
		return focusedLabelStyle.Render(fieldLabels[i])
	}
	return labelStyle.Render(fieldLabels[i])
}

func (m *Model) statusLine() string {
	if m.controller.Running() {
		return m.spinner.View() + " " + runningStyle.Render(m.status)
	}
	if m.failed {
		return errorStyle.Render(m.status)
	}
	if strings.HasPrefix(m.status, "Finished") {
		return successStyle.Render(m.status)
	}
	return statusStyle.Render(m.status)
}

func (m *Model) helpLine() string {
	parts := make([]string, 0, len(m.keys.helpBindings()))
	for _, binding := range m.keys.helpBindings() {
		h := binding.Help()
		parts = append(parts, keyStyle.Render(h.Key)+" "+statusStyle.Render(h.Desc))
	}
	return lipgloss.NewStyle().MaxWidth(max(m.width, 20)).Render(strings.Join(parts, "  "))
}
