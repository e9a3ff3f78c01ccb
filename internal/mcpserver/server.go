// Package mcpserver exposes conversions and diagnostics as MCP tools.
package mcpserver

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"tts2sv-shell/internal/convert"
	"tts2sv-shell/internal/domain"
	"tts2sv-shell/internal/jobs"
)

const instructions = `Tools for running the tts2sv converter, which turns a spoken WAV
recording plus its text into MusicXML, MIDI and UST files.

Call diagnostics first when a run fails to start. run_conversion blocks until
the external process exits and returns its full log.`

// Runner runs one conversion and streams its events to sink.
type Runner interface {
	RunConversion(opts domain.RunOptions, sink convert.Sink) domain.RunResult
}

// Checker produces an environment report.
type Checker interface {
	Run(settings domain.Settings) domain.DiagnosticReport
}

type handler struct {
	runner  Runner
	checker Checker
}

// NewServer creates an MCP server with the run_conversion and diagnostics tools.
func NewServer(runner Runner, checker Checker, version string) *mcp.Server {
	h := &handler{runner: runner, checker: checker}

	s := mcp.NewServer(&mcp.Implementation{Name: "tts2sv-shell", Version: version}, &mcp.ServerOptions{
		Instructions: instructions,
		Capabilities: &mcp.ServerCapabilities{
			Tools: &mcp.ToolCapabilities{ListChanged: false},
		},
	})

	mcp.AddTool(s, &mcp.Tool{
		Name: "run_conversion",
		Description: `Convert a WAV recording and its text into singing-voice score files.

Runs "python -m tts2sv.cli" once and returns the streamed log. Output files are
<output_prefix>.musicxml, .mid and .ust. Errors from the tool are marked with ⚠️.`,
	}, h.runHandler)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "diagnostics",
		Description: "Check the Python interpreter, its version, the tts2sv package and the working directory.",
	}, h.diagnosticsHandler)

	return s
}

type runParams struct {
	WavPath          string  `json:"wav_path" jsonschema:"Path to the input WAV recording."`
	Text             string  `json:"text" jsonschema:"The words spoken in the recording."`
	OutputPrefix     string  `json:"output_prefix" jsonschema:"Output path without extension; three files share this name."`
	BPM              float64 `json:"bpm,omitempty" jsonschema:"Tempo in beats per minute. Default: 120."`
	Lang             string  `json:"lang,omitempty" jsonschema:"Language code of the text. Default: en."`
	MinNoteBeats     float64 `json:"min_note_beats,omitempty" jsonschema:"Shortest note length in beats. Default: 0.125."`
	Timebase         int     `json:"timebase,omitempty" jsonschema:"MIDI ticks per quarter note. Default: 480."`
	Strict           bool    `json:"strict,omitempty" jsonschema:"Fail when syllables and notes do not line up."`
	PythonCommand    string  `json:"python_command,omitempty" jsonschema:"Interpreter to run. Defaults to the configured one."`
	WorkingDirectory string  `json:"working_directory,omitempty" jsonschema:"Directory to run in. Defaults to the server's."`
}

func (p runParams) form() domain.FormInput {
	form := domain.FormInput{
		WavPath:          p.WavPath,
		Text:             p.Text,
		OutputPrefix:     p.OutputPrefix,
		Lang:             p.Lang,
		Strict:           p.Strict,
		PythonCommand:    p.PythonCommand,
		WorkingDirectory: p.WorkingDirectory,
	}
	if p.BPM > 0 {
		form.BPM = strconv.FormatFloat(p.BPM, 'f', -1, 64)
	}
	if p.MinNoteBeats > 0 {
		form.MinNoteBeats = strconv.FormatFloat(p.MinNoteBeats, 'f', -1, 64)
	}
	if p.Timebase > 0 {
		form.Timebase = strconv.Itoa(p.Timebase)
	}
	return form
}

func (h *handler) runHandler(_ context.Context, _ *mcp.CallToolRequest, params runParams) (*mcp.CallToolResult, any, error) {
	ctrl := jobs.NewController()
	opts, err := ctrl.Submit(params.form())
	if err != nil {
		return errorResult(strings.TrimSpace(ctrl.Log()) + "\n" + err.Error())
	}

	result := h.runner.RunConversion(opts, ctrl.Apply)
	text := ansi.Strip(ctrl.Log())
	if result.ExitCode != 0 {
		return errorResult(text)
	}

	var b strings.Builder
	b.WriteString(text)
	for _, artifact := range convert.ExpectedArtifacts(opts.OutputPrefix, opts.WorkingDirectory) {
		if artifact.Exists {
			fmt.Fprintf(&b, "Wrote %s\n", artifact.Path)
		}
	}
	return textResult(b.String())
}

type diagnosticsParams struct {
	PythonCommand    string `json:"python_command,omitempty" jsonschema:"Interpreter to check. Defaults to the configured one."`
	WorkingDirectory string `json:"working_directory,omitempty" jsonschema:"Working directory to check."`
}

func (h *handler) diagnosticsHandler(_ context.Context, _ *mcp.CallToolRequest, params diagnosticsParams) (*mcp.CallToolResult, any, error) {
	report := h.checker.Run(domain.Settings{
		PythonCommand:    params.PythonCommand,
		WorkingDirectory: params.WorkingDirectory,
	})
	return textResult(FormatReport(report))
}

// FormatReport renders a diagnostics report as plain text.
func FormatReport(report domain.DiagnosticReport) string {
	var b strings.Builder
	if report.HasFailures {
		fmt.Fprintln(&b, "Status: FAIL")
	} else {
		fmt.Fprintln(&b, "Status: PASS")
	}
	fmt.Fprintf(&b, "Interpreter: %s\n\n", report.Interpreter)
	for _, item := range report.Items {
		fmt.Fprintf(&b, "[%s] %s: %s\n", item.Status, item.Name, item.Message)
		if item.Hint != "" && item.Status == domain.DiagnosticStatusFail {
			fmt.Fprintf(&b, "       %s\n", item.Hint)
		}
	}
	return b.String()
}

// textResult is a helper to build a text-only tool result.
func textResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

// errorResult is a helper to build an error tool result.
func errorResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}, nil, nil
}
