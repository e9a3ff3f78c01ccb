package mcpserver

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"tts2sv-shell/internal/convert"
	"tts2sv-shell/internal/domain"
)

// fakeRunner replays scripted events and records the options it received.
type fakeRunner struct {
	mu     sync.Mutex
	script []domain.LogEvent
	calls  []domain.RunOptions
}

func (f *fakeRunner) RunConversion(opts domain.RunOptions, sink convert.Sink) domain.RunResult {
	f.mu.Lock()
	f.calls = append(f.calls, opts)
	f.mu.Unlock()

	result := domain.RunResult{}
	for _, ev := range f.script {
		if ev.Result != nil {
			result = *ev.Result
		}
		sink(ev)
	}
	return result
}

type fakeChecker struct {
	report domain.DiagnosticReport
	got    domain.Settings
}

func (c *fakeChecker) Run(settings domain.Settings) domain.DiagnosticReport {
	c.got = settings
	return c.report
}

func setup(t *testing.T, runner Runner, checker Checker) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	server := NewServer(runner, checker, "test")
	ct, st := mcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, st, nil)
	if err != nil {
		t.Fatalf("server.Connect: %v", err)
	}

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	if err != nil {
		t.Fatalf("client.Connect: %v", err)
	}

	t.Cleanup(func() {
		_ = cs.Close()
		_ = ss.Wait()
	})
	return cs
}

func callTool(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	return res
}

func resultText(r *mcp.CallToolResult) string {
	var parts []string
	for _, c := range r.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func TestListTools(t *testing.T) {
	cs := setup(t, &fakeRunner{}, &fakeChecker{})

	res, err := cs.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	names := map[string]bool{}
	for _, tool := range res.Tools {
		names[tool.Name] = true
	}
	if !names["run_conversion"] || !names["diagnostics"] {
		t.Fatalf("tools = %v", names)
	}
}

func TestRunConversionSuccess(t *testing.T) {
	dir := t.TempDir()
	prefix := filepath.Join(dir, "line")
	if err := os.WriteFile(prefix+".ust", []byte("[#SETTING]"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	runner := &fakeRunner{script: []domain.LogEvent{
		domain.LogText("$ python3 -m tts2sv.cli\n"),
		domain.ErrorText("note: 2 syllables\n"),
		domain.Complete(domain.RunResult{ExitCode: 0}),
	}}
	cs := setup(t, runner, &fakeChecker{})

	res := callTool(t, cs, "run_conversion", map[string]any{
		"wav_path":      "/tmp/voice.wav",
		"text":          "hello",
		"output_prefix": prefix,
		"bpm":           90,
		"strict":        true,
	})
	if res.IsError {
		t.Fatalf("unexpected error result: %s", resultText(res))
	}

	text := resultText(res)
	for _, want := range []string{"⚠️ note: 2 syllables", "Process finished with exit code 0.", "Wrote " + prefix + ".ust"} {
		if !strings.Contains(text, want) {
			t.Fatalf("result missing %q:\n%s", want, text)
		}
	}

	opts := runner.calls[0]
	if opts.BPM != 90 || !opts.Strict || opts.Timebase != domain.DefaultTimebase || opts.Lang != domain.DefaultLang {
		t.Fatalf("opts = %+v", opts)
	}
}

func TestRunConversionNonZeroExitIsError(t *testing.T) {
	runner := &fakeRunner{script: []domain.LogEvent{
		domain.ErrorText("Failed to start Python process: not found\n"),
		domain.Complete(domain.RunResult{ExitCode: domain.ExitCodeNotStarted}),
	}}
	cs := setup(t, runner, &fakeChecker{})

	res := callTool(t, cs, "run_conversion", map[string]any{
		"wav_path": "a.wav", "text": "la", "output_prefix": "out/x",
	})
	if !res.IsError || !strings.Contains(resultText(res), "exit code -1") {
		t.Fatalf("result = %+v: %s", res.IsError, resultText(res))
	}
}

func TestRunConversionValidation(t *testing.T) {
	runner := &fakeRunner{}
	cs := setup(t, runner, &fakeChecker{})

	res := callTool(t, cs, "run_conversion", map[string]any{
		"wav_path": " ", "text": "la", "output_prefix": "out/x",
	})
	if !res.IsError || !strings.Contains(resultText(res), "Please provide WAV, text, and output prefix") {
		t.Fatalf("result = %s", resultText(res))
	}
	if len(runner.calls) != 0 {
		t.Fatal("runner called for invalid input")
	}
}

func TestDiagnosticsTool(t *testing.T) {
	checker := &fakeChecker{report: domain.DiagnosticReport{
		Interpreter: "/venv/bin/python",
		HasFailures: true,
		Items: []domain.DiagnosticItem{
			{ID: "interpreter", Name: "Python interpreter", Status: domain.DiagnosticStatusPass, Message: "Found"},
			{ID: "module_tts2sv", Name: "tts2sv package", Status: domain.DiagnosticStatusFail, Message: "Cannot import", Hint: "pip install tts2sv"},
		},
	}}
	cs := setup(t, &fakeRunner{}, checker)

	res := callTool(t, cs, "diagnostics", map[string]any{"python_command": "/venv/bin/python"})
	text := resultText(res)
	for _, want := range []string{"Status: FAIL", "[fail] tts2sv package: Cannot import", "pip install tts2sv"} {
		if !strings.Contains(text, want) {
			t.Fatalf("result missing %q:\n%s", want, text)
		}
	}
	if checker.got.PythonCommand != "/venv/bin/python" {
		t.Fatalf("settings = %+v", checker.got)
	}
}
