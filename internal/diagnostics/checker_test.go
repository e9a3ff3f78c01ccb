package diagnostics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tts2sv-shell/internal/domain"
)

func foundOnPath(name string) (string, error) { return "/usr/bin/" + name, nil }

func notFound(string) (string, error) { return "", errors.New("not found") }

// fakePython answers --version and the import probe.
func fakePython(version string, importErr error) func(string, ...string) ([]byte, error) {
	return func(_ string, args ...string) ([]byte, error) {
		if len(args) > 0 && args[0] == "--version" {
			return []byte("Python " + version + "\n"), nil
		}
		if importErr != nil {
			return []byte("Traceback (most recent call last):\nModuleNotFoundError: No module named 'tts2sv'\n"), importErr
		}
		return nil, nil
	}
}

// TestCheckerRunAllPass validates happy-path diagnostics report.
func TestCheckerRunAllPass(t *testing.T) {
	checker := NewCheckerForTests("python3", foundOnPath, os.Stat, fakePython("3.11.4", nil))

	report := checker.Run(domain.Settings{WorkingDirectory: t.TempDir()})

	if report.HasFailures {
		t.Fatalf("expected no failures, got %+v", report.Items)
	}
	if report.Interpreter != "python3" {
		t.Fatalf("interpreter = %q", report.Interpreter)
	}
	if len(report.Items) != 4 {
		t.Fatalf("items = %d, want 4", len(report.Items))
	}
}

// TestCheckerMissingInterpreterSkipsProbes validates dependent checks are skipped.
func TestCheckerMissingInterpreterSkipsProbes(t *testing.T) {
	called := false
	checker := NewCheckerForTests("python3", notFound, os.Stat, func(string, ...string) ([]byte, error) {
		called = true
		return nil, nil
	})

	report := checker.Run(domain.Settings{})

	if !report.HasFailures {
		t.Fatal("expected failures")
	}
	if called {
		t.Fatal("interpreter probed although not found")
	}
	assertStatusByID(t, report, IDInterpreter, domain.DiagnosticStatusFail)
	assertStatusByID(t, report, IDPythonVersion, domain.DiagnosticStatusSkip)
	assertStatusByID(t, report, IDModule, domain.DiagnosticStatusSkip)
	assertStatusByID(t, report, IDWorkingDir, domain.DiagnosticStatusPass)
}

// TestCheckerOldPythonFails validates the version constraint.
func TestCheckerOldPythonFails(t *testing.T) {
	checker := NewCheckerForTests("python3", foundOnPath, os.Stat, fakePython("3.8.10", nil))

	report := checker.Run(domain.Settings{})
	assertStatusByID(t, report, IDPythonVersion, domain.DiagnosticStatusFail)
}

// TestCheckerPrereleaseVersionParses validates release candidate output.
func TestCheckerPrereleaseVersionParses(t *testing.T) {
	checker := NewCheckerForTests("python3", foundOnPath, os.Stat, fakePython("3.13.0rc2", nil))

	report := checker.Run(domain.Settings{})
	assertStatusByID(t, report, IDPythonVersion, domain.DiagnosticStatusPass)
}

// TestCheckerMissingModuleIsFixable validates import failure reporting.
func TestCheckerMissingModuleIsFixable(t *testing.T) {
	checker := NewCheckerForTests("python3", foundOnPath, os.Stat, fakePython("3.12.1", errors.New("exit status 1")))

	report := checker.Run(domain.Settings{})
	item := itemByID(t, report, IDModule)
	if item.Status != domain.DiagnosticStatusFail || !item.Fixable {
		t.Fatalf("module item = %+v", item)
	}
	if !strings.Contains(item.Message, "No module named") {
		t.Fatalf("message = %q", item.Message)
	}
}

// TestCheckerWorkingDirectory validates missing and non-directory paths.
func TestCheckerWorkingDirectory(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	checker := NewCheckerForTests("python3", foundOnPath, os.Stat, fakePython("3.10.0", nil))

	missing := itemByID(t, checker.Run(domain.Settings{WorkingDirectory: filepath.Join(root, "nope")}), IDWorkingDir)
	if missing.Status != domain.DiagnosticStatusFail || !missing.Fixable {
		t.Fatalf("missing dir item = %+v", missing)
	}

	notDir := itemByID(t, checker.Run(domain.Settings{WorkingDirectory: file}), IDWorkingDir)
	if notDir.Status != domain.DiagnosticStatusFail || notDir.Fixable {
		t.Fatalf("file item = %+v", notDir)
	}
}

// TestCheckerInterpreterPrecedence validates settings override the default.
func TestCheckerInterpreterPrecedence(t *testing.T) {
	checker := NewCheckerForTests("", foundOnPath, os.Stat, fakePython("3.10.0", nil))
	if got := checker.Interpreter(domain.Settings{}); got == "" {
		t.Fatal("expected platform default")
	}

	checker = NewCheckerForTests("/opt/python", foundOnPath, os.Stat, fakePython("3.10.0", nil))
	if got := checker.Interpreter(domain.Settings{PythonCommand: " /venv/bin/python "}); got != "/venv/bin/python" {
		t.Fatalf("interpreter = %q", got)
	}
	if got := checker.Interpreter(domain.Settings{}); got != "/opt/python" {
		t.Fatalf("interpreter = %q", got)
	}
}

func itemByID(t *testing.T, report domain.DiagnosticReport, id string) domain.DiagnosticItem {
	t.Helper()
	for _, item := range report.Items {
		if item.ID == id {
			return item
		}
	}
	t.Fatalf("diagnostic item not found: %s", id)
	return domain.DiagnosticItem{}
}

// assertStatusByID checks status for one diagnostic item by ID.
func assertStatusByID(t *testing.T, report domain.DiagnosticReport, id string, want domain.DiagnosticStatus) {
	t.Helper()
	if got := itemByID(t, report, id).Status; got != want {
		t.Fatalf("item %s: got %s, want %s", id, got, want)
	}
}
