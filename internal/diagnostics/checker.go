package diagnostics

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"

	"tts2sv-shell/internal/convert"
	"tts2sv-shell/internal/domain"
)

// Diagnostic item IDs.
const (
	IDInterpreter   = "interpreter"
	IDPythonVersion = "python_version"
	IDModule        = "module_tts2sv"
	IDWorkingDir    = "working_dir"
)

// DefaultMinimumPython is the lowest interpreter version tts2sv supports.
const DefaultMinimumPython = "3.9"

const probeTimeout = 15 * time.Second

var versionPattern = regexp.MustCompile(`\d+\.\d+(\.\d+)?`)

// Checker validates the interpreter, the tts2sv package and the working directory.
type Checker struct {
	defaultInterpreter string
	minimumPython      string
	lookPath           func(string) (string, error)
	stat               func(string) (os.FileInfo, error)
	output             func(name string, args ...string) ([]byte, error)
}

// NewChecker builds a checker using real OS dependencies. defaultInterpreter
// is used when the settings leave the interpreter empty.
func NewChecker(defaultInterpreter, minimumPython string) *Checker {
	return &Checker{
		defaultInterpreter: strings.TrimSpace(defaultInterpreter),
		minimumPython:      minimumPython,
		lookPath:           exec.LookPath,
		stat:               os.Stat,
		output:             probe,
	}
}

// Interpreter resolves the executable the checks run against.
func (c *Checker) Interpreter(settings domain.Settings) string {
	if cmd := strings.TrimSpace(settings.PythonCommand); cmd != "" {
		return cmd
	}
	if c.defaultInterpreter != "" {
		return c.defaultInterpreter
	}
	return convert.PlatformInterpreter()
}

// Run executes all checks and returns a combined report. Checks that need a
// working interpreter are skipped when it cannot be found.
func (c *Checker) Run(settings domain.Settings) domain.DiagnosticReport {
	interpreter := c.Interpreter(settings)
	found := c.checkInterpreter(interpreter)

	items := []domain.DiagnosticItem{found}
	if found.Status == domain.DiagnosticStatusPass {
		items = append(items, c.checkVersion(interpreter), c.checkModule(interpreter))
	} else {
		items = append(items,
			skipped(IDPythonVersion, "Python version"),
			skipped(IDModule, "tts2sv package"),
		)
	}
	items = append(items, c.checkWorkingDir(settings.WorkingDirectory))

	hasFailures := false
	for _, item := range items {
		if item.Status == domain.DiagnosticStatusFail {
			hasFailures = true
			break
		}
	}

	return domain.DiagnosticReport{
		GeneratedAt: time.Now().UTC(),
		Interpreter: interpreter,
		HasFailures: hasFailures,
		Items:       items,
	}
}

// checkInterpreter verifies the interpreter is an executable on PATH or a path.
func (c *Checker) checkInterpreter(interpreter string) domain.DiagnosticItem {
	path, err := c.lookPath(interpreter)
	if err != nil {
		return domain.DiagnosticItem{
			ID:      IDInterpreter,
			Name:    "Python interpreter",
			Status:  domain.DiagnosticStatusFail,
			Message: fmt.Sprintf("Interpreter not found: %s", interpreter),
			Hint:    "Install Python 3, set TTS2SV_PYTHON, or pick the interpreter in settings.",
			Fixable: true,
		}
	}

	return domain.DiagnosticItem{
		ID:      IDInterpreter,
		Name:    "Python interpreter",
		Status:  domain.DiagnosticStatusPass,
		Message: fmt.Sprintf("Found at %s", path),
	}
}

// checkVersion parses `--version` output and compares it to the minimum.
func (c *Checker) checkVersion(interpreter string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   IDPythonVersion,
		Name: "Python version",
	}

	out, err := c.output(interpreter, "--version")
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Cannot query version: %v", err)
		item.Hint = "Check that the configured interpreter is a working Python executable."
		return item
	}

	raw := versionPattern.FindString(string(out))
	version, err := semver.NewVersion(raw)
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Unrecognised version output: %q", strings.TrimSpace(string(out)))
		item.Hint = "Check that the configured interpreter is a working Python executable."
		return item
	}

	minimum := c.minimumPython
	if minimum == "" {
		minimum = DefaultMinimumPython
	}
	constraint, err := semver.NewConstraint(">= " + minimum)
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Invalid minimum version %q", minimum)
		return item
	}

	if !constraint.Check(version) {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Python %s is older than %s", version, minimum)
		item.Hint = fmt.Sprintf("Install Python %s or newer.", minimum)
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Python %s", version)
	return item
}

// checkModule verifies the tts2sv package imports in the interpreter.
func (c *Checker) checkModule(interpreter string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   IDModule,
		Name: "tts2sv package",
	}

	if out, err := c.output(interpreter, "-c", "import tts2sv"); err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Cannot import tts2sv: " + lastLine(out, err)
		item.Hint = "Install the tts2sv package into this interpreter."
		item.Fixable = true
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = "tts2sv is importable."
	return item
}

// checkWorkingDir validates the optional working directory.
func (c *Checker) checkWorkingDir(dir string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   IDWorkingDir,
		Name: "Working directory",
	}

	dir = strings.TrimSpace(dir)
	if dir == "" {
		item.Status = domain.DiagnosticStatusPass
		item.Message = "Using the current directory."
		return item
	}

	info, err := c.stat(dir)
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		if errors.Is(err, os.ErrNotExist) {
			item.Message = fmt.Sprintf("Working directory does not exist: %s", dir)
			item.Fixable = true
		} else {
			item.Message = fmt.Sprintf("Cannot access working directory: %s", dir)
		}
		item.Hint = "Create the directory or clear the working directory setting."
		return item
	}
	if !info.IsDir() {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Working directory is not a directory: %s", dir)
		item.Hint = "Point the working directory at a folder."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Directory exists: %s", dir)
	return item
}

func skipped(id, name string) domain.DiagnosticItem {
	return domain.DiagnosticItem{
		ID:      id,
		Name:    name,
		Status:  domain.DiagnosticStatusSkip,
		Message: "Skipped until the interpreter is found.",
	}
}

// lastLine returns the last non-empty output line, falling back to err.
func lastLine(out []byte, err error) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if last := strings.TrimSpace(lines[len(lines)-1]); last != "" {
		return last
	}
	return err.Error()
}

// probe runs a short interpreter command and returns its combined output.
func probe(name string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return out, fmt.Errorf("timed out after %s", probeTimeout)
	}
	return out, err
}

// NewCheckerForTests creates checker with injectable dependencies.
func NewCheckerForTests(
	defaultInterpreter string,
	lookPath func(string) (string, error),
	stat func(string) (os.FileInfo, error),
	output func(name string, args ...string) ([]byte, error),
) *Checker {
	return &Checker{
		defaultInterpreter: defaultInterpreter,
		minimumPython:      DefaultMinimumPython,
		lookPath:           lookPath,
		stat:               stat,
		output:             output,
	}
}
