package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	goruntime "runtime"
	"strings"
	"time"

	"tts2sv-shell/internal/convert"
	"tts2sv-shell/internal/diagnostics"
	"tts2sv-shell/internal/domain"
)

// PackageName is the pip distribution providing the tts2sv module.
const PackageName = "tts2sv"

const installCommandTimeout = 20 * time.Minute

type installOption struct {
	manager  string
	commands [][]string
}

// InstallOrFixDiagnostic applies a remediation for one failed diagnostic item.
func (a *App) InstallOrFixDiagnostic(itemID string) (domain.DiagnosticReport, error) {
	if a.Store == nil {
		return domain.DiagnosticReport{}, fmt.Errorf("settings store is not configured")
	}

	id := strings.TrimSpace(itemID)
	if id == "" {
		return domain.DiagnosticReport{}, fmt.Errorf("diagnostic item id is required")
	}

	settings, err := a.Store.Load()
	if err != nil {
		return domain.DiagnosticReport{}, fmt.Errorf("load settings: %w", err)
	}
	settings = normalizeSettings(settings)

	var fixErr error
	switch id {
	case diagnostics.IDInterpreter:
		fixErr = installPythonForCurrentOS()
	case diagnostics.IDModule:
		interpreter := convert.PlatformInterpreter()
		if a.checker != nil {
			interpreter = a.checker.Interpreter(settings)
		}
		fixErr = installModule(interpreter)
	case diagnostics.IDWorkingDir:
		fixErr = installOrFixWorkingDir(settings.WorkingDirectory)
	default:
		return domain.DiagnosticReport{}, fmt.Errorf("unsupported diagnostic item id: %s", id)
	}

	report := a.refreshDiagnosticsFromSettings(settings)
	if fixErr != nil {
		return report, fixErr
	}
	return report, nil
}

// pythonInstallOptions lists package manager recipes for a Python 3 with pip.
func pythonInstallOptions(goos string) []installOption {
	switch goos {
	case "windows":
		return []installOption{
			{manager: "winget", commands: [][]string{{"winget", "install", "--id", "Python.Python.3.12", "--exact", "--accept-source-agreements", "--accept-package-agreements"}}},
			{manager: "choco", commands: [][]string{{"choco", "install", "python", "-y"}}},
			{manager: "scoop", commands: [][]string{{"scoop", "install", "python"}}},
		}
	case "darwin":
		return []installOption{
			{manager: "brew", commands: [][]string{{"brew", "install", "python"}}},
		}
	default:
		return []installOption{
			{manager: "apt-get", commands: [][]string{{"apt-get", "update"}, {"apt-get", "install", "-y", "python3", "python3-pip"}}},
			{manager: "dnf", commands: [][]string{{"dnf", "install", "-y", "python3", "python3-pip"}}},
			{manager: "pacman", commands: [][]string{{"pacman", "-Sy", "--noconfirm", "python", "python-pip"}}},
			{manager: "zypper", commands: [][]string{{"zypper", "install", "-y", "python3", "python3-pip"}}},
			{manager: "brew", commands: [][]string{{"brew", "install", "python"}}},
		}
	}
}

// moduleInstallOptions lists pip recipes for the tts2sv package, trying a
// plain install, then a user install, then bootstrapping pip first.
func moduleInstallOptions(interpreter string) []installOption {
	return []installOption{
		{manager: interpreter, commands: [][]string{{interpreter, "-m", "pip", "install", "--upgrade", PackageName}}},
		{manager: interpreter, commands: [][]string{{interpreter, "-m", "pip", "install", "--user", "--upgrade", PackageName}}},
		{manager: interpreter, commands: [][]string{
			{interpreter, "-m", "ensurepip", "--upgrade"},
			{interpreter, "-m", "pip", "install", "--user", "--upgrade", PackageName},
		}},
	}
}

func installPythonForCurrentOS() error {
	if err := runFirstSuccessfulInstall(pythonInstallOptions(goruntime.GOOS)); err != nil {
		return fmt.Errorf("install python: %w", err)
	}
	if !commandAvailable(convert.PlatformInterpreter()) {
		return fmt.Errorf("verify python on PATH: %s not found", convert.PlatformInterpreter())
	}
	return nil
}

func installModule(interpreter string) error {
	if err := runFirstSuccessfulInstall(moduleInstallOptions(interpreter)); err != nil {
		return fmt.Errorf("install %s: %w", PackageName, err)
	}
	if err := runCommand(interpreter, "-c", "import "+PackageName); err != nil {
		return fmt.Errorf("verify %s import: %w", PackageName, err)
	}
	return nil
}

func installOrFixWorkingDir(dir string) error {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create working directory %s: %w", dir, err)
	}
	return nil
}

func runFirstSuccessfulInstall(options []installOption) error {
	if len(options) == 0 {
		return fmt.Errorf("no install commands configured for OS %s", goruntime.GOOS)
	}

	errorsByManager := make([]string, 0, len(options))
	atLeastOneManager := false

	for _, option := range options {
		if !commandAvailable(option.manager) {
			continue
		}
		atLeastOneManager = true
		if err := runInstallCommands(option.commands); err == nil {
			return nil
		} else {
			errorsByManager = append(errorsByManager, fmt.Sprintf("%s: %v", option.manager, err))
		}
	}

	if !atLeastOneManager {
		return fmt.Errorf("no supported package manager found for %s", goruntime.GOOS)
	}
	return errors.New(strings.Join(errorsByManager, " | "))
}

func runInstallCommands(commands [][]string) error {
	for _, command := range commands {
		if err := runCommandWithPossibleElevation(command); err != nil {
			return err
		}
	}
	return nil
}

func runCommandWithPossibleElevation(command []string) error {
	if len(command) == 0 {
		return fmt.Errorf("empty command")
	}

	candidates := [][]string{command}
	if goruntime.GOOS == "linux" && requiresElevation(command[0]) {
		if commandAvailable("pkexec") {
			candidates = append(candidates, append([]string{"pkexec"}, command...))
		}
		if commandAvailable("sudo") {
			candidates = append(candidates, append([]string{"sudo", "-n"}, command...))
		}
	}

	attemptErrors := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		if err := runCommand(candidate[0], candidate[1:]...); err == nil {
			return nil
		} else {
			attemptErrors = append(attemptErrors, err.Error())
		}
	}

	return errors.New(strings.Join(attemptErrors, " | "))
}

func runCommand(name string, args ...string) error {
	ctx, cancel := context.WithTimeout(context.Background(), installCommandTimeout)
	defer cancel()

	output, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err == nil {
		return nil
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s timed out after %s", convert.FormatCommand(name, args), installCommandTimeout)
	}

	trimmed := strings.TrimSpace(string(output))
	if len(trimmed) > 500 {
		trimmed = trimmed[:500] + "..."
	}
	if trimmed == "" {
		return fmt.Errorf("%s failed: %w", convert.FormatCommand(name, args), err)
	}
	return fmt.Errorf("%s failed: %w (%s)", convert.FormatCommand(name, args), err, trimmed)
}

func requiresElevation(manager string) bool {
	switch manager {
	case "apt-get", "dnf", "pacman", "zypper":
		return true
	default:
		return false
	}
}

func commandAvailable(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
