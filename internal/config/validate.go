package config

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ValidationError collects multiple validation failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// validate runs every check and collects the failures.
func validate(cfg *Config) error {
	var errs []string

	if _, err := semver.NewVersion(cfg.Interpreter.MinimumPython); err != nil {
		errs = append(errs, fmt.Sprintf("interpreter.minimum_python %q is not a version: %v", cfg.Interpreter.MinimumPython, err))
	}
	if cfg.Run.EventHistory <= 0 {
		errs = append(errs, "run.event_history must be positive")
	}
	if cfg.UI.Width <= 0 || cfg.UI.Height <= 0 {
		errs = append(errs, "ui.width and ui.height must be positive")
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}
