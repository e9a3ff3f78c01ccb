package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// isolate points HOME at an empty directory and clears TTS2SV_* variables.
func isolate(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv(EnvPython, "")
	t.Setenv(EnvWorkDir, "")
	t.Setenv(EnvLineBuffered, "")
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestLoadFromDefaultsOnly(t *testing.T) {
	isolate(t)

	cfg, path, err := LoadFrom(t.TempDir())
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if path != "" {
		t.Fatalf("path = %q, want defaults-only", path)
	}
	if *cfg != DefaultConfig() {
		t.Fatalf("cfg = %+v, want defaults", *cfg)
	}
}

func TestLoadFromYAML(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "tts2sv.yaml"), `
interpreter:
  command: /venv/bin/python
  minimum_python: "3.10"
run:
  line_buffered: true
  report_artifacts: false
`)

	cfg, path, err := LoadFrom(dir)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if filepath.Base(path) != "tts2sv.yaml" {
		t.Fatalf("path = %q", path)
	}
	if cfg.Interpreter.Command != "/venv/bin/python" || cfg.Interpreter.MinimumPython != "3.10" {
		t.Fatalf("interpreter = %+v", cfg.Interpreter)
	}
	if !cfg.Run.LineBuffered || cfg.Run.ReportArtifact {
		t.Fatalf("run = %+v", cfg.Run)
	}
	if cfg.Run.EventHistory != DefaultConfig().Run.EventHistory {
		t.Fatalf("event history not defaulted: %d", cfg.Run.EventHistory)
	}
}

func TestLoadFromTOML(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "tts2sv.toml"), `
[interpreter]
command = "py"

[ui]
title = "Shell"
width = 1024
`)

	cfg, _, err := LoadFrom(dir)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Interpreter.Command != "py" || cfg.UI.Title != "Shell" || cfg.UI.Width != 1024 {
		t.Fatalf("cfg = %+v", *cfg)
	}
	if cfg.UI.Height != DefaultConfig().UI.Height {
		t.Fatalf("height = %d", cfg.UI.Height)
	}
}

func TestLoadFromPrefersLocalYAML(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "tts2sv.yaml"), "interpreter:\n  command: from-yaml\n")
	writeFile(t, filepath.Join(dir, "tts2sv.toml"), "[interpreter]\ncommand = \"from-toml\"\n")

	cfg, _, err := LoadFrom(dir)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Interpreter.Command != "from-yaml" {
		t.Fatalf("command = %q", cfg.Interpreter.Command)
	}
}

func TestLoadFromUserConfig(t *testing.T) {
	isolate(t)
	home := os.Getenv("HOME")
	writeFile(t, filepath.Join(home, ".config", "tts2sv", "config.toml"), "[run]\nevent_history = 50\n")

	cfg, path, err := LoadFrom(t.TempDir())
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if !strings.HasSuffix(path, "config.toml") || cfg.Run.EventHistory != 50 {
		t.Fatalf("path = %q, cfg = %+v", path, cfg.Run)
	}
}

func TestEnvOverridesBeatFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "tts2sv.yaml"), "interpreter:\n  command: from-file\nrun:\n  line_buffered: false\n")
	t.Setenv(EnvPython, "from-env")
	t.Setenv(EnvWorkDir, "/work")
	t.Setenv(EnvLineBuffered, "true")

	cfg, _, err := LoadFrom(dir)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Interpreter.Command != "from-env" || cfg.Interpreter.WorkingDirectory != "/work" || !cfg.Run.LineBuffered {
		t.Fatalf("cfg = %+v", *cfg)
	}
}

func TestInvalidLineBufferedEnvIgnored(t *testing.T) {
	isolate(t)
	t.Setenv(EnvLineBuffered, "maybe")

	cfg, _, err := LoadFrom(t.TempDir())
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Run.LineBuffered {
		t.Fatal("invalid boolean should be ignored")
	}
}

func TestValidationCollectsAllErrors(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "tts2sv.yaml"), `
interpreter:
  minimum_python: "three"
run:
  event_history: -5
ui:
  width: -1
`)

	_, _, err := LoadFrom(dir)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if len(verr.Errors) != 3 {
		t.Fatalf("errors = %v, want 3", verr.Errors)
	}
}

func TestLoadFromMalformedFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "tts2sv.toml"), "[interpreter\n")

	if _, _, err := LoadFrom(dir); err == nil || !strings.Contains(err.Error(), "parsing TOML") {
		t.Fatalf("err = %v, want TOML parse error", err)
	}
}
