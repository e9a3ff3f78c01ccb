package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Environment variables read once at startup.
const (
	EnvPython       = "TTS2SV_PYTHON"
	EnvWorkDir      = "TTS2SV_WORKDIR"
	EnvLineBuffered = "TTS2SV_LINE_BUFFERED"
)

// Load discovers a config file relative to the current directory.
func Load() (*Config, string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("getting working directory: %w", err)
	}
	return LoadFrom(cwd)
}

// LoadFrom merges the first discovered config file over defaults, applies
// environment overrides and validates the result. It also returns the path
// of the file used, or "" in defaults-only mode.
func LoadFrom(dir string) (*Config, string, error) {
	cfg := DefaultConfig()

	path := discoverConfigPath(dir)
	if path != "" {
		override, err := loadFromFile(path)
		if err != nil {
			return nil, "", fmt.Errorf("loading %s: %w", path, err)
		}
		merge(&cfg, override)
	}

	applyEnvOverrides(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, path, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, path, nil
}

// discoverConfigPath returns the first existing candidate, local files first.
func discoverConfigPath(dir string) string {
	candidates := []string{
		filepath.Join(dir, "tts2sv.yaml"),
		filepath.Join(dir, "tts2sv.toml"),
	}
	if home, err := os.UserHomeDir(); err == nil {
		userDir := filepath.Join(home, ".config", "tts2sv")
		candidates = append(candidates,
			filepath.Join(userDir, "config.yaml"),
			filepath.Join(userDir, "config.toml"),
		)
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

// loadFromFile decodes YAML or TOML depending on the extension.
func loadFromFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	var cfg fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("parsing TOML: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing YAML: %w", err)
		}
	}
	return &cfg, nil
}

// merge applies non-zero override fields onto base.
func merge(base *Config, override *fileConfig) {
	if override.Interpreter.Command != "" {
		base.Interpreter.Command = override.Interpreter.Command
	}
	if override.Interpreter.WorkingDirectory != "" {
		base.Interpreter.WorkingDirectory = override.Interpreter.WorkingDirectory
	}
	if override.Interpreter.MinimumPython != "" {
		base.Interpreter.MinimumPython = override.Interpreter.MinimumPython
	}

	if override.Run.LineBuffered != nil {
		base.Run.LineBuffered = *override.Run.LineBuffered
	}
	if override.Run.EventHistory != 0 {
		base.Run.EventHistory = override.Run.EventHistory
	}
	if override.Run.ReportArtifact != nil {
		base.Run.ReportArtifact = *override.Run.ReportArtifact
	}

	if override.UI.Title != "" {
		base.UI.Title = override.UI.Title
	}
	if override.UI.Width != 0 {
		base.UI.Width = override.UI.Width
	}
	if override.UI.Height != 0 {
		base.UI.Height = override.UI.Height
	}
}

// applyEnvOverrides applies TTS2SV_* environment variables on top of the config.
func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvPython)); v != "" {
		cfg.Interpreter.Command = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvWorkDir)); v != "" {
		cfg.Interpreter.WorkingDirectory = v
	}
	if v := os.Getenv(EnvLineBuffered); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Run.LineBuffered = b
		} else {
			fmt.Fprintf(os.Stderr, "warning: %s=%q is not a valid boolean, ignoring\n", EnvLineBuffered, v)
		}
	}
}
