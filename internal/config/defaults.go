package config

import (
	"os"
	"path/filepath"

	"tts2sv-shell/internal/domain"
)

// DefaultSettings returns the form defaults used on first launch.
func DefaultSettings() domain.Settings {
	return domain.Settings{
		BPM:          domain.DefaultBPM,
		Lang:         domain.DefaultLang,
		MinNoteBeats: domain.DefaultMinNoteBeats,
		Timebase:     domain.DefaultTimebase,
	}
}

// DefaultSettingsPath is where the settings store lives for the current user.
func DefaultSettingsPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".tts2sv-shell", "settings.json"), nil
}

// DefaultConfig returns the app configuration used when no file is found.
func DefaultConfig() Config {
	return Config{
		Interpreter: InterpreterConfig{
			Command:       "",
			MinimumPython: "3.9",
		},
		Run: RunConfig{
			LineBuffered:   false,
			EventHistory:   1000,
			ReportArtifact: true,
		},
		UI: UIConfig{
			Title:  "TTS to Singing Voice",
			Width:  900,
			Height: 700,
		},
	}
}
