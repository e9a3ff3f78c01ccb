// Package dialogs exposes the three file pickers used by the form.
package dialogs

import (
	"os"
	"path/filepath"
)

// Titles shown on the native pickers.
const (
	InputTitle       = "Select WAV file"
	OutputTitle      = "Select output prefix (files will share this name)"
	InterpreterTitle = "Select Python executable"
)

// DefaultOutputName is the suggested file name for the output prefix.
const DefaultOutputName = "tts_line"

// Bridge picks paths. A cancelled dialog returns ("", nil); returned paths
// are not checked beyond what the OS dialog enforces.
type Bridge interface {
	PickInputFile() (string, error)
	PickOutputPath() (string, error)
	PickInterpreterPath() (string, error)
}

// DefaultOutputDir returns <cwd>/out, the suggested directory for the prefix.
func DefaultOutputDir() string {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	return filepath.Join(cwd, "out")
}

// DefaultOutputPrefix returns the suggested full output prefix.
func DefaultOutputPrefix() string {
	return filepath.Join(DefaultOutputDir(), DefaultOutputName)
}
