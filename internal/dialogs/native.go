package dialogs

import (
	"errors"
	"os"
	"strings"

	"github.com/sqweek/dialog"
)

// Native shows OS pickers without a desktop runtime, for the terminal UI.
type Native struct {
	// StartDir seeds the open dialogs; empty means the current directory.
	StartDir string
}

// PickInputFile opens a WAV file picker.
func (n *Native) PickInputFile() (string, error) {
	return cancelled(dialog.File().
		Filter("WAV Files", "wav").
		Filter("All files", "*").
		SetStartDir(n.startDir()).
		Title(InputTitle).
		Load())
}

// PickOutputPath opens a save picker rooted at <cwd>/out.
func (n *Native) PickOutputPath() (string, error) {
	return cancelled(dialog.File().
		SetStartDir(DefaultOutputDir()).
		Title(OutputTitle).
		Save())
}

// PickInterpreterPath opens an unfiltered file picker.
func (n *Native) PickInterpreterPath() (string, error) {
	return cancelled(dialog.File().
		SetStartDir(n.startDir()).
		Title(InterpreterTitle).
		Load())
}

func (n *Native) startDir() string {
	if dir := strings.TrimSpace(n.StartDir); dir != "" {
		return dir
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}

// cancelled maps the library's cancel error to an empty result.
func cancelled(path string, err error) (string, error) {
	if errors.Is(err, dialog.ErrCancelled) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(path), nil
}

var _ Bridge = (*Native)(nil)
