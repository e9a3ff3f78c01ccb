package dialogs

import (
	"context"
	"fmt"
	"strings"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

var wavDialogFilter = []wailsruntime.FileFilter{
	{
		DisplayName: "WAV Files",
		Pattern:     "*.wav",
	},
	{
		DisplayName: "All files",
		Pattern:     "*",
	},
}

// Wails shows pickers through the desktop runtime. The context is the one
// handed to OnStartup and is read on every call.
type Wails struct {
	Context func() (context.Context, error)
}

// PickInputFile opens a native file dialog for WAV selection.
func (w *Wails) PickInputFile() (string, error) {
	ctx, err := w.context()
	if err != nil {
		return "", err
	}

	path, err := wailsruntime.OpenFileDialog(ctx, wailsruntime.OpenDialogOptions{
		Title:   InputTitle,
		Filters: wavDialogFilter,
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(path), nil
}

// PickOutputPath opens a save dialog for the output prefix.
func (w *Wails) PickOutputPath() (string, error) {
	ctx, err := w.context()
	if err != nil {
		return "", err
	}

	path, err := wailsruntime.SaveFileDialog(ctx, wailsruntime.SaveDialogOptions{
		Title:            OutputTitle,
		DefaultDirectory: DefaultOutputDir(),
		DefaultFilename:  DefaultOutputName,
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(path), nil
}

// PickInterpreterPath opens an unfiltered file dialog for the interpreter.
func (w *Wails) PickInterpreterPath() (string, error) {
	ctx, err := w.context()
	if err != nil {
		return "", err
	}

	path, err := wailsruntime.OpenFileDialog(ctx, wailsruntime.OpenDialogOptions{
		Title: InterpreterTitle,
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(path), nil
}

func (w *Wails) context() (context.Context, error) {
	if w == nil || w.Context == nil {
		return nil, fmt.Errorf("runtime context is not initialized")
	}
	return w.Context()
}

var _ Bridge = (*Wails)(nil)
