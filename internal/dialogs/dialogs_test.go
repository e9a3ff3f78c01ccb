package dialogs

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sqweek/dialog"
)

// TestCancelledMapsToEmptyPath checks the cancel contract.
func TestCancelledMapsToEmptyPath(t *testing.T) {
	path, err := cancelled("", dialog.ErrCancelled)
	if err != nil || path != "" {
		t.Fatalf("cancelled = (%q, %v), want empty", path, err)
	}

	path, err = cancelled(" /tmp/a.wav ", nil)
	if err != nil || path != "/tmp/a.wav" {
		t.Fatalf("picked = (%q, %v)", path, err)
	}

	boom := errors.New("no display")
	if _, err := cancelled("", boom); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

// TestDefaultOutputPrefix checks the suggested save location.
func TestDefaultOutputPrefix(t *testing.T) {
	got := DefaultOutputPrefix()
	if filepath.Base(got) != DefaultOutputName {
		t.Fatalf("prefix = %q", got)
	}
	if !strings.HasSuffix(filepath.Dir(got), "out") {
		t.Fatalf("dir = %q, want .../out", filepath.Dir(got))
	}
}

// TestWailsRequiresRuntimeContext checks calls before startup fail cleanly.
func TestWailsRequiresRuntimeContext(t *testing.T) {
	w := &Wails{}
	if _, err := w.PickInputFile(); err == nil {
		t.Fatal("expected error without runtime context")
	}
	if _, err := w.PickOutputPath(); err == nil {
		t.Fatal("expected error without runtime context")
	}
	if _, err := w.PickInterpreterPath(); err == nil {
		t.Fatal("expected error without runtime context")
	}
}
