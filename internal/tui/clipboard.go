package tui

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
)

// copyText copies text to the system clipboard, falling back to OSC52 for
// SSH and tmux sessions.
func copyText(text string) error {
	if err := clipboard.WriteAll(text); err == nil {
		return nil
	}
	return writeOSC52(os.Stderr, text)
}

// writeOSC52 writes text to the clipboard using the OSC 52 escape sequence.
func writeOSC52(w io.Writer, text string) error {
	encoded := base64.StdEncoding.EncodeToString([]byte(text))
	_, err := fmt.Fprintf(w, "\x1b]52;c;%s\x07", encoded)
	return err
}
