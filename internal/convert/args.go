package convert

import (
	"strconv"

	"tts2sv-shell/internal/domain"
)

// EntryModule is the Python module executed with -m.
const EntryModule = "tts2sv.cli"

// BuildArgs builds tts2sv CLI args in a fixed order. Callers guarantee the
// required fields are present; nothing is validated here.
func BuildArgs(opts domain.RunOptions) []string {
	args := []string{
		"-m", EntryModule,
		"--wav", opts.WavPath,
		"--text", opts.Text,
		"--out-prefix", opts.OutputPrefix,
		"--bpm", formatFloat(opts.BPM),
		"--lang", opts.Lang,
		"--min-note-beats", formatFloat(opts.MinNoteBeats),
		"--timebase", strconv.Itoa(opts.Timebase),
	}

	if opts.Strict {
		args = append(args, "--strict")
	}

	return args
}

// formatFloat renders the shortest decimal that round-trips, so 120 stays "120".
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
