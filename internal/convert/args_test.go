package convert

import (
	"strings"
	"testing"

	"tts2sv-shell/internal/domain"
)

func sampleOptions() domain.RunOptions {
	return domain.RunOptions{
		WavPath:      "a.wav",
		Text:         "hello",
		OutputPrefix: "out/x",
		BPM:          120,
		Lang:         "en",
		MinNoteBeats: 0.125,
		Timebase:     480,
	}
}

// TestBuildArgs verifies the exact token order for a non-strict run.
func TestBuildArgs(t *testing.T) {
	args := BuildArgs(sampleOptions())
	want := []string{
		"-m", "tts2sv.cli",
		"--wav", "a.wav",
		"--text", "hello",
		"--out-prefix", "out/x",
		"--bpm", "120",
		"--lang", "en",
		"--min-note-beats", "0.125",
		"--timebase", "480",
	}

	assertArgs(t, args, want)
}

// TestBuildArgsStrictAppendsFlag verifies --strict is the final token.
func TestBuildArgsStrictAppendsFlag(t *testing.T) {
	opts := sampleOptions()
	opts.Strict = true

	args := BuildArgs(opts)
	want := append(BuildArgs(sampleOptions()), "--strict")
	assertArgs(t, args, want)
}

// TestBuildArgsFlagCount verifies seven fixed flags regardless of strict.
func TestBuildArgsFlagCount(t *testing.T) {
	for _, strict := range []bool{false, true} {
		opts := sampleOptions()
		opts.Strict = strict

		fixed := 0
		for _, arg := range BuildArgs(opts) {
			if strings.HasPrefix(arg, "--") && arg != "--strict" {
				fixed++
			}
		}
		if fixed != 7 {
			t.Fatalf("strict=%v: fixed flags = %d, want 7", strict, fixed)
		}
		if got := hasArg(BuildArgs(opts), "--strict"); got != strict {
			t.Fatalf("strict=%v: has --strict = %v", strict, got)
		}
		if hasArg(BuildArgs(opts), "--no-strict") {
			t.Fatal("--no-strict must never be emitted")
		}
	}
}

// TestBuildArgsFormatsFractionalBPM checks float formatting.
func TestBuildArgsFormatsFractionalBPM(t *testing.T) {
	opts := sampleOptions()
	opts.BPM = 92.5
	opts.MinNoteBeats = 0.25

	args := BuildArgs(opts)
	if got := argValue(args, "--bpm"); got != "92.5" {
		t.Fatalf("bpm = %q, want 92.5", got)
	}
	if got := argValue(args, "--min-note-beats"); got != "0.25" {
		t.Fatalf("min-note-beats = %q, want 0.25", got)
	}
}

// TestFormatCommandQuotesWhitespace checks the echo rendering.
func TestFormatCommandQuotesWhitespace(t *testing.T) {
	got := FormatCommand("python3", []string{"--text", "hello world", "--wav", "a.wav"})
	want := `python3 --text "hello world" --wav a.wav`
	if got != want {
		t.Fatalf("FormatCommand = %q, want %q", got, want)
	}
}

func assertArgs(t *testing.T, args, want []string) {
	t.Helper()
	if len(args) != len(want) {
		t.Fatalf("args len = %d, want %d (%v)", len(args), len(want), args)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("args[%d] = %q, want %q", i, args[i], want[i])
		}
	}
}

// argValue returns value for key-style CLI args.
func argValue(args []string, key string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == key {
			return args[i+1]
		}
	}
	return ""
}

// hasArg reports whether args include the target flag.
func hasArg(args []string, key string) bool {
	for _, arg := range args {
		if arg == key {
			return true
		}
	}
	return false
}
