package convert

import (
	"testing"

	"tts2sv-shell/internal/domain"
)

// TestLineSinkJoinsChunks checks re-chunking across reads.
func TestLineSinkJoinsChunks(t *testing.T) {
	var got []domain.LogEvent
	sink := LineSink(func(ev domain.LogEvent) { got = append(got, ev) })

	sink(domain.LogText("hel"))
	sink(domain.LogText("lo\nwor"))
	sink(domain.ErrorText("oops\n"))
	sink(domain.LogText("ld\npartial"))
	sink(domain.ErrorText("tail"))
	sink(domain.Complete(domain.RunResult{ExitCode: 0}))

	want := []domain.LogEvent{
		domain.LogText("hello\n"),
		domain.ErrorText("oops\n"),
		domain.LogText("world\n"),
		domain.LogText("partial"),
		domain.ErrorText("tail"),
	}
	if len(got) != len(want)+1 {
		t.Fatalf("events = %+v", got)
	}
	for i, ev := range want {
		if got[i].Kind != ev.Kind || got[i].Text != ev.Text {
			t.Fatalf("event %d = %+v, want %+v", i, got[i], ev)
		}
	}
	if got[len(got)-1].Kind != domain.EventComplete {
		t.Fatalf("last event = %+v, want complete", got[len(got)-1])
	}
}

// TestLineSinkSplitsMultipleLines checks one chunk with many lines.
func TestLineSinkSplitsMultipleLines(t *testing.T) {
	var got []string
	sink := LineSink(func(ev domain.LogEvent) {
		if ev.Kind == domain.EventLog {
			got = append(got, ev.Text)
		}
	})

	sink(domain.LogText("a\nb\nc\n"))
	if len(got) != 3 || got[0] != "a\n" || got[1] != "b\n" || got[2] != "c\n" {
		t.Fatalf("lines = %q", got)
	}
}
