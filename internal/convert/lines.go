package convert

import (
	"strings"

	"tts2sv-shell/internal/domain"
)

// LineSink wraps next so log and error text is delivered in whole lines.
// Partial lines are held per stream and flushed, stdout first, before the
// complete event is forwarded.
func LineSink(next Sink) Sink {
	var stdout, stderr strings.Builder

	return func(ev domain.LogEvent) {
		switch ev.Kind {
		case domain.EventLog:
			emitLines(&stdout, ev.Text, domain.LogText, next)
		case domain.EventError:
			emitLines(&stderr, ev.Text, domain.ErrorText, next)
		case domain.EventComplete:
			flushPartial(&stdout, domain.LogText, next)
			flushPartial(&stderr, domain.ErrorText, next)
			next(ev)
		default:
			next(ev)
		}
	}
}

func emitLines(pending *strings.Builder, chunk string, wrap func(string) domain.LogEvent, next Sink) {
	pending.WriteString(chunk)
	buffered := pending.String()

	last := strings.LastIndexByte(buffered, '\n')
	if last < 0 {
		return
	}

	complete, rest := buffered[:last+1], buffered[last+1:]
	pending.Reset()
	pending.WriteString(rest)

	for _, line := range strings.SplitAfter(complete, "\n") {
		if line != "" {
			next(wrap(line))
		}
	}
}

func flushPartial(pending *strings.Builder, wrap func(string) domain.LogEvent, next Sink) {
	if pending.Len() == 0 {
		return
	}
	next(wrap(pending.String()))
	pending.Reset()
}
