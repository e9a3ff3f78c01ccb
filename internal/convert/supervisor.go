package convert

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os/exec"
	goruntime "runtime"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"tts2sv-shell/internal/domain"
)

// chunkSize bounds a single read from the child's pipes.
const chunkSize = 4096

// Sink receives the events of one run in order. Calls for the same run are
// never concurrent.
type Sink func(domain.LogEvent)

// SupervisorConfig is resolved once at startup by the application shell.
type SupervisorConfig struct {
	// DefaultInterpreter is used when RunOptions.PythonCommand is empty.
	DefaultInterpreter string
	// LineBuffered re-chunks stream output into whole lines.
	LineBuffered bool
	Logger       *log.Logger
}

// Supervisor spawns one external tts2sv process per run and streams its output.
type Supervisor struct {
	defaultInterpreter string
	lineBuffered       bool
	logger             *log.Logger
	command            func(name string, args ...string) *exec.Cmd
}

// NewSupervisor constructs a supervisor that spawns real OS processes.
func NewSupervisor(cfg SupervisorConfig) *Supervisor {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Supervisor{
		defaultInterpreter: strings.TrimSpace(cfg.DefaultInterpreter),
		lineBuffered:       cfg.LineBuffered,
		logger:             logger,
		command:            exec.Command,
	}
}

// PlatformInterpreter returns the interpreter name used when nothing is configured.
func PlatformInterpreter() string {
	if goruntime.GOOS == "windows" {
		return "python"
	}
	return "python3"
}

// Interpreter resolves the executable for opts: explicit option, then the
// configured default, then the platform default.
func (s *Supervisor) Interpreter(opts domain.RunOptions) string {
	if cmd := strings.TrimSpace(opts.PythonCommand); cmd != "" {
		return cmd
	}
	if s.defaultInterpreter != "" {
		return s.defaultInterpreter
	}
	return PlatformInterpreter()
}

// Stream starts a run and returns its events. The channel is closed right
// after the complete event; the consumer must drain it.
func (s *Supervisor) Stream(opts domain.RunOptions) <-chan domain.LogEvent {
	events := make(chan domain.LogEvent, 64)
	go func() {
		defer close(events)
		s.RunConversion(opts, func(ev domain.LogEvent) {
			events <- ev
		})
	}()
	return events
}

// RunConversion runs the external tool to completion, forwarding every event
// to sink, and returns the result carried by the complete event. It always
// returns a result; start failures and panics become ExitCodeNotStarted.
func (s *Supervisor) RunConversion(opts domain.RunOptions, sink Sink) domain.RunResult {
	if sink == nil {
		sink = func(domain.LogEvent) {}
	}
	if s.lineBuffered {
		sink = LineSink(sink)
	}

	out := newOrderedSink(sink)
	result, started := s.start(opts, out)
	if !started {
		out.emit(domain.ErrorText(result.ErrorMessage))
	}
	out.emit(domain.Complete(result))
	return result
}

// start spawns and supervises the process. started is false when the
// process never ran, in which case result carries the failure message.
func (s *Supervisor) start(opts domain.RunOptions, out *orderedSink) (result domain.RunResult, started bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Printf("run setup panic: %v", r)
			result = domain.RunResult{
				ExitCode:     domain.ExitCodeNotStarted,
				ErrorMessage: fmt.Sprintf("Unexpected error: %v\n", r),
			}
			started = false
		}
	}()

	name := s.Interpreter(opts)
	args := BuildArgs(opts)
	out.emit(domain.LogText("$ " + FormatCommand(name, args) + "\n"))

	cmd := s.command(name, args...)
	cmd.Dir = strings.TrimSpace(opts.WorkingDirectory)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return startFailure(fmt.Errorf("stdout pipe: %w", err)), false
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return startFailure(fmt.Errorf("stderr pipe: %w", err)), false
	}

	if err := cmd.Start(); err != nil {
		s.logger.Printf("start %s: %v", name, err)
		return startFailure(err), false
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go forward(&wg, stdout, out, domain.LogText)
	go forward(&wg, stderr, out, domain.ErrorText)
	wg.Wait()

	return domain.RunResult{ExitCode: exitCode(cmd.Wait())}, true
}

// startFailure shapes a spawn error into the not-started result.
func startFailure(err error) domain.RunResult {
	return domain.RunResult{
		ExitCode:     domain.ExitCodeNotStarted,
		ErrorMessage: fmt.Sprintf("Failed to start Python process: %v\n", err),
	}
}

// forward copies chunks from r to out until EOF or a read error.
func forward(wg *sync.WaitGroup, r io.Reader, out *orderedSink, wrap func(string) domain.LogEvent) {
	defer wg.Done()
	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			out.emit(wrap(string(buf[:n])))
		}
		if err != nil {
			return
		}
	}
}

// exitCode maps Wait's error to a numeric code. Signal deaths report
// 128+signal so the not-started sentinel stays unambiguous.
func exitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return 1
	}
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return 128 + int(status.Signal())
	}
	if code := exitErr.ExitCode(); code >= 0 {
		return code
	}
	return 1
}

// FormatCommand renders a command line for the echo event, quoting tokens
// that would otherwise be ambiguous.
func FormatCommand(name string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, quoteToken(name))
	for _, arg := range args {
		parts = append(parts, quoteToken(arg))
	}
	return strings.Join(parts, " ")
}

func quoteToken(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n\"'") {
		return strconv.Quote(s)
	}
	return s
}

// orderedSink serialises emits from the reader goroutines of one run.
type orderedSink struct {
	mu   sync.Mutex
	next Sink
}

func newOrderedSink(next Sink) *orderedSink {
	return &orderedSink{next: next}
}

func (o *orderedSink) emit(ev domain.LogEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.next(ev)
}

// NewSupervisorForTests constructs a supervisor with an injectable command factory.
func NewSupervisorForTests(cfg SupervisorConfig, command func(name string, args ...string) *exec.Cmd) *Supervisor {
	s := NewSupervisor(cfg)
	if command != nil {
		s.command = command
	}
	return s
}
