package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tts2sv-shell/internal/bootstrap"
	"tts2sv-shell/internal/bridge"
	"tts2sv-shell/internal/config"
	"tts2sv-shell/internal/convert"
	"tts2sv-shell/internal/diagnostics"
	"tts2sv-shell/internal/dialogs"
	"tts2sv-shell/internal/domain"
	"tts2sv-shell/internal/jobs"
	"tts2sv-shell/internal/mcpserver"
	"tts2sv-shell/internal/tui"
)

var version = "0.1.0"

// Exit statuses for runs the child never answered for.
const (
	exitUsage      = 2
	exitNotStarted = 127
)

var (
	cfg        *config.Config
	configPath string
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("tts2sv-shell: ")

	if err := rootCmd.Execute(); err != nil {
		var exitErr exitCodeError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr))
		}
		log.Print(err)
		os.Exit(1)
	}
}

// exitCodeError carries a child exit status out of a command.
type exitCodeError int

func (e exitCodeError) Error() string {
	return fmt.Sprintf("exit code %d", int(e))
}

var rootCmd = &cobra.Command{
	Use:   "tts2sv-shell",
	Short: "Desktop and terminal front ends for the tts2sv converter",
	Long: `tts2sv-shell collects a WAV recording, its text and a few musical
parameters, runs "python -m tts2sv.cli" and streams the tool's output.

Without a subcommand the desktop window opens.`,
	Version:           version,
	PersistentPreRunE: loadConfig,
	RunE:              runGUI,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

var guiCmd = &cobra.Command{
	Use:   "gui",
	Short: "Open the desktop window",
	RunE:  runGUI,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the terminal UI",
	RunE:  runTUI,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one conversion and stream its output",
	Long: `Run one conversion headless. The tool's stdout and stderr are
forwarded as they arrive and the command exits with the tool's exit code.

Examples:
  tts2sv-shell run --wav voice.wav --text "hello world" --out-prefix out/line
  tts2sv-shell run --wav voice.wav --text "la la" --out-prefix out/la --bpm 90 --strict`,
	RunE: runConversion,
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve conversions over the Model Context Protocol",
	RunE:  runMCP,
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the interpreter, the tts2sv package and the working directory",
	RunE:  runDoctor,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

var (
	form       domain.FormInput
	httpAddr   string
	doctorJSON bool
)

func init() {
	runCmd.Flags().StringVar(&form.WavPath, "wav", "", "Input WAV recording")
	runCmd.Flags().StringVar(&form.Text, "text", "", "Words spoken in the recording")
	runCmd.Flags().StringVar(&form.OutputPrefix, "out-prefix", "", "Output path without extension")
	runCmd.Flags().StringVar(&form.BPM, "bpm", "120", "Tempo in beats per minute")
	runCmd.Flags().StringVar(&form.Lang, "lang", domain.DefaultLang, "Language code of the text")
	runCmd.Flags().StringVar(&form.MinNoteBeats, "min-note-beats", "0.125", "Shortest note length in beats")
	runCmd.Flags().StringVar(&form.Timebase, "timebase", "480", "MIDI ticks per quarter note")
	runCmd.Flags().BoolVar(&form.Strict, "strict", false, "Fail when syllables and notes do not line up")
	runCmd.Flags().StringVar(&form.PythonCommand, "python", "", "Interpreter to run (default from config or TTS2SV_PYTHON)")
	runCmd.Flags().StringVar(&form.WorkingDirectory, "workdir", "", "Directory to run the tool in")

	mcpCmd.Flags().StringVar(&httpAddr, "http", "", "Serve streamable HTTP on this address instead of stdio")
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "Print the report as JSON")

	rootCmd.AddCommand(guiCmd, tuiCmd, runCmd, mcpCmd, doctorCmd, versionCmd)
}

func loadConfig(_ *cobra.Command, _ []string) error {
	loaded, path, err := config.Load()
	if err != nil {
		return err
	}
	cfg, configPath = loaded, path
	return nil
}

func newSupervisor() *convert.Supervisor {
	return convert.NewSupervisor(convert.SupervisorConfig{
		DefaultInterpreter: cfg.Interpreter.Command,
		LineBuffered:       cfg.Run.LineBuffered,
	})
}

func newChecker() *diagnostics.Checker {
	return diagnostics.NewChecker(cfg.Interpreter.Command, cfg.Interpreter.MinimumPython)
}

func runGUI(_ *cobra.Command, _ []string) error {
	app, err := bootstrap.New(*cfg)
	if err != nil {
		return fmt.Errorf("bootstrap app: %w", err)
	}
	if err := app.Run(); err != nil {
		return fmt.Errorf("run app: %w", err)
	}
	return nil
}

func runTUI(_ *cobra.Command, _ []string) error {
	settings := config.DefaultSettings()
	if path, err := config.DefaultSettingsPath(); err == nil {
		if loaded, err := config.NewJSONStore(path).Load(); err == nil {
			settings = loaded
		} else {
			log.Printf("load settings: %v", err)
		}
	}

	seed := jobs.FormFromSettings(settings)
	if seed.WorkingDirectory == "" {
		seed.WorkingDirectory = cfg.Interpreter.WorkingDirectory
	}

	startDir, _ := os.Getwd()
	return tui.Run(bridge.NewLocal(newSupervisor()), &dialogs.Native{StartDir: startDir}, seed)
}

func runConversion(cmd *cobra.Command, _ []string) error {
	if form.WorkingDirectory == "" {
		form.WorkingDirectory = cfg.Interpreter.WorkingDirectory
	}

	ctrl := jobs.NewController()
	opts, err := ctrl.Submit(form)
	if err != nil {
		var invalid *jobs.ValidationError
		if errors.As(err, &invalid) {
			fmt.Fprint(cmd.ErrOrStderr(), ctrl.Log())
			return exitCodeError(exitUsage)
		}
		return err
	}

	result := newSupervisor().RunConversion(opts, streamTo(cmd.OutOrStdout(), cmd.ErrOrStderr()))
	switch {
	case !result.Started():
		return exitCodeError(exitNotStarted)
	case result.ExitCode != 0:
		return exitCodeError(result.ExitCode)
	}
	return nil
}

// streamTo forwards log text to stdout and error text to stderr.
func streamTo(stdout, stderr io.Writer) convert.Sink {
	return func(ev domain.LogEvent) {
		switch ev.Kind {
		case domain.EventLog:
			fmt.Fprint(stdout, ev.Text)
		case domain.EventError:
			fmt.Fprint(stderr, ev.Text)
		}
	}
}

func runMCP(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if configPath != "" {
		log.Printf("using config %s", configPath)
	}
	server := mcpserver.NewServer(newSupervisor(), newChecker(), version)
	return mcpserver.Serve(ctx, server, httpAddr)
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	settings := config.DefaultSettings()
	if path, err := config.DefaultSettingsPath(); err == nil {
		if loaded, err := config.NewJSONStore(path).Load(); err == nil {
			settings = loaded
		}
	}
	if settings.WorkingDirectory == "" {
		settings.WorkingDirectory = cfg.Interpreter.WorkingDirectory
	}

	report := newChecker().Run(settings)
	if doctorJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		fmt.Fprint(cmd.OutOrStdout(), mcpserver.FormatReport(report))
	}

	if report.HasFailures {
		return exitCodeError(1)
	}
	return nil
}
