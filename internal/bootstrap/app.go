package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"sync"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"tts2sv-shell/internal/bridge"
	"tts2sv-shell/internal/config"
	"tts2sv-shell/internal/convert"
	"tts2sv-shell/internal/diagnostics"
	"tts2sv-shell/internal/dialogs"
	"tts2sv-shell/internal/domain"
	"tts2sv-shell/internal/jobs"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// EventName is the runtime event carrying every run event to the window.
const EventName = "tts2sv:event"

// Snapshot is the controller state the window renders after a reload.
type Snapshot struct {
	State   domain.RunState `json:"state"`
	Log     string          `json:"log"`
	LastSeq int64           `json:"lastSeq"`
}

// App wires configuration, the controller, the bridge and UI runtime callbacks.
type App struct {
	Settings    domain.Settings
	Store       config.Store
	Config      config.Config
	Controller  *jobs.Controller
	Conversion  bridge.Conversion
	Dialogs     dialogs.Bridge
	Diagnostics domain.DiagnosticReport
	assets      fs.FS
	checker     *diagnostics.Checker
	logger      *log.Logger

	mu          sync.Mutex
	active      domain.RunOptions
	events      *jobs.EventBus
	runtimeCtx  context.Context
	unsubscribe func()
}

// New builds the application with persisted settings and startup diagnostics.
func New(cfg config.Config) (*App, error) {
	return NewWithAssets(cfg, nil)
}

// NewWithAssets builds the application and optionally configures embedded frontend assets.
func NewWithAssets(cfg config.Config, assets fs.FS) (*App, error) {
	settingsPath, err := config.DefaultSettingsPath()
	if err != nil {
		return nil, fmt.Errorf("resolve settings path: %w", err)
	}

	store := config.NewJSONStore(settingsPath)
	settings, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	sup := convert.NewSupervisor(convert.SupervisorConfig{
		DefaultInterpreter: cfg.Interpreter.Command,
		LineBuffered:       cfg.Run.LineBuffered,
	})
	checker := diagnostics.NewChecker(cfg.Interpreter.Command, cfg.Interpreter.MinimumPython)

	app := newApp(cfg, store, settings, bridge.NewLocal(sup), checker)
	app.assets = assets
	app.Diagnostics = checker.Run(settings)
	return app, nil
}

// newApp assembles an App around an existing conversion and subscribes to it.
func newApp(cfg config.Config, store config.Store, settings domain.Settings, conv bridge.Conversion, checker *diagnostics.Checker) *App {
	a := &App{
		Settings:   settings,
		Store:      store,
		Config:     cfg,
		Controller: jobs.NewController(),
		Conversion: conv,
		checker:    checker,
		logger:     log.Default(),
		events:     jobs.NewEventBus(cfg.Run.EventHistory),
	}
	a.Dialogs = &dialogs.Wails{Context: a.runtimeContext}
	a.unsubscribe = conv.Subscribe(a.handleEvent)
	return a
}

// Run starts the Wails desktop application and binds backend methods.
func (a *App) Run() error {
	assetOptions := &assetserver.Options{}
	if a.assets != nil {
		assetOptions.Assets = a.assets
	} else {
		assetOptions.Handler = http.FileServer(http.Dir("./frontend"))
	}

	return wails.Run(&options.App{
		Title:       a.Config.UI.Title,
		Width:       a.Config.UI.Width,
		Height:      a.Config.UI.Height,
		AssetServer: assetOptions,
		OnStartup:   a.Startup,
		OnShutdown: func(ctx context.Context) {
			a.mu.Lock()
			defer a.mu.Unlock()
			a.runtimeCtx = nil
			if a.unsubscribe != nil {
				a.unsubscribe()
			}
		},
		Bind: []interface{}{a},
	})
}

// Startup stores Wails runtime context for dialogs and push events.
func (a *App) Startup(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.runtimeCtx = ctx
}

// PickInputFile opens the WAV picker.
func (a *App) PickInputFile() (string, error) {
	return a.Dialogs.PickInputFile()
}

// PickOutputPath opens the save dialog for the output prefix.
func (a *App) PickOutputPath() (string, error) {
	return a.Dialogs.PickOutputPath()
}

// PickInterpreterPath opens the interpreter picker.
func (a *App) PickInterpreterPath() (string, error) {
	return a.Dialogs.PickInterpreterPath()
}

// DefaultForm returns a form seeded with persisted settings.
func (a *App) DefaultForm() domain.FormInput {
	a.mu.Lock()
	defer a.mu.Unlock()
	return jobs.FormFromSettings(a.Settings)
}

// RunConversion validates form and runs the external tool, blocking until
// the run completes. Events stream to the window while it runs. A
// validation failure returns immediately without spawning anything.
func (a *App) RunConversion(form domain.FormInput) (domain.RunResult, error) {
	opts, err := a.Controller.Submit(form)
	if err != nil {
		return domain.RunResult{ExitCode: domain.ExitCodeNotStarted, ErrorMessage: err.Error()}, err
	}
	if opts.WorkingDirectory == "" {
		opts.WorkingDirectory = strings.TrimSpace(a.Config.Interpreter.WorkingDirectory)
	}

	a.mu.Lock()
	a.active = opts
	a.mu.Unlock()

	a.rememberSettings(jobs.SettingsFromOptions(opts))
	return a.Conversion.RunConversion(opts), nil
}

// ClearLog empties the visible log.
func (a *App) ClearLog() Snapshot {
	a.Controller.ClearLog()
	return a.Snapshot()
}

// Snapshot returns the current state and visible log.
func (a *App) Snapshot() Snapshot {
	return Snapshot{
		State:   a.Controller.State(),
		Log:     a.Controller.Log(),
		LastSeq: a.events.LastSeq(),
	}
}

// JobEvents returns all events with sequence greater than sinceSeq.
func (a *App) JobEvents(sinceSeq int64) []jobs.Event {
	return a.events.Since(sinceSeq)
}

// GetSettings loads and returns the latest persisted settings.
func (a *App) GetSettings() (domain.Settings, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	a.mu.Lock()
	a.Settings = settings
	a.mu.Unlock()

	return settings, nil
}

// SaveSettings normalizes and persists settings, then refreshes diagnostics.
func (a *App) SaveSettings(settings domain.Settings) (domain.Settings, error) {
	normalized := normalizeSettings(settings)
	if err := a.Store.Save(normalized); err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}

	a.refreshDiagnosticsFromSettings(normalized)
	return normalized, nil
}

// GetDiagnostics returns the latest cached diagnostics report.
func (a *App) GetDiagnostics() domain.DiagnosticReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Diagnostics
}

// RefreshDiagnostics reloads settings and reruns environment checks.
func (a *App) RefreshDiagnostics() (domain.DiagnosticReport, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.DiagnosticReport{}, fmt.Errorf("load settings: %w", err)
	}
	return a.refreshDiagnosticsFromSettings(settings), nil
}

// OpenOutputFolder opens the folder holding path, or the last run's output
// prefix when path is empty.
func (a *App) OpenOutputFolder(path string) error {
	target := strings.TrimSpace(path)
	if target == "" {
		a.mu.Lock()
		target = a.active.OutputPrefix
		workDir := a.active.WorkingDirectory
		a.mu.Unlock()
		if target != "" && !filepath.IsAbs(target) && workDir != "" {
			target = filepath.Join(workDir, target)
		}
	}
	if target == "" {
		return fmt.Errorf("output path is empty")
	}

	openPath := target
	info, err := os.Stat(target)
	switch {
	case err == nil && info.IsDir():
	case err == nil || errors.Is(err, os.ErrNotExist):
		openPath = filepath.Dir(target)
	default:
		return fmt.Errorf("resolve output path: %w", err)
	}
	if _, err := os.Stat(openPath); err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	return openInFileManager(openPath)
}

// handleEvent renders one bridge event into the controller, history and window.
func (a *App) handleEvent(runID string, ev domain.LogEvent) {
	if ev.Kind == domain.EventComplete && ev.Result != nil && ev.Result.Succeeded() && a.Config.Run.ReportArtifact {
		a.mu.Lock()
		opts := a.active
		a.mu.Unlock()
		for _, artifact := range convert.ExpectedArtifacts(opts.OutputPrefix, opts.WorkingDirectory) {
			if artifact.Exists {
				a.publish(runID, domain.LogText("Wrote "+artifact.Path+"\n"))
			}
		}
	}
	a.publish(runID, ev)
}

// publish stores event history and emits runtime push notifications.
func (a *App) publish(runID string, ev domain.LogEvent) {
	a.Controller.Apply(ev)
	published := a.events.Publish(jobs.NewEvent(runID, ev))

	a.mu.Lock()
	ctx := a.runtimeCtx
	a.mu.Unlock()
	if ctx != nil {
		wailsruntime.EventsEmit(ctx, EventName, published)
	}
}

// rememberSettings persists the reusable parts of a submitted form.
func (a *App) rememberSettings(settings domain.Settings) {
	if err := a.Store.Save(settings); err != nil {
		a.logger.Printf("save settings: %v", err)
		return
	}
	a.mu.Lock()
	a.Settings = settings
	a.mu.Unlock()
}

func (a *App) refreshDiagnosticsFromSettings(settings domain.Settings) domain.DiagnosticReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Settings = settings
	if a.checker != nil {
		a.Diagnostics = a.checker.Run(settings)
	}
	return a.Diagnostics
}

// runtimeContext returns current Wails runtime context for dialog APIs.
func (a *App) runtimeContext() (context.Context, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.runtimeCtx == nil {
		return nil, fmt.Errorf("runtime context is not initialized")
	}
	return a.runtimeCtx, nil
}

// normalizeSettings trims user inputs and fills numeric defaults.
func normalizeSettings(settings domain.Settings) domain.Settings {
	settings.PythonCommand = strings.TrimSpace(settings.PythonCommand)
	settings.WorkingDirectory = strings.TrimSpace(settings.WorkingDirectory)
	settings.Lang = strings.TrimSpace(settings.Lang)

	defaults := config.DefaultSettings()
	if settings.Lang == "" {
		settings.Lang = defaults.Lang
	}
	if settings.BPM <= 0 {
		settings.BPM = defaults.BPM
	}
	if settings.MinNoteBeats <= 0 {
		settings.MinNoteBeats = defaults.MinNoteBeats
	}
	if settings.Timebase <= 0 {
		settings.Timebase = defaults.Timebase
	}
	return settings
}

// openInFileManager launches the platform file explorer for the provided path.
func openInFileManager(path string) error {
	var cmd *exec.Cmd
	switch goruntime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("explorer", filepath.Clean(path))
	default:
		cmd = exec.Command("xdg-open", path)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch file manager: %w", err)
	}
	return nil
}
