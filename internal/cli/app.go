// Package cli implements the non-interactive commands: printing the menu,
// opening and resolving templates, listing the catalog and moving the
// configuration in and out of the store.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/dvinay/custom-search-shortcuts/internal/catalog"
	"github.com/dvinay/custom-search-shortcuts/internal/config"
	"github.com/dvinay/custom-search-shortcuts/internal/host"
	"github.com/dvinay/custom-search-shortcuts/internal/logging"
	"github.com/dvinay/custom-search-shortcuts/internal/store"
	"github.com/dvinay/custom-search-shortcuts/internal/types"
)

// Options control how Open prepares the application
type Options struct {
	LogLevel  string // overrides settings when set
	LogFormat string

	// LogToFile sends log output to config.LogFile, for the TUI
	LogToFile bool

	// Watch reports writes made by other processes to the file store
	Watch bool
}

// EnvironmentPrompt asks the user to pick an environment for a template.
// It returns "" for the variable defaults.
type EnvironmentPrompt func(templateName string, environments []types.Environment) (string, error)

// App bundles the collaborators shared by every command
type App struct {
	Settings *config.Settings
	Logger   *zap.Logger
	Store    store.Store
	Catalog  *catalog.Manager
	Browser  host.Opener
	Out      io.Writer

	// Prompt is nil when stdin is not a terminal
	Prompt EnvironmentPrompt

	closers []func() error
}

// Open initializes the configuration directory, the logger and the store
func Open(ctx context.Context, opts Options) (*App, error) {
	if err := config.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize config: %w", err)
	}

	settings, err := config.LoadSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	level := settings.Log.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	format := settings.Log.Format
	if opts.LogFormat != "" {
		format = opts.LogFormat
	}

	var closers []func() error
	var logger *zap.Logger
	if opts.LogToFile {
		var closeLog func() error
		logger, closeLog, err = logging.OpenFile(config.LogFile, level, format)
		if err != nil {
			return nil, err
		}
		closers = append(closers, closeLog)
	} else {
		logger, err = logging.New(level, format, os.Stderr)
		if err != nil {
			return nil, err
		}
	}

	st, err := store.Open(ctx, settings, opts.Watch, logger)
	if err != nil {
		for _, c := range closers {
			c()
		}
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	app := NewApp(settings, st, logger)
	app.closers = append(closers, app.closers...)
	if isInteractive() {
		app.Prompt = promptForEnvironment
	}
	logger.Debug("application ready", zap.String("store", settings.Store), zap.String("config", config.ConfigDir))
	return app, nil
}

// NewApp wires an application around an open store. Output goes to stdout
// and no environment prompt is installed.
func NewApp(settings *config.Settings, st store.Store, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		Settings: settings,
		Logger:   logger,
		Store:    st,
		Catalog:  catalog.NewManager(st, logger),
		Browser:  host.NewBrowser(settings.Browser, logger),
		Out:      os.Stdout,
		closers:  []func() error{st.Close},
	}
}

// Close releases the store and the log file
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// isInteractive checks if stdin is a terminal (not piped)
func isInteractive() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}
