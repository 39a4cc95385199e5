package bootstrap

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/codice-do-criador/codice"
	"github.com/codice-do-criador/codice/internal/logging"
	"github.com/codice-do-criador/codice/internal/runtimeconfig"
	"github.com/codice-do-criador/codice/pkg/interfaces"
)

// Options captures the storage and logging settings shared by the CLIs.
type Options struct {
	Memory         bool
	Driver         string
	DSN            string
	Backlinks      string
	LogLevel       string
	LogFormat      string
	BaseURL        string
	LoggerProvider interfaces.LoggerProvider
}

// Bind registers the shared flags on fs and returns the options they fill.
func Bind(fs *flag.FlagSet) *Options {
	defaults := runtimeconfig.DefaultConfig()
	opts := &Options{}
	fs.BoolVar(&opts.Memory, "memory", false, "Keep everything in process memory")
	fs.StringVar(&opts.Driver, "driver", defaults.Storage.Driver, "Database driver: sqlite3, sqlite or postgres")
	fs.StringVar(&opts.DSN, "dsn", defaults.Storage.DSN, "Database connection string")
	fs.StringVar(&opts.Backlinks, "backlinks", defaults.Wiki.Backlinks, "Backlink strategy: index or scan")
	fs.StringVar(&opts.LogLevel, "log-level", "warn", "Log level")
	fs.StringVar(&opts.LogFormat, "log-format", "", "Use go-logger with this format (json, console, pretty) instead of the console logger")
	fs.StringVar(&opts.BaseURL, "base-url", "", "Base URL prefixed to rendered wiki links")
	return opts
}

// Module wraps the codice module and the logger used by the CLI itself.
type Module struct {
	Module *codice.Module
	Logger interfaces.Logger
}

// Config translates opts into a runtime configuration.
func (opts Options) Config() codice.Config {
	cfg := codice.DefaultConfig()
	if opts.Memory {
		cfg.Storage.Provider = runtimeconfig.StorageProviderMemory
	}
	if driver := strings.TrimSpace(opts.Driver); driver != "" {
		cfg.Storage.Driver = driver
	}
	if dsn := strings.TrimSpace(opts.DSN); dsn != "" {
		cfg.Storage.DSN = dsn
	}
	if backlinks := strings.TrimSpace(opts.Backlinks); backlinks != "" {
		cfg.Wiki.Backlinks = backlinks
	}
	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		cfg.Logging.Level = level
	}
	if format := strings.TrimSpace(opts.LogFormat); format != "" {
		cfg.Logging.Provider = "gologger"
		cfg.Logging.Format = format
	}
	cfg.Links.Routes = runtimeconfig.DefaultRoutes(strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"))
	return cfg
}

// BuildModule constructs a codice module for command line use.
func BuildModule(ctx context.Context, opts Options, extra ...codice.Option) (*Module, error) {
	diOpts := []codice.Option{}
	if opts.LoggerProvider != nil {
		diOpts = append(diOpts, codice.WithLoggerProvider(opts.LoggerProvider))
	}
	diOpts = append(diOpts, extra...)

	module, err := codice.New(ctx, opts.Config(), diOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise codice module: %w", err)
	}

	return &Module{
		Module: module,
		Logger: logging.ModuleLogger(module.Container().LoggerProvider(), "codice.cli"),
	}, nil
}

// ParseUUID converts the supplied string into a UUID, returning uuid.Nil when the input is empty.
func ParseUUID(value string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(trimmed)
}
