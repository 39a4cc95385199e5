package markdowncmd

import (
	"context"
	"errors"

	command "github.com/goliatone/go-command"

	"github.com/codice-do-criador/codice/internal/commands"
	"github.com/codice-do-criador/codice/pkg/interfaces"
)

// HandlerSet groups the handlers produced by RegisterMarkdownCommands.
type HandlerSet struct {
	Import *ImportMarkdownHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	fileSystem        FileSystem
	importHandlerOpts []commands.HandlerOption[ImportMarkdownCommand]
}

// WithFileSystem overrides how command directories are opened.
func WithFileSystem(open FileSystem) Option {
	return func(cfg *options) {
		cfg.fileSystem = open
	}
}

// WithImportHandlerOptions forwards options to the ImportMarkdownHandler constructor.
func WithImportHandlerOptions(opts ...commands.HandlerOption[ImportMarkdownCommand]) Option {
	return func(cfg *options) {
		cfg.importHandlerOpts = append(cfg.importHandlerOpts, opts...)
	}
}

// RegisterMarkdownCommands builds the markdown handlers and registers them with reg when it is
// not nil.
func RegisterMarkdownCommands(reg commands.CommandRegistry, importer DirectoryImporter, provider interfaces.LoggerProvider, gates FeatureGates, opts ...Option) (*HandlerSet, error) {
	if importer == nil {
		return nil, errors.New("markdown command registration: importer is nil")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.CommandLogger(provider, "markdown")
	importHandler := NewImportMarkdownHandler(importer, cfg.fileSystem, logger, gates, cfg.importHandlerOpts...)

	if reg != nil {
		if err := reg.RegisterCommand(importHandler); err != nil {
			return nil, err
		}
	}
	return &HandlerSet{Import: importHandler}, nil
}

// RegisterMarkdownCron schedules msg on reg using cfg. The handler runs with a background context.
func RegisterMarkdownCron(reg commands.CronRegistrar, handler *ImportMarkdownHandler, cfg command.HandlerConfig, msg ImportMarkdownCommand) error {
	if reg == nil || handler == nil {
		return nil
	}
	return reg(cfg, func() error {
		return handler.Execute(context.Background(), msg)
	})
}
