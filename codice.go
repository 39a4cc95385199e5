// Package codice is the world-building wiki runtime: worlds with their
// categories and collaborators, articles cross-referenced by @[Title]
// tokens, and the commands and writing assistant built on top of them.
package codice

import (
	"context"

	"github.com/codice-do-criador/codice/internal/articles"
	"github.com/codice-do-criador/codice/internal/assistant"
	markdowncmd "github.com/codice-do-criador/codice/internal/commands/markdown"
	wikicmd "github.com/codice-do-criador/codice/internal/commands/wiki"
	"github.com/codice-do-criador/codice/internal/di"
	"github.com/codice-do-criador/codice/internal/permissions"
	"github.com/codice-do-criador/codice/internal/worlds"
)

// WorldService exports the world, category and collaborator contract.
type WorldService = worlds.Service

// ArticleService exports the article store contract.
type ArticleService = articles.Service

// AssistantService exports the writing assistant contract.
type AssistantService = assistant.Service

// Principal identifies the authenticated caller of every operation.
type Principal = permissions.Principal

// Option customises the underlying container.
type Option = di.Option

// Container overrides re-exported for callers outside the module.
var (
	WithBunDB              = di.WithBunDB
	WithCache              = di.WithCache
	WithLoggerProvider     = di.WithLoggerProvider
	WithTextGenerator      = di.WithTextGenerator
	WithActivitySink       = di.WithActivitySink
	WithCommandRegistry    = di.WithCommandRegistry
	WithMarkdownFileSystem = di.WithMarkdownFileSystem
	WithLinkBuilder        = di.WithLinkBuilder
)

// NewPrincipal returns the principal for an authenticated user id.
var NewPrincipal = permissions.NewPrincipal

// Commands groups the command handlers wired by the module.
type Commands struct {
	RebuildReferences *wikicmd.RebuildReferencesHandler
	ImportMarkdown    *markdowncmd.ImportMarkdownHandler
}

// Module represents the top level wiki runtime façade.
type Module struct {
	container *di.Container
	commands  Commands
}

// New constructs a module from cfg and optional container overrides.
func New(ctx context.Context, cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	m := &Module{container: container}
	if set := container.WikiCommands(); set != nil {
		m.commands.RebuildReferences = set.RebuildReferences
	}
	if set := container.MarkdownCommands(); set != nil {
		m.commands.ImportMarkdown = set.Import
	}
	return m, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Worlds returns the configured world service.
func (m *Module) Worlds() WorldService {
	return m.container.WorldService()
}

// Articles returns the configured article store.
func (m *Module) Articles() ArticleService {
	return m.container.ArticleService()
}

// Assistant returns the writing assistant. It reports Enabled() false
// unless a text generator is configured.
func (m *Module) Assistant() AssistantService {
	return m.container.AssistantService()
}

// Commands returns the wired command handlers.
func (m *Module) Commands() Commands {
	return m.commands
}

// Close releases resources the module opened itself.
func (m *Module) Close() error {
	return m.container.Close()
}
