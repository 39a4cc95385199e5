package logging

import (
	"context"
	"strings"

	"github.com/codice-do-criador/codice/pkg/interfaces"
)

const (
	rootModule      = "codice"
	worldsModule    = "codice.worlds"
	articlesModule  = "codice.articles"
	wikiModule      = "codice.wiki"
	assistantModule = "codice.assistant"
	markdownModule  = "codice.markdown"
	mcpModule       = "codice.mcp"
)

const (
	fieldWorldID   = "world_id"
	fieldArticleID = "article_id"
	fieldActorID   = "actor_id"
)

// ModuleLogger returns a logger scoped to module. A nil provider yields a
// no-op logger. The module name is attached as the "module" field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(map[string]any{
			"module": module,
		})
	}
	return logger
}

// WorldsLogger returns the logger namespace for world, category and
// collaborator services.
func WorldsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, worldsModule)
}

// ArticlesLogger returns the logger namespace for the article store.
func ArticlesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, articlesModule)
}

// WikiLogger returns the logger namespace for reference resolution and
// backlink lookups.
func WikiLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, wikiModule)
}

// AssistantLogger returns the logger namespace for writing assistance.
func AssistantLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, assistantModule)
}

// MarkdownLogger returns the logger namespace for markdown imports.
func MarkdownLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, markdownModule)
}

// MCPLogger returns the logger namespace for the MCP tool surface.
func MCPLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, mcpModule)
}

// WithArticleContext binds world, article and actor identifiers to logger.
// Empty values are skipped.
func WithArticleContext(logger interfaces.Logger, worldID, articleID, actorID string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(worldID); trimmed != "" {
		fields[fieldWorldID] = trimmed
	}
	if trimmed := strings.TrimSpace(articleID); trimmed != "" {
		fields[fieldArticleID] = trimmed
	}
	if trimmed := strings.TrimSpace(actorID); trimmed != "" {
		fields[fieldActorID] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
