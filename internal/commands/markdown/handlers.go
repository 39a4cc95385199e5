package markdowncmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	command "github.com/goliatone/go-command"

	"github.com/codice-do-criador/codice/internal/commands"
	"github.com/codice-do-criador/codice/internal/logging"
	"github.com/codice-do-criador/codice/internal/markdown"
	"github.com/codice-do-criador/codice/internal/permissions"
	"github.com/codice-do-criador/codice/pkg/interfaces"
)

const importOperation = "markdown.import"

var (
	// ErrMarkdownFeatureDisabled is returned when the markdown feature is disabled at runtime.
	ErrMarkdownFeatureDisabled = errors.New("markdown command: feature disabled")
	// ErrImportIncomplete is returned when one or more documents were rejected.
	ErrImportIncomplete = errors.New("markdown command: import incomplete")
)

var _ command.Commander[ImportMarkdownCommand] = (*ImportMarkdownHandler)(nil)

// DirectoryImporter is satisfied by *markdown.Importer.
type DirectoryImporter interface {
	ImportDirectory(ctx context.Context, loader *markdown.Loader, dir string, opts markdown.ImportOptions) (*markdown.ImportResult, error)
}

// FileSystem opens the directory named by a command.
type FileSystem func(dir string) fs.FS

// ImportMarkdownHandler runs markdown imports through the shared command handler.
type ImportMarkdownHandler struct {
	inner *commands.Handler[ImportMarkdownCommand]
	last  *markdown.ImportResult
}

// NewImportMarkdownHandler creates a handler bound to importer. A nil open
// function reads from the local filesystem.
func NewImportMarkdownHandler(importer DirectoryImporter, open FileSystem, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[ImportMarkdownCommand]) *ImportMarkdownHandler {
	baseLogger := commands.EnsureLogger(logger)
	if open == nil {
		open = os.DirFS
	}
	h := &ImportMarkdownHandler{}

	exec := func(ctx context.Context, msg ImportMarkdownCommand) error {
		if !gates.importEnabled() {
			return ErrMarkdownFeatureDisabled
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		loader := markdown.NewLoader(open(msg.Directory), markdown.LoaderConfig{Recursive: msg.Recursive})
		result, err := importer.ImportDirectory(ctx, loader, ".", markdown.ImportOptions{
			WorldID:         msg.WorldID,
			Actor:           permissions.NewPrincipal(msg.ActorID),
			DefaultCategory: msg.DefaultCategory,
			DryRun:          msg.DryRun,
		})
		if err != nil {
			return err
		}
		h.last = result

		logging.WithFields(baseLogger, map[string]any{
			"created_count": len(result.Created),
			"updated_count": len(result.Updated),
			"skipped_count": len(result.Skipped),
			"error_count":   len(result.Errors),
			"dry_run":       msg.DryRun,
		}).Info("markdown.command.import.completed")

		if result.Failed() {
			return fmt.Errorf("%w: %d document(s) rejected", ErrImportIncomplete, len(result.Errors))
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[ImportMarkdownCommand]{
		commands.WithLogger[ImportMarkdownCommand](baseLogger),
		commands.WithOperation[ImportMarkdownCommand](importOperation),
		commands.WithMessageFields[ImportMarkdownCommand](func(msg ImportMarkdownCommand) map[string]any {
			fields := map[string]any{
				"directory": msg.Directory,
				"world_id":  msg.WorldID.String(),
				"actor_id":  msg.ActorID.String(),
			}
			if msg.Recursive {
				fields["recursive"] = true
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ImportMarkdownCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	h.inner = commands.NewHandler(exec, handlerOpts...)
	return h
}

// Execute satisfies command.Commander[ImportMarkdownCommand].
func (h *ImportMarkdownHandler) Execute(ctx context.Context, msg ImportMarkdownCommand) error {
	return h.inner.Execute(ctx, msg)
}

// LastResult returns the outcome of the most recent completed import.
func (h *ImportMarkdownHandler) LastResult() *markdown.ImportResult {
	return h.last
}
