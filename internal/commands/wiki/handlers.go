package wikicmd

import (
	"context"
	"errors"

	command "github.com/goliatone/go-command"
	"github.com/google/uuid"

	"github.com/codice-do-criador/codice/internal/commands"
	"github.com/codice-do-criador/codice/internal/logging"
	"github.com/codice-do-criador/codice/pkg/interfaces"
)

const rebuildOperation = "wiki.rebuild_references"

var _ command.Commander[RebuildReferencesCommand] = (*RebuildReferencesHandler)(nil)

// ReferenceRebuilder is satisfied by articles.Service.
type ReferenceRebuilder interface {
	RebuildReferences(ctx context.Context, worldID uuid.UUID) (int, error)
}

// RebuildReferencesHandler runs reference rebuilds through the shared command handler.
type RebuildReferencesHandler struct {
	inner *commands.Handler[RebuildReferencesCommand]
}

// NewRebuildReferencesHandler creates a handler bound to rebuilder.
func NewRebuildReferencesHandler(rebuilder ReferenceRebuilder, logger interfaces.Logger, opts ...commands.HandlerOption[RebuildReferencesCommand]) *RebuildReferencesHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg RebuildReferencesCommand) error {
		if rebuilder == nil {
			return errors.New("wiki command: rebuilder is nil")
		}
		count, err := rebuilder.RebuildReferences(ctx, msg.WorldID)
		if err != nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{
			"world_id":      msg.WorldID.String(),
			"article_count": count,
		}).Info("wiki.command.rebuild_references.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[RebuildReferencesCommand]{
		commands.WithLogger[RebuildReferencesCommand](baseLogger),
		commands.WithOperation[RebuildReferencesCommand](rebuildOperation),
		commands.WithMessageFields[RebuildReferencesCommand](func(msg RebuildReferencesCommand) map[string]any {
			return map[string]any{"world_id": msg.WorldID.String()}
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &RebuildReferencesHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[RebuildReferencesCommand].
func (h *RebuildReferencesHandler) Execute(ctx context.Context, msg RebuildReferencesCommand) error {
	return h.inner.Execute(ctx, msg)
}
