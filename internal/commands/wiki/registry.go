package wikicmd

import (
	"errors"

	"github.com/codice-do-criador/codice/internal/commands"
	"github.com/codice-do-criador/codice/pkg/interfaces"
)

// HandlerSet groups the handlers produced by RegisterWikiCommands.
type HandlerSet struct {
	RebuildReferences *RebuildReferencesHandler
}

// RegisterWikiCommands builds the wiki handlers and registers them with reg when it is not nil.
func RegisterWikiCommands(reg commands.CommandRegistry, rebuilder ReferenceRebuilder, provider interfaces.LoggerProvider, opts ...commands.HandlerOption[RebuildReferencesCommand]) (*HandlerSet, error) {
	if rebuilder == nil {
		return nil, errors.New("wiki command registration: rebuilder is nil")
	}
	handler := NewRebuildReferencesHandler(rebuilder, commands.CommandLogger(provider, "wiki"), opts...)
	if reg != nil {
		if err := reg.RegisterCommand(handler); err != nil {
			return nil, err
		}
	}
	return &HandlerSet{RebuildReferences: handler}, nil
}
