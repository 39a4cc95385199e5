package commands

import (
	"strings"

	"github.com/codice-do-criador/codice/internal/logging"
	"github.com/codice-do-criador/codice/pkg/interfaces"
)

// CommandLogger returns the logger for handlers in group, named
// "codice.commands.<group>". An empty group logs under "codice.commands".
func CommandLogger(provider interfaces.LoggerProvider, group string) interfaces.Logger {
	name := "codice.commands"
	fields := map[string]any{"component": "command"}
	if group = strings.TrimSpace(group); group != "" {
		name += "." + group
		fields["command_group"] = group
	}
	return logging.WithFields(logging.ModuleLogger(provider, name), fields)
}
