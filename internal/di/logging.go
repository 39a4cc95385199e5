package di

import (
	"fmt"
	"os"
	"strings"

	"github.com/codice-do-criador/codice/internal/logging/console"
	"github.com/codice-do-criador/codice/internal/logging/gologger"
	"github.com/codice-do-criador/codice/internal/runtimeconfig"
	"github.com/codice-do-criador/codice/pkg/interfaces"
)

// NewLoggerProvider builds the provider named by cfg. Console output goes to
// stderr so stdout stays free for command output and the MCP transport.
func NewLoggerProvider(cfg runtimeconfig.LoggingConfig) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "console":
		level, ok := console.ParseLevel(cfg.Level)
		if !ok {
			return nil, fmt.Errorf("%w: %s", runtimeconfig.ErrLoggingLevelInvalid, cfg.Level)
		}
		return console.NewProvider(console.Options{Writer: os.Stderr, MinLevel: &level}), nil
	case "gologger":
		return gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
	default:
		return nil, fmt.Errorf("%w: %s", runtimeconfig.ErrLoggingProviderUnknown, cfg.Provider)
	}
}
