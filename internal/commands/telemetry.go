package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/codice-do-criador/codice/internal/logging"
	"github.com/codice-do-criador/codice/pkg/interfaces"
)

// TelemetryStatus classifies how a command run ended.
type TelemetryStatus string

const (
	TelemetryStatusSuccess      TelemetryStatus = "success"
	TelemetryStatusFailed       TelemetryStatus = "failed"
	TelemetryStatusContextError TelemetryStatus = "context_error"
)

// TelemetryInfo is handed to a Telemetry callback once a command returns.
// Logger already carries Fields.
type TelemetryInfo struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Error     error
	Status    TelemetryStatus
	Logger    interfaces.Logger
}

// Telemetry replaces the handler's own outcome logging.
type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

// DefaultTelemetry logs the outcome of each run. Cancellations are warnings
// since the caller asked for them; other failures are errors.
func DefaultTelemetry[T command.Message](fallback interfaces.Logger) Telemetry[T] {
	if fallback == nil {
		fallback = logging.NoOp()
	}
	return func(_ context.Context, _ T, info TelemetryInfo) {
		logger := info.Logger
		if logger == nil {
			logger = logging.WithFields(fallback, info.Fields)
		}
		elapsed := "duration_ms"
		switch info.Status {
		case TelemetryStatusSuccess:
			logger.Info("codice.command.completed", elapsed, info.Duration.Milliseconds())
		case TelemetryStatusContextError:
			logger.Warn("codice.command.interrupted", elapsed, info.Duration.Milliseconds(), "error", info.Error)
		default:
			logger.Error("codice.command.failed", elapsed, info.Duration.Milliseconds(), "error", info.Error)
		}
	}
}
