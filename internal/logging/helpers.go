package logging

import (
	"maps"

	"github.com/codice-do-criador/codice/pkg/interfaces"
)

// WithFields binds fields when logger implements interfaces.FieldsLogger and
// returns logger unchanged otherwise. The map is copied.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(maps.Clone(fields))
	}
	return logger
}

// WithError attaches err under the "error" key.
func WithError(logger interfaces.Logger, err error) interfaces.Logger {
	if err == nil {
		return logger
	}
	return WithFields(logger, map[string]any{"error": err.Error()})
}
