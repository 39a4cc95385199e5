// Package usersink forwards activity events to a go-users activity sink.
package usersink

import (
	"context"
	"maps"
	"strings"

	"github.com/google/uuid"

	"github.com/codice-do-criador/codice/pkg/activity"
	"github.com/codice-do-criador/codice/pkg/interfaces"
)

// Hook maps activity events to go-users records.
type Hook struct {
	Sink interfaces.ActivitySink
}

var _ activity.Hook = Hook{}

// Notify logs event to the sink. Events without a verb are skipped.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil || strings.TrimSpace(event.Verb) == "" {
		return nil
	}

	data := maps.Clone(event.Metadata)
	if data == nil {
		data = map[string]any{}
	}
	if event.DefinitionCode != "" {
		data["definition_code"] = event.DefinitionCode
	}
	if len(event.Recipients) > 0 {
		data["recipients"] = append([]string(nil), event.Recipients...)
	}

	return h.Sink.Log(ctx, interfaces.ActivityRecord{
		ActorID:    parseUUID(event.ActorID),
		UserID:     parseUUID(event.UserID),
		TenantID:   parseUUID(event.TenantID),
		Verb:       event.Verb,
		ObjectType: event.ObjectType,
		ObjectID:   event.ObjectID,
		Channel:    event.Channel,
		Data:       data,
		OccurredAt: event.OccurredAt,
	})
}

func parseUUID(value string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil
	}
	return id
}
