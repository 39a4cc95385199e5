package wikicmd

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

const rebuildReferencesMessageType = "codice.wiki.rebuild_references"

// RebuildReferencesCommand recomputes the stored reference rows of every
// article in a world from the article bodies.
type RebuildReferencesCommand struct {
	WorldID uuid.UUID `json:"world_id"`
}

// Type implements command.Message.
func (RebuildReferencesCommand) Type() string { return rebuildReferencesMessageType }

// Validate ensures a world is selected.
func (cmd RebuildReferencesCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.WorldID, validation.By(func(value any) error {
			if id, _ := value.(uuid.UUID); id == uuid.Nil {
				return validation.NewError("codice.wiki.rebuild_references.world_required", "world_id is required")
			}
			return nil
		})),
	)
}
