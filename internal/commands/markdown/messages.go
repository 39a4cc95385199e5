package markdowncmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

const importMarkdownMessageType = "codice.markdown.import"

// ImportMarkdownCommand imports every Markdown file under Directory into the
// world identified by WorldID, acting as ActorID.
type ImportMarkdownCommand struct {
	// WorldID selects the world receiving the articles.
	WorldID uuid.UUID `json:"world_id"`
	// Directory is the filesystem path holding the Markdown files.
	Directory string `json:"directory"`
	// ActorID is the user the articles are created and updated as.
	ActorID uuid.UUID `json:"actor_id"`
	// DefaultCategory names the category used when frontmatter has none.
	DefaultCategory string `json:"default_category,omitempty"`
	// Recursive walks sub-directories as well.
	Recursive bool `json:"recursive,omitempty"`
	// DryRun reports what would change without writing.
	DryRun bool `json:"dry_run,omitempty"`
}

// Type implements command.Message.
func (ImportMarkdownCommand) Type() string { return importMarkdownMessageType }

// Validate ensures the world, actor and directory are present.
func (cmd ImportMarkdownCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.WorldID, validation.By(requiredUUID("world_id"))),
		validation.Field(&cmd.ActorID, validation.By(requiredUUID("actor_id"))),
		validation.Field(&cmd.Directory, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("codice.markdown.import.directory_required", "directory is required")
			}
			return nil
		})),
	)
}

func requiredUUID(field string) validation.RuleFunc {
	return func(value any) error {
		id, _ := value.(uuid.UUID)
		if id == uuid.Nil {
			return validation.NewError("codice.markdown.import."+field+"_required", field+" is required")
		}
		return nil
	}
}
