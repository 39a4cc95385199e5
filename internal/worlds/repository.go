package worlds

import (
	"context"
	"fmt"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// WorldRepository persists worlds.
type WorldRepository interface {
	Create(ctx context.Context, world *World) (*World, error)
	Update(ctx context.Context, world *World) (*World, error)
	GetByID(ctx context.Context, id uuid.UUID) (*World, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*World, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*World, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoryRepository persists categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *Category) (*Category, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Category, error)
	ListByWorld(ctx context.Context, worldID uuid.UUID) ([]*Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByWorld(ctx context.Context, worldID uuid.UUID) error
}

// CollaboratorRepository persists world collaborators.
type CollaboratorRepository interface {
	Create(ctx context.Context, collaborator *Collaborator) (*Collaborator, error)
	Update(ctx context.Context, collaborator *Collaborator) (*Collaborator, error)
	GetByWorldAndUser(ctx context.Context, worldID, userID uuid.UUID) (*Collaborator, error)
	ListByWorld(ctx context.Context, worldID uuid.UUID) ([]*Collaborator, error)
	ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*Collaborator, error)
	DeleteByWorld(ctx context.Context, worldID uuid.UUID) error
}

// FieldRepository persists custom field definitions.
type FieldRepository interface {
	Create(ctx context.Context, field *FieldDefinition) (*FieldDefinition, error)
	ListByWorld(ctx context.Context, worldID uuid.UUID) ([]*FieldDefinition, error)
	DeleteByWorld(ctx context.Context, worldID uuid.UUID) error
}

// NotFoundError is returned when a world resource cannot be located.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// NewWorldRepository creates a go-repository-bun repository for worlds.
func NewWorldRepository(db *bun.DB) repository.Repository[*World] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*World]{
		NewRecord:          func() *World { return &World{} },
		GetID:              func(w *World) uuid.UUID { return w.ID },
		SetID:              func(w *World, id uuid.UUID) { w.ID = id },
		GetIdentifier:      func() string { return "name" },
		GetIdentifierValue: func(w *World) string { return w.Name },
	})
}

// NewCategoryRepository creates a go-repository-bun repository for categories.
func NewCategoryRepository(db *bun.DB) repository.Repository[*Category] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Category]{
		NewRecord:          func() *Category { return &Category{} },
		GetID:              func(c *Category) uuid.UUID { return c.ID },
		SetID:              func(c *Category, id uuid.UUID) { c.ID = id },
		GetIdentifier:      func() string { return "name" },
		GetIdentifierValue: func(c *Category) string { return c.Name },
	})
}

// NewCollaboratorRepository creates a go-repository-bun repository for collaborators.
func NewCollaboratorRepository(db *bun.DB) repository.Repository[*Collaborator] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Collaborator]{
		NewRecord:          func() *Collaborator { return &Collaborator{} },
		GetID:              func(c *Collaborator) uuid.UUID { return c.ID },
		SetID:              func(c *Collaborator, id uuid.UUID) { c.ID = id },
		GetIdentifier:      func() string { return "user_id" },
		GetIdentifierValue: func(c *Collaborator) string { return c.UserID.String() },
	})
}

// NewFieldRepository creates a go-repository-bun repository for field definitions.
func NewFieldRepository(db *bun.DB) repository.Repository[*FieldDefinition] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*FieldDefinition]{
		NewRecord:          func() *FieldDefinition { return &FieldDefinition{} },
		GetID:              func(f *FieldDefinition) uuid.UUID { return f.ID },
		SetID:              func(f *FieldDefinition, id uuid.UUID) { f.ID = id },
		GetIdentifier:      func() string { return "name" },
		GetIdentifierValue: func(f *FieldDefinition) string { return f.Name },
	})
}
