package worlds

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryWorldRepository is an in-memory WorldRepository.
type MemoryWorldRepository struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*World
}

// NewMemoryWorldRepository constructs an empty world repository.
func NewMemoryWorldRepository() *MemoryWorldRepository {
	return &MemoryWorldRepository{byID: make(map[uuid.UUID]*World)}
}

func (r *MemoryWorldRepository) Create(_ context.Context, world *World) (*World, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := cloneWorld(world)
	r.byID[stored.ID] = stored
	return cloneWorld(stored), nil
}

func (r *MemoryWorldRepository) Update(_ context.Context, world *World) (*World, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[world.ID]; !ok {
		return nil, &NotFoundError{Resource: "world", Key: world.ID.String()}
	}
	stored := cloneWorld(world)
	r.byID[stored.ID] = stored
	return cloneWorld(stored), nil
}

func (r *MemoryWorldRepository) GetByID(_ context.Context, id uuid.UUID) (*World, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "world", Key: id.String()}
	}
	return cloneWorld(record), nil
}

func (r *MemoryWorldRepository) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]*World, error) {
	return r.filter(func(w *World) bool { return w.OwnerID == ownerID }), nil
}

func (r *MemoryWorldRepository) ListByIDs(_ context.Context, ids []uuid.UUID) ([]*World, error) {
	return r.filter(func(w *World) bool { return slices.Contains(ids, w.ID) }), nil
}

func (r *MemoryWorldRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return &NotFoundError{Resource: "world", Key: id.String()}
	}
	delete(r.byID, id)
	return nil
}

func (r *MemoryWorldRepository) filter(keep func(*World) bool) []*World {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*World
	for _, w := range r.byID {
		if keep(w) {
			out = append(out, cloneWorld(w))
		}
	}
	slices.SortFunc(out, func(a, b *World) int { return b.UpdatedAt.Compare(a.UpdatedAt) })
	return out
}

// MemoryCategoryRepository is an in-memory CategoryRepository.
type MemoryCategoryRepository struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*Category
}

// NewMemoryCategoryRepository constructs an empty category repository.
func NewMemoryCategoryRepository() *MemoryCategoryRepository {
	return &MemoryCategoryRepository{byID: make(map[uuid.UUID]*Category)}
}

func (r *MemoryCategoryRepository) Create(_ context.Context, category *Category) (*Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *category
	r.byID[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *MemoryCategoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "category", Key: id.String()}
	}
	out := *record
	return &out, nil
}

func (r *MemoryCategoryRepository) ListByWorld(_ context.Context, worldID uuid.UUID) ([]*Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Category
	for _, c := range r.byID {
		if c.WorldID == worldID {
			cp := *c
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *Category) int {
		if a.Position != b.Position {
			return a.Position - b.Position
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out, nil
}

func (r *MemoryCategoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return &NotFoundError{Resource: "category", Key: id.String()}
	}
	delete(r.byID, id)
	return nil
}

func (r *MemoryCategoryRepository) DeleteByWorld(_ context.Context, worldID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.byID {
		if c.WorldID == worldID {
			delete(r.byID, id)
		}
	}
	return nil
}

// MemoryCollaboratorRepository is an in-memory CollaboratorRepository.
type MemoryCollaboratorRepository struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*Collaborator
}

// NewMemoryCollaboratorRepository constructs an empty collaborator repository.
func NewMemoryCollaboratorRepository() *MemoryCollaboratorRepository {
	return &MemoryCollaboratorRepository{byID: make(map[uuid.UUID]*Collaborator)}
}

func (r *MemoryCollaboratorRepository) Create(_ context.Context, c *Collaborator) (*Collaborator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *c
	r.byID[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *MemoryCollaboratorRepository) Update(_ context.Context, c *Collaborator) (*Collaborator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[c.ID]; !ok {
		return nil, &NotFoundError{Resource: "collaborator", Key: c.ID.String()}
	}
	stored := *c
	r.byID[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *MemoryCollaboratorRepository) GetByWorldAndUser(_ context.Context, worldID, userID uuid.UUID) (*Collaborator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.byID {
		if c.WorldID == worldID && c.UserID == userID {
			out := *c
			return &out, nil
		}
	}
	return nil, &NotFoundError{Resource: "collaborator", Key: userID.String()}
}

func (r *MemoryCollaboratorRepository) ListByWorld(_ context.Context, worldID uuid.UUID) ([]*Collaborator, error) {
	return r.filter(func(c *Collaborator) bool { return c.WorldID == worldID }), nil
}

func (r *MemoryCollaboratorRepository) ListActiveByUser(_ context.Context, userID uuid.UUID) ([]*Collaborator, error) {
	return r.filter(func(c *Collaborator) bool { return c.UserID == userID && c.IsActive }), nil
}

func (r *MemoryCollaboratorRepository) DeleteByWorld(_ context.Context, worldID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.byID {
		if c.WorldID == worldID {
			delete(r.byID, id)
		}
	}
	return nil
}

func (r *MemoryCollaboratorRepository) filter(keep func(*Collaborator) bool) []*Collaborator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Collaborator
	for _, c := range r.byID {
		if keep(c) {
			cp := *c
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *Collaborator) int { return a.InvitedAt.Compare(b.InvitedAt) })
	return out
}

// MemoryFieldRepository is an in-memory FieldRepository.
type MemoryFieldRepository struct {
	mu     sync.RWMutex
	fields []*FieldDefinition
}

// NewMemoryFieldRepository constructs an empty field repository.
func NewMemoryFieldRepository() *MemoryFieldRepository {
	return &MemoryFieldRepository{}
}

func (r *MemoryFieldRepository) Create(_ context.Context, field *FieldDefinition) (*FieldDefinition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := cloneField(field)
	r.fields = append(r.fields, stored)
	return cloneField(stored), nil
}

func (r *MemoryFieldRepository) ListByWorld(_ context.Context, worldID uuid.UUID) ([]*FieldDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*FieldDefinition
	for _, f := range r.fields {
		if f.WorldID == worldID {
			out = append(out, cloneField(f))
		}
	}
	slices.SortStableFunc(out, func(a, b *FieldDefinition) int { return a.Position - b.Position })
	return out, nil
}

func (r *MemoryFieldRepository) DeleteByWorld(_ context.Context, worldID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fields = slices.DeleteFunc(r.fields, func(f *FieldDefinition) bool { return f.WorldID == worldID })
	return nil
}

func cloneWorld(w *World) *World {
	if w == nil {
		return nil
	}
	out := *w
	return &out
}

func cloneField(f *FieldDefinition) *FieldDefinition {
	if f == nil {
		return nil
	}
	out := *f
	out.Options = slices.Clone(f.Options)
	if f.CategoryID != nil {
		id := *f.CategoryID
		out.CategoryID = &id
	}
	return &out
}
