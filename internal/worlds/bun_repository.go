package worlds

import (
	"context"
	"fmt"

	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunWorldRepository implements WorldRepository with optional caching.
type BunWorldRepository struct {
	db   *bun.DB
	repo repository.Repository[*World]
	// list bypasses the cache: raw select processors key as a bare function
	// pointer, so owner/world scoped queries would share one entry.
	list repository.Repository[*World]
}

// NewBunWorldRepository creates a world repository without caching.
func NewBunWorldRepository(db *bun.DB) *BunWorldRepository {
	return NewBunWorldRepositoryWithCache(db, nil, nil)
}

// NewBunWorldRepositoryWithCache creates a world repository with caching support.
func NewBunWorldRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunWorldRepository {
	base := NewWorldRepository(db)
	repo := base
	if cacheService != nil && serializer != nil {
		repo = repositorycache.New(base, cacheService, serializer)
	}
	return &BunWorldRepository{db: db, repo: repo, list: base}
}

func (r *BunWorldRepository) Create(ctx context.Context, world *World) (*World, error) {
	return r.repo.Create(ctx, world)
}

func (r *BunWorldRepository) Update(ctx context.Context, world *World) (*World, error) {
	record, err := r.repo.Update(ctx, world)
	if err != nil {
		return nil, mapRepositoryError(err, "world", world.ID.String())
	}
	return record, nil
}

func (r *BunWorldRepository) GetByID(ctx context.Context, id uuid.UUID) (*World, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "world", id.String())
	}
	return record, nil
}

func (r *BunWorldRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*World, error) {
	records, _, err := r.list.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.owner_id = ?", ownerID).OrderExpr("?TableAlias.updated_at DESC")
	}))
	return records, err
}

func (r *BunWorldRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*World, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	records, _, err := r.list.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.id IN (?)", bun.In(ids)).OrderExpr("?TableAlias.updated_at DESC")
	}))
	return records, err
}

func (r *BunWorldRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.repo.Delete(ctx, &World{ID: id}); err != nil {
		return mapRepositoryError(err, "world", id.String())
	}
	return nil
}

// BunCategoryRepository implements CategoryRepository with optional caching.
type BunCategoryRepository struct {
	db   *bun.DB
	repo repository.Repository[*Category]
	list repository.Repository[*Category]
}

// NewBunCategoryRepository creates a category repository without caching.
func NewBunCategoryRepository(db *bun.DB) *BunCategoryRepository {
	return NewBunCategoryRepositoryWithCache(db, nil, nil)
}

// NewBunCategoryRepositoryWithCache creates a category repository with caching support.
func NewBunCategoryRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunCategoryRepository {
	base := NewCategoryRepository(db)
	repo := base
	if cacheService != nil && serializer != nil {
		repo = repositorycache.New(base, cacheService, serializer)
	}
	return &BunCategoryRepository{db: db, repo: repo, list: base}
}

func (r *BunCategoryRepository) Create(ctx context.Context, category *Category) (*Category, error) {
	return r.repo.Create(ctx, category)
}

func (r *BunCategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*Category, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "category", id.String())
	}
	return record, nil
}

func (r *BunCategoryRepository) ListByWorld(ctx context.Context, worldID uuid.UUID) ([]*Category, error) {
	records, _, err := r.list.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.world_id = ?", worldID).
			OrderExpr("?TableAlias.position ASC").
			OrderExpr("?TableAlias.name ASC")
	}))
	return records, err
}

func (r *BunCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.repo.Delete(ctx, &Category{ID: id}); err != nil {
		return mapRepositoryError(err, "category", id.String())
	}
	return nil
}

func (r *BunCategoryRepository) DeleteByWorld(ctx context.Context, worldID uuid.UUID) error {
	_, err := r.db.NewDelete().Model((*Category)(nil)).Where("world_id = ?", worldID).Exec(ctx)
	return err
}

// BunCollaboratorRepository implements CollaboratorRepository. Membership
// checks run on every request, so it is never cached.
type BunCollaboratorRepository struct {
	db   *bun.DB
	repo repository.Repository[*Collaborator]
}

// NewBunCollaboratorRepository creates a collaborator repository.
func NewBunCollaboratorRepository(db *bun.DB) *BunCollaboratorRepository {
	return &BunCollaboratorRepository{db: db, repo: NewCollaboratorRepository(db)}
}

func (r *BunCollaboratorRepository) Create(ctx context.Context, collaborator *Collaborator) (*Collaborator, error) {
	return r.repo.Create(ctx, collaborator)
}

func (r *BunCollaboratorRepository) Update(ctx context.Context, collaborator *Collaborator) (*Collaborator, error) {
	record, err := r.repo.Update(ctx, collaborator,
		repository.UpdateByID(collaborator.ID.String()),
		repository.UpdateColumns("role", "invited_by", "invited_at", "is_active"),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "collaborator", collaborator.ID.String())
	}
	return record, nil
}

func (r *BunCollaboratorRepository) GetByWorldAndUser(ctx context.Context, worldID, userID uuid.UUID) (*Collaborator, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.world_id = ?", worldID).Where("?TableAlias.user_id = ?", userID)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "collaborator", Key: userID.String()}
	}
	return records[0], nil
}

func (r *BunCollaboratorRepository) ListByWorld(ctx context.Context, worldID uuid.UUID) ([]*Collaborator, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.world_id = ?", worldID).OrderExpr("?TableAlias.invited_at ASC")
	}))
	return records, err
}

func (r *BunCollaboratorRepository) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*Collaborator, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.user_id = ?", userID).Where("?TableAlias.is_active = ?", true)
	}))
	return records, err
}

func (r *BunCollaboratorRepository) DeleteByWorld(ctx context.Context, worldID uuid.UUID) error {
	_, err := r.db.NewDelete().Model((*Collaborator)(nil)).Where("world_id = ?", worldID).Exec(ctx)
	return err
}

// BunFieldRepository implements FieldRepository with optional caching.
type BunFieldRepository struct {
	db   *bun.DB
	repo repository.Repository[*FieldDefinition]
	list repository.Repository[*FieldDefinition]
}

// NewBunFieldRepository creates a field repository without caching.
func NewBunFieldRepository(db *bun.DB) *BunFieldRepository {
	return NewBunFieldRepositoryWithCache(db, nil, nil)
}

// NewBunFieldRepositoryWithCache creates a field repository with caching support.
func NewBunFieldRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunFieldRepository {
	base := NewFieldRepository(db)
	repo := base
	if cacheService != nil && serializer != nil {
		repo = repositorycache.New(base, cacheService, serializer)
	}
	return &BunFieldRepository{db: db, repo: repo, list: base}
}

func (r *BunFieldRepository) Create(ctx context.Context, field *FieldDefinition) (*FieldDefinition, error) {
	return r.repo.Create(ctx, field)
}

func (r *BunFieldRepository) ListByWorld(ctx context.Context, worldID uuid.UUID) ([]*FieldDefinition, error) {
	records, _, err := r.list.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.world_id = ?", worldID).OrderExpr("?TableAlias.position ASC")
	}))
	return records, err
}

func (r *BunFieldRepository) DeleteByWorld(ctx context.Context, worldID uuid.UUID) error {
	_, err := r.db.NewDelete().Model((*FieldDefinition)(nil)).Where("world_id = ?", worldID).Exec(ctx)
	return err
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if errors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}
