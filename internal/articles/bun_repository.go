package articles

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/codice-do-criador/codice/internal/wiki"
)

const likeEscape = `\`

// BunArticleRepository implements ArticleRepository. Reads go through
// go-repository-bun; writes that touch references run in one transaction.
type BunArticleRepository struct {
	db   *bun.DB
	repo repository.Repository[*Article]
}

// NewBunArticleRepository creates an article repository.
func NewBunArticleRepository(db *bun.DB) *BunArticleRepository {
	return &BunArticleRepository{db: db, repo: NewArticleRepository(db)}
}

func (r *BunArticleRepository) Create(ctx context.Context, article *Article, references []string) (*Article, error) {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(article).Exec(ctx); err != nil {
			return fmt.Errorf("insert article: %w", err)
		}
		return replaceReferences(ctx, tx, article, references)
	})
	if err != nil {
		return nil, err
	}
	return article, nil
}

func (r *BunArticleRepository) Update(ctx context.Context, article *Article, references []string) (*Article, error) {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model(article).
			Column("category_id", "title", "slug", "public_body", "private_body", "published", "fields", "updated_by", "updated_at").
			WherePK().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("update article: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return &NotFoundError{Resource: "article", Key: article.ID.String()}
		}
		return replaceReferences(ctx, tx, article, references)
	})
	if err != nil {
		return nil, err
	}
	return article, nil
}

func (r *BunArticleRepository) ReplaceReferences(ctx context.Context, article *Article, references []string) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return replaceReferences(ctx, tx, article, references)
	})
}

func replaceReferences(ctx context.Context, db bun.IDB, article *Article, titles []string) error {
	if _, err := db.NewDelete().
		Model((*Reference)(nil)).
		Where("?TableAlias.source_article_id = ?", article.ID).
		Exec(ctx); err != nil {
		return fmt.Errorf("delete references: %w", err)
	}
	rows := referenceRows(article, titles)
	if len(rows) == 0 {
		return nil
	}
	if _, err := db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("insert references: %w", err)
	}
	return nil
}

func (r *BunArticleRepository) GetByID(ctx context.Context, id uuid.UUID) (*Article, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "article", id.String())
	}
	return record, nil
}

func (r *BunArticleRepository) GetByTitle(ctx context.Context, worldID uuid.UUID, title string) (*Article, error) {
	return r.first(ctx, "title", worldID, title)
}

func (r *BunArticleRepository) GetBySlug(ctx context.Context, worldID uuid.UUID, slug string) (*Article, error) {
	return r.first(ctx, "slug", worldID, slug)
}

func (r *BunArticleRepository) first(ctx context.Context, column string, worldID uuid.UUID, value string) (*Article, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.world_id = ?", worldID).
				Where("?TableAlias.? = ?", bun.Ident(column), value)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "article", Key: value}
	}
	return records[0], nil
}

func (r *BunArticleRepository) SlugExists(ctx context.Context, worldID uuid.UUID, slug string, exclude uuid.UUID) (bool, error) {
	return r.db.NewSelect().
		Model((*Article)(nil)).
		Where("?TableAlias.world_id = ?", worldID).
		Where("?TableAlias.slug = ?", slug).
		Where("?TableAlias.id != ?", exclude).
		Exists(ctx)
}

func (r *BunArticleRepository) FindByTitles(ctx context.Context, worldID uuid.UUID, titles []string) ([]wiki.ArticleRef, error) {
	if len(titles) == 0 {
		return nil, nil
	}
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Column("id", "world_id", "title", "slug").
			Where("?TableAlias.world_id = ?", worldID).
			Where("?TableAlias.title IN (?)", bun.In(titles))
	}))
	if err != nil {
		return nil, err
	}
	return refs(records), nil
}

func (r *BunArticleRepository) SourcesReferencing(ctx context.Context, worldID uuid.UUID, title string) ([]wiki.ArticleRef, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Column("id", "world_id", "title", "slug").
			Where("?TableAlias.world_id = ?", worldID).
			Where("EXISTS (SELECT 1 FROM article_references AS ar WHERE ar.source_article_id = ?TableAlias.id AND ar.world_id = ? AND ar.target_title = ?)", worldID, title).
			OrderExpr("?TableAlias.title ASC")
	}))
	if err != nil {
		return nil, err
	}
	return refs(records), nil
}

func (r *BunArticleRepository) BodiesContaining(ctx context.Context, worldID uuid.UUID, needle string) ([]wiki.Candidate, error) {
	pattern := "%" + wiki.EscapeLike(needle) + "%"
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Column("id", "world_id", "title", "slug", "public_body").
			Where("?TableAlias.world_id = ?", worldID).
			Where("?TableAlias.public_body LIKE ? ESCAPE ?", pattern, likeEscape)
	}))
	if err != nil {
		return nil, err
	}
	out := make([]wiki.Candidate, 0, len(records))
	for _, rec := range records {
		out = append(out, wiki.Candidate{ArticleRef: rec.Ref(), Body: rec.PublicBody})
	}
	return out, nil
}

func (r *BunArticleRepository) Search(ctx context.Context, query SearchQuery) ([]*Article, int, error) {
	filter := repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		q = q.Where("?TableAlias.world_id = ?", query.WorldID)
		if term := strings.TrimSpace(query.Query); term != "" {
			// SQLite's LOWER and LIKE fold ASCII only, so the term is also
			// matched as typed: "Érico" finds "Érico" but "érico" does not.
			lowered := "%" + wiki.EscapeLike(strings.ToLower(term)) + "%"
			typed := "%" + wiki.EscapeLike(term) + "%"
			q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
				return q.Where("LOWER(?TableAlias.title) LIKE ? ESCAPE ?", lowered, likeEscape).
					WhereOr("LOWER(?TableAlias.public_body) LIKE ? ESCAPE ?", lowered, likeEscape).
					WhereOr("?TableAlias.title LIKE ? ESCAPE ?", typed, likeEscape).
					WhereOr("?TableAlias.public_body LIKE ? ESCAPE ?", typed, likeEscape)
			})
		}
		if query.CategoryID != nil {
			q = q.Where("?TableAlias.category_id = ?", *query.CategoryID)
		}
		return q.OrderExpr("?TableAlias.updated_at DESC").OrderExpr("?TableAlias.title ASC")
	})
	if query.Limit <= 0 {
		return r.repo.List(ctx, filter)
	}
	return r.repo.List(ctx, filter, repository.SelectPaginate(query.Limit, query.Offset))
}

func (r *BunArticleRepository) ListByCategory(ctx context.Context, worldID, categoryID uuid.UUID) ([]*Article, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.world_id = ?", worldID).
			Where("?TableAlias.category_id = ?", categoryID).
			OrderExpr("?TableAlias.title ASC")
	}))
	return records, err
}

func (r *BunArticleRepository) ListByWorld(ctx context.Context, worldID uuid.UUID) ([]*Article, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.world_id = ?", worldID).OrderExpr("?TableAlias.title ASC")
	}))
	return records, err
}

func (r *BunArticleRepository) CountByCategory(ctx context.Context, worldID, categoryID uuid.UUID) (int, error) {
	return r.db.NewSelect().
		Model((*Article)(nil)).
		Where("?TableAlias.world_id = ?", worldID).
		Where("?TableAlias.category_id = ?", categoryID).
		Count(ctx)
}

func (r *BunArticleRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.NewUpdate().
		Model((*Article)(nil)).
		Set("view_count = view_count + 1").
		Where("?TableAlias.id = ?", id).
		Exec(ctx)
	return err
}

func (r *BunArticleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*Reference)(nil)).
			Where("?TableAlias.source_article_id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete references: %w", err)
		}
		res, err := tx.NewDelete().Model((*Article)(nil)).Where("?TableAlias.id = ?", id).Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete article: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return &NotFoundError{Resource: "article", Key: id.String()}
		}
		return nil
	})
}

func (r *BunArticleRepository) DeleteByWorld(ctx context.Context, worldID uuid.UUID) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*Reference)(nil)).Where("?TableAlias.world_id = ?", worldID).Exec(ctx); err != nil {
			return fmt.Errorf("delete references: %w", err)
		}
		if _, err := tx.NewDelete().Model((*Article)(nil)).Where("?TableAlias.world_id = ?", worldID).Exec(ctx); err != nil {
			return fmt.Errorf("delete articles: %w", err)
		}
		return nil
	})
}

func refs(records []*Article) []wiki.ArticleRef {
	out := make([]wiki.ArticleRef, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.Ref())
	}
	return out
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
