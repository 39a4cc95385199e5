package articles

import (
	"context"
	"fmt"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/codice-do-criador/codice/internal/wiki"
)

// ArticleRepository persists articles together with their reference rows.
// Create and Update replace the article's references in the same
// transaction as the article write.
type ArticleRepository interface {
	wiki.TitleLookup
	wiki.ReferenceSource
	wiki.BodySource

	Create(ctx context.Context, article *Article, references []string) (*Article, error)
	Update(ctx context.Context, article *Article, references []string) (*Article, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Article, error)
	GetByTitle(ctx context.Context, worldID uuid.UUID, title string) (*Article, error)
	GetBySlug(ctx context.Context, worldID uuid.UUID, slug string) (*Article, error)
	SlugExists(ctx context.Context, worldID uuid.UUID, slug string, exclude uuid.UUID) (bool, error)
	Search(ctx context.Context, query SearchQuery) ([]*Article, int, error)
	ListByCategory(ctx context.Context, worldID, categoryID uuid.UUID) ([]*Article, error)
	ListByWorld(ctx context.Context, worldID uuid.UUID) ([]*Article, error)
	CountByCategory(ctx context.Context, worldID, categoryID uuid.UUID) (int, error)
	IncrementViews(ctx context.Context, id uuid.UUID) error
	ReplaceReferences(ctx context.Context, article *Article, references []string) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByWorld(ctx context.Context, worldID uuid.UUID) error
}

// NotFoundError is returned when an article cannot be located.
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

// NewArticleRepository creates a go-repository-bun repository for articles.
func NewArticleRepository(db *bun.DB) repository.Repository[*Article] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Article]{
		NewRecord:          func() *Article { return &Article{} },
		GetID:              func(a *Article) uuid.UUID { return a.ID },
		SetID:              func(a *Article, id uuid.UUID) { a.ID = id },
		GetIdentifier:      func() string { return "slug" },
		GetIdentifierValue: func(a *Article) string { return a.Slug },
	})
}

// referenceRows expands titles into reference rows for article.
func referenceRows(article *Article, titles []string) []*Reference {
	rows := make([]*Reference, 0, len(titles))
	for i, title := range titles {
		rows = append(rows, &Reference{
			ID:              uuid.New(),
			WorldID:         article.WorldID,
			SourceArticleID: article.ID,
			TargetTitle:     title,
			Position:        i,
		})
	}
	return rows
}
