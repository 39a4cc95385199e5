package articles

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/codice-do-criador/codice/internal/wiki"
)

// MemoryArticleRepository is an in-memory ArticleRepository.
type MemoryArticleRepository struct {
	mu         sync.RWMutex
	byID       map[uuid.UUID]*Article
	references map[uuid.UUID][]*Reference
}

// NewMemoryArticleRepository constructs an empty article repository.
func NewMemoryArticleRepository() *MemoryArticleRepository {
	return &MemoryArticleRepository{
		byID:       make(map[uuid.UUID]*Article),
		references: make(map[uuid.UUID][]*Reference),
	}
}

func (r *MemoryArticleRepository) Create(_ context.Context, article *Article, references []string) (*Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := cloneArticle(article)
	r.byID[stored.ID] = stored
	r.references[stored.ID] = referenceRows(stored, references)
	return cloneArticle(stored), nil
}

func (r *MemoryArticleRepository) Update(_ context.Context, article *Article, references []string) (*Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byID[article.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "article", Key: article.ID.String()}
	}
	stored := cloneArticle(article)
	stored.ViewCount = existing.ViewCount
	stored.CreatedAt = existing.CreatedAt
	stored.CreatedBy = existing.CreatedBy
	r.byID[stored.ID] = stored
	r.references[stored.ID] = referenceRows(stored, references)
	return cloneArticle(stored), nil
}

func (r *MemoryArticleRepository) ReplaceReferences(_ context.Context, article *Article, references []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[article.ID]; !ok {
		return &NotFoundError{Resource: "article", Key: article.ID.String()}
	}
	r.references[article.ID] = referenceRows(article, references)
	return nil
}

// References returns the stored reference rows of an article.
func (r *MemoryArticleRepository) References(articleID uuid.UUID) []Reference {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Reference, 0, len(r.references[articleID]))
	for _, ref := range r.references[articleID] {
		out = append(out, *ref)
	}
	return out
}

func (r *MemoryArticleRepository) GetByID(_ context.Context, id uuid.UUID) (*Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "article", Key: id.String()}
	}
	return cloneArticle(record), nil
}

func (r *MemoryArticleRepository) GetByTitle(_ context.Context, worldID uuid.UUID, title string) (*Article, error) {
	found := r.filter(func(a *Article) bool { return a.WorldID == worldID && a.Title == title })
	if len(found) == 0 {
		return nil, &NotFoundError{Resource: "article", Key: title}
	}
	return found[0], nil
}

func (r *MemoryArticleRepository) GetBySlug(_ context.Context, worldID uuid.UUID, slug string) (*Article, error) {
	found := r.filter(func(a *Article) bool { return a.WorldID == worldID && a.Slug == slug })
	if len(found) == 0 {
		return nil, &NotFoundError{Resource: "article", Key: slug}
	}
	return found[0], nil
}

func (r *MemoryArticleRepository) SlugExists(_ context.Context, worldID uuid.UUID, slug string, exclude uuid.UUID) (bool, error) {
	found := r.filter(func(a *Article) bool { return a.WorldID == worldID && a.Slug == slug && a.ID != exclude })
	return len(found) > 0, nil
}

func (r *MemoryArticleRepository) FindByTitles(_ context.Context, worldID uuid.UUID, titles []string) ([]wiki.ArticleRef, error) {
	found := r.filter(func(a *Article) bool { return a.WorldID == worldID && slices.Contains(titles, a.Title) })
	return refs(found), nil
}

func (r *MemoryArticleRepository) SourcesReferencing(_ context.Context, worldID uuid.UUID, title string) ([]wiki.ArticleRef, error) {
	r.mu.RLock()
	var ids []uuid.UUID
	for id, rows := range r.references {
		if slices.ContainsFunc(rows, func(ref *Reference) bool { return ref.WorldID == worldID && ref.TargetTitle == title }) {
			ids = append(ids, id)
		}
	}
	r.mu.RUnlock()
	found := r.filter(func(a *Article) bool { return a.WorldID == worldID && slices.Contains(ids, a.ID) })
	return refs(found), nil
}

func (r *MemoryArticleRepository) BodiesContaining(_ context.Context, worldID uuid.UUID, needle string) ([]wiki.Candidate, error) {
	found := r.filter(func(a *Article) bool { return a.WorldID == worldID && strings.Contains(a.PublicBody, needle) })
	out := make([]wiki.Candidate, 0, len(found))
	for _, a := range found {
		out = append(out, wiki.Candidate{ArticleRef: a.Ref(), Body: a.PublicBody})
	}
	return out, nil
}

func (r *MemoryArticleRepository) Search(_ context.Context, query SearchQuery) ([]*Article, int, error) {
	term := strings.ToLower(strings.TrimSpace(query.Query))
	found := r.filter(func(a *Article) bool {
		if a.WorldID != query.WorldID {
			return false
		}
		if query.CategoryID != nil && a.CategoryID != *query.CategoryID {
			return false
		}
		if term == "" {
			return true
		}
		return strings.Contains(strings.ToLower(a.Title), term) ||
			strings.Contains(strings.ToLower(a.PublicBody), term)
	})
	slices.SortStableFunc(found, func(a, b *Article) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Title, b.Title)
	})
	total := len(found)
	if query.Limit <= 0 {
		return found, total, nil
	}
	start := min(query.Offset, total)
	end := min(start+query.Limit, total)
	return found[start:end], total, nil
}

func (r *MemoryArticleRepository) ListByCategory(_ context.Context, worldID, categoryID uuid.UUID) ([]*Article, error) {
	return r.filter(func(a *Article) bool { return a.WorldID == worldID && a.CategoryID == categoryID }), nil
}

func (r *MemoryArticleRepository) ListByWorld(_ context.Context, worldID uuid.UUID) ([]*Article, error) {
	return r.filter(func(a *Article) bool { return a.WorldID == worldID }), nil
}

func (r *MemoryArticleRepository) CountByCategory(ctx context.Context, worldID, categoryID uuid.UUID) (int, error) {
	found, _ := r.ListByCategory(ctx, worldID, categoryID)
	return len(found), nil
}

func (r *MemoryArticleRepository) IncrementViews(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.byID[id]
	if !ok {
		return &NotFoundError{Resource: "article", Key: id.String()}
	}
	record.ViewCount++
	return nil
}

func (r *MemoryArticleRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return &NotFoundError{Resource: "article", Key: id.String()}
	}
	delete(r.byID, id)
	delete(r.references, id)
	return nil
}

func (r *MemoryArticleRepository) DeleteByWorld(_ context.Context, worldID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, a := range r.byID {
		if a.WorldID == worldID {
			delete(r.byID, id)
			delete(r.references, id)
		}
	}
	return nil
}

// filter returns clones of matching articles ordered by title.
func (r *MemoryArticleRepository) filter(keep func(*Article) bool) []*Article {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Article
	for _, a := range r.byID {
		if keep(a) {
			out = append(out, cloneArticle(a))
		}
	}
	slices.SortFunc(out, func(a, b *Article) int { return strings.Compare(a.Title, b.Title) })
	return out
}

func cloneArticle(a *Article) *Article {
	if a == nil {
		return nil
	}
	out := *a
	out.Fields = slices.Clone(a.Fields)
	return &out
}
