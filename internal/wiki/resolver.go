package wiki

import (
	"context"

	"github.com/google/uuid"

	"github.com/codice-do-criador/codice/internal/logging"
	"github.com/codice-do-criador/codice/pkg/interfaces"
)

// ArticleRef is the identity of an article as seen by the wiki layer.
type ArticleRef struct {
	ID      uuid.UUID
	WorldID uuid.UUID
	Title   string
	Slug    string
}

// TitleLookup finds the articles of a world whose titles match exactly.
type TitleLookup interface {
	FindByTitles(ctx context.Context, worldID uuid.UUID, titles []string) ([]ArticleRef, error)
}

// TitleLookupFunc adapts a function to TitleLookup.
type TitleLookupFunc func(ctx context.Context, worldID uuid.UUID, titles []string) ([]ArticleRef, error)

func (fn TitleLookupFunc) FindByTitles(ctx context.Context, worldID uuid.UUID, titles []string) ([]ArticleRef, error) {
	return fn(ctx, worldID, titles)
}

// Resolution reports whether a referenced title matches an article.
type Resolution struct {
	Title     string
	Exists    bool
	ArticleID uuid.UUID
	Slug      string
}

// Resolutions indexes resolutions by title.
type Resolutions map[string]Resolution

// Lookup returns the resolution for title. Unknown titles are unresolved.
func (r Resolutions) Lookup(title string) Resolution {
	if res, ok := r[title]; ok {
		return res
	}
	return Resolution{Title: title}
}

// Resolver maps referenced titles to the articles currently in a world.
// Results are never cached.
type Resolver struct {
	lookup TitleLookup
	logger interfaces.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithResolverLogger sets the logger used for lookup failures.
func WithResolverLogger(logger interfaces.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver builds a resolver over lookup.
func NewResolver(lookup TitleLookup, opts ...ResolverOption) *Resolver {
	r := &Resolver{lookup: lookup, logger: logging.NoOp()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns one resolution per title in input order. Lookup failures
// and missing worlds resolve every title as unresolved.
func (r *Resolver) Resolve(ctx context.Context, worldID uuid.UUID, titles []string) []Resolution {
	out := make([]Resolution, len(titles))
	for i, title := range titles {
		out[i] = Resolution{Title: title}
	}
	if r == nil || r.lookup == nil || len(titles) == 0 || worldID == uuid.Nil {
		return out
	}

	refs, err := r.lookup.FindByTitles(ctx, worldID, titles)
	if err != nil {
		r.logger.WithContext(ctx).Warn("wiki.resolve.lookup_failed",
			"world_id", worldID,
			"titles", len(titles),
			"error", err,
		)
		return out
	}

	byTitle := make(map[string]ArticleRef, len(refs))
	for _, ref := range refs {
		// Only exact, same-world matches count.
		if ref.WorldID != worldID {
			continue
		}
		if _, dup := byTitle[ref.Title]; !dup {
			byTitle[ref.Title] = ref
		}
	}
	for i, title := range titles {
		if ref, ok := byTitle[title]; ok {
			out[i] = Resolution{Title: title, Exists: true, ArticleID: ref.ID, Slug: ref.Slug}
		}
	}
	return out
}

// ResolveBody scans body and resolves its distinct titles.
func (r *Resolver) ResolveBody(ctx context.Context, worldID uuid.UUID, body string) []Resolution {
	return r.Resolve(ctx, worldID, Titles(body))
}

// Index converts a resolution list into a Resolutions map.
func Index(resolutions []Resolution) Resolutions {
	out := make(Resolutions, len(resolutions))
	for _, res := range resolutions {
		out[res.Title] = res
	}
	return out
}
