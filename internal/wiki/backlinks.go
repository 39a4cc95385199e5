package wiki

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/codice-do-criador/codice/internal/logging"
	"github.com/codice-do-criador/codice/pkg/interfaces"
)

// ErrUnknownBacklinkStrategy is returned for an unsupported strategy name.
var ErrUnknownBacklinkStrategy = errors.New("wiki: unknown backlink strategy")

// ReferenceSource answers backlinks from the maintained reference table.
type ReferenceSource interface {
	// SourcesReferencing returns the articles of worldID whose stored
	// references include title.
	SourcesReferencing(ctx context.Context, worldID uuid.UUID, title string) ([]ArticleRef, error)
}

// Candidate is an article body returned by a substring prefilter.
type Candidate struct {
	ArticleRef
	Body string
}

// BodySource returns the articles of a world whose public body contains
// needle as a plain substring. Implementations must escape pattern
// metacharacters; see EscapeLike.
type BodySource interface {
	BodiesContaining(ctx context.Context, worldID uuid.UUID, needle string) ([]Candidate, error)
}

// BacklinkStrategy finds the articles referencing target.
type BacklinkStrategy interface {
	Find(ctx context.Context, target ArticleRef) ([]ArticleRef, error)
}

// IndexedStrategy reads the maintained reference table.
type IndexedStrategy struct {
	Source ReferenceSource
}

func (s IndexedStrategy) Find(ctx context.Context, target ArticleRef) ([]ArticleRef, error) {
	if s.Source == nil {
		return nil, nil
	}
	return s.Source.SourcesReferencing(ctx, target.WorldID, target.Title)
}

// ScanStrategy prefilters bodies by substring and confirms each candidate by
// scanning it for an exact token, which discards titles that merely contain
// the target, such as "Villager" for "Villa".
type ScanStrategy struct {
	Source BodySource
}

func (s ScanStrategy) Find(ctx context.Context, target ArticleRef) ([]ArticleRef, error) {
	if s.Source == nil || !ValidTitle(target.Title) {
		return nil, nil
	}
	candidates, err := s.Source.BodiesContaining(ctx, target.WorldID, TokenFor(target.Title))
	if err != nil {
		return nil, err
	}
	out := make([]ArticleRef, 0, len(candidates))
	for _, c := range candidates {
		if ContainsToken(c.Body, target.Title) {
			out = append(out, c.ArticleRef)
		}
	}
	return out, nil
}

// StrategyNamed maps a configured strategy name ("index" or "scan") onto a
// strategy backed by source. An empty name selects "index".
func StrategyNamed(name string, source interface {
	ReferenceSource
	BodySource
}) (BacklinkStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "index":
		return IndexedStrategy{Source: source}, nil
	case "scan":
		return ScanStrategy{Source: source}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBacklinkStrategy, name)
	}
}

// BacklinkIndex returns the articles of the same world that reference a
// target article.
type BacklinkIndex struct {
	strategy BacklinkStrategy
	logger   interfaces.Logger
}

// BacklinkOption configures a BacklinkIndex.
type BacklinkOption func(*BacklinkIndex)

// WithBacklinkLogger sets the logger used for lookup failures.
func WithBacklinkLogger(logger interfaces.Logger) BacklinkOption {
	return func(b *BacklinkIndex) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBacklinkIndex wraps strategy.
func NewBacklinkIndex(strategy BacklinkStrategy, opts ...BacklinkOption) *BacklinkIndex {
	b := &BacklinkIndex{strategy: strategy, logger: logging.NoOp()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Backlinks returns the referencing articles sorted by title. The target
// itself and articles of other worlds are excluded. Lookup failures are
// logged and yield no backlinks.
func (b *BacklinkIndex) Backlinks(ctx context.Context, target ArticleRef) []ArticleRef {
	if b == nil || b.strategy == nil || target.WorldID == uuid.Nil || target.Title == "" {
		return nil
	}
	refs, err := b.strategy.Find(ctx, target)
	if err != nil {
		b.logger.WithContext(ctx).Warn("wiki.backlinks.lookup_failed",
			"world_id", target.WorldID,
			"article_id", target.ID,
			"error", err,
		)
		return nil
	}

	seen := map[uuid.UUID]struct{}{}
	out := make([]ArticleRef, 0, len(refs))
	for _, ref := range refs {
		if ref.ID == target.ID || ref.WorldID != target.WorldID {
			continue
		}
		if _, dup := seen[ref.ID]; dup {
			continue
		}
		seen[ref.ID] = struct{}{}
		out = append(out, ref)
	}
	slices.SortFunc(out, func(a, b ArticleRef) int {
		if c := strings.Compare(a.Title, b.Title); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return out
}

// EscapeLike escapes LIKE metacharacters so value matches literally under
// "ESCAPE '\'".
func EscapeLike(value string) string {
	return likeEscaper.Replace(value)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
