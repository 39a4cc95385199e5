package markdown

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/codice-do-criador/codice/internal/articles"
	"github.com/codice-do-criador/codice/internal/domain"
	"github.com/codice-do-criador/codice/internal/logging"
	"github.com/codice-do-criador/codice/internal/permissions"
	"github.com/codice-do-criador/codice/internal/worlds"
	"github.com/codice-do-criador/codice/pkg/interfaces"
)

// DefaultCategory is used for documents whose frontmatter names no category.
const DefaultCategory = "Conceitos"

var (
	ErrArticlesRequired   = errors.New("markdown importer: article service is required")
	ErrCategoriesRequired = errors.New("markdown importer: category finder is required")
	ErrWorldRequired      = errors.New("markdown importer: world id is required")
)

// ArticleStore is the part of articles.Service the importer writes through.
type ArticleStore interface {
	Create(ctx context.Context, p permissions.Principal, input articles.CreateInput) domain.Result
	Update(ctx context.Context, p permissions.Principal, articleID uuid.UUID, input articles.UpdateInput) domain.Result
	GetByTitleOrSlug(ctx context.Context, p permissions.Principal, worldID uuid.UUID, key string) (*articles.Article, error)
}

// CategoryFinder resolves frontmatter category names.
type CategoryFinder interface {
	FindCategoryByName(ctx context.Context, worldID uuid.UUID, name string) (*worlds.Category, error)
}

// ImporterConfig encapsulates the importer dependencies.
type ImporterConfig struct {
	Articles   ArticleStore
	Categories CategoryFinder
	Logger     interfaces.Logger
}

// ImportOptions controls a single import run.
type ImportOptions struct {
	WorldID uuid.UUID
	Actor   permissions.Principal
	// DefaultCategory overrides DefaultCategory.
	DefaultCategory string
	// DryRun resolves every document without writing.
	DryRun bool
}

// ImportError records a document that could not be imported.
type ImportError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ImportResult lists the document paths by outcome.
type ImportResult struct {
	Created []string      `json:"created"`
	Updated []string      `json:"updated"`
	Skipped []string      `json:"skipped"`
	Errors  []ImportError `json:"errors,omitempty"`
	DryRun  bool          `json:"dry_run"`
}

// Failed reports whether any document failed.
func (r *ImportResult) Failed() bool {
	return r != nil && len(r.Errors) > 0
}

// Importer writes Markdown documents as articles.
type Importer struct {
	articles   ArticleStore
	categories CategoryFinder
	logger     interfaces.Logger
}

// NewImporter builds an Importer from cfg.
func NewImporter(cfg ImporterConfig) *Importer {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Importer{
		articles:   cfg.Articles,
		categories: cfg.Categories,
		logger:     logger,
	}
}

// ImportDirectory loads dir through loader and imports every document.
func (i *Importer) ImportDirectory(ctx context.Context, loader *Loader, dir string, opts ImportOptions) (*ImportResult, error) {
	if err := i.ready(opts); err != nil {
		return nil, err
	}
	docs, err := loader.LoadDirectory(ctx, dir)
	if err != nil {
		return nil, err
	}
	return i.ImportDocuments(ctx, docs, opts)
}

// ImportDocuments imports docs in order. A document that fails is recorded
// in the result and does not stop the run; only context cancellation does.
func (i *Importer) ImportDocuments(ctx context.Context, docs []*Document, opts ImportOptions) (*ImportResult, error) {
	if err := i.ready(opts); err != nil {
		return nil, err
	}
	result := &ImportResult{DryRun: opts.DryRun}
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if doc == nil {
			continue
		}
		i.importDocument(ctx, doc, opts, result)
	}

	i.logger.Info("markdown import finished",
		"world_id", opts.WorldID.String(),
		"created", len(result.Created),
		"updated", len(result.Updated),
		"skipped", len(result.Skipped),
		"errors", len(result.Errors),
		"dry_run", opts.DryRun,
	)
	return result, nil
}

func (i *Importer) ready(opts ImportOptions) error {
	switch {
	case i.articles == nil:
		return ErrArticlesRequired
	case i.categories == nil:
		return ErrCategoriesRequired
	case opts.WorldID == uuid.Nil:
		return ErrWorldRequired
	}
	return nil
}

func (i *Importer) importDocument(ctx context.Context, doc *Document, opts ImportOptions, result *ImportResult) {
	logger := logging.WithFields(i.logger, map[string]any{
		"path":     doc.Path,
		"world_id": opts.WorldID.String(),
	})
	fail := func(message string) {
		logger.Warn("markdown document rejected", "reason", message)
		result.Errors = append(result.Errors, ImportError{Path: doc.Path, Message: message})
	}

	title := documentTitle(doc)
	categoryName := doc.FrontMatter.Category
	if categoryName == "" {
		categoryName = strings.TrimSpace(opts.DefaultCategory)
	}
	if categoryName == "" {
		categoryName = DefaultCategory
	}
	category, err := i.categories.FindCategoryByName(ctx, opts.WorldID, categoryName)
	if err != nil {
		fail(domain.Message(logger, "markdown.category", err))
		return
	}

	body := strings.TrimSpace(string(doc.Body))
	existing, err := i.articles.GetByTitleOrSlug(ctx, opts.Actor, opts.WorldID, title)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		existing = nil
	case err != nil:
		fail(domain.Message(logger, "markdown.lookup", err))
		return
	}
	// A slug match on a different title is a distinct article.
	if existing != nil && existing.Title != title {
		existing = nil
	}

	if existing == nil {
		if opts.DryRun {
			result.Created = append(result.Created, doc.Path)
			return
		}
		published := true
		if doc.FrontMatter.Published != nil {
			published = *doc.FrontMatter.Published
		}
		res := i.articles.Create(ctx, opts.Actor, articles.CreateInput{
			WorldID:     opts.WorldID,
			CategoryID:  category.ID,
			Title:       title,
			PublicBody:  body,
			PrivateBody: doc.FrontMatter.Private,
			Published:   published,
		})
		if !res.Success {
			fail(res.Message)
			return
		}
		logger.Debug("markdown document created article", "article_id", res.ID.String())
		result.Created = append(result.Created, doc.Path)
		return
	}

	update, changed := diff(existing, doc, category.ID, body)
	if !changed {
		result.Skipped = append(result.Skipped, doc.Path)
		return
	}
	if opts.DryRun {
		result.Updated = append(result.Updated, doc.Path)
		return
	}
	res := i.articles.Update(ctx, opts.Actor, existing.ID, update)
	if !res.Success {
		fail(res.Message)
		return
	}
	logger.Debug("markdown document updated article", "article_id", existing.ID.String())
	result.Updated = append(result.Updated, doc.Path)
}

// diff returns the update needed to bring existing in line with doc.
func diff(existing *articles.Article, doc *Document, categoryID uuid.UUID, body string) (articles.UpdateInput, bool) {
	var update articles.UpdateInput
	changed := false
	if existing.PublicBody != body {
		update.PublicBody = &body
		changed = true
	}
	if existing.CategoryID != categoryID {
		update.CategoryID = &categoryID
		changed = true
	}
	if p := doc.FrontMatter.Published; p != nil && *p != existing.Published {
		update.Published = p
		changed = true
	}
	if private := doc.FrontMatter.Private; private != "" && private != existing.PrivateBody {
		update.PrivateBody = &private
		changed = true
	}
	return update, changed
}

// documentTitle prefers the frontmatter title and falls back to the file
// name without its extension.
func documentTitle(doc *Document) string {
	if doc.FrontMatter.Title != "" {
		return doc.FrontMatter.Title
	}
	base := path.Base(doc.Path)
	return strings.TrimSpace(strings.TrimSuffix(base, path.Ext(base)))
}
