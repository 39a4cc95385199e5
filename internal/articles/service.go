package articles

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goliatone/go-slug"
	"github.com/google/uuid"

	"github.com/codice-do-criador/codice/internal/domain"
	"github.com/codice-do-criador/codice/internal/logging"
	"github.com/codice-do-criador/codice/internal/permissions"
	"github.com/codice-do-criador/codice/internal/validation"
	"github.com/codice-do-criador/codice/internal/wiki"
	"github.com/codice-do-criador/codice/internal/worlds"
	"github.com/codice-do-criador/codice/pkg/activity"
	"github.com/codice-do-criador/codice/pkg/interfaces"
)

// Service is the article store. Mutations report a domain.Result; reads
// return errors from the shared taxonomy.
type Service interface {
	Create(ctx context.Context, p permissions.Principal, input CreateInput) domain.Result
	Update(ctx context.Context, p permissions.Principal, articleID uuid.UUID, input UpdateInput) domain.Result
	Delete(ctx context.Context, p permissions.Principal, articleID uuid.UUID) domain.Result

	Get(ctx context.Context, p permissions.Principal, articleID uuid.UUID) (*Article, error)
	GetByTitleOrSlug(ctx context.Context, p permissions.Principal, worldID uuid.UUID, key string) (*Article, error)
	View(ctx context.Context, p permissions.Principal, worldID uuid.UUID, key string) (*View, error)
	Preview(ctx context.Context, p permissions.Principal, worldID uuid.UUID, body string) (string, error)
	References(ctx context.Context, p permissions.Principal, articleID uuid.UUID) ([]wiki.Resolution, error)
	Backlinks(ctx context.Context, p permissions.Principal, articleID uuid.UUID) ([]wiki.ArticleRef, error)
	Search(ctx context.Context, p permissions.Principal, input SearchInput) (*SearchPage, error)
	ListByCategory(ctx context.Context, p permissions.Principal, worldID, categoryID uuid.UUID) ([]*Article, error)

	RebuildReferences(ctx context.Context, worldID uuid.UUID) (int, error)
	PurgeWorld(ctx context.Context, worldID uuid.UUID) error
	CountByCategory(ctx context.Context, worldID, categoryID uuid.UUID) (int, error)
}

// WorldAccess is the slice of the world service the article store needs.
type WorldAccess interface {
	Authorize(ctx context.Context, p permissions.Principal, worldID uuid.UUID, action permissions.Action) error
	GetCategory(ctx context.Context, worldID, categoryID uuid.UUID) (*worlds.Category, error)
	ListFields(ctx context.Context, worldID uuid.UUID) ([]*worlds.FieldDefinition, error)
}

var (
	ErrRepositoryRequired  = errors.New("articles: repository required")
	ErrWorldAccessRequired = errors.New("articles: world access required")

	ErrTitleRequired    = errors.New("articles: title required")
	ErrTitleTooShort    = errors.New("articles: title too short")
	ErrTitleTooLong     = errors.New("articles: title too long")
	ErrTitleInvalid     = errors.New("articles: title contains reserved characters")
	ErrTitleTaken       = errors.New("articles: title already used in world")
	ErrWorldRequired    = errors.New("articles: world required")
	ErrCategoryRequired = errors.New("articles: category required")
	ErrPrivateBody      = errors.New("articles: only the creator may edit private notes")
	ErrFieldUnknown     = errors.New("articles: unknown custom field")
	ErrFieldType        = errors.New("articles: custom field type mismatch")
	ErrFieldsInvalid    = errors.New("articles: custom field values invalid")

	ErrArticleNotFound = domain.NotFound("articles", "article")
)

const fallbackSlug = "article"

// IDGenerator produces unique identifiers.
type IDGenerator func() uuid.UUID

// ServiceOption configures the service.
type ServiceOption func(*service)

// WithIDGenerator overrides the id source.
func WithIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithActivityEmitter wires activity reporting.
func WithActivityEmitter(emitter *activity.Emitter) ServiceOption {
	return func(s *service) {
		s.activity = emitter
	}
}

// WithTitleBounds sets the title length bounds in runes.
func WithTitleBounds(minLen, maxLen int) ServiceOption {
	return func(s *service) {
		if minLen > 0 && maxLen >= minLen {
			s.titleMin, s.titleMax = minLen, maxLen
		}
	}
}

// WithPageSize sets the default and maximum search page sizes.
func WithPageSize(defaultSize, maxSize int) ServiceOption {
	return func(s *service) {
		if defaultSize > 0 && maxSize >= defaultSize {
			s.pageSize, s.maxPageSize = defaultSize, maxSize
		}
	}
}

// WithRenderer replaces the body renderer.
func WithRenderer(renderer *wiki.Renderer) ServiceOption {
	return func(s *service) {
		if renderer != nil {
			s.renderer = renderer
		}
	}
}

// WithBacklinkStrategy replaces the reference-table backlink lookup.
func WithBacklinkStrategy(strategy wiki.BacklinkStrategy) ServiceOption {
	return func(s *service) {
		if strategy != nil {
			s.strategy = strategy
		}
	}
}

type service struct {
	repo   ArticleRepository
	access WorldAccess

	resolver  *wiki.Resolver
	backlinks *wiki.BacklinkIndex
	renderer  *wiki.Renderer
	strategy  wiki.BacklinkStrategy

	id          IDGenerator
	now         func() time.Time
	logger      interfaces.Logger
	activity    *activity.Emitter
	titleMin    int
	titleMax    int
	pageSize    int
	maxPageSize int
}

// NewService constructs the article store.
func NewService(repo ArticleRepository, access WorldAccess, opts ...ServiceOption) Service {
	if repo == nil {
		panic(ErrRepositoryRequired)
	}
	if access == nil {
		panic(ErrWorldAccessRequired)
	}
	s := &service{
		repo:        repo,
		access:      access,
		id:          uuid.New,
		now:         time.Now,
		logger:      logging.NoOp(),
		titleMin:    3,
		titleMax:    200,
		pageSize:    20,
		maxPageSize: 100,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.renderer == nil {
		s.renderer = wiki.NewRenderer()
	}
	if s.strategy == nil {
		s.strategy = wiki.IndexedStrategy{Source: repo}
	}
	s.resolver = wiki.NewResolver(repo, wiki.WithResolverLogger(s.logger))
	s.backlinks = wiki.NewBacklinkIndex(s.strategy, wiki.WithBacklinkLogger(s.logger))
	return s
}

func (s *service) Create(ctx context.Context, p permissions.Principal, input CreateInput) domain.Result {
	article, err := s.create(ctx, p, input)
	if err != nil {
		return domain.Failed(s.logger.WithContext(ctx), "articles.create", err)
	}
	return domain.Succeeded(article.ID, article.Slug, "Article created.")
}

func (s *service) create(ctx context.Context, p permissions.Principal, input CreateInput) (*Article, error) {
	if input.WorldID == uuid.Nil {
		return nil, domain.Invalid(ErrWorldRequired, "world_id", "World is required.")
	}
	if err := s.access.Authorize(ctx, p, input.WorldID, permissions.ActionWrite); err != nil {
		return nil, err
	}
	title, err := s.validateTitle(ctx, input.WorldID, input.Title, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if err := s.validateCategory(ctx, input.WorldID, input.CategoryID); err != nil {
		return nil, err
	}
	fields, err := s.validateFields(ctx, input.WorldID, input.CategoryID, input.Fields)
	if err != nil {
		return nil, err
	}
	articleSlug, err := s.uniqueSlug(ctx, input.WorldID, title, uuid.Nil)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	article := &Article{
		ID:          s.id(),
		WorldID:     input.WorldID,
		CategoryID:  input.CategoryID,
		Title:       title,
		Slug:        articleSlug,
		PublicBody:  input.PublicBody,
		PrivateBody: input.PrivateBody,
		Published:   input.Published,
		Fields:      fields,
		CreatedBy:   p.UserID,
		UpdatedBy:   p.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	created, err := s.repo.Create(ctx, article, wiki.Titles(article.PublicBody))
	if err != nil {
		return nil, err
	}

	logging.WithArticleContext(s.logger, created.WorldID.String(), created.ID.String(), p.UserID.String()).
		WithContext(ctx).Info("article.created", "slug", created.Slug)
	s.emit(ctx, p, "create", created, nil)
	return created, nil
}

func (s *service) Update(ctx context.Context, p permissions.Principal, articleID uuid.UUID, input UpdateInput) domain.Result {
	article, err := s.update(ctx, p, articleID, input)
	if err != nil {
		return domain.Failed(s.logger.WithContext(ctx), "articles.update", err)
	}
	return domain.Succeeded(article.ID, article.Slug, "Article updated.")
}

func (s *service) update(ctx context.Context, p permissions.Principal, articleID uuid.UUID, input UpdateInput) (*Article, error) {
	article, err := s.load(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if err := s.access.Authorize(ctx, p, article.WorldID, permissions.ActionWrite); err != nil {
		return nil, err
	}

	if input.Title != nil && *input.Title != article.Title {
		title, err := s.validateTitle(ctx, article.WorldID, *input.Title, article.ID)
		if err != nil {
			return nil, err
		}
		if title != article.Title {
			articleSlug, err := s.uniqueSlug(ctx, article.WorldID, title, article.ID)
			if err != nil {
				return nil, err
			}
			article.Title = title
			article.Slug = articleSlug
		}
	}
	categoryChanged := false
	if input.CategoryID != nil && *input.CategoryID != article.CategoryID {
		if err := s.validateCategory(ctx, article.WorldID, *input.CategoryID); err != nil {
			return nil, err
		}
		article.CategoryID = *input.CategoryID
		categoryChanged = true
	}
	if input.PublicBody != nil {
		article.PublicBody = *input.PublicBody
	}
	if input.PrivateBody != nil && *input.PrivateBody != article.PrivateBody {
		if p.UserID != article.CreatedBy {
			return nil, domain.Invalid(ErrPrivateBody, "private_body", "Only the article creator can edit private notes.")
		}
		article.PrivateBody = *input.PrivateBody
	}
	if input.Published != nil {
		article.Published = *input.Published
	}
	values := input.Fields
	if values == nil && categoryChanged {
		// Values of the old category are dropped and the new category's
		// required fields are enforced.
		if values, err = s.carryFields(ctx, article.WorldID, article.CategoryID, article.Fields); err != nil {
			return nil, err
		}
	}
	if values != nil {
		fields, err := s.validateFields(ctx, article.WorldID, article.CategoryID, values)
		if err != nil {
			return nil, err
		}
		article.Fields = fields
	}
	article.UpdatedBy = p.UserID
	article.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, article, wiki.Titles(article.PublicBody))
	if err != nil {
		return nil, s.mapNotFound(err)
	}
	logging.WithArticleContext(s.logger, updated.WorldID.String(), updated.ID.String(), p.UserID.String()).
		WithContext(ctx).Info("article.updated", "slug", updated.Slug)
	s.emit(ctx, p, "update", updated, nil)
	return updated, nil
}

func (s *service) Delete(ctx context.Context, p permissions.Principal, articleID uuid.UUID) domain.Result {
	article, err := s.load(ctx, articleID)
	if err == nil {
		err = s.access.Authorize(ctx, p, article.WorldID, permissions.ActionWrite)
	}
	if err == nil {
		err = s.mapNotFound(s.repo.Delete(ctx, articleID))
	}
	if err != nil {
		return domain.Failed(s.logger.WithContext(ctx), "articles.delete", err)
	}
	logging.WithArticleContext(s.logger, article.WorldID.String(), article.ID.String(), p.UserID.String()).
		WithContext(ctx).Info("article.deleted")
	s.emit(ctx, p, "delete", article, nil)
	return domain.Succeeded(article.ID, article.Slug, "Article deleted.")
}

func (s *service) Get(ctx context.Context, p permissions.Principal, articleID uuid.UUID) (*Article, error) {
	article, err := s.load(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if err := s.access.Authorize(ctx, p, article.WorldID, permissions.ActionRead); err != nil {
		return nil, err
	}
	return redact(article, p), nil
}

func (s *service) GetByTitleOrSlug(ctx context.Context, p permissions.Principal, worldID uuid.UUID, key string) (*Article, error) {
	if err := s.access.Authorize(ctx, p, worldID, permissions.ActionRead); err != nil {
		return nil, err
	}
	article, err := s.find(ctx, worldID, key)
	if err != nil {
		return nil, err
	}
	return redact(article, p), nil
}

func (s *service) find(ctx context.Context, worldID uuid.UUID, key string) (*Article, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrArticleNotFound
	}
	article, err := s.repo.GetByTitle(ctx, worldID, key)
	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		article, err = s.repo.GetBySlug(ctx, worldID, key)
	}
	if err != nil {
		return nil, s.mapNotFound(err)
	}
	return article, nil
}

func (s *service) View(ctx context.Context, p permissions.Principal, worldID uuid.UUID, key string) (*View, error) {
	article, err := s.GetByTitleOrSlug(ctx, p, worldID, key)
	if err != nil {
		return nil, err
	}
	if err := s.repo.IncrementViews(ctx, article.ID); err != nil {
		s.logger.WithContext(ctx).Warn("article.view_count_failed", "article_id", article.ID, "error", err)
	} else {
		article.ViewCount++
	}

	resolutions := s.resolver.ResolveBody(ctx, article.WorldID, article.PublicBody)
	view := &View{
		Article:    article,
		HTML:       s.renderer.Render(article.PublicBody, article.WorldID, wiki.Index(resolutions)),
		References: resolutions,
		Backlinks:  s.backlinks.Backlinks(ctx, article.Ref()),
		IsCreator:  !p.Anonymous() && p.UserID == article.CreatedBy,
	}
	if category, err := s.access.GetCategory(ctx, article.WorldID, article.CategoryID); err == nil {
		view.Category = category
	}
	view.Fields = s.displayFields(ctx, article)
	return view, nil
}

func (s *service) Preview(ctx context.Context, p permissions.Principal, worldID uuid.UUID, body string) (string, error) {
	if err := s.access.Authorize(ctx, p, worldID, permissions.ActionRead); err != nil {
		return "", err
	}
	resolutions := s.resolver.ResolveBody(ctx, worldID, body)
	return s.renderer.Render(body, worldID, wiki.Index(resolutions)), nil
}

func (s *service) References(ctx context.Context, p permissions.Principal, articleID uuid.UUID) ([]wiki.Resolution, error) {
	article, err := s.Get(ctx, p, articleID)
	if err != nil {
		return nil, err
	}
	return s.resolver.ResolveBody(ctx, article.WorldID, article.PublicBody), nil
}

func (s *service) Backlinks(ctx context.Context, p permissions.Principal, articleID uuid.UUID) ([]wiki.ArticleRef, error) {
	article, err := s.Get(ctx, p, articleID)
	if err != nil {
		return nil, err
	}
	return s.backlinks.Backlinks(ctx, article.Ref()), nil
}

func (s *service) Search(ctx context.Context, p permissions.Principal, input SearchInput) (*SearchPage, error) {
	if err := s.access.Authorize(ctx, p, input.WorldID, permissions.ActionRead); err != nil {
		return nil, err
	}
	perPage := input.PerPage
	if perPage <= 0 {
		perPage = s.pageSize
	}
	perPage = min(perPage, s.maxPageSize)
	page := max(input.Page, 1)

	records, total, err := s.repo.Search(ctx, SearchQuery{
		WorldID:    input.WorldID,
		Query:      strings.TrimSpace(input.Query),
		CategoryID: input.CategoryID,
		Limit:      perPage,
		Offset:     (page - 1) * perPage,
	})
	if err != nil {
		return nil, err
	}
	for i, rec := range records {
		records[i] = redact(rec, p)
	}
	return &SearchPage{Articles: records, Total: total, Page: page, PerPage: perPage}, nil
}

func (s *service) ListByCategory(ctx context.Context, p permissions.Principal, worldID, categoryID uuid.UUID) ([]*Article, error) {
	if err := s.access.Authorize(ctx, p, worldID, permissions.ActionRead); err != nil {
		return nil, err
	}
	if _, err := s.access.GetCategory(ctx, worldID, categoryID); err != nil {
		return nil, err
	}
	records, err := s.repo.ListByCategory(ctx, worldID, categoryID)
	if err != nil {
		return nil, err
	}
	for i, rec := range records {
		records[i] = redact(rec, p)
	}
	return records, nil
}

func (s *service) RebuildReferences(ctx context.Context, worldID uuid.UUID) (int, error) {
	records, err := s.repo.ListByWorld(ctx, worldID)
	if err != nil {
		return 0, err
	}
	for _, rec := range records {
		if err := s.repo.ReplaceReferences(ctx, rec, wiki.Titles(rec.PublicBody)); err != nil {
			return 0, fmt.Errorf("rebuild references for %s: %w", rec.ID, err)
		}
	}
	s.logger.WithContext(ctx).Info("article.references_rebuilt", "world_id", worldID, "articles", len(records))
	return len(records), nil
}

func (s *service) PurgeWorld(ctx context.Context, worldID uuid.UUID) error {
	return s.repo.DeleteByWorld(ctx, worldID)
}

func (s *service) CountByCategory(ctx context.Context, worldID, categoryID uuid.UUID) (int, error) {
	return s.repo.CountByCategory(ctx, worldID, categoryID)
}

func (s *service) load(ctx context.Context, articleID uuid.UUID) (*Article, error) {
	article, err := s.repo.GetByID(ctx, articleID)
	if err != nil {
		return nil, s.mapNotFound(err)
	}
	return article, nil
}

func (s *service) validateTitle(ctx context.Context, worldID uuid.UUID, raw string, self uuid.UUID) (string, error) {
	title := strings.TrimSpace(raw)
	length := utf8.RuneCountInString(title)
	switch {
	case title == "":
		return "", domain.Invalid(ErrTitleRequired, "title", "Title is required.")
	case length < s.titleMin:
		return "", domain.Invalid(ErrTitleTooShort, "title",
			fmt.Sprintf("Title must be at least %d characters.", s.titleMin))
	case length > s.titleMax:
		return "", domain.Invalid(ErrTitleTooLong, "title",
			fmt.Sprintf("Title must be at most %d characters.", s.titleMax))
	case !wiki.ValidTitle(title):
		return "", domain.Invalid(ErrTitleInvalid, "title", "Title cannot contain brackets or line breaks.")
	}

	existing, err := s.repo.GetByTitle(ctx, worldID, title)
	var notFound *NotFoundError
	switch {
	case errors.As(err, &notFound):
		return title, nil
	case err != nil:
		return "", err
	case existing.ID != self:
		return "", domain.Invalid(ErrTitleTaken, "title", "An article with this title already exists in this world.")
	}
	return title, nil
}

func (s *service) validateCategory(ctx context.Context, worldID, categoryID uuid.UUID) error {
	if categoryID == uuid.Nil {
		return domain.Invalid(ErrCategoryRequired, "category_id", "Category is required.")
	}
	_, err := s.access.GetCategory(ctx, worldID, categoryID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Invalid(ErrCategoryRequired, "category_id", "Category does not belong to this world.")
	}
	return err
}

// uniqueSlug derives a slug from title and appends -1, -2, ... until it is
// free in the world.
func (s *service) uniqueSlug(ctx context.Context, worldID uuid.UUID, title string, self uuid.UUID) (string, error) {
	base, err := slug.Normalize(title)
	if err != nil || base == "" {
		base = fallbackSlug
	}
	candidate := base
	for counter := 1; ; counter++ {
		taken, err := s.repo.SlugExists(ctx, worldID, candidate, self)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, counter)
	}
}

// validateFields checks values against the world's field definitions for
// the category and returns them in definition order. Empty text values are
// dropped.
func (s *service) validateFields(ctx context.Context, worldID, categoryID uuid.UUID, values []FieldValue) ([]FieldValue, error) {
	applicable, err := s.fieldsFor(ctx, worldID, categoryID)
	if err != nil {
		return nil, err
	}
	if len(applicable) == 0 && len(values) == 0 {
		return nil, nil
	}

	byID := make(map[uuid.UUID]*worlds.FieldDefinition, len(applicable))
	specs := make([]validation.FieldSpec, 0, len(applicable))
	for _, def := range applicable {
		byID[def.ID] = def
		spec := validation.FieldSpec{Key: def.ID.String(), Kind: validation.KindString, Required: def.Required}
		switch def.Type {
		case worlds.FieldNumber:
			spec.Kind = validation.KindNumber
		case worlds.FieldChoice:
			spec.Enum = def.Options
		}
		specs = append(specs, spec)
	}

	payload := make(map[string]any, len(values))
	kept := make(map[uuid.UUID]FieldValue, len(values))
	for _, value := range values {
		def, ok := byID[value.FieldID]
		if !ok {
			return nil, domain.Invalid(ErrFieldUnknown, "fields", "Unknown custom field.")
		}
		if value.Type == "" {
			value.Type = def.Type
		}
		if value.Type != def.Type {
			return nil, domain.Invalid(ErrFieldType, "fields",
				fmt.Sprintf("Field %q expects a %s value.", def.Name, def.Type))
		}
		if value.Type != worlds.FieldNumber {
			value.Text = strings.TrimSpace(value.Text)
			if value.Text == "" {
				continue
			}
		}
		payload[def.ID.String()] = value.payload()
		kept[def.ID] = value
	}

	if err := validation.ValidatePayload(validation.FieldSchema(specs), payload); err != nil {
		return nil, domain.Invalid(ErrFieldsInvalid, "fields", fieldIssueMessage(err, byID))
	}

	out := make([]FieldValue, 0, len(kept))
	for _, def := range applicable {
		if value, ok := kept[def.ID]; ok {
			out = append(out, value)
		}
	}
	return out, nil
}

// fieldsFor returns the definitions applying to categoryID. The repository
// slice may be shared with a cache, so it is never filtered in place.
func (s *service) fieldsFor(ctx context.Context, worldID, categoryID uuid.UUID) ([]*worlds.FieldDefinition, error) {
	definitions, err := s.access.ListFields(ctx, worldID)
	if err != nil {
		return nil, err
	}
	applicable := make([]*worlds.FieldDefinition, 0, len(definitions))
	for _, def := range definitions {
		if def != nil && def.AppliesTo(categoryID) {
			applicable = append(applicable, def)
		}
	}
	return applicable, nil
}

// carryFields keeps the values whose definition also applies to categoryID.
func (s *service) carryFields(ctx context.Context, worldID, categoryID uuid.UUID, values []FieldValue) ([]FieldValue, error) {
	applicable, err := s.fieldsFor(ctx, worldID, categoryID)
	if err != nil {
		return nil, err
	}
	out := make([]FieldValue, 0, len(values))
	for _, value := range values {
		if slices.ContainsFunc(applicable, func(def *worlds.FieldDefinition) bool { return def.ID == value.FieldID }) {
			out = append(out, value)
		}
	}
	return out, nil
}

func fieldIssueMessage(err error, defs map[uuid.UUID]*worlds.FieldDefinition) string {
	issues := validation.Issues(err)
	if len(issues) == 0 {
		return "Custom field values are invalid."
	}
	issue := issues[0]
	key := strings.TrimPrefix(strings.TrimPrefix(issue.Location, "#"), "/")
	if id, parseErr := uuid.Parse(key); parseErr == nil {
		if def, ok := defs[id]; ok {
			return fmt.Sprintf("Field %q is invalid: %s", def.Name, issue.Message)
		}
	}
	return "Custom field values are invalid: " + issue.Message
}

func (s *service) displayFields(ctx context.Context, article *Article) []FieldDisplay {
	if len(article.Fields) == 0 {
		return nil
	}
	definitions, err := s.access.ListFields(ctx, article.WorldID)
	if err != nil {
		s.logger.WithContext(ctx).Warn("article.fields_lookup_failed", "world_id", article.WorldID, "error", err)
		return nil
	}
	names := make(map[uuid.UUID]string, len(definitions))
	for _, def := range definitions {
		names[def.ID] = def.Name
	}
	out := make([]FieldDisplay, 0, len(article.Fields))
	for _, value := range article.Fields {
		name, ok := names[value.FieldID]
		if !ok {
			continue
		}
		out = append(out, FieldDisplay{Name: name, Type: value.Type, Value: value.Display()})
	}
	return out
}

// redact hides private notes from everyone but the creator.
func redact(article *Article, p permissions.Principal) *Article {
	if article == nil || (!p.Anonymous() && p.UserID == article.CreatedBy) {
		return article
	}
	article.PrivateBody = ""
	return article
}

func (s *service) mapNotFound(err error) error {
	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w: %s", ErrArticleNotFound, notFound.Key)
	}
	return err
}

func (s *service) emit(ctx context.Context, p permissions.Principal, verb string, article *Article, meta map[string]any) {
	if s.activity == nil || !s.activity.Enabled() {
		return
	}
	if meta == nil {
		meta = map[string]any{}
	}
	meta["world_id"] = article.WorldID.String()
	meta["title"] = article.Title
	meta["slug"] = article.Slug
	err := s.activity.Emit(ctx, activity.Event{
		Verb:       verb,
		ActorID:    p.UserID.String(),
		ObjectType: "article",
		ObjectID:   article.ID.String(),
		Metadata:   meta,
	})
	if err != nil {
		s.logger.WithContext(ctx).Warn("article.activity.emit_failed", "verb", verb, "error", err)
	}
}
