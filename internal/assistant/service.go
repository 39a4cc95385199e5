package assistant

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/codice-do-criador/codice/internal/articles"
	"github.com/codice-do-criador/codice/internal/domain"
	"github.com/codice-do-criador/codice/internal/logging"
	"github.com/codice-do-criador/codice/internal/permissions"
	"github.com/codice-do-criador/codice/internal/worlds"
	"github.com/codice-do-criador/codice/pkg/interfaces"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultNameCount  = 10
	maxNameCount      = 20
	minExpandLength   = 20
	minAnalysisLength = 50
	contextArticles   = 5
	contextExcerpt    = 200
)

// NameTypes lists the accepted Names kinds.
var NameTypes = []string{"person", "place", "item", "creature", "faction"}

// AnalysisTypes lists the accepted Analyze kinds; anything else becomes "article".
var AnalysisTypes = []string{"article", "story", "description"}

var (
	ErrAssistantDisabled = errors.New("assistant: disabled")
	ErrAssistantTimeout  = errors.New("assistant: generation timed out")
	ErrGeneration        = errors.New("assistant: generation failed")

	ErrTitleRequired    = errors.New("assistant: title required")
	ErrWorldRequired    = errors.New("assistant: world required")
	ErrContentRequired  = errors.New("assistant: content required")
	ErrContentTooShort  = errors.New("assistant: content too short")
	ErrNameTypeRequired = errors.New("assistant: name type required")
	ErrNameTypeInvalid  = errors.New("assistant: name type invalid")
)

// Service drafts worldbuilding text through an external TextGenerator.
type Service interface {
	Enabled() bool
	ContentSuggestions(ctx context.Context, p permissions.Principal, input SuggestionInput) (*Text, error)
	ArticleIdeas(ctx context.Context, p permissions.Principal, input IdeasInput) ([]Idea, error)
	Expand(ctx context.Context, p permissions.Principal, input ExpandInput) (string, error)
	Names(ctx context.Context, p permissions.Principal, input NamesInput) ([]string, error)
	Analyze(ctx context.Context, p permissions.Principal, input AnalyzeInput) (*Text, error)
}

// SuggestionInput asks for ideas to develop an article. WorldID is optional.
type SuggestionInput struct {
	WorldID         uuid.UUID
	Title           string
	Category        string
	ExistingContent string
}

// IdeasInput asks for new article ideas for a world.
type IdeasInput struct {
	WorldID  uuid.UUID
	Category string
}

// ExpandInput asks for a richer version of Content.
type ExpandInput struct {
	Content   string
	Context   string
	Direction string
}

// NamesInput asks for Count names of Type. Count is clamped to 1..20 and
// defaults to 10.
type NamesInput struct {
	Type    string
	Context string
	Count   int
}

// AnalyzeInput asks for an editorial review of Content.
type AnalyzeInput struct {
	Content string
	Type    string
}

// WorldReader is the part of worlds.Service used to build world context.
type WorldReader interface {
	GetWorld(ctx context.Context, p permissions.Principal, worldID uuid.UUID) (*worlds.World, error)
}

// ArticleLister is the part of articles.Service used to build world context.
type ArticleLister interface {
	Search(ctx context.Context, p permissions.Principal, input articles.SearchInput) (*articles.SearchPage, error)
}

// ServiceOption configures the assistant.
type ServiceOption func(*service)

// WithTimeout bounds every generation call.
func WithTimeout(timeout time.Duration) ServiceOption {
	return func(s *service) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithModel selects the provider model sent with every request.
func WithModel(model string) ServiceOption {
	return func(s *service) {
		s.model = strings.TrimSpace(model)
	}
}

// WithMaxTokens caps the tokens requested by any prompt.
func WithMaxTokens(limit int) ServiceOption {
	return func(s *service) {
		if limit > 0 {
			s.maxTokens = limit
		}
	}
}

// WithTemperature overrides the per-prompt temperatures.
func WithTemperature(temperature float64) ServiceOption {
	return func(s *service) {
		if temperature > 0 {
			s.temperature = temperature
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithWorldContext enables world context for suggestions and ideas.
func WithWorldContext(worldReader WorldReader, lister ArticleLister) ServiceOption {
	return func(s *service) {
		s.worlds = worldReader
		s.articles = lister
	}
}

type service struct {
	generator   interfaces.TextGenerator
	worlds      WorldReader
	articles    ArticleLister
	logger      interfaces.Logger
	timeout     time.Duration
	model       string
	maxTokens   int
	temperature float64
}

// NewService returns an assistant backed by generator. A nil generator
// yields a service whose operations fail with ErrAssistantDisabled.
func NewService(generator interfaces.TextGenerator, opts ...ServiceOption) Service {
	s := &service{
		generator: generator,
		logger:    logging.NoOp(),
		timeout:   defaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Enabled() bool {
	return s.generator != nil
}

func (s *service) ContentSuggestions(ctx context.Context, p permissions.Principal, input SuggestionInput) (*Text, error) {
	if err := s.ready(p); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, domain.Invalid(ErrTitleRequired, "title", "Title is required to generate suggestions.")
	}

	var worldContext string
	if input.WorldID != uuid.Nil {
		world, err := s.world(ctx, p, input.WorldID)
		if err != nil {
			return nil, err
		}
		worldContext = world.Name
		if world.Description != "" {
			worldContext += ": " + world.Description
		}
	}

	out, err := s.generate(ctx, suggestionsProfile, map[string]any{
		"Title":           title,
		"Category":        strings.TrimSpace(input.Category),
		"WorldContext":    worldContext,
		"ExistingContent": strings.TrimSpace(input.ExistingContent),
	})
	if err != nil {
		return nil, err
	}
	return newText(out), nil
}

func (s *service) ArticleIdeas(ctx context.Context, p permissions.Principal, input IdeasInput) ([]Idea, error) {
	if err := s.ready(p); err != nil {
		return nil, err
	}
	if input.WorldID == uuid.Nil {
		return nil, domain.Invalid(ErrWorldRequired, "world_id", "World is required.")
	}
	worldContext, err := s.worldContext(ctx, p, input.WorldID)
	if err != nil {
		return nil, err
	}

	out, err := s.generate(ctx, ideasProfile, map[string]any{
		"WorldContext": worldContext,
		"Category":     strings.TrimSpace(input.Category),
	})
	if err != nil {
		return nil, err
	}
	return ParseIdeas(out), nil
}

func (s *service) Expand(ctx context.Context, p permissions.Principal, input ExpandInput) (string, error) {
	if err := s.ready(p); err != nil {
		return "", err
	}
	content := strings.TrimSpace(input.Content)
	if err := requireContent(content, minExpandLength, "Content is required for expansion.", "Content is too short to expand."); err != nil {
		return "", err
	}
	direction := strings.TrimSpace(input.Direction)
	if direction == "" {
		direction = "general"
	}

	out, err := s.generate(ctx, expandProfile, map[string]any{
		"Content":   content,
		"Context":   strings.TrimSpace(input.Context),
		"Direction": direction,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (s *service) Names(ctx context.Context, p permissions.Principal, input NamesInput) ([]string, error) {
	if err := s.ready(p); err != nil {
		return nil, err
	}
	kind := strings.ToLower(strings.TrimSpace(input.Type))
	if kind == "" {
		return nil, domain.Invalid(ErrNameTypeRequired, "type", "Name type is required.")
	}
	if !slices.Contains(NameTypes, kind) {
		return nil, domain.Invalid(ErrNameTypeInvalid, "type", "Name type is invalid.")
	}
	count := input.Count
	switch {
	case count == 0:
		count = defaultNameCount
	case count < 1:
		count = 1
	case count > maxNameCount:
		count = maxNameCount
	}

	out, err := s.generate(ctx, namesProfile, map[string]any{
		"Type":    kind,
		"Context": strings.TrimSpace(input.Context),
		"Count":   count,
	})
	if err != nil {
		return nil, err
	}
	names := ParseList(out)
	if len(names) > count {
		names = names[:count]
	}
	return names, nil
}

func (s *service) Analyze(ctx context.Context, p permissions.Principal, input AnalyzeInput) (*Text, error) {
	if err := s.ready(p); err != nil {
		return nil, err
	}
	content := strings.TrimSpace(input.Content)
	if err := requireContent(content, minAnalysisLength, "Content is required for analysis.", "Content is too short for a meaningful analysis."); err != nil {
		return nil, err
	}
	kind := strings.ToLower(strings.TrimSpace(input.Type))
	if !slices.Contains(AnalysisTypes, kind) {
		kind = "article"
	}

	out, err := s.generate(ctx, analysisProfile, map[string]any{
		"Content": content,
		"Type":    kind,
	})
	if err != nil {
		return nil, err
	}
	return newText(out), nil
}

func (s *service) ready(p permissions.Principal) error {
	if s.generator == nil {
		return ErrAssistantDisabled
	}
	if p.Anonymous() {
		return permissions.Check(permissions.RoleNone, permissions.ActionRead)
	}
	return nil
}

func (s *service) world(ctx context.Context, p permissions.Principal, worldID uuid.UUID) (*worlds.World, error) {
	if s.worlds == nil {
		return &worlds.World{ID: worldID}, nil
	}
	return s.worlds.GetWorld(ctx, p, worldID)
}

// worldContext describes the world and its most recently updated published
// articles.
func (s *service) worldContext(ctx context.Context, p permissions.Principal, worldID uuid.UUID) (string, error) {
	world, err := s.world(ctx, p, worldID)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if world.Name != "" {
		fmt.Fprintf(&b, "Mundo: %s\n", world.Name)
	}
	if world.Description != "" {
		fmt.Fprintf(&b, "Descrição: %s\n", world.Description)
	}
	if s.articles == nil {
		return b.String(), nil
	}

	page, err := s.articles.Search(ctx, p, articles.SearchInput{WorldID: worldID, PerPage: 20})
	if err != nil {
		return "", err
	}
	listed := 0
	for _, article := range page.Articles {
		if !article.Published {
			continue
		}
		if listed == 0 {
			b.WriteString("\nArtigos Existentes:\n")
		}
		fmt.Fprintf(&b, "- %s: %s...\n", article.Title, excerpt(article.PublicBody, contextExcerpt))
		listed++
		if listed == contextArticles {
			break
		}
	}
	return b.String(), nil
}

func (s *service) generate(ctx context.Context, prof profile, data map[string]any) (string, error) {
	prompt, err := prof.render(data)
	if err != nil {
		return "", fmt.Errorf("assistant: render %s prompt: %w", prof.name, err)
	}

	req := interfaces.GenerationRequest{
		System:      prof.system,
		Prompt:      prompt,
		Model:       s.model,
		MaxTokens:   prof.maxTokens,
		Temperature: prof.temperature,
	}
	if s.maxTokens > 0 && req.MaxTokens > s.maxTokens {
		req.MaxTokens = s.maxTokens
	}
	if s.temperature > 0 {
		req.Temperature = s.temperature
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := time.Now()
	out, err := s.generator.Generate(ctx, req)
	logger := logging.WithFields(s.logger, map[string]any{
		"operation":   prof.name,
		"duration_ms": time.Since(started).Milliseconds(),
	})
	switch {
	case errors.Is(err, context.DeadlineExceeded) || (err == nil && ctx.Err() == context.DeadlineExceeded):
		logger.Warn("assistant generation timed out", "timeout", s.timeout.String())
		return "", ErrAssistantTimeout
	case err != nil:
		logger.Error("assistant generation failed", "error", err)
		return "", fmt.Errorf("%w: %s: %v", ErrGeneration, prof.name, err)
	}
	logger.Debug("assistant generation completed", "chars", utf8.RuneCountInString(out))
	return out, nil
}

func requireContent(content string, minLength int, requiredMessage, shortMessage string) error {
	if content == "" {
		return domain.Invalid(ErrContentRequired, "content", requiredMessage)
	}
	if utf8.RuneCountInString(content) < minLength {
		return domain.Invalid(ErrContentTooShort, "content", shortMessage)
	}
	return nil
}

func excerpt(body string, limit int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= limit {
		return body
	}
	return string(runes[:limit])
}
