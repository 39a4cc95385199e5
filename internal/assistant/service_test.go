package assistant_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/codice-do-criador/codice/internal/articles"
	"github.com/codice-do-criador/codice/internal/assistant"
	"github.com/codice-do-criador/codice/internal/identity"
	"github.com/codice-do-criador/codice/internal/permissions"
	"github.com/codice-do-criador/codice/internal/worlds"
	"github.com/codice-do-criador/codice/pkg/interfaces"
)

type stubGenerator struct {
	requests []interfaces.GenerationRequest
	reply    string
	err      error
	block    bool
}

func (g *stubGenerator) Generate(ctx context.Context, req interfaces.GenerationRequest) (string, error) {
	g.requests = append(g.requests, req)
	if g.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return g.reply, g.err
}

func (g *stubGenerator) last(t *testing.T) interfaces.GenerationRequest {
	t.Helper()
	if len(g.requests) == 0 {
		t.Fatal("expected a generation request")
	}
	return g.requests[len(g.requests)-1]
}

var user = permissions.NewPrincipal(uuid.New())

func TestDisabledWithoutGenerator(t *testing.T) {
	svc := assistant.NewService(nil)
	if svc.Enabled() {
		t.Fatal("expected disabled assistant")
	}
	if _, err := svc.Names(context.Background(), user, assistant.NamesInput{Type: "person"}); !errors.Is(err, assistant.ErrAssistantDisabled) {
		t.Fatalf("expected ErrAssistantDisabled, got %v", err)
	}
}

func TestAnonymousDenied(t *testing.T) {
	svc := assistant.NewService(&stubGenerator{})
	_, err := svc.Names(context.Background(), permissions.Principal{}, assistant.NamesInput{Type: "person"})
	if !errors.Is(err, permissions.ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}
}

func TestNames(t *testing.T) {
	gen := &stubGenerator{reply: "1. Aldric\n2. Morwen\n3. Thalor"}
	svc := assistant.NewService(gen, assistant.WithModel("gpt-test"), assistant.WithMaxTokens(300))

	names, err := svc.Names(context.Background(), user, assistant.NamesInput{Type: "Person", Count: 2, Context: "reino nórdico"})
	if err != nil {
		t.Fatalf("names: %v", err)
	}
	if len(names) != 2 || names[0] != "Aldric" || names[1] != "Morwen" {
		t.Fatalf("unexpected names %v", names)
	}
	req := gen.last(t)
	if req.Model != "gpt-test" || req.MaxTokens != 300 || req.Temperature != 0.9 {
		t.Fatalf("unexpected request settings %+v", req)
	}
	if !strings.Contains(req.Prompt, "Gere 2 nomes únicos e criativos para: person") || !strings.Contains(req.Prompt, "Contexto: reino nórdico") {
		t.Fatalf("unexpected prompt %q", req.Prompt)
	}
	if req.System == "" {
		t.Fatal("expected system prompt")
	}
}

func TestNamesValidation(t *testing.T) {
	gen := &stubGenerator{reply: "Aldric"}
	svc := assistant.NewService(gen)
	ctx := context.Background()

	if _, err := svc.Names(ctx, user, assistant.NamesInput{}); !errors.Is(err, assistant.ErrNameTypeRequired) {
		t.Fatalf("expected ErrNameTypeRequired, got %v", err)
	}
	if _, err := svc.Names(ctx, user, assistant.NamesInput{Type: "planet"}); !errors.Is(err, assistant.ErrNameTypeInvalid) {
		t.Fatalf("expected ErrNameTypeInvalid, got %v", err)
	}
	if _, err := svc.Names(ctx, user, assistant.NamesInput{Type: "place", Count: 50}); err != nil {
		t.Fatalf("names: %v", err)
	}
	if !strings.HasPrefix(gen.last(t).Prompt, "Gere 20 nomes") {
		t.Fatalf("expected count clamped to 20, got %q", gen.last(t).Prompt)
	}
	if _, err := svc.Names(ctx, user, assistant.NamesInput{Type: "place"}); err != nil {
		t.Fatalf("names: %v", err)
	}
	if !strings.HasPrefix(gen.last(t).Prompt, "Gere 10 nomes") {
		t.Fatalf("expected default count 10, got %q", gen.last(t).Prompt)
	}
}

func TestExpandAndAnalyzeValidation(t *testing.T) {
	gen := &stubGenerator{reply: "  Texto expandido.  "}
	svc := assistant.NewService(gen)
	ctx := context.Background()

	if _, err := svc.Expand(ctx, user, assistant.ExpandInput{}); !errors.Is(err, assistant.ErrContentRequired) {
		t.Fatalf("expected ErrContentRequired, got %v", err)
	}
	if _, err := svc.Expand(ctx, user, assistant.ExpandInput{Content: "curto"}); !errors.Is(err, assistant.ErrContentTooShort) {
		t.Fatalf("expected ErrContentTooShort, got %v", err)
	}
	out, err := svc.Expand(ctx, user, assistant.ExpandInput{Content: "A cidade portuária de Porto Sul."})
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if out != "Texto expandido." {
		t.Fatalf("unexpected expansion %q", out)
	}
	if !strings.Contains(gen.last(t).Prompt, "**Direção da Expansão:** general") {
		t.Fatalf("expected default direction, got %q", gen.last(t).Prompt)
	}

	if _, err := svc.Analyze(ctx, user, assistant.AnalyzeInput{Content: strings.Repeat("a", 49)}); !errors.Is(err, assistant.ErrContentTooShort) {
		t.Fatalf("expected ErrContentTooShort, got %v", err)
	}
	text, err := svc.Analyze(ctx, user, assistant.AnalyzeInput{Content: strings.Repeat("palavra ", 10), Type: "poem"})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if text.Raw != "Texto expandido." {
		t.Fatalf("unexpected analysis %+v", text)
	}
	if !strings.HasPrefix(gen.last(t).Prompt, "Analise o seguinte article") {
		t.Fatalf("expected unknown type to fall back to article, got %q", gen.last(t).Prompt)
	}
}

func TestTimeout(t *testing.T) {
	svc := assistant.NewService(&stubGenerator{block: true}, assistant.WithTimeout(10*time.Millisecond))
	_, err := svc.Expand(context.Background(), user, assistant.ExpandInput{Content: "A cidade portuária de Porto Sul."})
	if !errors.Is(err, assistant.ErrAssistantTimeout) {
		t.Fatalf("expected ErrAssistantTimeout, got %v", err)
	}
}

func TestGenerationFailure(t *testing.T) {
	svc := assistant.NewService(&stubGenerator{err: errors.New("http 500")})
	_, err := svc.Names(context.Background(), user, assistant.NamesInput{Type: "item"})
	if !errors.Is(err, assistant.ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}
}

func TestWorldContext(t *testing.T) {
	ctx := context.Background()
	owner := permissions.NewPrincipal(uuid.New())
	worldSvc := worlds.NewService(
		worlds.NewMemoryWorldRepository(),
		worlds.NewMemoryCategoryRepository(),
		worlds.NewMemoryCollaboratorRepository(),
		worlds.NewMemoryFieldRepository(),
		worlds.WithPublicReadable(false),
	)
	articleSvc := articles.NewService(articles.NewMemoryArticleRepository(), worldSvc)
	w, err := worldSvc.CreateWorld(ctx, owner, worlds.CreateWorldInput{Name: "Valdoria", Description: "Reino dividido"})
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	for _, a := range []struct {
		title     string
		published bool
	}{{"Rei Aldric", true}, {"Segredo Oculto", false}} {
		res := articleSvc.Create(ctx, owner, articles.CreateInput{
			WorldID:    w.ID,
			CategoryID: identity.DefaultCategoryUUID(w.ID, "Personagens"),
			Title:      a.title,
			PublicBody: "Corpo de " + a.title,
			Published:  a.published,
		})
		if !res.Success {
			t.Fatalf("create: %s", res.Message)
		}
	}

	gen := &stubGenerator{reply: "- Torre Negra: fortaleza\n- Porto Sul: cidade"}
	svc := assistant.NewService(gen, assistant.WithWorldContext(worldSvc, articleSvc))

	ideas, err := svc.ArticleIdeas(ctx, owner, assistant.IdeasInput{WorldID: w.ID, Category: "Locais"})
	if err != nil {
		t.Fatalf("ideas: %v", err)
	}
	if len(ideas) != 2 || ideas[1].Title != "Porto Sul" {
		t.Fatalf("unexpected ideas %+v", ideas)
	}
	prompt := gen.last(t).Prompt
	for _, want := range []string{"Mundo: Valdoria", "Descrição: Reino dividido", "- Rei Aldric: Corpo de Rei Aldric...", "**Categoria Específica:** Locais"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("expected %q in prompt %q", want, prompt)
		}
	}
	if strings.Contains(prompt, "Segredo Oculto") {
		t.Fatal("unpublished article leaked into world context")
	}

	if _, err := svc.ArticleIdeas(ctx, owner, assistant.IdeasInput{}); !errors.Is(err, assistant.ErrWorldRequired) {
		t.Fatalf("expected ErrWorldRequired, got %v", err)
	}
	stranger := permissions.NewPrincipal(uuid.New())
	if _, err := svc.ArticleIdeas(ctx, stranger, assistant.IdeasInput{WorldID: w.ID}); !errors.Is(err, permissions.ErrPermissionDenied) {
		t.Fatalf("expected permission denied for stranger, got %v", err)
	}

	suggestions, err := svc.ContentSuggestions(ctx, owner, assistant.SuggestionInput{WorldID: w.ID, Title: "Torre Negra", Category: "Locais"})
	if err != nil {
		t.Fatalf("suggestions: %v", err)
	}
	if suggestions.Raw == "" {
		t.Fatal("expected suggestion text")
	}
	if !strings.Contains(gen.last(t).Prompt, "**Contexto do Mundo:** Valdoria: Reino dividido") {
		t.Fatalf("unexpected suggestion prompt %q", gen.last(t).Prompt)
	}
	if _, err := svc.ContentSuggestions(ctx, owner, assistant.SuggestionInput{}); !errors.Is(err, assistant.ErrTitleRequired) {
		t.Fatalf("expected ErrTitleRequired, got %v", err)
	}
}
