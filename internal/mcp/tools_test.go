package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/codice-do-criador/codice/internal/articles"
	"github.com/codice-do-criador/codice/internal/identity"
	"github.com/codice-do-criador/codice/internal/permissions"
	"github.com/codice-do-criador/codice/internal/worlds"
)

type fixture struct {
	tools *Tools
	world *worlds.World
	owner permissions.Principal
}

func newFixture(t *testing.T, actor *permissions.Principal) *fixture {
	t.Helper()
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
	w, err := worldSvc.CreateWorld(ctx, owner, worlds.CreateWorldInput{Name: "Valdoria"})
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	for _, a := range []struct{ title, category, body string }{
		{"Rei Aldric", "Personagens", "Soberano de Valdoria."},
		{"Guerra dos Reis", "História", "Liderada por @[Rei Aldric] contra @[Império Sombrio]."},
	} {
		res := articleSvc.Create(ctx, owner, articles.CreateInput{
			WorldID:    w.ID,
			CategoryID: identity.DefaultCategoryUUID(w.ID, a.category),
			Title:      a.title,
			PublicBody: a.body,
			Published:  true,
		})
		if !res.Success {
			t.Fatalf("create %s: %s", a.title, res.Message)
		}
	}
	caller := owner
	if actor != nil {
		caller = *actor
	}
	return &fixture{
		tools: NewTools(Config{Articles: articleSvc, Actor: caller}),
		world: w,
		owner: owner,
	}
}

func makeReq(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(r *mcp.CallToolResult) string {
	if r == nil || len(r.Content) == 0 {
		return ""
	}
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func call(t *testing.T, handle func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) *mcp.CallToolResult {
	t.Helper()
	res, err := handle(context.Background(), makeReq(args))
	if err != nil {
		t.Fatalf("unexpected protocol error: %v", err)
	}
	return res
}

func TestDefinitions(t *testing.T) {
	tools := NewTools(Config{})
	for name, def := range map[string]mcp.Tool{
		"wiki_render":     tools.Render.Definition(),
		"wiki_references": tools.References.Definition(),
		"wiki_backlinks":  tools.Backlinks.Definition(),
		"article_search":  tools.Search.Definition(),
	} {
		if def.Name != name {
			t.Fatalf("tool name = %q, want %q", def.Name, name)
		}
		if _, ok := def.InputSchema.Properties["world_id"]; !ok {
			t.Fatalf("%s: missing world_id parameter", name)
		}
	}
}

func TestRenderTool(t *testing.T) {
	f := newFixture(t, nil)
	res := call(t, f.tools.Render.Handle, map[string]any{
		"world_id": f.world.ID.String(),
		"body":     "Veja @[Rei Aldric] e @[Porto Sul].",
	})
	if res.IsError {
		t.Fatalf("unexpected error %q", resultText(res))
	}
	html := resultText(res)
	if !strings.Contains(html, "/articles/rei-aldric") {
		t.Fatalf("expected resolved link, got %q", html)
	}
	if !strings.Contains(html, "title=Porto+Sul") && !strings.Contains(html, "title=Porto%20Sul") {
		t.Fatalf("expected create link for missing article, got %q", html)
	}

	if res := call(t, f.tools.Render.Handle, map[string]any{"world_id": "nope", "body": "x"}); !res.IsError {
		t.Fatal("expected error for invalid world id")
	}
}

func TestReferencesTool(t *testing.T) {
	f := newFixture(t, nil)
	res := call(t, f.tools.References.Handle, map[string]any{
		"world_id": f.world.ID.String(),
		"article":  "guerra-dos-reis",
	})
	text := resultText(res)
	if res.IsError {
		t.Fatalf("unexpected error %q", text)
	}
	if !strings.Contains(text, "- Rei Aldric (/rei-aldric)") || !strings.Contains(text, "- Império Sombrio (missing)") {
		t.Fatalf("unexpected references %q", text)
	}
}

func TestBacklinksTool(t *testing.T) {
	f := newFixture(t, nil)
	res := call(t, f.tools.Backlinks.Handle, map[string]any{
		"world_id": f.world.ID.String(),
		"article":  "Rei Aldric",
	})
	text := resultText(res)
	if !strings.Contains(text, "1 article(s) reference \"Rei Aldric\"") || !strings.Contains(text, "Guerra dos Reis") {
		t.Fatalf("unexpected backlinks %q", text)
	}

	res = call(t, f.tools.Backlinks.Handle, map[string]any{
		"world_id": f.world.ID.String(),
		"article":  "Ninguém",
	})
	if !res.IsError {
		t.Fatalf("expected not found error, got %q", resultText(res))
	}
}

func TestSearchTool(t *testing.T) {
	f := newFixture(t, nil)
	res := call(t, f.tools.Search.Handle, map[string]any{
		"world_id": f.world.ID.String(),
		"query":    "aldric",
	})
	text := resultText(res)
	if !strings.Contains(text, "Found 2 article(s)") {
		t.Fatalf("unexpected search output %q", text)
	}

	category := identity.DefaultCategoryUUID(f.world.ID, "História")
	res = call(t, f.tools.Search.Handle, map[string]any{
		"world_id":    f.world.ID.String(),
		"category_id": category.String(),
		"per_page":    float64(5),
	})
	text = resultText(res)
	if !strings.Contains(text, "Found 1 article(s)") || !strings.Contains(text, "Guerra dos Reis") {
		t.Fatalf("unexpected filtered output %q", text)
	}

	res = call(t, f.tools.Search.Handle, map[string]any{"world_id": f.world.ID.String(), "query": "inexistente"})
	if resultText(res) != "No articles found." {
		t.Fatalf("unexpected empty output %q", resultText(res))
	}
}

func TestToolsDenyStrangers(t *testing.T) {
	stranger := permissions.NewPrincipal(uuid.New())
	f := newFixture(t, &stranger)
	res := call(t, f.tools.Search.Handle, map[string]any{"world_id": f.world.ID.String()})
	if !res.IsError || !strings.Contains(resultText(res), "permission") {
		t.Fatalf("expected permission error, got %q", resultText(res))
	}
}

func TestNewRegistersTools(t *testing.T) {
	if New(Config{}) == nil {
		t.Fatal("expected server")
	}
}
