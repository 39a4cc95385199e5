package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/codice-do-criador/codice/internal/articles"
)

// RenderTool handles wiki_render.
type RenderTool struct{ deps }

// Definition returns the MCP tool definition for wiki_render.
func (t *RenderTool) Definition() mcp.Tool {
	return mcp.NewTool("wiki_render",
		mcp.WithDescription("Render a Markdown body as article HTML, resolving @[Title] links against the articles of a world."),
		mcp.WithString("world_id", mcp.Required(), mcp.Description("World UUID")),
		mcp.WithString("body", mcp.Required(), mcp.Description("Markdown body with @[Title] references")),
	)
}

// Handle processes the wiki_render tool call.
func (t *RenderTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	worldID, err := uuidArg(req, "world_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body := req.GetString("body", "")
	if strings.TrimSpace(body) == "" {
		return mcp.NewToolResultError("'body' is required"), nil
	}
	html, err := t.articles.Preview(ctx, t.actor, worldID, body)
	if err != nil {
		return t.failure("mcp.wiki_render", err), nil
	}
	return mcp.NewToolResultText(html), nil
}

// ReferencesTool handles wiki_references.
type ReferencesTool struct{ deps }

// Definition returns the MCP tool definition for wiki_references.
func (t *ReferencesTool) Definition() mcp.Tool {
	return mcp.NewTool("wiki_references",
		mcp.WithDescription("List the @[Title] references of an article and whether each one resolves to an existing article."),
		mcp.WithString("world_id", mcp.Required(), mcp.Description("World UUID")),
		mcp.WithString("article", mcp.Required(), mcp.Description("Article title or slug")),
	)
}

// Handle processes the wiki_references tool call.
func (t *ReferencesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	article, failure := t.article(ctx, req)
	if failure != nil {
		return failure, nil
	}
	refs, err := t.articles.References(ctx, t.actor, article.ID)
	if err != nil {
		return t.failure("mcp.wiki_references", err), nil
	}
	if len(refs) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("%q references no articles.", article.Title)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%q references %d article(s):\n\n", article.Title, len(refs))
	for _, ref := range refs {
		if ref.Exists {
			fmt.Fprintf(&b, "- %s (/%s)\n", ref.Title, ref.Slug)
			continue
		}
		fmt.Fprintf(&b, "- %s (missing)\n", ref.Title)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// BacklinksTool handles wiki_backlinks.
type BacklinksTool struct{ deps }

// Definition returns the MCP tool definition for wiki_backlinks.
func (t *BacklinksTool) Definition() mcp.Tool {
	return mcp.NewTool("wiki_backlinks",
		mcp.WithDescription("List the articles of the same world whose public text references an article."),
		mcp.WithString("world_id", mcp.Required(), mcp.Description("World UUID")),
		mcp.WithString("article", mcp.Required(), mcp.Description("Article title or slug")),
	)
}

// Handle processes the wiki_backlinks tool call.
func (t *BacklinksTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	article, failure := t.article(ctx, req)
	if failure != nil {
		return failure, nil
	}
	refs, err := t.articles.Backlinks(ctx, t.actor, article.ID)
	if err != nil {
		return t.failure("mcp.wiki_backlinks", err), nil
	}
	if len(refs) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No articles reference %q.", article.Title)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d article(s) reference %q:\n\n", len(refs), article.Title)
	for _, ref := range refs {
		fmt.Fprintf(&b, "- %s (/%s)\n", ref.Title, ref.Slug)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// SearchTool handles article_search.
type SearchTool struct{ deps }

// Definition returns the MCP tool definition for article_search.
func (t *SearchTool) Definition() mcp.Tool {
	return mcp.NewTool("article_search",
		mcp.WithDescription("Search the articles of a world by title or public text, most recently updated first."),
		mcp.WithString("world_id", mcp.Required(), mcp.Description("World UUID")),
		mcp.WithString("query", mcp.Description("Text to look for; empty lists every article")),
		mcp.WithString("category_id", mcp.Description("Restrict to a category UUID")),
		mcp.WithNumber("page", mcp.Description("Page number (default: 1)")),
		mcp.WithNumber("per_page", mcp.Description("Results per page (default: 20, max: 100)")),
	)
}

// Handle processes the article_search tool call.
func (t *SearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	worldID, err := uuidArg(req, "world_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	input := articles.SearchInput{
		WorldID: worldID,
		Query:   req.GetString("query", ""),
		Page:    intArg(req, "page", 1),
		PerPage: intArg(req, "per_page", 0),
	}
	if raw := req.GetString("category_id", ""); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			return mcp.NewToolResultError("'category_id' must be a UUID"), nil
		}
		input.CategoryID = &categoryID
	}

	page, err := t.articles.Search(ctx, t.actor, input)
	if err != nil {
		return t.failure("mcp.article_search", err), nil
	}
	if page.Total == 0 {
		return mcp.NewToolResultText("No articles found."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d article(s), page %d of %d:\n\n", page.Total, page.Page, page.Pages())
	for _, a := range page.Articles {
		fmt.Fprintf(&b, "- %s (/%s) %s\n", a.Title, a.Slug, excerpt(a.PublicBody, 120))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func excerpt(body string, limit int) string {
	body = strings.Join(strings.Fields(body), " ")
	runes := []rune(body)
	if len(runes) <= limit {
		return body
	}
	return string(runes[:limit]) + "…"
}
