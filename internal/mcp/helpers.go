// Package mcpserver exposes the wiki of a world as MCP tools: rendering
// article bodies, listing outgoing references and backlinks, and searching
// articles.
//
// Every tool follows the same shape: a struct with its dependencies,
// Definition() returning the mcp.Tool schema and Handle() serving a call.
// Domain failures become tool errors with the user-facing message; they are
// never returned as protocol errors.
package mcpserver

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/codice-do-criador/codice/internal/articles"
	"github.com/codice-do-criador/codice/internal/domain"
	"github.com/codice-do-criador/codice/internal/permissions"
	"github.com/codice-do-criador/codice/internal/wiki"
	"github.com/codice-do-criador/codice/pkg/interfaces"
)

// ArticleReader is the part of articles.Service the tools call.
type ArticleReader interface {
	GetByTitleOrSlug(ctx context.Context, p permissions.Principal, worldID uuid.UUID, key string) (*articles.Article, error)
	Preview(ctx context.Context, p permissions.Principal, worldID uuid.UUID, body string) (string, error)
	References(ctx context.Context, p permissions.Principal, articleID uuid.UUID) ([]wiki.Resolution, error)
	Backlinks(ctx context.Context, p permissions.Principal, articleID uuid.UUID) ([]wiki.ArticleRef, error)
	Search(ctx context.Context, p permissions.Principal, input articles.SearchInput) (*articles.SearchPage, error)
}

// deps is shared by every tool.
type deps struct {
	articles ArticleReader
	actor    permissions.Principal
	logger   interfaces.Logger
}

func (d deps) failure(op string, err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(domain.Message(d.logger, op, err))
}

func uuidArg(req mcp.CallToolRequest, key string) (uuid.UUID, error) {
	raw := req.GetString(key, "")
	if raw == "" {
		return uuid.Nil, fmt.Errorf("'%s' is required", key)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("'%s' must be a UUID", key)
	}
	return id, nil
}

// intArg extracts an integer argument; JSON numbers arrive as float64.
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// article resolves the world_id and article arguments to an article.
func (d deps) article(ctx context.Context, req mcp.CallToolRequest) (*articles.Article, *mcp.CallToolResult) {
	worldID, err := uuidArg(req, "world_id")
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	key := req.GetString("article", "")
	if key == "" {
		return nil, mcp.NewToolResultError("'article' is required")
	}
	article, err := d.articles.GetByTitleOrSlug(ctx, d.actor, worldID, key)
	if err != nil {
		return nil, d.failure("mcp.article", err)
	}
	return article, nil
}
