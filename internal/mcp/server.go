package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/codice-do-criador/codice/internal/logging"
	"github.com/codice-do-criador/codice/internal/permissions"
	"github.com/codice-do-criador/codice/pkg/interfaces"
)

// Version is reported to MCP clients.
var Version = "dev"

// Config wires the tool dependencies. Actor is the user every call runs as.
type Config struct {
	Articles ArticleReader
	Actor    permissions.Principal
	Logger   interfaces.Logger
}

// Tools is the set of registered tools.
type Tools struct {
	Render     *RenderTool
	References *ReferencesTool
	Backlinks  *BacklinksTool
	Search     *SearchTool
}

// NewTools builds the tool handlers.
func NewTools(cfg Config) *Tools {
	d := deps{articles: cfg.Articles, actor: cfg.Actor, logger: cfg.Logger}
	if d.logger == nil {
		d.logger = logging.NoOp()
	}
	return &Tools{
		Render:     &RenderTool{d},
		References: &ReferencesTool{d},
		Backlinks:  &BacklinksTool{d},
		Search:     &SearchTool{d},
	}
}

// New creates the MCP server with every wiki tool registered.
func New(cfg Config) *server.MCPServer {
	s := server.NewMCPServer(
		"codice",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions("Wiki tools for a Códice do Criador world. Articles reference each other with @[Title]; "+
			"use wiki_references and wiki_backlinks to follow those links and article_search to find articles."),
	)

	tools := NewTools(cfg)
	s.AddTool(tools.Render.Definition(), tools.Render.Handle)
	s.AddTool(tools.References.Definition(), tools.References.Handle)
	s.AddTool(tools.Backlinks.Definition(), tools.Backlinks.Handle)
	s.AddTool(tools.Search.Definition(), tools.Search.Handle)
	return s
}
