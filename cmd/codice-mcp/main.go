// Command codice-mcp serves the wiki tools of a Códice do Criador database
// to MCP clients over stdio.
//
// Usage:
//
//	codice-mcp -actor <user-id> -dsn "file:codice.db?cache=shared&_fk=1"
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/server"

	"github.com/codice-do-criador/codice"
	"github.com/codice-do-criador/codice/cmd/internal/bootstrap"
	"github.com/codice-do-criador/codice/internal/logging"
	mcpserver "github.com/codice-do-criador/codice/internal/mcp"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("codice-mcp", flag.ContinueOnError)
	opts := bootstrap.Bind(fs)
	actor := fs.String("actor", "", "User ID every tool call runs as")
	version := fs.Bool("version", false, "Print the version and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *version {
		fmt.Printf("codice-mcp %s\n", mcpserver.Version)
		return nil
	}

	actorID, err := bootstrap.ParseUUID(*actor)
	if err != nil {
		return fmt.Errorf("parse actor: %w", err)
	}
	if actorID == uuid.Nil {
		return fmt.Errorf("-actor is required")
	}

	module, err := bootstrap.BuildModule(context.Background(), *opts)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Module.Close()

	s := mcpserver.New(mcpserver.Config{
		Articles: module.Module.Articles(),
		Actor:    codice.NewPrincipal(actorID),
		Logger:   logging.MCPLogger(module.Module.Container().LoggerProvider()),
	})

	// Logs go to stderr; stdout carries the protocol.
	return server.ServeStdio(s)
}
