package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/codice-do-criador/codice/cmd/internal/bootstrap"
	markdowncmd "github.com/codice-do-criador/codice/internal/commands/markdown"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	if err := runImport(context.Background(), os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("markdown import: %v", err)
	}
}

func runImport(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("markdown-import", flag.ContinueOnError)
	opts := bootstrap.Bind(fs)
	directory := fs.String("directory", ".", "Directory holding the markdown files")
	world := fs.String("world", "", "World ID receiving the articles")
	actor := fs.String("actor", "", "User ID recorded as author; needs write access to the world")
	category := fs.String("category", "", "Category used when a file has no category frontmatter")
	recursive := fs.Bool("recursive", false, "Descend into subdirectories")
	dryRun := fs.Bool("dry-run", false, "Report changes without writing articles")

	if err := fs.Parse(args); err != nil {
		return err
	}

	worldID, err := bootstrap.ParseUUID(*world)
	if err != nil {
		return fmt.Errorf("parse world: %w", err)
	}
	actorID, err := bootstrap.ParseUUID(*actor)
	if err != nil {
		return fmt.Errorf("parse actor: %w", err)
	}
	if worldID == uuid.Nil || actorID == uuid.Nil {
		return fmt.Errorf("world and actor are required")
	}

	module, err := moduleBuilder(ctx, *opts)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Module.Close()

	handler := module.Module.Commands().ImportMarkdown
	if handler == nil {
		return fmt.Errorf("markdown import handler not configured")
	}

	cmd := markdowncmd.ImportMarkdownCommand{
		WorldID:         worldID,
		Directory:       *directory,
		ActorID:         actorID,
		DefaultCategory: *category,
		Recursive:       *recursive,
		DryRun:          *dryRun,
	}
	execErr := handler.Execute(ctx, cmd)

	if result := handler.LastResult(); result != nil {
		prefix := ""
		if result.DryRun {
			prefix = "(dry run) "
		}
		fmt.Fprintf(out, "%screated %d, updated %d, unchanged %d, failed %d\n",
			prefix, len(result.Created), len(result.Updated), len(result.Skipped), len(result.Errors))
		for _, failure := range result.Errors {
			fmt.Fprintf(out, "  %s: %s\n", failure.Path, failure.Message)
		}
	}
	if execErr != nil {
		return fmt.Errorf("execute import command: %w", execErr)
	}
	return nil
}
