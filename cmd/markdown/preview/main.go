package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/codice-do-criador/codice"
	"github.com/codice-do-criador/codice/cmd/internal/bootstrap"
	"github.com/codice-do-criador/codice/internal/markdown"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	fs := flag.NewFlagSet("markdown-preview", flag.ExitOnError)
	opts := bootstrap.Bind(fs)
	var (
		contentDir = fs.String("content-dir", ".", "Directory the file path is relative to")
		filePath   = fs.String("file", "", "Markdown file to preview")
		world      = fs.String("world", "", "World whose articles resolve the wiki links")
		actor      = fs.String("actor", "", "User ID with read access to the world")
	)
	_ = fs.Parse(os.Args[1:])

	if *filePath == "" {
		log.Fatalf("--file is required")
	}
	worldID, err := bootstrap.ParseUUID(*world)
	if err != nil || worldID == uuid.Nil {
		log.Fatalf("--world must be a valid id")
	}
	actorID, err := bootstrap.ParseUUID(*actor)
	if err != nil || actorID == uuid.Nil {
		log.Fatalf("--actor must be a valid id")
	}

	ctx := context.Background()

	loader := markdown.NewLoader(os.DirFS(*contentDir), markdown.LoaderConfig{})
	doc, err := loader.LoadFile(ctx, *filePath)
	if err != nil {
		log.Fatalf("load markdown document: %v", err)
	}

	module, err := moduleBuilder(ctx, *opts)
	if err != nil {
		log.Fatalf("bootstrap module: %v", err)
	}
	defer module.Module.Close()

	html, err := module.Module.Articles().Preview(ctx, codice.NewPrincipal(actorID), worldID, string(doc.Body))
	if err != nil {
		log.Fatalf("render preview: %v", err)
	}

	fmt.Fprintf(os.Stdout, "Path: %s\nChecksum: %x\n\n", doc.Path, doc.Checksum)

	if frontmatter, err := json.MarshalIndent(doc.FrontMatter, "", "  "); err == nil {
		fmt.Fprintf(os.Stdout, "Frontmatter:\n%s\n\n", frontmatter)
	}
	fmt.Fprintf(os.Stdout, "Rendered HTML:\n%s\n", html)
}
