// Command codice seeds a demonstration world and prints how its wiki links
// render and which articles link back to each other.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/codice-do-criador/codice"
	"github.com/codice-do-criador/codice/cmd/internal/bootstrap"
	"github.com/codice-do-criador/codice/internal/articles"
	"github.com/codice-do-criador/codice/internal/worlds"
)

var moduleBuilder = bootstrap.BuildModule

type seedArticle struct {
	title    string
	category string
	body     string
}

var demoArticles = []seedArticle{
	{title: "Aldric", category: "Personagens", body: "Rei de Valdoria e veterano da @[History of War]."},
	{title: "Pedraverde", category: "Locais", body: "Vila fortificada à beira do rio."},
	{title: "History of War", category: "História", body: "Led by @[Aldric] near @[Pedraverde] and @[Unknown Place]."},
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("codice: %v", err)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("codice", flag.ContinueOnError)
	opts := bootstrap.Bind(fs)
	owner := fs.String("owner", "", "Owner user ID; a random one is used when empty")
	name := fs.String("world", "Valdoria", "Name of the demonstration world")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ownerID, err := bootstrap.ParseUUID(*owner)
	if err != nil {
		return fmt.Errorf("parse owner: %w", err)
	}
	if ownerID == uuid.Nil {
		ownerID = uuid.New()
	}
	principal := codice.NewPrincipal(ownerID)

	module, err := moduleBuilder(ctx, *opts)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Module.Close()

	world, err := module.Module.Worlds().CreateWorld(ctx, principal, worlds.CreateWorldInput{
		Name:        *name,
		Description: "Mundo de demonstração.",
	})
	if err != nil {
		return fmt.Errorf("create world: %w", err)
	}
	module.Logger.Info("codice.demo.world_created", "world_id", world.ID, "owner_id", ownerID)

	for _, seed := range demoArticles {
		category, err := module.Module.Worlds().FindCategoryByName(ctx, world.ID, seed.category)
		if err != nil {
			return fmt.Errorf("category %s: %w", seed.category, err)
		}
		res := module.Module.Articles().Create(ctx, principal, articles.CreateInput{
			WorldID:    world.ID,
			CategoryID: category.ID,
			Title:      seed.title,
			PublicBody: seed.body,
			Published:  true,
		})
		if !res.Success {
			return fmt.Errorf("create %q: %s", seed.title, res.Message)
		}
	}

	view, err := module.Module.Articles().View(ctx, principal, world.ID, "History of War")
	if err != nil {
		return fmt.Errorf("view article: %w", err)
	}

	fmt.Fprintf(out, "World: %s (%s)\n\n", world.Name, world.ID)
	fmt.Fprintf(out, "%s\n%s\n\n", view.Article.Title, strings.TrimSpace(view.HTML))

	fmt.Fprintln(out, "References:")
	for _, ref := range view.References {
		state := "missing"
		if ref.Exists {
			state = ref.Slug
		}
		fmt.Fprintf(out, "  - %s (%s)\n", ref.Title, state)
	}

	aldric, err := module.Module.Articles().View(ctx, principal, world.ID, "Aldric")
	if err != nil {
		return fmt.Errorf("view article: %w", err)
	}
	fmt.Fprintf(out, "\nBacklinks to %s:\n", aldric.Article.Title)
	for _, ref := range aldric.Backlinks {
		fmt.Fprintf(out, "  - %s\n", ref.Title)
	}
	return nil
}
