package di_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/codice-do-criador/codice/internal/articles"
	"github.com/codice-do-criador/codice/internal/assistant"
	"github.com/codice-do-criador/codice/internal/commands/fixtures"
	markdowncmd "github.com/codice-do-criador/codice/internal/commands/markdown"
	wikicmd "github.com/codice-do-criador/codice/internal/commands/wiki"
	"github.com/codice-do-criador/codice/internal/di"
	"github.com/codice-do-criador/codice/internal/logging/console"
	"github.com/codice-do-criador/codice/internal/permissions"
	"github.com/codice-do-criador/codice/internal/runtimeconfig"
	"github.com/codice-do-criador/codice/internal/worlds"
	"github.com/codice-do-criador/codice/pkg/interfaces"
	"github.com/codice-do-criador/codice/pkg/testsupport"
)

func memoryConfig() runtimeconfig.Config {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Provider = runtimeconfig.StorageProviderMemory
	cfg.Links.Routes = runtimeconfig.DefaultRoutes("https://codice.example")
	return cfg
}

func newContainer(t *testing.T, cfg runtimeconfig.Config, opts ...di.Option) *di.Container {
	t.Helper()
	var buf bytes.Buffer
	opts = append([]di.Option{di.WithLoggerProvider(console.NewProvider(console.Options{Writer: &buf}))}, opts...)
	container, err := di.NewContainer(context.Background(), cfg, opts...)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })
	return container
}

type seeded struct {
	owner  permissions.Principal
	world  *worlds.World
	people *worlds.Category
}

func seedWorld(t *testing.T, container *di.Container) seeded {
	t.Helper()
	ctx := context.Background()
	owner := permissions.NewPrincipal(uuid.New())
	world, err := container.WorldService().CreateWorld(ctx, owner, worlds.CreateWorldInput{Name: "Valdoria"})
	if err != nil {
		t.Fatalf("create world: %v", err)
	}
	people, err := container.WorldService().FindCategoryByName(ctx, world.ID, "Personagens")
	if err != nil {
		t.Fatalf("find category: %v", err)
	}
	return seeded{owner: owner, world: world, people: people}
}

func createArticle(t *testing.T, container *di.Container, s seeded, title, body string) uuid.UUID {
	t.Helper()
	res := container.ArticleService().Create(context.Background(), s.owner, articles.CreateInput{
		WorldID:    s.world.ID,
		CategoryID: s.people.ID,
		Title:      title,
		PublicBody: body,
		Published:  true,
	})
	if !res.Success {
		t.Fatalf("create %q: %s", title, res.Message)
	}
	return res.ID
}

func TestContainerWiresMemoryServices(t *testing.T) {
	container := newContainer(t, memoryConfig())
	if container.DB() != nil {
		t.Fatalf("expected no database with memory storage")
	}

	s := seedWorld(t, container)
	createArticle(t, container, s, "Rei Aldric", "Governa a partir de @[Porto Sul].")
	createArticle(t, container, s, "Porto Sul", "Cidade portuária.")

	view, err := container.ArticleService().View(context.Background(), s.owner, s.world.ID, "rei-aldric")
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	want := `href="https://codice.example/worlds/` + s.world.ID.String() + `/articles/porto-sul"`
	if !strings.Contains(view.HTML, want) {
		t.Fatalf("expected urlkit link %s in %s", want, view.HTML)
	}

	target, err := container.ArticleService().View(context.Background(), s.owner, s.world.ID, "Porto Sul")
	if err != nil {
		t.Fatalf("view target: %v", err)
	}
	if len(target.Backlinks) != 1 || target.Backlinks[0].Title != "Rei Aldric" {
		t.Fatalf("expected backlink from Rei Aldric, got %+v", target.Backlinks)
	}
}

func TestContainerCascadesWorldDeletion(t *testing.T) {
	container := newContainer(t, memoryConfig())
	s := seedWorld(t, container)
	id := createArticle(t, container, s, "Rei Aldric", "corpo")

	if err := container.WorldService().DeleteCategory(context.Background(), s.owner, s.world.ID, s.people.ID); err == nil {
		t.Fatalf("expected default category deletion to fail")
	}

	if err := container.WorldService().DeleteWorld(context.Background(), s.owner, s.world.ID); err != nil {
		t.Fatalf("delete world: %v", err)
	}
	count, err := container.ArticleService().CountByCategory(context.Background(), s.world.ID, s.people.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected articles purged, %d remain (article %s)", count, id)
	}
}

func TestContainerRegistersCommands(t *testing.T) {
	registry := fixtures.NewRecordingRegistry()
	container := newContainer(t, memoryConfig(), di.WithCommandRegistry(registry))

	if len(registry.Handlers) != 2 {
		t.Fatalf("expected 2 registered handlers, got %d", len(registry.Handlers))
	}
	if _, ok := registry.Handlers[0].(*wikicmd.RebuildReferencesHandler); !ok {
		t.Fatalf("expected rebuild handler first, got %T", registry.Handlers[0])
	}
	if _, ok := registry.Handlers[1].(*markdowncmd.ImportMarkdownHandler); !ok {
		t.Fatalf("expected import handler second, got %T", registry.Handlers[1])
	}

	s := seedWorld(t, container)
	createArticle(t, container, s, "Rei Aldric", "@[Porto Sul]")
	if err := container.WikiCommands().RebuildReferences.Execute(context.Background(), wikicmd.RebuildReferencesCommand{WorldID: s.world.ID}); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
}

func TestContainerRegistryFailureAborts(t *testing.T) {
	registry := fixtures.NewRecordingRegistry()
	registry.Err = errors.New("registry closed")

	_, err := di.NewContainer(context.Background(), memoryConfig(), di.WithCommandRegistry(registry))
	if err == nil || !strings.Contains(err.Error(), "registry closed") {
		t.Fatalf("expected registry error, got %v", err)
	}
}

func TestContainerRejectsInvalidConfig(t *testing.T) {
	cfg := memoryConfig()
	cfg.Wiki.Backlinks = "fulltext"
	if _, err := di.NewContainer(context.Background(), cfg); !errors.Is(err, runtimeconfig.ErrBacklinkStrategyUnknown) {
		t.Fatalf("expected ErrBacklinkStrategyUnknown, got %v", err)
	}
}

func TestContainerBunStorageWithCache(t *testing.T) {
	cfg := memoryConfig()
	cfg.Storage.Provider = runtimeconfig.StorageProviderBun
	cfg.Cache.Enabled = true
	cfg.Wiki.Backlinks = runtimeconfig.BacklinksScan

	db := testsupport.NewSQLiteMemoryDB(t)
	container := newContainer(t, cfg, di.WithBunDB(db))
	if container.DB() != db {
		t.Fatalf("expected container to use supplied database")
	}

	s := seedWorld(t, container)
	createArticle(t, container, s, "Porto Sul", "Cidade.")
	createArticle(t, container, s, "Rei Aldric", "Vive em @[Porto Sul].")

	if _, err := container.WorldService().FindCategoryByName(context.Background(), s.world.ID, "personagens"); err != nil {
		t.Fatalf("cached category lookup: %v", err)
	}

	view, err := container.ArticleService().View(context.Background(), s.owner, s.world.ID, "porto-sul")
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if len(view.Backlinks) != 1 || view.Backlinks[0].Title != "Rei Aldric" {
		t.Fatalf("expected scan backlink, got %+v", view.Backlinks)
	}

	if err := container.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Fatalf("supplied database must stay open: %v", err)
	}
}

type cannedGenerator struct{}

func (cannedGenerator) Generate(context.Context, interfaces.GenerationRequest) (string, error) {
	return "1. Aldric\n2. Brena", nil
}

func TestContainerAssistantFollowsConfig(t *testing.T) {
	disabled := newContainer(t, memoryConfig(), di.WithTextGenerator(cannedGenerator{}))
	if disabled.AssistantService().Enabled() {
		t.Fatalf("expected assistant disabled by config")
	}

	cfg := memoryConfig()
	cfg.Assistant.Enabled = true
	enabled := newContainer(t, cfg, di.WithTextGenerator(cannedGenerator{}))
	names, err := enabled.AssistantService().Names(context.Background(), permissions.NewPrincipal(uuid.New()), assistant.NamesInput{Type: "person", Count: 2})
	if err != nil {
		t.Fatalf("names: %v", err)
	}
	if len(names) != 2 || names[0] != "Aldric" {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestNewLoggerProvider(t *testing.T) {
	if _, err := di.NewLoggerProvider(runtimeconfig.LoggingConfig{Provider: "console", Level: "debug"}); err != nil {
		t.Fatalf("console provider: %v", err)
	}
	if _, err := di.NewLoggerProvider(runtimeconfig.LoggingConfig{Provider: "gologger", Level: "info", Format: "json"}); err != nil {
		t.Fatalf("gologger provider: %v", err)
	}
	if _, err := di.NewLoggerProvider(runtimeconfig.LoggingConfig{Provider: "syslog"}); !errors.Is(err, runtimeconfig.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}
}

func TestContainerMarkdownImportDisabled(t *testing.T) {
	cfg := memoryConfig()
	cfg.Markdown.ImportEnabled = false
	container := newContainer(t, cfg)
	s := seedWorld(t, container)

	err := container.MarkdownCommands().Import.Execute(context.Background(), markdowncmd.ImportMarkdownCommand{
		WorldID:   s.world.ID,
		ActorID:   s.owner.UserID,
		Directory: "notes",
	})
	if !errors.Is(err, markdowncmd.ErrMarkdownFeatureDisabled) {
		t.Fatalf("expected ErrMarkdownFeatureDisabled, got %v", err)
	}
}

func cachedBunContainer(t *testing.T) *di.Container {
	t.Helper()
	cfg := memoryConfig()
	cfg.Storage.Provider = runtimeconfig.StorageProviderBun
	cfg.Cache.Enabled = true
	return newContainer(t, cfg, di.WithBunDB(testsupport.NewSQLiteMemoryDB(t)))
}

func TestContainerCacheKeepsWorldsApart(t *testing.T) {
	container := cachedBunContainer(t)
	ctx := context.Background()
	alice := permissions.NewPrincipal(uuid.New())
	bruno := permissions.NewPrincipal(uuid.New())

	alpha, err := container.WorldService().CreateWorld(ctx, alice, worlds.CreateWorldInput{Name: "Alpha"})
	if err != nil {
		t.Fatalf("create alpha: %v", err)
	}
	beta, err := container.WorldService().CreateWorld(ctx, bruno, worlds.CreateWorldInput{Name: "Beta"})
	if err != nil {
		t.Fatalf("create beta: %v", err)
	}

	for _, tc := range []struct {
		owner permissions.Principal
		world *worlds.World
	}{{alice, alpha}, {bruno, beta}, {alice, alpha}} {
		categories, err := container.WorldService().GetCategories(ctx, tc.owner, tc.world.ID)
		if err != nil {
			t.Fatalf("categories of %s: %v", tc.world.Name, err)
		}
		if len(categories) == 0 {
			t.Fatalf("expected seeded categories for %s", tc.world.Name)
		}
		for _, c := range categories {
			if c.WorldID != tc.world.ID {
				t.Fatalf("%s listed category %q of world %s", tc.world.Name, c.Name, c.WorldID)
			}
		}

		memberships, err := container.WorldService().ListWorlds(ctx, tc.owner)
		if err != nil {
			t.Fatalf("list worlds: %v", err)
		}
		if len(memberships) != 1 || memberships[0].World.ID != tc.world.ID {
			t.Fatalf("expected only %s for its owner, got %+v", tc.world.Name, memberships)
		}
	}

	if _, err := container.WorldService().DefineField(ctx, alice, alpha.ID, worlds.DefineFieldInput{Name: "Idade", Type: worlds.FieldNumber}); err != nil {
		t.Fatalf("define field: %v", err)
	}
	if _, err := container.WorldService().ListFields(ctx, alpha.ID); err != nil {
		t.Fatalf("list alpha fields: %v", err)
	}
	fields, err := container.WorldService().ListFields(ctx, beta.ID)
	if err != nil {
		t.Fatalf("list beta fields: %v", err)
	}
	if len(fields) != 0 {
		t.Fatalf("beta must not see alpha's fields, got %+v", fields)
	}
}

func TestContainerCacheScopedFieldsAcrossCreates(t *testing.T) {
	container := cachedBunContainer(t)
	ctx := context.Background()
	s := seedWorld(t, container)
	places, err := container.WorldService().FindCategoryByName(ctx, s.world.ID, "Locais")
	if err != nil {
		t.Fatalf("find places: %v", err)
	}

	age, err := container.WorldService().DefineField(ctx, s.owner, s.world.ID, worlds.DefineFieldInput{
		Name: "Idade", Type: worlds.FieldNumber, CategoryID: &s.people.ID,
	})
	if err != nil {
		t.Fatalf("define age: %v", err)
	}
	climate, err := container.WorldService().DefineField(ctx, s.owner, s.world.ID, worlds.DefineFieldInput{
		Name: "Clima", Type: worlds.FieldText, CategoryID: &places.ID,
	})
	if err != nil {
		t.Fatalf("define climate: %v", err)
	}

	first := container.ArticleService().Create(ctx, s.owner, articles.CreateInput{
		WorldID: s.world.ID, CategoryID: s.people.ID, Title: "Aldric",
		Fields: []articles.FieldValue{articles.NumberValue(age.ID, 40)},
	})
	if !first.Success {
		t.Fatalf("create character: %s", first.Message)
	}
	second := container.ArticleService().Create(ctx, s.owner, articles.CreateInput{
		WorldID: s.world.ID, CategoryID: places.ID, Title: "Pedraverde",
		Fields: []articles.FieldValue{articles.TextValue(climate.ID, "Temperado")},
	})
	if !second.Success {
		t.Fatalf("create place: %s", second.Message)
	}

	fields, err := container.WorldService().ListFields(ctx, s.world.ID)
	if err != nil {
		t.Fatalf("list fields: %v", err)
	}
	if len(fields) != 2 || fields[0] == nil || fields[1] == nil {
		t.Fatalf("field definitions were mutated: %+v", fields)
	}
}
