package wikicmd_test

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/codice-do-criador/codice/internal/articles"
	"github.com/codice-do-criador/codice/internal/commands/fixtures"
	wikicmd "github.com/codice-do-criador/codice/internal/commands/wiki"
	"github.com/codice-do-criador/codice/internal/identity"
	"github.com/codice-do-criador/codice/internal/permissions"
	"github.com/codice-do-criador/codice/internal/worlds"
)

type stubRebuilder struct {
	worlds []uuid.UUID
	err    error
}

func (s *stubRebuilder) RebuildReferences(ctx context.Context, worldID uuid.UUID) (int, error) {
	s.worlds = append(s.worlds, worldID)
	return 3, s.err
}

func TestRebuildReferencesCommandValidate(t *testing.T) {
	if err := (wikicmd.RebuildReferencesCommand{}).Validate(); err == nil {
		t.Fatal("expected error for nil world")
	}
	if err := (wikicmd.RebuildReferencesCommand{WorldID: uuid.New()}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRebuildReferencesHandler(t *testing.T) {
	stub := &stubRebuilder{}
	handler := wikicmd.NewRebuildReferencesHandler(stub, nil)
	worldID := uuid.New()
	if err := handler.Execute(context.Background(), wikicmd.RebuildReferencesCommand{WorldID: worldID}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(stub.worlds) != 1 || stub.worlds[0] != worldID {
		t.Fatalf("unexpected calls %v", stub.worlds)
	}

	stub.err = errors.New("db down")
	err := handler.Execute(context.Background(), wikicmd.RebuildReferencesCommand{WorldID: worldID})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}

	err = handler.Execute(context.Background(), wikicmd.RebuildReferencesCommand{})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
}

func TestRegisterWikiCommands(t *testing.T) {
	if _, err := wikicmd.RegisterWikiCommands(nil, nil, nil); err == nil {
		t.Fatal("expected error for nil rebuilder")
	}
	reg := fixtures.NewRecordingRegistry()
	set, err := wikicmd.RegisterWikiCommands(reg, &stubRebuilder{}, nil)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(reg.Handlers) != 1 || reg.Handlers[0] != set.RebuildReferences {
		t.Fatalf("expected handler registered, got %#v", reg.Handlers)
	}
}

func TestRebuildReferencesAgainstArticleService(t *testing.T) {
	ctx := context.Background()
	owner := permissions.NewPrincipal(uuid.New())
	worldSvc := worlds.NewService(
		worlds.NewMemoryWorldRepository(),
		worlds.NewMemoryCategoryRepository(),
		worlds.NewMemoryCollaboratorRepository(),
		worlds.NewMemoryFieldRepository(),
	)
	repo := articles.NewMemoryArticleRepository()
	articleSvc := articles.NewService(repo, worldSvc)

	w, err := worldSvc.CreateWorld(ctx, owner, worlds.CreateWorldInput{Name: "Valdoria"})
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	res := articleSvc.Create(ctx, owner, articles.CreateInput{
		WorldID:    w.ID,
		CategoryID: identity.DefaultCategoryUUID(w.ID, "História"),
		Title:      "Guerra dos Reis",
		PublicBody: "@[Rei Aldric] e @[Porto Sul]",
	})
	if !res.Success {
		t.Fatalf("create: %s", res.Message)
	}
	if err := repo.ReplaceReferences(ctx, &articles.Article{ID: res.ID, WorldID: w.ID}, nil); err != nil {
		t.Fatalf("clear references: %v", err)
	}

	handler := wikicmd.NewRebuildReferencesHandler(articleSvc, nil)
	if err := handler.Execute(ctx, wikicmd.RebuildReferencesCommand{WorldID: w.ID}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if refs := repo.References(res.ID); len(refs) != 2 {
		t.Fatalf("expected references rebuilt, got %d", len(refs))
	}
}
