package codice_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/google/uuid"

	"github.com/codice-do-criador/codice"
	"github.com/codice-do-criador/codice/internal/commands/fixtures"
	markdowncmd "github.com/codice-do-criador/codice/internal/commands/markdown"
	wikicmd "github.com/codice-do-criador/codice/internal/commands/wiki"
)

func TestRegisterCommandsRecordsHandlers(t *testing.T) {
	module := newModule(t)
	registry := fixtures.NewRecordingRegistry()
	cron := fixtures.NewCronRecorder()

	result, err := codice.RegisterCommands(module, codice.RegistrationOptions{
		Registry:      registry,
		CronRegistrar: codice.CronRegistrar(cron.Registrar()),
		ImportCron:    "@hourly",
		ImportSchedule: markdowncmd.ImportMarkdownCommand{
			WorldID:   uuid.New(),
			ActorID:   uuid.New(),
			Directory: "notes",
		},
	})
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}
	if len(result.Handlers) != 2 || len(registry.Handlers) != 2 {
		t.Fatalf("expected 2 handlers, got %d registered of %d", len(registry.Handlers), len(result.Handlers))
	}
	if _, ok := registry.Handlers[0].(*wikicmd.RebuildReferencesHandler); !ok {
		t.Fatalf("expected rebuild handler first, got %T", registry.Handlers[0])
	}
	if len(cron.Registrations) != 1 {
		t.Fatalf("expected one cron registration, got %d", len(cron.Registrations))
	}
	if got := cron.Registrations[0].Config.Expression; got != "@hourly" {
		t.Fatalf("expected @hourly, got %q", got)
	}
}

func TestRegisterCommandsPropagatesRegistryError(t *testing.T) {
	module := newModule(t)
	registry := fixtures.NewRecordingRegistry()
	registry.Err = errors.New("registry closed")

	if _, err := codice.RegisterCommands(module, codice.RegistrationOptions{Registry: registry}); err == nil {
		t.Fatalf("expected registry error")
	}
}

func TestRegisterCommandsNilModule(t *testing.T) {
	result, err := codice.RegisterCommands(nil, codice.RegistrationOptions{})
	if err != nil || len(result.Handlers) != 0 {
		t.Fatalf("expected empty result, got %+v (%v)", result, err)
	}
}

func TestGlobalDispatcherRoutesRebuild(t *testing.T) {
	module := newModule(t)
	ctx := context.Background()
	owner := codice.NewPrincipal(uuid.New())
	world, category := newWorld(t, module, owner, "Valdoria")
	create(t, module, owner, world.ID, category, "Aldric", "")
	create(t, module, owner, world.ID, category, "Chronicle", "@[Aldric]")

	result, err := codice.RegisterCommands(module, codice.RegistrationOptions{Dispatcher: codice.GlobalDispatcher{}})
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}
	t.Cleanup(result.Unsubscribe)
	if len(result.Subscriptions) != 2 {
		t.Fatalf("expected 2 subscriptions, got %d", len(result.Subscriptions))
	}

	if err := dispatcher.Dispatch(ctx, wikicmd.RebuildReferencesCommand{WorldID: world.ID}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	aldric, err := module.Articles().View(ctx, owner, world.ID, "Aldric")
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if len(aldric.Backlinks) != 1 {
		t.Fatalf("expected backlink after rebuild, got %+v", aldric.Backlinks)
	}
}

func TestGlobalDispatcherRejectsUnknownHandler(t *testing.T) {
	_, err := codice.GlobalDispatcher{}.RegisterCommand(struct{}{})
	if !errors.Is(err, codice.ErrCommandHandlerUnsupported) {
		t.Fatalf("expected ErrCommandHandlerUnsupported, got %v", err)
	}
}
