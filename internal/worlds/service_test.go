package worlds_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/codice-do-criador/codice/internal/domain"
	"github.com/codice-do-criador/codice/internal/identity"
	"github.com/codice-do-criador/codice/internal/permissions"
	"github.com/codice-do-criador/codice/internal/worlds"
	"github.com/codice-do-criador/codice/pkg/activity"
)

type fixture struct {
	svc      worlds.Service
	owner    permissions.Principal
	editor   permissions.Principal
	reader   permissions.Principal
	stranger permissions.Principal
	capture  *activity.CaptureHook
}

func newFixture(t *testing.T, opts ...worlds.ServiceOption) fixture {
	t.Helper()
	capture := &activity.CaptureHook{}
	base := []worlds.ServiceOption{
		worlds.WithClock(func() time.Time { return time.Unix(1700000000, 0) }),
		worlds.WithActivityEmitter(activity.NewEmitter(activity.Hooks{capture}, activity.Config{Enabled: true})),
	}
	svc := worlds.NewService(
		worlds.NewMemoryWorldRepository(),
		worlds.NewMemoryCategoryRepository(),
		worlds.NewMemoryCollaboratorRepository(),
		worlds.NewMemoryFieldRepository(),
		append(base, opts...)...,
	)
	return fixture{
		svc:      svc,
		owner:    permissions.NewPrincipal(uuid.New()),
		editor:   permissions.NewPrincipal(uuid.New()),
		reader:   permissions.NewPrincipal(uuid.New()),
		stranger: permissions.NewPrincipal(uuid.New()),
		capture:  capture,
	}
}

func (f fixture) world(t *testing.T, name string) *worlds.World {
	t.Helper()
	w, err := f.svc.CreateWorld(context.Background(), f.owner, worlds.CreateWorldInput{Name: name})
	if err != nil {
		t.Fatalf("create world: %v", err)
	}
	return w
}

func (f fixture) invite(t *testing.T, worldID uuid.UUID, p permissions.Principal, role string) {
	t.Helper()
	_, err := f.svc.InviteCollaborator(context.Background(), f.owner, worldID, worlds.InviteInput{UserID: p.UserID, Role: role})
	if err != nil {
		t.Fatalf("invite %s: %v", role, err)
	}
}

func TestCreateWorldSeedsDefaultCategories(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.world(t, "Aetheria")

	categories, err := f.svc.GetCategories(ctx, f.owner, w.ID)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(categories) != len(worlds.DefaultCategories) {
		t.Fatalf("expected %d categories got %d", len(worlds.DefaultCategories), len(categories))
	}
	first := categories[0]
	if first.Name != "Personagens" || !first.IsDefault {
		t.Fatalf("unexpected first category %+v", first)
	}
	if first.ID != identity.DefaultCategoryUUID(w.ID, "Personagens") {
		t.Fatalf("expected deterministic category id")
	}
	if first.Description != "Categoria padrão para personagens" {
		t.Fatalf("unexpected description %q", first.Description)
	}
	if len(f.capture.Events) == 0 || f.capture.Events[0].Verb != "create" {
		t.Fatalf("expected create activity, got %+v", f.capture.Events)
	}
}

func TestCreateWorldValidation(t *testing.T) {
	f := newFixture(t, worlds.WithMaxWorldsPerOwner(2))
	ctx := context.Background()

	if _, err := f.svc.CreateWorld(ctx, permissions.Principal{}, worlds.CreateWorldInput{Name: "Valid"}); !errors.Is(err, worlds.ErrPrincipalRequired) {
		t.Fatalf("expected ErrPrincipalRequired got %v", err)
	}

	_, err := f.svc.CreateWorld(ctx, f.owner, worlds.CreateWorldInput{Name: " ab "})
	var validation *domain.ValidationError
	if !errors.As(err, &validation) || !errors.Is(err, worlds.ErrNameTooShort) {
		t.Fatalf("expected name validation error got %v", err)
	}
	if validation.Field != "name" {
		t.Fatalf("expected field name got %q", validation.Field)
	}

	f.world(t, "Aetheria")
	if _, err := f.svc.CreateWorld(ctx, f.owner, worlds.CreateWorldInput{Name: "Aetheria"}); !errors.Is(err, worlds.ErrNameTaken) {
		t.Fatalf("expected ErrNameTaken got %v", err)
	}
	f.world(t, "Brumaria")
	if _, err := f.svc.CreateWorld(ctx, f.owner, worlds.CreateWorldInput{Name: "Caldera"}); !errors.Is(err, worlds.ErrWorldLimitReached) {
		t.Fatalf("expected ErrWorldLimitReached got %v", err)
	}
}

func TestWorldRoles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.world(t, "Aetheria")
	f.invite(t, w.ID, f.editor, "editor")
	f.invite(t, w.ID, f.reader, "Reader")

	cases := []struct {
		name      string
		principal permissions.Principal
		role      permissions.Role
	}{
		{"owner", f.owner, permissions.RoleOwner},
		{"editor", f.editor, permissions.RoleEditor},
		{"reader", f.reader, permissions.RoleReader},
		{"stranger", f.stranger, permissions.RoleNone},
		{"anonymous", permissions.Principal{}, permissions.RoleNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			role, err := f.svc.Role(ctx, tc.principal, w.ID)
			if err != nil {
				t.Fatalf("role: %v", err)
			}
			if role != tc.role {
				t.Fatalf("expected %q got %q", tc.role, role)
			}
		})
	}

	if err := f.svc.Authorize(ctx, f.reader, w.ID, permissions.ActionWrite); !errors.Is(err, permissions.ErrPermissionDenied) {
		t.Fatalf("reader write: expected denial got %v", err)
	}
	if err := f.svc.Authorize(ctx, f.editor, w.ID, permissions.ActionWrite); err != nil {
		t.Fatalf("editor write: %v", err)
	}
	if err := f.svc.Authorize(ctx, f.editor, w.ID, permissions.ActionAdmin); !errors.Is(err, permissions.ErrPermissionDenied) {
		t.Fatalf("editor admin: expected denial got %v", err)
	}
}

func TestPublicWorldReadable(t *testing.T) {
	ctx := context.Background()
	for _, enabled := range []bool{true, false} {
		f := newFixture(t, worlds.WithPublicReadable(enabled))
		public := true
		w := f.world(t, "Aetheria")
		if _, err := f.svc.UpdateWorld(ctx, f.owner, w.ID, worlds.UpdateWorldInput{IsPublic: &public}); err != nil {
			t.Fatalf("update: %v", err)
		}
		_, err := f.svc.GetWorld(ctx, f.stranger, w.ID)
		if enabled && err != nil {
			t.Fatalf("expected public read, got %v", err)
		}
		if !enabled && !errors.Is(err, permissions.ErrPermissionDenied) {
			t.Fatalf("expected denial when public reads are disabled, got %v", err)
		}
		if err := f.svc.Authorize(ctx, f.stranger, w.ID, permissions.ActionWrite); !errors.Is(err, permissions.ErrPermissionDenied) {
			t.Fatalf("public world must not grant write, got %v", err)
		}
	}
}

func TestListWorldsIncludesSharedWorlds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	own := f.world(t, "Aetheria")
	f.invite(t, own.ID, f.editor, "editor")

	memberships, err := f.svc.ListWorlds(ctx, f.editor)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(memberships) != 1 || memberships[0].World.ID != own.ID || memberships[0].Role != "editor" {
		t.Fatalf("unexpected memberships %+v", memberships)
	}

	if err := f.svc.RemoveCollaborator(ctx, f.owner, own.ID, f.editor.UserID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	memberships, err = f.svc.ListWorlds(ctx, f.editor)
	if err != nil {
		t.Fatalf("list after removal: %v", err)
	}
	if len(memberships) != 0 {
		t.Fatalf("expected no memberships got %d", len(memberships))
	}
	if role, _ := f.svc.Role(ctx, f.editor, own.ID); role != permissions.RoleNone {
		t.Fatalf("expected removed collaborator to lose role, got %q", role)
	}

	// reinviting reactivates the same row
	f.invite(t, own.ID, f.editor, "reader")
	collabs, err := f.svc.ListCollaborators(ctx, f.owner, own.ID)
	if err != nil {
		t.Fatalf("collaborators: %v", err)
	}
	if len(collabs) != 1 || collabs[0].Role != "reader" {
		t.Fatalf("unexpected collaborators %+v", collabs)
	}
}

func TestInviteCollaboratorValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.world(t, "Aetheria")

	cases := []struct {
		name  string
		actor permissions.Principal
		input worlds.InviteInput
		want  error
	}{
		{"owner role", f.owner, worlds.InviteInput{UserID: f.editor.UserID, Role: "owner"}, worlds.ErrRoleInvalid},
		{"self invite", f.owner, worlds.InviteInput{UserID: f.owner.UserID, Role: "editor"}, worlds.ErrInviteOwner},
		{"not owner", f.stranger, worlds.InviteInput{UserID: f.editor.UserID, Role: "editor"}, permissions.ErrPermissionDenied},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.InviteCollaborator(ctx, tc.actor, w.ID, tc.input)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v got %v", tc.want, err)
			}
		})
	}

	f.invite(t, w.ID, f.editor, "editor")
	_, err := f.svc.InviteCollaborator(ctx, f.owner, w.ID, worlds.InviteInput{UserID: f.editor.UserID, Role: "reader"})
	if !errors.Is(err, worlds.ErrAlreadyCollaborator) {
		t.Fatalf("expected ErrAlreadyCollaborator got %v", err)
	}
}

func TestCategoryLifecycle(t *testing.T) {
	usage := map[uuid.UUID]int{}
	f := newFixture(t, worlds.WithCategoryUsage(func(_ context.Context, _, categoryID uuid.UUID) (int, error) {
		return usage[categoryID], nil
	}))
	ctx := context.Background()
	w := f.world(t, "Aetheria")
	f.invite(t, w.ID, f.editor, "editor")
	f.invite(t, w.ID, f.reader, "reader")

	if _, err := f.svc.CreateCategory(ctx, f.reader, w.ID, worlds.CreateCategoryInput{Name: "Magias"}); !errors.Is(err, permissions.ErrPermissionDenied) {
		t.Fatalf("reader create: expected denial got %v", err)
	}
	if _, err := f.svc.CreateCategory(ctx, f.editor, w.ID, worlds.CreateCategoryInput{Name: "locais"}); !errors.Is(err, worlds.ErrCategoryExists) {
		t.Fatalf("expected ErrCategoryExists got %v", err)
	}
	if _, err := f.svc.CreateCategory(ctx, f.editor, w.ID, worlds.CreateCategoryInput{Name: "Magias", Color: "red"}); !errors.Is(err, worlds.ErrCategoryColor) {
		t.Fatalf("expected ErrCategoryColor got %v", err)
	}

	category, err := f.svc.CreateCategory(ctx, f.editor, w.ID, worlds.CreateCategoryInput{Name: "Magias"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	if category.Color != worlds.DefaultCategoryColor || category.IsDefault {
		t.Fatalf("unexpected category %+v", category)
	}

	found, err := f.svc.FindCategoryByName(ctx, w.ID, "MAGIAS")
	if err != nil || found.ID != category.ID {
		t.Fatalf("find by name: %v %+v", err, found)
	}

	defaultID := identity.DefaultCategoryUUID(w.ID, "Locais")
	if err := f.svc.DeleteCategory(ctx, f.owner, w.ID, defaultID); !errors.Is(err, worlds.ErrDefaultCategory) {
		t.Fatalf("expected ErrDefaultCategory got %v", err)
	}

	usage[category.ID] = 2
	if err := f.svc.DeleteCategory(ctx, f.owner, w.ID, category.ID); !errors.Is(err, worlds.ErrCategoryInUse) {
		t.Fatalf("expected ErrCategoryInUse got %v", err)
	}
	usage[category.ID] = 0
	if err := f.svc.DeleteCategory(ctx, f.owner, w.ID, category.ID); err != nil {
		t.Fatalf("delete category: %v", err)
	}
	if _, err := f.svc.GetCategory(ctx, w.ID, category.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found got %v", err)
	}
}

func TestGetCategoryRejectsOtherWorld(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.world(t, "Aetheria")
	b := f.world(t, "Brumaria")

	id := identity.DefaultCategoryUUID(a.ID, "Itens")
	if _, err := f.svc.GetCategory(ctx, b.ID, id); !errors.Is(err, worlds.ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound got %v", err)
	}
}

func TestDefineField(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	w := f.world(t, "Aetheria")

	cases := []struct {
		name  string
		input worlds.DefineFieldInput
		want  error
	}{
		{"missing name", worlds.DefineFieldInput{Type: worlds.FieldText}, worlds.ErrFieldNameRequired},
		{"bad type", worlds.DefineFieldInput{Name: "Idade", Type: "date"}, worlds.ErrFieldTypeInvalid},
		{"choice without options", worlds.DefineFieldInput{Name: "Raça", Type: worlds.FieldChoice, Options: []string{" "}}, worlds.ErrFieldOptions},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.svc.DefineField(ctx, f.owner, w.ID, tc.input); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v got %v", tc.want, err)
			}
		})
	}

	field, err := f.svc.DefineField(ctx, f.owner, w.ID, worlds.DefineFieldInput{
		Name:    "Raça",
		Type:    worlds.FieldChoice,
		Options: []string{"Elfo", "Anão", "Elfo"},
	})
	if err != nil {
		t.Fatalf("define: %v", err)
	}
	if field.ID != identity.FieldDefinitionUUID(w.ID, "Raça") {
		t.Fatalf("expected deterministic field id")
	}
	if len(field.Options) != 2 {
		t.Fatalf("expected deduplicated options got %v", field.Options)
	}
	if _, err := f.svc.DefineField(ctx, f.owner, w.ID, worlds.DefineFieldInput{Name: "raça", Type: worlds.FieldText}); !errors.Is(err, worlds.ErrFieldExists) {
		t.Fatalf("expected ErrFieldExists got %v", err)
	}

	fields, err := f.svc.ListFields(ctx, w.ID)
	if err != nil || len(fields) != 1 {
		t.Fatalf("list fields: %v %d", err, len(fields))
	}
}

func TestDeleteWorldRunsHooks(t *testing.T) {
	var hooked []uuid.UUID
	f := newFixture(t, worlds.WithWorldDeleteHook(func(_ context.Context, worldID uuid.UUID) error {
		hooked = append(hooked, worldID)
		return nil
	}))
	ctx := context.Background()
	w := f.world(t, "Aetheria")
	f.invite(t, w.ID, f.editor, "editor")

	if err := f.svc.DeleteWorld(ctx, f.editor, w.ID); !errors.Is(err, permissions.ErrPermissionDenied) {
		t.Fatalf("editor delete: expected denial got %v", err)
	}
	if err := f.svc.DeleteWorld(ctx, f.owner, w.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(hooked) != 1 || hooked[0] != w.ID {
		t.Fatalf("expected hook call for %s got %v", w.ID, hooked)
	}
	if _, err := f.svc.GetWorld(ctx, f.owner, w.ID); !errors.Is(err, worlds.ErrWorldNotFound) {
		t.Fatalf("expected ErrWorldNotFound got %v", err)
	}
	if _, err := f.svc.GetCategory(ctx, w.ID, identity.DefaultCategoryUUID(w.ID, "Locais")); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected categories removed, got %v", err)
	}
}

func TestDeleteWorldStopsOnHookError(t *testing.T) {
	boom := errors.New("boom")
	f := newFixture(t, worlds.WithWorldDeleteHook(func(context.Context, uuid.UUID) error { return boom }))
	ctx := context.Background()
	w := f.world(t, "Aetheria")

	if err := f.svc.DeleteWorld(ctx, f.owner, w.ID); !errors.Is(err, boom) {
		t.Fatalf("expected hook error got %v", err)
	}
	if _, err := f.svc.GetWorld(ctx, f.owner, w.ID); err != nil {
		t.Fatalf("world should survive failed hook: %v", err)
	}
}
