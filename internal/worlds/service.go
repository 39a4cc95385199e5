package worlds

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/codice-do-criador/codice/internal/domain"
	"github.com/codice-do-criador/codice/internal/identity"
	"github.com/codice-do-criador/codice/internal/logging"
	"github.com/codice-do-criador/codice/internal/permissions"
	"github.com/codice-do-criador/codice/pkg/activity"
	"github.com/codice-do-criador/codice/pkg/interfaces"
)

// Service manages worlds, their categories, collaborators and custom
// fields. Every operation takes the calling principal explicitly.
type Service interface {
	CreateWorld(ctx context.Context, p permissions.Principal, input CreateWorldInput) (*World, error)
	UpdateWorld(ctx context.Context, p permissions.Principal, worldID uuid.UUID, input UpdateWorldInput) (*World, error)
	DeleteWorld(ctx context.Context, p permissions.Principal, worldID uuid.UUID) error
	GetWorld(ctx context.Context, p permissions.Principal, worldID uuid.UUID) (*World, error)
	ListWorlds(ctx context.Context, p permissions.Principal) ([]Membership, error)

	GetCategories(ctx context.Context, p permissions.Principal, worldID uuid.UUID) ([]*Category, error)
	GetCategory(ctx context.Context, worldID, categoryID uuid.UUID) (*Category, error)
	FindCategoryByName(ctx context.Context, worldID uuid.UUID, name string) (*Category, error)
	CreateCategory(ctx context.Context, p permissions.Principal, worldID uuid.UUID, input CreateCategoryInput) (*Category, error)
	DeleteCategory(ctx context.Context, p permissions.Principal, worldID, categoryID uuid.UUID) error

	InviteCollaborator(ctx context.Context, p permissions.Principal, worldID uuid.UUID, input InviteInput) (*Collaborator, error)
	RemoveCollaborator(ctx context.Context, p permissions.Principal, worldID, userID uuid.UUID) error
	ListCollaborators(ctx context.Context, p permissions.Principal, worldID uuid.UUID) ([]*Collaborator, error)

	DefineField(ctx context.Context, p permissions.Principal, worldID uuid.UUID, input DefineFieldInput) (*FieldDefinition, error)
	ListFields(ctx context.Context, worldID uuid.UUID) ([]*FieldDefinition, error)

	Role(ctx context.Context, p permissions.Principal, worldID uuid.UUID) (permissions.Role, error)
	Authorize(ctx context.Context, p permissions.Principal, worldID uuid.UUID, action permissions.Action) error
}

// CreateWorldInput captures the fields of a new world.
type CreateWorldInput struct {
	Name        string
	Description string
	CoverImage  string
	IsPublic    bool
}

// UpdateWorldInput carries a partial update; nil fields are left unchanged.
type UpdateWorldInput struct {
	Name        *string
	Description *string
	CoverImage  *string
	IsPublic    *bool
}

// CreateCategoryInput captures the fields of a new category.
type CreateCategoryInput struct {
	Name        string
	Description string
	Icon        string
	Color       string
}

// InviteInput names the user to invite and the role to grant.
type InviteInput struct {
	UserID uuid.UUID
	Role   string
}

// DefineFieldInput declares a custom field.
type DefineFieldInput struct {
	Name       string
	Type       FieldType
	Options    []string
	Required   bool
	CategoryID *uuid.UUID
}

var (
	ErrWorldRepositoryRequired = errors.New("worlds: world repository required")

	ErrPrincipalRequired   = errors.New("worlds: authenticated principal required")
	ErrNameTooShort        = errors.New("worlds: name too short")
	ErrNameTaken           = errors.New("worlds: name already used by owner")
	ErrWorldLimitReached   = errors.New("worlds: world limit reached")
	ErrCategoryNameInvalid = errors.New("worlds: category name required")
	ErrCategoryExists      = errors.New("worlds: category already exists")
	ErrCategoryColor       = errors.New("worlds: category color invalid")
	ErrDefaultCategory     = errors.New("worlds: default categories cannot be deleted")
	ErrCategoryInUse       = errors.New("worlds: category has articles")
	ErrRoleInvalid         = errors.New("worlds: role must be editor or reader")
	ErrInviteOwner         = errors.New("worlds: owner cannot be invited")
	ErrAlreadyCollaborator = errors.New("worlds: user already collaborates")
	ErrFieldNameRequired   = errors.New("worlds: field name required")
	ErrFieldTypeInvalid    = errors.New("worlds: field type invalid")
	ErrFieldOptions        = errors.New("worlds: choice fields need options")
	ErrFieldExists         = errors.New("worlds: field already exists")

	ErrWorldNotFound        = domain.NotFound("worlds", "world")
	ErrCategoryNotFound     = domain.NotFound("worlds", "category")
	ErrCollaboratorNotFound = domain.NotFound("worlds", "collaborator")
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// WorldDeleteHook runs before a world's own records are removed.
type WorldDeleteHook func(ctx context.Context, worldID uuid.UUID) error

// CategoryUsageFunc counts the articles filed under a category.
type CategoryUsageFunc func(ctx context.Context, worldID, categoryID uuid.UUID) (int, error)

// IDGenerator produces unique identifiers.
type IDGenerator func() uuid.UUID

// ServiceOption configures the service.
type ServiceOption func(*service)

// WithIDGenerator overrides the id source.
func WithIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithActivityEmitter wires activity reporting.
func WithActivityEmitter(emitter *activity.Emitter) ServiceOption {
	return func(s *service) {
		s.activity = emitter
	}
}

// WithMaxWorldsPerOwner limits owned worlds; zero disables the limit.
func WithMaxWorldsPerOwner(limit int) ServiceOption {
	return func(s *service) {
		s.maxWorlds = limit
	}
}

// WithNameMinLength sets the minimum world name length in runes.
func WithNameMinLength(n int) ServiceOption {
	return func(s *service) {
		if n > 0 {
			s.nameMin = n
		}
	}
}

// WithPublicReadable lets any principal read public worlds.
func WithPublicReadable(enabled bool) ServiceOption {
	return func(s *service) {
		s.publicReadable = enabled
	}
}

// WithWorldDeleteHook registers a hook run by DeleteWorld.
func WithWorldDeleteHook(hook WorldDeleteHook) ServiceOption {
	return func(s *service) {
		if hook != nil {
			s.deleteHooks = append(s.deleteHooks, hook)
		}
	}
}

// WithCategoryUsage sets the article counter consulted by DeleteCategory.
func WithCategoryUsage(fn CategoryUsageFunc) ServiceOption {
	return func(s *service) {
		s.categoryUsage = fn
	}
}

type service struct {
	worlds        WorldRepository
	categories    CategoryRepository
	collaborators CollaboratorRepository
	fields        FieldRepository

	id             IDGenerator
	now            func() time.Time
	logger         interfaces.Logger
	activity       *activity.Emitter
	maxWorlds      int
	nameMin        int
	publicReadable bool
	deleteHooks    []WorldDeleteHook
	categoryUsage  CategoryUsageFunc
}

// NewService constructs a world service. Missing secondary repositories
// fall back to in-memory implementations.
func NewService(worlds WorldRepository, categories CategoryRepository, collaborators CollaboratorRepository, fields FieldRepository, opts ...ServiceOption) Service {
	if worlds == nil {
		panic(ErrWorldRepositoryRequired)
	}
	if categories == nil {
		categories = NewMemoryCategoryRepository()
	}
	if collaborators == nil {
		collaborators = NewMemoryCollaboratorRepository()
	}
	if fields == nil {
		fields = NewMemoryFieldRepository()
	}

	s := &service{
		worlds:        worlds,
		categories:    categories,
		collaborators: collaborators,
		fields:        fields,
		id:            uuid.New,
		now:           time.Now,
		logger:        logging.NoOp(),
		maxWorlds:     5,
		nameMin:       3,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) CreateWorld(ctx context.Context, p permissions.Principal, input CreateWorldInput) (*World, error) {
	if p.Anonymous() {
		return nil, ErrPrincipalRequired
	}
	name := strings.TrimSpace(input.Name)
	if utf8.RuneCountInString(name) < s.nameMin {
		return nil, domain.Invalid(ErrNameTooShort, "name",
			fmt.Sprintf("World name must be at least %d characters.", s.nameMin))
	}

	owned, err := s.worlds.ListByOwner(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if s.maxWorlds > 0 && len(owned) >= s.maxWorlds {
		return nil, domain.Invalid(ErrWorldLimitReached, "",
			fmt.Sprintf("You can own at most %d worlds.", s.maxWorlds))
	}
	for _, w := range owned {
		if w.Name == name {
			return nil, domain.Invalid(ErrNameTaken, "name", "You already have a world with this name.")
		}
	}

	now := s.now().UTC()
	world, err := s.worlds.Create(ctx, &World{
		ID:          s.id(),
		OwnerID:     p.UserID,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		CoverImage:  strings.TrimSpace(input.CoverImage),
		IsPublic:    input.IsPublic,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, err
	}

	if err := s.seedCategories(ctx, world.ID, now); err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).Info("world.created", "world_id", world.ID, "owner_id", p.UserID)
	s.emit(ctx, p, "create", "world", world.ID, map[string]any{"name": world.Name})
	return world, nil
}

func (s *service) seedCategories(ctx context.Context, worldID uuid.UUID, now time.Time) error {
	for i, def := range DefaultCategories {
		_, err := s.categories.Create(ctx, &Category{
			ID:          identity.DefaultCategoryUUID(worldID, def.Name),
			WorldID:     worldID,
			Name:        def.Name,
			Description: "Categoria padrão para " + strings.ToLower(def.Name),
			Icon:        def.Icon,
			Color:       def.Color,
			IsDefault:   true,
			Position:    i,
			CreatedAt:   now,
		})
		if err != nil {
			return fmt.Errorf("seed category %q: %w", def.Name, err)
		}
	}
	return nil
}

func (s *service) UpdateWorld(ctx context.Context, p permissions.Principal, worldID uuid.UUID, input UpdateWorldInput) (*World, error) {
	world, role, err := s.access(ctx, p, worldID)
	if err != nil {
		return nil, err
	}
	if err := permissions.Check(role, permissions.ActionAdmin); err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if utf8.RuneCountInString(name) < s.nameMin {
			return nil, domain.Invalid(ErrNameTooShort, "name",
				fmt.Sprintf("World name must be at least %d characters.", s.nameMin))
		}
		if name != world.Name {
			owned, err := s.worlds.ListByOwner(ctx, world.OwnerID)
			if err != nil {
				return nil, err
			}
			for _, w := range owned {
				if w.ID != world.ID && w.Name == name {
					return nil, domain.Invalid(ErrNameTaken, "name", "You already have a world with this name.")
				}
			}
		}
		world.Name = name
	}
	if input.Description != nil {
		world.Description = strings.TrimSpace(*input.Description)
	}
	if input.CoverImage != nil {
		world.CoverImage = strings.TrimSpace(*input.CoverImage)
	}
	if input.IsPublic != nil {
		world.IsPublic = *input.IsPublic
	}
	world.UpdatedAt = s.now().UTC()

	updated, err := s.worlds.Update(ctx, world)
	if err != nil {
		return nil, s.mapNotFound(err, ErrWorldNotFound)
	}
	s.emit(ctx, p, "update", "world", world.ID, nil)
	return updated, nil
}

func (s *service) DeleteWorld(ctx context.Context, p permissions.Principal, worldID uuid.UUID) error {
	_, role, err := s.access(ctx, p, worldID)
	if err != nil {
		return err
	}
	if err := permissions.Check(role, permissions.ActionAdmin); err != nil {
		return err
	}

	for _, hook := range s.deleteHooks {
		if err := hook(ctx, worldID); err != nil {
			return fmt.Errorf("world delete hook: %w", err)
		}
	}
	if err := s.collaborators.DeleteByWorld(ctx, worldID); err != nil {
		return err
	}
	if err := s.fields.DeleteByWorld(ctx, worldID); err != nil {
		return err
	}
	if err := s.categories.DeleteByWorld(ctx, worldID); err != nil {
		return err
	}
	if err := s.worlds.Delete(ctx, worldID); err != nil {
		return s.mapNotFound(err, ErrWorldNotFound)
	}

	s.logger.WithContext(ctx).Info("world.deleted", "world_id", worldID)
	s.emit(ctx, p, "delete", "world", worldID, nil)
	return nil
}

func (s *service) GetWorld(ctx context.Context, p permissions.Principal, worldID uuid.UUID) (*World, error) {
	world, role, err := s.access(ctx, p, worldID)
	if err != nil {
		return nil, err
	}
	if err := s.check(world, role, permissions.ActionRead); err != nil {
		return nil, err
	}
	return world, nil
}

func (s *service) ListWorlds(ctx context.Context, p permissions.Principal) ([]Membership, error) {
	if p.Anonymous() {
		return nil, ErrPrincipalRequired
	}
	owned, err := s.worlds.ListByOwner(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	out := make([]Membership, 0, len(owned))
	for _, w := range owned {
		out = append(out, Membership{World: w, Role: string(permissions.RoleOwner)})
	}

	collabs, err := s.collaborators.ListActiveByUser(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	roles := make(map[uuid.UUID]string, len(collabs))
	ids := make([]uuid.UUID, 0, len(collabs))
	for _, c := range collabs {
		roles[c.WorldID] = c.Role
		ids = append(ids, c.WorldID)
	}
	shared, err := s.worlds.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, w := range shared {
		if w.OwnerID == p.UserID {
			continue
		}
		out = append(out, Membership{World: w, Role: roles[w.ID]})
	}
	return out, nil
}

func (s *service) GetCategories(ctx context.Context, p permissions.Principal, worldID uuid.UUID) ([]*Category, error) {
	if err := s.Authorize(ctx, p, worldID, permissions.ActionRead); err != nil {
		return nil, err
	}
	return s.categories.ListByWorld(ctx, worldID)
}

func (s *service) GetCategory(ctx context.Context, worldID, categoryID uuid.UUID) (*Category, error) {
	category, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		return nil, s.mapNotFound(err, ErrCategoryNotFound)
	}
	if category.WorldID != worldID {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

func (s *service) FindCategoryByName(ctx context.Context, worldID uuid.UUID, name string) (*Category, error) {
	categories, err := s.categories.ListByWorld(ctx, worldID)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	for _, c := range categories {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return nil, ErrCategoryNotFound
}

func (s *service) CreateCategory(ctx context.Context, p permissions.Principal, worldID uuid.UUID, input CreateCategoryInput) (*Category, error) {
	if err := s.Authorize(ctx, p, worldID, permissions.ActionWrite); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.Invalid(ErrCategoryNameInvalid, "name", "Category name is required.")
	}
	color := strings.TrimSpace(input.Color)
	if color == "" {
		color = DefaultCategoryColor
	}
	if !colorPattern.MatchString(color) {
		return nil, domain.Invalid(ErrCategoryColor, "color", "Category color must look like #rrggbb.")
	}

	existing, err := s.categories.ListByWorld(ctx, worldID)
	if err != nil {
		return nil, err
	}
	if slices.ContainsFunc(existing, func(c *Category) bool { return strings.EqualFold(c.Name, name) }) {
		return nil, domain.Invalid(ErrCategoryExists, "name", "A category with this name already exists.")
	}

	category, err := s.categories.Create(ctx, &Category{
		ID:          s.id(),
		WorldID:     worldID,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Icon:        strings.TrimSpace(input.Icon),
		Color:       color,
		Position:    len(existing),
		CreatedAt:   s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	s.emit(ctx, p, "create", "category", category.ID, map[string]any{"world_id": worldID.String()})
	return category, nil
}

func (s *service) DeleteCategory(ctx context.Context, p permissions.Principal, worldID, categoryID uuid.UUID) error {
	if err := s.Authorize(ctx, p, worldID, permissions.ActionWrite); err != nil {
		return err
	}
	category, err := s.GetCategory(ctx, worldID, categoryID)
	if err != nil {
		return err
	}
	if category.IsDefault {
		return domain.Invalid(ErrDefaultCategory, "", "Default categories cannot be deleted.")
	}
	if s.categoryUsage != nil {
		count, err := s.categoryUsage(ctx, worldID, categoryID)
		if err != nil {
			return err
		}
		if count > 0 {
			return domain.Invalid(ErrCategoryInUse, "",
				fmt.Sprintf("Category still has %d articles.", count))
		}
	}
	if err := s.categories.Delete(ctx, categoryID); err != nil {
		return s.mapNotFound(err, ErrCategoryNotFound)
	}
	s.emit(ctx, p, "delete", "category", categoryID, map[string]any{"world_id": worldID.String()})
	return nil
}

func (s *service) InviteCollaborator(ctx context.Context, p permissions.Principal, worldID uuid.UUID, input InviteInput) (*Collaborator, error) {
	world, role, err := s.access(ctx, p, worldID)
	if err != nil {
		return nil, err
	}
	if err := permissions.Check(role, permissions.ActionAdmin); err != nil {
		return nil, err
	}
	grant, ok := permissions.ParseRole(input.Role)
	if !ok {
		return nil, domain.Invalid(ErrRoleInvalid, "role", "Role must be editor or reader.")
	}
	if input.UserID == uuid.Nil || input.UserID == world.OwnerID {
		return nil, domain.Invalid(ErrInviteOwner, "user_id", "The world owner cannot be invited.")
	}

	now := s.now().UTC()
	existing, err := s.collaborators.GetByWorldAndUser(ctx, worldID, input.UserID)
	var notFound *NotFoundError
	switch {
	case err == nil && existing.IsActive:
		return nil, domain.Invalid(ErrAlreadyCollaborator, "user_id", "This user already collaborates on the world.")
	case err == nil:
		existing.IsActive = true
		existing.Role = string(grant)
		existing.InvitedBy = p.UserID
		existing.InvitedAt = now
		updated, err := s.collaborators.Update(ctx, existing)
		if err != nil {
			return nil, err
		}
		s.emit(ctx, p, "invite", "collaborator", updated.ID, map[string]any{"role": updated.Role})
		return updated, nil
	case !errors.As(err, &notFound):
		return nil, err
	}

	created, err := s.collaborators.Create(ctx, &Collaborator{
		ID:        s.id(),
		WorldID:   worldID,
		UserID:    input.UserID,
		Role:      string(grant),
		InvitedBy: p.UserID,
		InvitedAt: now,
		IsActive:  true,
	})
	if err != nil {
		return nil, err
	}
	s.emit(ctx, p, "invite", "collaborator", created.ID, map[string]any{"role": created.Role})
	return created, nil
}

func (s *service) RemoveCollaborator(ctx context.Context, p permissions.Principal, worldID, userID uuid.UUID) error {
	_, role, err := s.access(ctx, p, worldID)
	if err != nil {
		return err
	}
	if err := permissions.Check(role, permissions.ActionAdmin); err != nil {
		return err
	}
	existing, err := s.collaborators.GetByWorldAndUser(ctx, worldID, userID)
	if err != nil {
		return s.mapNotFound(err, ErrCollaboratorNotFound)
	}
	if !existing.IsActive {
		return ErrCollaboratorNotFound
	}
	existing.IsActive = false
	if _, err := s.collaborators.Update(ctx, existing); err != nil {
		return err
	}
	s.emit(ctx, p, "remove", "collaborator", existing.ID, nil)
	return nil
}

func (s *service) ListCollaborators(ctx context.Context, p permissions.Principal, worldID uuid.UUID) ([]*Collaborator, error) {
	if err := s.Authorize(ctx, p, worldID, permissions.ActionRead); err != nil {
		return nil, err
	}
	all, err := s.collaborators.ListByWorld(ctx, worldID)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(all, func(c *Collaborator) bool { return !c.IsActive }), nil
}

func (s *service) DefineField(ctx context.Context, p permissions.Principal, worldID uuid.UUID, input DefineFieldInput) (*FieldDefinition, error) {
	if err := s.Authorize(ctx, p, worldID, permissions.ActionAdmin); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.Invalid(ErrFieldNameRequired, "name", "Field name is required.")
	}
	if !input.Type.Valid() {
		return nil, domain.Invalid(ErrFieldTypeInvalid, "type", "Field type must be text, number or choice.")
	}
	var options []string
	for _, opt := range input.Options {
		if trimmed := strings.TrimSpace(opt); trimmed != "" && !slices.Contains(options, trimmed) {
			options = append(options, trimmed)
		}
	}
	if input.Type == FieldChoice && len(options) == 0 {
		return nil, domain.Invalid(ErrFieldOptions, "options", "Choice fields need at least one option.")
	}
	if input.CategoryID != nil {
		if _, err := s.GetCategory(ctx, worldID, *input.CategoryID); err != nil {
			return nil, err
		}
	}

	existing, err := s.fields.ListByWorld(ctx, worldID)
	if err != nil {
		return nil, err
	}
	if slices.ContainsFunc(existing, func(f *FieldDefinition) bool { return strings.EqualFold(f.Name, name) }) {
		return nil, domain.Invalid(ErrFieldExists, "name", "A field with this name already exists.")
	}

	return s.fields.Create(ctx, &FieldDefinition{
		ID:         identity.FieldDefinitionUUID(worldID, name),
		WorldID:    worldID,
		CategoryID: input.CategoryID,
		Name:       name,
		Type:       input.Type,
		Options:    options,
		Required:   input.Required,
		Position:   len(existing),
		CreatedAt:  s.now().UTC(),
	})
}

func (s *service) ListFields(ctx context.Context, worldID uuid.UUID) ([]*FieldDefinition, error) {
	return s.fields.ListByWorld(ctx, worldID)
}

func (s *service) Role(ctx context.Context, p permissions.Principal, worldID uuid.UUID) (permissions.Role, error) {
	_, role, err := s.access(ctx, p, worldID)
	return role, err
}

func (s *service) Authorize(ctx context.Context, p permissions.Principal, worldID uuid.UUID, action permissions.Action) error {
	world, role, err := s.access(ctx, p, worldID)
	if err != nil {
		return err
	}
	return s.check(world, role, action)
}

func (s *service) check(world *World, role permissions.Role, action permissions.Action) error {
	if action == permissions.ActionRead && s.publicReadable && world.IsPublic {
		return nil
	}
	return permissions.Check(role, action)
}

// access loads the world and resolves the principal's role in it.
func (s *service) access(ctx context.Context, p permissions.Principal, worldID uuid.UUID) (*World, permissions.Role, error) {
	world, err := s.worlds.GetByID(ctx, worldID)
	if err != nil {
		return nil, permissions.RoleNone, s.mapNotFound(err, ErrWorldNotFound)
	}
	if p.Anonymous() {
		return world, permissions.RoleNone, nil
	}
	if world.OwnerID == p.UserID {
		return world, permissions.RoleOwner, nil
	}
	collab, err := s.collaborators.GetByWorldAndUser(ctx, worldID, p.UserID)
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return world, permissions.RoleNone, nil
		}
		return nil, permissions.RoleNone, err
	}
	if !collab.IsActive {
		return world, permissions.RoleNone, nil
	}
	role, _ := permissions.ParseRole(collab.Role)
	return world, role, nil
}

func (s *service) mapNotFound(err, sentinel error) error {
	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w: %s", sentinel, notFound.Key)
	}
	return err
}

func (s *service) emit(ctx context.Context, p permissions.Principal, verb, objectType string, objectID uuid.UUID, meta map[string]any) {
	if s.activity == nil || !s.activity.Enabled() || objectID == uuid.Nil {
		return
	}
	err := s.activity.Emit(ctx, activity.Event{
		Verb:       verb,
		ActorID:    p.UserID.String(),
		ObjectType: objectType,
		ObjectID:   objectID.String(),
		Metadata:   meta,
	})
	if err != nil {
		s.logger.WithContext(ctx).Warn("world.activity.emit_failed", "verb", verb, "error", err)
	}
}
