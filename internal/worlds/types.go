package worlds

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// World is a tenant-scoped container of categories and articles owned by one
// user.
type World struct {
	bun.BaseModel `bun:"table:worlds,alias:w"`

	ID          uuid.UUID `bun:",pk,type:uuid" json:"id"`
	OwnerID     uuid.UUID `bun:"owner_id,notnull,type:uuid" json:"owner_id"`
	Name        string    `bun:"name,notnull" json:"name"`
	Description string    `bun:"description" json:"description,omitempty"`
	CoverImage  string    `bun:"cover_image" json:"cover_image,omitempty"`
	IsPublic    bool      `bun:"is_public,notnull,default:false" json:"is_public"`
	CreatedAt   time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Category groups articles inside a world. Default categories are seeded
// with the world and cannot be deleted.
type Category struct {
	bun.BaseModel `bun:"table:categories,alias:cat"`

	ID          uuid.UUID `bun:",pk,type:uuid" json:"id"`
	WorldID     uuid.UUID `bun:"world_id,notnull,type:uuid" json:"world_id"`
	Name        string    `bun:"name,notnull" json:"name"`
	Description string    `bun:"description" json:"description,omitempty"`
	Icon        string    `bun:"icon" json:"icon,omitempty"`
	Color       string    `bun:"color,notnull" json:"color"`
	IsDefault   bool      `bun:"is_default,notnull,default:false" json:"is_default"`
	Position    int       `bun:"position,notnull,default:0" json:"position"`
	CreatedAt   time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// Collaborator grants a user a role in a world. Removal deactivates the row.
type Collaborator struct {
	bun.BaseModel `bun:"table:world_collaborators,alias:wc"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	WorldID   uuid.UUID `bun:"world_id,notnull,type:uuid" json:"world_id"`
	UserID    uuid.UUID `bun:"user_id,notnull,type:uuid" json:"user_id"`
	Role      string    `bun:"role,notnull" json:"role"`
	InvitedBy uuid.UUID `bun:"invited_by,notnull,type:uuid" json:"invited_by"`
	InvitedAt time.Time `bun:"invited_at,nullzero,default:current_timestamp" json:"invited_at"`
	IsActive  bool      `bun:"is_active,notnull,default:true" json:"is_active"`
}

// FieldType is the closed set of custom field kinds.
type FieldType string

const (
	FieldText   FieldType = "text"
	FieldNumber FieldType = "number"
	FieldChoice FieldType = "choice"
)

// Valid reports whether t is a known field type.
func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldNumber, FieldChoice:
		return true
	default:
		return false
	}
}

// FieldDefinition declares a custom field articles of a world may carry.
// A nil CategoryID applies the field to every category.
type FieldDefinition struct {
	bun.BaseModel `bun:"table:field_definitions,alias:fd"`

	ID         uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	WorldID    uuid.UUID  `bun:"world_id,notnull,type:uuid" json:"world_id"`
	CategoryID *uuid.UUID `bun:"category_id,type:uuid" json:"category_id,omitempty"`
	Name       string     `bun:"name,notnull" json:"name"`
	Type       FieldType  `bun:"field_type,notnull" json:"type"`
	Options    []string   `bun:"options,type:jsonb" json:"options,omitempty"`
	Required   bool       `bun:"required,notnull,default:false" json:"required"`
	Position   int        `bun:"position,notnull,default:0" json:"position"`
	CreatedAt  time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// AppliesTo reports whether the field is used by articles of categoryID.
func (f *FieldDefinition) AppliesTo(categoryID uuid.UUID) bool {
	return f.CategoryID == nil || *f.CategoryID == categoryID
}

// Membership pairs a world with the caller's role in it.
type Membership struct {
	World *World
	Role  string
}

// DefaultCategory describes a category seeded into every new world.
type DefaultCategory struct {
	Name  string
	Icon  string
	Color string
}

// DefaultCategories are seeded, in order, into every new world.
var DefaultCategories = []DefaultCategory{
	{Name: "Personagens", Icon: "👤", Color: "#3b82f6"},
	{Name: "Locais", Icon: "🏛️", Color: "#10b981"},
	{Name: "Itens", Icon: "⚔️", Color: "#f59e0b"},
	{Name: "Criaturas", Icon: "🐉", Color: "#ef4444"},
	{Name: "História", Icon: "📜", Color: "#8b5cf6"},
	{Name: "Facções", Icon: "🏴", Color: "#6b7280"},
	{Name: "Eventos", Icon: "⚡", Color: "#f97316"},
	{Name: "Conceitos", Icon: "💡", Color: "#06b6d4"},
}

// DefaultCategoryColor is used when a category is created without a color.
const DefaultCategoryColor = "#3b82f6"
