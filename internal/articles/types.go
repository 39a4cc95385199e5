package articles

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/codice-do-criador/codice/internal/wiki"
	"github.com/codice-do-criador/codice/internal/worlds"
)

// Article is a titled content unit inside a world. Titles and slugs are
// unique per world.
type Article struct {
	bun.BaseModel `bun:"table:articles,alias:a"`

	ID          uuid.UUID    `bun:",pk,type:uuid" json:"id"`
	WorldID     uuid.UUID    `bun:"world_id,notnull,type:uuid" json:"world_id"`
	CategoryID  uuid.UUID    `bun:"category_id,notnull,type:uuid" json:"category_id"`
	Title       string       `bun:"title,notnull" json:"title"`
	Slug        string       `bun:"slug,notnull" json:"slug"`
	PublicBody  string       `bun:"public_body" json:"public_body"`
	PrivateBody string       `bun:"private_body" json:"private_body,omitempty"`
	Published   bool         `bun:"published,notnull,default:false" json:"published"`
	ViewCount   int          `bun:"view_count,notnull,default:0" json:"view_count"`
	Fields      []FieldValue `bun:"fields,type:jsonb" json:"fields,omitempty"`
	CreatedBy   uuid.UUID    `bun:"created_by,notnull,type:uuid" json:"created_by"`
	UpdatedBy   uuid.UUID    `bun:"updated_by,notnull,type:uuid" json:"updated_by"`
	CreatedAt   time.Time    `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time    `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Ref returns the wiki identity of the article.
func (a *Article) Ref() wiki.ArticleRef {
	return wiki.ArticleRef{ID: a.ID, WorldID: a.WorldID, Title: a.Title, Slug: a.Slug}
}

// Reference is one wiki token found in an article's public body. Rows are
// rewritten whenever the body changes.
type Reference struct {
	bun.BaseModel `bun:"table:article_references,alias:ar"`

	ID              uuid.UUID `bun:",pk,type:uuid" json:"id"`
	WorldID         uuid.UUID `bun:"world_id,notnull,type:uuid" json:"world_id"`
	SourceArticleID uuid.UUID `bun:"source_article_id,notnull,type:uuid" json:"source_article_id"`
	TargetTitle     string    `bun:"target_title,notnull" json:"target_title"`
	Position        int       `bun:"position,notnull" json:"position"`
}

// FieldValue is a typed custom field value. Exactly one of Text or Number
// is meaningful, selected by Type; choice values use Text.
type FieldValue struct {
	FieldID uuid.UUID        `json:"field_id"`
	Type    worlds.FieldType `json:"type"`
	Text    string           `json:"text,omitempty"`
	Number  float64          `json:"number,omitempty"`
}

// TextValue returns a text field value.
func TextValue(fieldID uuid.UUID, value string) FieldValue {
	return FieldValue{FieldID: fieldID, Type: worlds.FieldText, Text: value}
}

// NumberValue returns a number field value.
func NumberValue(fieldID uuid.UUID, value float64) FieldValue {
	return FieldValue{FieldID: fieldID, Type: worlds.FieldNumber, Number: value}
}

// ChoiceValue returns a choice field value.
func ChoiceValue(fieldID uuid.UUID, value string) FieldValue {
	return FieldValue{FieldID: fieldID, Type: worlds.FieldChoice, Text: value}
}

// Display formats the value for presentation.
func (v FieldValue) Display() string {
	if v.Type == worlds.FieldNumber {
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	}
	return v.Text
}

func (v FieldValue) payload() any {
	if v.Type == worlds.FieldNumber {
		return v.Number
	}
	return v.Text
}

// CreateInput captures the fields of a new article.
type CreateInput struct {
	WorldID     uuid.UUID
	CategoryID  uuid.UUID
	Title       string
	PublicBody  string
	PrivateBody string
	Published   bool
	Fields      []FieldValue
}

// UpdateInput carries a partial update; nil fields are left unchanged.
type UpdateInput struct {
	Title       *string
	CategoryID  *uuid.UUID
	PublicBody  *string
	PrivateBody *string
	Published   *bool
	Fields      []FieldValue
}

// SearchInput filters articles of a world. An empty Query matches every
// article. Page is 1-based.
type SearchInput struct {
	WorldID    uuid.UUID
	Query      string
	CategoryID *uuid.UUID
	Page       int
	PerPage    int
}

// SearchQuery is the normalised repository form of SearchInput.
type SearchQuery struct {
	WorldID    uuid.UUID
	Query      string
	CategoryID *uuid.UUID
	Limit      int
	Offset     int
}

// SearchPage is one page of search results.
type SearchPage struct {
	Articles []*Article
	Total    int
	Page     int
	PerPage  int
}

// Pages returns the number of pages needed for Total.
func (p SearchPage) Pages() int {
	if p.PerPage <= 0 || p.Total == 0 {
		return 0
	}
	return (p.Total + p.PerPage - 1) / p.PerPage
}

// View is an article prepared for display.
type View struct {
	Article    *Article
	Category   *worlds.Category
	HTML       string
	References []wiki.Resolution
	Backlinks  []wiki.ArticleRef
	Fields     []FieldDisplay
	IsCreator  bool
}

// FieldDisplay pairs a field definition name with its formatted value.
type FieldDisplay struct {
	Name  string
	Type  worlds.FieldType
	Value string
}
