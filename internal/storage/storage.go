// Package storage opens the bun handle shared by the world and article
// repositories and creates their tables.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/codice-do-criador/codice/internal/articles"
	"github.com/codice-do-criador/codice/internal/runtimeconfig"
	"github.com/codice-do-criador/codice/internal/worlds"
)

var (
	ErrDriverUnsupported = errors.New("storage: driver unsupported")
	ErrDSNRequired       = errors.New("storage: dsn required")
	ErrDBRequired        = errors.New("storage: database handle required")
)

// Models lists every table the module persists, in creation order.
func Models() []any {
	return []any{
		(*worlds.World)(nil),
		(*worlds.Category)(nil),
		(*worlds.Collaborator)(nil),
		(*worlds.FieldDefinition)(nil),
		(*articles.Article)(nil),
		(*articles.Reference)(nil),
	}
}

type index struct {
	name    string
	model   any
	columns []string
	unique  bool
}

var indexes = []index{
	{name: "idx_worlds_owner", model: (*worlds.World)(nil), columns: []string{"owner_id"}},
	{name: "idx_categories_world_name", model: (*worlds.Category)(nil), columns: []string{"world_id", "name"}, unique: true},
	{name: "idx_collaborators_world_user", model: (*worlds.Collaborator)(nil), columns: []string{"world_id", "user_id"}, unique: true},
	{name: "idx_field_definitions_world", model: (*worlds.FieldDefinition)(nil), columns: []string{"world_id"}},
	{name: "idx_articles_world_slug", model: (*articles.Article)(nil), columns: []string{"world_id", "slug"}, unique: true},
	{name: "idx_articles_world_title", model: (*articles.Article)(nil), columns: []string{"world_id", "title"}, unique: true},
	{name: "idx_articles_world_category", model: (*articles.Article)(nil), columns: []string{"world_id", "category_id"}},
	{name: "idx_article_references_target", model: (*articles.Reference)(nil), columns: []string{"world_id", "target_title"}},
	{name: "idx_article_references_source", model: (*articles.Reference)(nil), columns: []string{"source_article_id"}},
}

// Open connects to the configured database and wraps it in bun with the
// matching dialect. The caller owns the returned handle.
func Open(cfg runtimeconfig.StorageConfig) (*bun.DB, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, ErrDSNRequired
	}

	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	dialect, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}

	sqldb, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", driver, err)
	}
	return bun.NewDB(sqldb, dialect), nil
}

func dialectFor(driver string) (schema.Dialect, error) {
	switch driver {
	case runtimeconfig.DriverSQLite3, runtimeconfig.DriverSQLite:
		return sqlitedialect.New(), nil
	case runtimeconfig.DriverPostgres:
		return pgdialect.New(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrDriverUnsupported, driver)
	}
}

// EnsureSchema creates missing tables and indexes. Existing tables are left
// untouched; column changes need a real migration.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	if db == nil {
		return ErrDBRequired
	}
	for _, model := range Models() {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("storage: create table for %T: %w", model, err)
		}
	}
	for _, idx := range indexes {
		query := db.NewCreateIndex().Model(idx.model).Index(idx.name).Column(idx.columns...).IfNotExists()
		if idx.unique {
			query = query.Unique()
		}
		if _, err := query.Exec(ctx); err != nil {
			return fmt.Errorf("storage: create index %s: %w", idx.name, err)
		}
	}
	return nil
}
