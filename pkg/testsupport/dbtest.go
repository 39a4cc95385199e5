package testsupport

import (
	"context"
	"strings"
	"testing"

	"github.com/uptrace/bun"

	"github.com/codice-do-criador/codice/internal/runtimeconfig"
	"github.com/codice-do-criador/codice/internal/storage"
)

// NewSQLiteMemoryDB opens a private in-memory sqlite database named after
// the running test, with every table created. It is closed on cleanup.
func NewSQLiteMemoryDB(t testing.TB) *bun.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := storage.Open(runtimeconfig.StorageConfig{
		Driver: runtimeconfig.DriverSQLite3,
		DSN:    "file:" + name + "?mode=memory&cache=shared",
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := storage.EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return db
}
