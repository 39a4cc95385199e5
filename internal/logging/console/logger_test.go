package console_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/codice-do-criador/codice/internal/logging"
	"github.com/codice-do-criador/codice/internal/logging/console"
	"github.com/codice-do-criador/codice/pkg/interfaces"
)

func TestConsoleLogger_WritesStructuredEntry(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2024, 3, 14, 15, 9, 26, 0, time.UTC)

	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		TimeFunc: func() time.Time { return now },
	})

	logger := provider.GetLogger("codice.articles")
	logger = logger.WithContext(logging.ContextWithFields(context.Background(), map[string]any{
		"request_id": "req-1",
	}))

	articleID := uuid.MustParse("8a51a9b1-2d30-4b2c-8ecd-2c0b87dfa999")
	logger.Info("article.created", "article_id", articleID, "title", "History of War")

	got := strings.TrimSpace(buf.String())
	want := `2024-03-14T15:09:26Z INFO article.created article_id=8a51a9b1-2d30-4b2c-8ecd-2c0b87dfa999 logger=codice.articles request_id=req-1 title="History of War"`
	if got != want {
		t.Fatalf("unexpected entry\nwant: %s\ngot:  %s", want, got)
	}
}

func TestConsoleLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	level := console.LevelWarn
	provider := console.NewProvider(console.Options{Writer: &buf, MinLevel: &level})

	logger := provider.GetLogger("codice.test")
	logger.Info("dropped")
	logger.Error("kept")

	out := strings.TrimSpace(buf.String())
	if strings.Contains(out, "dropped") || !strings.Contains(out, "ERROR kept") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestConsoleLogger_PositionalArgs(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &buf})

	provider.GetLogger("x").Debug("odd", 42, "value", "dangling")

	out := buf.String()
	if !strings.Contains(out, "arg_0=value") || !strings.Contains(out, "arg_1=dangling") {
		t.Fatalf("expected positional fields, got %q", out)
	}
}

func TestConsoleLogger_WithFieldsDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &buf})

	parent := provider.GetLogger("x")
	child := parent.(interfaces.FieldsLogger).WithFields(map[string]any{"module": "codice.wiki"})
	child.Info("child")
	parent.Info("parent")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two entries, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "module=codice.wiki") {
		t.Fatalf("expected child to carry module field: %q", lines[0])
	}
	if strings.Contains(lines[1], "module=") {
		t.Fatalf("parent should not carry child fields: %q", lines[1])
	}
}

func TestParseLevel(t *testing.T) {
	if lvl, ok := console.ParseLevel("WARNING"); !ok || lvl != console.LevelWarn {
		t.Fatalf("expected warn, got %v %v", lvl, ok)
	}
	if _, ok := console.ParseLevel("loud"); ok {
		t.Fatalf("expected unknown level to report ok=false")
	}
}
