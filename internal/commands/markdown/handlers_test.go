package markdowncmd

import (
	"context"
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/codice-do-criador/codice/internal/logging"
	"github.com/codice-do-criador/codice/internal/markdown"
)

type importCall struct {
	dir     string
	options markdown.ImportOptions
	docs    []*markdown.Document
}

type stubImporter struct {
	calls  []importCall
	result *markdown.ImportResult
	err    error
}

func (s *stubImporter) ImportDirectory(ctx context.Context, loader *markdown.Loader, dir string, opts markdown.ImportOptions) (*markdown.ImportResult, error) {
	docs, err := loader.LoadDirectory(ctx, dir)
	if err != nil {
		return nil, err
	}
	s.calls = append(s.calls, importCall{dir: dir, options: opts, docs: docs})
	if s.err != nil {
		return nil, s.err
	}
	if s.result != nil {
		return s.result, nil
	}
	return &markdown.ImportResult{}, nil
}

func memFS(string) fs.FS {
	return fstest.MapFS{
		"a.md":     {Data: []byte("A")},
		"sub/b.md": {Data: []byte("B")},
	}
}

func validCommand() ImportMarkdownCommand {
	return ImportMarkdownCommand{WorldID: uuid.New(), ActorID: uuid.New(), Directory: "lore"}
}

func TestImportMarkdownHandlerForwardsOptions(t *testing.T) {
	importer := &stubImporter{}
	handler := NewImportMarkdownHandler(importer, memFS, logging.NoOp(), FeatureGates{})

	cmd := validCommand()
	cmd.DryRun = true
	cmd.Recursive = true
	cmd.DefaultCategory = "Locais"
	if err := handler.Execute(context.Background(), cmd); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(importer.calls) != 1 {
		t.Fatalf("expected one import call, got %d", len(importer.calls))
	}
	call := importer.calls[0]
	if call.options.WorldID != cmd.WorldID || call.options.Actor.UserID != cmd.ActorID {
		t.Fatalf("unexpected options %+v", call.options)
	}
	if !call.options.DryRun || call.options.DefaultCategory != "Locais" {
		t.Fatalf("expected dry run and default category forwarded, got %+v", call.options)
	}
	if len(call.docs) != 2 {
		t.Fatalf("expected recursive loader, got %d documents", len(call.docs))
	}
	if handler.LastResult() == nil {
		t.Fatal("expected last result recorded")
	}
}

func TestImportMarkdownHandlerFeatureDisabled(t *testing.T) {
	importer := &stubImporter{}
	handler := NewImportMarkdownHandler(importer, memFS, nil, FeatureGates{
		ImportEnabled: func() bool { return false },
	})
	err := handler.Execute(context.Background(), validCommand())
	if !errors.Is(err, ErrMarkdownFeatureDisabled) {
		t.Fatalf("expected feature disabled error, got %v", err)
	}
	if len(importer.calls) != 0 {
		t.Fatalf("expected no import when disabled")
	}
}

func TestImportMarkdownHandlerReportsRejectedDocuments(t *testing.T) {
	importer := &stubImporter{result: &markdown.ImportResult{
		Errors: []markdown.ImportError{{Path: "a.md", Message: "Title is required."}},
	}}
	handler := NewImportMarkdownHandler(importer, memFS, nil, FeatureGates{})

	err := handler.Execute(context.Background(), validCommand())
	if !errors.Is(err, ErrImportIncomplete) {
		t.Fatalf("expected incomplete import error, got %v", err)
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
}

func TestImportMarkdownHandlerValidationFailure(t *testing.T) {
	importer := &stubImporter{}
	handler := NewImportMarkdownHandler(importer, memFS, nil, FeatureGates{})

	err := handler.Execute(context.Background(), ImportMarkdownCommand{Directory: "lore"})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if len(importer.calls) != 0 {
		t.Fatalf("expected no import for invalid command")
	}
}
