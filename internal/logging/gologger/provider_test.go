package gologger

import (
	"context"
	"maps"
	"testing"

	glog "github.com/goliatone/go-logger/glog"
)

func TestNewProviderBuildsModuleLoggers(t *testing.T) {
	p, err := NewProvider(Config{Level: "debug", Format: "console", Focus: []string{" codice.wiki "}})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}

	logger := p.GetLogger("codice.wiki")
	if logger == nil {
		t.Fatal("expected logger")
	}
	logger.Debug("provider.ready")
}

func TestNewProviderRejectsUnknownFormat(t *testing.T) {
	if _, err := NewProvider(Config{Format: "xml"}); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestNilProviderReturnsNoOp(t *testing.T) {
	var p *Provider
	p.GetLogger("codice").Info("dropped")
}

func TestAdapterDelegates(t *testing.T) {
	stub := &stubLogger{}
	adapted := wrap(stub)

	adapted.Trace("a")
	adapted.Debug("b")
	adapted.Info("c")
	adapted.Warn("d")
	adapted.Error("e")
	adapted.Fatal("f")

	want := []string{"trace", "debug", "info", "warn", "error", "fatal"}
	if len(stub.calls) != len(want) {
		t.Fatalf("expected %d calls, got %v", len(want), stub.calls)
	}
	for i := range want {
		if stub.calls[i] != want[i] {
			t.Fatalf("call %d: expected %s, got %s", i, want[i], stub.calls[i])
		}
	}

	fields := map[string]any{"world_id": "w1"}
	adapted.(*adapter).WithFields(fields)
	fields["world_id"] = "mutated"
	if len(stub.fields) != 1 || stub.fields[0]["world_id"] != "w1" {
		t.Fatalf("expected cloned fields, got %v", stub.fields)
	}

	ctx := context.WithValue(context.Background(), struct{}{}, "v")
	adapted.WithContext(ctx)
	if len(stub.contexts) != 1 || stub.contexts[0] != ctx {
		t.Fatalf("expected context propagation, got %v", stub.contexts)
	}
}

func TestLevelFor(t *testing.T) {
	if levelFor("WARNING") != glog.Warn {
		t.Fatalf("expected warn mapping")
	}
	if levelFor("verbose") != "" {
		t.Fatalf("expected unknown level to map to empty")
	}
}

type stubLogger struct {
	calls    []string
	fields   []map[string]any
	contexts []context.Context
}

var _ glog.Logger = (*stubLogger)(nil)
var _ glog.FieldsLogger = (*stubLogger)(nil)

func (s *stubLogger) Trace(string, ...any) { s.calls = append(s.calls, "trace") }
func (s *stubLogger) Debug(string, ...any) { s.calls = append(s.calls, "debug") }
func (s *stubLogger) Info(string, ...any)  { s.calls = append(s.calls, "info") }
func (s *stubLogger) Warn(string, ...any)  { s.calls = append(s.calls, "warn") }
func (s *stubLogger) Error(string, ...any) { s.calls = append(s.calls, "error") }
func (s *stubLogger) Fatal(string, ...any) { s.calls = append(s.calls, "fatal") }

func (s *stubLogger) WithContext(ctx context.Context) glog.Logger {
	s.contexts = append(s.contexts, ctx)
	return s
}

func (s *stubLogger) WithFields(fields map[string]any) glog.Logger {
	s.fields = append(s.fields, maps.Clone(fields))
	return s
}
