// Package activity fans domain events out to registered hooks.
package activity

import (
	"context"
	"errors"
	"maps"
	"strings"
	"sync"
	"time"
)

// Event describes one mutation performed by an actor.
type Event struct {
	Verb           string
	ActorID        string
	UserID         string
	TenantID       string
	ObjectType     string
	ObjectID       string
	Channel        string
	DefinitionCode string
	Recipients     []string
	Metadata       map[string]any
	OccurredAt     time.Time
}

// Hook receives emitted events.
type Hook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc adapts a function to Hook.
type HookFunc func(ctx context.Context, event Event) error

func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	return fn(ctx, event)
}

// Hooks is an ordered hook list.
type Hooks []Hook

// Config controls emitter behaviour.
type Config struct {
	Enabled bool
	Channel string
}

// Emitter dispatches events to hooks.
type Emitter struct {
	hooks Hooks
	cfg   Config
	now   func() time.Time
}

// NewEmitter builds an emitter. It is inert unless cfg.Enabled is set and at
// least one hook is registered.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	filtered := make(Hooks, 0, len(hooks))
	for _, hook := range hooks {
		if hook != nil {
			filtered = append(filtered, hook)
		}
	}
	return &Emitter{hooks: filtered, cfg: cfg, now: time.Now}
}

// Enabled reports whether Emit delivers events.
func (e *Emitter) Enabled() bool {
	return e != nil && e.cfg.Enabled && len(e.hooks) > 0
}

// Emit delivers event to every hook. Events without a verb are dropped.
// Hook errors are joined; every hook is called regardless.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() || strings.TrimSpace(event.Verb) == "" {
		return nil
	}
	if event.Channel == "" {
		event.Channel = e.cfg.Channel
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = e.now().UTC()
	}

	var errs []error
	for _, hook := range e.hooks {
		ev := event
		ev.Metadata = maps.Clone(event.Metadata)
		if err := hook.Notify(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CaptureHook records events in memory.
type CaptureHook struct {
	mu     sync.Mutex
	Events []Event
}

func (h *CaptureHook) Notify(_ context.Context, event Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Events = append(h.Events, event)
	return nil
}
