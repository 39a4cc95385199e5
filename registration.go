package codice

import (
	"errors"
	"fmt"
	"strings"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"

	"github.com/codice-do-criador/codice/internal/commands"
	markdowncmd "github.com/codice-do-criador/codice/internal/commands/markdown"
	wikicmd "github.com/codice-do-criador/codice/internal/commands/wiki"
)

// ErrCommandHandlerUnsupported is returned when a dispatcher receives a handler it cannot subscribe.
var ErrCommandHandlerUnsupported = errors.New("codice: unsupported command handler")

// CommandRegistry records command handlers so hosts can expose them via CLI or cron.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CommandDispatcher subscribes command handlers to a dispatcher implementation.
type CommandDispatcher interface {
	RegisterCommand(handler any) (CommandSubscription, error)
}

// CommandSubscription allows hosts to tear down dispatcher subscriptions.
type CommandSubscription interface {
	Unsubscribe()
}

// CronRegistrar registers command handlers with a cron scheduler.
type CronRegistrar func(command.HandlerConfig, any) error

// RegistrationOptions configures how the module's handlers are exposed to the host.
type RegistrationOptions struct {
	Registry      CommandRegistry
	Dispatcher    CommandDispatcher
	CronRegistrar CronRegistrar

	// ImportCron schedules ImportSchedule on CronRegistrar when both are set.
	ImportCron     string
	ImportSchedule markdowncmd.ImportMarkdownCommand
}

// RegistrationResult captures the handlers that were exposed and any dispatcher subscriptions.
type RegistrationResult struct {
	Handlers      []any
	Subscriptions []CommandSubscription
}

// Unsubscribe tears down every dispatcher subscription.
func (r *RegistrationResult) Unsubscribe() {
	if r == nil {
		return
	}
	for _, sub := range r.Subscriptions {
		if sub != nil {
			sub.Unsubscribe()
		}
	}
	r.Subscriptions = nil
}

// RegisterCommands exposes the module's command handlers through the provided registry,
// dispatcher and cron integrations. Nil integrations are skipped.
func RegisterCommands(module *Module, opts RegistrationOptions) (*RegistrationResult, error) {
	result := &RegistrationResult{}
	if module == nil {
		return result, nil
	}

	handlers := module.Commands()
	if handlers.RebuildReferences != nil {
		result.Handlers = append(result.Handlers, handlers.RebuildReferences)
	}
	if handlers.ImportMarkdown != nil {
		result.Handlers = append(result.Handlers, handlers.ImportMarkdown)
	}

	var errs []error
	for _, handler := range result.Handlers {
		if opts.Registry != nil {
			if err := opts.Registry.RegisterCommand(handler); err != nil {
				errs = append(errs, err)
				continue
			}
		}
		if opts.Dispatcher != nil {
			sub, err := opts.Dispatcher.RegisterCommand(handler)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if sub != nil {
				result.Subscriptions = append(result.Subscriptions, sub)
			}
		}
	}

	if opts.CronRegistrar != nil && strings.TrimSpace(opts.ImportCron) != "" && handlers.ImportMarkdown != nil {
		cfg := command.HandlerConfig{Expression: strings.TrimSpace(opts.ImportCron)}
		if err := markdowncmd.RegisterMarkdownCron(commands.CronRegistrar(opts.CronRegistrar), handlers.ImportMarkdown, cfg, opts.ImportSchedule); err != nil {
			errs = append(errs, fmt.Errorf("schedule markdown import: %w", err))
		}
	}

	if len(errs) > 0 {
		result.Unsubscribe()
		return result, errors.Join(errs...)
	}
	return result, nil
}

// GlobalDispatcher subscribes handlers to the go-command process-wide dispatcher.
type GlobalDispatcher struct {
	RunnerOptions []runner.Option
}

type subscriptionFunc func()

func (f subscriptionFunc) Unsubscribe() { f() }

// RegisterCommand implements CommandDispatcher.
func (d GlobalDispatcher) RegisterCommand(handler any) (CommandSubscription, error) {
	switch h := handler.(type) {
	case *wikicmd.RebuildReferencesHandler:
		sub := dispatcher.SubscribeCommand[wikicmd.RebuildReferencesCommand](h, d.RunnerOptions...)
		return subscriptionFunc(sub.Unsubscribe), nil
	case *markdowncmd.ImportMarkdownHandler:
		sub := dispatcher.SubscribeCommand[markdowncmd.ImportMarkdownCommand](h, d.RunnerOptions...)
		return subscriptionFunc(sub.Unsubscribe), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrCommandHandlerUnsupported, handler)
	}
}
