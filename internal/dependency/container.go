// Package dependency wires core spendit services using go.uber.org/dig.
package dependency

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/dig"

	"github.com/WebNaresh/expense-management/internal/bus"
	"github.com/WebNaresh/expense-management/internal/channels"
	"github.com/WebNaresh/expense-management/internal/config"
	"github.com/WebNaresh/expense-management/internal/intent"
	"github.com/WebNaresh/expense-management/internal/providers"
	"github.com/WebNaresh/expense-management/internal/reminder"
	"github.com/WebNaresh/expense-management/internal/schema"
	"github.com/WebNaresh/expense-management/internal/tasks"
)

// Container resolves services on first use, so commands that only touch the
// task store never need an LLM key. Callers use the typed getters; they never
// import dig directly.
type Container struct {
	d *dig.Container

	mu      sync.Mutex
	backend tasks.Backend // set once the store is opened, for Close
}

// New registers every constructor against cfg. Nothing is built yet.
func New(cfg *config.Config) (*Container, error) {
	c := &Container{d: dig.New()}

	for _, ctor := range []any{
		func() *config.Config { return cfg },
		newSettings,
		newProvider,
		c.newBackend,
		newMessageBus,
		newClassifier,
		newResponder,
		newDispatcher,
		newLoop,
		newManager,
		newReminder,
	} {
		if err := c.d.Provide(ctor); err != nil {
			return nil, fmt.Errorf("dependency: %w", err)
		}
	}
	return c, nil
}

func resolve[T any](c *Container) (T, error) {
	var out T
	err := c.d.Invoke(func(v T) { out = v })
	if err != nil {
		return out, dig.RootCause(err)
	}
	return out, nil
}

func (c *Container) Provider() (schema.LLMProvider, error)   { return resolve[schema.LLMProvider](c) }
func (c *Container) Store() (tasks.Backend, error)           { return resolve[tasks.Backend](c) }
func (c *Container) MessageBus() (*bus.MessageBus, error)    { return resolve[*bus.MessageBus](c) }
func (c *Container) Dispatcher() (*intent.Dispatcher, error) { return resolve[*intent.Dispatcher](c) }
func (c *Container) Loop() (*intent.Loop, error)             { return resolve[*intent.Loop](c) }
func (c *Container) Channels() (*channels.Manager, error)    { return resolve[*channels.Manager](c) }
func (c *Container) Reminder() (*reminder.Service, error)    { return resolve[*reminder.Service](c) }
func (c *Container) Settings() (intent.Settings, error)      { return resolve[intent.Settings](c) }

// Close releases the task store if it was opened.
func (c *Container) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.backend == nil {
		return nil
	}
	err := c.backend.Close(ctx)
	c.backend = nil
	return err
}

func newSettings(cfg *config.Config) (intent.Settings, error) {
	loc, err := cfg.Location()
	if err != nil {
		return intent.Settings{}, err
	}
	s := intent.DefaultSettings()
	s.Model = cfg.Assistant.Model
	s.MaxTokens = cfg.Assistant.MaxTokens
	s.Temperature = cfg.Assistant.Temperature
	s.ConfidenceThreshold = cfg.Assistant.ConfidenceThreshold
	s.Timeout = cfg.LLMTimeout()
	s.Retries = cfg.Assistant.LLMRetries
	s.Location = loc
	return s, nil
}

func newProvider(cfg *config.Config) (schema.LLMProvider, error) {
	model := cfg.Assistant.Model
	result := cfg.MatchProvider(model)
	if result.Provider == nil {
		return nil, fmt.Errorf("no API key configured for model %q: edit %s or set %s", model, config.ConfigPath(), config.EnvOpenAIKey)
	}

	apiBase := result.Provider.APIBase
	if apiBase == "" {
		apiBase = cfg.GetAPIBase(model)
	}
	return providers.New(providers.Params{
		APIKey:       result.Provider.APIKey,
		APIBase:      apiBase,
		ExtraHeaders: result.Provider.ExtraHeaders,
		DefaultModel: model,
		ProviderName: result.Name,
	}), nil
}

func (c *Container) newBackend(cfg *config.Config) (tasks.Backend, error) {
	b, err := tasks.Open(context.Background(), tasks.Options{
		Driver:        cfg.Store.Driver,
		DSN:           cfg.StoreDSN(),
		Neo4jURI:      cfg.Store.Neo4j.URI,
		Neo4jUser:     cfg.Store.Neo4j.User,
		Neo4jPassword: cfg.Store.Neo4j.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("open task store: %w", err)
	}
	c.mu.Lock()
	c.backend = b
	c.mu.Unlock()
	return b, nil
}

func newMessageBus() *bus.MessageBus {
	return bus.NewMessageBus(100)
}

func newClassifier(p schema.LLMProvider, s intent.Settings) intent.Classifier {
	return intent.NewLLMClassifier(p, s)
}

func newResponder(p schema.LLMProvider, s intent.Settings) intent.Responder {
	return intent.NewLLMResponder(p, s)
}

func newDispatcher(cl intent.Classifier, r intent.Responder, store tasks.Backend, s intent.Settings) *intent.Dispatcher {
	return intent.NewDispatcher(cl, r, store, s)
}

func newLoop(b *bus.MessageBus, d *intent.Dispatcher) *intent.Loop {
	return intent.NewLoop(b, d)
}

func newManager(cfg *config.Config, b *bus.MessageBus) *channels.Manager {
	return channels.NewManager(cfg, b)
}

func newReminder(cfg *config.Config, store tasks.Backend, d *intent.Dispatcher, b *bus.MessageBus) (*reminder.Service, error) {
	loc, err := cfg.ReminderLocation()
	if err != nil {
		return nil, err
	}
	return reminder.NewService(store, d, b, reminder.Options{
		Spec:     cfg.Reminders.Cron,
		Location: loc,
		Channel:  bus.ChannelType(cfg.Reminders.Channel),
	})
}
