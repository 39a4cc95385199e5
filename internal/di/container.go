package di

import (
	"context"
	"fmt"
	"strings"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	urlkit "github.com/goliatone/go-urlkit"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/codice-do-criador/codice/internal/articles"
	"github.com/codice-do-criador/codice/internal/assistant"
	"github.com/codice-do-criador/codice/internal/commands"
	markdowncmd "github.com/codice-do-criador/codice/internal/commands/markdown"
	wikicmd "github.com/codice-do-criador/codice/internal/commands/wiki"
	"github.com/codice-do-criador/codice/internal/logging"
	"github.com/codice-do-criador/codice/internal/markdown"
	"github.com/codice-do-criador/codice/internal/runtimeconfig"
	"github.com/codice-do-criador/codice/internal/storage"
	"github.com/codice-do-criador/codice/internal/wiki"
	"github.com/codice-do-criador/codice/internal/worlds"
	"github.com/codice-do-criador/codice/pkg/activity"
	"github.com/codice-do-criador/codice/pkg/activity/usersink"
	"github.com/codice-do-criador/codice/pkg/interfaces"
)

const activityChannel = "codice"

// Container wires repositories, services and command handlers from one
// configuration.
type Container struct {
	Config runtimeconfig.Config

	bunDB         *bun.DB
	ownsDB        bool
	cacheTTL      time.Duration
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	loggerProvider  interfaces.LoggerProvider
	generator       interfaces.TextGenerator
	activitySink    interfaces.ActivitySink
	activityHooks   activity.Hooks
	emitter         *activity.Emitter
	commandRegistry commands.CommandRegistry
	fileSystem      markdowncmd.FileSystem
	routeManager    *urlkit.RouteManager
	links           wiki.LinkBuilder

	worldRepo        worlds.WorldRepository
	categoryRepo     worlds.CategoryRepository
	collaboratorRepo worlds.CollaboratorRepository
	fieldRepo        worlds.FieldRepository
	articleRepo      articles.ArticleRepository

	worldSvc     worlds.Service
	articleSvc   articles.Service
	assistantSvc assistant.Service
	importer     *markdown.Importer

	wikiCommands     *wikicmd.HandlerSet
	markdownCommands *markdowncmd.HandlerSet
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithBunDB supplies an open database. The container does not close it.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the default cache service.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithLoggerProvider overrides the provider selected by Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithTextGenerator enables the writing assistant.
func WithTextGenerator(generator interfaces.TextGenerator) Option {
	return func(c *Container) {
		c.generator = generator
	}
}

// WithActivitySink forwards world and article activity to a go-users sink.
func WithActivitySink(sink interfaces.ActivitySink) Option {
	return func(c *Container) {
		c.activitySink = sink
	}
}

// WithActivityHooks adds hooks to the activity emitter.
func WithActivityHooks(hooks ...activity.Hook) Option {
	return func(c *Container) {
		c.activityHooks = append(c.activityHooks, hooks...)
	}
}

// WithCommandRegistry registers every command handler with reg.
func WithCommandRegistry(reg commands.CommandRegistry) Option {
	return func(c *Container) {
		c.commandRegistry = reg
	}
}

// WithMarkdownFileSystem overrides how import directories are opened.
func WithMarkdownFileSystem(open markdowncmd.FileSystem) Option {
	return func(c *Container) {
		c.fileSystem = open
	}
}

// WithLinkBuilder overrides the go-urlkit link builder.
func WithLinkBuilder(links wiki.LinkBuilder) Option {
	return func(c *Container) {
		c.links = links
	}
}

// WithWorldService overrides the default world service binding.
func WithWorldService(svc worlds.Service) Option {
	return func(c *Container) {
		c.worldSvc = svc
	}
}

// WithArticleService overrides the default article service binding.
func WithArticleService(svc articles.Service) Option {
	return func(c *Container) {
		c.articleSvc = svc
	}
}

// NewContainer validates cfg and builds every service. With the bun storage
// provider and no WithBunDB option the database is opened from cfg and its
// schema created.
func NewContainer(ctx context.Context, cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cacheTTL := cfg.Cache.DefaultTTL
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	c := &Container{
		Config:           cfg,
		cacheTTL:         cacheTTL,
		worldRepo:        worlds.NewMemoryWorldRepository(),
		categoryRepo:     worlds.NewMemoryCategoryRepository(),
		collaboratorRepo: worlds.NewMemoryCollaboratorRepository(),
		fieldRepo:        worlds.NewMemoryFieldRepository(),
		articleRepo:      articles.NewMemoryArticleRepository(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	if err := c.configureStorage(ctx); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	c.configureRepositories()
	c.configureActivity()
	c.configureLinks()

	if err := c.configureServices(); err != nil {
		_ = c.Close()
		return nil, err
	}
	if err := c.configureCommands(); err != nil {
		_ = c.Close()
		return nil, err
	}

	logging.ModuleLogger(c.loggerProvider, "codice").Info("codice.container.ready",
		"storage", c.storageName(),
		"cache", c.cacheService != nil,
		"backlinks", c.Config.Wiki.Backlinks,
		"assistant", c.assistantSvc.Enabled(),
	)
	return c, nil
}

func (c *Container) configureLogging() error {
	if c.loggerProvider != nil {
		return nil
	}
	provider, err := NewLoggerProvider(c.Config.Logging)
	if err != nil {
		return err
	}
	c.loggerProvider = provider
	return nil
}

func (c *Container) configureStorage(ctx context.Context) error {
	if c.bunDB != nil || !strings.EqualFold(strings.TrimSpace(c.Config.Storage.Provider), runtimeconfig.StorageProviderBun) {
		return nil
	}
	db, err := storage.Open(c.Config.Storage)
	if err != nil {
		return err
	}
	if err := storage.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return err
	}
	c.bunDB = db
	c.ownsDB = true
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled || c.bunDB == nil {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.cacheTTL > 0 {
			cfg.TTL = c.cacheTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		} else {
			logging.ModuleLogger(c.loggerProvider, "codice").Warn("codice.container.cache_disabled", "error", err)
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureRepositories() {
	if c.bunDB == nil {
		return
	}
	c.worldRepo = worlds.NewBunWorldRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	c.categoryRepo = worlds.NewBunCategoryRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	c.collaboratorRepo = worlds.NewBunCollaboratorRepository(c.bunDB)
	c.fieldRepo = worlds.NewBunFieldRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	c.articleRepo = articles.NewBunArticleRepository(c.bunDB)
}

func (c *Container) configureActivity() {
	hooks := append(activity.Hooks{}, c.activityHooks...)
	if c.activitySink != nil {
		hooks = append(hooks, usersink.Hook{Sink: c.activitySink})
	}
	c.emitter = activity.NewEmitter(hooks, activity.Config{
		Enabled: len(hooks) > 0,
		Channel: activityChannel,
	})
}

func (c *Container) configureLinks() {
	if c.links != nil {
		return
	}
	linksCfg := c.Config.Links
	if linksCfg.Routes == nil {
		c.links = wiki.PathLinks{}
		return
	}

	c.routeManager = urlkit.NewRouteManager(linksCfg.Routes)
	c.links = wiki.NewURLKitLinks(wiki.URLKitLinksOptions{
		Manager:     c.routeManager,
		Group:       strings.TrimSpace(linksCfg.Group),
		ViewRoute:   strings.TrimSpace(linksCfg.ViewRoute),
		CreateRoute: strings.TrimSpace(linksCfg.CreateRoute),
		WorldParam:  strings.TrimSpace(linksCfg.WorldParam),
		SlugParam:   strings.TrimSpace(linksCfg.SlugParam),
		TitleQuery:  strings.TrimSpace(linksCfg.TitleQuery),
	})
}

func (c *Container) configureServices() error {
	if c.worldSvc == nil {
		worldsCfg := c.Config.Worlds
		c.worldSvc = worlds.NewService(
			c.worldRepo,
			c.categoryRepo,
			c.collaboratorRepo,
			c.fieldRepo,
			worlds.WithLogger(logging.WorldsLogger(c.loggerProvider)),
			worlds.WithActivityEmitter(c.emitter),
			worlds.WithMaxWorldsPerOwner(worldsCfg.MaxPerOwner),
			worlds.WithNameMinLength(worldsCfg.NameMinLength),
			worlds.WithPublicReadable(worldsCfg.PublicReadable),
			// The article service is built below; the hooks resolve it lazily.
			worlds.WithWorldDeleteHook(func(ctx context.Context, worldID uuid.UUID) error {
				return c.articleSvc.PurgeWorld(ctx, worldID)
			}),
			worlds.WithCategoryUsage(func(ctx context.Context, worldID, categoryID uuid.UUID) (int, error) {
				return c.articleSvc.CountByCategory(ctx, worldID, categoryID)
			}),
		)
	}

	if c.articleSvc == nil {
		strategy, err := wiki.StrategyNamed(c.Config.Wiki.Backlinks, c.articleRepo)
		if err != nil {
			return err
		}
		articlesCfg := c.Config.Articles
		c.articleSvc = articles.NewService(
			c.articleRepo,
			c.worldSvc,
			articles.WithLogger(logging.ArticlesLogger(c.loggerProvider)),
			articles.WithActivityEmitter(c.emitter),
			articles.WithTitleBounds(articlesCfg.TitleMinLength, articlesCfg.TitleMaxLength),
			articles.WithPageSize(articlesCfg.PageSize, articlesCfg.MaxPageSize),
			articles.WithRenderer(wiki.NewRenderer(wiki.WithLinkBuilder(c.links))),
			articles.WithBacklinkStrategy(strategy),
		)
	}

	var generator interfaces.TextGenerator
	if c.Config.Assistant.Enabled {
		generator = c.generator
	}
	assistantCfg := c.Config.Assistant
	assistantOpts := []assistant.ServiceOption{
		assistant.WithLogger(logging.AssistantLogger(c.loggerProvider)),
		assistant.WithModel(assistantCfg.Model),
		assistant.WithMaxTokens(assistantCfg.MaxTokens),
		assistant.WithWorldContext(c.worldSvc, c.articleSvc),
	}
	if assistantCfg.Timeout > 0 {
		assistantOpts = append(assistantOpts, assistant.WithTimeout(assistantCfg.Timeout))
	}
	if assistantCfg.Temperature > 0 {
		assistantOpts = append(assistantOpts, assistant.WithTemperature(assistantCfg.Temperature))
	}
	c.assistantSvc = assistant.NewService(generator, assistantOpts...)

	c.importer = markdown.NewImporter(markdown.ImporterConfig{
		Articles:   c.articleSvc,
		Categories: c.worldSvc,
		Logger:     logging.MarkdownLogger(c.loggerProvider),
	})
	return nil
}

func (c *Container) configureCommands() error {
	wikiSet, err := wikicmd.RegisterWikiCommands(c.commandRegistry, c.articleSvc, c.loggerProvider)
	if err != nil {
		return fmt.Errorf("register wiki commands: %w", err)
	}
	c.wikiCommands = wikiSet

	var markdownOpts []markdowncmd.Option
	if c.fileSystem != nil {
		markdownOpts = append(markdownOpts, markdowncmd.WithFileSystem(c.fileSystem))
	}
	markdownSet, err := markdowncmd.RegisterMarkdownCommands(
		c.commandRegistry,
		c.importer,
		c.loggerProvider,
		markdowncmd.FeatureGates{
			ImportEnabled: func() bool { return c.Config.Markdown.ImportEnabled },
		},
		markdownOpts...,
	)
	if err != nil {
		return fmt.Errorf("register markdown commands: %w", err)
	}
	c.markdownCommands = markdownSet
	return nil
}

func (c *Container) storageName() string {
	if c.bunDB == nil {
		return runtimeconfig.StorageProviderMemory
	}
	return runtimeconfig.StorageProviderBun + ":" + c.Config.Storage.Driver
}

// Close releases the database when the container opened it.
func (c *Container) Close() error {
	if c == nil || !c.ownsDB || c.bunDB == nil {
		return nil
	}
	err := c.bunDB.Close()
	c.bunDB = nil
	c.ownsDB = false
	if err != nil {
		return fmt.Errorf("close storage: %w", err)
	}
	return nil
}

// DB returns the bun handle, or nil with memory storage.
func (c *Container) DB() *bun.DB {
	return c.bunDB
}

// LoggerProvider returns the provider every service logs through.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// WorldService returns the configured world service.
func (c *Container) WorldService() worlds.Service {
	return c.worldSvc
}

// ArticleService returns the configured article store.
func (c *Container) ArticleService() articles.Service {
	return c.articleSvc
}

// AssistantService returns the writing assistant.
func (c *Container) AssistantService() assistant.Service {
	return c.assistantSvc
}

// MarkdownImporter returns the importer behind the markdown command.
func (c *Container) MarkdownImporter() *markdown.Importer {
	return c.importer
}

// WikiCommands returns the wiki command handlers.
func (c *Container) WikiCommands() *wikicmd.HandlerSet {
	return c.wikiCommands
}

// MarkdownCommands returns the markdown command handlers.
func (c *Container) MarkdownCommands() *markdowncmd.HandlerSet {
	return c.markdownCommands
}
