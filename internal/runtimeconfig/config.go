package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	urlkit "github.com/goliatone/go-urlkit"
)

var (
	ErrStorageDriverUnknown      = errors.New("codice config: storage driver is invalid")
	ErrStorageDSNRequired        = errors.New("codice config: storage dsn is required for bun storage")
	ErrStorageProviderUnknown    = errors.New("codice config: storage provider is invalid")
	ErrLoggingProviderUnknown    = errors.New("codice config: logging provider is invalid")
	ErrLoggingLevelInvalid       = errors.New("codice config: logging level is invalid")
	ErrLoggingFormatInvalid      = errors.New("codice config: logging format is invalid")
	ErrTitleBoundsInvalid        = errors.New("codice config: article title bounds are invalid")
	ErrPageSizeInvalid           = errors.New("codice config: article page size must be positive and not exceed the maximum")
	ErrWorldLimitInvalid         = errors.New("codice config: world limit per owner must be zero (unlimited) or positive")
	ErrBacklinkStrategyUnknown   = errors.New("codice config: wiki backlink strategy is invalid")
	ErrLinkRoutesRequired        = errors.New("codice config: link view and create routes are required")
	ErrAssistantTimeoutInvalid   = errors.New("codice config: assistant timeout must be positive")
	ErrCacheTTLInvalid           = errors.New("codice config: cache ttl must be positive when cache is enabled")
	ErrWorldNameMinLengthInvalid = errors.New("codice config: world name minimum length must be positive")
)

const (
	StorageProviderBun    = "bun"
	StorageProviderMemory = "memory"

	DriverSQLite3  = "sqlite3"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	BacklinksIndex = "index"
	BacklinksScan  = "scan"
)

// Config aggregates the runtime settings of the wiki module.
type Config struct {
	Storage   StorageConfig
	Cache     CacheConfig
	Logging   LoggingConfig
	Worlds    WorldsConfig
	Articles  ArticlesConfig
	Wiki      WikiConfig
	Links     LinksConfig
	Assistant AssistantConfig
	Markdown  MarkdownConfig
}

// StorageConfig selects the persistence backend. Provider "memory" keeps
// everything in process and ignores Driver and DSN.
type StorageConfig struct {
	Provider string
	Driver   string
	DSN      string
}

// CacheConfig controls the go-repository-cache read-through layer.
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// LoggingConfig selects the logger provider.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// WorldsConfig captures world creation limits.
type WorldsConfig struct {
	MaxPerOwner   int
	NameMinLength int
	// PublicReadable grants read access on public worlds to any principal.
	PublicReadable bool
}

// ArticlesConfig captures article validation and listing limits. Lengths
// are counted in runes.
type ArticlesConfig struct {
	TitleMinLength int
	TitleMaxLength int
	PageSize       int
	MaxPageSize    int
}

// WikiConfig selects how backlinks are answered.
type WikiConfig struct {
	Backlinks string
}

// LinksConfig describes where wiki anchors point. Routes is a go-urlkit
// configuration; Group is a dotted group path inside it.
type LinksConfig struct {
	Routes      *urlkit.Config
	Group       string
	ViewRoute   string
	CreateRoute string
	WorldParam  string
	SlugParam   string
	TitleQuery  string
}

// AssistantConfig configures the writing assistant boundary. MaxTokens caps
// every request; a zero Temperature keeps each prompt's own temperature.
type AssistantConfig struct {
	Enabled     bool
	Timeout     time.Duration
	Model       string
	MaxTokens   int
	Temperature float64
}

// MarkdownConfig gates the Markdown import command. Disabled imports fail
// with markdowncmd.ErrMarkdownFeatureDisabled.
type MarkdownConfig struct {
	ImportEnabled bool
}

// DefaultConfig returns the settings the application ships with.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Provider: StorageProviderBun,
			Driver:   DriverSQLite3,
			DSN:      "file:codice.db?cache=shared&_fk=1",
		},
		Cache: CacheConfig{
			Enabled:    true,
			DefaultTTL: time.Minute,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		Worlds: WorldsConfig{
			MaxPerOwner:    5,
			NameMinLength:  3,
			PublicReadable: true,
		},
		Articles: ArticlesConfig{
			TitleMinLength: 3,
			TitleMaxLength: 200,
			PageSize:       20,
			MaxPageSize:    100,
		},
		Wiki: WikiConfig{
			Backlinks: BacklinksIndex,
		},
		Links: LinksConfig{
			Routes:      DefaultRoutes(""),
			Group:       "wiki",
			ViewRoute:   "article",
			CreateRoute: "article_new",
			WorldParam:  "world_id",
			SlugParam:   "slug",
			TitleQuery:  "title",
		},
		Assistant: AssistantConfig{
			Enabled:   false,
			Timeout:   30 * time.Second,
			Model:     "gpt-3.5-turbo",
			MaxTokens: 1200,
		},
		Markdown: MarkdownConfig{
			ImportEnabled: true,
		},
	}
}

// DefaultRoutes returns the go-urlkit routes for article views and the
// create-article form, rooted at baseURL.
func DefaultRoutes(baseURL string) *urlkit.Config {
	return &urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    "wiki",
				BaseURL: baseURL,
				Paths: map[string]string{
					"article":     "/worlds/:world_id/articles/:slug",
					"article_new": "/worlds/:world_id/articles/new",
				},
			},
		},
	}
}

// Validate performs consistency checks.
func (cfg Config) Validate() error {
	switch normalize(cfg.Storage.Provider) {
	case StorageProviderMemory:
	case StorageProviderBun:
		switch normalize(cfg.Storage.Driver) {
		case DriverSQLite3, DriverSQLite, DriverPostgres:
		default:
			return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, cfg.Storage.Driver)
		}
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return ErrStorageDSNRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, cfg.Storage.Provider)
	}

	if cfg.Cache.Enabled && cfg.Cache.DefaultTTL <= 0 {
		return ErrCacheTTLInvalid
	}

	provider := normalize(cfg.Logging.Provider)
	switch provider {
	case "", "console", "gologger":
	default:
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}

	if cfg.Worlds.MaxPerOwner < 0 {
		return ErrWorldLimitInvalid
	}
	if cfg.Worlds.NameMinLength <= 0 {
		return ErrWorldNameMinLengthInvalid
	}

	a := cfg.Articles
	if a.TitleMinLength <= 0 || a.TitleMaxLength < a.TitleMinLength {
		return fmt.Errorf("%w: min=%d max=%d", ErrTitleBoundsInvalid, a.TitleMinLength, a.TitleMaxLength)
	}
	if a.PageSize <= 0 || (a.MaxPageSize > 0 && a.PageSize > a.MaxPageSize) {
		return ErrPageSizeInvalid
	}

	switch normalize(cfg.Wiki.Backlinks) {
	case BacklinksIndex, BacklinksScan:
	default:
		return fmt.Errorf("%w: %s", ErrBacklinkStrategyUnknown, cfg.Wiki.Backlinks)
	}

	if cfg.Links.Routes != nil {
		if strings.TrimSpace(cfg.Links.ViewRoute) == "" || strings.TrimSpace(cfg.Links.CreateRoute) == "" {
			return ErrLinkRoutesRequired
		}
	}

	if cfg.Assistant.Enabled && cfg.Assistant.Timeout <= 0 {
		return ErrAssistantTimeoutInvalid
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
