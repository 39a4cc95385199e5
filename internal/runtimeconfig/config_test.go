package runtimeconfig_test

import (
	"errors"
	"testing"
	"time"

	"github.com/codice-do-criador/codice/internal/runtimeconfig"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
	if cfg.Articles.TitleMinLength != 3 || cfg.Articles.TitleMaxLength != 200 {
		t.Fatalf("unexpected title bounds %+v", cfg.Articles)
	}
	if cfg.Assistant.Timeout != 30*time.Second {
		t.Fatalf("expected 30s assistant timeout, got %s", cfg.Assistant.Timeout)
	}
	if cfg.Worlds.MaxPerOwner != 5 {
		t.Fatalf("expected 5 worlds per owner, got %d", cfg.Worlds.MaxPerOwner)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*runtimeconfig.Config)
		want   error
	}{
		{"unknown driver", func(c *runtimeconfig.Config) { c.Storage.Driver = "mysql" }, runtimeconfig.ErrStorageDriverUnknown},
		{"missing dsn", func(c *runtimeconfig.Config) { c.Storage.DSN = " " }, runtimeconfig.ErrStorageDSNRequired},
		{"unknown provider", func(c *runtimeconfig.Config) { c.Storage.Provider = "redis" }, runtimeconfig.ErrStorageProviderUnknown},
		{"cache ttl", func(c *runtimeconfig.Config) { c.Cache.DefaultTTL = 0 }, runtimeconfig.ErrCacheTTLInvalid},
		{"logging provider", func(c *runtimeconfig.Config) { c.Logging.Provider = "syslog" }, runtimeconfig.ErrLoggingProviderUnknown},
		{"logging level", func(c *runtimeconfig.Config) { c.Logging.Level = "loud" }, runtimeconfig.ErrLoggingLevelInvalid},
		{"logging format", func(c *runtimeconfig.Config) {
			c.Logging.Provider = "gologger"
			c.Logging.Format = "xml"
		}, runtimeconfig.ErrLoggingFormatInvalid},
		{"title bounds", func(c *runtimeconfig.Config) { c.Articles.TitleMaxLength = 2 }, runtimeconfig.ErrTitleBoundsInvalid},
		{"page size", func(c *runtimeconfig.Config) { c.Articles.PageSize = 500 }, runtimeconfig.ErrPageSizeInvalid},
		{"world limit", func(c *runtimeconfig.Config) { c.Worlds.MaxPerOwner = -1 }, runtimeconfig.ErrWorldLimitInvalid},
		{"world name", func(c *runtimeconfig.Config) { c.Worlds.NameMinLength = 0 }, runtimeconfig.ErrWorldNameMinLengthInvalid},
		{"backlinks", func(c *runtimeconfig.Config) { c.Wiki.Backlinks = "graph" }, runtimeconfig.ErrBacklinkStrategyUnknown},
		{"routes", func(c *runtimeconfig.Config) { c.Links.CreateRoute = "" }, runtimeconfig.ErrLinkRoutesRequired},
		{"assistant timeout", func(c *runtimeconfig.Config) {
			c.Assistant.Enabled = true
			c.Assistant.Timeout = 0
		}, runtimeconfig.ErrAssistantTimeoutInvalid},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := runtimeconfig.DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestConfigValidate_MemoryProviderIgnoresDriver(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Storage.Provider = runtimeconfig.StorageProviderMemory
	cfg.Storage.Driver = ""
	cfg.Storage.DSN = ""

	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected memory storage to validate, got %v", err)
	}
}

func TestDefaultRoutesCarryBaseURL(t *testing.T) {
	routes := runtimeconfig.DefaultRoutes("https://codice.example")
	if len(routes.Groups) != 1 || routes.Groups[0].BaseURL != "https://codice.example" {
		t.Fatalf("unexpected routes %+v", routes)
	}
	if routes.Groups[0].Paths["article"] == "" || routes.Groups[0].Paths["article_new"] == "" {
		t.Fatalf("expected article routes, got %+v", routes.Groups[0].Paths)
	}
}
