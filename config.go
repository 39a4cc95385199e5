package codice

import "github.com/codice-do-criador/codice/internal/runtimeconfig"

var (
	ErrStorageDriverUnknown      = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired        = runtimeconfig.ErrStorageDSNRequired
	ErrStorageProviderUnknown    = runtimeconfig.ErrStorageProviderUnknown
	ErrLoggingProviderUnknown    = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid       = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid      = runtimeconfig.ErrLoggingFormatInvalid
	ErrTitleBoundsInvalid        = runtimeconfig.ErrTitleBoundsInvalid
	ErrPageSizeInvalid           = runtimeconfig.ErrPageSizeInvalid
	ErrWorldLimitInvalid         = runtimeconfig.ErrWorldLimitInvalid
	ErrBacklinkStrategyUnknown   = runtimeconfig.ErrBacklinkStrategyUnknown
	ErrLinkRoutesRequired        = runtimeconfig.ErrLinkRoutesRequired
	ErrAssistantTimeoutInvalid   = runtimeconfig.ErrAssistantTimeoutInvalid
	ErrCacheTTLInvalid           = runtimeconfig.ErrCacheTTLInvalid
	ErrWorldNameMinLengthInvalid = runtimeconfig.ErrWorldNameMinLengthInvalid
)

type (
	Config          = runtimeconfig.Config
	StorageConfig   = runtimeconfig.StorageConfig
	CacheConfig     = runtimeconfig.CacheConfig
	LoggingConfig   = runtimeconfig.LoggingConfig
	WorldsConfig    = runtimeconfig.WorldsConfig
	ArticlesConfig  = runtimeconfig.ArticlesConfig
	WikiConfig      = runtimeconfig.WikiConfig
	LinksConfig     = runtimeconfig.LinksConfig
	AssistantConfig = runtimeconfig.AssistantConfig
	MarkdownConfig  = runtimeconfig.MarkdownConfig
)

// DefaultConfig returns the settings the application ships with.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
