package appconfig

import (
	"time"

	"github.com/3-lines-studio/studio/internal/usecase"
)

// DefaultConfigName is the file studio looks for in the project directory.
const DefaultConfigName = "studio.yaml"

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion int           `mapstructure:"config_version" yaml:"config_version"`
	Dev           bool          `mapstructure:"dev" yaml:"dev"`
	Render        RenderConfig  `mapstructure:"render" yaml:"render"`
	Preview       PreviewConfig `mapstructure:"preview" yaml:"preview"`
}

// RenderConfig bounds component evaluation and the render cache.
type RenderConfig struct {
	StepLimit       int `mapstructure:"step_limit" yaml:"step_limit"`
	TimeoutMS       int `mapstructure:"timeout_ms" yaml:"timeout_ms"`
	CacheEntries    int `mapstructure:"cache_entries" yaml:"cache_entries"`
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds" yaml:"cache_ttl_seconds"`
}

// PreviewConfig configures the preview server.
type PreviewConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Document string `mapstructure:"document" yaml:"document"`
	Public   string `mapstructure:"public" yaml:"public"`
	Watch    bool   `mapstructure:"watch" yaml:"watch"`
	// Sessions idle for longer are dropped; 0 keeps them.
	SessionIdleMinutes int `mapstructure:"session_idle_minutes" yaml:"session_idle_minutes"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	render := usecase.DefaultRenderConfig()
	return Config{
		ConfigVersion: CurrentConfigVersion,
		Render: RenderConfig{
			StepLimit:       render.StepLimit,
			TimeoutMS:       int(render.Timeout / time.Millisecond),
			CacheEntries:    render.CacheEntries,
			CacheTTLSeconds: int(render.CacheTTL / time.Second),
		},
		Preview: PreviewConfig{
			Addr:               "127.0.0.1:4173",
			Document:           "document.json",
			Public:             "public",
			Watch:              true,
			SessionIdleMinutes: 30,
		},
	}
}

// RenderService converts the render section into the engine's config.
func (c RenderConfig) RenderService() usecase.RenderConfig {
	return usecase.RenderConfig{
		StepLimit:    c.StepLimit,
		Timeout:      time.Duration(c.TimeoutMS) * time.Millisecond,
		CacheEntries: c.CacheEntries,
		CacheTTL:     time.Duration(c.CacheTTLSeconds) * time.Second,
	}
}
