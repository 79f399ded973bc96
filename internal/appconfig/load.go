package appconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. STUDIO_PREVIEW_ADDR.
const EnvPrefix = "STUDIO"

// Load reads configuration from path. A missing file yields the defaults,
// still subject to environment overrides.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigName
	}
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("config_version", cfg.ConfigVersion)
	v.SetDefault("dev", cfg.Dev)
	v.SetDefault("render.step_limit", cfg.Render.StepLimit)
	v.SetDefault("render.timeout_ms", cfg.Render.TimeoutMS)
	v.SetDefault("render.cache_entries", cfg.Render.CacheEntries)
	v.SetDefault("render.cache_ttl_seconds", cfg.Render.CacheTTLSeconds)
	v.SetDefault("preview.addr", cfg.Preview.Addr)
	v.SetDefault("preview.document", cfg.Preview.Document)
	v.SetDefault("preview.public", cfg.Preview.Public)
	v.SetDefault("preview.watch", cfg.Preview.Watch)
	v.SetDefault("preview.session_idle_minutes", cfg.Preview.SessionIdleMinutes)

	configLoaded := false
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		configLoaded = true
	}

	if configLoaded {
		if !v.InConfig("config_version") {
			return Config{}, fmt.Errorf("config_version is required; expected %d", CurrentConfigVersion)
		}
		if v.GetInt("config_version") != CurrentConfigVersion {
			return Config{}, fmt.Errorf("unsupported config_version %d; expected %d", v.GetInt("config_version"), CurrentConfigVersion)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	if configLoaded && !filepath.IsAbs(cfg.Preview.Document) {
		cfg.Preview.Document = filepath.Join(filepath.Dir(path), cfg.Preview.Document)
	}
	return cfg, nil
}

func validate(cfg Config) error {
	if cfg.Render.StepLimit <= 0 {
		return fmt.Errorf("render.step_limit must be positive")
	}
	if cfg.Render.TimeoutMS < 0 {
		return fmt.Errorf("render.timeout_ms must not be negative")
	}
	if cfg.Render.CacheEntries < 0 {
		return fmt.Errorf("render.cache_entries must not be negative")
	}
	if cfg.Preview.SessionIdleMinutes < 0 {
		return fmt.Errorf("preview.session_idle_minutes must not be negative")
	}
	if strings.TrimSpace(cfg.Preview.Addr) == "" {
		return fmt.Errorf("preview.addr is required")
	}
	return nil
}

// WriteDefault writes the default config to path.
func WriteDefault(path string, overwrite bool) (string, error) {
	if path == "" {
		path = DefaultConfigName
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}

	data, err := Marshal(DefaultConfig())
	if err != nil {
		return "", err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// Marshal encodes cfg as YAML.
func Marshal(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}
