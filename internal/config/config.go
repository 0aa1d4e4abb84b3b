package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/lifei6671/l10n"
)

// Config drives the l10nlint tool and any host that wires the engine from
// its environment.
type Config struct {
	DefaultLanguage string `env:"L10N_DEFAULT_LANGUAGE" toml:"default_language" yaml:"default_language"`
	CatalogDir      string `env:"L10N_CATALOG_DIR"      toml:"catalog_dir"      yaml:"catalog_dir"`
	Concurrency     int    `env:"L10N_CONCURRENCY"      toml:"concurrency"      yaml:"concurrency"`

	LogLevel   string `env:"L10N_LOG_LEVEL"   toml:"log_level"   yaml:"log_level"`
	LogFormat  string `env:"L10N_LOG_FORMAT"  toml:"log_format"  yaml:"log_format"`
	LogColored bool   `env:"L10N_LOG_COLORED" toml:"log_colored" yaml:"log_colored"`
}

func Default() Config {
	return Config{
		DefaultLanguage: l10n.DefaultLanguage,
		CatalogDir:      "./locales",
		Concurrency:     4,
		LogLevel:        "info",
		LogFormat:       "text",
		LogColored:      true,
	}
}

// Load builds a Config from defaults, then the optional file at path
// (.toml, .yaml or .yml), then a .env file in the working directory, then
// L10N_* environment variables. Later sources win.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}

	// .env is optional; variables may come straight from the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("loading .env: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing environment: %w", err)
	}

	return cfg, cfg.Validate()
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("decoding %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("decoding %s: %w", path, err)
		}
	default:
		return fmt.Errorf("config %s: unsupported format %q", path, ext)
	}
	return nil
}

// Validate checks the language tag and the enumerated fields.
func (c Config) Validate() error {
	var errs []error
	if _, err := l10n.ParseTag(c.DefaultLanguage); err != nil {
		errs = append(errs, fmt.Errorf("default_language: %w", err))
	}
	if c.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format must be text or json, got %q", c.LogFormat))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level must be debug, info, warn or error, got %q", c.LogLevel))
	}
	return errors.Join(errs...)
}

// Options turns the engine settings into l10n options.
func (c Config) Options() []l10n.Option {
	return []l10n.Option{
		l10n.WithDefaultLanguage(c.DefaultLanguage),
		l10n.WithConcurrency(c.Concurrency),
	}
}
