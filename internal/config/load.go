package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/civicprep/civicprep/internal/question"
)

// EnvPrefix prefixes every environment override, e.g. CIVICPREP_SERVER_ADDR.
const EnvPrefix = "CIVICPREP"

// Options controls where Load looks for settings.
type Options struct {
	// ConfigFile is an optional YAML, TOML or JSON file.
	ConfigFile string
	// EnvFile is loaded into the environment first. Missing is fine.
	// Defaults to ".env".
	EnvFile string
	// Overrides are applied last, keyed by dotted path (e.g. "data.db_path").
	Overrides map[string]any
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads configuration in increasing priority: defaults, config file,
// environment, then explicit overrides. The result is validated.
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for k, val := range opts.Overrides {
		v.Set(k, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and the selected LLM provider.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if c.Practice.Category != "" && question.ParseCategory(c.Practice.Category) == nil {
		return fmt.Errorf("config validation failed: unknown practice category %q", c.Practice.Category)
	}
	return nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data.db_path", "")

	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "")

	v.SetDefault("remote.database_url", "")
	v.SetDefault("remote.max_conns", 10)

	v.SetDefault("push.vapid_public_key", "")
	v.SetDefault("push.vapid_private_key", "")
	v.SetDefault("push.subject", "mailto:admin@civicprep.app")
	v.SetDefault("push.cron_api_key", "")
	v.SetDefault("push.cron_secret", "")
	v.SetDefault("push.rate_per_second", 10.0)
	v.SetDefault("push.ttl", "12h")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("redis.url", "")

	v.SetDefault("user.id", defaultUserID())

	v.SetDefault("practice.count", 10)
	v.SetDefault("practice.weak_ratio", 0.7)
	v.SetDefault("practice.focus", "mixed")
	v.SetDefault("practice.category", "")
	v.SetDefault("interview.threshold", 0.35)

	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.anthropic.api_key", "")
	v.SetDefault("llm.anthropic.model", "claude-haiku")
	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.openai.model", "gpt-4o-mini")
	v.SetDefault("llm.openai.base_url", "")
	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.gemini.model", "gemini-flash")
	v.SetDefault("llm.openrouter.api_key", "")
	v.SetDefault("llm.openrouter.model", "google/gemini-2.0-flash-exp")
	v.SetDefault("llm.openrouter.base_url", "")
	v.SetDefault("llm.retry.max_attempts", 3)
	v.SetDefault("llm.retry.initial_wait", "1s")
	v.SetDefault("llm.retry.max_wait", "10s")
	v.SetDefault("llm.retry.multiplier", 2.0)
	v.SetDefault("llm.timeout", "30s")
}

// defaultUserID names the local learner after the OS user.
func defaultUserID() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "local"
}
