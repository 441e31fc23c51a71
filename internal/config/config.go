// Package config loads civicprep settings from defaults, an optional config
// file, a .env file and CIVICPREP_* environment variables.
package config

import (
	"time"

	"github.com/civicprep/civicprep/internal/llm"
)

// Config holds all application configuration.
type Config struct {
	Data      DataConfig      `mapstructure:"data"`
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Log       LogConfig       `mapstructure:"log" validate:"required"`
	Remote    RemoteConfig    `mapstructure:"remote"`
	Push      PushConfig      `mapstructure:"push"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Redis     RedisConfig     `mapstructure:"redis"`
	User      UserConfig      `mapstructure:"user" validate:"required"`
	Practice  PracticeConfig  `mapstructure:"practice"`
	Interview InterviewConfig `mapstructure:"interview"`
	LLM       llm.Config      `mapstructure:"llm"`
}

// DataConfig locates local storage.
type DataConfig struct {
	// DBPath is the SQLite file. Empty means the XDG default.
	DBPath string `mapstructure:"db_path"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" validate:"required,hostname_port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0"`
}

// LogConfig selects log level and output format.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	// Format is "json" or "text". Empty lets the command choose.
	Format string `mapstructure:"format" validate:"omitempty,oneof=json text"`
}

// RemoteConfig points at the shared Postgres database.
type RemoteConfig struct {
	DatabaseURL string `mapstructure:"database_url" validate:"omitempty,url"`
	MaxConns    int32  `mapstructure:"max_conns" validate:"gte=0"`
}

// PushConfig holds Web Push credentials and cron secrets.
type PushConfig struct {
	VAPIDPublicKey  string        `mapstructure:"vapid_public_key"`
	VAPIDPrivateKey string        `mapstructure:"vapid_private_key" validate:"required_with=VAPIDPublicKey"`
	Subject         string        `mapstructure:"subject"`
	CronAPIKey      string        `mapstructure:"cron_api_key"`
	CronSecret      string        `mapstructure:"cron_secret"`
	RatePerSecond   float64       `mapstructure:"rate_per_second" validate:"gte=0"`
	TTL             time.Duration `mapstructure:"ttl" validate:"gte=0"`
}

// AuthConfig verifies subscriber tokens.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"omitempty,min=32"`
}

// RedisConfig enables reminder de-duplication.
type RedisConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// UserConfig identifies the local learner when syncing.
type UserConfig struct {
	ID string `mapstructure:"id" validate:"required"`
}

// PracticeConfig sets practice session defaults.
type PracticeConfig struct {
	Count     int     `mapstructure:"count" validate:"gte=1,lte=100"`
	WeakRatio float64 `mapstructure:"weak_ratio" validate:"gte=0,lte=1"`
	// Focus is "mixed", "weak" or "drill".
	Focus string `mapstructure:"focus" validate:"omitempty,oneof=mixed weak drill"`
	// Category limits practice to a main or sub category name.
	Category string `mapstructure:"category"`
}

// InterviewConfig tunes answer grading.
type InterviewConfig struct {
	Threshold float64 `mapstructure:"threshold" validate:"gt=0,lte=1"`
}

// RemoteEnabled reports whether a remote database is configured.
func (c *Config) RemoteEnabled() bool {
	return c.Remote.DatabaseURL != ""
}

// PushEnabled reports whether VAPID keys are configured.
func (c *Config) PushEnabled() bool {
	return c.Push.VAPIDPublicKey != "" && c.Push.VAPIDPrivateKey != ""
}
