// Package config loads renalcare settings from YAML and the environment.
package config

import "time"

// Config is the root application configuration.
type Config struct {
	Storage  StorageConfig  `yaml:"storage"`
	Reminder ReminderConfig `yaml:"reminder"`
	Notify   NotifyConfig   `yaml:"notify"`
	Gemini   GeminiConfig   `yaml:"gemini"`
	Log      LogConfig      `yaml:"log"`
}

// Storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// StorageConfig selects and configures the key-value backend.
type StorageConfig struct {
	Driver        string        `yaml:"driver"         env:"RENALCARE_STORAGE_DRIVER" env-default:"sqlite"`
	Path          string        `yaml:"path"           env:"RENALCARE_DB_PATH"`
	RedisAddr     string        `yaml:"redis_addr"     env:"RENALCARE_REDIS_ADDR"     env-default:"localhost:6379"`
	RedisPassword string        `yaml:"redis_password" env:"RENALCARE_REDIS_PASSWORD"`
	RedisDB       int           `yaml:"redis_db"       env:"RENALCARE_REDIS_DB"       env-default:"0"`
	RedisPrefix   string        `yaml:"redis_prefix"   env:"RENALCARE_REDIS_PREFIX"   env-default:"renalcare:"`
	Timeout       time.Duration `yaml:"timeout"        env:"RENALCARE_STORAGE_TIMEOUT" env-default:"3s"`
}

// ReminderConfig holds scheduler settings.
type ReminderConfig struct {
	Interval time.Duration `yaml:"interval" env:"RENALCARE_REMINDER_INTERVAL" env-default:"10s"`
}

// Notification channels.
const (
	ChannelDesktop = "desktop"
	ChannelRedis   = "redis"
	ChannelNone    = "none"
)

// NotifyConfig picks the primary reminder channel. The terminal alert is
// always the fallback.
type NotifyConfig struct {
	Channel      string   `yaml:"channel"       env:"RENALCARE_NOTIFY_CHANNEL"       env-default:"desktop"`
	Command      string   `yaml:"command"       env:"RENALCARE_NOTIFY_COMMAND"       env-default:"notify-send"`
	CommandArgs  []string `yaml:"command_args"  env:"RENALCARE_NOTIFY_COMMAND_ARGS"  env-separator:","`
	RedisChannel string   `yaml:"redis_channel" env:"RENALCARE_NOTIFY_REDIS_CHANNEL" env-default:"renalcare:reminders"`
	Unattended   bool     `yaml:"unattended"    env:"RENALCARE_NOTIFY_UNATTENDED"` // Alert does not wait for Enter
}

// GeminiConfig configures the insight service. An empty key disables it.
type GeminiConfig struct {
	APIKey  string        `yaml:"api_key"  env:"GEMINI_API_KEY"`
	Model   string        `yaml:"model"    env:"GEMINI_MODEL"    env-default:"gemini-3-flash-preview"`
	BaseURL string        `yaml:"base_url" env:"GEMINI_BASE_URL" env-default:"https://generativelanguage.googleapis.com/v1beta"`
	Timeout time.Duration `yaml:"timeout"  env:"GEMINI_TIMEOUT"  env-default:"60s"`
}

// Enabled reports whether an API key is configured.
func (g GeminiConfig) Enabled() bool {
	return g.APIKey != ""
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"RENALCARE_LOG_LEVEL"  env-default:"warn"`
	Format string `yaml:"format" env:"RENALCARE_LOG_FORMAT" env-default:"text"`
}
