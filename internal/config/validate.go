package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the sqlite driver")
		}
	case DriverRedis:
		if c.Storage.RedisAddr == "" {
			return fmt.Errorf("storage.redis_addr is required for the redis driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("storage.driver must be sqlite, redis or memory (got %q)", c.Storage.Driver)
	}

	if c.Reminder.Interval <= 0 || c.Reminder.Interval >= time.Minute {
		return fmt.Errorf("reminder.interval must be > 0 and < 1m (got %s)", c.Reminder.Interval)
	}

	switch c.Notify.Channel {
	case ChannelDesktop, ChannelRedis, ChannelNone:
	default:
		return fmt.Errorf("notify.channel must be desktop, redis or none (got %q)", c.Notify.Channel)
	}
	if c.Notify.Channel == ChannelRedis && c.Storage.RedisAddr == "" {
		return fmt.Errorf("notify.channel redis needs storage.redis_addr")
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json (got %q)", c.Log.Format)
	}

	return nil
}

// ParseLevel parses debug, info, warn or error, case-insensitively.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, err
	}
	return level, nil
}
