package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the Redis channel reminders are published on.
const DefaultChannel = "renalcare:reminders"

// ErrNoSubscribers means the publish reached nobody.
var ErrNoSubscribers = errors.New("no subscribers received the reminder")

// Reminder is the JSON payload published to Redis.
type Reminder struct {
	Title  string    `json:"title"`
	Body   string    `json:"body"`
	SentAt time.Time `json:"sentAt"`
}

// RedisPublisher publishes reminders on a Redis channel for a companion
// process (phone bridge, tray app) to pick up.
type RedisPublisher struct {
	client  *redis.Client
	channel string
	now     func() time.Time
}

// NewRedisPublisher publishes on channel, or DefaultChannel when empty.
func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{client: client, channel: channel, now: time.Now}
}

// Channel returns the channel reminders go to.
func (p *RedisPublisher) Channel() string {
	return p.channel
}

// Notify publishes the reminder. A publish nobody received returns
// ErrNoSubscribers so a Fallback shows the alert instead.
func (p *RedisPublisher) Notify(ctx context.Context, title, body string) error {
	payload, err := json.Marshal(Reminder{Title: title, Body: body, SentAt: p.now().UTC()})
	if err != nil {
		return fmt.Errorf("encode reminder: %w", err)
	}
	n, err := p.client.Publish(ctx, p.channel, payload).Result()
	if err != nil {
		return fmt.Errorf("publish to %s: %w", p.channel, err)
	}
	if n == 0 {
		return fmt.Errorf("publish to %s: %w", p.channel, ErrNoSubscribers)
	}
	return nil
}
