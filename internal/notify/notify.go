// Package notify delivers medication reminders.
//
// A Fallback pairs a primary channel (desktop command, Redis publish) with an
// Alert that writes to the terminal, so a failed delivery is never dropped.
package notify

import (
	"context"
	"errors"
	"log/slog"
)

// Notifier delivers one notification.
type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

// Fallback tries Primary and falls back to Alert when Primary is nil or fails.
type Fallback struct {
	Primary Notifier
	Alert   Notifier
	Logger  *slog.Logger
}

// Notify delivers through Primary, or Alert when Primary is unavailable.
// The returned error is non-nil only when the alert also failed.
func (f *Fallback) Notify(ctx context.Context, title, body string) error {
	if f.Primary != nil {
		err := f.Primary.Notify(ctx, title, body)
		if err == nil {
			return nil
		}
		f.logger().Warn("primary notifier failed, using alert", "error", err)
	}
	if f.Alert == nil {
		return errors.New("no alert notifier configured")
	}
	return f.Alert.Notify(ctx, title, body)
}

func (f *Fallback) logger() *slog.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return slog.Default()
}
