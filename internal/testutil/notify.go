package testutil

import (
	"context"
	"sync"
)

// Notification is one delivery captured by RecordingNotifier.
type Notification struct {
	Title string
	Body  string
}

// RecordingNotifier captures notifications instead of delivering them.
//
// Implements scheduler.Notifier and notify.Notifier. Set Err to make every
// call fail after recording.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type RecordingNotifier struct {
	mu   sync.Mutex
	sent []Notification
	Err  error
}

// Notify records the notification.
func (n *RecordingNotifier) Notify(_ context.Context, title, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, Notification{Title: title, Body: body})
	return n.Err
}

// Sent returns a copy of everything recorded so far.
func (n *RecordingNotifier) Sent() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notification, len(n.sent))
	copy(out, n.sent)
	return out
}

// Bodies returns the recorded bodies in delivery order.
func (n *RecordingNotifier) Bodies() []string {
	sent := n.Sent()
	out := make([]string, len(sent))
	for i, s := range sent {
		out[i] = s.Body
	}
	return out
}

// Reset drops everything recorded.
func (n *RecordingNotifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = nil
}
