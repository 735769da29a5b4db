package notify

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Alert writes a banner and, when In is set, blocks until Enter is pressed.
//
// Only a line read while a banner is waiting acknowledges it. Lines read
// between banners are dropped, so an early Enter cannot acknowledge the
// next reminder before it is shown.
type Alert struct {
	Out io.Writer
	In  io.Reader // Optional; nil means do not wait

	mu   sync.Mutex // serializes banners
	once sync.Once

	// ackMu guards the fields below, shared with the reader goroutine.
	ackMu   sync.Mutex
	waiter  chan bool // true for a line, false at end of input
	closed  bool
	dropped int
}

// Notify writes the banner and waits for acknowledgement or ctx cancellation.
func (a *Alert) Notify(ctx context.Context, title, body string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	width := max(len(title), len(body)) + 4
	rule := strings.Repeat("=", width)
	prompt := ""
	if a.In != nil {
		prompt = "  Press Enter to acknowledge\n"
	}
	if _, err := fmt.Fprintf(a.Out, "\a%s\n  %s\n  %s\n%s%s\n", rule, title, body, prompt, rule); err != nil {
		return fmt.Errorf("write alert: %w", err)
	}
	if a.In == nil {
		return nil
	}

	a.once.Do(a.startReader)
	ack, err := a.wait()
	if err != nil {
		return err
	}
	defer a.stopWaiting()

	select {
	case ok := <-ack:
		if !ok {
			return io.EOF
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// wait registers the banner as waiting for a line.
func (a *Alert) wait() (<-chan bool, error) {
	a.ackMu.Lock()
	defer a.ackMu.Unlock()
	if a.closed {
		return nil, io.EOF
	}
	a.waiter = make(chan bool, 1)
	return a.waiter, nil
}

func (a *Alert) stopWaiting() {
	a.ackMu.Lock()
	defer a.ackMu.Unlock()
	a.waiter = nil
}

func (a *Alert) waiting() bool {
	a.ackMu.Lock()
	defer a.ackMu.Unlock()
	return a.waiter != nil
}

func (a *Alert) droppedLines() int {
	a.ackMu.Lock()
	defer a.ackMu.Unlock()
	return a.dropped
}

// startReader consumes In for the life of the Alert. A single reader
// goroutine owns In so an abandoned wait does not leave a competing read behind.
func (a *Alert) startReader() {
	go func() {
		sc := bufio.NewScanner(a.In)
		for sc.Scan() {
			a.deliver(true)
		}
		a.deliver(false)
	}()
}

// deliver hands a line, or end of input, to the waiting banner if any.
func (a *Alert) deliver(line bool) {
	a.ackMu.Lock()
	defer a.ackMu.Unlock()
	if !line {
		a.closed = true
	}
	if a.waiter == nil {
		if line {
			a.dropped++
		}
		return
	}
	a.waiter <- line
	a.waiter = nil
}
