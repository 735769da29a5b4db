package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/renalcare/internal/domain"
)

// DefaultInterval is the poll interval used when none is configured.
const DefaultInterval = 10 * time.Second

// ErrInvalidInterval is returned for intervals outside (0, 1m).
var ErrInvalidInterval = errors.New("reminder interval must be positive and under one minute")

// State is the scheduler's lifecycle state.
type State int

const (
	Idle State = iota
	Armed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// StateSource supplies the active user's state on every poll.
// Implemented by *projector.Projector.
type StateSource interface {
	CurrentState(ctx context.Context) domain.AppState
}

// Notifier delivers one reminder.
type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock sets the clock polls read the minute from.
func WithClock(c Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// WithInterval sets the poll interval. New rejects values outside (0, 1m).
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) { s.interval = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// Scheduler fires medication reminders for the active user.
type Scheduler struct {
	source   StateSource
	notifier Notifier
	clock    Clock
	interval time.Duration
	logger   *slog.Logger

	// ctlMu serializes Arm and Disarm.
	ctlMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	// checkMu guards state and lastMinute and is held for a whole check.
	checkMu    sync.Mutex
	state      State
	lastMinute map[string]string // email -> last minute fired
}

// New creates an Idle scheduler.
func New(source StateSource, notifier Notifier, opts ...Option) (*Scheduler, error) {
	s := &Scheduler{
		source:     source,
		notifier:   notifier,
		clock:      SystemClock{},
		interval:   DefaultInterval,
		logger:     slog.Default(),
		lastMinute: make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.interval <= 0 || s.interval >= time.Minute {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidInterval, s.interval)
	}
	return s, nil
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	s.checkMu.Lock()
	defer s.checkMu.Unlock()
	return s.state
}

// Interval returns the poll interval.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Arm moves Idle to Armed and starts polling, with one poll right away.
// Arming an Armed scheduler is a no-op and returns false.
// Polling stops on Disarm or when ctx is done.
func (s *Scheduler) Arm(ctx context.Context) bool {
	s.ctlMu.Lock()
	defer s.ctlMu.Unlock()

	s.checkMu.Lock()
	if s.state == Armed {
		s.checkMu.Unlock()
		return false
	}
	s.state = Armed
	s.checkMu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(runCtx, s.done)

	s.logger.Info("reminder scheduler armed", "interval", s.interval)
	return true
}

// Disarm moves Armed to Idle and waits for the poll goroutine to exit.
// Disarming an Idle scheduler is a no-op and returns false.
func (s *Scheduler) Disarm() bool {
	s.ctlMu.Lock()
	defer s.ctlMu.Unlock()

	if s.cancel == nil {
		return false
	}

	// Cancel first so a notifier blocked on ctx releases checkMu.
	s.cancel()
	s.checkMu.Lock()
	s.state = Idle
	s.checkMu.Unlock()

	<-s.done
	s.cancel = nil
	s.done = nil

	s.logger.Info("reminder scheduler disarmed")
	return true
}

// Once runs a single poll as if armed and returns to Idle, for callers that
// schedule polls themselves (cron, tests). It reports ok=false, sending
// nothing, when the scheduler is already Armed.
func (s *Scheduler) Once(ctx context.Context) (sent int, ok bool) {
	s.ctlMu.Lock()
	defer s.ctlMu.Unlock()

	s.checkMu.Lock()
	if s.state == Armed {
		s.checkMu.Unlock()
		return 0, false
	}
	s.state = Armed
	s.checkMu.Unlock()

	sent = s.Check(ctx)

	s.checkMu.Lock()
	s.state = Idle
	s.checkMu.Unlock()
	return sent, true
}

func (s *Scheduler) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Check(ctx)
		}
	}
}

// Check runs one poll and returns how many reminders it sent.
//
// It does nothing while Idle, when nobody is logged in, or when the current
// minute already fired for the active user. Otherwise it records the minute
// and notifies once per medication listing it, even if the medication lists
// the same time more than once.
func (s *Scheduler) Check(ctx context.Context) int {
	s.checkMu.Lock()
	defer s.checkMu.Unlock()

	if s.state != Armed || ctx.Err() != nil {
		return 0
	}

	state := s.source.CurrentState(ctx)
	if state.User == nil {
		return 0
	}
	email := state.User.Email

	minute := MinuteOf(s.clock.Now())
	if s.lastMinute[email] == minute {
		return 0
	}
	s.lastMinute[email] = minute

	sent := 0
	for _, med := range state.Medications {
		if !med.HasReminder(minute) {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		title, body := ReminderText(med)
		if err := s.notifier.Notify(ctx, title, body); err != nil {
			s.logger.Error("reminder delivery failed", "medication", med.Name, "minute", minute, "error", err)
		}
		sent++
	}
	if sent > 0 {
		s.logger.Info("reminders sent", "user", email, "minute", minute, "count", sent)
	}
	return sent
}

// ReminderText returns the notification title and body for med.
func ReminderText(med domain.Medication) (title, body string) {
	return "Medication reminder", fmt.Sprintf("Time to take %s (%s)", med.Name, med.Dosage)
}
