package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/renalcare/internal/domain"
	"github.com/roach88/renalcare/internal/scheduler"
)

// RemindOptions holds flags for the remind command.
type RemindOptions struct {
	*RootOptions
	Once     bool
	Interval time.Duration
}

// NewRemindCommand creates the remind command.
func NewRemindCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RemindOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Raise medication reminders at their scheduled minute",
		Long: `Watch the active user's medications and raise a reminder when the
current minute matches one of a medication's reminder times. Each minute
fires at most once.

Reminders go to the configured channel (desktop command or Redis publish).
When that fails, or the channel is "none", a terminal alert is shown and
waits for Enter unless notify.unattended is set.

Runs until interrupted. With --once, polls a single time and exits, for use
from cron.

Example:
  renalcare remind
  renalcare remind --once`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, app *App, f *OutputFormatter) error {
				return runRemind(ctx, opts, app, f, cmd)
			})
		},
	}

	cmd.Flags().BoolVar(&opts.Once, "once", false, "poll once and exit")
	cmd.Flags().DurationVar(&opts.Interval, "interval", 0, "poll interval, under 1m (default from config)")

	return cmd
}

func runRemind(parent context.Context, opts *RemindOptions, app *App, f *OutputFormatter, cmd *cobra.Command) error {
	notifier := opts.Notifier
	if notifier == nil {
		out := f.Writer
		if f.Structured() {
			out = f.GetErrWriter()
		}
		notifier = app.reminderNotifier(cmd.InOrStdin(), out)
	}

	interval := opts.Interval
	if interval == 0 {
		interval = app.Config.Reminder.Interval
	}
	schedOpts := []scheduler.Option{
		scheduler.WithInterval(interval),
		scheduler.WithLogger(app.Logger),
	}
	if opts.Clock != nil {
		schedOpts = append(schedOpts, scheduler.WithClock(opts.Clock))
	}

	sched, err := scheduler.New(liveSource{app}, notifier, schedOpts...)
	if err != nil {
		return failInput(f, "%v", err)
	}

	if opts.Once {
		sent, _ := sched.Once(parent)
		if f.Structured() {
			return f.Success(map[string]int{"sent": sent})
		}
		return f.Success(fmt.Sprintf("Sent %d reminder(s)", sent))
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			app.Logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	sched.Arm(ctx)
	f.VerboseLog("Polling every %s", sched.Interval())
	if !f.Structured() {
		fmt.Fprintln(f.Writer, "Reminders armed. Press Ctrl-C to stop.")
	}

	<-ctx.Done()
	sched.Disarm()

	if f.Structured() {
		return f.Success(map[string]string{"state": sched.State().String()})
	}
	return f.Success("Reminders stopped")
}

// liveSource reloads the registry before every poll so records written by
// other renalcare processes are seen.
type liveSource struct {
	app *App
}

// A failed reload keeps the last loaded state for this poll.
func (s liveSource) CurrentState(ctx context.Context) domain.AppState {
	if _, err := s.app.Registry.Load(ctx); err != nil {
		s.app.Logger.Warn("registry reload failed, using cached state", "error", err)
	}
	return s.app.Projector.CurrentState(ctx)
}
