package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/roach88/renalcare/internal/auth"
	"github.com/roach88/renalcare/internal/config"
	"github.com/roach88/renalcare/internal/domain"
	"github.com/roach88/renalcare/internal/insight"
	"github.com/roach88/renalcare/internal/notify"
	"github.com/roach88/renalcare/internal/projector"
	"github.com/roach88/renalcare/internal/registry"
	"github.com/roach88/renalcare/internal/schema"
	"github.com/roach88/renalcare/internal/session"
	"github.com/roach88/renalcare/internal/store"
	"github.com/roach88/renalcare/internal/tracker"
)

// App is the wired object graph one command runs against.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Backend   store.Backend
	Registry  *registry.Registry
	Session   *session.Store
	Projector *projector.Projector
	Gate      *auth.Gate
	Validator *schema.Validator
	Tracker   *tracker.Service

	closers []func() error
}

// openApp loads configuration, opens the backend and wires the services.
// The caller must Close the result.
func openApp(cmd *cobra.Command, opts *RootOptions) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to load config", err)
		}
		cfg = loaded
	}

	logger := NewLogger(cfg.Log, cmd.ErrOrStderr(), opts.Verbose)
	app := &App{Config: cfg, Logger: logger}

	app.Backend = opts.Backend
	if app.Backend == nil {
		backend, closer, err := openBackend(cfg.Storage)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open storage", err)
		}
		logger.Debug("storage ready", "driver", cfg.Storage.Driver)
		app.Backend = backend
		app.onClose(closer)
	}

	validator, err := schema.New()
	if err != nil {
		app.Close()
		return nil, WrapExitError(ExitFailure, "failed to load schema", err)
	}
	app.Validator = validator

	ids := opts.IDs
	if ids == nil {
		ids = domain.UUIDv7Generator{}
	}

	ctx := commandContext(cmd)
	reg, err := registry.Open(ctx, app.Backend, logger)
	if err != nil {
		app.Close()
		return nil, WrapExitError(ExitFailure, "failed to load registry", err)
	}
	app.Registry = reg
	logRegistry(ctx, logger, app.Backend, reg)
	app.Session = session.New(app.Backend, logger)
	app.Projector = projector.New(app.Registry, app.Session, logger)
	app.Gate = auth.New(app.Registry, app.Session, ids, logger)

	trackerOpts := []tracker.Option{tracker.WithIDs(ids), tracker.WithLogger(logger)}
	if opts.Clock != nil {
		trackerOpts = append(trackerOpts, tracker.WithNow(opts.Clock.Now))
	}
	svc, err := insightService(cfg.Gemini, opts.Insight)
	if err != nil {
		app.Close()
		return nil, WrapExitError(ExitCommandError, "failed to configure gemini", err)
	}
	if svc != nil {
		trackerOpts = append(trackerOpts, tracker.WithInsight(svc))
	}
	app.Tracker = tracker.New(app.Projector, app.Registry, validator, trackerOpts...)

	return app, nil
}

// Close releases everything openApp opened, in reverse order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Logger.Error("error closing resource", "error", err)
		}
	}
	a.closers = nil
}

func (a *App) onClose(fn func() error) {
	if fn != nil {
		a.closers = append(a.closers, fn)
	}
}

// redisClient returns a client for reminder publishing, sharing the storage
// connection when storage is Redis.
func (a *App) redisClient() *redis.Client {
	if rs, ok := a.Backend.(*store.RedisStore); ok {
		return rs.Client()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     a.Config.Storage.RedisAddr,
		Password: a.Config.Storage.RedisPassword,
		DB:       a.Config.Storage.RedisDB,
	})
	a.onClose(client.Close)
	return client
}

// reminderNotifier builds the reminder delivery chain: the configured primary
// channel with a terminal alert behind it.
func (a *App) reminderNotifier(in io.Reader, out io.Writer) notify.Notifier {
	alert := &notify.Alert{Out: out}
	if !a.Config.Notify.Unattended {
		alert.In = in
	}

	var primary notify.Notifier
	switch a.Config.Notify.Channel {
	case config.ChannelDesktop:
		primary = &notify.Command{Name: a.Config.Notify.Command, Args: a.Config.Notify.CommandArgs}
	case config.ChannelRedis:
		primary = notify.NewRedisPublisher(a.redisClient(), a.Config.Notify.RedisChannel)
	}
	return &notify.Fallback{Primary: primary, Alert: alert, Logger: a.Logger}
}

func openBackend(cfg config.StorageConfig) (store.Backend, func() error, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return store.NewMemoryStore(), nil, nil
	case config.DriverRedis:
		rs := store.NewRedisStore(store.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
			Timeout:  cfg.Timeout,
		})
		return rs, rs.Close, nil
	case config.DriverSQLite, "":
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create data dir: %w", err)
		}
		st, err := store.Open(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

func insightService(cfg config.GeminiConfig, override insight.Service) (insight.Service, error) {
	if override != nil {
		return override, nil
	}
	if !cfg.Enabled() {
		return nil, nil
	}
	client, err := insight.NewGeminiClient(cfg.APIKey,
		insight.WithModel(cfg.Model),
		insight.WithBaseURL(cfg.BaseURL),
		insight.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// commandContext returns the command's context, or Background when the
// command was executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// newFormatter builds the formatter for one command invocation.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// withApp opens the app, runs fn and closes it.
func withApp(opts *RootOptions, cmd *cobra.Command, fn func(ctx context.Context, app *App, f *OutputFormatter) error) error {
	f := newFormatter(opts, cmd)
	app, err := openApp(cmd, opts)
	if err != nil {
		_ = f.Error(ErrCodeGeneric, err.Error(), nil)
		return err
	}
	defer app.Close()
	return fn(commandContext(cmd), app, f)
}

// logRegistry reports what was loaded at debug level, with the write count
// when the backend keeps one.
func logRegistry(ctx context.Context, logger *slog.Logger, backend store.Backend, reg *registry.Registry) {
	attrs := []any{"users", reg.Len()}
	if rb, ok := backend.(store.RevisionBackend); ok {
		rev, err := rb.Revision(ctx, domain.RegistryKey)
		if err != nil {
			logger.Debug("registry revision unavailable", "error", err)
		} else {
			attrs = append(attrs, "revision", rev)
		}
	}
	logger.Debug("registry loaded", attrs...)
}
