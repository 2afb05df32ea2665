package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/pantry/internal/blob"
	"github.com/roach88/pantry/internal/clock"
	"github.com/roach88/pantry/internal/config"
	"github.com/roach88/pantry/internal/idgen"
	"github.com/roach88/pantry/internal/imagestore"
	"github.com/roach88/pantry/internal/inventory"
)

// App bundles the services a command works with.
type App struct {
	Config *config.Config
	Repo   *inventory.Repository
	Images *imagestore.Store
	Clock  clock.Clock
	IDs    idgen.Source
	Logger *slog.Logger

	closer io.Closer
}

// Close releases the storage backend.
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

func openApp(ctx context.Context, opts *RootOptions, logOut io.Writer, loadDocument bool) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errConfig, err)
	}
	if opts.DataDir != "" {
		cfg.DataDir = opts.DataDir
	}

	// Configure logging based on config and verbose flag
	logLevel := cfg.SlogLevel()
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	}))

	app := &App{
		Config: cfg,
		Clock:  opts.Clock,
		IDs:    opts.IDs,
		Logger: logger,
	}
	if app.Clock == nil {
		app.Clock = clock.System{}
	}
	if app.IDs == nil {
		app.IDs = idgen.RandomSource{}
	}

	storage, closer, err := openStorage(ctx, cfg, app.Clock)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errStorage, err)
	}
	app.closer = closer
	logger.Debug("opened storage", "backend", cfg.Storage.Backend)

	app.Repo = inventory.New(storage,
		inventory.WithPath(cfg.Document),
		inventory.WithClock(app.Clock),
		inventory.WithIDSource(app.IDs),
		inventory.WithLogger(logger),
	)
	app.Images = imagestore.New(storage, imagestore.WithLogger(logger))

	if loadDocument {
		if err := app.Repo.Load(ctx); err != nil {
			_ = app.Close()
			return nil, err
		}
	}
	return app, nil
}

// openStorage opens the configured blob backend. closer is nil for
// backends without resources to release.
func openStorage(ctx context.Context, cfg *config.Config, clk clock.Clock) (blob.Storage, io.Closer, error) {
	opts := []blob.Option{blob.WithClock(clk)}

	switch cfg.Storage.Backend {
	case config.BackendFS:
		s, err := blob.NewFS(cfg.DataDir, opts...)
		return s, nil, err
	case config.BackendSQLite:
		s, err := blob.OpenSQLite(cfg.SQLitePath(), opts...)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case config.BackendS3:
		s, err := blob.OpenS3(ctx, blob.S3Config{
			Bucket:   cfg.Storage.S3.Bucket,
			Prefix:   cfg.Storage.S3.Prefix,
			Region:   cfg.Storage.S3.Region,
			Endpoint: cfg.Storage.S3.Endpoint,
		}, opts...)
		return s, nil, err
	case config.BackendMemory:
		return blob.NewMemory(opts...), nil, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}
