// Package app wires the storage backends, the synchronizer and the scheduler
// into a runnable engine, and handles graceful shutdown.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/akalniens/keepsync/internal/blob"
	"github.com/akalniens/keepsync/internal/config"
	"github.com/akalniens/keepsync/internal/identity"
	"github.com/akalniens/keepsync/internal/localstore"
	"github.com/akalniens/keepsync/internal/logging"
	"github.com/akalniens/keepsync/internal/remote"
	"github.com/akalniens/keepsync/internal/scheduler"
	"github.com/akalniens/keepsync/internal/syncer"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	ids       *identity.TokenProvider
	sync      *syncer.Synchronizer
	scheduler *scheduler.Scheduler
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	local, err := localstore.NewHandle(c.LocalDSN).Store(ctx)
	if err != nil {
		return nil, fmt.Errorf("local store init error: %w", err)
	}

	rs, err := remote.NewPostgresStore(ctx, c.RemoteDSN)
	if err != nil {
		return nil, fmt.Errorf("remote store init error: %w", err)
	}

	bs, err := blob.NewS3Store(ctx, blob.S3Config{
		Region:    c.S3Region,
		Endpoint:  c.S3BaseEndpoint,
		Bucket:    c.S3Bucket,
		AccessKey: c.S3AccessKey,
		SecretKey: c.S3SecretKey,
	})
	if err != nil {
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	ids := identity.NewTokenProvider([]byte(c.SecretKey))
	lc := syncer.NewLifecycle(local, bs, logger, c.BlobTimeout)
	sync := syncer.New(local, rs, lc, ids, logger, c.MetadataTimeout)
	sched := scheduler.New(sync, ids, logger, c.PullInterval)

	return &App{config: c, logger: logger, ids: ids, sync: sync, scheduler: sched}, nil
}

// SignIn installs the identity carried by token, enabling synchronization.
func (app *App) SignIn(token string) error {
	return app.ids.SignIn(token)
}

// SyncNow runs one full sync cycle, reporting progress through fn.
func (app *App) SyncNow(ctx context.Context, fn func(scheduler.Progress)) (scheduler.Summary, error) {
	return app.scheduler.SyncNow(ctx, fn)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run starts the background scheduler and blocks until a termination signal
// or ctx cancellation.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)

	app.logger.Info(ctx, "Starting sync engine...")
	if err := app.scheduler.Run(ctx); err != nil && ctx.Err() == nil {
		app.logger.Error(ctx, err.Error())
	}
	app.logger.Info(ctx, "Sync engine stopped")
}
