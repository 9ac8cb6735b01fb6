// Package server wires the planboard store layer into a long-running
// process: it opens the repositories, bootstraps missing files, runs the
// periodic backup scheduler and shuts down on SIGINT/SIGTERM.
package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/planboard/internal/common"
	"github.com/dmitrijs2005/planboard/internal/logging"
	"github.com/dmitrijs2005/planboard/internal/server/auth"
	"github.com/dmitrijs2005/planboard/internal/server/config"
	"github.com/dmitrijs2005/planboard/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/planboard/internal/server/scheduler"
	"github.com/dmitrijs2005/planboard/internal/server/services"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	security  *logging.SecurityLog
	repos     *repomanager.FileRepositoryManager
	services  *services.Services
	scheduler *scheduler.BackupScheduler
}

// NewApp opens every store under c.DataDir. Log output goes to stdout.
func NewApp(c *config.Config) (*App, error) {
	return NewAppWithOutput(c, os.Stdout)
}

func NewAppWithOutput(c *config.Config, out io.Writer) (*App, error) {
	logger, err := logging.New(out, c.LogLevel)
	if err != nil {
		return nil, err
	}

	hasher, err := auth.NewPasswordHasher(auth.Method(c.HashMethod))
	if err != nil {
		return nil, fmt.Errorf("hasher init error: %w", err)
	}

	security, err := logging.OpenSecurityLog(c.Path(c.SecurityLogFile))
	if err != nil {
		return nil, fmt.Errorf("security log init error: %w", err)
	}

	repos, err := repomanager.NewFileRepositoryManager(c, hasher, logger)
	if err != nil {
		_ = security.Close()
		return nil, fmt.Errorf("repository init error: %w", err)
	}

	app := &App{
		config:   c,
		logger:   logger,
		security: security,
		repos:    repos,
		services: services.New(repos, security),
	}
	if c.BackupSchedule != "" {
		app.scheduler = scheduler.New(nil, repos.Backups(), logger.With("component", "scheduler"))
		if _, err := app.scheduler.Schedule(c.BackupSchedule); err != nil {
			_ = security.Close()
			return nil, err
		}
	}
	return app, nil
}

func (app *App) Services() *services.Services {
	return app.services
}

func (app *App) Repositories() *repomanager.FileRepositoryManager {
	return app.repos
}

func (app *App) Logger() logging.Logger {
	return app.logger
}

// SystemContext carries the built-in super_admin principal used by
// maintenance jobs and the admin CLI.
func SystemContext(ctx context.Context) context.Context {
	return auth.WithPrincipal(ctx, auth.Principal{Username: common.SystemPrincipal, Role: auth.RoleSuperAdmin})
}

// Bootstrap creates the user file with the default accounts when missing
// and reports file health.
func (app *App) Bootstrap(ctx context.Context) error {
	if _, err := app.repos.Users().All(ctx); err != nil {
		return fmt.Errorf("user store: %w", err)
	}
	if _, err := app.repos.Tasks().List(ctx); err != nil {
		return fmt.Errorf("task store: %w", err)
	}
	h := app.repos.Health(ctx)
	app.logger.Info(ctx, "store health", "status", h.Status, "files", h.Files)
	return nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) runScheduler(ctx context.Context) {
	if app.scheduler == nil {
		app.logger.Info(ctx, "periodic backups disabled")
		<-ctx.Done()
		return
	}
	app.scheduler.Start()
	app.logger.Info(ctx, "periodic backups enabled", "schedule", app.config.BackupSchedule, "next", app.scheduler.Next())
	<-ctx.Done()
	app.scheduler.Stop()
}

// Run blocks until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "data_dir", app.config.DataDir)
	app.initSignalHandler(cancelFunc)

	if err := app.Bootstrap(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		return
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		app.runScheduler(ctx)
	}()
	wg.Wait()

	app.logger.Info(context.Background(), "Stopped")
}

func (app *App) Close() error {
	return app.security.Close()
}
