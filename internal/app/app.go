// Package app provides the application containers that wire configuration,
// storage, services, and transports together for the server and the client.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/haierkeys/offline-note-sync-service/internal/dao"
	"github.com/haierkeys/offline-note-sync-service/internal/domain"
	"github.com/haierkeys/offline-note-sync-service/internal/routers"
	"github.com/haierkeys/offline-note-sync-service/internal/service"
	"github.com/haierkeys/offline-note-sync-service/internal/task"
	"github.com/haierkeys/offline-note-sync-service/pkg/safe_close"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App is the server-side container. It owns the database handle, the
// repositories, the service layer, the HTTP server, and the background
// task scheduler, all tied to one SafeClose lifecycle.
type App struct {
	config *AppConfig
	logger *zap.Logger
	db     *gorm.DB
	dao    *dao.Dao

	NoteRepo domain.NoteRepository
	TagRepo  domain.TagRepository
	Service  *service.Service

	httpServer *http.Server
	scheduler  *task.Scheduler
	sc         *safe_close.SafeClose
}

// NewApp builds the server container from configuration.
func NewApp(cfg *AppConfig, logger *zap.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("configuration is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	db, err := dao.NewDBEngine(cfg.DaoConfig())
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	a := &App{
		config: cfg,
		logger: logger,
		db:     db,
		sc:     safe_close.NewSafeClose(),
	}

	a.dao = dao.New(db, dao.WithLogger(logger))
	a.NoteRepo = dao.NewNoteRepository(a.dao)
	a.TagRepo = dao.NewTagRepository(a.dao)
	a.Service = service.New(a.NoteRepo, a.TagRepo, service.WithLogger(logger))

	engine := routers.NewRouter(routers.Config{
		RunMode:        cfg.Server.RunMode,
		ContextTimeout: time.Duration(cfg.Server.ContextTimeout) * time.Second,
		AppName:        Name,
		AppVersion:     Version,
	}, a.Service, logger)

	a.httpServer = &http.Server{
		Addr:           cfg.Server.HttpPort,
		Handler:        engine,
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	a.scheduler = task.NewScheduler(logger, a.sc)
	a.scheduler.AddTask(task.NewTrashCleanupTask(a.Service, cfg.Task.TrashRetentionDays, logger))

	return a, nil
}

// Start launches the HTTP server and the background tasks. It returns
// immediately; use WaitClosed to block until shutdown completes.
func (a *App) Start() {
	a.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()

		errCh := make(chan error, 1)
		go func() {
			errCh <- a.httpServer.ListenAndServe()
		}()
		a.logger.Info("http server listening", zap.String("addr", a.httpServer.Addr))

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.sc.SendCloseSignal(err)
			}
		case <-closeSignal:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := a.httpServer.Shutdown(ctx); err != nil {
				a.logger.Error("http server shutdown", zap.Error(err))
			}
		}
	})

	a.scheduler.Start()
}

// Shutdown broadcasts the close signal.
func (a *App) Shutdown(err error) {
	a.sc.SendCloseSignal(err)
}

// WaitClosed blocks until every attached component has stopped, then
// releases the database handle.
func (a *App) WaitClosed() error {
	err := a.sc.WaitClosed()

	if sqlDB, dbErr := a.db.DB(); dbErr == nil {
		if closeErr := sqlDB.Close(); closeErr != nil {
			a.logger.Error("close database", zap.Error(closeErr))
		}
	}

	return err
}

// Config returns the loaded configuration.
func (a *App) Config() *AppConfig {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}
