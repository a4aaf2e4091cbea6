package app

import (
	"context"
	"time"

	"github.com/haierkeys/offline-note-sync-service/internal/client/backup"
	"github.com/haierkeys/offline-note-sync-service/internal/client/connectivity"
	"github.com/haierkeys/offline-note-sync-service/internal/client/localstore"
	"github.com/haierkeys/offline-note-sync-service/internal/client/remote"
	"github.com/haierkeys/offline-note-sync-service/internal/client/syncer"
	"github.com/haierkeys/offline-note-sync-service/internal/dao"
	"github.com/haierkeys/offline-note-sync-service/pkg/storage"
	"github.com/haierkeys/offline-note-sync-service/pkg/workerpool"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ClientKit is the client-side container: the remote API client, the
// local cache, the connectivity prober, the optional cloud mirror, and
// the syncer on top of them.
type ClientKit struct {
	config *AppConfig
	logger *zap.Logger

	cacheDB *gorm.DB
	policy  *connectivity.ProbePolicy
	pool    *workerpool.Pool

	Remote    *remote.Client
	Local     *localstore.Store
	Backup    *backup.Client
	Syncer    *syncer.Syncer
	AutoSaver *syncer.AutoSaver
}

// NewClientKit builds the client container from configuration.
func NewClientKit(cfg *AppConfig, logger *zap.Logger) (*ClientKit, error) {
	if cfg == nil {
		return nil, errors.New("configuration is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	k := &ClientKit{config: cfg, logger: logger}

	cacheDB, err := dao.NewDBEngine(dao.DatabaseConfig{
		Type: "sqlite",
		Path: cfg.Client.CachePath,
	})
	if err != nil {
		return nil, errors.Wrap(err, "open cache database")
	}
	k.cacheDB = cacheDB

	k.Local, err = localstore.New(cacheDB, localstore.WithLogger(logger))
	if err != nil {
		return nil, errors.Wrap(err, "init local store")
	}

	remoteOpts := []remote.Option{
		remote.WithHTTPClient(remote.NewRateLimitedHTTPClient(cfg.Client.GetRequestTimeout())),
	}
	if cfg.Client.Token != "" {
		remoteOpts = append(remoteOpts, remote.WithToken(cfg.Client.Token))
	}
	k.Remote = remote.New(cfg.Client.ServerURL, remoteOpts...)

	opts := []syncer.Option{syncer.WithLogger(logger)}

	if cfg.Backup.IsEnabled {
		blob, err := storage.NewClient(&cfg.Backup.Storage)
		if err != nil {
			return nil, errors.Wrap(err, "init backup storage")
		}
		poolCfg := cfg.BackupPoolConfig()
		k.pool = workerpool.New(&poolCfg, logger)
		k.Backup = backup.New(blob, k.pool, cfg.Backup.UserID,
			backup.WithNamespace(cfg.Backup.Namespace),
			backup.WithLogger(logger))
		opts = append(opts, syncer.WithBackup(k.Backup))
	}

	k.policy = connectivity.NewProbePolicy(k.Remote, cfg.Client.GetProbeInterval(),
		connectivity.WithProbeLogger(logger))

	k.Syncer = syncer.New(k.Remote, k.Local, k.policy, opts...)
	k.AutoSaver = syncer.NewAutoSaver(k.Syncer, cfg.Client.GetAutosaveInterval(), logger)

	return k, nil
}

// Close stops the autosaver, the syncer, and the connectivity prober,
// then releases the cache database handle.
func (k *ClientKit) Close() error {
	if k.AutoSaver != nil {
		k.AutoSaver.Close()
	}
	if k.Syncer != nil {
		k.Syncer.Close()
	}
	if k.policy != nil {
		k.policy.Close()
	}
	if k.pool != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := k.pool.Shutdown(ctx); err != nil {
			k.logger.Warn("backup pool shutdown", zap.Error(err))
		}
	}

	if k.cacheDB != nil {
		sqlDB, err := k.cacheDB.DB()
		if err != nil {
			return errors.Wrap(err, "get cache sql.DB")
		}
		if err := sqlDB.Close(); err != nil {
			return errors.Wrap(err, "close cache database")
		}
	}
	return nil
}
