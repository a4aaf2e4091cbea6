// Package dao implements the data access layer over gorm.
package dao

import (
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/haierkeys/offline-note-sync-service/internal/model"
)

// DatabaseConfig mirrors the database section of the app config.
type DatabaseConfig struct {
	Type         string
	Path         string
	AutoMigrate  bool
	MaxIdleConns int
	MaxOpenConns int
	RunMode      string
}

// Dao bundles the database handle for the repositories. An explicit Dao is
// constructed per server instance; there is no package-level singleton, so
// tests get isolated stores.
type Dao struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Option configures a Dao.
type Option func(*Dao)

func WithLogger(lg *zap.Logger) Option {
	return func(d *Dao) {
		d.logger = lg
	}
}

func New(db *gorm.DB, opts ...Option) *Dao {
	d := &Dao{db: db, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dao) DB() *gorm.DB {
	return d.db
}

// NewDBEngine opens the sqlite database and runs migrations. Path ":memory:"
// keeps the store in memory, which the tests rely on for isolation.
func NewDBEngine(c DatabaseConfig) (*gorm.DB, error) {
	if c.Path != ":memory:" {
		if dir := filepath.Dir(c.Path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0754); err != nil {
				return nil, err
			}
		}
	}

	logMode := logger.Default.LogMode(logger.Silent)
	if c.RunMode == "debug" {
		logMode = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(sqlite.Open(c.Path), &gorm.Config{
		Logger: logMode,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if c.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(c.MaxIdleConns)
	}
	if c.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	}
	sqlDB.SetConnMaxLifetime(time.Minute * 10)

	if c.AutoMigrate {
		if err := model.AutoMigrate(db); err != nil {
			return nil, err
		}
	}

	return db, nil
}
