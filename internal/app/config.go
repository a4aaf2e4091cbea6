package app

import (
	"os"
	"path/filepath"
	"time"

	"github.com/haierkeys/offline-note-sync-service/internal/dao"
	"github.com/haierkeys/offline-note-sync-service/pkg/logger"
	"github.com/haierkeys/offline-note-sync-service/pkg/storage"
	"github.com/haierkeys/offline-note-sync-service/pkg/workerpool"

	"github.com/creasty/defaults"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// AppConfig is the root configuration for both the server and the
// client-side sync stack.
type AppConfig struct {
	File     string         `yaml:"-"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Client   ClientConfig   `yaml:"client"`
	Backup   BackupConfig   `yaml:"backup"`
	Task     TaskConfig     `yaml:"task"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	// RunMode is "release" or "debug".
	RunMode string `yaml:"run-mode" default:"release"`
	// HttpPort is the listen address, e.g. ":9000".
	HttpPort string `yaml:"http-port" default:":9000"`
	// ReadTimeout in seconds.
	ReadTimeout int `yaml:"read-timeout" default:"60"`
	// WriteTimeout in seconds.
	WriteTimeout int `yaml:"write-timeout" default:"60"`
	// ContextTimeout per request, in seconds.
	ContextTimeout int `yaml:"context-timeout" default:"60"`
}

// LogConfig holds the zap logger settings.
type LogConfig struct {
	// Level is a zapcore level name, see zapcore.ParseLevel.
	Level string `yaml:"level" default:"warn"`
	// File is the log file path; empty logs to stderr only.
	File string `yaml:"file"`
	// Production enables JSON output.
	Production bool `yaml:"production" default:"true"`
}

// DatabaseConfig holds the sqlite settings.
type DatabaseConfig struct {
	Type         string `yaml:"type" default:"sqlite"`
	Path         string `yaml:"path" default:"storage/database/db.sqlite3"`
	AutoMigrate  bool   `yaml:"auto-migrate" default:"true"`
	MaxIdleConns int    `yaml:"max-idle-conns" default:"10"`
	MaxOpenConns int    `yaml:"max-open-conns" default:"100"`
}

// ClientConfig holds the settings for the client-side sync stack.
type ClientConfig struct {
	// ServerURL is the base URL of the note server.
	ServerURL string `yaml:"server-url" default:"http://127.0.0.1:9000"`
	// Token is the bearer token sent with every request; empty sends none.
	Token string `yaml:"token"`
	// CachePath is the local cache sqlite path.
	CachePath string `yaml:"cache-path" default:"storage/client/cache.sqlite3"`
	// ProbeInterval controls how often connectivity is probed, e.g. "30s".
	ProbeInterval string `yaml:"probe-interval" default:"30s"`
	// AutosaveInterval controls the draft flush cadence, e.g. "5s".
	AutosaveInterval string `yaml:"autosave-interval" default:"5s"`
	// RequestTimeout bounds a single request to the server, e.g. "15s".
	RequestTimeout string `yaml:"request-timeout" default:"15s"`
}

// BackupConfig holds the cloud snapshot mirror settings.
type BackupConfig struct {
	// IsEnabled turns the mirror on; disabled clients never touch the
	// blob store.
	IsEnabled bool `yaml:"is-enable" default:"false"`
	// Namespace prefixes every snapshot key.
	Namespace string `yaml:"namespace" default:"note-sync"`
	// UserID scopes snapshot keys per user.
	UserID string `yaml:"user-id" default:"default"`
	// Storage selects and configures the blob provider.
	Storage storage.Config `yaml:"storage"`

	// Worker pool sizing for async pushes.
	PoolMaxWorkers int `yaml:"pool-max-workers" default:"4"`
	PoolQueueSize  int `yaml:"pool-queue-size" default:"64"`
}

// TaskConfig holds the background task settings.
type TaskConfig struct {
	// TrashRetentionDays is how long soft-deleted notes are kept before
	// being purged. Zero disables the purge entirely.
	TrashRetentionDays int `yaml:"trash-retention-days" default:"0"`
}

// LoadConfig reads the YAML file at f, applying struct defaults for any
// field the file leaves unset. It returns the config and the resolved
// absolute path.
func LoadConfig(f string) (*AppConfig, string, error) {
	realpath, err := filepath.Abs(f)
	if err != nil {
		return nil, "", err
	}
	realpath = filepath.Clean(realpath)

	c := new(AppConfig)
	c.File = realpath

	if err := defaults.Set(c); err != nil {
		return nil, realpath, errors.Wrap(err, "set default config failed")
	}

	file, err := os.ReadFile(realpath)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "read config file failed")
	}

	if err := yaml.Unmarshal(file, c); err != nil {
		return nil, realpath, errors.Wrap(err, "parse config file failed")
	}

	// second pass fills fields the YAML mentions but leaves empty
	if err := defaults.Set(c); err != nil {
		return nil, realpath, errors.Wrap(err, "re-set default config failed")
	}

	return c, realpath, nil
}

// Save writes the config back to its file.
func (c *AppConfig) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config failed")
	}
	if err := os.WriteFile(c.File, data, 0644); err != nil {
		return errors.Wrap(err, "write config file failed")
	}
	return nil
}

// DaoConfig maps the YAML database section onto the dao engine config.
func (c *AppConfig) DaoConfig() dao.DatabaseConfig {
	return dao.DatabaseConfig{
		Type:         c.Database.Type,
		Path:         c.Database.Path,
		AutoMigrate:  c.Database.AutoMigrate,
		MaxIdleConns: c.Database.MaxIdleConns,
		MaxOpenConns: c.Database.MaxOpenConns,
		RunMode:      c.Server.RunMode,
	}
}

// LoggerConfig maps the YAML log section onto the logger config.
func (c *AppConfig) LoggerConfig() logger.Config {
	return logger.Config{
		Level:      c.Log.Level,
		File:       c.Log.File,
		Production: c.Log.Production,
	}
}

// BackupPoolConfig sizes the worker pool behind async snapshot pushes.
func (c *AppConfig) BackupPoolConfig() workerpool.Config {
	cfg := workerpool.DefaultConfig()
	if c.Backup.PoolMaxWorkers > 0 {
		cfg.MaxWorkers = c.Backup.PoolMaxWorkers
	}
	if c.Backup.PoolQueueSize > 0 {
		cfg.QueueSize = c.Backup.PoolQueueSize
	}
	return cfg
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// GetProbeInterval returns the parsed connectivity probe interval.
func (c *ClientConfig) GetProbeInterval() time.Duration {
	return parseDurationOr(c.ProbeInterval, 30*time.Second)
}

// GetAutosaveInterval returns the parsed draft flush interval.
func (c *ClientConfig) GetAutosaveInterval() time.Duration {
	return parseDurationOr(c.AutosaveInterval, 5*time.Second)
}

// GetRequestTimeout returns the parsed per-request timeout.
func (c *ClientConfig) GetRequestTimeout() time.Duration {
	return parseDurationOr(c.RequestTimeout, 15*time.Second)
}
