// Package local_fs stores blobs on the local filesystem. Used for tests and
// single-machine deployments.
package local_fs

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

type Config struct {
	IsEnabled  bool   `yaml:"is-enable"`
	SavePath   string `yaml:"save-path"`
	CustomPath string `yaml:"custom-path"`
}

type LocalFS struct {
	Config *Config
}

func NewClient(conf *Config) (*LocalFS, error) {
	if conf.SavePath == "" {
		conf.SavePath = "storage/backup"
	}
	if err := os.MkdirAll(conf.SavePath, 0754); err != nil {
		return nil, errors.Wrap(err, "local_fs")
	}
	return &LocalFS{Config: conf}, nil
}

func (l *LocalFS) fullPath(pathKey string) string {
	if l.Config.CustomPath != "" {
		pathKey = filepath.Join(l.Config.CustomPath, pathKey)
	}
	return filepath.Join(l.Config.SavePath, pathKey)
}

func (l *LocalFS) SendContent(pathKey string, content []byte) (string, error) {
	target := l.fullPath(pathKey)
	if err := os.MkdirAll(filepath.Dir(target), 0754); err != nil {
		return "", errors.Wrap(err, "local_fs")
	}
	if err := os.WriteFile(target, content, 0644); err != nil {
		return "", errors.Wrap(err, "local_fs")
	}
	return pathKey, nil
}

func (l *LocalFS) GetContent(pathKey string) ([]byte, bool, error) {
	content, err := os.ReadFile(l.fullPath(pathKey))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, "local_fs")
	}
	return content, true, nil
}

func (l *LocalFS) Delete(pathKey string) error {
	err := os.Remove(l.fullPath(pathKey))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "local_fs")
	}
	return nil
}
