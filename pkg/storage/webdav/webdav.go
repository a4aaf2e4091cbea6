// Package webdav stores blobs on a WebDAV server.
package webdav

import (
	"os"
	"path"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/studio-b12/gowebdav"
)

type Config struct {
	IsEnabled  bool   `yaml:"is-enable"`
	Endpoint   string `yaml:"endpoint"`
	Path       string `yaml:"path"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	CustomPath string `yaml:"custom-path"`
}

type WebDAV struct {
	Client *gowebdav.Client
	Config *Config
}

var clients = make(map[string]*WebDAV)

func NewClient(conf *Config) (*WebDAV, error) {
	cacheKey := conf.Endpoint + conf.Path + conf.User + conf.CustomPath
	if clients[cacheKey] != nil {
		return clients[cacheKey], nil
	}

	c := gowebdav.NewClient(conf.Endpoint, conf.User, conf.Password)
	if err := c.Connect(); err != nil {
		return nil, pkgerrors.Wrap(err, "webdav")
	}

	clients[cacheKey] = &WebDAV{
		Client: c,
		Config: conf,
	}
	return clients[cacheKey], nil
}

func (w *WebDAV) key(pathKey string) string {
	prefix := strings.TrimSuffix(w.Config.Path, "/")
	if w.Config.CustomPath != "" {
		prefix = prefix + "/" + strings.Trim(w.Config.CustomPath, "/")
	}
	return prefix + "/" + pathKey
}

func (w *WebDAV) SendContent(pathKey string, content []byte) (string, error) {
	fileKey := w.key(pathKey)

	if err := w.Client.MkdirAll(path.Dir(fileKey), 0644); err != nil {
		return "", pkgerrors.Wrap(err, "webdav")
	}
	if err := w.Client.Write(fileKey, content, os.ModePerm); err != nil {
		return "", pkgerrors.Wrap(err, "webdav")
	}
	return pathKey, nil
}

func (w *WebDAV) GetContent(pathKey string) ([]byte, bool, error) {
	content, err := w.Client.Read(w.key(pathKey))
	if err != nil {
		if gowebdav.IsErrNotFound(err) {
			return nil, false, nil
		}
		return nil, false, pkgerrors.Wrap(err, "webdav")
	}
	return content, true, nil
}

func (w *WebDAV) Delete(pathKey string) error {
	err := w.Client.Remove(w.key(pathKey))
	if err != nil && !gowebdav.IsErrNotFound(err) {
		return pkgerrors.Wrap(err, "webdav")
	}
	return nil
}
