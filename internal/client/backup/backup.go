// Package backup mirrors local snapshots into a cloud blob store. Pushes
// are best-effort: failures are logged and swallowed, never surfaced to the
// operation that triggered them.
package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/haierkeys/offline-note-sync-service/pkg/storage"
	"github.com/haierkeys/offline-note-sync-service/pkg/workerpool"
)

const (
	// KindNotes and KindTags name the two snapshot blobs.
	KindNotes = "notes"
	KindTags  = "tags"

	defaultNamespace = "note-sync"
)

// Client pushes and pulls JSON snapshots addressed as
// {namespace}/{userId}/{kind}.json under the configured provider.
type Client struct {
	store     storage.Storager
	pool      *workerpool.Pool
	logger    *zap.Logger
	namespace string
	userID    string
}

type Option func(*Client)

func WithLogger(lg *zap.Logger) Option {
	return func(c *Client) {
		c.logger = lg
	}
}

func WithNamespace(ns string) Option {
	return func(c *Client) {
		c.namespace = ns
	}
}

// New builds the client. pool may be shared with other background work.
func New(store storage.Storager, pool *workerpool.Pool, userID string, opts ...Option) *Client {
	c := &Client{
		store:     store,
		pool:      pool,
		logger:    zap.NewNop(),
		namespace: defaultNamespace,
		userID:    userID,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) key(kind string) string {
	return fmt.Sprintf("%s/%s/%s.json", c.namespace, c.userID, kind)
}

// PushSnapshot queues an asynchronous upload of the snapshot. It never
// returns an error: a full queue or a failed upload costs a log line, not
// the primary operation.
func (c *Client) PushSnapshot(kind string, snapshot interface{}) {
	payload, err := sonic.Marshal(snapshot)
	if err != nil {
		c.logger.Warn("backup: snapshot marshal failed",
			zap.String("kind", kind),
			zap.Error(err),
		)
		return
	}

	err = c.pool.Submit(context.Background(), func(ctx context.Context) {
		if _, err := c.store.SendContent(c.key(kind), payload); err != nil {
			c.logger.Warn("backup: snapshot push failed",
				zap.String("kind", kind),
				zap.String("key", c.key(kind)),
				zap.Error(err),
			)
			return
		}
		c.logger.Debug("backup: snapshot pushed",
			zap.String("kind", kind),
			zap.Int("bytes", len(payload)),
		)
	})
	if err != nil {
		c.logger.Warn("backup: push not queued",
			zap.String("kind", kind),
			zap.Error(err),
		)
	}
}

// PushSnapshotSync uploads without the pool; the shutdown path uses it for
// a final flush.
func (c *Client) PushSnapshotSync(kind string, snapshot interface{}) error {
	payload, err := sonic.Marshal(snapshot)
	if err != nil {
		return errors.Wrap(err, "backup")
	}
	if _, err := c.store.SendContent(c.key(kind), payload); err != nil {
		return errors.Wrap(err, "backup")
	}
	return nil
}

// PullSnapshot downloads and decodes a snapshot. ok=false means no
// snapshot has been pushed yet.
func (c *Client) PullSnapshot(kind string, out interface{}) (bool, error) {
	payload, ok, err := c.store.GetContent(c.key(kind))
	if err != nil {
		return false, errors.Wrap(err, "backup")
	}
	if !ok || len(payload) == 0 {
		return false, nil
	}
	if err := sonic.Unmarshal(payload, out); err != nil {
		return false, errors.Wrap(err, "backup: corrupt snapshot")
	}
	return true, nil
}

// Flush waits for queued pushes to drain, bounded by timeout.
func (c *Client) Flush(timeout time.Duration) bool {
	return c.pool.WaitIdle(timeout)
}
