package syncer

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/haierkeys/offline-note-sync-service/internal/dto"
)

// AutoSaver batches editor keystrokes into periodic note updates. The UI
// queues the latest draft per note; each tick flushes the drafts through
// the orchestrator, so an unreachable server degrades the save instead of
// losing it. Last queued draft wins.
type AutoSaver struct {
	syncer   *Syncer
	interval time.Duration
	logger   *zap.Logger

	mu     sync.Mutex
	drafts map[int64]*dto.NoteUpdateRequest

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewAutoSaver starts the flush loop.
func NewAutoSaver(s *Syncer, interval time.Duration, logger *zap.Logger) *AutoSaver {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &AutoSaver{
		syncer:   s,
		interval: interval,
		logger:   logger,
		drafts:   make(map[int64]*dto.NoteUpdateRequest),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go a.loop()
	return a
}

// Queue records the latest draft for a note, replacing any pending one.
func (a *AutoSaver) Queue(noteID int64, draft *dto.NoteUpdateRequest) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.drafts[noteID] = draft
}

// Pending reports how many notes have unsaved drafts.
func (a *AutoSaver) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.drafts)
}

// Flush saves all pending drafts now. A draft that fails with a rejection
// is dropped (retrying it would fail again); a degraded save counts as
// saved since the cache holds it.
func (a *AutoSaver) Flush(ctx context.Context) {
	a.mu.Lock()
	drafts := a.drafts
	a.drafts = make(map[int64]*dto.NoteUpdateRequest)
	a.mu.Unlock()

	for noteID, draft := range drafts {
		result, err := a.syncer.UpdateNote(ctx, noteID, draft)
		if err != nil {
			a.logger.Warn("autosave: draft rejected",
				zap.Int64("note-id", noteID),
				zap.Error(err),
			)
			continue
		}
		if !result.IsLive() {
			a.logger.Info("autosave: draft saved offline",
				zap.Int64("note-id", noteID),
			)
		}
	}
}

// Close flushes once more and stops the loop.
func (a *AutoSaver) Close() {
	a.stopOnce.Do(func() {
		close(a.stop)
	})
	<-a.done
}

func (a *AutoSaver) loop() {
	defer close(a.done)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	for {
		select {
		case <-a.stop:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			a.Flush(ctx)
			cancel()
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), a.interval)
			a.Flush(ctx)
			cancel()
		}
	}
}
