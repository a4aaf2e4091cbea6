package task

import (
	"context"
	"time"

	"github.com/haierkeys/offline-note-sync-service/internal/service"
	"go.uber.org/zap"
)

// TrashCleanupTask permanently purges soft-deleted notes older than the
// configured retention window.
type TrashCleanupTask struct {
	svc           *service.Service
	logger        *zap.Logger
	retentionDays int
	interval      time.Duration
	firstRun      bool
}

// NewTrashCleanupTask returns nil when retentionDays is zero or negative,
// which keeps trashed notes forever.
func NewTrashCleanupTask(svc *service.Service, retentionDays int, logger *zap.Logger) Task {
	if retentionDays <= 0 {
		return nil
	}
	return &TrashCleanupTask{
		svc:           svc,
		logger:        logger,
		retentionDays: retentionDays,
		interval:      10 * time.Minute,
		firstRun:      true,
	}
}

func (t *TrashCleanupTask) Name() string {
	return "TrashCleanupTask"
}

func (t *TrashCleanupTask) Run(ctx context.Context) error {
	status := "scheduled"
	if t.firstRun {
		status = "first-run"
		t.firstRun = false
	}

	purged, err := t.svc.NotePurgeTrashedBefore(ctx, t.retentionDays)
	if err != nil {
		t.logger.Error(t.Name()+" failed ["+status+"]", zap.Error(err))
		return err
	}

	t.logger.Info(t.Name()+" completed ["+status+"]", zap.Int64("purged", purged))
	return nil
}

func (t *TrashCleanupTask) LoopInterval() time.Duration {
	return t.interval
}

func (t *TrashCleanupTask) IsStartupRun() bool {
	return true
}
