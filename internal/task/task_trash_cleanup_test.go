package task

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/haierkeys/offline-note-sync-service/internal/dao"
	"github.com/haierkeys/offline-note-sync-service/internal/dto"
	"github.com/haierkeys/offline-note-sync-service/internal/service"
	"github.com/haierkeys/offline-note-sync-service/pkg/safe_close"
)

func newTestService(t *testing.T) *service.Service {
	t.Helper()
	db, err := dao.NewDBEngine(dao.DatabaseConfig{
		Type:        "sqlite",
		Path:        ":memory:",
		AutoMigrate: true,
	})
	require.NoError(t, err)
	d := dao.New(db)
	return service.New(dao.NewNoteRepository(d), dao.NewTagRepository(d))
}

func TestNewTrashCleanupTaskDisabledByDefault(t *testing.T) {
	svc := newTestService(t)
	assert.Nil(t, NewTrashCleanupTask(svc, 0, zap.NewNop()))
	assert.Nil(t, NewTrashCleanupTask(svc, -3, zap.NewNop()))
	assert.NotNil(t, NewTrashCleanupTask(svc, 30, zap.NewNop()))
}

func TestTrashCleanupTaskKeepsRecentTrash(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.NoteCreate(ctx, &dto.NoteCreateRequest{Title: "recent"})
	require.NoError(t, err)
	_, err = svc.NoteSoftDelete(ctx, created.ID)
	require.NoError(t, err)

	cleanup := NewTrashCleanupTask(svc, 30, zap.NewNop())
	require.NoError(t, cleanup.Run(ctx))

	listed, err := svc.NoteList(ctx, true)
	require.NoError(t, err)
	assert.Len(t, listed, 1, "trash inside the retention window stays")
}

func TestSchedulerIgnoresNilTask(t *testing.T) {
	sc := safe_close.NewSafeClose()
	s := NewScheduler(zap.NewNop(), sc)
	s.AddTask(nil)
	s.Start()

	sc.SendCloseSignal(nil)
	require.NoError(t, sc.WaitClosed())
}

type countingTask struct {
	runs chan struct{}
}

func (c *countingTask) Name() string                { return "countingTask" }
func (c *countingTask) LoopInterval() time.Duration { return 20 * time.Millisecond }
func (c *countingTask) IsStartupRun() bool          { return true }
func (c *countingTask) Run(ctx context.Context) error {
	select {
	case c.runs <- struct{}{}:
	default:
	}
	return nil
}

func TestSchedulerRunsAndStops(t *testing.T) {
	sc := safe_close.NewSafeClose()
	s := NewScheduler(zap.NewNop(), sc)

	ct := &countingTask{runs: make(chan struct{}, 8)}
	s.AddTask(ct)
	s.Start()

	select {
	case <-ct.runs:
	case <-time.After(2 * time.Second):
		t.Fatal("task never ran")
	}

	sc.SendCloseSignal(nil)
	require.NoError(t, sc.WaitClosed())
}
