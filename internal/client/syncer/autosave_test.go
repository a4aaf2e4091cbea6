package syncer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/haierkeys/offline-note-sync-service/internal/dto"
)

func TestAutoSaverFlushWritesLastDraft(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	created, err := f.syncer.CreateNote(ctx, &dto.NoteCreateRequest{Title: "n"})
	require.NoError(t, err)

	saver := NewAutoSaver(f.syncer, time.Hour, zap.NewNop())
	defer saver.Close()

	first := "first"
	second := "second"
	saver.Queue(created.Value.ID, &dto.NoteUpdateRequest{Title: &first})
	saver.Queue(created.Value.ID, &dto.NoteUpdateRequest{Title: &second})
	assert.Equal(t, 1, saver.Pending())

	saver.Flush(ctx)
	assert.Equal(t, 0, saver.Pending())

	// last queued draft wins
	got, err := f.remote.GetNote(ctx, created.Value.ID)
	require.NoError(t, err)
	assert.Equal(t, "second", got.Title)
}

func TestAutoSaverOfflineSaveDegradesToCache(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	created, err := f.syncer.CreateNote(ctx, &dto.NoteCreateRequest{Title: "n"})
	require.NoError(t, err)

	f.policy.SetOnline(false)

	saver := NewAutoSaver(f.syncer, time.Hour, zap.NewNop())
	defer saver.Close()

	content := "offline edit"
	saver.Queue(created.Value.ID, &dto.NoteUpdateRequest{Content: &content})
	saver.Flush(ctx)

	cached, err := f.local.GetNote(ctx, created.Value.ID)
	require.NoError(t, err)
	assert.Equal(t, "offline edit", cached.Content)
}

func TestAutoSaverPeriodicFlush(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	created, err := f.syncer.CreateNote(ctx, &dto.NoteCreateRequest{Title: "n"})
	require.NoError(t, err)

	saver := NewAutoSaver(f.syncer, 50*time.Millisecond, zap.NewNop())
	defer saver.Close()

	title := "ticked"
	saver.Queue(created.Value.ID, &dto.NoteUpdateRequest{Title: &title})

	require.Eventually(t, func() bool {
		return saver.Pending() == 0
	}, 2*time.Second, 20*time.Millisecond)

	got, err := f.remote.GetNote(ctx, created.Value.ID)
	require.NoError(t, err)
	assert.Equal(t, "ticked", got.Title)
}

func TestAutoSaverRejectedDraftDropped(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	saver := NewAutoSaver(f.syncer, time.Hour, zap.NewNop())
	defer saver.Close()

	// no such note anywhere; the draft is dropped instead of retried forever
	title := "ghost"
	saver.Queue(404, &dto.NoteUpdateRequest{Title: &title})
	saver.Flush(ctx)
	assert.Equal(t, 0, saver.Pending())
}
