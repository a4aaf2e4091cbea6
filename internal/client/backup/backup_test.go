package backup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haierkeys/offline-note-sync-service/internal/dto"
	"github.com/haierkeys/offline-note-sync-service/pkg/storage"
	"github.com/haierkeys/offline-note-sync-service/pkg/workerpool"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	store, err := storage.NewClient(&storage.Config{
		Type:     storage.LOCAL,
		SavePath: t.TempDir(),
	})
	require.NoError(t, err)
	pool := workerpool.New(nil, nil)
	t.Cleanup(func() { pool.WaitIdle(time.Second) })
	return New(store, pool, "user-1")
}

func TestBackupPushPullRoundTrip(t *testing.T) {
	client := newTestClient(t)

	notes := []*dto.NoteDTO{{ID: 1, Title: "Trip", Content: "<p>Pack bags</p>"}}
	require.NoError(t, client.PushSnapshotSync(KindNotes, notes))

	var got []*dto.NoteDTO
	ok, err := client.PullSnapshot(KindNotes, &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "Trip", got[0].Title)
}

func TestBackupPullMissingSnapshot(t *testing.T) {
	client := newTestClient(t)

	var got []*dto.TagDTO
	ok, err := client.PullSnapshot(KindTags, &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBackupAsyncPush(t *testing.T) {
	client := newTestClient(t)

	client.PushSnapshot(KindTags, []*dto.TagDTO{{ID: 2, Name: "Home"}})
	require.True(t, client.Flush(2*time.Second))

	var got []*dto.TagDTO
	ok, err := client.PullSnapshot(KindTags, &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Home", got[0].Name)
}
