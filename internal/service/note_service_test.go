package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haierkeys/offline-note-sync-service/internal/dao"
	"github.com/haierkeys/offline-note-sync-service/internal/dto"
	"github.com/haierkeys/offline-note-sync-service/pkg/code"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := dao.NewDBEngine(dao.DatabaseConfig{
		Type:        "sqlite",
		Path:        ":memory:",
		AutoMigrate: true,
	})
	require.NoError(t, err)
	d := dao.New(db)
	return New(dao.NewNoteRepository(d), dao.NewTagRepository(d))
}

func TestNoteCreateDefaultTitle(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	note, err := svc.NoteCreate(ctx, &dto.NoteCreateRequest{Content: "<p>hi</p>"})
	require.NoError(t, err)
	assert.Equal(t, "Untitled", note.Title)
}

func TestNoteCreateWithTags(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tag, err := svc.TagCreate(ctx, &dto.TagCreateRequest{Name: "work"})
	require.NoError(t, err)

	note, err := svc.NoteCreate(ctx, &dto.NoteCreateRequest{
		Title:  "n",
		TagIDs: []int64{tag.ID},
	})
	require.NoError(t, err)
	require.Len(t, note.Tags, 1)
	assert.Equal(t, "work", note.Tags[0].Name)

	_, err = svc.NoteCreate(ctx, &dto.NoteCreateRequest{TagIDs: []int64{9999}})
	require.Error(t, err)
	cerr, ok := err.(*code.Code)
	require.True(t, ok)
	assert.Equal(t, code.ErrorTagNotFound.Code(), cerr.Code())
}

func TestNoteGetNotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.NoteGet(context.Background(), 404)
	require.Error(t, err)
	cerr, ok := err.(*code.Code)
	require.True(t, ok)
	assert.Equal(t, code.ErrorNoteNotFound.Code(), cerr.Code())
}

func TestNoteUpdateReconcilesTags(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	work, err := svc.TagCreate(ctx, &dto.TagCreateRequest{Name: "work"})
	require.NoError(t, err)
	home, err := svc.TagCreate(ctx, &dto.TagCreateRequest{Name: "home"})
	require.NoError(t, err)

	note, err := svc.NoteCreate(ctx, &dto.NoteCreateRequest{
		Title:  "n",
		TagIDs: []int64{work.ID},
	})
	require.NoError(t, err)

	desired := []int64{home.ID}
	updated, err := svc.NoteUpdate(ctx, note.ID, &dto.NoteUpdateRequest{TagIDs: &desired})
	require.NoError(t, err)
	require.Len(t, updated.Tags, 1)
	assert.Equal(t, home.ID, updated.Tags[0].ID)
}

func TestNoteUpdatePartial(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	note, err := svc.NoteCreate(ctx, &dto.NoteCreateRequest{Title: "keep", Content: "old"})
	require.NoError(t, err)

	content := "new"
	updated, err := svc.NoteUpdate(ctx, note.ID, &dto.NoteUpdateRequest{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, "keep", updated.Title)
	assert.Equal(t, "new", updated.Content)
}

func TestNoteSoftDeleteThenRestore(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	note, err := svc.NoteCreate(ctx, &dto.NoteCreateRequest{Title: "t", Content: "c"})
	require.NoError(t, err)
	before := note.UpdatedAt

	time.Sleep(1100 * time.Millisecond)

	deleted, err := svc.NoteSoftDelete(ctx, note.ID)
	require.NoError(t, err)
	assert.True(t, deleted.IsDeleted)

	restored, err := svc.NoteRestore(ctx, note.ID)
	require.NoError(t, err)
	assert.False(t, restored.IsDeleted)
	assert.Equal(t, note.Title, restored.Title)
	assert.Equal(t, note.Content, restored.Content)
	assert.Equal(t, note.IsFavorite, restored.IsFavorite)
	assert.True(t, restored.UpdatedAt.After(before))

	// trashed notes leave the default listing
	_, err = svc.NoteSoftDelete(ctx, note.ID)
	require.NoError(t, err)
	list, err := svc.NoteList(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, list)
	all, err := svc.NoteList(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestNoteToggleFavorite(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	note, err := svc.NoteCreate(ctx, &dto.NoteCreateRequest{Title: "t"})
	require.NoError(t, err)

	on, err := svc.NoteToggleFavorite(ctx, note.ID)
	require.NoError(t, err)
	assert.True(t, on.IsFavorite)

	off, err := svc.NoteToggleFavorite(ctx, note.ID)
	require.NoError(t, err)
	assert.False(t, off.IsFavorite)
}

func TestNoteAttachDetachTag(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	work, err := svc.TagCreate(ctx, &dto.TagCreateRequest{Name: "Work"})
	require.NoError(t, err)
	home, err := svc.TagCreate(ctx, &dto.TagCreateRequest{Name: "Home"})
	require.NoError(t, err)
	note, err := svc.NoteCreate(ctx, &dto.NoteCreateRequest{Title: "n"})
	require.NoError(t, err)

	require.NoError(t, svc.NoteAttachTag(ctx, note.ID, work.ID))
	require.NoError(t, svc.NoteAttachTag(ctx, note.ID, work.ID))
	require.NoError(t, svc.NoteAttachTag(ctx, note.ID, home.ID))

	got, err := svc.NoteGet(ctx, note.ID)
	require.NoError(t, err)
	require.Len(t, got.Tags, 2)

	require.NoError(t, svc.NoteDetachTag(ctx, note.ID, work.ID))
	got, err = svc.NoteGet(ctx, note.ID)
	require.NoError(t, err)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "Home", got.Tags[0].Name)
}

func TestNoteExportScenario(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	note, err := svc.NoteCreate(ctx, &dto.NoteCreateRequest{
		Title:   "Trip",
		Content: "<p>Pack bags</p>",
	})
	require.NoError(t, err)

	doc, err := svc.NoteExport(ctx, note.ID, "markdown")
	require.NoError(t, err)
	assert.Equal(t, "# Trip\n\nPack bags", string(doc.Body))

	_, err = svc.NoteExport(ctx, note.ID, "docx")
	require.Error(t, err)
}

func TestNotePurgeTrashedBefore(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	note, err := svc.NoteCreate(ctx, &dto.NoteCreateRequest{Title: "old"})
	require.NoError(t, err)
	_, err = svc.NoteSoftDelete(ctx, note.ID)
	require.NoError(t, err)

	// retention disabled
	purged, err := svc.NotePurgeTrashedBefore(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, purged)

	old := timeNow
	timeNow = func() time.Time { return time.Now().AddDate(0, 0, 60) }
	defer func() { timeNow = old }()

	purged, err = svc.NotePurgeTrashedBefore(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}
