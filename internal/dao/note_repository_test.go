package dao

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/haierkeys/offline-note-sync-service/internal/domain"
)

func newTestDao(t *testing.T) *Dao {
	t.Helper()
	db, err := NewDBEngine(DatabaseConfig{
		Type:        "sqlite",
		Path:        ":memory:",
		AutoMigrate: true,
	})
	require.NoError(t, err)
	return New(db)
}

func TestNoteRepositoryCreateAndGet(t *testing.T) {
	repo := NewNoteRepository(newTestDao(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.Note{
		Cid:     "cid-1",
		Title:   "Trip",
		Content: "<h1>Trip</h1><p>Pack bags</p>",
	})
	require.NoError(t, err)
	assert.Greater(t, created.ID, int64(0))
	assert.Equal(t, "cid-1", created.Cid)
	assert.False(t, created.CreatedAt.IsZero())
	assert.False(t, created.UpdatedAt.IsZero())

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Trip", got.Title)
	assert.Equal(t, "<h1>Trip</h1><p>Pack bags</p>", got.Content)

	_, err = repo.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestNoteRepositoryUpdate(t *testing.T) {
	repo := NewNoteRepository(newTestDao(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.Note{Title: "a", Content: "b"})
	require.NoError(t, err)

	created.Title = "renamed"
	created.IsFavorite = true
	updated, err := repo.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.True(t, updated.IsFavorite)

	missing := *created
	missing.ID = 9999
	_, err = repo.Update(ctx, &missing)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestNoteRepositoryListExcludesDeleted(t *testing.T) {
	repo := NewNoteRepository(newTestDao(t))
	ctx := context.Background()

	kept, err := repo.Create(ctx, &domain.Note{Title: "kept"})
	require.NoError(t, err)
	trashed, err := repo.Create(ctx, &domain.Note{Title: "trashed"})
	require.NoError(t, err)

	trashed.IsDeleted = true
	_, err = repo.Update(ctx, trashed)
	require.NoError(t, err)

	list, err := repo.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, kept.ID, list[0].ID)

	all, err := repo.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestNoteRepositorySearch(t *testing.T) {
	repo := NewNoteRepository(newTestDao(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, &domain.Note{Title: "Groceries", Content: "milk, eggs"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domain.Note{Title: "Trip", Content: "Pack MILK bottles"})
	require.NoError(t, err)
	gone, err := repo.Create(ctx, &domain.Note{Title: "milk archive"})
	require.NoError(t, err)
	gone.IsDeleted = true
	_, err = repo.Update(ctx, gone)
	require.NoError(t, err)

	hits, err := repo.Search(ctx, "MiLk")
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	blank, err := repo.Search(ctx, "   ")
	require.NoError(t, err)
	assert.Len(t, blank, 2)
}

func TestNoteRepositorySearchMatchesTagNames(t *testing.T) {
	d := newTestDao(t)
	notes := NewNoteRepository(d)
	tags := NewTagRepository(d)
	ctx := context.Background()

	note, err := notes.Create(ctx, &domain.Note{Title: "standup", Content: "notes"})
	require.NoError(t, err)
	_, err = notes.Create(ctx, &domain.Note{Title: "unrelated"})
	require.NoError(t, err)
	tag, err := tags.Create(ctx, &domain.Tag{Name: "Meeting"})
	require.NoError(t, err)
	require.NoError(t, notes.AddRelation(ctx, note.ID, tag.ID))

	hits, err := notes.Search(ctx, "meeting")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, note.ID, hits[0].ID)
}

func TestNoteRepositoryRelations(t *testing.T) {
	d := newTestDao(t)
	notes := NewNoteRepository(d)
	tags := NewTagRepository(d)
	ctx := context.Background()

	note, err := notes.Create(ctx, &domain.Note{Title: "n"})
	require.NoError(t, err)
	tag, err := tags.Create(ctx, &domain.Tag{Name: "work", Color: "#ff0000"})
	require.NoError(t, err)

	require.NoError(t, notes.AddRelation(ctx, note.ID, tag.ID))
	// attaching twice is a no-op
	require.NoError(t, notes.AddRelation(ctx, note.ID, tag.ID))

	ids, err := notes.TagIDsForNote(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{tag.ID}, ids)

	withTags, err := notes.GetWithTags(ctx, note.ID)
	require.NoError(t, err)
	require.Len(t, withTags.Tags, 1)
	assert.Equal(t, "work", withTags.Tags[0].Name)

	require.NoError(t, notes.RemoveRelation(ctx, note.ID, tag.ID))
	require.NoError(t, notes.RemoveRelation(ctx, note.ID, tag.ID))

	ids, err = notes.TagIDsForNote(ctx, note.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestNoteRepositoryPurgeDeletedBefore(t *testing.T) {
	d := newTestDao(t)
	notes := NewNoteRepository(d)
	tags := NewTagRepository(d)
	ctx := context.Background()

	old, err := notes.Create(ctx, &domain.Note{Title: "old trash"})
	require.NoError(t, err)
	tag, err := tags.Create(ctx, &domain.Tag{Name: "t"})
	require.NoError(t, err)
	require.NoError(t, notes.AddRelation(ctx, old.ID, tag.ID))

	old.IsDeleted = true
	_, err = notes.Update(ctx, old)
	require.NoError(t, err)

	fresh, err := notes.Create(ctx, &domain.Note{Title: "fresh trash"})
	require.NoError(t, err)
	fresh.IsDeleted = true
	_, err = notes.Update(ctx, fresh)
	require.NoError(t, err)

	// cutoff in the past purges nothing
	purged, err := notes.PurgeDeletedBefore(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, purged)

	purged, err = notes.PurgeDeletedBefore(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), purged)

	_, err = notes.GetByID(ctx, old.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	ids, err := notes.TagIDsForNote(ctx, old.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
