package localstore

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haierkeys/offline-note-sync-service/internal/dao"
	"github.com/haierkeys/offline-note-sync-service/internal/dto"
	"github.com/haierkeys/offline-note-sync-service/pkg/timex"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := dao.NewDBEngine(dao.DatabaseConfig{
		Type: "sqlite",
		Path: ":memory:",
	})
	require.NoError(t, err)
	store, err := New(db)
	require.NoError(t, err)
	return store
}

func TestStoreEmptyCache(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	notes, err := store.ListNotes(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, notes)

	tags, err := store.ListTags(ctx)
	require.NoError(t, err)
	assert.Empty(t, tags)

	last, err := store.LastSyncedAt(ctx)
	require.NoError(t, err)
	assert.True(t, last.IsZero())
}

func TestStoreCorruptPayloadDegradesToEmpty(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	row := kvRow{Key: nsNotes, Payload: []byte("{{{not json"), UpdatedAt: timex.Now()}
	require.NoError(t, store.db.Create(&row).Error)

	notes, err := store.ListNotes(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestStoreCreateNotePlaceholder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	note, err := store.CreateNote(ctx, &dto.NoteCreateRequest{Content: "<p>x</p>"})
	require.NoError(t, err)
	assert.Negative(t, note.ID)
	assert.NotEmpty(t, note.Cid)
	assert.Equal(t, "Untitled", note.Title)

	got, err := store.GetNote(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, note.ID, got.ID)
}

func TestStorePlaceholderTagsAndRelations(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tag, err := store.CreateTag(ctx, &dto.TagCreateRequest{Name: "Pending"})
	require.NoError(t, err)
	require.Negative(t, tag.ID)
	note, err := store.CreateNote(ctx, &dto.NoteCreateRequest{Title: "draft"})
	require.NoError(t, err)
	require.NoError(t, store.AttachTag(ctx, note.ID, tag.ID))

	// a server-known pair is not a placeholder relation
	require.NoError(t, store.UpsertTag(ctx, &dto.TagDTO{ID: 7, Name: "Server"}))
	require.NoError(t, store.UpsertNote(ctx, &dto.NoteDTO{ID: 5, Title: "synced"}))
	require.NoError(t, store.AttachTag(ctx, 5, 7))

	tags, err := store.PlaceholderTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, tag.ID, tags[0].ID)

	rels, err := store.PlaceholderRelations(ctx)
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, note.ID, rels[0].NoteID)
	assert.Equal(t, tag.ID, rels[0].TagID)
}

func TestStoreUpsertReconcilesPlaceholder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	placeholder, err := store.CreateNote(ctx, &dto.NoteCreateRequest{Title: "Trip"})
	require.NoError(t, err)

	server := &dto.NoteDTO{
		ID:      42,
		Cid:     placeholder.Cid,
		Title:   "Trip",
		Content: "<p>Pack bags</p>",
	}
	require.NoError(t, store.UpsertNote(ctx, server))

	all, err := store.ListNotes(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, int64(42), all[0].ID)

	_, err = store.GetNote(ctx, placeholder.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreUpsertRewritesRelations(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	work := &dto.TagDTO{ID: 1, Name: "Work"}
	home := &dto.TagDTO{ID: 2, Name: "Home"}
	require.NoError(t, store.UpsertNote(ctx, &dto.NoteDTO{
		ID:    10,
		Title: "n",
		Tags:  []*dto.TagDTO{work, home},
	}))

	tags, err := store.GetTagsForNote(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, tags, 2)

	// server now says the note only has Home
	require.NoError(t, store.UpsertNote(ctx, &dto.NoteDTO{
		ID:    10,
		Title: "n",
		Tags:  []*dto.TagDTO{home},
	}))
	tags, err = store.GetTagsForNote(ctx, 10)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "Home", tags[0].Name)
}

func TestStoreUpdateNoteMissing(t *testing.T) {
	store := newTestStore(t)

	title := "x"
	_, err := store.UpdateNote(context.Background(), 999, &dto.NoteUpdateRequest{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreUpdateDoesNotTouchOthers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a, err := store.CreateNote(ctx, &dto.NoteCreateRequest{Title: "a"})
	require.NoError(t, err)
	b, err := store.CreateNote(ctx, &dto.NoteCreateRequest{Title: "b"})
	require.NoError(t, err)

	title := "renamed"
	_, err = store.UpdateNote(ctx, a.ID, &dto.NoteUpdateRequest{Title: &title})
	require.NoError(t, err)

	got, err := store.GetNote(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "b", got.Title)
}

func TestStoreAttachDetachIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertTag(ctx, &dto.TagDTO{ID: 2, Name: "t"}))
	note, err := store.CreateNote(ctx, &dto.NoteCreateRequest{Title: "n"})
	require.NoError(t, err)

	require.NoError(t, store.AttachTag(ctx, note.ID, 2))
	require.NoError(t, store.AttachTag(ctx, note.ID, 2))

	tags, err := store.GetTagsForNote(ctx, note.ID)
	require.NoError(t, err)
	require.Len(t, tags, 1)

	require.NoError(t, store.DetachTag(ctx, note.ID, 2))
	require.NoError(t, store.DetachTag(ctx, note.ID, 2))
	tags, err = store.GetTagsForNote(ctx, note.ID)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

// Adding the same relation any number of times leaves exactly one entry.
func TestStoreRelationAddIdempotentProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	properties.Property("repeated attach keeps one relation", prop.ForAll(
		func(noteID int64, tagID int64, repeats int) bool {
			store := newTestStore(t)
			ctx := context.Background()
			for i := 0; i < repeats; i++ {
				if err := store.AttachTag(ctx, noteID, tagID); err != nil {
					return false
				}
			}
			relations, err := store.loadRelations(ctx)
			if err != nil {
				return false
			}
			count := 0
			for _, rel := range relations {
				if rel.NoteID == noteID && rel.TagID == tagID {
					count++
				}
			}
			return count == 1
		},
		gen.Int64Range(1, 1000),
		gen.Int64Range(1, 1000),
		gen.IntRange(1, 5),
	))

	properties.TestingRun(t)
}

func TestStoreDeleteTagCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertTag(ctx, &dto.TagDTO{ID: 1, Name: "Work"}))
	require.NoError(t, store.UpsertTag(ctx, &dto.TagDTO{ID: 2, Name: "Home"}))
	note, err := store.CreateNote(ctx, &dto.NoteCreateRequest{Title: "n", TagIDs: []int64{1, 2}})
	require.NoError(t, err)

	require.NoError(t, store.DeleteTag(ctx, 1))

	tags, err := store.GetTagsForNote(ctx, note.ID)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "Home", tags[0].Name)

	assert.ErrorIs(t, store.DeleteTag(ctx, 1), ErrNotFound)
}

func TestStoreSearchMatchesTagNames(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertTag(ctx, &dto.TagDTO{ID: 1, Name: "Meeting"}))
	tagged, err := store.CreateNote(ctx, &dto.NoteCreateRequest{Title: "standup", TagIDs: []int64{1}})
	require.NoError(t, err)
	_, err = store.CreateNote(ctx, &dto.NoteCreateRequest{Title: "meeting agenda"})
	require.NoError(t, err)
	_, err = store.CreateNote(ctx, &dto.NoteCreateRequest{Title: "x", Content: "the meeting went long"})
	require.NoError(t, err)
	_, err = store.CreateNote(ctx, &dto.NoteCreateRequest{Title: "unrelated"})
	require.NoError(t, err)

	hits, err := store.SearchNotes(ctx, "MEETING")
	require.NoError(t, err)
	require.Len(t, hits, 3)

	found := false
	for _, hit := range hits {
		if hit.ID == tagged.ID {
			found = true
		}
	}
	assert.True(t, found, "note matched only via tag name must be included")
}

func TestStoreReplaceAllAndLastSync(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateNote(ctx, &dto.NoteCreateRequest{Title: "stale"})
	require.NoError(t, err)

	notes := []*dto.NoteDTO{
		{ID: 1, Title: "fresh", Tags: []*dto.TagDTO{{ID: 5, Name: "t"}}},
	}
	tags := []*dto.TagDTO{{ID: 5, Name: "t"}}
	require.NoError(t, store.ReplaceAll(ctx, notes, tags))

	all, err := store.ListNotes(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "fresh", all[0].Title)
	require.Len(t, all[0].Tags, 1)

	stamp := timex.Now().Time()
	require.NoError(t, store.SetLastSyncedAt(ctx, stamp))
	got, err := store.LastSyncedAt(ctx)
	require.NoError(t, err)
	assert.Equal(t, stamp.Format("2006-01-02 15:04:05"), got.Format("2006-01-02 15:04:05"))
}
