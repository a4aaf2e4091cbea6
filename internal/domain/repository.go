package domain

import (
	"context"
	"time"
)

// NoteRepository is the authoritative note store contract.
type NoteRepository interface {
	// GetByID returns the bare note regardless of deletion state.
	GetByID(ctx context.Context, id int64) (*Note, error)

	// GetWithTags returns the note joined with its resolved tags.
	GetWithTags(ctx context.Context, id int64) (*NoteWithTags, error)

	// List returns notes with tags, newest updated first. Soft-deleted
	// notes are excluded unless includeDeleted is set.
	List(ctx context.Context, includeDeleted bool) ([]*NoteWithTags, error)

	// Search matches the query case-insensitively against title and
	// content of non-deleted notes. A blank query returns everything
	// List would.
	Search(ctx context.Context, query string) ([]*NoteWithTags, error)

	// Create persists a new note and assigns its id.
	Create(ctx context.Context, note *Note) (*Note, error)

	// Update replaces all mutable fields of the stored note.
	Update(ctx context.Context, note *Note) (*Note, error)

	// AddRelation attaches a tag; attaching an existing relation is a
	// no-op.
	AddRelation(ctx context.Context, noteID, tagID int64) error

	// RemoveRelation detaches a tag; removing an absent relation is a
	// no-op.
	RemoveRelation(ctx context.Context, noteID, tagID int64) error

	// TagIDsForNote returns the ids of tags attached to the note.
	TagIDsForNote(ctx context.Context, noteID int64) ([]int64, error)

	// PurgeDeletedBefore hard-deletes soft-deleted notes last touched
	// before cutoff, cascading their relations. Only the retention task
	// calls this.
	PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// TagRepository is the authoritative tag store contract.
type TagRepository interface {
	GetByID(ctx context.Context, id int64) (*Tag, error)
	List(ctx context.Context) ([]*Tag, error)
	Create(ctx context.Context, tag *Tag) (*Tag, error)
	Update(ctx context.Context, tag *Tag) (*Tag, error)

	// Delete removes the tag and cascades removal of its relations.
	Delete(ctx context.Context, id int64) error
}
