// Package domain defines the entities and repository contracts shared by the
// server repositories and the business services.
package domain

import "time"

// DefaultNoteTitle is applied when a note is created without a title.
const DefaultNoteTitle = "Untitled"

// Note is a user-authored rich-text document. IsDeleted is a soft flag:
// trashed notes stay in storage for restore and only leave default listings.
// Cid is the client correlation id carried from creation so offline-created
// placeholders can be matched to their server record (see internal/client).
type Note struct {
	ID         int64
	Cid        string
	Title      string
	Content    string
	IsFavorite bool
	IsDeleted  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NoteWithTags is the read view of a note joined with its resolved tag set.
// It is recomputed from relations on every read, never stored.
type NoteWithTags struct {
	Note
	Tags []*Tag
}

// NotePatch is an explicit partial update: nil fields are untouched.
// TagIDs, when set, is the full desired relation set; the service diffs it
// against current relations.
type NotePatch struct {
	Title      *string
	Content    *string
	IsFavorite *bool
	IsDeleted  *bool
	TagIDs     *[]int64
}

// IsEmpty reports whether the patch changes nothing.
func (p *NotePatch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil && p.IsFavorite == nil &&
		p.IsDeleted == nil && p.TagIDs == nil
}

// Apply merges the patch into n and refreshes UpdatedAt.
func (p *NotePatch) Apply(n *Note) {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.IsFavorite != nil {
		n.IsFavorite = *p.IsFavorite
	}
	if p.IsDeleted != nil {
		n.IsDeleted = *p.IsDeleted
	}
	n.UpdatedAt = time.Now()
}
