package domain

import "time"

// Tag is a named, colored label attachable to multiple notes. Tags have no
// soft delete: removing one removes all of its relations.
type Tag struct {
	ID        int64
	Cid       string
	Name      string
	Color     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NoteTag is the (note, tag) relation; existence implies association and the
// pair is unique.
type NoteTag struct {
	NoteID int64
	TagID  int64
}

// TagPatch is an explicit partial update for tags.
type TagPatch struct {
	Name  *string
	Color *string
}

func (p *TagPatch) IsEmpty() bool {
	return p.Name == nil && p.Color == nil
}

func (p *TagPatch) Apply(t *Tag) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Color != nil {
		t.Color = *p.Color
	}
	t.UpdatedAt = time.Now()
}
