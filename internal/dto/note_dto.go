// Package dto defines the data transfer objects shared by the API server
// handlers and the offline client, so both sides agree on the wire shape.
package dto

import (
	"github.com/haierkeys/offline-note-sync-service/internal/domain"
	"github.com/haierkeys/offline-note-sync-service/pkg/timex"
)

// NoteDTO is the wire shape of a note joined with its tags.
type NoteDTO struct {
	ID         int64      `json:"id"`
	Cid        string     `json:"cid,omitempty"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	IsFavorite bool       `json:"isFavorite"`
	IsDeleted  bool       `json:"isDeleted"`
	CreatedAt  timex.Time `json:"createdAt"`
	UpdatedAt  timex.Time `json:"updatedAt"`
	Tags       []*TagDTO  `json:"tags"`
}

// NoteCreateRequest creates a note. Every field is optional; a blank title
// falls back to the default server-side.
type NoteCreateRequest struct {
	Cid        string  `json:"cid,omitempty"`
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	IsFavorite bool    `json:"isFavorite"`
	IsDeleted  bool    `json:"isDeleted"`
	TagIDs     []int64 `json:"tagIds"`
}

// NoteUpdateRequest is an explicit partial update: absent fields stay
// untouched. TagIDs, when present, is the full desired tag set.
type NoteUpdateRequest struct {
	Title      *string  `json:"title,omitempty"`
	Content    *string  `json:"content,omitempty"`
	IsFavorite *bool    `json:"isFavorite,omitempty"`
	IsDeleted  *bool    `json:"isDeleted,omitempty"`
	TagIDs     *[]int64 `json:"tagIds,omitempty"`
}

// NoteListRequest binds the list query string.
type NoteListRequest struct {
	IncludeDeleted bool `form:"includeDeleted"`
}

// NoteSearchRequest binds the search query string.
type NoteSearchRequest struct {
	Query string `form:"q"`
}

// NoteExportRequest binds the export query string.
type NoteExportRequest struct {
	Format string `form:"format" binding:"required,oneof=text markdown json"`
}

// ToPatch converts the request into the domain patch.
func (r *NoteUpdateRequest) ToPatch() *domain.NotePatch {
	return &domain.NotePatch{
		Title:      r.Title,
		Content:    r.Content,
		IsFavorite: r.IsFavorite,
		IsDeleted:  r.IsDeleted,
		TagIDs:     r.TagIDs,
	}
}

// NoteFromDomain maps the domain read view onto the wire shape.
func NoteFromDomain(n *domain.NoteWithTags) *NoteDTO {
	if n == nil {
		return nil
	}
	d := &NoteDTO{
		ID:         n.ID,
		Cid:        n.Cid,
		Title:      n.Title,
		Content:    n.Content,
		IsFavorite: n.IsFavorite,
		IsDeleted:  n.IsDeleted,
		CreatedAt:  timex.Time(n.CreatedAt),
		UpdatedAt:  timex.Time(n.UpdatedAt),
		Tags:       make([]*TagDTO, 0, len(n.Tags)),
	}
	for _, tag := range n.Tags {
		d.Tags = append(d.Tags, TagFromDomain(tag))
	}
	return d
}

// NotesFromDomain maps a list of read views.
func NotesFromDomain(list []*domain.NoteWithTags) []*NoteDTO {
	out := make([]*NoteDTO, 0, len(list))
	for _, n := range list {
		out = append(out, NoteFromDomain(n))
	}
	return out
}

// ToDomain converts the wire shape back into the domain read view. The
// offline client uses it when caching server responses.
func (d *NoteDTO) ToDomain() *domain.NoteWithTags {
	if d == nil {
		return nil
	}
	n := &domain.NoteWithTags{
		Note: domain.Note{
			ID:         d.ID,
			Cid:        d.Cid,
			Title:      d.Title,
			Content:    d.Content,
			IsFavorite: d.IsFavorite,
			IsDeleted:  d.IsDeleted,
			CreatedAt:  d.CreatedAt.Time(),
			UpdatedAt:  d.UpdatedAt.Time(),
		},
		Tags: make([]*domain.Tag, 0, len(d.Tags)),
	}
	for _, tag := range d.Tags {
		n.Tags = append(n.Tags, tag.ToDomain())
	}
	return n
}
