package dto

import (
	"github.com/haierkeys/offline-note-sync-service/internal/domain"
	"github.com/haierkeys/offline-note-sync-service/pkg/timex"
)

// TagDTO is the wire shape of a tag.
type TagDTO struct {
	ID        int64      `json:"id"`
	Cid       string     `json:"cid,omitempty"`
	Name      string     `json:"name"`
	Color     string     `json:"color"`
	CreatedAt timex.Time `json:"createdAt"`
	UpdatedAt timex.Time `json:"updatedAt"`
}

type TagCreateRequest struct {
	Cid   string `json:"cid,omitempty"`
	Name  string `json:"name" binding:"required"`
	Color string `json:"color"`
}

// TagUpdateRequest is an explicit partial update mirroring NoteUpdateRequest.
type TagUpdateRequest struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
}

func (r *TagUpdateRequest) ToPatch() *domain.TagPatch {
	return &domain.TagPatch{
		Name:  r.Name,
		Color: r.Color,
	}
}

func TagFromDomain(t *domain.Tag) *TagDTO {
	if t == nil {
		return nil
	}
	return &TagDTO{
		ID:        t.ID,
		Cid:       t.Cid,
		Name:      t.Name,
		Color:     t.Color,
		CreatedAt: timex.Time(t.CreatedAt),
		UpdatedAt: timex.Time(t.UpdatedAt),
	}
}

func TagsFromDomain(list []*domain.Tag) []*TagDTO {
	out := make([]*TagDTO, 0, len(list))
	for _, t := range list {
		out = append(out, TagFromDomain(t))
	}
	return out
}

func (d *TagDTO) ToDomain() *domain.Tag {
	if d == nil {
		return nil
	}
	return &domain.Tag{
		ID:        d.ID,
		Cid:       d.Cid,
		Name:      d.Name,
		Color:     d.Color,
		CreatedAt: d.CreatedAt.Time(),
		UpdatedAt: d.UpdatedAt.Time(),
	}
}
