package service

import (
	"context"

	"github.com/haierkeys/offline-note-sync-service/internal/export"
)

// NoteExport renders a note as a downloadable document.
func (s *Service) NoteExport(ctx context.Context, id int64, format string) (*export.Document, error) {
	note, err := s.NoteGet(ctx, id)
	if err != nil {
		return nil, err
	}
	return export.Render(note, format)
}
