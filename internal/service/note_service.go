package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/haierkeys/offline-note-sync-service/internal/domain"
	"github.com/haierkeys/offline-note-sync-service/internal/dto"
	"github.com/haierkeys/offline-note-sync-service/pkg/code"
)

// NoteList returns all notes with tags, trashed ones only when asked for.
func (s *Service) NoteList(ctx context.Context, includeDeleted bool) ([]*dto.NoteDTO, error) {
	list, err := s.notes.List(ctx, includeDeleted)
	if err != nil {
		return nil, err
	}
	return dto.NotesFromDomain(list), nil
}

// NoteSearch matches the query against titles, contents and tag names.
func (s *Service) NoteSearch(ctx context.Context, query string) ([]*dto.NoteDTO, error) {
	list, err := s.notes.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	return dto.NotesFromDomain(list), nil
}

// NoteGet returns a single note with its tags. Concurrent reads of the same
// id are collapsed through singleflight.
func (s *Service) NoteGet(ctx context.Context, id int64) (*dto.NoteDTO, error) {
	v, err, _ := s.sf.Do(fmt.Sprintf("note-get-%d", id), func() (interface{}, error) {
		note, err := s.notes.GetWithTags(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, code.ErrorNoteNotFound
			}
			return nil, err
		}
		return dto.NoteFromDomain(note), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*dto.NoteDTO), nil
}

// NoteCreate persists a new note with its tag relations. A blank title
// falls back to the default.
func (s *Service) NoteCreate(ctx context.Context, params *dto.NoteCreateRequest) (*dto.NoteDTO, error) {
	title := params.Title
	if title == "" {
		title = domain.DefaultNoteTitle
	}

	for _, tagID := range params.TagIDs {
		if _, err := s.tags.GetByID(ctx, tagID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, code.ErrorTagNotFound.WithDetails(fmt.Sprintf("tag %d", tagID))
			}
			return nil, err
		}
	}

	created, err := s.notes.Create(ctx, &domain.Note{
		Cid:        params.Cid,
		Title:      title,
		Content:    params.Content,
		IsFavorite: params.IsFavorite,
		IsDeleted:  params.IsDeleted,
	})
	if err != nil {
		return nil, err
	}

	for _, tagID := range params.TagIDs {
		if err := s.notes.AddRelation(ctx, created.ID, tagID); err != nil {
			return nil, err
		}
	}

	withTags, err := s.notes.GetWithTags(ctx, created.ID)
	if err != nil {
		return nil, err
	}
	return dto.NoteFromDomain(withTags), nil
}

// NoteUpdate applies a partial update. When the patch carries tagIds the
// desired set is diffed against current relations and reconciled.
func (s *Service) NoteUpdate(ctx context.Context, id int64, params *dto.NoteUpdateRequest) (*dto.NoteDTO, error) {
	patch := params.ToPatch()

	note, err := s.notes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorNoteNotFound
		}
		return nil, err
	}

	if !patch.IsEmpty() {
		patch.Apply(note)
		if _, err := s.notes.Update(ctx, note); err != nil {
			return nil, err
		}
	}

	if patch.TagIDs != nil {
		if err := s.reconcileTags(ctx, id, *patch.TagIDs); err != nil {
			return nil, err
		}
	}

	withTags, err := s.notes.GetWithTags(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NoteFromDomain(withTags), nil
}

// NoteSoftDelete moves the note to the trash.
func (s *Service) NoteSoftDelete(ctx context.Context, id int64) (*dto.NoteDTO, error) {
	deleted := true
	return s.NoteUpdate(ctx, id, &dto.NoteUpdateRequest{IsDeleted: &deleted})
}

// NoteRestore takes the note back out of the trash.
func (s *Service) NoteRestore(ctx context.Context, id int64) (*dto.NoteDTO, error) {
	deleted := false
	return s.NoteUpdate(ctx, id, &dto.NoteUpdateRequest{IsDeleted: &deleted})
}

// NoteToggleFavorite flips the favorite flag.
func (s *Service) NoteToggleFavorite(ctx context.Context, id int64) (*dto.NoteDTO, error) {
	note, err := s.notes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorNoteNotFound
		}
		return nil, err
	}
	flipped := !note.IsFavorite
	return s.NoteUpdate(ctx, id, &dto.NoteUpdateRequest{IsFavorite: &flipped})
}

// NoteAttachTag attaches a tag; attaching twice is a no-op.
func (s *Service) NoteAttachTag(ctx context.Context, noteID, tagID int64) error {
	if _, err := s.notes.GetByID(ctx, noteID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return code.ErrorNoteNotFound
		}
		return err
	}
	if _, err := s.tags.GetByID(ctx, tagID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return code.ErrorTagNotFound
		}
		return err
	}
	return s.notes.AddRelation(ctx, noteID, tagID)
}

// NoteDetachTag detaches a tag; detaching an absent relation is a no-op.
func (s *Service) NoteDetachTag(ctx context.Context, noteID, tagID int64) error {
	if _, err := s.notes.GetByID(ctx, noteID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return code.ErrorNoteNotFound
		}
		return err
	}
	return s.notes.RemoveRelation(ctx, noteID, tagID)
}

// reconcileTags diffs the desired tag set against current relations and
// adds/removes only the difference.
func (s *Service) reconcileTags(ctx context.Context, noteID int64, desired []int64) error {
	current, err := s.notes.TagIDsForNote(ctx, noteID)
	if err != nil {
		return err
	}

	currentSet := make(map[int64]bool, len(current))
	for _, id := range current {
		currentSet[id] = true
	}
	desiredSet := make(map[int64]bool, len(desired))
	for _, id := range desired {
		desiredSet[id] = true
	}

	for id := range desiredSet {
		if currentSet[id] {
			continue
		}
		if _, err := s.tags.GetByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return code.ErrorTagNotFound.WithDetails(fmt.Sprintf("tag %d", id))
			}
			return err
		}
		if err := s.notes.AddRelation(ctx, noteID, id); err != nil {
			return err
		}
	}
	for _, id := range current {
		if desiredSet[id] {
			continue
		}
		if err := s.notes.RemoveRelation(ctx, noteID, id); err != nil {
			return err
		}
	}
	return nil
}

// NotePurgeTrashedBefore hard-deletes trashed notes older than cutoff days.
// The retention task is the only caller.
func (s *Service) NotePurgeTrashedBefore(ctx context.Context, cutoffDays int) (int64, error) {
	if cutoffDays <= 0 {
		return 0, nil
	}
	cutoff := timeNow().AddDate(0, 0, -cutoffDays)
	return s.notes.PurgeDeletedBefore(ctx, cutoff)
}
