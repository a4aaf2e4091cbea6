package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/haierkeys/offline-note-sync-service/internal/domain"
	"github.com/haierkeys/offline-note-sync-service/internal/dto"
	"github.com/haierkeys/offline-note-sync-service/pkg/code"
)

func (s *Service) TagList(ctx context.Context) ([]*dto.TagDTO, error) {
	list, err := s.tags.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.TagsFromDomain(list), nil
}

func (s *Service) TagGet(ctx context.Context, id int64) (*dto.TagDTO, error) {
	tag, err := s.tags.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorTagNotFound
		}
		return nil, err
	}
	return dto.TagFromDomain(tag), nil
}

func (s *Service) TagCreate(ctx context.Context, params *dto.TagCreateRequest) (*dto.TagDTO, error) {
	created, err := s.tags.Create(ctx, &domain.Tag{
		Cid:   params.Cid,
		Name:  params.Name,
		Color: params.Color,
	})
	if err != nil {
		return nil, err
	}
	return dto.TagFromDomain(created), nil
}

func (s *Service) TagUpdate(ctx context.Context, id int64, params *dto.TagUpdateRequest) (*dto.TagDTO, error) {
	patch := params.ToPatch()

	tag, err := s.tags.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorTagNotFound
		}
		return nil, err
	}

	if !patch.IsEmpty() {
		patch.Apply(tag)
		if _, err := s.tags.Update(ctx, tag); err != nil {
			return nil, err
		}
	}

	updated, err := s.tags.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.TagFromDomain(updated), nil
}

// TagDelete removes the tag and cascades removal of its note relations.
func (s *Service) TagDelete(ctx context.Context, id int64) error {
	if err := s.tags.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return code.ErrorTagNotFound
		}
		return err
	}
	return nil
}
