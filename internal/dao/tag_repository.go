package dao

import (
	"context"

	"gorm.io/gorm"

	"github.com/haierkeys/offline-note-sync-service/internal/domain"
	"github.com/haierkeys/offline-note-sync-service/internal/model"
	"github.com/haierkeys/offline-note-sync-service/pkg/timex"
)

// tagRepository implements domain.TagRepository.
type tagRepository struct {
	dao *Dao
}

func NewTagRepository(dao *Dao) domain.TagRepository {
	return &tagRepository{dao: dao}
}

func (r *tagRepository) toDomain(m *model.Tag) *domain.Tag {
	if m == nil {
		return nil
	}
	return &domain.Tag{
		ID:        m.ID,
		Cid:       m.Cid,
		Name:      m.Name,
		Color:     m.Color,
		CreatedAt: m.CreatedAt.Time(),
		UpdatedAt: m.UpdatedAt.Time(),
	}
}

func (r *tagRepository) GetByID(ctx context.Context, id int64) (*domain.Tag, error) {
	var m model.Tag
	if err := r.dao.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

func (r *tagRepository) List(ctx context.Context) ([]*domain.Tag, error) {
	var mList []*model.Tag
	if err := r.dao.db.WithContext(ctx).Order("name, id").Find(&mList).Error; err != nil {
		return nil, err
	}
	list := make([]*domain.Tag, 0, len(mList))
	for _, m := range mList {
		list = append(list, r.toDomain(m))
	}
	return list, nil
}

func (r *tagRepository) Create(ctx context.Context, tag *domain.Tag) (*domain.Tag, error) {
	now := timex.Now()
	m := &model.Tag{
		Cid:       tag.Cid,
		Name:      tag.Name,
		Color:     tag.Color,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.dao.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

func (r *tagRepository) Update(ctx context.Context, tag *domain.Tag) (*domain.Tag, error) {
	m := &model.Tag{
		ID:        tag.ID,
		Cid:       tag.Cid,
		Name:      tag.Name,
		Color:     tag.Color,
		UpdatedAt: timex.Now(),
	}

	res := r.dao.db.WithContext(ctx).Model(&model.Tag{}).
		Where("id = ?", m.ID).
		Select("cid", "name", "color", "updated_at").
		Updates(m)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	return r.GetByID(ctx, m.ID)
}

// Delete removes the tag and every note relation pointing at it.
func (r *tagRepository) Delete(ctx context.Context, id int64) error {
	return r.dao.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&model.Tag{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("tag_id = ?", id).Delete(&model.NoteTag{}).Error
	})
}

var _ domain.TagRepository = (*tagRepository)(nil)
