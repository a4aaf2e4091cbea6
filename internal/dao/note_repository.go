package dao

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/haierkeys/offline-note-sync-service/internal/domain"
	"github.com/haierkeys/offline-note-sync-service/internal/model"
	"github.com/haierkeys/offline-note-sync-service/pkg/timex"
)

// noteRepository implements domain.NoteRepository.
type noteRepository struct {
	dao *Dao
}

func NewNoteRepository(dao *Dao) domain.NoteRepository {
	return &noteRepository{dao: dao}
}

func (r *noteRepository) toDomain(m *model.Note) *domain.Note {
	if m == nil {
		return nil
	}
	return &domain.Note{
		ID:         m.ID,
		Cid:        m.Cid,
		Title:      m.Title,
		Content:    m.Content,
		IsFavorite: m.IsFavorite,
		IsDeleted:  m.IsDeleted,
		CreatedAt:  m.CreatedAt.Time(),
		UpdatedAt:  m.UpdatedAt.Time(),
	}
}

func (r *noteRepository) toModel(n *domain.Note) *model.Note {
	if n == nil {
		return nil
	}
	return &model.Note{
		ID:         n.ID,
		Cid:        n.Cid,
		Title:      n.Title,
		Content:    n.Content,
		IsFavorite: n.IsFavorite,
		IsDeleted:  n.IsDeleted,
		CreatedAt:  timex.Time(n.CreatedAt),
		UpdatedAt:  timex.Time(n.UpdatedAt),
	}
}

func (r *noteRepository) GetByID(ctx context.Context, id int64) (*domain.Note, error) {
	var m model.Note
	if err := r.dao.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

func (r *noteRepository) GetWithTags(ctx context.Context, id int64) (*domain.NoteWithTags, error) {
	note, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	tags, err := r.tagsForNotes(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	return &domain.NoteWithTags{Note: *note, Tags: tags[id]}, nil
}

func (r *noteRepository) List(ctx context.Context, includeDeleted bool) ([]*domain.NoteWithTags, error) {
	q := r.dao.db.WithContext(ctx).Model(&model.Note{})
	if !includeDeleted {
		q = q.Where("is_deleted = ?", false)
	}

	var mList []*model.Note
	if err := q.Order("updated_at DESC, id DESC").Find(&mList).Error; err != nil {
		return nil, err
	}
	return r.withTags(ctx, mList)
}

func (r *noteRepository) Search(ctx context.Context, query string) ([]*domain.NoteWithTags, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return r.List(ctx, false)
	}

	key := "%" + strings.ToLower(query) + "%"
	tagMatch := r.dao.db.Model(&model.NoteTag{}).
		Select("note_tag.note_id").
		Joins("JOIN tag ON tag.id = note_tag.tag_id").
		Where("lower(tag.name) LIKE ?", key)

	var mList []*model.Note
	err := r.dao.db.WithContext(ctx).Model(&model.Note{}).
		Where("is_deleted = ?", false).
		Where("lower(title) LIKE ? OR lower(content) LIKE ? OR id IN (?)", key, key, tagMatch).
		Order("updated_at DESC, id DESC").
		Find(&mList).Error
	if err != nil {
		return nil, err
	}
	return r.withTags(ctx, mList)
}

func (r *noteRepository) Create(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	m := r.toModel(note)
	m.ID = 0
	now := timex.Now()
	m.CreatedAt = now
	m.UpdatedAt = now

	if err := r.dao.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

func (r *noteRepository) Update(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	m := r.toModel(note)
	m.UpdatedAt = timex.Now()

	res := r.dao.db.WithContext(ctx).Model(&model.Note{}).
		Where("id = ?", m.ID).
		Select("cid", "title", "content", "is_favorite", "is_deleted", "updated_at").
		Updates(m)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	return r.GetByID(ctx, m.ID)
}

func (r *noteRepository) AddRelation(ctx context.Context, noteID, tagID int64) error {
	var count int64
	err := r.dao.db.WithContext(ctx).Model(&model.NoteTag{}).
		Where("note_id = ? AND tag_id = ?", noteID, tagID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return r.dao.db.WithContext(ctx).Create(&model.NoteTag{NoteID: noteID, TagID: tagID}).Error
}

func (r *noteRepository) RemoveRelation(ctx context.Context, noteID, tagID int64) error {
	return r.dao.db.WithContext(ctx).
		Where("note_id = ? AND tag_id = ?", noteID, tagID).
		Delete(&model.NoteTag{}).Error
}

func (r *noteRepository) TagIDsForNote(ctx context.Context, noteID int64) ([]int64, error) {
	var ids []int64
	err := r.dao.db.WithContext(ctx).Model(&model.NoteTag{}).
		Where("note_id = ?", noteID).
		Order("tag_id").
		Pluck("tag_id", &ids).Error
	return ids, err
}

func (r *noteRepository) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var purged int64
	err := r.dao.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []int64
		err := tx.Model(&model.Note{}).
			Where("is_deleted = ? AND updated_at < ?", true, timex.Time(cutoff)).
			Pluck("id", &ids).Error
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		if err := tx.Where("note_id IN ?", ids).Delete(&model.NoteTag{}).Error; err != nil {
			return err
		}
		res := tx.Where("id IN ?", ids).Delete(&model.Note{})
		if res.Error != nil {
			return res.Error
		}
		purged = res.RowsAffected
		return nil
	})
	return purged, err
}

// withTags joins the notes with their tags in one relation query.
func (r *noteRepository) withTags(ctx context.Context, mList []*model.Note) ([]*domain.NoteWithTags, error) {
	ids := make([]int64, 0, len(mList))
	for _, m := range mList {
		ids = append(ids, m.ID)
	}
	tagsByNote, err := r.tagsForNotes(ctx, ids)
	if err != nil {
		return nil, err
	}

	list := make([]*domain.NoteWithTags, 0, len(mList))
	for _, m := range mList {
		list = append(list, &domain.NoteWithTags{
			Note: *r.toDomain(m),
			Tags: tagsByNote[m.ID],
		})
	}
	return list, nil
}

func (r *noteRepository) tagsForNotes(ctx context.Context, noteIDs []int64) (map[int64][]*domain.Tag, error) {
	result := make(map[int64][]*domain.Tag, len(noteIDs))
	if len(noteIDs) == 0 {
		return result, nil
	}

	var relations []*model.NoteTag
	err := r.dao.db.WithContext(ctx).
		Where("note_id IN ?", noteIDs).
		Order("tag_id").
		Find(&relations).Error
	if err != nil {
		return nil, err
	}
	if len(relations) == 0 {
		return result, nil
	}

	tagIDSet := make(map[int64]bool)
	for _, rel := range relations {
		tagIDSet[rel.TagID] = true
	}
	tagIDs := make([]int64, 0, len(tagIDSet))
	for id := range tagIDSet {
		tagIDs = append(tagIDs, id)
	}

	var mTags []*model.Tag
	if err := r.dao.db.WithContext(ctx).Where("id IN ?", tagIDs).Find(&mTags).Error; err != nil {
		return nil, err
	}
	tagByID := make(map[int64]*domain.Tag, len(mTags))
	for _, m := range mTags {
		tagByID[m.ID] = &domain.Tag{
			ID:        m.ID,
			Cid:       m.Cid,
			Name:      m.Name,
			Color:     m.Color,
			CreatedAt: m.CreatedAt.Time(),
			UpdatedAt: m.UpdatedAt.Time(),
		}
	}

	for _, rel := range relations {
		if tag, ok := tagByID[rel.TagID]; ok {
			result[rel.NoteID] = append(result[rel.NoteID], tag)
		}
	}
	return result, nil
}

var _ domain.NoteRepository = (*noteRepository)(nil)
