// Package localstore is the client-side offline cache. Notes, tags and
// note-tag relations live in independent namespaces of a small sqlite
// key-value table; each namespace holds one JSON array and is replaced
// wholesale on write. Corrupt or missing payloads degrade to an empty
// collection, never an error, so a damaged cache costs data freshness
// instead of crashing the client.
package localstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/haierkeys/offline-note-sync-service/internal/domain"
	"github.com/haierkeys/offline-note-sync-service/internal/dto"
	"github.com/haierkeys/offline-note-sync-service/pkg/timex"
	"github.com/haierkeys/offline-note-sync-service/pkg/util"
)

const (
	nsNotes     = "offline:notes"
	nsTags      = "offline:tags"
	nsRelations = "offline:relations"
	nsLastSync  = "offline:last-sync"
)

// ErrNotFound is returned when an operation targets an id the cache does
// not hold. While offline this is fatal to that operation: inventing the
// entity locally would diverge from server truth.
var ErrNotFound = errors.New("localstore: not found")

// kvRow is one namespace payload.
type kvRow struct {
	Key       string     `gorm:"column:key;primaryKey"`
	Payload   []byte     `gorm:"column:payload"`
	UpdatedAt timex.Time `gorm:"column:updated_at"`
}

func (kvRow) TableName() string {
	return "client_kv"
}

// Relation is the cached (note, tag) association.
type Relation struct {
	NoteID int64 `json:"noteId"`
	TagID  int64 `json:"tagId"`
}

// Store is the offline cache. All methods are safe for sequential use from
// a single client; cross-entity consistency is namespace-at-a-time.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

type Option func(*Store)

func WithLogger(lg *zap.Logger) Option {
	return func(s *Store) {
		s.logger = lg
	}
}

// New migrates the kv table and returns the store.
func New(db *gorm.DB, opts ...Option) (*Store, error) {
	s := &Store{db: db, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	if err := db.AutoMigrate(&kvRow{}); err != nil {
		return nil, errors.Wrap(err, "localstore")
	}
	return s, nil
}

// load decodes one namespace into out. A missing row or an undecodable
// payload leaves out at its zero value.
func (s *Store) load(ctx context.Context, key string, out interface{}) error {
	var row kvRow
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return errors.Wrap(err, "localstore")
	}
	if len(row.Payload) == 0 {
		return nil
	}
	if err := sonic.Unmarshal(row.Payload, out); err != nil {
		s.logger.Warn("localstore: corrupt namespace payload, treating as empty",
			zap.String("namespace", key),
			zap.Error(err),
		)
	}
	return nil
}

// save replaces one namespace wholesale.
func (s *Store) save(ctx context.Context, key string, in interface{}) error {
	payload, err := sonic.Marshal(in)
	if err != nil {
		return errors.Wrap(err, "localstore")
	}
	row := kvRow{Key: key, Payload: payload, UpdatedAt: timex.Now()}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&row).Error
	return errors.Wrap(err, "localstore")
}

func (s *Store) loadNotes(ctx context.Context) ([]*dto.NoteDTO, error) {
	var notes []*dto.NoteDTO
	if err := s.load(ctx, nsNotes, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (s *Store) loadTags(ctx context.Context) ([]*dto.TagDTO, error) {
	var tags []*dto.TagDTO
	if err := s.load(ctx, nsTags, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

func (s *Store) loadRelations(ctx context.Context) ([]Relation, error) {
	var relations []Relation
	if err := s.load(ctx, nsRelations, &relations); err != nil {
		return nil, err
	}
	return relations, nil
}

// ReplaceAll swaps the whole cache for a fresh server snapshot. Notes are
// stored without their embedded tag sets; relations carry that.
func (s *Store) ReplaceAll(ctx context.Context, notes []*dto.NoteDTO, tags []*dto.TagDTO) error {
	var relations []Relation
	stripped := make([]*dto.NoteDTO, 0, len(notes))
	for _, note := range notes {
		for _, tag := range note.Tags {
			relations = append(relations, Relation{NoteID: note.ID, TagID: tag.ID})
		}
		flat := &dto.NoteDTO{}
		if err := copier.Copy(flat, note); err != nil {
			return errors.Wrap(err, "localstore")
		}
		flat.Tags = nil
		stripped = append(stripped, flat)
	}

	if err := s.save(ctx, nsNotes, stripped); err != nil {
		return err
	}
	if err := s.save(ctx, nsTags, tags); err != nil {
		return err
	}
	return s.save(ctx, nsRelations, relations)
}

// LastSyncedAt returns the zero time when no sync has completed yet.
func (s *Store) LastSyncedAt(ctx context.Context) (time.Time, error) {
	var stamp timex.Time
	if err := s.load(ctx, nsLastSync, &stamp); err != nil {
		return time.Time{}, err
	}
	return stamp.Time(), nil
}

func (s *Store) SetLastSyncedAt(ctx context.Context, t time.Time) error {
	return s.save(ctx, nsLastSync, timex.Time(t))
}

// resolveTags joins a flat note with its tags from the relation namespace.
func (s *Store) resolveTags(note *dto.NoteDTO, tags []*dto.TagDTO, relations []Relation) *dto.NoteDTO {
	tagByID := make(map[int64]*dto.TagDTO, len(tags))
	for _, t := range tags {
		tagByID[t.ID] = t
	}
	out := &dto.NoteDTO{}
	_ = copier.Copy(out, note)
	out.Tags = make([]*dto.TagDTO, 0)
	for _, rel := range relations {
		if rel.NoteID != note.ID {
			continue
		}
		if tag, ok := tagByID[rel.TagID]; ok {
			out.Tags = append(out.Tags, tag)
		}
	}
	return out
}

// ListNotes returns cached notes with resolved tags, newest updated first.
func (s *Store) ListNotes(ctx context.Context, includeDeleted bool) ([]*dto.NoteDTO, error) {
	notes, err := s.loadNotes(ctx)
	if err != nil {
		return nil, err
	}
	tags, err := s.loadTags(ctx)
	if err != nil {
		return nil, err
	}
	relations, err := s.loadRelations(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.NoteDTO, 0, len(notes))
	for _, note := range notes {
		if !includeDeleted && note.IsDeleted {
			continue
		}
		out = append(out, s.resolveTags(note, tags, relations))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.Time().After(out[j].UpdatedAt.Time())
	})
	return out, nil
}

// SearchNotes matches the query case-insensitively against title, content
// and attached tag names of non-deleted notes. A blank query returns
// everything ListNotes would.
func (s *Store) SearchNotes(ctx context.Context, query string) ([]*dto.NoteDTO, error) {
	all, err := s.ListNotes(ctx, false)
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return all, nil
	}

	out := make([]*dto.NoteDTO, 0)
	for _, note := range all {
		if strings.Contains(strings.ToLower(note.Title), query) ||
			strings.Contains(strings.ToLower(note.Content), query) {
			out = append(out, note)
			continue
		}
		for _, tag := range note.Tags {
			if strings.Contains(strings.ToLower(tag.Name), query) {
				out = append(out, note)
				break
			}
		}
	}
	return out, nil
}

// GetNote returns the cached note with resolved tags.
func (s *Store) GetNote(ctx context.Context, id int64) (*dto.NoteDTO, error) {
	notes, err := s.loadNotes(ctx)
	if err != nil {
		return nil, err
	}
	for _, note := range notes {
		if note.ID != id {
			continue
		}
		tags, err := s.loadTags(ctx)
		if err != nil {
			return nil, err
		}
		relations, err := s.loadRelations(ctx)
		if err != nil {
			return nil, err
		}
		return s.resolveTags(note, tags, relations), nil
	}
	return nil, ErrNotFound
}

// CreateNote inserts a placeholder-id note. The negative id marks it as
// not yet acknowledged by the server; the cid survives reconciliation.
func (s *Store) CreateNote(ctx context.Context, params *dto.NoteCreateRequest) (*dto.NoteDTO, error) {
	title := params.Title
	if title == "" {
		title = domain.DefaultNoteTitle
	}
	cid := params.Cid
	if cid == "" {
		cid = util.NewCid()
	}
	now := timex.Now()
	note := &dto.NoteDTO{
		ID:         util.NewPlaceholderID(),
		Cid:        cid,
		Title:      title,
		Content:    params.Content,
		IsFavorite: params.IsFavorite,
		IsDeleted:  params.IsDeleted,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	notes, err := s.loadNotes(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, nsNotes, append(notes, note)); err != nil {
		return nil, err
	}

	for _, tagID := range params.TagIDs {
		if err := s.AttachTag(ctx, note.ID, tagID); err != nil {
			return nil, err
		}
	}
	return s.GetNote(ctx, note.ID)
}

// UpsertNote merges an authoritative server record into the cache. A
// placeholder row carrying the same cid is dropped in the same pass, so an
// offline create reconciled by the server never leaves a duplicate behind.
// Relations are rewritten from the record's embedded tag set.
func (s *Store) UpsertNote(ctx context.Context, note *dto.NoteDTO) error {
	notes, err := s.loadNotes(ctx)
	if err != nil {
		return err
	}

	kept := make([]*dto.NoteDTO, 0, len(notes)+1)
	for _, existing := range notes {
		if existing.ID == note.ID {
			continue
		}
		if existing.ID < 0 && note.Cid != "" && existing.Cid == note.Cid {
			continue
		}
		kept = append(kept, existing)
	}
	flat := &dto.NoteDTO{}
	if err := copier.Copy(flat, note); err != nil {
		return errors.Wrap(err, "localstore")
	}
	flat.Tags = nil
	kept = append(kept, flat)

	if err := s.save(ctx, nsNotes, kept); err != nil {
		return err
	}

	if err := s.upsertTags(ctx, note.Tags); err != nil {
		return err
	}
	return s.rewriteRelationsForNote(ctx, note)
}

func (s *Store) rewriteRelationsForNote(ctx context.Context, note *dto.NoteDTO) error {
	relations, err := s.loadRelations(ctx)
	if err != nil {
		return err
	}
	kept := make([]Relation, 0, len(relations))
	for _, rel := range relations {
		if rel.NoteID == note.ID {
			continue
		}
		kept = append(kept, rel)
	}
	for _, tag := range note.Tags {
		kept = append(kept, Relation{NoteID: note.ID, TagID: tag.ID})
	}
	return s.save(ctx, nsRelations, kept)
}

// UpdateNote applies a patch to a cached note. Targeting an id the cache
// does not hold fails with ErrNotFound and touches nothing else.
func (s *Store) UpdateNote(ctx context.Context, id int64, params *dto.NoteUpdateRequest) (*dto.NoteDTO, error) {
	notes, err := s.loadNotes(ctx)
	if err != nil {
		return nil, err
	}

	var target *dto.NoteDTO
	for _, note := range notes {
		if note.ID == id {
			target = note
			break
		}
	}
	if target == nil {
		return nil, ErrNotFound
	}

	if params.Title != nil {
		target.Title = *params.Title
	}
	if params.Content != nil {
		target.Content = *params.Content
	}
	if params.IsFavorite != nil {
		target.IsFavorite = *params.IsFavorite
	}
	if params.IsDeleted != nil {
		target.IsDeleted = *params.IsDeleted
	}
	target.UpdatedAt = timex.Now()

	if err := s.save(ctx, nsNotes, notes); err != nil {
		return nil, err
	}

	if params.TagIDs != nil {
		if err := s.setRelations(ctx, id, *params.TagIDs); err != nil {
			return nil, err
		}
	}
	return s.GetNote(ctx, id)
}

func (s *Store) setRelations(ctx context.Context, noteID int64, tagIDs []int64) error {
	relations, err := s.loadRelations(ctx)
	if err != nil {
		return err
	}
	kept := make([]Relation, 0, len(relations))
	for _, rel := range relations {
		if rel.NoteID == noteID {
			continue
		}
		kept = append(kept, rel)
	}
	seen := make(map[int64]bool, len(tagIDs))
	for _, tagID := range tagIDs {
		if seen[tagID] {
			continue
		}
		seen[tagID] = true
		kept = append(kept, Relation{NoteID: noteID, TagID: tagID})
	}
	return s.save(ctx, nsRelations, kept)
}

// RemoveNote drops the note and its relations from the cache.
func (s *Store) RemoveNote(ctx context.Context, id int64) error {
	notes, err := s.loadNotes(ctx)
	if err != nil {
		return err
	}
	kept := make([]*dto.NoteDTO, 0, len(notes))
	for _, note := range notes {
		if note.ID == id {
			continue
		}
		kept = append(kept, note)
	}
	if err := s.save(ctx, nsNotes, kept); err != nil {
		return err
	}
	return s.setRelations(ctx, id, nil)
}

// PlaceholderNotes returns offline-created notes awaiting reconciliation.
func (s *Store) PlaceholderNotes(ctx context.Context) ([]*dto.NoteDTO, error) {
	notes, err := s.loadNotes(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.NoteDTO, 0)
	for _, note := range notes {
		if note.ID < 0 {
			out = append(out, note)
		}
	}
	return out, nil
}

// PlaceholderTags returns offline-created tags awaiting reconciliation.
func (s *Store) PlaceholderTags(ctx context.Context) ([]*dto.TagDTO, error) {
	tags, err := s.loadTags(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.TagDTO, 0)
	for _, tag := range tags {
		if tag.ID < 0 {
			out = append(out, tag)
		}
	}
	return out, nil
}

// PlaceholderRelations returns relations with a placeholder id on either
// side. Those pairs are local intents the server cannot report back, so a
// snapshot refresh must carry them over explicitly.
func (s *Store) PlaceholderRelations(ctx context.Context) ([]Relation, error) {
	relations, err := s.loadRelations(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Relation, 0)
	for _, rel := range relations {
		if rel.NoteID < 0 || rel.TagID < 0 {
			out = append(out, rel)
		}
	}
	return out, nil
}

// AttachTag records a relation; attaching an existing pair is a no-op.
func (s *Store) AttachTag(ctx context.Context, noteID, tagID int64) error {
	relations, err := s.loadRelations(ctx)
	if err != nil {
		return err
	}
	for _, rel := range relations {
		if rel.NoteID == noteID && rel.TagID == tagID {
			return nil
		}
	}
	return s.save(ctx, nsRelations, append(relations, Relation{NoteID: noteID, TagID: tagID}))
}

// DetachTag removes a relation; removing an absent pair is a no-op.
func (s *Store) DetachTag(ctx context.Context, noteID, tagID int64) error {
	relations, err := s.loadRelations(ctx)
	if err != nil {
		return err
	}
	kept := make([]Relation, 0, len(relations))
	for _, rel := range relations {
		if rel.NoteID == noteID && rel.TagID == tagID {
			continue
		}
		kept = append(kept, rel)
	}
	return s.save(ctx, nsRelations, kept)
}

// GetTagsForNote resolves the tag set of one note.
func (s *Store) GetTagsForNote(ctx context.Context, noteID int64) ([]*dto.TagDTO, error) {
	tags, err := s.loadTags(ctx)
	if err != nil {
		return nil, err
	}
	relations, err := s.loadRelations(ctx)
	if err != nil {
		return nil, err
	}
	tagByID := make(map[int64]*dto.TagDTO, len(tags))
	for _, t := range tags {
		tagByID[t.ID] = t
	}
	out := make([]*dto.TagDTO, 0)
	for _, rel := range relations {
		if rel.NoteID != noteID {
			continue
		}
		if tag, ok := tagByID[rel.TagID]; ok {
			out = append(out, tag)
		}
	}
	return out, nil
}

// ListTags returns cached tags sorted by name.
func (s *Store) ListTags(ctx context.Context) ([]*dto.TagDTO, error) {
	tags, err := s.loadTags(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(tags, func(i, j int) bool {
		return tags[i].Name < tags[j].Name
	})
	return tags, nil
}

func (s *Store) GetTag(ctx context.Context, id int64) (*dto.TagDTO, error) {
	tags, err := s.loadTags(ctx)
	if err != nil {
		return nil, err
	}
	for _, tag := range tags {
		if tag.ID == id {
			return tag, nil
		}
	}
	return nil, ErrNotFound
}

// CreateTag inserts a placeholder-id tag.
func (s *Store) CreateTag(ctx context.Context, params *dto.TagCreateRequest) (*dto.TagDTO, error) {
	cid := params.Cid
	if cid == "" {
		cid = util.NewCid()
	}
	now := timex.Now()
	tag := &dto.TagDTO{
		ID:        util.NewPlaceholderID(),
		Cid:       cid,
		Name:      params.Name,
		Color:     params.Color,
		CreatedAt: now,
		UpdatedAt: now,
	}
	tags, err := s.loadTags(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, nsTags, append(tags, tag)); err != nil {
		return nil, err
	}
	return tag, nil
}

// UpsertTag merges an authoritative server tag, dropping any placeholder
// carrying the same cid.
func (s *Store) UpsertTag(ctx context.Context, tag *dto.TagDTO) error {
	return s.upsertTags(ctx, []*dto.TagDTO{tag})
}

func (s *Store) upsertTags(ctx context.Context, incoming []*dto.TagDTO) error {
	if len(incoming) == 0 {
		return nil
	}
	tags, err := s.loadTags(ctx)
	if err != nil {
		return err
	}
	for _, tag := range incoming {
		kept := make([]*dto.TagDTO, 0, len(tags)+1)
		for _, existing := range tags {
			if existing.ID == tag.ID {
				continue
			}
			if existing.ID < 0 && tag.Cid != "" && existing.Cid == tag.Cid {
				continue
			}
			kept = append(kept, existing)
		}
		tags = append(kept, tag)
	}
	return s.save(ctx, nsTags, tags)
}

// UpdateTag applies a patch to a cached tag.
func (s *Store) UpdateTag(ctx context.Context, id int64, params *dto.TagUpdateRequest) (*dto.TagDTO, error) {
	tags, err := s.loadTags(ctx)
	if err != nil {
		return nil, err
	}
	var target *dto.TagDTO
	for _, tag := range tags {
		if tag.ID == id {
			target = tag
			break
		}
	}
	if target == nil {
		return nil, ErrNotFound
	}
	if params.Name != nil {
		target.Name = *params.Name
	}
	if params.Color != nil {
		target.Color = *params.Color
	}
	target.UpdatedAt = timex.Now()

	if err := s.save(ctx, nsTags, tags); err != nil {
		return nil, err
	}
	return target, nil
}

// DeleteTag removes the tag and every relation referencing it.
func (s *Store) DeleteTag(ctx context.Context, id int64) error {
	tags, err := s.loadTags(ctx)
	if err != nil {
		return err
	}
	kept := make([]*dto.TagDTO, 0, len(tags))
	found := false
	for _, tag := range tags {
		if tag.ID == id {
			found = true
			continue
		}
		kept = append(kept, tag)
	}
	if !found {
		return ErrNotFound
	}
	if err := s.save(ctx, nsTags, kept); err != nil {
		return err
	}

	relations, err := s.loadRelations(ctx)
	if err != nil {
		return err
	}
	keptRels := make([]Relation, 0, len(relations))
	for _, rel := range relations {
		if rel.TagID == id {
			continue
		}
		keptRels = append(keptRels, rel)
	}
	return s.save(ctx, nsRelations, keptRels)
}

// NotesSnapshot returns the raw notes namespace for cloud backup.
func (s *Store) NotesSnapshot(ctx context.Context) ([]*dto.NoteDTO, error) {
	return s.loadNotes(ctx)
}

// TagsSnapshot returns the raw tags namespace for cloud backup.
func (s *Store) TagsSnapshot(ctx context.Context) ([]*dto.TagDTO, error) {
	return s.loadTags(ctx)
}
