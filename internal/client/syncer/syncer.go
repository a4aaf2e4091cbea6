// Package syncer orchestrates every note intent across the remote API, the
// offline cache and the cloud backup mirror. When the server is reachable
// an intent runs remotely and the result is written through to the cache;
// when it is not, the intent runs against the cache alone and the result is
// marked degraded. Server rejections are never applied locally.
package syncer

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/haierkeys/offline-note-sync-service/internal/client/backup"
	"github.com/haierkeys/offline-note-sync-service/internal/client/connectivity"
	"github.com/haierkeys/offline-note-sync-service/internal/client/localstore"
	"github.com/haierkeys/offline-note-sync-service/internal/client/remote"
	"github.com/haierkeys/offline-note-sync-service/internal/dto"
	"github.com/haierkeys/offline-note-sync-service/internal/export"
	"github.com/haierkeys/offline-note-sync-service/pkg/util"
)

// RemoteAPI is the server surface the orchestrator drives; *remote.Client
// implements it, tests substitute fakes.
type RemoteAPI interface {
	Health(ctx context.Context) error
	ListNotes(ctx context.Context, includeDeleted bool) ([]*dto.NoteDTO, error)
	SearchNotes(ctx context.Context, query string) ([]*dto.NoteDTO, error)
	GetNote(ctx context.Context, id int64) (*dto.NoteDTO, error)
	CreateNote(ctx context.Context, params *dto.NoteCreateRequest) (*dto.NoteDTO, error)
	UpdateNote(ctx context.Context, id int64, params *dto.NoteUpdateRequest) (*dto.NoteDTO, error)
	DeleteNote(ctx context.Context, id int64) (*dto.NoteDTO, error)
	RestoreNote(ctx context.Context, id int64) (*dto.NoteDTO, error)
	ToggleFavorite(ctx context.Context, id int64) (*dto.NoteDTO, error)
	ExportNote(ctx context.Context, id int64, format string) (*export.Document, error)
	AttachTag(ctx context.Context, noteID, tagID int64) error
	DetachTag(ctx context.Context, noteID, tagID int64) error
	ListTags(ctx context.Context) ([]*dto.TagDTO, error)
	GetTag(ctx context.Context, id int64) (*dto.TagDTO, error)
	CreateTag(ctx context.Context, params *dto.TagCreateRequest) (*dto.TagDTO, error)
	UpdateTag(ctx context.Context, id int64, params *dto.TagUpdateRequest) (*dto.TagDTO, error)
	DeleteTag(ctx context.Context, id int64) error
}

var _ RemoteAPI = (*remote.Client)(nil)

// Syncer is the orchestrator. One instance serves a single client; its
// methods are called from that client's control flow.
type Syncer struct {
	remote RemoteAPI
	local  *localstore.Store
	backup *backup.Client
	policy connectivity.Policy
	logger *zap.Logger

	unsubscribe func()
}

type Option func(*Syncer)

func WithLogger(lg *zap.Logger) Option {
	return func(s *Syncer) {
		s.logger = lg
	}
}

// WithBackup enables the best-effort cloud mirror.
func WithBackup(b *backup.Client) Option {
	return func(s *Syncer) {
		s.backup = b
	}
}

// New wires the orchestrator and subscribes to connectivity transitions:
// when the server comes back, offline-created entities are pushed and the
// cache refreshed.
func New(remoteAPI RemoteAPI, local *localstore.Store, policy connectivity.Policy, opts ...Option) *Syncer {
	s := &Syncer{
		remote: remoteAPI,
		local:  local,
		policy: policy,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.unsubscribe = policy.Subscribe(func(online bool) {
		if !online {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := s.Resync(ctx); err != nil {
			s.logger.Warn("syncer: reconnect resync failed", zap.Error(err))
		}
	})
	return s
}

// Close detaches the connectivity subscription.
func (s *Syncer) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// LastSyncedAt reports when the cache last converged with the server.
func (s *Syncer) LastSyncedAt(ctx context.Context) (time.Time, error) {
	return s.local.LastSyncedAt(ctx)
}

// mirrorBackup pushes the current cache snapshots to the cloud store. It
// never fails the caller.
func (s *Syncer) mirrorBackup(ctx context.Context) {
	if s.backup == nil {
		return
	}
	if notes, err := s.local.NotesSnapshot(ctx); err == nil {
		s.backup.PushSnapshot(backup.KindNotes, notes)
	}
	if tags, err := s.local.TagsSnapshot(ctx); err == nil {
		s.backup.PushSnapshot(backup.KindTags, tags)
	}
}

// mirrorNote writes an authoritative server record through to the cache.
// Cache write failures degrade freshness, not the live result.
func (s *Syncer) mirrorNote(ctx context.Context, note *dto.NoteDTO) {
	if err := s.local.UpsertNote(ctx, note); err != nil {
		s.logger.Warn("syncer: cache mirror failed",
			zap.Int64("note-id", note.ID),
			zap.Error(err),
		)
		return
	}
	s.mirrorBackup(ctx)
}

func (s *Syncer) mirrorTag(ctx context.Context, tag *dto.TagDTO) {
	if err := s.local.UpsertTag(ctx, tag); err != nil {
		s.logger.Warn("syncer: cache mirror failed",
			zap.Int64("tag-id", tag.ID),
			zap.Error(err),
		)
		return
	}
	s.mirrorBackup(ctx)
}

// ListNotes serves the list intent. A live result refreshes the whole
// cache, since the server response is a complete snapshot.
func (s *Syncer) ListNotes(ctx context.Context, includeDeleted bool) (Result[[]*dto.NoteDTO], error) {
	if !s.policy.Online() {
		return s.listNotesLocal(ctx, includeDeleted, ErrOffline)
	}

	notes, err := s.remote.ListNotes(ctx, true)
	if err != nil {
		if remote.IsNetworkError(err) {
			return s.listNotesLocal(ctx, includeDeleted, err)
		}
		return rejected[[]*dto.NoteDTO](err), err
	}

	s.refreshCache(ctx, notes)

	if includeDeleted {
		return live(notes), nil
	}
	visible := make([]*dto.NoteDTO, 0, len(notes))
	for _, note := range notes {
		if !note.IsDeleted {
			visible = append(visible, note)
		}
	}
	return live(visible), nil
}

func (s *Syncer) listNotesLocal(ctx context.Context, includeDeleted bool, reason error) (Result[[]*dto.NoteDTO], error) {
	notes, err := s.local.ListNotes(ctx, includeDeleted)
	if err != nil {
		return rejected[[]*dto.NoteDTO](err), err
	}
	return degraded(notes, reason), nil
}

// refreshCache replaces the cache with a full server snapshot, keeping
// local placeholders that the server cannot know about yet.
func (s *Syncer) refreshCache(ctx context.Context, notes []*dto.NoteDTO) {
	placeholderNotes, err := s.local.PlaceholderNotes(ctx)
	if err != nil {
		s.logger.Warn("syncer: cache refresh skipped", zap.Error(err))
		return
	}
	placeholderTags, err := s.local.PlaceholderTags(ctx)
	if err != nil {
		s.logger.Warn("syncer: cache refresh skipped", zap.Error(err))
		return
	}
	placeholderRels, err := s.local.PlaceholderRelations(ctx)
	if err != nil {
		s.logger.Warn("syncer: cache refresh skipped", zap.Error(err))
		return
	}

	tags, err := s.remote.ListTags(ctx)
	if err != nil {
		s.logger.Warn("syncer: tag refresh failed", zap.Error(err))
		return
	}

	if err := s.local.ReplaceAll(ctx, notes, tags); err != nil {
		s.logger.Warn("syncer: cache refresh failed", zap.Error(err))
		return
	}
	// Carry over everything the server cannot know about yet: offline tag
	// creates first, then the flat notes, then the relations the note
	// upserts just rewrote away.
	for _, tag := range placeholderTags {
		if err := s.local.UpsertTag(ctx, tag); err != nil {
			s.logger.Warn("syncer: placeholder carry-over failed", zap.Error(err))
		}
	}
	for _, placeholder := range placeholderNotes {
		if err := s.local.UpsertNote(ctx, placeholder); err != nil {
			s.logger.Warn("syncer: placeholder carry-over failed", zap.Error(err))
		}
	}
	for _, rel := range placeholderRels {
		if err := s.local.AttachTag(ctx, rel.NoteID, rel.TagID); err != nil {
			s.logger.Warn("syncer: placeholder carry-over failed", zap.Error(err))
		}
	}
	if err := s.local.SetLastSyncedAt(ctx, time.Now()); err != nil {
		s.logger.Warn("syncer: last-sync stamp failed", zap.Error(err))
	}
	s.mirrorBackup(ctx)
}

// SearchNotes serves the search intent.
func (s *Syncer) SearchNotes(ctx context.Context, query string) (Result[[]*dto.NoteDTO], error) {
	if !s.policy.Online() {
		return s.searchNotesLocal(ctx, query, ErrOffline)
	}

	notes, err := s.remote.SearchNotes(ctx, query)
	if err != nil {
		if remote.IsNetworkError(err) {
			return s.searchNotesLocal(ctx, query, err)
		}
		return rejected[[]*dto.NoteDTO](err), err
	}
	return live(notes), nil
}

func (s *Syncer) searchNotesLocal(ctx context.Context, query string, reason error) (Result[[]*dto.NoteDTO], error) {
	notes, err := s.local.SearchNotes(ctx, query)
	if err != nil {
		return rejected[[]*dto.NoteDTO](err), err
	}
	return degraded(notes, reason), nil
}

// GetNote serves the read intent for one note. A placeholder id is served
// from the cache even while online; the server has no record for it yet.
func (s *Syncer) GetNote(ctx context.Context, id int64) (Result[*dto.NoteDTO], error) {
	if !s.policy.Online() || id < 0 {
		return s.getNoteLocal(ctx, id, ErrOffline)
	}

	note, err := s.remote.GetNote(ctx, id)
	if err != nil {
		if remote.IsNetworkError(err) {
			return s.getNoteLocal(ctx, id, err)
		}
		return rejected[*dto.NoteDTO](err), err
	}
	s.mirrorNote(ctx, note)
	return live(note), nil
}

func (s *Syncer) getNoteLocal(ctx context.Context, id int64, reason error) (Result[*dto.NoteDTO], error) {
	note, err := s.local.GetNote(ctx, id)
	if err != nil {
		return rejected[*dto.NoteDTO](err), err
	}
	return degraded(note, reason), nil
}

// CreateNote serves the create intent. Offline creates get a placeholder
// negative id and a correlation id; the cid travels with the retried create
// so the cache can reconcile the placeholder away (see Resync).
func (s *Syncer) CreateNote(ctx context.Context, params *dto.NoteCreateRequest) (Result[*dto.NoteDTO], error) {
	if params.Cid == "" {
		params.Cid = util.NewCid()
	}

	if !s.policy.Online() {
		return s.createNoteLocal(ctx, params, ErrOffline)
	}

	note, err := s.remote.CreateNote(ctx, params)
	if err != nil {
		if remote.IsNetworkError(err) {
			return s.createNoteLocal(ctx, params, err)
		}
		return rejected[*dto.NoteDTO](err), err
	}
	s.mirrorNote(ctx, note)
	return live(note), nil
}

func (s *Syncer) createNoteLocal(ctx context.Context, params *dto.NoteCreateRequest, reason error) (Result[*dto.NoteDTO], error) {
	note, err := s.local.CreateNote(ctx, params)
	if err != nil {
		return rejected[*dto.NoteDTO](err), err
	}
	s.mirrorBackup(ctx)
	return degraded(note, reason), nil
}

// UpdateNote serves the partial update intent.
func (s *Syncer) UpdateNote(ctx context.Context, id int64, params *dto.NoteUpdateRequest) (Result[*dto.NoteDTO], error) {
	if !s.policy.Online() || id < 0 {
		// A placeholder id is unknown to the server; its update stays
		// local until reconciliation pushes the note.
		return s.updateNoteLocal(ctx, id, params, ErrOffline)
	}

	note, err := s.remote.UpdateNote(ctx, id, params)
	if err != nil {
		if remote.IsNetworkError(err) {
			return s.updateNoteLocal(ctx, id, params, err)
		}
		return rejected[*dto.NoteDTO](err), err
	}
	s.mirrorNote(ctx, note)
	return live(note), nil
}

func (s *Syncer) updateNoteLocal(ctx context.Context, id int64, params *dto.NoteUpdateRequest, reason error) (Result[*dto.NoteDTO], error) {
	note, err := s.local.UpdateNote(ctx, id, params)
	if err != nil {
		// Updating an id the cache does not hold is a local
		// inconsistency; it must fail rather than invent the entity.
		return rejected[*dto.NoteDTO](err), err
	}
	s.mirrorBackup(ctx)
	return degraded(note, reason), nil
}

// DeleteNote serves the soft-delete intent.
func (s *Syncer) DeleteNote(ctx context.Context, id int64) (Result[*dto.NoteDTO], error) {
	if !s.policy.Online() || id < 0 {
		deleted := true
		return s.updateNoteLocal(ctx, id, &dto.NoteUpdateRequest{IsDeleted: &deleted}, ErrOffline)
	}

	note, err := s.remote.DeleteNote(ctx, id)
	if err != nil {
		if remote.IsNetworkError(err) {
			deleted := true
			return s.updateNoteLocal(ctx, id, &dto.NoteUpdateRequest{IsDeleted: &deleted}, err)
		}
		return rejected[*dto.NoteDTO](err), err
	}
	s.mirrorNote(ctx, note)
	return live(note), nil
}

// RestoreNote serves the restore intent.
func (s *Syncer) RestoreNote(ctx context.Context, id int64) (Result[*dto.NoteDTO], error) {
	if !s.policy.Online() || id < 0 {
		deleted := false
		return s.updateNoteLocal(ctx, id, &dto.NoteUpdateRequest{IsDeleted: &deleted}, ErrOffline)
	}

	note, err := s.remote.RestoreNote(ctx, id)
	if err != nil {
		if remote.IsNetworkError(err) {
			deleted := false
			return s.updateNoteLocal(ctx, id, &dto.NoteUpdateRequest{IsDeleted: &deleted}, err)
		}
		return rejected[*dto.NoteDTO](err), err
	}
	s.mirrorNote(ctx, note)
	return live(note), nil
}

// ToggleFavorite serves the favorite intent.
func (s *Syncer) ToggleFavorite(ctx context.Context, id int64) (Result[*dto.NoteDTO], error) {
	if !s.policy.Online() || id < 0 {
		return s.toggleFavoriteLocal(ctx, id, ErrOffline)
	}

	note, err := s.remote.ToggleFavorite(ctx, id)
	if err != nil {
		if remote.IsNetworkError(err) {
			return s.toggleFavoriteLocal(ctx, id, err)
		}
		return rejected[*dto.NoteDTO](err), err
	}
	s.mirrorNote(ctx, note)
	return live(note), nil
}

func (s *Syncer) toggleFavoriteLocal(ctx context.Context, id int64, reason error) (Result[*dto.NoteDTO], error) {
	current, err := s.local.GetNote(ctx, id)
	if err != nil {
		return rejected[*dto.NoteDTO](err), err
	}
	flipped := !current.IsFavorite
	return s.updateNoteLocal(ctx, id, &dto.NoteUpdateRequest{IsFavorite: &flipped}, reason)
}

// ExportNote serves the export intent. Online exports come from the server
// for byte-identical output with the authoritative copy; offline exports
// render from the cache with the same conversion rules.
func (s *Syncer) ExportNote(ctx context.Context, id int64, format string) (Result[*export.Document], error) {
	if !s.policy.Online() || id < 0 {
		return s.exportNoteLocal(ctx, id, format, ErrOffline)
	}

	doc, err := s.remote.ExportNote(ctx, id, format)
	if err != nil {
		if remote.IsNetworkError(err) {
			return s.exportNoteLocal(ctx, id, format, err)
		}
		return rejected[*export.Document](err), err
	}
	return live(doc), nil
}

func (s *Syncer) exportNoteLocal(ctx context.Context, id int64, format string, reason error) (Result[*export.Document], error) {
	note, err := s.local.GetNote(ctx, id)
	if err != nil {
		return rejected[*export.Document](err), err
	}
	doc, err := export.Render(note, format)
	if err != nil {
		return rejected[*export.Document](err), err
	}
	return degraded(doc, reason), nil
}

// AttachTag serves the relation-add intent; it is idempotent on both paths.
func (s *Syncer) AttachTag(ctx context.Context, noteID, tagID int64) (Result[struct{}], error) {
	if !s.policy.Online() || noteID < 0 || tagID < 0 {
		return s.attachTagLocal(ctx, noteID, tagID, ErrOffline)
	}

	if err := s.remote.AttachTag(ctx, noteID, tagID); err != nil {
		if remote.IsNetworkError(err) {
			return s.attachTagLocal(ctx, noteID, tagID, err)
		}
		return rejected[struct{}](err), err
	}
	if note, err := s.remote.GetNote(ctx, noteID); err == nil {
		s.mirrorNote(ctx, note)
	}
	return live(struct{}{}), nil
}

func (s *Syncer) attachTagLocal(ctx context.Context, noteID, tagID int64, reason error) (Result[struct{}], error) {
	if _, err := s.local.GetNote(ctx, noteID); err != nil {
		return rejected[struct{}](err), err
	}
	if err := s.local.AttachTag(ctx, noteID, tagID); err != nil {
		return rejected[struct{}](err), err
	}
	s.mirrorBackup(ctx)
	return degraded(struct{}{}, reason), nil
}

// DetachTag serves the relation-remove intent.
func (s *Syncer) DetachTag(ctx context.Context, noteID, tagID int64) (Result[struct{}], error) {
	if !s.policy.Online() || noteID < 0 || tagID < 0 {
		return s.detachTagLocal(ctx, noteID, tagID, ErrOffline)
	}

	if err := s.remote.DetachTag(ctx, noteID, tagID); err != nil {
		if remote.IsNetworkError(err) {
			return s.detachTagLocal(ctx, noteID, tagID, err)
		}
		return rejected[struct{}](err), err
	}
	if note, err := s.remote.GetNote(ctx, noteID); err == nil {
		s.mirrorNote(ctx, note)
	}
	return live(struct{}{}), nil
}

func (s *Syncer) detachTagLocal(ctx context.Context, noteID, tagID int64, reason error) (Result[struct{}], error) {
	if _, err := s.local.GetNote(ctx, noteID); err != nil {
		return rejected[struct{}](err), err
	}
	if err := s.local.DetachTag(ctx, noteID, tagID); err != nil {
		return rejected[struct{}](err), err
	}
	s.mirrorBackup(ctx)
	return degraded(struct{}{}, reason), nil
}

// GetTagsForNote resolves the current tag set of a note.
func (s *Syncer) GetTagsForNote(ctx context.Context, noteID int64) (Result[[]*dto.TagDTO], error) {
	result, err := s.GetNote(ctx, noteID)
	if err != nil {
		return rejected[[]*dto.TagDTO](err), err
	}
	return Result[[]*dto.TagDTO]{
		Outcome: result.Outcome,
		Value:   result.Value.Tags,
		Reason:  result.Reason,
	}, nil
}

// ListTags serves the tag list intent.
func (s *Syncer) ListTags(ctx context.Context) (Result[[]*dto.TagDTO], error) {
	if !s.policy.Online() {
		return s.listTagsLocal(ctx, ErrOffline)
	}

	tags, err := s.remote.ListTags(ctx)
	if err != nil {
		if remote.IsNetworkError(err) {
			return s.listTagsLocal(ctx, err)
		}
		return rejected[[]*dto.TagDTO](err), err
	}
	return live(tags), nil
}

func (s *Syncer) listTagsLocal(ctx context.Context, reason error) (Result[[]*dto.TagDTO], error) {
	tags, err := s.local.ListTags(ctx)
	if err != nil {
		return rejected[[]*dto.TagDTO](err), err
	}
	return degraded(tags, reason), nil
}

// CreateTag serves the tag create intent, placeholder semantics as notes.
func (s *Syncer) CreateTag(ctx context.Context, params *dto.TagCreateRequest) (Result[*dto.TagDTO], error) {
	if params.Cid == "" {
		params.Cid = util.NewCid()
	}

	if !s.policy.Online() {
		return s.createTagLocal(ctx, params, ErrOffline)
	}

	tag, err := s.remote.CreateTag(ctx, params)
	if err != nil {
		if remote.IsNetworkError(err) {
			return s.createTagLocal(ctx, params, err)
		}
		return rejected[*dto.TagDTO](err), err
	}
	s.mirrorTag(ctx, tag)
	return live(tag), nil
}

func (s *Syncer) createTagLocal(ctx context.Context, params *dto.TagCreateRequest, reason error) (Result[*dto.TagDTO], error) {
	tag, err := s.local.CreateTag(ctx, params)
	if err != nil {
		return rejected[*dto.TagDTO](err), err
	}
	s.mirrorBackup(ctx)
	return degraded(tag, reason), nil
}

// UpdateTag serves the tag update intent.
func (s *Syncer) UpdateTag(ctx context.Context, id int64, params *dto.TagUpdateRequest) (Result[*dto.TagDTO], error) {
	if !s.policy.Online() || id < 0 {
		return s.updateTagLocal(ctx, id, params, ErrOffline)
	}

	tag, err := s.remote.UpdateTag(ctx, id, params)
	if err != nil {
		if remote.IsNetworkError(err) {
			return s.updateTagLocal(ctx, id, params, err)
		}
		return rejected[*dto.TagDTO](err), err
	}
	s.mirrorTag(ctx, tag)
	return live(tag), nil
}

func (s *Syncer) updateTagLocal(ctx context.Context, id int64, params *dto.TagUpdateRequest, reason error) (Result[*dto.TagDTO], error) {
	tag, err := s.local.UpdateTag(ctx, id, params)
	if err != nil {
		return rejected[*dto.TagDTO](err), err
	}
	s.mirrorBackup(ctx)
	return degraded(tag, reason), nil
}

// DeleteTag serves the tag delete intent; the relation cascade happens on
// whichever side executes it.
func (s *Syncer) DeleteTag(ctx context.Context, id int64) (Result[struct{}], error) {
	if !s.policy.Online() || id < 0 {
		return s.deleteTagLocal(ctx, id, ErrOffline)
	}

	if err := s.remote.DeleteTag(ctx, id); err != nil {
		if remote.IsNetworkError(err) {
			return s.deleteTagLocal(ctx, id, err)
		}
		return rejected[struct{}](err), err
	}
	if err := s.local.DeleteTag(ctx, id); err != nil && !errors.Is(err, localstore.ErrNotFound) {
		s.logger.Warn("syncer: cache mirror failed", zap.Int64("tag-id", id), zap.Error(err))
	}
	s.mirrorBackup(ctx)
	return live(struct{}{}), nil
}

func (s *Syncer) deleteTagLocal(ctx context.Context, id int64, reason error) (Result[struct{}], error) {
	if err := s.local.DeleteTag(ctx, id); err != nil {
		return rejected[struct{}](err), err
	}
	s.mirrorBackup(ctx)
	return degraded(struct{}{}, reason), nil
}

// Resync pushes offline-created entities to the server and refreshes the
// cache from the authoritative copy. Placeholder tags go first so notes can
// reference their server-assigned ids.
func (s *Syncer) Resync(ctx context.Context) error {
	tagIDMap, err := s.pushPlaceholderTags(ctx)
	if err != nil {
		return err
	}
	if err := s.pushPlaceholderNotes(ctx, tagIDMap); err != nil {
		return err
	}

	notes, err := s.remote.ListNotes(ctx, true)
	if err != nil {
		return errors.Wrap(err, "syncer: resync")
	}
	tags, err := s.remote.ListTags(ctx)
	if err != nil {
		return errors.Wrap(err, "syncer: resync")
	}
	if err := s.local.ReplaceAll(ctx, notes, tags); err != nil {
		return errors.Wrap(err, "syncer: resync")
	}
	if err := s.local.SetLastSyncedAt(ctx, time.Now()); err != nil {
		return errors.Wrap(err, "syncer: resync")
	}
	s.mirrorBackup(ctx)
	s.logger.Info("syncer: resync complete",
		zap.Int("notes", len(notes)),
		zap.Int("tags", len(tags)),
	)
	return nil
}

// pushPlaceholderTags retries offline tag creates and maps placeholder ids
// to their server-assigned ids.
func (s *Syncer) pushPlaceholderTags(ctx context.Context) (map[int64]int64, error) {
	tags, err := s.local.ListTags(ctx)
	if err != nil {
		return nil, err
	}

	idMap := make(map[int64]int64)
	for _, tag := range tags {
		if tag.ID >= 0 {
			continue
		}
		created, err := s.remote.CreateTag(ctx, &dto.TagCreateRequest{
			Cid:   tag.Cid,
			Name:  tag.Name,
			Color: tag.Color,
		})
		if err != nil {
			if remote.IsNetworkError(err) {
				return nil, errors.Wrap(err, "syncer: resync")
			}
			// The server refused this tag; drop the placeholder rather
			// than retry it forever.
			s.logger.Warn("syncer: placeholder tag rejected",
				zap.String("name", tag.Name),
				zap.Error(err),
			)
			if err := s.local.DeleteTag(ctx, tag.ID); err != nil {
				s.logger.Warn("syncer: placeholder tag cleanup failed", zap.Error(err))
			}
			continue
		}
		idMap[tag.ID] = created.ID
		if err := s.local.UpsertTag(ctx, created); err != nil {
			return nil, err
		}
	}
	return idMap, nil
}

// pushPlaceholderNotes retries offline note creates, carrying each note's
// cid so the server record reconciles the placeholder out of the cache.
func (s *Syncer) pushPlaceholderNotes(ctx context.Context, tagIDMap map[int64]int64) error {
	placeholders, err := s.local.PlaceholderNotes(ctx)
	if err != nil {
		return err
	}

	for _, note := range placeholders {
		localTags, err := s.local.GetTagsForNote(ctx, note.ID)
		if err != nil {
			return err
		}
		tagIDs := make([]int64, 0, len(localTags))
		for _, tag := range localTags {
			id := tag.ID
			if mapped, ok := tagIDMap[id]; ok {
				id = mapped
			}
			if id >= 0 {
				tagIDs = append(tagIDs, id)
			}
		}

		created, err := s.remote.CreateNote(ctx, &dto.NoteCreateRequest{
			Cid:        note.Cid,
			Title:      note.Title,
			Content:    note.Content,
			IsFavorite: note.IsFavorite,
			IsDeleted:  note.IsDeleted,
			TagIDs:     tagIDs,
		})
		if err != nil {
			if remote.IsNetworkError(err) {
				return errors.Wrap(err, "syncer: resync")
			}
			s.logger.Warn("syncer: placeholder note rejected",
				zap.String("title", note.Title),
				zap.Error(err),
			)
			if err := s.local.RemoveNote(ctx, note.ID); err != nil {
				s.logger.Warn("syncer: placeholder note cleanup failed", zap.Error(err))
			}
			continue
		}
		if err := s.local.UpsertNote(ctx, created); err != nil {
			return err
		}
	}
	return nil
}
