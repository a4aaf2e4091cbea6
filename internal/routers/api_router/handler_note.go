package api_router

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/haierkeys/offline-note-sync-service/internal/dto"
	"github.com/haierkeys/offline-note-sync-service/pkg/app"
	"github.com/haierkeys/offline-note-sync-service/pkg/code"
)

type NoteHandler struct {
	*Handler
}

func NewNoteHandler(base *Handler) *NoteHandler {
	return &NoteHandler{Handler: base}
}

// List handles GET /notes?includeDeleted={bool}.
func (h *NoteHandler) List(c *gin.Context) {
	params := &dto.NoteListRequest{}
	response := app.NewResponse(c)
	if valid, errs := app.BindAndValid(c, params); !valid {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()))
		return
	}

	list, err := h.svc.NoteList(c.Request.Context(), params.IncludeDeleted)
	if err != nil {
		h.toErrResponse(c, "api.Note.List", err)
		return
	}
	response.ToResponse(code.Success.WithData(list))
}

// Search handles GET /notes/search?q={string}.
func (h *NoteHandler) Search(c *gin.Context) {
	params := &dto.NoteSearchRequest{}
	response := app.NewResponse(c)
	if valid, errs := app.BindAndValid(c, params); !valid {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()))
		return
	}

	list, err := h.svc.NoteSearch(c.Request.Context(), params.Query)
	if err != nil {
		h.toErrResponse(c, "api.Note.Search", err)
		return
	}
	response.ToResponse(code.Success.WithData(list))
}

// Get handles GET /notes/{id}.
func (h *NoteHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	note, err := h.svc.NoteGet(c.Request.Context(), id)
	if err != nil {
		h.toErrResponse(c, "api.Note.Get", err)
		return
	}
	app.NewResponse(c).ToResponse(code.Success.WithData(note))
}

// Create handles POST /notes and answers 201.
func (h *NoteHandler) Create(c *gin.Context) {
	params := &dto.NoteCreateRequest{}
	response := app.NewResponse(c)
	if err := app.BindJSONStrict(c, params); err != nil {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(err.Error()))
		return
	}

	note, err := h.svc.NoteCreate(c.Request.Context(), params)
	if err != nil {
		h.toErrResponse(c, "api.Note.Create", err)
		return
	}
	response.ToResponse(code.SuccessCreated.WithData(note))
}

// Update handles PUT /notes/{id}. Unknown body fields are rejected so a
// typoed patch fails instead of silently doing nothing.
func (h *NoteHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	params := &dto.NoteUpdateRequest{}
	response := app.NewResponse(c)
	if err := app.BindJSONStrict(c, params); err != nil {
		response.ToResponse(code.ErrorUnknownPatchField.WithDetails(err.Error()))
		return
	}

	note, err := h.svc.NoteUpdate(c.Request.Context(), id, params)
	if err != nil {
		h.toErrResponse(c, "api.Note.Update", err)
		return
	}
	response.ToResponse(code.Success.WithData(note))
}

// Delete handles DELETE /notes/{id} (soft delete).
func (h *NoteHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	note, err := h.svc.NoteSoftDelete(c.Request.Context(), id)
	if err != nil {
		h.toErrResponse(c, "api.Note.Delete", err)
		return
	}
	app.NewResponse(c).ToResponse(code.Success.WithData(note))
}

// Restore handles POST /notes/{id}/restore.
func (h *NoteHandler) Restore(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	note, err := h.svc.NoteRestore(c.Request.Context(), id)
	if err != nil {
		h.toErrResponse(c, "api.Note.Restore", err)
		return
	}
	app.NewResponse(c).ToResponse(code.Success.WithData(note))
}

// ToggleFavorite handles POST /notes/{id}/toggle-favorite.
func (h *NoteHandler) ToggleFavorite(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	note, err := h.svc.NoteToggleFavorite(c.Request.Context(), id)
	if err != nil {
		h.toErrResponse(c, "api.Note.ToggleFavorite", err)
		return
	}
	app.NewResponse(c).ToResponse(code.Success.WithData(note))
}

// Export handles GET /notes/{id}/export?format={text|markdown|json}. The
// rendered document is written raw with an attachment disposition, not
// wrapped in the envelope.
func (h *NoteHandler) Export(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	params := &dto.NoteExportRequest{}
	response := app.NewResponse(c)
	if valid, errs := app.BindAndValid(c, params); !valid {
		response.ToResponse(code.ErrorInvalidExportFormat.WithDetails(errs.ErrorsToString()))
		return
	}

	doc, err := h.svc.NoteExport(c.Request.Context(), id, params.Format)
	if err != nil {
		h.toErrResponse(c, "api.Note.Export", err)
		return
	}

	h.logger.Info("api.Note.Export",
		zap.Int64("note-id", id),
		zap.String("format", params.Format),
		zap.Int("bytes", len(doc.Body)),
	)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.Data(200, doc.ContentType, doc.Body)
}

// AttachTag handles POST /notes/{id}/tags/{tagId}.
func (h *NoteHandler) AttachTag(c *gin.Context) {
	noteID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	tagID, ok := h.pathID(c, "tagId")
	if !ok {
		return
	}

	if err := h.svc.NoteAttachTag(c.Request.Context(), noteID, tagID); err != nil {
		h.toErrResponse(c, "api.Note.AttachTag", err)
		return
	}
	app.NewResponse(c).ToResponse(code.Success)
}

// DetachTag handles DELETE /notes/{id}/tags/{tagId}.
func (h *NoteHandler) DetachTag(c *gin.Context) {
	noteID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	tagID, ok := h.pathID(c, "tagId")
	if !ok {
		return
	}

	if err := h.svc.NoteDetachTag(c.Request.Context(), noteID, tagID); err != nil {
		h.toErrResponse(c, "api.Note.DetachTag", err)
		return
	}
	app.NewResponse(c).ToResponse(code.Success)
}
