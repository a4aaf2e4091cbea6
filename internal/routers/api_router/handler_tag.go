package api_router

import (
	"github.com/gin-gonic/gin"

	"github.com/haierkeys/offline-note-sync-service/internal/dto"
	"github.com/haierkeys/offline-note-sync-service/pkg/app"
	"github.com/haierkeys/offline-note-sync-service/pkg/code"
)

type TagHandler struct {
	*Handler
}

func NewTagHandler(base *Handler) *TagHandler {
	return &TagHandler{Handler: base}
}

// List handles GET /tags.
func (h *TagHandler) List(c *gin.Context) {
	list, err := h.svc.TagList(c.Request.Context())
	if err != nil {
		h.toErrResponse(c, "api.Tag.List", err)
		return
	}
	app.NewResponse(c).ToResponse(code.Success.WithData(list))
}

// Get handles GET /tags/{id}.
func (h *TagHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	tag, err := h.svc.TagGet(c.Request.Context(), id)
	if err != nil {
		h.toErrResponse(c, "api.Tag.Get", err)
		return
	}
	app.NewResponse(c).ToResponse(code.Success.WithData(tag))
}

// Create handles POST /tags and answers 201.
func (h *TagHandler) Create(c *gin.Context) {
	params := &dto.TagCreateRequest{}
	response := app.NewResponse(c)
	if err := app.BindJSONStrict(c, params); err != nil {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(err.Error()))
		return
	}

	tag, err := h.svc.TagCreate(c.Request.Context(), params)
	if err != nil {
		h.toErrResponse(c, "api.Tag.Create", err)
		return
	}
	response.ToResponse(code.SuccessCreated.WithData(tag))
}

// Update handles PUT /tags/{id}.
func (h *TagHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	params := &dto.TagUpdateRequest{}
	response := app.NewResponse(c)
	if err := app.BindJSONStrict(c, params); err != nil {
		response.ToResponse(code.ErrorUnknownPatchField.WithDetails(err.Error()))
		return
	}

	tag, err := h.svc.TagUpdate(c.Request.Context(), id, params)
	if err != nil {
		h.toErrResponse(c, "api.Tag.Update", err)
		return
	}
	response.ToResponse(code.Success.WithData(tag))
}

// Delete handles DELETE /tags/{id} and cascades the note relations.
func (h *TagHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.TagDelete(c.Request.Context(), id); err != nil {
		h.toErrResponse(c, "api.Tag.Delete", err)
		return
	}
	app.NewResponse(c).ToResponse(code.Success)
}
