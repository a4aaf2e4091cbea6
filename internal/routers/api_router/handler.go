// Package api_router holds the REST handlers for the note service.
package api_router

import (
	"context"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/haierkeys/offline-note-sync-service/internal/middleware"
	"github.com/haierkeys/offline-note-sync-service/internal/service"
	"github.com/haierkeys/offline-note-sync-service/pkg/app"
	"github.com/haierkeys/offline-note-sync-service/pkg/code"
	apperrors "github.com/haierkeys/offline-note-sync-service/pkg/errors"
)

// Handler is the shared base for the REST handlers.
type Handler struct {
	svc    *service.Service
	logger *zap.Logger
}

func NewHandler(svc *service.Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// toErrResponse maps service errors onto the response envelope with the
// request trace id attached. Registered code objects carry their own HTTP
// status; a timed-out request context maps to 408; anything else is a 500.
func (h *Handler) toErrResponse(c *gin.Context, caller string, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		apperrors.ErrorResponse(c, code.ErrorRequestTimeout)
		return
	}

	var cerr *code.Code
	if !errors.As(err, &cerr) && !apperrors.IsAppError(err) {
		h.logger.Error(caller,
			zap.String("trace-id", middleware.GetTraceIDFromGin(c)),
			zap.Error(err),
		)
	}
	apperrors.ErrorResponse(c, err)
}

// pathID parses the named int64 path parameter; ok=false means the error
// response was already written.
func (h *Handler) pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		app.NewResponse(c).ToResponse(code.ErrorInvalidParams.WithDetails(name + " must be an integer"))
		return 0, false
	}
	return id, true
}
