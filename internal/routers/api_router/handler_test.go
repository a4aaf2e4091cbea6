package api_router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/haierkeys/offline-note-sync-service/internal/middleware"
	"github.com/haierkeys/offline-note-sync-service/pkg/app"
	"github.com/haierkeys/offline-note-sync-service/pkg/code"
)

func newErrContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/notes", nil)
	return c, w
}

func decodeErrBody(t *testing.T, w *httptest.ResponseRecorder) app.Res {
	t.Helper()
	var res app.Res
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func TestToErrResponseTimeout(t *testing.T) {
	c, w := newErrContext(t)
	h := NewHandler(nil, zap.NewNop())

	h.toErrResponse(c, "test", context.DeadlineExceeded)

	assert.Equal(t, http.StatusRequestTimeout, w.Code)
	res := decodeErrBody(t, w)
	assert.Equal(t, code.ErrorRequestTimeout.Code(), res.Code)
	assert.False(t, res.Status)
}

func TestToErrResponseRegisteredCode(t *testing.T) {
	c, w := newErrContext(t)
	h := NewHandler(nil, zap.NewNop())

	h.toErrResponse(c, "test", code.ErrorNoteNotFound)

	assert.Equal(t, http.StatusNotFound, w.Code)
	res := decodeErrBody(t, w)
	assert.Equal(t, code.ErrorNoteNotFound.Code(), res.Code)
}

func TestToErrResponseCarriesTraceID(t *testing.T) {
	c, w := newErrContext(t)
	c.Set(middleware.TraceIDKey, "trace-123")
	h := NewHandler(nil, zap.NewNop())

	h.toErrResponse(c, "test", assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	res := decodeErrBody(t, w)
	assert.Equal(t, code.ErrorServerInternal.Code(), res.Code)
	assert.Equal(t, "trace-123", res.TraceID)
	assert.Contains(t, res.Details, assert.AnError.Error())
}
