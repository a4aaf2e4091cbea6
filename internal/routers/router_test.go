package routers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/haierkeys/offline-note-sync-service/internal/dao"
	"github.com/haierkeys/offline-note-sync-service/internal/dto"
	"github.com/haierkeys/offline-note-sync-service/internal/service"
)

type envelope struct {
	Code    int    `json:"code"`
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
	Details string `json:"details"`
	TraceID string `json:"traceId"`
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	db, err := dao.NewDBEngine(dao.DatabaseConfig{
		Type:        "sqlite",
		Path:        ":memory:",
		AutoMigrate: true,
	})
	require.NoError(t, err)
	d := dao.New(db)
	svc := service.New(dao.NewNoteRepository(d), dao.NewTagRepository(d))
	return NewRouter(Config{AppName: "note-sync", AppVersion: "test"}, svc, zap.NewNop())
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeNote(t *testing.T, w *httptest.ResponseRecorder) *dto.NoteDTO {
	t.Helper()
	var env struct {
		Data *dto.NoteDTO `json:"data"`
	}
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &env))
	require.NotNil(t, env.Data)
	return env.Data
}

func TestRouterNoteLifecycle(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/notes", `{"title":"Trip","content":"<p>Pack bags</p>"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	note := decodeNote(t, w)
	assert.Equal(t, "Trip", note.Title)
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))

	w = do(t, r, http.MethodGet, fmt.Sprintf("/notes/%d", note.ID), "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPut, fmt.Sprintf("/notes/%d", note.ID), `{"content":"<p>updated</p>"}`)
	require.Equal(t, http.StatusOK, w.Code)
	updated := decodeNote(t, w)
	assert.Equal(t, "Trip", updated.Title)
	assert.Equal(t, "<p>updated</p>", updated.Content)

	w = do(t, r, http.MethodDelete, fmt.Sprintf("/notes/%d", note.ID), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeNote(t, w).IsDeleted)

	w = do(t, r, http.MethodPost, fmt.Sprintf("/notes/%d/restore", note.ID), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decodeNote(t, w).IsDeleted)

	w = do(t, r, http.MethodPost, fmt.Sprintf("/notes/%d/toggle-favorite", note.ID), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeNote(t, w).IsFavorite)
}

func TestRouterNoteNotFound(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/notes/9999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	var env envelope
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Status)
	assert.NotZero(t, env.Code)

	// error bodies carry the request trace id
	assert.NotEmpty(t, env.TraceID)
	assert.Equal(t, w.Header().Get("X-Trace-ID"), env.TraceID)
}

func TestRouterUnknownPatchFieldRejected(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/notes", `{"title":"n"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	note := decodeNote(t, w)

	w = do(t, r, http.MethodPut, fmt.Sprintf("/notes/%d", note.ID), `{"titel":"typo"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouterExportMarkdown(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/notes", `{"title":"Trip","content":"<p>Pack bags</p>"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	note := decodeNote(t, w)

	w = do(t, r, http.MethodGet, fmt.Sprintf("/notes/%d/export?format=markdown", note.ID), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "# Trip\n\nPack bags", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), `attachment; filename="Trip.md"`)

	w = do(t, r, http.MethodGet, fmt.Sprintf("/notes/%d/export?format=pdf", note.ID), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouterTagRelations(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/tags", `{"name":"Work"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var tagEnv struct {
		Data *dto.TagDTO `json:"data"`
	}
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &tagEnv))

	w = do(t, r, http.MethodPost, "/notes", `{"title":"n"}`)
	note := decodeNote(t, w)

	path := fmt.Sprintf("/notes/%d/tags/%d", note.ID, tagEnv.Data.ID)
	require.Equal(t, http.StatusOK, do(t, r, http.MethodPost, path, "").Code)
	// idempotent
	require.Equal(t, http.StatusOK, do(t, r, http.MethodPost, path, "").Code)

	w = do(t, r, http.MethodGet, fmt.Sprintf("/notes/%d", note.ID), "")
	got := decodeNote(t, w)
	require.Len(t, got.Tags, 1)

	require.Equal(t, http.StatusOK, do(t, r, http.MethodDelete, path, "").Code)
	w = do(t, r, http.MethodGet, fmt.Sprintf("/notes/%d", note.ID), "")
	assert.Empty(t, decodeNote(t, w).Tags)
}

func TestRouterHealth(t *testing.T) {
	r := newTestRouter(t)
	w := do(t, r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "note-sync")
}

func TestRouterUnroutedPath(t *testing.T) {
	r := newTestRouter(t)
	w := do(t, r, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
