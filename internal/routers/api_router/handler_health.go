package api_router

import (
	"github.com/gin-gonic/gin"

	"github.com/haierkeys/offline-note-sync-service/pkg/app"
	"github.com/haierkeys/offline-note-sync-service/pkg/code"
)

type HealthHandler struct {
	name    string
	version string
}

func NewHealthHandler(name, version string) *HealthHandler {
	return &HealthHandler{name: name, version: version}
}

// Check handles GET /health. The offline client probes it to decide
// whether to serve live or degraded results.
func (h *HealthHandler) Check(c *gin.Context) {
	app.NewResponse(c).ToResponse(code.Success.WithData(gin.H{
		"name":    h.name,
		"version": h.version,
	}))
}
