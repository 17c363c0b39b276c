// Package dashboard serves the landing page with the per-entity row counts.
package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inventory-admin/inventory-admin/internal/db/repositories"
	"github.com/inventory-admin/inventory-admin/internal/web"
)

// Handler serves the dashboard.
type Handler struct {
	stats  *repositories.StatsRepository
	render *web.Renderer
}

// NewHandler creates a dashboard handler.
func NewHandler(stats *repositories.StatsRepository, render *web.Renderer) *Handler {
	return &Handler{stats: stats, render: render}
}

// Show renders the dashboard.
// GET /
func (h *Handler) Show(c *gin.Context) {
	stats, err := h.stats.Dashboard(c.Request.Context())
	if err != nil {
		slog.Error("loading dashboard stats", "error", err)
		h.render.HTML(c, http.StatusInternalServerError, "error.html", &web.Data{Title: "Error"})
		return
	}

	h.render.HTML(c, http.StatusOK, "dashboard.html", &web.Data{
		Title:   "Dashboard",
		Payload: stats,
	})
}
