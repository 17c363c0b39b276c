// Package plants serves the tree inventory screens. Leafs and seeds are plain
// lookup tables; trees reference one of each, and the forms verify those
// references before any row is written.
package plants

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/inventory-admin/inventory-admin/internal/session"
	"github.com/inventory-admin/inventory-admin/internal/validation"
	"github.com/inventory-admin/inventory-admin/internal/web"
)

// fillForm backfills blank submitted fields from the stored row, so a failed
// edit re-renders with the persisted values instead of empty inputs.
func fillForm(form, stored map[string]string) map[string]string {
	for k, v := range stored {
		if validation.Blank(form[k]) {
			form[k] = v
		}
	}
	return form
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Status(http.StatusNotFound)
		return 0, false
	}
	return id, true
}

func flash(c *gin.Context, kind, message string) {
	if sess := session.FromContext(c); sess != nil {
		sess.Flash(kind, message)
	}
}

func fail(c *gin.Context, render *web.Renderer, op string, err error) {
	slog.Error(op, "error", err)
	render.HTML(c, http.StatusInternalServerError, "error.html", &web.Data{Title: "Error"})
}
