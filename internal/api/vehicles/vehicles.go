// Package vehicles serves the car and motorcycle screens. The two entities
// share one form shape and validation path; motorcycles additionally carry a
// warranty document.
package vehicles

import (
	"context"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/inventory-admin/inventory-admin/internal/session"
	"github.com/inventory-admin/inventory-admin/internal/telemetry"
	"github.com/inventory-admin/inventory-admin/internal/uploads"
	"github.com/inventory-admin/inventory-admin/internal/validation"
	"github.com/inventory-admin/inventory-admin/internal/web"
)

// vehicleFormValues pulls the shared form fields from the request. The seat
// field posts as "chair", the column name the tables have always used.
func vehicleFormValues(c *gin.Context) map[string]string {
	return map[string]string{
		"name":        c.PostForm("name"),
		"type":        c.PostForm("type"),
		"brand":       c.PostForm("brand"),
		"chair":       c.PostForm("chair"),
		"country":     c.PostForm("country"),
		"manufacture": c.PostForm("manufacture"),
		"price":       c.PostForm("price"),
	}
}

func toVehicleForm(form map[string]string) validation.VehicleForm {
	return validation.VehicleForm{
		Name:        form["name"],
		Type:        form["type"],
		Brand:       form["brand"],
		Seats:       form["chair"],
		Country:     form["country"],
		Manufacture: form["manufacture"],
		Price:       form["price"],
	}
}

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

// recordUpload counts a stored file against its metric kind.
func recordUpload(kind string, file *multipart.FileHeader) {
	telemetry.UploadsTotal.WithLabelValues(kind).Inc()
	telemetry.UploadBytesTotal.WithLabelValues(kind).Add(float64(file.Size))
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

// removeStored best-effort deletes a file a row no longer references. A
// failure only leaks the file, so it is logged and swallowed.
func removeStored(ctx context.Context, svc *uploads.Service, path *string) {
	if path == nil || *path == "" {
		return
	}
	if err := svc.Remove(ctx, *path); err != nil {
		slog.Warn("removing superseded file", "path", *path, "error", err)
	}
}

func fail(c *gin.Context, render *web.Renderer, op string, err error) {
	slog.Error(op, "error", err)
	render.HTML(c, http.StatusInternalServerError, "error.html", &web.Data{Title: "Error"})
}
