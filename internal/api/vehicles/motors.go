package vehicles

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/inventory-admin/inventory-admin/internal/db/models"
	"github.com/inventory-admin/inventory-admin/internal/db/repositories"
	"github.com/inventory-admin/inventory-admin/internal/telemetry"
	"github.com/inventory-admin/inventory-admin/internal/uploads"
	"github.com/inventory-admin/inventory-admin/internal/validation"
	"github.com/inventory-admin/inventory-admin/internal/web"
)

// MotorHandler serves the motorcycle screens.
type MotorHandler struct {
	motors  *repositories.MotorRepository
	uploads *uploads.Service
	render  *web.Renderer
}

// NewMotorHandler creates a motorcycle handler.
func NewMotorHandler(motors *repositories.MotorRepository, uploadSvc *uploads.Service, render *web.Renderer) *MotorHandler {
	return &MotorHandler{motors: motors, uploads: uploadSvc, render: render}
}

// List renders all motorcycles.
// GET /motors
func (h *MotorHandler) List(c *gin.Context) {
	rows, err := h.motors.List(c.Request.Context())
	if err != nil {
		fail(c, h.render, "listing motors", err)
		return
	}
	h.render.HTML(c, http.StatusOK, "motors_list.html", &web.Data{
		Title:   "Motorcycles",
		Payload: rows,
	})
}

// ShowAdd renders the empty motorcycle form.
// GET /motors/add
func (h *MotorHandler) ShowAdd(c *gin.Context) {
	h.render.HTML(c, http.StatusOK, "motor_form.html", &web.Data{Title: "Add motorcycle"})
}

// Add creates a motorcycle. Both the photo and the warranty document are
// mandatory here; editing later keeps whichever stored file is not replaced.
// POST /motors/add
func (h *MotorHandler) Add(c *gin.Context) {
	form := vehicleFormValues(c)

	verrs, err := validation.ValidateVehicle(toVehicleForm(form), validation.MotorLimits,
		func(name string) (bool, error) {
			return h.motors.NameExists(c.Request.Context(), name, 0)
		})
	if err != nil {
		fail(c, h.render, "validating motor", err)
		return
	}

	photo, warranty, fileErrs, err := h.storeFiles(c, true)
	if err != nil {
		fail(c, h.render, "storing motor files", err)
		return
	}
	verrs.Merge(fileErrs)

	if !verrs.Empty() {
		// Stored files for a row that never materialises.
		removeStored(c.Request.Context(), h.uploads, &photo)
		removeStored(c.Request.Context(), h.uploads, &warranty)
		h.renderForm(c, "Add motorcycle", form, verrs)
		return
	}

	motor := motorFromForm(form)
	motor.Photo = &photo
	motor.Warranty = &warranty
	if err := h.motors.Create(c.Request.Context(), motor); err != nil {
		removeStored(c.Request.Context(), h.uploads, &photo)
		removeStored(c.Request.Context(), h.uploads, &warranty)
		if errors.Is(err, repositories.ErrVehicleNameTaken) {
			verrs.Add(validation.CodeNameTaken, "Name is already taken.")
			h.renderForm(c, "Add motorcycle", form, verrs)
			return
		}
		fail(c, h.render, "creating motor", err)
		return
	}
	h.recordStored(c, photo, warranty)

	flash(c, "success", "Motorcycle added successfully.")
	c.Redirect(http.StatusSeeOther, "/motors")
}

// ShowEdit renders the motorcycle form pre-filled with the stored row.
// GET /motors/:id/edit
func (h *MotorHandler) ShowEdit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	motor, err := h.motors.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, h.render, "loading motor", err)
		return
	}
	if motor == nil {
		c.Status(http.StatusNotFound)
		return
	}

	h.renderForm(c, "Edit motorcycle", motorFormFields(motor), nil)
}

// Edit updates a motorcycle. Empty file fields keep the stored files.
// POST /motors/:id/edit
func (h *MotorHandler) Edit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	existing, err := h.motors.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, h.render, "loading motor", err)
		return
	}
	if existing == nil {
		c.Status(http.StatusNotFound)
		return
	}

	form := vehicleFormValues(c)
	verrs, err := validation.ValidateVehicle(toVehicleForm(form), validation.MotorLimits,
		func(name string) (bool, error) {
			return h.motors.NameExists(c.Request.Context(), name, id)
		})
	if err != nil {
		fail(c, h.render, "validating motor", err)
		return
	}

	photo, warranty, fileErrs, err := h.storeFiles(c, false)
	if err != nil {
		fail(c, h.render, "storing motor files", err)
		return
	}
	verrs.Merge(fileErrs)

	if !verrs.Empty() {
		removeStored(c.Request.Context(), h.uploads, &photo)
		removeStored(c.Request.Context(), h.uploads, &warranty)
		h.renderForm(c, "Edit motorcycle", fillForm(form, motorFormFields(existing)), verrs)
		return
	}

	if err := h.motors.Update(c.Request.Context(), id, motorFromForm(form), photo, warranty); err != nil {
		removeStored(c.Request.Context(), h.uploads, &photo)
		removeStored(c.Request.Context(), h.uploads, &warranty)
		if errors.Is(err, repositories.ErrVehicleNameTaken) {
			verrs.Add(validation.CodeNameTaken, "Name is already taken.")
			h.renderForm(c, "Edit motorcycle", fillForm(form, motorFormFields(existing)), verrs)
			return
		}
		fail(c, h.render, "updating motor", err)
		return
	}
	h.recordStored(c, photo, warranty)
	if photo != "" {
		removeStored(c.Request.Context(), h.uploads, existing.Photo)
	}
	if warranty != "" {
		removeStored(c.Request.Context(), h.uploads, existing.Warranty)
	}

	flash(c, "success", "Motorcycle updated successfully.")
	c.Redirect(http.StatusSeeOther, "/motors")
}

// Delete removes a motorcycle and its stored files.
// POST /motors/:id/delete
func (h *MotorHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	motor, err := h.motors.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, h.render, "loading motor", err)
		return
	}
	if motor == nil {
		c.Status(http.StatusNotFound)
		return
	}

	if err := h.motors.Delete(c.Request.Context(), id); err != nil {
		fail(c, h.render, "deleting motor", err)
		return
	}
	removeStored(c.Request.Context(), h.uploads, motor.Photo)
	removeStored(c.Request.Context(), h.uploads, motor.Warranty)

	flash(c, "success", "Motorcycle deleted successfully.")
	c.Redirect(http.StatusSeeOther, "/motors")
}

// storeFiles handles the photo and warranty parts of a motorcycle submission.
// Validation problems for both files come back in one list so the form shows
// them together.
func (h *MotorHandler) storeFiles(c *gin.Context, required bool) (photo, warranty string, verrs validation.Errors, err error) {
	photoFile, _ := c.FormFile("photo")
	photo, photoErrs, err := h.uploads.Store(c.Request.Context(), photoFile, validation.VehiclePhotoPolicy, required, "motors")
	if err != nil {
		return "", "", nil, err
	}
	verrs.Merge(photoErrs)
	if !photoErrs.Empty() {
		telemetry.UploadsRejectedTotal.WithLabelValues("vehicle_photo").Inc()
	}

	warrantyFile, _ := c.FormFile("warranty")
	warranty, warrantyErrs, err := h.uploads.Store(c.Request.Context(), warrantyFile, validation.WarrantyDocPolicy, required, "warranties")
	if err != nil {
		return "", "", nil, err
	}
	verrs.Merge(warrantyErrs)
	if !warrantyErrs.Empty() {
		telemetry.UploadsRejectedTotal.WithLabelValues("warranty_doc").Inc()
	}
	return photo, warranty, verrs, nil
}

// recordStored counts whichever files this request actually stored.
func (h *MotorHandler) recordStored(c *gin.Context, photo, warranty string) {
	if photo != "" {
		if f, _ := c.FormFile("photo"); f != nil {
			recordUpload("vehicle_photo", f)
		}
	}
	if warranty != "" {
		if f, _ := c.FormFile("warranty"); f != nil {
			recordUpload("warranty_doc", f)
		}
	}
}

func (h *MotorHandler) renderForm(c *gin.Context, title string, form map[string]string, verrs validation.Errors) {
	status := http.StatusOK
	if !verrs.Empty() {
		status = http.StatusUnprocessableEntity
	}
	h.render.HTML(c, status, "motor_form.html", &web.Data{
		Title:  title,
		Errors: verrs.Messages(),
		Form:   form,
	})
}

func motorFormFields(motor *models.Motor) map[string]string {
	return map[string]string{
		"name":        motor.Name,
		"type":        motor.Type,
		"brand":       motor.Brand,
		"chair":       strconv.Itoa(motor.Chair),
		"country":     motor.Country,
		"manufacture": motor.Manufacture,
		"price":       motor.Price,
	}
}

func motorFromForm(form map[string]string) *models.Motor {
	seats, _ := strconv.Atoi(form["chair"])
	return &models.Motor{
		Name:        form["name"],
		Type:        form["type"],
		Brand:       form["brand"],
		Chair:       seats,
		Country:     form["country"],
		Manufacture: form["manufacture"],
		Price:       form["price"],
	}
}
