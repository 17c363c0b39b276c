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

// CarHandler serves the car screens.
type CarHandler struct {
	cars    *repositories.CarRepository
	uploads *uploads.Service
	render  *web.Renderer
}

// NewCarHandler creates a car handler.
func NewCarHandler(cars *repositories.CarRepository, uploadSvc *uploads.Service, render *web.Renderer) *CarHandler {
	return &CarHandler{cars: cars, uploads: uploadSvc, render: render}
}

// List renders all cars.
// GET /cars
func (h *CarHandler) List(c *gin.Context) {
	rows, err := h.cars.List(c.Request.Context())
	if err != nil {
		fail(c, h.render, "listing cars", err)
		return
	}
	h.render.HTML(c, http.StatusOK, "cars_list.html", &web.Data{
		Title:   "Cars",
		Payload: rows,
	})
}

// ShowAdd renders the empty car form.
// GET /cars/add
func (h *CarHandler) ShowAdd(c *gin.Context) {
	h.render.HTML(c, http.StatusOK, "car_form.html", &web.Data{Title: "Add car"})
}

// Add creates a car. The photo is mandatory here; editing later keeps the
// stored one unless a replacement is uploaded.
// POST /cars/add
func (h *CarHandler) Add(c *gin.Context) {
	form := vehicleFormValues(c)

	verrs, err := validation.ValidateVehicle(toVehicleForm(form), validation.CarLimits,
		func(name string) (bool, error) {
			return h.cars.NameExists(c.Request.Context(), name, 0)
		})
	if err != nil {
		fail(c, h.render, "validating car", err)
		return
	}

	file, _ := c.FormFile("photo")
	photo, uploadErrs, err := h.uploads.Store(c.Request.Context(), file, validation.VehiclePhotoPolicy, true, "cars")
	if err != nil {
		fail(c, h.render, "storing car photo", err)
		return
	}
	verrs.Merge(uploadErrs)
	if !uploadErrs.Empty() {
		telemetry.UploadsRejectedTotal.WithLabelValues("vehicle_photo").Inc()
	}

	if !verrs.Empty() {
		// The photo may already be on disk; the row it was meant for
		// never materialises.
		removeStored(c.Request.Context(), h.uploads, &photo)
		h.renderForm(c, "Add car", form, verrs)
		return
	}

	car := carFromForm(form)
	car.Photo = &photo
	if err := h.cars.Create(c.Request.Context(), car); err != nil {
		removeStored(c.Request.Context(), h.uploads, &photo)
		if errors.Is(err, repositories.ErrVehicleNameTaken) {
			verrs.Add(validation.CodeNameTaken, "Name is already taken.")
			h.renderForm(c, "Add car", form, verrs)
			return
		}
		fail(c, h.render, "creating car", err)
		return
	}
	recordUpload("vehicle_photo", file)

	flash(c, "success", "Car added successfully.")
	c.Redirect(http.StatusSeeOther, "/cars")
}

// ShowEdit renders the car form pre-filled with the stored row.
// GET /cars/:id/edit
func (h *CarHandler) ShowEdit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	car, err := h.cars.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, h.render, "loading car", err)
		return
	}
	if car == nil {
		c.Status(http.StatusNotFound)
		return
	}

	h.renderForm(c, "Edit car", carFormFields(car), nil)
}

// Edit updates a car. An empty photo field keeps the stored file.
// POST /cars/:id/edit
func (h *CarHandler) Edit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	existing, err := h.cars.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, h.render, "loading car", err)
		return
	}
	if existing == nil {
		c.Status(http.StatusNotFound)
		return
	}

	form := vehicleFormValues(c)
	verrs, err := validation.ValidateVehicle(toVehicleForm(form), validation.CarLimits,
		func(name string) (bool, error) {
			return h.cars.NameExists(c.Request.Context(), name, id)
		})
	if err != nil {
		fail(c, h.render, "validating car", err)
		return
	}

	file, _ := c.FormFile("photo")
	photo, uploadErrs, err := h.uploads.Store(c.Request.Context(), file, validation.VehiclePhotoPolicy, false, "cars")
	if err != nil {
		fail(c, h.render, "storing car photo", err)
		return
	}
	verrs.Merge(uploadErrs)
	if !uploadErrs.Empty() {
		telemetry.UploadsRejectedTotal.WithLabelValues("vehicle_photo").Inc()
	}

	if !verrs.Empty() {
		removeStored(c.Request.Context(), h.uploads, &photo)
		h.renderForm(c, "Edit car", fillForm(form, carFormFields(existing)), verrs)
		return
	}

	if err := h.cars.Update(c.Request.Context(), id, carFromForm(form), photo); err != nil {
		removeStored(c.Request.Context(), h.uploads, &photo)
		if errors.Is(err, repositories.ErrVehicleNameTaken) {
			verrs.Add(validation.CodeNameTaken, "Name is already taken.")
			h.renderForm(c, "Edit car", fillForm(form, carFormFields(existing)), verrs)
			return
		}
		fail(c, h.render, "updating car", err)
		return
	}
	if file != nil && photo != "" {
		recordUpload("vehicle_photo", file)
		removeStored(c.Request.Context(), h.uploads, existing.Photo)
	}

	flash(c, "success", "Car updated successfully.")
	c.Redirect(http.StatusSeeOther, "/cars")
}

// Delete removes a car and its stored photo.
// POST /cars/:id/delete
func (h *CarHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	car, err := h.cars.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, h.render, "loading car", err)
		return
	}
	if car == nil {
		c.Status(http.StatusNotFound)
		return
	}

	if err := h.cars.Delete(c.Request.Context(), id); err != nil {
		fail(c, h.render, "deleting car", err)
		return
	}
	removeStored(c.Request.Context(), h.uploads, car.Photo)

	flash(c, "success", "Car deleted successfully.")
	c.Redirect(http.StatusSeeOther, "/cars")
}

func (h *CarHandler) renderForm(c *gin.Context, title string, form map[string]string, verrs validation.Errors) {
	status := http.StatusOK
	if !verrs.Empty() {
		status = http.StatusUnprocessableEntity
	}
	h.render.HTML(c, status, "car_form.html", &web.Data{
		Title:  title,
		Errors: verrs.Messages(),
		Form:   form,
	})
}

// carFormFields maps a stored row back to form field values, for pre-filling
// the edit form and for backfilling blank fields on a failed edit.
func carFormFields(car *models.Car) map[string]string {
	return map[string]string{
		"name":        car.Name,
		"type":        car.Type,
		"brand":       car.Brand,
		"chair":       strconv.Itoa(car.Chair),
		"country":     car.Country,
		"manufacture": car.Manufacture,
		"price":       car.Price,
	}
}

func carFromForm(form map[string]string) *models.Car {
	seats, _ := strconv.Atoi(form["chair"])
	return &models.Car{
		Name:        form["name"],
		Type:        form["type"],
		Brand:       form["brand"],
		Chair:       seats,
		Country:     form["country"],
		Manufacture: form["manufacture"],
		Price:       form["price"],
	}
}
