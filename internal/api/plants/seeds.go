package plants

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inventory-admin/inventory-admin/internal/db/models"
	"github.com/inventory-admin/inventory-admin/internal/db/repositories"
	"github.com/inventory-admin/inventory-admin/internal/validation"
	"github.com/inventory-admin/inventory-admin/internal/web"
)

// SeedHandler serves the seed screens.
type SeedHandler struct {
	seeds  *repositories.SeedRepository
	render *web.Renderer
}

// NewSeedHandler creates a seed handler.
func NewSeedHandler(seeds *repositories.SeedRepository, render *web.Renderer) *SeedHandler {
	return &SeedHandler{seeds: seeds, render: render}
}

// List renders all seeds.
// GET /seeds
func (h *SeedHandler) List(c *gin.Context) {
	rows, err := h.seeds.List(c.Request.Context())
	if err != nil {
		fail(c, h.render, "listing seeds", err)
		return
	}
	h.render.HTML(c, http.StatusOK, "seeds_list.html", &web.Data{
		Title:   "Seeds",
		Payload: rows,
	})
}

// ShowAdd renders the empty seed form.
// GET /seeds/add
func (h *SeedHandler) ShowAdd(c *gin.Context) {
	h.render.HTML(c, http.StatusOK, "seed_form.html", &web.Data{Title: "Add seed"})
}

// Add creates a seed.
// POST /seeds/add
func (h *SeedHandler) Add(c *gin.Context) {
	name := c.PostForm("name")

	if verrs := validation.ValidateSeed(name); !verrs.Empty() {
		h.renderForm(c, "Add seed", name, verrs)
		return
	}

	if err := h.seeds.Create(c.Request.Context(), &models.Seed{Name: name}); err != nil {
		fail(c, h.render, "creating seed", err)
		return
	}

	flash(c, "success", "Seed added successfully.")
	c.Redirect(http.StatusSeeOther, "/seeds")
}

// ShowEdit renders the seed form pre-filled with the stored row.
// GET /seeds/:id/edit
func (h *SeedHandler) ShowEdit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	seed, err := h.seeds.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, h.render, "loading seed", err)
		return
	}
	if seed == nil {
		c.Status(http.StatusNotFound)
		return
	}

	h.renderForm(c, "Edit seed", seed.Name, nil)
}

// Edit updates a seed.
// POST /seeds/:id/edit
func (h *SeedHandler) Edit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	existing, err := h.seeds.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, h.render, "loading seed", err)
		return
	}
	if existing == nil {
		c.Status(http.StatusNotFound)
		return
	}

	name := c.PostForm("name")
	if verrs := validation.ValidateSeed(name); !verrs.Empty() {
		h.renderForm(c, "Edit seed", name, verrs)
		return
	}

	if err := h.seeds.Update(c.Request.Context(), id, name); err != nil {
		fail(c, h.render, "updating seed", err)
		return
	}

	flash(c, "success", "Seed updated successfully.")
	c.Redirect(http.StatusSeeOther, "/seeds")
}

// Delete removes a seed. The tree foreign key blocks deleting one still in
// use.
// POST /seeds/:id/delete
func (h *SeedHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.seeds.Delete(c.Request.Context(), id); err != nil {
		fail(c, h.render, "deleting seed", err)
		return
	}

	flash(c, "success", "Seed deleted successfully.")
	c.Redirect(http.StatusSeeOther, "/seeds")
}

func (h *SeedHandler) renderForm(c *gin.Context, title, name string, verrs validation.Errors) {
	status := http.StatusOK
	if !verrs.Empty() {
		status = http.StatusUnprocessableEntity
	}
	h.render.HTML(c, status, "seed_form.html", &web.Data{
		Title:  title,
		Errors: verrs.Messages(),
		Form:   map[string]string{"name": name},
	})
}
