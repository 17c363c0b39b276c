package plants

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inventory-admin/inventory-admin/internal/db/models"
	"github.com/inventory-admin/inventory-admin/internal/db/repositories"
	"github.com/inventory-admin/inventory-admin/internal/validation"
	"github.com/inventory-admin/inventory-admin/internal/web"
)

// LeafHandler serves the leaf screens.
type LeafHandler struct {
	leafs  *repositories.LeafRepository
	render *web.Renderer
}

// NewLeafHandler creates a leaf handler.
func NewLeafHandler(leafs *repositories.LeafRepository, render *web.Renderer) *LeafHandler {
	return &LeafHandler{leafs: leafs, render: render}
}

// List renders all leafs.
// GET /leafs
func (h *LeafHandler) List(c *gin.Context) {
	rows, err := h.leafs.List(c.Request.Context())
	if err != nil {
		fail(c, h.render, "listing leafs", err)
		return
	}
	h.render.HTML(c, http.StatusOK, "leafs_list.html", &web.Data{
		Title:   "Leafs",
		Payload: rows,
	})
}

// ShowAdd renders the empty leaf form.
// GET /leafs/add
func (h *LeafHandler) ShowAdd(c *gin.Context) {
	h.render.HTML(c, http.StatusOK, "leaf_form.html", &web.Data{Title: "Add leaf"})
}

// Add creates a leaf.
// POST /leafs/add
func (h *LeafHandler) Add(c *gin.Context) {
	form := leafFormValues(c)

	if verrs := validation.ValidateLeaf(form["name"], form["type"], form["age"], form["description"]); !verrs.Empty() {
		h.renderForm(c, "Add leaf", form, verrs)
		return
	}

	if err := h.leafs.Create(c.Request.Context(), leafFromForm(form)); err != nil {
		fail(c, h.render, "creating leaf", err)
		return
	}

	flash(c, "success", "Leaf added successfully.")
	c.Redirect(http.StatusSeeOther, "/leafs")
}

// ShowEdit renders the leaf form pre-filled with the stored row.
// GET /leafs/:id/edit
func (h *LeafHandler) ShowEdit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	leaf, err := h.leafs.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, h.render, "loading leaf", err)
		return
	}
	if leaf == nil {
		c.Status(http.StatusNotFound)
		return
	}

	h.renderForm(c, "Edit leaf", leafFormFields(leaf), nil)
}

// Edit updates a leaf.
// POST /leafs/:id/edit
func (h *LeafHandler) Edit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	existing, err := h.leafs.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, h.render, "loading leaf", err)
		return
	}
	if existing == nil {
		c.Status(http.StatusNotFound)
		return
	}

	form := leafFormValues(c)
	if verrs := validation.ValidateLeaf(form["name"], form["type"], form["age"], form["description"]); !verrs.Empty() {
		h.renderForm(c, "Edit leaf", fillForm(form, leafFormFields(existing)), verrs)
		return
	}

	if err := h.leafs.Update(c.Request.Context(), id, leafFromForm(form)); err != nil {
		fail(c, h.render, "updating leaf", err)
		return
	}

	flash(c, "success", "Leaf updated successfully.")
	c.Redirect(http.StatusSeeOther, "/leafs")
}

// Delete removes a leaf. Trees referencing it keep the schema from letting
// the delete through; that surfaces as a storage fault rather than a silent
// orphan.
// POST /leafs/:id/delete
func (h *LeafHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.leafs.Delete(c.Request.Context(), id); err != nil {
		fail(c, h.render, "deleting leaf", err)
		return
	}

	flash(c, "success", "Leaf deleted successfully.")
	c.Redirect(http.StatusSeeOther, "/leafs")
}

func (h *LeafHandler) renderForm(c *gin.Context, title string, form map[string]string, verrs validation.Errors) {
	status := http.StatusOK
	if !verrs.Empty() {
		status = http.StatusUnprocessableEntity
	}
	h.render.HTML(c, status, "leaf_form.html", &web.Data{
		Title:  title,
		Errors: verrs.Messages(),
		Form:   form,
	})
}

func leafFormValues(c *gin.Context) map[string]string {
	return map[string]string{
		"name":        c.PostForm("name"),
		"type":        c.PostForm("type"),
		"age":         c.PostForm("age"),
		"description": c.PostForm("description"),
	}
}

func leafFormFields(leaf *models.Leaf) map[string]string {
	return map[string]string{
		"name":        leaf.Name,
		"type":        leaf.Type,
		"age":         leaf.Age,
		"description": leaf.Description,
	}
}

func leafFromForm(form map[string]string) *models.Leaf {
	return &models.Leaf{
		Name:        form["name"],
		Type:        form["type"],
		Age:         form["age"],
		Description: form["description"],
	}
}
