package plants

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/inventory-admin/inventory-admin/internal/db/models"
	"github.com/inventory-admin/inventory-admin/internal/db/repositories"
	"github.com/inventory-admin/inventory-admin/internal/validation"
	"github.com/inventory-admin/inventory-admin/internal/web"
)

// TreeHandler serves the tree screens. It also reads the leaf and seed tables
// to populate the reference selects and validate submitted IDs.
type TreeHandler struct {
	trees  *repositories.TreeRepository
	leafs  *repositories.LeafRepository
	seeds  *repositories.SeedRepository
	render *web.Renderer
}

// NewTreeHandler creates a tree handler.
func NewTreeHandler(trees *repositories.TreeRepository, leafs *repositories.LeafRepository, seeds *repositories.SeedRepository, render *web.Renderer) *TreeHandler {
	return &TreeHandler{trees: trees, leafs: leafs, seeds: seeds, render: render}
}

// treeFormPayload feeds the reference selects of the tree form.
type treeFormPayload struct {
	Leafs []*models.Leaf
	Seeds []*models.Seed
}

// List renders all trees with their leaf and seed names resolved.
// GET /trees
func (h *TreeHandler) List(c *gin.Context) {
	rows, err := h.trees.List(c.Request.Context())
	if err != nil {
		fail(c, h.render, "listing trees", err)
		return
	}
	h.render.HTML(c, http.StatusOK, "trees_list.html", &web.Data{
		Title:   "Trees",
		Payload: rows,
	})
}

// ShowAdd renders the empty tree form.
// GET /trees/add
func (h *TreeHandler) ShowAdd(c *gin.Context) {
	h.renderForm(c, "Add tree", nil, nil)
}

// Add creates a tree after verifying its leaf and seed references.
// POST /trees/add
func (h *TreeHandler) Add(c *gin.Context) {
	form := treeFormValues(c)

	verrs, err := h.validate(c, form)
	if err != nil {
		fail(c, h.render, "validating tree", err)
		return
	}
	if !verrs.Empty() {
		h.renderForm(c, "Add tree", form, verrs)
		return
	}

	if err := h.trees.Create(c.Request.Context(), treeFromForm(form)); err != nil {
		fail(c, h.render, "creating tree", err)
		return
	}

	flash(c, "success", "Tree added successfully.")
	c.Redirect(http.StatusSeeOther, "/trees")
}

// ShowEdit renders the tree form pre-filled with the stored row.
// GET /trees/:id/edit
func (h *TreeHandler) ShowEdit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	tree, err := h.trees.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, h.render, "loading tree", err)
		return
	}
	if tree == nil {
		c.Status(http.StatusNotFound)
		return
	}

	h.renderForm(c, "Edit tree", treeFormFields(tree), nil)
}

// Edit updates a tree.
// POST /trees/:id/edit
func (h *TreeHandler) Edit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	existing, err := h.trees.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, h.render, "loading tree", err)
		return
	}
	if existing == nil {
		c.Status(http.StatusNotFound)
		return
	}

	form := treeFormValues(c)
	verrs, err := h.validate(c, form)
	if err != nil {
		fail(c, h.render, "validating tree", err)
		return
	}
	if !verrs.Empty() {
		h.renderForm(c, "Edit tree", fillForm(form, treeFormFields(existing)), verrs)
		return
	}

	if err := h.trees.Update(c.Request.Context(), id, treeFromForm(form)); err != nil {
		fail(c, h.render, "updating tree", err)
		return
	}

	flash(c, "success", "Tree updated successfully.")
	c.Redirect(http.StatusSeeOther, "/trees")
}

// Delete removes a tree.
// POST /trees/:id/delete
func (h *TreeHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.trees.Delete(c.Request.Context(), id); err != nil {
		fail(c, h.render, "deleting tree", err)
		return
	}

	flash(c, "success", "Tree deleted successfully.")
	c.Redirect(http.StatusSeeOther, "/trees")
}

func (h *TreeHandler) validate(c *gin.Context, form map[string]string) (validation.Errors, error) {
	return validation.ValidateTree(validation.TreeForm{
		Name:        form["name"],
		Type:        form["type"],
		LeafID:      form["leaf_id"],
		SeedID:      form["seed_id"],
		Age:         form["age"],
		Description: form["description"],
	},
		func(id int64) (bool, error) { return h.leafs.Exists(c.Request.Context(), id) },
		func(id int64) (bool, error) { return h.seeds.Exists(c.Request.Context(), id) },
	)
}

// renderForm loads the reference tables so the selects always show current
// options, then renders the form.
func (h *TreeHandler) renderForm(c *gin.Context, title string, form map[string]string, verrs validation.Errors) {
	leafs, err := h.leafs.List(c.Request.Context())
	if err != nil {
		fail(c, h.render, "listing leafs", err)
		return
	}
	seeds, err := h.seeds.List(c.Request.Context())
	if err != nil {
		fail(c, h.render, "listing seeds", err)
		return
	}

	status := http.StatusOK
	if !verrs.Empty() {
		status = http.StatusUnprocessableEntity
	}
	h.render.HTML(c, status, "tree_form.html", &web.Data{
		Title:   title,
		Errors:  verrs.Messages(),
		Form:    form,
		Payload: treeFormPayload{Leafs: leafs, Seeds: seeds},
	})
}

func treeFormFields(tree *models.Tree) map[string]string {
	return map[string]string{
		"name":        tree.Name,
		"type":        tree.Type,
		"leaf_id":     strconv.FormatInt(tree.LeafID, 10),
		"seed_id":     strconv.FormatInt(tree.SeedID, 10),
		"age":         tree.Age,
		"description": tree.Description,
	}
}

func treeFormValues(c *gin.Context) map[string]string {
	return map[string]string{
		"name":        c.PostForm("name"),
		"type":        c.PostForm("type"),
		"leaf_id":     c.PostForm("leaf_id"),
		"seed_id":     c.PostForm("seed_id"),
		"age":         c.PostForm("age"),
		"description": c.PostForm("description"),
	}
}

func treeFromForm(form map[string]string) *models.Tree {
	leafID, _ := strconv.ParseInt(form["leaf_id"], 10, 64)
	seedID, _ := strconv.ParseInt(form["seed_id"], 10, 64)
	return &models.Tree{
		Name:        form["name"],
		Type:        form["type"],
		LeafID:      leafID,
		SeedID:      seedID,
		Age:         form["age"],
		Description: form["description"],
	}
}
