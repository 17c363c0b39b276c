// Package web renders the server-side HTML views. Templates are embedded in
// the binary so the deployment artifact stays a single file.
//
// Each page template defines a "content" block that is executed inside the
// shared layout. Pages are parsed once at startup; a missing or malformed
// template fails construction rather than the first request that hits it.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"

	"github.com/inventory-admin/inventory-admin/internal/db/models"
	"github.com/inventory-admin/inventory-admin/internal/middleware"
	"github.com/inventory-admin/inventory-admin/internal/session"
)

//go:embed templates
var templateFS embed.FS

// Data is the view model shared by every page.
type Data struct {
	// Title is the page <title>.
	Title string

	// Profile is the signed-in user, nil on the anonymous pages.
	Profile *models.Profile

	// Flashes are the one-shot notices queued by the previous request.
	Flashes []session.Flash

	// Errors are validation messages for the form being re-rendered, in
	// the order the checks ran.
	Errors []string

	// Form holds submitted field values so a failed submission re-renders
	// with the user's input intact.
	Form map[string]string

	// Payload carries page-specific data (row lists, the record being
	// edited, dashboard counts).
	Payload any
}

// Renderer holds the parsed template set.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses the embedded layout and page templates.
func NewRenderer() (*Renderer, error) {
	pageFiles, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("globbing page templates: %w", err)
	}
	if len(pageFiles) == 0 {
		return nil, fmt.Errorf("no page templates embedded")
	}

	pages := make(map[string]*template.Template, len(pageFiles))
	for _, file := range pageFiles {
		name := path.Base(file)
		tmpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(templateFS, "templates/layout.html", file)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &Renderer{pages: pages}, nil
}

var funcMap = template.FuncMap{
	// deref renders optional text columns without nil checks in templates.
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
}

// HTML executes the named page inside the layout and writes it with the given
// status. Session flashes and the current profile are pulled from the gin
// context, so handlers only fill in what is specific to their page.
func (r *Renderer) HTML(c *gin.Context, status int, page string, data *Data) {
	if data == nil {
		data = &Data{}
	}
	if data.Form == nil {
		data.Form = map[string]string{}
	}
	if data.Profile == nil {
		data.Profile = middleware.CurrentProfile(c)
	}
	if data.Flashes == nil {
		if sess := session.FromContext(c); sess != nil {
			data.Flashes = sess.PopFlashes()
		}
	}

	tmpl, ok := r.pages[page]
	if !ok {
		c.String(http.StatusInternalServerError, "unknown page: %s", page)
		return
	}

	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(c.Writer, data); err != nil {
		_ = c.Error(err)
	}
}
