package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/Ualine055/task-mgt-app/internal/dashboard"
	"github.com/Ualine055/task-mgt-app/internal/models"
	"github.com/Ualine055/task-mgt-app/internal/session"
	"github.com/Ualine055/task-mgt-app/internal/taskform"
	"github.com/Ualine055/task-mgt-app/internal/tasklist"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	pageLogin         = "login.html"
	pageRegister      = "register.html"
	pageDashboard     = "dashboard.html"
	pageConfirmDelete = "confirm_delete.html"
)

// parsePages pairs the layout with each page so every page can define its
// own content block.
func parsePages() map[string]*template.Template {
	pages := make(map[string]*template.Template)
	for _, name := range []string{pageLogin, pageRegister, pageDashboard, pageConfirmDelete} {
		pages[name] = template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/"+name))
	}
	return pages
}

type basePage struct {
	Email string
}

type credentialsForm struct {
	Email string
}

type authPage struct {
	basePage
	Error       string
	Form        credentialsForm
	MinPassword int
}

type dashboardPage struct {
	basePage
	Stats      dashboard.Stats
	List       tasklist.List
	Form       *taskform.Form
	EditingID  string
	Priorities []models.Priority
	Alert      string
}

type confirmDeletePage struct {
	basePage
	Prompt string
	Task   models.Task
}

// base fills the greeting from the request's session, when there is one.
func base(r *http.Request) basePage {
	sess, err := session.FromContext(r.Context())
	if err != nil {
		return basePage{}
	}
	return basePage{Email: sess.Owner()}
}

func (h *Handler) render(w http.ResponseWriter, status int, page string, data any) {
	var buf bytes.Buffer
	if err := h.pages[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		h.Logger.Error("render page", "page", page, "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
