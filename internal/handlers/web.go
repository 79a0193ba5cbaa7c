package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/Ualine055/task-mgt-app/internal/auth"
	"github.com/Ualine055/task-mgt-app/internal/dashboard"
	"github.com/Ualine055/task-mgt-app/internal/models"
	"github.com/Ualine055/task-mgt-app/internal/session"
	"github.com/Ualine055/task-mgt-app/internal/taskform"
	"github.com/Ualine055/task-mgt-app/internal/tasklist"
)

func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if _, err := h.openSession(r); err == nil {
		redirect(w, "/")
		return
	}
	h.render(w, http.StatusOK, pageLogin, authPage{})
}

func (h *Handler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, pageRegister, authPage{MinPassword: auth.MinPasswordLength})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	page := authPage{Form: credentialsForm{Email: email}}

	ip := h.clientIP(r)
	if !h.RateLimiter.Allow(ip) {
		h.Logger.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path)
		page.Error = "Too many login attempts. Please try again later."
		h.render(w, http.StatusTooManyRequests, pageLogin, page)
		return
	}

	token, _, err := h.Auth.SignIn(r.Context(), email, r.FormValue("password"))
	if err != nil {
		status := http.StatusUnauthorized
		page.Error = auth.ErrInvalidCredentials.Error()
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			h.Logger.Error("sign in", "email", email, "err", err)
			status = http.StatusInternalServerError
			page.Error = "Cannot sign in right now"
		}
		h.render(w, status, pageLogin, page)
		return
	}
	h.setCookie(w, token)
	h.Logger.Info("user logged in", "email", email)
	redirect(w, "/")
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	email, password := r.FormValue("email"), r.FormValue("password")
	page := authPage{Form: credentialsForm{Email: email}, MinPassword: auth.MinPasswordLength}

	ip := h.clientIP(r)
	if !h.RateLimiter.Allow(ip) {
		page.Error = "Too many attempts. Please try again later."
		h.render(w, http.StatusTooManyRequests, pageRegister, page)
		return
	}

	if _, err := h.Auth.Register(r.Context(), email, password); err != nil {
		status, msg := registerError(err)
		if status == http.StatusInternalServerError {
			h.Logger.Error("register", "email", email, "err", err)
		}
		page.Error = msg
		h.render(w, status, pageRegister, page)
		return
	}
	token, _, err := h.Auth.SignIn(r.Context(), email, password)
	if err != nil {
		h.Logger.Error("sign in after register", "email", email, "err", err)
		redirect(w, "/login")
		return
	}
	h.setCookie(w, token)
	redirect(w, "/")
}

func registerError(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrWeakPassword):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, auth.ErrEmailTaken):
		return http.StatusConflict, err.Error()
	default:
		return http.StatusInternalServerError, "Cannot create account right now"
	}
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if err := sess.Logout(r.Context()); err != nil {
		h.Logger.Error("logout", "owner", sess.Owner(), "err", err)
	}
	h.Views.Close(sess.ID())
	h.clearCookie(w)
	redirect(w, "/login")
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	state := h.Views.Open(ctx, sess, r.URL.Query().Get("reload") == "1")

	form := taskform.New()
	page := dashboardPage{
		basePage:   base(r),
		Stats:      state.Stats(),
		List:       tasklist.Build(state.Tasks),
		Form:       form,
		Priorities: models.Priorities,
		Alert:      state.Alert,
	}
	if state.Editing != nil {
		form.Edit(*state.Editing)
		page.EditingID = state.Editing.ID
	}
	h.render(w, http.StatusOK, pageDashboard, page)
}

// fillForm copies the posted fields into f. It reports false when the
// priority is not one of the accepted values.
func fillForm(f *taskform.Form, r *http.Request) bool {
	f.Title = r.FormValue("title")
	f.Description = r.FormValue("description")
	if v := r.FormValue("priority"); v != "" {
		p, err := models.ParsePriority(v)
		if err != nil {
			return false
		}
		f.Priority = p
	}
	return true
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	form := taskform.New()
	if !fillForm(form, r) {
		h.Views.SetAlert(sess, "Invalid priority")
		redirect(w, "/")
		return
	}
	payload, err := form.Submit()
	if err != nil {
		h.Views.SetAlert(sess, taskform.EmptyTitleMessage)
		redirect(w, "/")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()
	h.Views.Dispatch(ctx, sess, dashboard.CreateCommand{Payload: payload})
	redirect(w, "/")
}

func (h *Handler) EditTask(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()
	h.Views.Open(ctx, sess, false)
	if !h.Views.BeginEdit(sess, r.PathValue("id")) {
		h.Views.SetAlert(sess, dashboard.ReasonUpdate)
	}
	redirect(w, "/#task-form")
}

func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	task, ok := h.Views.Open(ctx, sess, false).Find(r.PathValue("id"))
	if !ok {
		h.Logger.Warn("update of task not on dashboard", "owner", sess.Owner(), "id", r.PathValue("id"))
		h.Views.SetAlert(sess, dashboard.ReasonUpdate)
		redirect(w, "/")
		return
	}

	form := taskform.New()
	form.Edit(task)
	if !fillForm(form, r) {
		h.Views.SetAlert(sess, "Invalid priority")
		redirect(w, "/")
		return
	}
	payload, err := form.Submit()
	if err != nil {
		h.Views.SetAlert(sess, taskform.EmptyTitleMessage)
		redirect(w, "/")
		return
	}
	h.Views.Dispatch(ctx, sess, dashboard.UpdateCommand{Task: task, Payload: payload})
	redirect(w, "/")
}

func (h *Handler) CancelEdit(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	h.Views.CancelEdit(sess)
	redirect(w, "/")
}

// rowFor finds the dashboard row for the id in the path.
func (h *Handler) rowFor(ctx context.Context, r *http.Request, sess *session.Session) (tasklist.Row, bool) {
	task, ok := h.Views.Open(ctx, sess, false).Find(r.PathValue("id"))
	if !ok {
		return tasklist.Row{}, false
	}
	return tasklist.Build([]models.Task{task}).Rows[0], true
}

func (h *Handler) ToggleTask(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	row, ok := h.rowFor(ctx, r, sess)
	if !ok {
		h.Views.SetAlert(sess, dashboard.ReasonUpdate)
		redirect(w, "/")
		return
	}
	actions := tasklist.Actions{
		OnToggle: func(string, bool) {
			h.Views.Dispatch(ctx, sess, dashboard.ToggleCommand{Task: row.Task})
		},
	}
	actions.Toggle(row)
	redirect(w, "/")
}

func (h *Handler) ConfirmDelete(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	row, ok := h.rowFor(ctx, r, sess)
	if !ok {
		redirect(w, "/")
		return
	}
	h.render(w, http.StatusOK, pageConfirmDelete, confirmDeletePage{
		basePage: base(r),
		Prompt:   tasklist.DeletePrompt,
		Task:     row.Task,
	})
}

// DeleteTask only deletes when the confirmation form was submitted.
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	row, ok := h.rowFor(ctx, r, sess)
	if !ok {
		h.Views.SetAlert(sess, dashboard.ReasonDelete)
		redirect(w, "/")
		return
	}
	actions := tasklist.Actions{
		OnDelete: func(id string) {
			h.Views.Dispatch(ctx, sess, dashboard.DeleteCommand{ID: id})
		},
	}
	actions.Delete(row, func(string) bool { return r.FormValue("confirm") == "yes" })
	redirect(w, "/")
}

func (h *Handler) DismissAlert(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	h.Views.DismissAlert(sess)
	redirect(w, "/")
}
