package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/Ualine055/task-mgt-app/internal/auth"
	"github.com/Ualine055/task-mgt-app/internal/dashboard"
	"github.com/Ualine055/task-mgt-app/internal/db"
	"github.com/Ualine055/task-mgt-app/internal/models"
	"github.com/Ualine055/task-mgt-app/internal/session"
	"github.com/Ualine055/task-mgt-app/internal/validation"
)

const maxBodyBytes = 1 << 20 // 1MB

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func isJSONContentType(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

// readBody checks the content type and validates the body against schema.
// It writes the error response itself and returns nil on failure.
func (h *Handler) readBody(w http.ResponseWriter, r *http.Request, schema string) []byte {
	if !isJSONContentType(r) {
		sendError(w, "Content-Type must be application/json", http.StatusBadRequest)
		return nil
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		sendError(w, "Request body too large", http.StatusRequestEntityTooLarge)
		return nil
	}
	if err := h.Validator.Validate(schema, body); err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			sendError(w, verr.Error(), http.StatusBadRequest)
			return nil
		}
		h.Logger.Error("validate body", "schema", schema, "err", err)
		sendError(w, "Cannot validate request", http.StatusInternalServerError)
		return nil
	}
	return body
}

func (h *Handler) APIRegister(w http.ResponseWriter, r *http.Request) {
	ip := h.clientIP(r)
	if !h.RateLimiter.Allow(ip) {
		sendError(w, "Too many attempts. Please try again later.", http.StatusTooManyRequests)
		return
	}
	body := h.readBody(w, r, validation.Credentials)
	if body == nil {
		return
	}
	var input credentials
	json.Unmarshal(body, &input)

	user, err := h.Auth.Register(r.Context(), input.Email, input.Password)
	if err != nil {
		status, msg := registerError(err)
		if status == http.StatusInternalServerError {
			h.Logger.Error("register", "email", input.Email, "err", err)
		}
		sendError(w, msg, status)
		return
	}
	sendJSON(w, http.StatusCreated, map[string]any{
		"user_id": user.ID,
		"email":   user.Email,
	})
}

func (h *Handler) APILogin(w http.ResponseWriter, r *http.Request) {
	ip := h.clientIP(r)
	if !h.RateLimiter.Allow(ip) {
		h.Logger.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path)
		sendError(w, "Too many login attempts. Please try again later.", http.StatusTooManyRequests)
		return
	}
	body := h.readBody(w, r, validation.Credentials)
	if body == nil {
		return
	}
	var input credentials
	json.Unmarshal(body, &input)

	token, sess, err := h.Auth.SignIn(r.Context(), input.Email, input.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		sendError(w, err.Error(), http.StatusUnauthorized)
		return
	}
	if err != nil {
		h.Logger.Error("sign in", "email", input.Email, "err", err)
		sendError(w, "Cannot create token", http.StatusInternalServerError)
		return
	}
	h.Logger.Info("user logged in", "email", sess.Email)
	sendJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"email": sess.Email,
	})
}

func (h *Handler) APILogout(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if err := sess.Logout(r.Context()); err != nil {
		h.Logger.Error("logout", "owner", sess.Owner(), "err", err)
		sendError(w, "Cannot sign out", http.StatusInternalServerError)
		return
	}
	h.Views.Close(sess.ID())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) APISession(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	user, _ := sess.User()
	sendJSON(w, http.StatusOK, map[string]any{
		"user_id":    user.ID,
		"email":      user.Email,
		"session_id": sess.ID(),
	})
}

func (h *Handler) APIListTasks(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	tasks, err := dashboard.Load(ctx, h.Tasks, sess.Owner(), h.now())
	if err != nil {
		h.Logger.Error("load tasks", "owner", sess.Owner(), "err", err)
		sendError(w, dashboard.ReasonLoad, http.StatusInternalServerError)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	sendJSON(w, http.StatusOK, tasks)
}

// createRequest leaves priority empty when omitted so it can default.
type createRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    models.Priority `json:"priority"`
	Completed   bool            `json:"completed"`
}

func (h *Handler) APICreateTask(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	body := h.readBody(w, r, validation.TaskCreate)
	if body == nil {
		return
	}
	var req createRequest
	json.Unmarshal(body, &req)
	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}
	payload := models.TaskPayload{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Completed:   req.Completed,
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	owner := sess.Owner()
	id, err := h.Tasks.Insert(ctx, owner, payload)
	if err != nil {
		h.Logger.Error("insert task", "owner", owner, "err", err)
		sendError(w, dashboard.ReasonCreate, http.StatusInternalServerError)
		return
	}
	h.changed(owner, sess.ID())
	h.sendTask(ctx, w, http.StatusCreated, owner, id)
}

func (h *Handler) APIUpdateTask(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	body := h.readBody(w, r, validation.TaskPatch)
	if body == nil {
		return
	}
	var fields models.TaskFields
	json.Unmarshal(body, &fields)

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	owner, id := sess.Owner(), r.PathValue("id")
	err := h.Tasks.Update(ctx, owner, id, fields)
	if errors.Is(err, db.ErrNotFound) {
		sendError(w, "Task not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.Logger.Error("update task", "owner", owner, "id", id, "err", err)
		sendError(w, dashboard.ReasonUpdate, http.StatusInternalServerError)
		return
	}
	h.changed(owner, sess.ID())
	h.sendTask(ctx, w, http.StatusOK, owner, id)
}

func (h *Handler) APIDeleteTask(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	owner, id := sess.Owner(), r.PathValue("id")
	err := h.Tasks.Delete(ctx, owner, id)
	if errors.Is(err, db.ErrNotFound) {
		sendError(w, "Task not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.Logger.Error("delete task", "owner", owner, "id", id, "err", err)
		sendError(w, dashboard.ReasonDelete, http.StatusInternalServerError)
		return
	}
	h.changed(owner, sess.ID())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) sendTask(ctx context.Context, w http.ResponseWriter, status int, owner, id string) {
	rec, err := h.Tasks.Get(ctx, owner, id)
	if err != nil {
		h.Logger.Error("get task", "owner", owner, "id", id, "err", err)
		sendError(w, "Cannot read task", http.StatusInternalServerError)
		return
	}
	sendJSON(w, status, models.Task{
		ID:          rec.ID,
		Title:       rec.Title,
		Description: rec.Description,
		Priority:    rec.Priority,
		Completed:   rec.Completed,
		Owner:       rec.Owner,
		CreatedAt:   rec.CreatedAt.Resolve(h.now()),
	})
}

// changed tells web dashboards and websocket clients of the owner, other
// than the originating session, that tasks changed.
func (h *Handler) changed(owner, originSID string) {
	h.Views.Invalidate(owner, originSID)
	h.WSHub.Notify(owner, originSID)
}
