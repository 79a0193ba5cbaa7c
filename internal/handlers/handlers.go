package handlers

import (
	"context"
	"encoding/json"
	"html/template"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Ualine055/task-mgt-app/internal/dashboard"
	"github.com/Ualine055/task-mgt-app/internal/models"
	"github.com/Ualine055/task-mgt-app/internal/session"
	"github.com/Ualine055/task-mgt-app/internal/validation"
	"github.com/charmbracelet/log"
)

const (
	storeTimeout        = 5 * time.Second
	wsUpgradesPerMinute = 60
	maxSweepInterval    = time.Minute
)

// TaskStore is the owner-scoped task collection the handlers write to.
type TaskStore interface {
	dashboard.Store
	Get(ctx context.Context, owner, id string) (models.TaskRecord, error)
}

type Authenticator interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	SignIn(ctx context.Context, email, password string) (string, *models.Session, error)
	Open(ctx context.Context, token string) (*session.Session, error)
}

type Options struct {
	CookieName     string
	SecureCookies  bool
	SessionTTL     time.Duration
	AllowedOrigins []string
	// TrustProxy honours X-Forwarded-For when keying rate limits.
	TrustProxy bool
	// max credential attempts per IP per window
	RateLimit       int
	RateLimitWindow time.Duration
}

type Handler struct {
	Tasks       TaskStore
	Auth        Authenticator
	Views       *dashboard.Views
	Validator   *validation.Validator
	RateLimiter *RateLimiter
	// WSLimiter bounds websocket upgrades separately from credential attempts.
	WSLimiter *RateLimiter
	WSHub     *WSHub
	Logger    *log.Logger

	opts      Options
	pages     map[string]*template.Template
	now       func() time.Time
	done      chan struct{}
	closeOnce sync.Once
}

func NewHandler(tasks TaskStore, auth Authenticator, logger *log.Logger, opts Options) *Handler {
	if opts.CookieName == "" {
		opts.CookieName = "taskapp_session"
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5
	}
	if opts.RateLimitWindow <= 0 {
		opts.RateLimitWindow = 15 * time.Minute
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 24 * time.Hour
	}
	hub := NewWSHub(logger)
	h := &Handler{
		Tasks:       tasks,
		Auth:        auth,
		Views:       dashboard.NewViews(tasks, logger, hub),
		Validator:   validation.MustNew(),
		RateLimiter: NewRateLimiter(opts.RateLimit, opts.RateLimitWindow),
		WSLimiter:   NewRateLimiter(wsUpgradesPerMinute, time.Minute),
		WSHub:       hub,
		Logger:      logger,
		opts:        opts,
		pages:       parsePages(),
		now:         time.Now,
		done:        make(chan struct{}),
	}
	go h.sweepViews()
	return h
}

// sweepViews drops dashboard state of sessions idle for longer than their
// lifetime, which covers expired sessions and discarded cookies.
func (h *Handler) sweepViews() {
	ticker := time.NewTicker(min(h.opts.SessionTTL, maxSweepInterval))
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := h.Views.Sweep(h.opts.SessionTTL); n > 0 {
				h.Logger.Debug("dropped idle dashboards", "count", n)
			}
		case <-h.done:
			return
		}
	}
}

// Close stops background work.
func (h *Handler) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
		h.RateLimiter.Stop()
		h.WSLimiter.Stop()
		h.WSHub.Close()
	})
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.Healthz)

	mux.HandleFunc("GET /login", h.LoginPage)
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("GET /register", h.RegisterPage)
	mux.HandleFunc("POST /register", h.Register)
	mux.HandleFunc("POST /logout", h.webAuth(h.Logout))

	mux.HandleFunc("GET /{$}", h.webAuth(h.Dashboard))
	mux.HandleFunc("POST /tasks", h.webAuth(h.CreateTask))
	mux.HandleFunc("GET /tasks/{id}/edit", h.webAuth(h.EditTask))
	mux.HandleFunc("POST /tasks/{id}", h.webAuth(h.UpdateTask))
	mux.HandleFunc("POST /tasks/{id}/cancel", h.webAuth(h.CancelEdit))
	mux.HandleFunc("POST /tasks/{id}/toggle", h.webAuth(h.ToggleTask))
	mux.HandleFunc("GET /tasks/{id}/delete", h.webAuth(h.ConfirmDelete))
	mux.HandleFunc("POST /tasks/{id}/delete", h.webAuth(h.DeleteTask))
	mux.HandleFunc("POST /alert/dismiss", h.webAuth(h.DismissAlert))

	mux.HandleFunc("POST /api/register", h.APIRegister)
	mux.HandleFunc("POST /api/login", h.APILogin)
	mux.HandleFunc("POST /api/logout", h.apiAuth(h.APILogout))
	mux.HandleFunc("GET /api/session", h.apiAuth(h.APISession))
	mux.HandleFunc("GET /api/tasks", h.apiAuth(h.APIListTasks))
	mux.HandleFunc("POST /api/tasks", h.apiAuth(h.APICreateTask))
	mux.HandleFunc("PATCH /api/tasks/{id}", h.apiAuth(h.APIUpdateTask))
	mux.HandleFunc("DELETE /api/tasks/{id}", h.apiAuth(h.APIDeleteTask))

	mux.HandleFunc("GET /ws", h.HandleWebSocket)

	return mux
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorResponse struct {
	Error string `json:"error"`
}

func sendError(w http.ResponseWriter, message string, status int) {
	sendJSON(w, status, errorResponse{Error: message})
}

func sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// clientIP is the peer address, or the first X-Forwarded-For entry when the
// service runs behind a trusted proxy.
func (h *Handler) clientIP(r *http.Request) string {
	if h.opts.TrustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// checkOrigin allows every origin when no list is configured.
func (h *Handler) checkOrigin(r *http.Request) bool {
	if len(h.opts.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.opts.AllowedOrigins {
		if strings.EqualFold(origin, allowed) {
			return true
		}
	}
	return false
}
