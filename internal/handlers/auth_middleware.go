package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Ualine055/task-mgt-app/internal/auth"
	"github.com/Ualine055/task-mgt-app/internal/session"
)

// sessionHandler receives the signed-in session explicitly.
type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *session.Session)

// bearerToken reads the Authorization header, then the session cookie.
func (h *Handler) bearerToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if c, err := r.Cookie(h.opts.CookieName); err == nil {
		return c.Value
	}
	return ""
}

func (h *Handler) openSession(r *http.Request) (*session.Session, error) {
	token := h.bearerToken(r)
	if token == "" {
		return nil, session.ErrNoUser
	}
	return h.Auth.Open(r.Context(), token)
}

// apiAuth answers 401 JSON when the request carries no valid session.
func (h *Handler) apiAuth(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := h.openSession(r)
		switch {
		case errors.Is(err, session.ErrNoUser):
			sendError(w, "Missing Authorization header", http.StatusUnauthorized)
			return
		case errors.Is(err, auth.ErrSessionExpired):
			sendError(w, auth.ErrSessionExpired.Error(), http.StatusUnauthorized)
			return
		case err != nil:
			sendError(w, "Invalid token", http.StatusUnauthorized)
			return
		}
		next(w, r.WithContext(session.WithContext(r.Context(), sess)), sess)
	}
}

// webAuth redirects visitors without a valid session to the login page and
// writes no body.
func (h *Handler) webAuth(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := h.openSession(r)
		if err != nil {
			if !errors.Is(err, session.ErrNoUser) {
				h.clearCookie(w)
			}
			redirect(w, "/login")
			return
		}
		next(w, r.WithContext(session.WithContext(r.Context(), sess)), sess)
	}
}

// redirect sends a 303 without the body http.Redirect adds for GET.
func redirect(w http.ResponseWriter, location string) {
	w.Header().Set("Location", location)
	w.WriteHeader(http.StatusSeeOther)
}

func (h *Handler) setCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.opts.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.opts.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.opts.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
