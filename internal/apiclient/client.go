// Package apiclient talks to the task service's JSON API. A Client satisfies
// the dashboard's store contract so the terminal client can drive the same
// commands as the web dashboard.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Ualine055/task-mgt-app/internal/db"
	"github.com/Ualine055/task-mgt-app/internal/models"
	"github.com/Ualine055/task-mgt-app/internal/session"
	"github.com/google/uuid"
)

const defaultTimeout = 10 * time.Second

var ErrUnauthorized = errors.New("apiclient: not signed in")

// APIError is a non-2xx answer carrying the server's error message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error status %d", e.Status)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Is maps 401 to ErrUnauthorized and 404 to db.ErrNotFound.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case db.ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     *TokenFile

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTokenFile persists the token across runs.
func WithTokenFile(tf *TokenFile) Option {
	return func(c *Client) { c.tokens = tf }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.tokens != nil {
		if token, err := c.tokens.Load(); err == nil {
			c.token = token
		}
	}
	return c
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) setToken(token string) error {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	if c.tokens == nil {
		return nil
	}
	if token == "" {
		return c.tokens.Remove()
	}
	return c.tokens.Save(token)
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) Register(ctx context.Context, email, password string) error {
	return c.do(ctx, http.MethodPost, "/api/register", credentials{email, password}, nil)
}

// Login signs in and keeps the returned token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/login", credentials{email, password}, &resp); err != nil {
		return err
	}
	return c.setToken(resp.Token)
}

// Logout revokes the server session and forgets the token. The token is
// forgotten even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/logout", nil, nil)
	if terr := c.setToken(""); terr != nil && err == nil {
		err = terr
	}
	if errors.Is(err, ErrUnauthorized) {
		return nil
	}
	return err
}

// Session observes the current sign-in. It returns ErrUnauthorized when no
// valid token is held.
func (c *Client) Session(ctx context.Context) (*session.Session, error) {
	if c.Token() == "" {
		return nil, ErrUnauthorized
	}
	var resp struct {
		UserID    uuid.UUID `json:"user_id"`
		Email     string    `json:"email"`
		SessionID string    `json:"session_id"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/session", nil, &resp); err != nil {
		if errors.Is(err, ErrUnauthorized) {
			c.setToken("")
		}
		return nil, err
	}
	user := models.User{ID: resp.UserID, Email: resp.Email}
	return session.New(user, c.Logout, session.WithID(resp.SessionID))
}

// Insert creates a task for the signed-in owner. The server derives the
// owner from the token.
func (c *Client) Insert(ctx context.Context, owner string, p models.TaskPayload) (string, error) {
	var created models.Task
	err := c.do(ctx, http.MethodPost, "/api/tasks", p, &created)
	if err != nil {
		return "", fmt.Errorf("insert task: %w", err)
	}
	return created.ID, nil
}

// ListByOwner returns the owner's tasks as records carrying the server's
// epoch-milliseconds timestamps.
func (c *Client) ListByOwner(ctx context.Context, owner string) ([]models.TaskRecord, error) {
	var tasks []models.Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks", nil, &tasks); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	records := make([]models.TaskRecord, 0, len(tasks))
	for _, t := range tasks {
		if t.Owner != owner {
			continue
		}
		records = append(records, toRecord(t))
	}
	return records, nil
}

func (c *Client) Update(ctx context.Context, owner, id string, f models.TaskFields) error {
	if err := c.do(ctx, http.MethodPatch, "/api/tasks/"+id, f, nil); err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, owner, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/tasks/"+id, nil, nil); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func toRecord(t models.Task) models.TaskRecord {
	return models.TaskRecord{
		ID:          t.ID,
		Owner:       t.Owner,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Completed:   t.Completed,
		CreatedAt:   models.Millis(t.CreatedAt),
	}
}

// do sends in as JSON and decodes a 2xx body into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var errBody struct {
			Error string `json:"error"`
		}
		if raw, err := io.ReadAll(resp.Body); err == nil && json.Unmarshal(raw, &errBody) == nil {
			apiErr.Message = errBody.Error
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
