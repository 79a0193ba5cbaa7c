package apiclient

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Ualine055/task-mgt-app/internal/backend"
	"github.com/Ualine055/task-mgt-app/internal/dashboard"
	"github.com/Ualine055/task-mgt-app/internal/db"
	"github.com/Ualine055/task-mgt-app/internal/handlers"
	"github.com/Ualine055/task-mgt-app/internal/logging"
	"github.com/Ualine055/task-mgt-app/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()
	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	conn.SetMaxOpenConns(1)
	c, err := backend.NewWithDB(context.Background(), conn, "0123456789abcdef0123456789abcdef", time.Hour)
	if err != nil {
		t.Fatalf("backend: %v", err)
	}
	h := handlers.NewHandler(c.Tasks, c.Auth, logging.Discard(), handlers.Options{RateLimit: 100, SessionTTL: time.Hour})
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(func() {
		srv.Close()
		h.Close()
		c.Close()
	})
	return srv
}

func signedIn(t *testing.T, srv *httptest.Server, email string) *Client {
	t.Helper()
	ctx := context.Background()
	c := New(srv.URL)
	if err := c.Register(ctx, email, "secret1"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := c.Login(ctx, email, "secret1"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	return c
}

func TestSession_RequiresLogin(t *testing.T) {
	srv := setupServer(t)
	c := New(srv.URL)

	if _, err := c.Session(context.Background()); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Session without token: %v", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	srv := setupServer(t)
	ctx := context.Background()
	c := New(srv.URL)
	if err := c.Register(ctx, "ann@example.com", "secret1"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	err := c.Login(ctx, "ann@example.com", "wrong-one")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized || apiErr.Message == "" {
		t.Fatalf("Login error = %v", err)
	}
	if c.Token() != "" {
		t.Error("token kept after failed login")
	}
}

func TestSessionAndLogout(t *testing.T) {
	srv := setupServer(t)
	ctx := context.Background()
	c := signedIn(t, srv, "ann@example.com")

	sess, err := c.Session(ctx)
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	if sess.Owner() != "ann@example.com" || sess.ID() == "" {
		t.Fatalf("session owner=%q id=%q", sess.Owner(), sess.ID())
	}

	if err := sess.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if sess.SignedIn() {
		t.Error("session still signed in")
	}
	if c.Token() != "" {
		t.Error("token kept after logout")
	}
	if _, err := c.Session(ctx); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Session after logout: %v", err)
	}
}

func TestStoreRoundTrip(t *testing.T) {
	srv := setupServer(t)
	ctx := context.Background()
	c := signedIn(t, srv, "ann@example.com")
	owner := "ann@example.com"

	id, err := c.Insert(ctx, owner, models.TaskPayload{Title: "Call mum", Priority: models.PriorityHigh})
	if err != nil || id == "" {
		t.Fatalf("Insert: %q %v", id, err)
	}

	records, err := c.ListByOwner(ctx, owner)
	if err != nil || len(records) != 1 {
		t.Fatalf("ListByOwner: %v %v", records, err)
	}
	rec := records[0]
	if rec.ID != id || rec.Title != "Call mum" || rec.CreatedAt.Kind() != models.TimestampMillis || rec.CreatedAt.Resolve(time.Time{}) == 0 {
		t.Errorf("record = %+v", rec)
	}

	if others, _ := c.ListByOwner(ctx, "someone@else.com"); len(others) != 0 {
		t.Errorf("foreign owner sees %d records", len(others))
	}

	done := true
	if err := c.Update(ctx, owner, id, models.TaskFields{Completed: &done}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	records, err = c.ListByOwner(ctx, owner)
	if err != nil || len(records) != 1 || !records[0].Completed || records[0].Title != "Call mum" {
		t.Fatalf("records after update: %+v %v", records, err)
	}

	if err := c.Delete(ctx, owner, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := c.Delete(ctx, owner, id); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("second Delete: %v", err)
	}
	if records, _ := c.ListByOwner(ctx, owner); len(records) != 0 {
		t.Errorf("deleted task still listed: %+v", records)
	}
}

func TestClientDrivesDashboardCommands(t *testing.T) {
	srv := setupServer(t)
	ctx := context.Background()
	c := signedIn(t, srv, "ann@example.com")
	sess, err := c.Session(ctx)
	if err != nil {
		t.Fatalf("Session: %v", err)
	}

	tasks, err := dashboard.Load(ctx, c, sess.Owner(), time.Now())
	if err != nil || len(tasks) != 0 {
		t.Fatalf("Load: %v %v", tasks, err)
	}

	res := dashboard.Execute(ctx, c, sess, dashboard.CreateCommand{Payload: models.TaskPayload{Title: "via api", Priority: models.PriorityLow}}, time.Now())
	if !res.OK() || res.Task.ID == "" || res.Task.Owner != "ann@example.com" {
		t.Fatalf("create result = %+v", res)
	}
	res = dashboard.Execute(ctx, c, sess, dashboard.ToggleCommand{Task: res.Task}, time.Now())
	if !res.OK() || !res.Task.Completed {
		t.Fatalf("toggle result = %+v", res)
	}
}

func TestSubscribe_ReceivesOtherSessionChanges(t *testing.T) {
	srv := setupServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	writer := signedIn(t, srv, "ann@example.com")
	watcher := New(srv.URL)
	if err := watcher.Login(ctx, "ann@example.com", "secret1"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	changes, err := watcher.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	// the hub registers the connection after the upgrade; retry writes until
	// one is observed
	deadline := time.After(3 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case _, ok := <-changes:
			if !ok {
				t.Fatal("feed closed")
			}
			return
		case <-tick.C:
			if _, err := writer.Insert(ctx, "ann@example.com", models.TaskPayload{Title: "ping", Priority: models.PriorityLow}); err != nil {
				t.Fatalf("Insert: %v", err)
			}
		case <-deadline:
			t.Fatal("no change event received")
		}
	}
}

func TestSubscribe_Unauthorized(t *testing.T) {
	srv := setupServer(t)
	c := New(srv.URL)
	if _, err := c.Subscribe(context.Background()); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Subscribe without token: %v", err)
	}
}

func TestTokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")
	tf := NewTokenFile(path)

	if token, err := tf.Load(); err != nil || token != "" {
		t.Fatalf("Load missing = %q %v", token, err)
	}
	if err := tf.Save("abc.def"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("perm = %v, want 0600", perm)
	}
	if token, _ := tf.Load(); token != "abc.def" {
		t.Errorf("Load = %q", token)
	}
	if err := tf.Remove(); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := tf.Remove(); err != nil {
		t.Errorf("second Remove: %v", err)
	}
}

func TestTokenFilePersistsLogin(t *testing.T) {
	srv := setupServer(t)
	ctx := context.Background()
	tf := NewTokenFile(filepath.Join(t.TempDir(), "token"))

	first := New(srv.URL, WithTokenFile(tf))
	if err := first.Register(ctx, "ann@example.com", "secret1"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := first.Login(ctx, "ann@example.com", "secret1"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	second := New(srv.URL, WithTokenFile(tf))
	sess, err := second.Session(ctx)
	if err != nil || sess.Owner() != "ann@example.com" {
		t.Fatalf("restored session: %v", err)
	}
}
