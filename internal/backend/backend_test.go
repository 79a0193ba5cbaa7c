package backend

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/Ualine055/task-mgt-app/internal/config"
	"github.com/Ualine055/task-mgt-app/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

func TestNew_ReportsEveryMissingCredential(t *testing.T) {
	_, err := New(context.Background(), config.Backend{Host: "localhost", Database: "tasks"}, time.Hour)
	var missing *config.MissingError
	if !errors.As(err, &missing) {
		t.Fatalf("err = %v, want *config.MissingError", err)
	}
	want := []string{"POSTGRES_PORT", "POSTGRES_USER", "POSTGRES_PASSWORD", "JWT_SECRET"}
	if !reflect.DeepEqual(missing.Names, want) {
		t.Errorf("missing = %v, want %v", missing.Names, want)
	}
}

func TestNewWithDB_WiresStoreAndAuth(t *testing.T) {
	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	conn.SetMaxOpenConns(1)
	ctx := context.Background()

	c, err := NewWithDB(ctx, conn, "0123456789abcdef0123456789abcdef", time.Hour)
	if err != nil {
		t.Fatalf("NewWithDB: %v", err)
	}
	defer c.Close()

	if _, err := c.Auth.Register(ctx, "ann@example.com", "secret1"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	token, _, err := c.Auth.SignIn(ctx, "ann@example.com", "secret1")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	s, err := c.Auth.Open(ctx, token)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if _, err := c.Tasks.Insert(ctx, s.Owner(), models.TaskPayload{Title: "wired", Priority: models.PriorityLow}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	list, err := c.Tasks.ListByOwner(ctx, s.Owner())
	if err != nil || len(list) != 1 {
		t.Fatalf("ListByOwner = %v, %v", list, err)
	}
}
