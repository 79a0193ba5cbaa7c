// Package backend builds the single configured handle to the database and
// auth service.
package backend

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Ualine055/task-mgt-app/internal/auth"
	"github.com/Ualine055/task-mgt-app/internal/config"
	"github.com/Ualine055/task-mgt-app/internal/db"
	_ "github.com/lib/pq"
)

const driverName = "postgres"

type Client struct {
	DB       *sql.DB
	Tasks    *db.TaskRepository
	Users    *db.UserRepository
	Sessions *db.SessionRepository
	Auth     *auth.Service
}

// New validates the credentials, connects to PostgreSQL and applies the
// schema. Every missing credential is reported in one error.
func New(ctx context.Context, cfg config.Backend, sessionTTL time.Duration) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	conn, err := db.Connect(driverName, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c, err := NewWithDB(ctx, conn, cfg.JWTSecret, sessionTTL)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

// NewWithDB wires the repositories over an open connection.
func NewWithDB(ctx context.Context, conn *sql.DB, secret string, sessionTTL time.Duration) (*Client, error) {
	if err := db.Migrate(ctx, conn); err != nil {
		return nil, err
	}
	users := db.NewUserRepository(conn)
	sessions := db.NewSessionRepository(conn)
	return &Client{
		DB:       conn,
		Tasks:    db.NewTaskRepository(conn),
		Users:    users,
		Sessions: sessions,
		Auth:     auth.NewService(users, sessions, secret, sessionTTL),
	}, nil
}

func (c *Client) Close() error {
	return c.DB.Close()
}
