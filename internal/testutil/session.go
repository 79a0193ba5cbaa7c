package testutil

import (
	"context"

	"github.com/Ualine055/task-mgt-app/internal/models"
	"github.com/Ualine055/task-mgt-app/internal/session"
)

// NewSession returns a signed-in session whose logout does nothing.
func NewSession(email, sid string) *session.Session {
	s, err := session.New(models.User{Email: email}, func(context.Context) error { return nil }, session.WithID(sid))
	if err != nil {
		panic(err)
	}
	return s
}
