package session

import (
	"context"
	"errors"
	"testing"

	"github.com/Ualine055/task-mgt-app/internal/models"
)

func noopLogout(context.Context) error { return nil }

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		user    models.User
		logout  LogoutFunc
		wantErr error
	}{
		{"valid", models.User{Email: "ann@example.com"}, noopLogout, nil},
		{"missing user", models.User{}, noopLogout, ErrNoUser},
		{"missing logout", models.User{Email: "ann@example.com"}, nil, ErrNoLogout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.user, tt.logout)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil && s != nil {
				t.Error("expected nil session on error")
			}
		})
	}
}

func TestSession_LogoutClearsUserOnce(t *testing.T) {
	calls := 0
	s, err := New(models.User{Email: "ann@example.com"}, func(context.Context) error {
		calls++
		return nil
	}, WithID("sid-1"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.ID() != "sid-1" || s.Owner() != "ann@example.com" || !s.SignedIn() {
		t.Fatalf("unexpected session: id=%q owner=%q", s.ID(), s.Owner())
	}

	for i := 0; i < 2; i++ {
		if err := s.Logout(context.Background()); err != nil {
			t.Fatalf("Logout #%d: %v", i+1, err)
		}
	}
	if calls != 1 {
		t.Errorf("logout hook called %d times, want 1", calls)
	}
	if _, ok := s.User(); ok {
		t.Error("user still present after logout")
	}
	if s.Owner() != "" {
		t.Errorf("owner = %q after logout", s.Owner())
	}
}

func TestSession_LogoutFailureKeepsUser(t *testing.T) {
	boom := errors.New("boom")
	s, _ := New(models.User{Email: "ann@example.com"}, func(context.Context) error { return boom })
	if err := s.Logout(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if !s.SignedIn() {
		t.Error("user cleared despite failed logout")
	}
}

func TestFromContext(t *testing.T) {
	if _, err := FromContext(context.Background()); !errors.Is(err, ErrOutsideProvider) {
		t.Fatalf("err = %v, want ErrOutsideProvider", err)
	}

	s, _ := New(models.User{Email: "ann@example.com"}, noopLogout)
	got, err := FromContext(WithContext(context.Background(), s))
	if err != nil || got != s {
		t.Fatalf("FromContext = %v, %v", got, err)
	}
}

func TestMustFromContext_Panics(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrOutsideProvider) {
			t.Fatalf("recovered %v, want ErrOutsideProvider", r)
		}
	}()
	MustFromContext(context.Background())
}

func TestState(t *testing.T) {
	if st := Loading(); st.Authenticated() || st.NeedsLogin() {
		t.Error("loading state must be neither authenticated nor needing login")
	}
	if st := Anonymous(); !st.NeedsLogin() {
		t.Error("anonymous state should need login")
	}
	if st := Resolved(models.User{Email: "ann@example.com"}); !st.Authenticated() {
		t.Error("resolved state should be authenticated")
	}
}
