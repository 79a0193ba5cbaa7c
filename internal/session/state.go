package session

import "github.com/Ualine055/task-mgt-app/internal/models"

// State is the observable auth status while the check is in flight.
type State struct {
	User    *models.User
	Loading bool
}

func Loading() State {
	return State{Loading: true}
}

func Resolved(user models.User) State {
	return State{User: &user}
}

func Anonymous() State {
	return State{}
}

// Authenticated is true only once loading has finished with a user.
func (s State) Authenticated() bool {
	return !s.Loading && s.User != nil
}

// NeedsLogin is true once loading has finished without a user.
func (s State) NeedsLogin() bool {
	return !s.Loading && s.User == nil
}
