package ui

import (
	"context"
	"errors"
	"strings"

	"github.com/Ualine055/task-mgt-app/internal/apiclient"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func (a *App) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.submitting {
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Register):
		a.registering = !a.registering
		a.loginErr = ""
		return a, nil

	case key.Matches(msg, a.keys.Next), msg.String() == "up", msg.String() == "down":
		a.focusLogin((a.loginFocus + 1) % 2)
		return a, textinput.Blink

	case msg.String() == "enter":
		if a.loginFocus == 0 {
			a.focusLogin(1)
			return a, textinput.Blink
		}
		return a, a.submitLogin()

	case msg.String() == "esc":
		a.cancel()
		return a, tea.Quit
	}

	var cmd tea.Cmd
	if a.loginFocus == 0 {
		a.email, cmd = a.email.Update(msg)
	} else {
		a.password, cmd = a.password.Update(msg)
	}
	return a, cmd
}

func (a *App) focusLogin(i int) {
	a.loginFocus = i
	if i == 0 {
		a.password.Blur()
		a.email.Focus()
		return
	}
	a.email.Blur()
	a.password.Focus()
}

// submitLogin signs in, creating the account first in register mode, then
// observes the new session.
func (a *App) submitLogin() tea.Cmd {
	email := strings.TrimSpace(a.email.Value())
	password := a.password.Value()
	if email == "" || password == "" {
		a.loginErr = "Email and password are required"
		return nil
	}
	a.submitting = true
	a.loginErr = ""
	registering := a.registering

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(a.ctx, callTimeout)
		defer cancel()
		if registering {
			if err := a.backend.Register(ctx, email, password); err != nil {
				return loginFailedMsg{err: friendly(err)}
			}
		}
		if err := a.backend.Login(ctx, email, password); err != nil {
			return loginFailedMsg{err: friendly(err)}
		}
		sess, err := a.backend.Session(ctx)
		if err != nil {
			return loginFailedMsg{err: friendly(err)}
		}
		return sessionMsg{sess: sess}
	}
}

// friendly prefers the server's message over the status line.
func friendly(err error) error {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return errors.New(apiErr.Message)
	}
	return err
}

func (a *App) viewLogin() string {
	s := a.styles
	heading := "Sign in"
	alt := "ctrl+r create an account"
	if a.registering {
		heading = "Create account"
		alt = "ctrl+r back to sign in"
	}

	var b strings.Builder
	b.WriteString(s.Title.Render("Task Manager") + "\n\n")
	b.WriteString(s.Selected.Render(heading) + "\n\n")
	b.WriteString(a.email.View() + "\n")
	b.WriteString(a.password.View() + "\n")
	if a.submitting {
		b.WriteString("\n" + a.spinner.View() + " Signing in...\n")
	}
	if a.loginErr != "" {
		b.WriteString("\n" + s.Error.Render(a.loginErr) + "\n")
	}
	b.WriteString(s.Help.Render("tab next field • enter submit • " + alt + " • esc quit"))

	return lipgloss.NewStyle().Width(contentWidth(a.width)).Render(s.Box.Render(b.String()))
}
