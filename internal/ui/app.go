// Package ui is the terminal dashboard: a login screen gated on the session
// check, and a dashboard screen with stats, the task form and the task list.
package ui

import (
	"context"
	"errors"
	"time"

	"github.com/Ualine055/task-mgt-app/internal/dashboard"
	"github.com/Ualine055/task-mgt-app/internal/models"
	"github.com/Ualine055/task-mgt-app/internal/session"
	"github.com/Ualine055/task-mgt-app/internal/taskform"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
)

const callTimeout = 10 * time.Second

// Backend is the remote side of the terminal client.
type Backend interface {
	dashboard.Store
	Session(ctx context.Context) (*session.Session, error)
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, email, password string) error
}

// Subscriber is implemented by backends that push change notifications.
type Subscriber interface {
	Subscribe(ctx context.Context) (<-chan struct{}, error)
}

type screen int

const (
	screenLoading screen = iota
	screenLogin
	screenDashboard
)

type mode int

const (
	modeList mode = iota
	modeForm
	modeConfirm
)

// form field focus order
const (
	fieldTitle = iota
	fieldDescription
	fieldPriority
	fieldCount
)

type (
	sessionMsg struct {
		sess *session.Session
		err  error
	}
	loginFailedMsg struct{ err error }
	loadedMsg      struct {
		owner string
		tasks []models.Task
		err   error
	}
	resultMsg    struct{ res dashboard.Result }
	loggedOutMsg struct{ err error }
	changedMsg   struct{ changes <-chan struct{} }
	feedMsg      struct{ changes <-chan struct{} }
)

type App struct {
	backend Backend
	logger  *log.Logger
	styles  *Styles
	keys    KeyMap
	ctx     context.Context
	cancel  context.CancelFunc
	now     func() time.Time

	screen  screen
	auth    session.State
	sess    *session.Session
	spinner spinner.Model
	width   int
	height  int

	// login screen
	email       textinput.Model
	password    textinput.Model
	loginFocus  int
	registering bool
	loginErr    string
	submitting  bool

	// dashboard screen
	state       dashboard.State
	loading     bool
	cursor      int
	mode        mode
	form        *taskform.Form
	title       textinput.Model
	description textarea.Model
	formFocus   int
	stopFeed    context.CancelFunc
}

func NewApp(backend Backend, logger *log.Logger) *App {
	ctx, cancel := context.WithCancel(context.Background())

	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 254
	email.Prompt = "Email: "

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 72
	password.Prompt = "Password: "
	password.EchoMode = textinput.EchoPassword

	title := textinput.New()
	title.Placeholder = "What needs to be done?"
	title.CharLimit = 200
	title.Prompt = ""

	description := textarea.New()
	description.Placeholder = "Description"
	description.CharLimit = 2000
	description.ShowLineNumbers = false
	description.SetHeight(3)
	description.SetWidth(50)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &App{
		backend:     backend,
		logger:      logger,
		styles:      NewStyles(),
		keys:        DefaultKeyMap(),
		ctx:         ctx,
		cancel:      cancel,
		now:         time.Now,
		screen:      screenLoading,
		auth:        session.Loading(),
		spinner:     sp,
		email:       email,
		password:    password,
		form:        taskform.New(),
		title:       title,
		description: description,
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.checkSession)
}

// Auth reports the current sign-in status.
func (a *App) Auth() session.State {
	return a.auth
}

// State returns the dashboard state shown on screen.
func (a *App) State() dashboard.State {
	return a.state
}

func (a *App) checkSession() tea.Msg {
	ctx, cancel := context.WithTimeout(a.ctx, callTimeout)
	defer cancel()
	sess, err := a.backend.Session(ctx)
	return sessionMsg{sess: sess, err: err}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.description.SetWidth(min(contentWidth(a.width)-6, 60))
		return a, nil

	case spinner.TickMsg:
		if a.auth.Loading || a.loading {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case sessionMsg:
		return a, a.onSession(msg)

	case loginFailedMsg:
		a.submitting = false
		a.loginErr = msg.err.Error()
		return a, nil

	case loadedMsg:
		if a.sess == nil || msg.owner != a.sess.Owner() {
			return a, nil
		}
		a.loading = false
		if msg.err != nil {
			a.logger.Error("load tasks", "owner", msg.owner, "err", msg.err)
			a.state.Alert = dashboard.ReasonLoad
			return a, nil
		}
		editing := a.state.Editing != nil
		a.state = dashboard.Refresh(a.state, msg.tasks)
		if editing && a.state.Editing == nil && a.mode == modeForm {
			a.closeForm()
		}
		a.clampCursor()
		return a, nil

	case resultMsg:
		return a, a.onResult(msg.res)

	case loggedOutMsg:
		if msg.err != nil {
			a.logger.Error("logout", "err", msg.err)
			a.state.Alert = "Failed to sign out"
			return a, nil
		}
		a.signedOut()
		return a, textinput.Blink

	case feedMsg:
		return a, waitForChange(msg.changes)

	case changedMsg:
		if a.sess == nil {
			return a, nil
		}
		return a, tea.Batch(a.load(), waitForChange(msg.changes))

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			a.cancel()
			return a, tea.Quit
		}
		switch a.screen {
		case screenLogin:
			return a.updateLogin(msg)
		case screenDashboard:
			return a.updateDashboard(msg)
		}
		return a, nil
	}

	return a.updateInputs(msg)
}

// updateInputs forwards non-key messages such as cursor blinks to the
// focused input.
func (a *App) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case a.screen == screenLogin && a.loginFocus == 0:
		a.email, cmd = a.email.Update(msg)
	case a.screen == screenLogin:
		a.password, cmd = a.password.Update(msg)
	case a.mode == modeForm && a.formFocus == fieldTitle:
		a.title, cmd = a.title.Update(msg)
	case a.mode == modeForm && a.formFocus == fieldDescription:
		a.description, cmd = a.description.Update(msg)
	}
	return a, cmd
}

func (a *App) onSession(msg sessionMsg) tea.Cmd {
	if msg.err != nil || msg.sess == nil {
		if msg.err != nil {
			a.logger.Debug("no session", "err", msg.err)
		}
		a.signedOut()
		return textinput.Blink
	}

	user, _ := msg.sess.User()
	a.sess = msg.sess
	a.auth = session.Resolved(user)
	a.screen = screenDashboard
	a.submitting = false
	a.loginErr = ""
	a.password.Reset()
	a.state = dashboard.State{}
	a.mode = modeList
	a.cursor = 0
	return tea.Batch(a.load(), a.subscribe(), a.spinner.Tick)
}

func (a *App) signedOut() {
	if a.stopFeed != nil {
		a.stopFeed()
		a.stopFeed = nil
	}
	a.sess = nil
	a.auth = session.Anonymous()
	a.screen = screenLogin
	a.state = dashboard.State{}
	a.mode = modeList
	a.loading = false
	a.submitting = false
	a.form.Reset()
	a.loginFocus = 0
	a.password.Reset()
	a.password.Blur()
	a.email.Focus()
}

func (a *App) load() tea.Cmd {
	if a.sess == nil {
		return nil
	}
	a.loading = true
	owner := a.sess.Owner()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(a.ctx, callTimeout)
		defer cancel()
		tasks, err := dashboard.Load(ctx, a.backend, owner, a.now())
		return loadedMsg{owner: owner, tasks: tasks, err: err}
	}
}

func (a *App) subscribe() tea.Cmd {
	sub, ok := a.backend.(Subscriber)
	if !ok {
		return nil
	}
	if a.stopFeed != nil {
		a.stopFeed()
	}
	ctx, cancel := context.WithCancel(a.ctx)
	a.stopFeed = cancel
	return func() tea.Msg {
		changes, err := sub.Subscribe(ctx)
		if err != nil {
			a.logger.Warn("change feed unavailable", "err", err)
			return nil
		}
		return feedMsg{changes: changes}
	}
}

// waitForChange turns the next feed notification into a reload.
func waitForChange(changes <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return changedMsg{changes: changes}
	}
}

// dispatch runs cmd against the backend off the update loop.
func (a *App) dispatch(cmd dashboard.Command) tea.Cmd {
	sess := a.sess
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(a.ctx, callTimeout)
		defer cancel()
		return resultMsg{res: dashboard.Execute(ctx, a.backend, sess, cmd, a.now())}
	}
}

func (a *App) onResult(res dashboard.Result) tea.Cmd {
	if !res.OK() {
		a.logger.Error("task "+res.Op.String()+" failed", "err", res.Err)
		if errors.Is(res.Err, session.ErrNoUser) {
			a.signedOut()
			return nil
		}
	}
	a.state = dashboard.Reduce(a.state, res)
	if res.OK() {
		switch res.Op {
		case dashboard.OpCreate:
			a.cursor = 0
			a.closeForm()
		case dashboard.OpUpdate:
			a.closeForm()
		}
	}
	a.clampCursor()
	return nil
}

func (a *App) clampCursor() {
	if a.cursor >= len(a.state.Tasks) {
		a.cursor = max(0, len(a.state.Tasks)-1)
	}
}

func (a *App) View() string {
	var content string
	switch a.screen {
	case screenLoading:
		content = a.spinner.View() + " Checking session..."
	case screenLogin:
		content = a.viewLogin()
	default:
		content = a.viewDashboard()
	}
	return content + "\n"
}
