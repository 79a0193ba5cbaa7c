package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/Ualine055/task-mgt-app/internal/dashboard"
	"github.com/Ualine055/task-mgt-app/internal/models"
	"github.com/Ualine055/task-mgt-app/internal/taskform"
	"github.com/Ualine055/task-mgt-app/internal/tasklist"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func (a *App) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// the alert blocks everything until dismissed
	if a.state.Alert != "" {
		if key.Matches(msg, a.keys.Dismiss) {
			a.state = dashboard.DismissAlert(a.state)
		}
		return a, nil
	}

	switch a.mode {
	case modeForm:
		return a.updateForm(msg)
	case modeConfirm:
		return a.updateConfirm(msg)
	}
	return a.updateList(msg)
}

// actions routes list row actions to dashboard commands.
func (a *App) actions(cmds *[]tea.Cmd) tasklist.Actions {
	return tasklist.Actions{
		OnToggle: func(id string, completed bool) {
			if task, ok := a.state.Find(id); ok {
				*cmds = append(*cmds, a.dispatch(dashboard.ToggleCommand{Task: task}))
			}
		},
		OnEdit: func(task models.Task) {
			a.openForm(&task)
		},
		OnDelete: func(id string) {
			*cmds = append(*cmds, a.dispatch(dashboard.DeleteCommand{ID: id}))
		},
	}
}

func (a *App) selectedRow() (tasklist.Row, bool) {
	list := tasklist.Build(a.state.Tasks)
	if list.Empty || a.cursor >= len(list.Rows) {
		return tasklist.Row{}, false
	}
	return list.Rows[a.cursor], true
}

func (a *App) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	actions := a.actions(&cmds)

	switch {
	case key.Matches(msg, a.keys.Quit):
		a.cancel()
		return a, tea.Quit

	case key.Matches(msg, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}

	case key.Matches(msg, a.keys.Down):
		if a.cursor < len(a.state.Tasks)-1 {
			a.cursor++
		}

	case key.Matches(msg, a.keys.New):
		a.openForm(nil)
		return a, textinput.Blink

	case key.Matches(msg, a.keys.Edit):
		if row, ok := a.selectedRow(); ok {
			actions.Edit(row)
			return a, textinput.Blink
		}

	case key.Matches(msg, a.keys.Toggle):
		if row, ok := a.selectedRow(); ok {
			actions.Toggle(row)
		}

	case key.Matches(msg, a.keys.Delete):
		if _, ok := a.selectedRow(); ok {
			a.mode = modeConfirm
		}

	case key.Matches(msg, a.keys.Reload):
		return a, tea.Batch(a.load(), a.spinner.Tick)

	case key.Matches(msg, a.keys.Logout):
		sess := a.sess
		return a, func() tea.Msg {
			ctx, cancel := context.WithTimeout(a.ctx, callTimeout)
			defer cancel()
			return loggedOutMsg{err: sess.Logout(ctx)}
		}
	}
	return a, tea.Batch(cmds...)
}

func (a *App) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch {
	case key.Matches(msg, a.keys.Yes):
		if row, ok := a.selectedRow(); ok {
			a.actions(&cmds).Delete(row, func(string) bool { return true })
		}
		a.mode = modeList
	case key.Matches(msg, a.keys.No):
		a.mode = modeList
	}
	return a, tea.Batch(cmds...)
}

// openForm enters the form in create mode, or edit mode when task is set.
func (a *App) openForm(task *models.Task) {
	a.form.Reset()
	if task != nil {
		a.form.Edit(*task)
		a.state = dashboard.BeginEdit(a.state, *task)
	} else {
		a.state = dashboard.CancelEdit(a.state)
	}
	a.title.SetValue(a.form.Title)
	a.description.SetValue(a.form.Description)
	a.mode = modeForm
	a.focusField(fieldTitle)
}

func (a *App) closeForm() {
	a.form.Cancel()
	a.state = dashboard.CancelEdit(a.state)
	a.title.Reset()
	a.description.Reset()
	a.title.Blur()
	a.description.Blur()
	a.mode = modeList
}

func (a *App) focusField(i int) {
	a.formFocus = i
	a.title.Blur()
	a.description.Blur()
	switch i {
	case fieldTitle:
		a.title.Focus()
	case fieldDescription:
		a.description.Focus()
	}
}

func (a *App) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Back):
		a.closeForm()
		return a, nil

	case msg.String() == "tab":
		a.focusField((a.formFocus + 1) % fieldCount)
		return a, textinput.Blink

	case msg.String() == "shift+tab":
		a.focusField((a.formFocus + fieldCount - 1) % fieldCount)
		return a, textinput.Blink

	case msg.String() == "ctrl+s",
		msg.String() == "enter" && a.formFocus != fieldDescription:
		return a, a.submitForm()
	}

	var cmd tea.Cmd
	switch a.formFocus {
	case fieldTitle:
		a.title, cmd = a.title.Update(msg)
	case fieldDescription:
		a.description, cmd = a.description.Update(msg)
	case fieldPriority:
		if key.Matches(msg, a.keys.Priority) {
			a.form.Priority = a.form.Priority.Next()
		}
	}
	return a, cmd
}

// submitForm sends the form through the dashboard. A blank title raises the
// alert and never reaches the backend.
func (a *App) submitForm() tea.Cmd {
	a.form.Title = a.title.Value()
	a.form.Description = a.description.Value()
	editing, isEdit := a.form.Editing()
	saved := *a.form

	var cmd tea.Cmd
	err := a.form.SubmitTo(func(p models.TaskPayload) {
		if isEdit {
			cmd = a.dispatch(dashboard.UpdateCommand{Task: editing, Payload: p})
			return
		}
		cmd = a.dispatch(dashboard.CreateCommand{Payload: p})
	})
	if err != nil {
		a.state.Alert = taskform.EmptyTitleMessage
		return nil
	}
	// keep the form filled until the result arrives so a failure loses nothing
	*a.form = saved
	return cmd
}

func (a *App) viewDashboard() string {
	s := a.styles
	width := contentWidth(a.width)
	var b strings.Builder

	header := s.Title.Render("Task Manager")
	if user := a.auth.User; user != nil {
		header += "  " + s.Muted.Render("Welcome, "+user.Email)
	}
	b.WriteString(header + "\n\n")

	stats := a.state.Stats()
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		s.Stat.Render(fmt.Sprintf("Total Tasks\n%d", stats.Total)),
		s.Stat.Render(fmt.Sprintf("Completed\n%d", stats.Completed)),
		s.Stat.Render(fmt.Sprintf("Pending\n%d", stats.Pending)),
	) + "\n")

	if a.mode == modeForm {
		b.WriteString(a.viewForm() + "\n")
	}

	if a.loading {
		b.WriteString(a.spinner.View() + " Loading tasks...\n")
	} else {
		b.WriteString(a.viewList() + "\n")
	}

	if a.mode == modeConfirm {
		b.WriteString(s.Error.Render(tasklist.DeletePrompt) + " " + s.Muted.Render("(y/n)") + "\n")
	}

	var help string
	switch a.mode {
	case modeForm:
		help = "tab next field • ←/→ priority • enter " + strings.ToLower(a.form.SubmitLabel()) + " • esc cancel"
	case modeConfirm:
		help = helpLine(a.keys.Yes, a.keys.No)
	default:
		help = helpLine(a.keys.Up, a.keys.Down, a.keys.New, a.keys.Edit, a.keys.Toggle,
			a.keys.Delete, a.keys.Reload, a.keys.Logout, a.keys.Quit)
	}
	b.WriteString(s.Help.Render(help))

	view := lipgloss.NewStyle().Width(width).Render(b.String())
	if a.state.Alert != "" {
		modal := s.Modal.Render(a.state.Alert + "\n\n" + s.Muted.Render("press enter to continue"))
		return view + "\n" + lipgloss.PlaceHorizontal(width, lipgloss.Center, modal)
	}
	return view
}

func (a *App) viewForm() string {
	s := a.styles
	field := func(i int, label, body string) string {
		style := s.Box
		if a.formFocus == i {
			style = s.BoxFocus
		}
		return s.Muted.Render(label) + "\n" + style.Render(body)
	}

	var priorities []string
	for _, p := range models.Priorities {
		if p == a.form.Priority {
			priorities = append(priorities, s.Badge(p))
		} else {
			priorities = append(priorities, s.Muted.Render(string(p)))
		}
	}

	return s.Title.Render(a.form.Heading()) + "\n" +
		field(fieldTitle, "Title", a.title.View()) + "\n" +
		field(fieldDescription, "Description", a.description.View()) + "\n" +
		field(fieldPriority, "Priority", strings.Join(priorities, " "))
}

func (a *App) viewList() string {
	s := a.styles
	list := tasklist.Build(a.state.Tasks)
	if list.Empty {
		return s.Muted.Render(list.EmptyMessage)
	}

	var lines []string
	for i, row := range list.Rows {
		check := "[ ]"
		if row.Task.Completed {
			check = "[x]"
		}
		title := row.Task.Title
		if row.Struck {
			title = s.Struck.Render(title)
		}
		cursor := "  "
		if i == a.cursor && a.mode != modeForm {
			cursor = "> "
			title = s.Selected.Render(title)
		}
		line := cursor + s.Accent(row.Task.Priority) + " " + check + " " + title + " " + s.Badge(row.Task.Priority)
		if row.Task.Description != "" {
			line += "\n      " + s.Muted.Render(row.Task.Description)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
