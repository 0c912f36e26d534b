package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"ffly/internal/commands"
	"ffly/internal/firefly"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Palette.Active = false
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.commandInput.Blur()
		m.Status = StatusBar{Text: "command palette closed"}
		return m, nil
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	default:
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		m.Palette.Input = m.commandInput.Value()
		return m, cmd
	}
}

func (m Model) executePaletteCommand() (Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()

	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: "error: " + err.Error(), IsError: true}
		return m, nil
	}

	var followUp tea.Cmd
	res, err := commands.Execute(cmd, commands.Handlers{
		Filter: func(a commands.FilterArgs) (commands.Result, error) {
			filter := filterForScope(a.Scope)
			m.engine.SetFilter(filter)
			m.taskCursor = 0
			m.CurrentView = ViewTasks
			followUp = m.startLoad()
			return commands.Result{Message: "filter: " + filter.Title()}, nil
		},
		Search: func(a commands.SearchArgs) (commands.Result, error) {
			m.CurrentView = ViewTasks
			m.searchInput.SetValue(a.Text)
			gen, ok := m.engine.StartSearch(a.Text)
			if !ok {
				return commands.Result{Message: "search cleared"}, nil
			}
			followUp = m.searchStepCmd(gen, 0)
			return commands.Result{Message: fmt.Sprintf("searching %q", a.Text)}, nil
		},
		Open: func(a commands.OpenArgs) (commands.Result, error) {
			if a.TaskID != 0 {
				followUp = m.openBrowserCmd(m.services.Client.TaskURL(a.TaskID))
				return commands.Result{Message: fmt.Sprintf("opening task %d", a.TaskID)}, nil
			}
			followUp = m.openBrowserCmd(m.services.Client.PageURL(a.Page))
			return commands.Result{Message: "opening " + a.Page}, nil
		},
		Pin: func(a commands.PinArgs) (commands.Result, error) {
			node, ok := m.resourceByTitle(a.Title)
			if !ok {
				return commands.Result{}, &commands.CommandError{
					Code:    commands.ErrCodeInvalidArgument,
					Message: "no loaded page titled " + a.Title,
				}
			}
			followUp = m.pinCmd(node)
			return commands.Result{Message: "pinned " + node.Title}, nil
		},
		Unpin: func(a commands.UnpinArgs) (commands.Result, error) {
			node, ok := m.resourceByTitle(a.Title)
			if !ok {
				return commands.Result{}, &commands.CommandError{
					Code:    commands.ErrCodeInvalidArgument,
					Message: "no loaded page titled " + a.Title,
				}
			}
			followUp = m.unpinCmd(node.ID)
			return commands.Result{Message: "unpinned " + node.Title}, nil
		},
		Logout: func() (commands.Result, error) {
			followUp = m.logoutCmd()
			return commands.Result{Message: "logging out"}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: "error: " + err.Error(), IsError: true}
		return m, nil
	}
	m.Status = StatusBar{Text: res.Message}
	return m, followUp
}

func filterForScope(scope commands.FilterScope) firefly.CompletionFilter {
	switch scope {
	case commands.ScopeTodo:
		return firefly.FilterTodo
	case commands.ScopeDone:
		return firefly.FilterDone
	default:
		return firefly.FilterAll
	}
}

func (m Model) renderCommandPalette() string {
	if !m.Palette.Active {
		return ""
	}
	return "command: " + m.commandInput.View() + "\n"
}
