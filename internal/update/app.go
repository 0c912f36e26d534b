package update

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"ffly/internal/model"
	"ffly/internal/views"
)

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.startLoad(),
		m.loadPinnedCmd(),
		m.loadResourcesCmd(),
		m.loadSpinner.Tick,
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if next, cmd, handled := m.handleTasksMsg(msg); handled {
		return next, cmd
	}
	if next, cmd, handled := m.handleDetailMsg(msg); handled {
		return next, cmd
	}
	if next, cmd, handled := m.handleResourcesMsg(msg); handled {
		return next, cmd
	}
	if next, cmd, handled := m.handleBookmarksMsg(msg); handled {
		return next, cmd
	}

	switch typed := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(typed)
	case tea.WindowSizeMsg:
		m.detailView.Width = typed.Width
		m.detailView.Height = typed.Height - 8
		return m, nil
	case spinner.TickMsg:
		if m.engine.Loading() || m.engine.Searching() || m.resources.Loading || m.detail.Loading {
			var cmd tea.Cmd
			m.loadSpinner, cmd = m.loadSpinner.Update(typed)
			return m, cmd
		}
		return m, nil
	case SwitchViewMsg:
		return m.switchView(typed.View)
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		if typed.Err != nil {
			m.LastError = typed.Err
			m.Status = StatusBar{Text: "error: " + typed.Err.Error(), IsError: true}
		}
		return m, nil
	case browserOpenedMsg:
		if typed.Err != nil {
			m.Status = StatusBar{Text: "error: open browser: " + typed.Err.Error(), IsError: true}
		} else {
			m.Status = StatusBar{Text: "opened " + typed.URL}
		}
		return m, nil
	case copiedMsg:
		if typed.Err != nil {
			m.Status = StatusBar{Text: "error: clipboard: " + typed.Err.Error(), IsError: true}
		} else {
			m.Status = StatusBar{Text: typed.What + " copied"}
		}
		return m, nil
	case logoutDoneMsg:
		if typed.Err != nil {
			m.Status = StatusBar{Text: "error: logout: " + typed.Err.Error(), IsError: true}
			return m, nil
		}
		m.session.Account = nil
		m.Quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.Palette.Active {
		if msg.String() == m.Keys.Help {
			m.HelpVisible = !m.HelpVisible
			return m, nil
		}
		return m.handlePaletteKey(msg)
	}

	// Text entry modes swallow everything except ctrl+c.
	capturing := (m.CurrentView == ViewTasks && m.searchInput.Focused()) ||
		(m.CurrentView == ViewDetail && m.commenting)
	keyStr := msg.String()
	if keyStr == "ctrl+c" {
		m.Quitting = true
		return m, tea.Quit
	}
	if !capturing {
		switch keyStr {
		case "/":
			m.Palette.Active = true
			m.Palette.Input = ""
			m.commandInput.Focus()
			m.commandInput.SetValue("")
			m.Status = StatusBar{Text: "command palette active"}
			return m, nil
		case m.Keys.Tasks:
			return m.switchView(ViewTasks)
		case m.Keys.Resources:
			return m.switchView(ViewResources)
		case m.Keys.Bookmarks:
			return m.switchView(ViewBookmarks)
		case m.Keys.Account:
			return m.switchView(ViewAccount)
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			return m, nil
		case m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		}
	}

	switch m.CurrentView {
	case ViewTasks:
		return m.handleTasksKey(msg)
	case ViewDetail:
		return m.handleDetailKey(msg)
	case ViewResources:
		return m.handleResourcesKey(msg)
	case ViewBookmarks:
		return m.handleBookmarksKey(msg)
	case ViewAccount:
		return m.handleAccountKey(msg)
	}
	return m, nil
}

func (m Model) switchView(v View) (Model, tea.Cmd) {
	switch v {
	case ViewTasks, ViewDetail, ViewResources, ViewBookmarks, ViewAccount:
	default:
		return m, nil
	}
	m.CurrentView = v
	if v == ViewBookmarks && !m.bookmarksLoaded {
		return m, m.loadBookmarksCmd()
	}
	if v == ViewResources && len(m.resources.Nodes) == 0 && !m.resources.Loading {
		return m, m.loadResourcesCmd()
	}
	return m, nil
}

func (m Model) handleAccountKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "s":
		m.ShowSecret = !m.ShowSecret
	case "y":
		if m.session.Account != nil {
			return m, m.copyCmd("username", m.session.Account.Username)
		}
	}
	return m, nil
}

func (m Model) renderAccountView() string {
	data := views.AccountPanelData{
		LoggedIn:   m.session.Authenticated(),
		DeviceID:   m.session.DeviceID,
		ShowSecret: m.ShowSecret,
	}
	if account := m.session.Account; account != nil {
		data.Username = account.Username
		data.FullName = account.FullName
		data.Email = account.Email
		data.Role = account.Role
		data.Secret = account.Secret
		data.TokenDate = model.FormatDate(account.TokenDate, time.Now(), model.DateFormat{Absolute: true})
	}
	return views.RenderAccountPanel(data)
}

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	return strings.Join([]string{
		"help:",
		"  1/2/3/4  tasks / resources / bookmarks / account",
		"  /        command palette (filter, search, open, pin, unpin, logout)",
		"  j/k      move",
		"  enter    open detail / drill down",
		"  f        cycle filter    s  search",
		"  d        toggle done     c  comment",
		"  o        open browser    y  copy url",
		"  q        quit",
	}, "\n") + "\n"
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		status = "status: " + m.Status.Text
	}

	leftPane := ""
	rightPane := ""
	switch m.CurrentView {
	case ViewTasks:
		leftPane = m.renderTasksView()
		rightPane = m.renderCommandPalette() + m.renderSelectedMetadata() + m.renderHelpIfVisible()
	case ViewDetail:
		leftPane = m.renderDetailView()
		rightPane = m.renderCommandPalette() + m.renderHelpIfVisible()
	case ViewResources:
		leftPane = m.renderResourcesView()
		rightPane = m.renderCommandPalette() + m.renderHelpIfVisible()
	case ViewBookmarks:
		leftPane = m.renderBookmarksView()
		rightPane = m.renderCommandPalette() + m.renderHelpIfVisible()
	case ViewAccount:
		leftPane = m.renderAccountView()
		rightPane = m.renderCommandPalette() + m.renderHelpIfVisible()
	}

	notification := ""
	if m.engine.Loading() || m.engine.Searching() || m.resources.Loading || m.detail.Loading {
		notification = m.loadSpinner.View() + " loading"
	}

	return views.RenderApp(views.AppData{
		Header:       fmt.Sprintf("ffly | view: %s | filter: %s", m.CurrentView, m.engine.Filter().Title()),
		LeftPane:     leftPane,
		RightPane:    rightPane,
		StatusLine:   status,
		Notification: notification,
		Footer: fmt.Sprintf("keys: %s tasks | %s resources | %s bookmarks | %s account | / cmd | %s help | %s quit",
			m.Keys.Tasks, m.Keys.Resources, m.Keys.Bookmarks, m.Keys.Account, m.Keys.Help, m.Keys.Quit),
	})
}

func (m Model) renderSelectedMetadata() string {
	task, ok := m.selectedTask()
	if !ok {
		return ""
	}
	return views.RenderTaskMetadata(m.taskMetadata(task, time.Now())) + "\n"
}
