package update

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"ffly/internal/model"
	"ffly/internal/views"
)

const dashboardURL = "/dashboard"

func (m Model) currentLevel() resourceLevel {
	if len(m.resources.Stack) == 0 {
		return resourceLevel{URL: dashboardURL, Title: "Dashboard"}
	}
	return m.resources.Stack[len(m.resources.Stack)-1]
}

func (m *Model) loadResourcesCmd() tea.Cmd {
	m.resources.Loading = true
	level := m.currentLevel()
	client := m.services.Client
	return func() tea.Msg {
		nodes, err := client.Resources(context.Background(), level.URL, level.Section)
		return resourcesMsg{Nodes: nodes, Err: err}
	}
}

func (m *Model) loadPinnedCmd() tea.Cmd {
	repo := m.services.Repo
	return func() tea.Msg {
		nodes, err := repo.ListPinned(context.Background())
		return pinnedMsg{Nodes: nodes, Err: err}
	}
}

func (m Model) handleResourcesMsg(msg tea.Msg) (Model, tea.Cmd, bool) {
	switch typed := msg.(type) {
	case resourcesMsg:
		m.resources.Loading = false
		if typed.Err != nil {
			m.LastError = typed.Err
			m.Status = StatusBar{Text: "error: " + typed.Err.Error(), IsError: true}
			return m, nil, true
		}
		m.resources.Nodes = typed.Nodes
		if m.resources.Cursor >= len(typed.Nodes) {
			m.resources.Cursor = 0
		}
		return m, nil, true
	case pinnedMsg:
		if typed.Err != nil {
			m.LastError = typed.Err
			m.Status = StatusBar{Text: "error: " + typed.Err.Error(), IsError: true}
			return m, nil, true
		}
		m.pinned = typed.Nodes
		return m, nil, true
	}
	return m, nil, false
}

func (m Model) handleResourcesKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	atRoot := len(m.resources.Stack) == 0
	rows := m.resources.Nodes
	// At the root the pinned section sits above the listing, sharing the
	// cursor range.
	total := len(rows)
	if atRoot {
		total += len(m.pinned)
	}

	switch msg.String() {
	case "j", "down":
		if m.resources.Cursor < total-1 {
			m.resources.Cursor++
		}
		return m, nil
	case "k", "up":
		if m.resources.Cursor > 0 {
			m.resources.Cursor--
		}
		return m, nil
	case "enter":
		node, ok := m.selectedResource()
		if !ok || !node.HasChildren {
			return m, nil
		}
		m.resources.Stack = append(m.resources.Stack, resourceLevel{
			URL:     node.URL,
			Section: node.Section,
			Title:   node.Title,
		})
		m.resources.Cursor = 0
		return m, m.loadResourcesCmd()
	case "esc":
		if atRoot {
			return m, nil
		}
		m.resources.Stack = m.resources.Stack[:len(m.resources.Stack)-1]
		m.resources.Cursor = 0
		return m, m.loadResourcesCmd()
	case "o":
		if node, ok := m.selectedResource(); ok {
			return m, m.openBrowserCmd(m.services.Client.PageURL(node.URL))
		}
	case "p":
		if node, ok := m.selectedResource(); ok {
			return m, m.pinCmd(node)
		}
	case "u":
		if node, ok := m.selectedResource(); ok {
			return m, m.unpinCmd(node.ID)
		}
	}
	return m, nil
}

// selectedResource resolves the cursor across the pinned section and the
// listing.
func (m Model) selectedResource() (model.ResourceNode, bool) {
	cursor := m.resources.Cursor
	if len(m.resources.Stack) == 0 {
		if cursor < len(m.pinned) {
			return m.pinned[cursor], true
		}
		cursor -= len(m.pinned)
	}
	if cursor < 0 || cursor >= len(m.resources.Nodes) {
		return model.ResourceNode{}, false
	}
	return m.resources.Nodes[cursor], true
}

func (m *Model) pinCmd(node model.ResourceNode) tea.Cmd {
	repo := m.services.Repo
	return func() tea.Msg {
		if err := repo.Pin(context.Background(), node); err != nil {
			return AppErrorMsg{Err: err}
		}
		nodes, err := repo.ListPinned(context.Background())
		return pinnedMsg{Nodes: nodes, Err: err}
	}
}

func (m *Model) unpinCmd(id int64) tea.Cmd {
	repo := m.services.Repo
	return func() tea.Msg {
		if err := repo.Unpin(context.Background(), id); err != nil {
			return AppErrorMsg{Err: err}
		}
		nodes, err := repo.ListPinned(context.Background())
		return pinnedMsg{Nodes: nodes, Err: err}
	}
}

func (m Model) isPinned(id int64) bool {
	for _, node := range m.pinned {
		if node.ID == id {
			return true
		}
	}
	return false
}

func (m Model) renderResourcesView() string {
	atRoot := len(m.resources.Stack) == 0
	breadcrumb := "Dashboard"
	for _, level := range m.resources.Stack {
		breadcrumb += " / " + level.Title
	}

	data := views.ResourcePanelData{
		Breadcrumb: breadcrumb,
		Loading:    m.resources.Loading,
	}
	index := 0
	if atRoot {
		for _, node := range m.pinned {
			data.Pinned = append(data.Pinned, views.ResourceRowData{
				Title:    node.Title,
				Folder:   node.HasChildren,
				Pinned:   true,
				Selected: index == m.resources.Cursor,
			})
			index++
		}
	}
	for _, node := range m.resources.Nodes {
		data.Rows = append(data.Rows, views.ResourceRowData{
			Title:    node.Title,
			Folder:   node.HasChildren,
			Pinned:   m.isPinned(node.ID),
			Selected: index == m.resources.Cursor,
		})
		index++
	}
	return views.RenderResourcePanel(data)
}

func (m Model) resourceByTitle(title string) (model.ResourceNode, bool) {
	for _, node := range m.pinned {
		if node.Title == title {
			return node, true
		}
	}
	for _, node := range m.resources.Nodes {
		if node.Title == title {
			return node, true
		}
	}
	return model.ResourceNode{}, false
}
