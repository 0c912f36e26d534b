package update

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"ffly/internal/model"
	"ffly/internal/views"
)

func (m *Model) loadBookmarksCmd() tea.Cmd {
	client := m.services.Client
	return func() tea.Msg {
		bookmarks, err := client.Bookmarks(context.Background())
		return bookmarksMsg{Bookmarks: bookmarks, Err: err}
	}
}

func (m Model) handleBookmarksMsg(msg tea.Msg) (Model, tea.Cmd, bool) {
	typed, ok := msg.(bookmarksMsg)
	if !ok {
		return m, nil, false
	}
	if typed.Err != nil {
		m.LastError = typed.Err
		m.Status = StatusBar{Text: "error: " + typed.Err.Error(), IsError: true}
		return m, nil, true
	}
	m.bookmarks = typed.Bookmarks
	m.bookmarksLoaded = true
	if m.bookmarkCursor >= len(typed.Bookmarks) {
		m.bookmarkCursor = 0
	}
	return m, nil, true
}

func (m Model) handleBookmarksKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.bookmarkCursor < len(m.bookmarks)-1 {
			m.bookmarkCursor++
		}
	case "k", "up":
		if m.bookmarkCursor > 0 {
			m.bookmarkCursor--
		}
	case "o":
		if bm, ok := m.selectedBookmark(); ok {
			return m, m.openBrowserCmd(m.services.Client.PageURL(bm.SimpleURL))
		}
	case "y":
		if bm, ok := m.selectedBookmark(); ok {
			return m, m.copyCmd("bookmark url", m.services.Client.PageURL(bm.SimpleURL))
		}
	}
	return m, nil
}

func (m Model) selectedBookmark() (model.Bookmark, bool) {
	if m.bookmarkCursor < 0 || m.bookmarkCursor >= len(m.bookmarks) {
		return model.Bookmark{}, false
	}
	return m.bookmarks[m.bookmarkCursor], true
}

func (m Model) renderBookmarksView() string {
	data := views.BookmarkPanelData{Loading: !m.bookmarksLoaded}
	for i, bm := range m.bookmarks {
		data.Rows = append(data.Rows, views.BookmarkRowData{
			Title:      bm.Title,
			From:       bm.From.Name,
			Breadcrumb: bm.Breadcrumb,
			Selected:   i == m.bookmarkCursor,
		})
	}
	return views.RenderBookmarkPanel(data)
}
