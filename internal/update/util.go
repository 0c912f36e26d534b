package update

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/browser"
)

func (m *Model) openBrowserCmd(url string) tea.Cmd {
	return func() tea.Msg {
		return browserOpenedMsg{URL: url, Err: browser.OpenURL(url)}
	}
}

func (m *Model) copyCmd(what, content string) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{What: what, Err: clipboard.WriteAll(content)}
	}
}

func (m *Model) logoutCmd() tea.Cmd {
	repo := m.services.Repo
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return logoutDoneMsg{Err: repo.ClearAccount(ctx)}
	}
}
