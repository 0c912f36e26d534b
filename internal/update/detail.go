package update

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"ffly/internal/firefly"
	"ffly/internal/model"
	"ffly/internal/views"
)

// openDetail switches to the detail view and fetches the page. Opening a
// task also marks it read; the unread badge is suppressed locally right away
// since the listing is not refetched for that.
func (m Model) openDetail(task model.Task) (Model, tea.Cmd) {
	m.CurrentView = ViewDetail
	m.detail = DetailState{Task: task, Loading: true}
	m.commenting = false
	m.readOverride[task.ID] = true

	client := m.services.Client
	renderer := m.services.Renderer
	log := m.services.Log
	taskID := task.ID
	return m, func() tea.Msg {
		ctx := context.Background()
		if err := client.MarkRead(ctx, taskID); err != nil {
			// Losing the read receipt is not worth failing the view.
			log.Debug("mark_as_read failed", zap.Int64("task", taskID), zap.Error(err))
		}
		state, err := client.TaskDetail(ctx, taskID)
		if err != nil {
			return detailMsg{TaskID: taskID, Err: err}
		}
		markdown, err := renderer.Render(state.Task.Task.Description)
		if err != nil {
			return detailMsg{TaskID: taskID, Err: err}
		}
		return detailMsg{TaskID: taskID, State: state, Markdown: markdown}
	}
}

func (m Model) handleDetailMsg(msg tea.Msg) (Model, tea.Cmd, bool) {
	switch typed := msg.(type) {
	case detailMsg:
		if typed.TaskID != m.detail.Task.ID {
			return m, nil, true
		}
		m.detail.Loading = false
		if typed.Err != nil {
			m.LastError = typed.Err
			m.Status = StatusBar{Text: "error: " + typed.Err.Error(), IsError: true}
			return m, nil, true
		}
		m.detail.State = typed.State
		m.detail.Markdown = typed.Markdown
		m.detailView.SetContent(m.detail.Markdown)
		return m, nil, true
	case taskMutatedMsg:
		if typed.Err != nil {
			m.LastError = typed.Err
			m.Status = StatusBar{Text: "error: " + typed.Err.Error(), IsError: true}
			// A done toggle on a file-submission task fails server-side;
			// the browser is the only place to submit.
			if typed.Action == "done" && m.detail.Task.FileSubmissionRequired && errors.Is(typed.Err, firefly.ErrActionFailed) {
				m.Status = StatusBar{Text: "error: this task requires a file submission, opening browser", IsError: true}
				return m, m.openBrowserCmd(m.services.Client.TaskURL(typed.TaskID)), true
			}
			return m, nil, true
		}
		m.Status = StatusBar{Text: "task updated"}
		cmds := []tea.Cmd{m.reloadListing()}
		if m.CurrentView == ViewDetail && m.detail.Task.ID == typed.TaskID {
			var refetch tea.Cmd
			m, refetch = m.openDetail(m.detail.Task)
			cmds = append(cmds, refetch)
		}
		return m, tea.Batch(cmds...), true
	}
	return m, nil, false
}

// reloadListing drops the loaded pages and fetches the first one again.
func (m *Model) reloadListing() tea.Cmd {
	m.engine.Reload()
	return m.startLoad()
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.commenting {
		switch msg.String() {
		case "esc":
			m.commenting = false
			m.commentArea.Blur()
			m.commentArea.Reset()
			return m, nil
		case "enter":
			message := m.commentArea.Value()
			m.commenting = false
			m.commentArea.Blur()
			m.commentArea.Reset()
			if message == "" {
				return m, nil
			}
			return m, m.commentCmd(m.detail.Task.ID, message)
		default:
			var cmd tea.Cmd
			m.commentArea, cmd = m.commentArea.Update(msg)
			return m, cmd
		}
	}

	switch msg.String() {
	case "esc":
		m.CurrentView = ViewTasks
		return m, nil
	case "d":
		task := m.detail.Task
		return m, m.setDoneCmd(task.ID, !task.IsDone)
	case "c":
		m.commenting = true
		m.commentArea.Focus()
		return m, nil
	case "o":
		return m, m.openBrowserCmd(m.services.Client.TaskURL(m.detail.Task.ID))
	case "y":
		return m, m.copyCmd("task url", m.services.Client.TaskURL(m.detail.Task.ID))
	case "j", "down", "k", "up":
		var cmd tea.Cmd
		m.detailView, cmd = m.detailView.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) setDoneCmd(taskID int64, done bool) tea.Cmd {
	client := m.services.Client
	return func() tea.Msg {
		err := client.SetDone(context.Background(), taskID, done)
		return taskMutatedMsg{TaskID: taskID, Action: "done", Err: err}
	}
}

func (m *Model) commentCmd(taskID int64, message string) tea.Cmd {
	client := m.services.Client
	return func() tea.Msg {
		err := client.Comment(context.Background(), taskID, message)
		return taskMutatedMsg{TaskID: taskID, Action: "comment", Err: err}
	}
}

func (m Model) renderDetailView() string {
	task := m.detail.Task
	data := views.DetailPanelData{
		Title:       task.Title,
		Body:        m.detail.Markdown,
		Metadata:    m.taskMetadata(task, time.Now()),
		CommentView: m.commentArea.View(),
		Commenting:  m.commenting,
		Loading:     m.detail.Loading,
	}
	for _, att := range m.detail.State.Task.Task.Attachments {
		data.Attachments = append(data.Attachments, views.AttachmentData{
			Name: att.FileName,
			URL:  m.services.Client.AttachmentURL(task.ID, att.ID),
		})
	}
	if data.Title == "" {
		data.Title = fmt.Sprintf("task %d", task.ID)
	}
	return views.RenderDetailPanel(data)
}
