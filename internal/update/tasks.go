package update

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"ffly/internal/firefly"
	"ffly/internal/model"
	"ffly/internal/views"
)

// startLoad kicks off the next listing page fetch if one is due.
func (m *Model) startLoad() tea.Cmd {
	seq, page, ok := m.engine.BeginLoad()
	if !ok {
		return nil
	}
	client := m.services.Client
	filter := m.engine.Filter()
	size := m.services.Config.PageSize
	return func() tea.Msg {
		tasks, err := client.ListTasks(context.Background(), filter, page, size)
		if err != nil {
			return tasksPageErrMsg{Seq: seq, Err: err}
		}
		return tasksPageMsg{Seq: seq, Page: tasks}
	}
}

func (m *Model) searchStepCmd(gen, pageNum int) tea.Cmd {
	client := m.services.Client
	filter := m.engine.Filter()
	size := m.services.Config.SearchPageSize
	return func() tea.Msg {
		tasks, err := client.ListTasks(context.Background(), filter, pageNum, size)
		if err != nil {
			return searchErrMsg{Gen: gen, Err: err}
		}
		return searchPageMsg{Gen: gen, PageNum: pageNum, Page: tasks}
	}
}

func (m *Model) debounceCmd(text string) tea.Cmd {
	m.debounceSeq++
	seq := m.debounceSeq
	wait := time.Duration(m.services.Config.DebounceMillis) * time.Millisecond
	return tea.Tick(wait, func(time.Time) tea.Msg {
		return searchDebounceMsg{Seq: seq, Text: text}
	})
}

func (m Model) handleTasksMsg(msg tea.Msg) (Model, tea.Cmd, bool) {
	switch typed := msg.(type) {
	case tasksPageMsg:
		if !m.engine.ApplyPage(typed.Seq, typed.Page) {
			return m, nil, true
		}
		m.clampTaskCursor()
		return m, nil, true
	case tasksPageErrMsg:
		m.engine.AbortLoad(typed.Seq)
		m.services.Log.Warn("task listing failed", zap.Error(typed.Err))
		m.LastError = typed.Err
		m.Status = StatusBar{Text: "error: " + typed.Err.Error(), IsError: true}
		return m, nil, true
	case searchDebounceMsg:
		// Only the newest debounce tick wins; older ticks are echoes of
		// keystrokes that have since been superseded.
		if typed.Seq != m.debounceSeq {
			return m, nil, true
		}
		gen, ok := m.engine.StartSearch(typed.Text)
		if !ok {
			return m, nil, true
		}
		return m, m.searchStepCmd(gen, 0), true
	case searchPageMsg:
		if !m.engine.ApplySearchPage(typed.Gen, typed.Page.Items) {
			return m, nil, true
		}
		if typed.Page.HasMore {
			return m, m.searchStepCmd(typed.Gen, typed.PageNum+1), true
		}
		m.engine.FinishSearch(typed.Gen)
		m.Status = StatusBar{Text: fmt.Sprintf("found %d tasks", m.engine.SearchCount())}
		return m, nil, true
	case searchErrMsg:
		m.engine.FinishSearch(typed.Gen)
		m.LastError = typed.Err
		m.Status = StatusBar{Text: "error: search failed: " + typed.Err.Error(), IsError: true}
		return m, nil, true
	}
	return m, nil, false
}

func (m Model) handleTasksKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.searchInput.Focused() {
		switch msg.String() {
		case "esc":
			m.searchInput.Blur()
			m.searchInput.SetValue("")
			m.engine.StartSearch("")
			return m, nil
		case "enter":
			m.searchInput.Blur()
			return m, nil
		default:
			var cmd tea.Cmd
			m.searchInput, cmd = m.searchInput.Update(msg)
			return m, tea.Batch(cmd, m.debounceCmd(m.searchInput.Value()))
		}
	}

	switch msg.String() {
	case "s":
		m.searchInput.Focus()
		return m, nil
	case "j", "down":
		m.taskCursor++
		m.clampTaskCursor()
		return m, nil
	case "k", "up":
		if m.taskCursor > 0 {
			m.taskCursor--
		}
		return m, nil
	case "f":
		m.cycleFilter()
		return m, m.startLoad()
	case "L":
		return m, m.startLoad()
	case "enter":
		if task, ok := m.selectedTask(); ok {
			return m.openDetail(task)
		}
	case "o":
		if task, ok := m.selectedTask(); ok {
			m.readOverride[task.ID] = true
			return m, m.openBrowserCmd(m.services.Client.TaskURL(task.ID))
		}
	}
	return m, nil
}

func (m *Model) cycleFilter() {
	var next firefly.CompletionFilter
	switch m.engine.Filter() {
	case firefly.FilterAll:
		next = firefly.FilterTodo
	case firefly.FilterTodo:
		next = firefly.FilterDone
	default:
		next = firefly.FilterAll
	}
	m.engine.SetFilter(next)
	m.taskCursor = 0
	m.Status = StatusBar{Text: "filter: " + next.Title()}
}

// visibleTasks is the panel order: the To Do section followed by Done.
func (m Model) visibleTasks() []model.Task {
	toDo, done := m.engine.Sections()
	return append(toDo, done...)
}

func (m *Model) clampTaskCursor() {
	visible := m.visibleTasks()
	if len(visible) == 0 {
		m.taskCursor = 0
		return
	}
	if m.taskCursor >= len(visible) {
		m.taskCursor = len(visible) - 1
	}
}

func (m Model) selectedTask() (model.Task, bool) {
	visible := m.visibleTasks()
	if len(visible) == 0 || m.taskCursor >= len(visible) {
		return model.Task{}, false
	}
	return visible[m.taskCursor], true
}

func (m Model) renderTasksView() string {
	now := time.Now()
	toDo, done := m.engine.Sections()

	data := views.TaskPanelData{
		FilterTitle: m.engine.Filter().Title(),
		SearchView:  m.searchInput.View(),
		SearchText:  m.engine.SearchText(),
		Searching:   m.engine.Searching(),
		SearchCount: m.engine.SearchCount(),
		Loading:     m.engine.Loading(),
		Empty:       m.engine.Empty(),
		HasMore:     m.engine.HasMore(),
	}

	index := 0
	for _, task := range toDo {
		data.ToDo = append(data.ToDo, m.taskRow(task, now, index))
		index++
	}
	for _, task := range done {
		data.Done = append(data.Done, m.taskRow(task, now, index))
		index++
	}
	return views.RenderTaskPanel(data)
}

func (m Model) taskRow(task model.Task, now time.Time, index int) views.TaskRowData {
	row := views.TaskRowData{
		ID:       task.ID,
		Title:    task.Title,
		Selected: index == m.taskCursor,
	}
	if !task.IsDone {
		row.Due = model.FormatDate(task.DueDate.Time, now, model.DateFormat{
			Relative: true,
			Style:    model.DateStyleShort,
		})
		row.Overdue = model.DeltaDays(task.DueDate.Time, now) < 0
		row.Unread = task.IsUnread && !m.readOverride[task.ID]
	}
	status := model.ClassifyStatus(task, now)
	if status != model.StatusToDo {
		row.Status = string(status)
	}
	return row
}

func (m Model) taskMetadata(task model.Task, now time.Time) views.TaskMetadataData {
	return views.TaskMetadataData{
		ID:           task.ID,
		PersonalTask: task.IsPersonalTask,
		Status:       string(model.ClassifyStatus(task, now)),
		Title:        task.Title,
		Setter:       task.Setter.Name,
		Addressees:   task.AddresseeNames(),
		SetOn:        model.FormatDate(task.SetDate.Time, now, model.DateFormat{Absolute: true, Relative: true}),
		DueOn:        model.FormatDate(task.DueDate.Time, now, model.DateFormat{Absolute: true, Relative: true}),
		MarkLabel:    task.Mark.Label(),
		MarkValue:    task.Mark.Display(),
		Submission:   task.SubmissionSummary(),
	}
}
