package update

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"ffly/internal/config"
	"ffly/internal/detail"
	"ffly/internal/firefly"
	"ffly/internal/model"
)

type fakeRepo struct {
	pinned []model.ResourceNode
}

func (r *fakeRepo) LoadSession(context.Context) (model.Session, error) {
	return model.Session{}, nil
}

func (r *fakeRepo) SaveInstance(context.Context, string, string) error { return nil }

func (r *fakeRepo) SaveAccount(context.Context, model.Account) error { return nil }

func (r *fakeRepo) ClearAccount(context.Context) error { return nil }

func (r *fakeRepo) ListPinned(context.Context) ([]model.ResourceNode, error) {
	return r.pinned, nil
}

func (r *fakeRepo) Pin(_ context.Context, node model.ResourceNode) error {
	r.pinned = append(r.pinned, node)
	return nil
}

func (r *fakeRepo) Unpin(_ context.Context, id int64) error {
	kept := r.pinned[:0]
	for _, node := range r.pinned {
		if node.ID != id {
			kept = append(kept, node)
		}
	}
	r.pinned = kept
	return nil
}

func testModel(t *testing.T) Model {
	t.Helper()
	session := model.Session{
		InstanceURL: "https://school.example.org",
		DeviceID:    "dev-1",
		Account: &model.Account{
			Secret:    "s3cret",
			Username:  "jdoe",
			FullName:  "Jane Doe",
			Email:     "jdoe@example.org",
			GUID:      "user-guid",
			Role:      "student",
			TokenDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}
	client, err := firefly.New(session, nil, nil)
	if err != nil {
		t.Fatalf("firefly.New: %v", err)
	}
	return NewModel(Services{
		Client:   client,
		Repo:     &fakeRepo{},
		Renderer: detail.NewRenderer(session.InstanceURL, session.DeviceID, "s3cret"),
		Log:      zap.NewNop(),
		Config:   config.Default(),
	}, session)
}

func listingTask(id int64, title string, due time.Time) model.Task {
	return model.Task{ID: id, Title: title, DueDate: model.Timestamp{Time: due}}
}

func TestNewModelDefaults(t *testing.T) {
	m := testModel(t)
	if m.CurrentView != ViewTasks {
		t.Fatalf("expected default view %q, got %q", ViewTasks, m.CurrentView)
	}
	if m.engine.Filter() != firefly.FilterAll {
		t.Fatalf("expected default filter, got %q", m.engine.Filter())
	}
	if m.Keys.Quit != "q" {
		t.Fatalf("expected quit key q, got %q", m.Keys.Quit)
	}
}

func TestUpdateKeySwitchesView(t *testing.T) {
	m := testModel(t)
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	next := updated.(Model)
	if next.CurrentView != ViewResources {
		t.Fatalf("expected resources view, got %q", next.CurrentView)
	}

	updated, _ = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'4'}})
	next = updated.(Model)
	if next.CurrentView != ViewAccount {
		t.Fatalf("expected account view, got %q", next.CurrentView)
	}
}

func TestUpdateStatusAndError(t *testing.T) {
	m := testModel(t)
	updated, _ := m.Update(SetStatusMsg{Text: "ready"})
	next := updated.(Model)
	if next.Status.Text != "ready" || next.Status.IsError {
		t.Fatalf("unexpected status: %+v", next.Status)
	}

	updated, _ = next.Update(AppErrorMsg{Err: errors.New("boom")})
	next = updated.(Model)
	if next.LastError == nil || !next.Status.IsError {
		t.Fatalf("unexpected error state: %+v", next.Status)
	}

	updated, _ = next.Update(ClearStatusMsg{})
	next = updated.(Model)
	if next.Status.Text != "" {
		t.Fatalf("expected cleared status, got: %+v", next.Status)
	}
}

func TestTasksPageMergesIntoSections(t *testing.T) {
	m := testModel(t)
	seq, _, ok := m.engine.BeginLoad()
	if !ok {
		t.Fatal("load must start")
	}

	done := listingTask(2, "finished", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	done.IsDone = true
	updated, _ := m.Update(tasksPageMsg{Seq: seq, Page: firefly.TaskPage{
		Items: []model.Task{
			listingTask(1, "open", time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)),
			done,
		},
	}})
	next := updated.(Model)

	visible := next.visibleTasks()
	if len(visible) != 2 {
		t.Fatalf("got %d visible tasks, want 2", len(visible))
	}
	if visible[0].ID != 1 || visible[1].ID != 2 {
		t.Fatalf("to do must come before done: %+v", visible)
	}
}

func TestOpenDetailSuppressesUnread(t *testing.T) {
	m := testModel(t)
	seq, _, _ := m.engine.BeginLoad()
	unread := listingTask(9, "unread task", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	unread.IsUnread = true
	updated, _ := m.Update(tasksPageMsg{Seq: seq, Page: firefly.TaskPage{Items: []model.Task{unread}}})
	next := updated.(Model)

	if row := next.taskRow(unread, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 0); !row.Unread {
		t.Fatal("task must render unread before opening")
	}

	updated, cmd := next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	next = updated.(Model)
	if next.CurrentView != ViewDetail {
		t.Fatalf("expected detail view, got %q", next.CurrentView)
	}
	if cmd == nil {
		t.Fatal("opening detail must fetch the page")
	}
	if row := next.taskRow(unread, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 0); row.Unread {
		t.Fatal("unread badge must clear locally on open")
	}
}

func TestPaletteFilterCommand(t *testing.T) {
	m := testModel(t)
	m.Palette.Active = true
	m.commandInput.SetValue("filter done")

	updated, cmd := m.handlePaletteKey(tea.KeyMsg{Type: tea.KeyEnter})
	if updated.engine.Filter() != firefly.FilterDone {
		t.Fatalf("expected done filter, got %q", updated.engine.Filter())
	}
	if updated.Palette.Active {
		t.Fatal("palette must close after execute")
	}
	if cmd == nil {
		t.Fatal("filter change must start a load")
	}
	if updated.Status.IsError {
		t.Fatalf("unexpected error status: %+v", updated.Status)
	}
}

func TestPaletteRejectsUnknownCommand(t *testing.T) {
	m := testModel(t)
	m.Palette.Active = true
	m.commandInput.SetValue("teleport home")

	updated, _ := m.handlePaletteKey(tea.KeyMsg{Type: tea.KeyEnter})
	if !updated.Status.IsError {
		t.Fatalf("expected error status, got %+v", updated.Status)
	}
	if updated.Palette.Active {
		t.Fatal("palette must close even on error")
	}
}

func TestStaleDebounceIgnored(t *testing.T) {
	m := testModel(t)
	m.debounceSeq = 2

	updated, cmd := m.Update(searchDebounceMsg{Seq: 1, Text: "stale"})
	next := updated.(Model)
	if next.engine.SearchText() != "" {
		t.Fatal("stale debounce must not start a search")
	}
	if cmd != nil {
		t.Fatal("stale debounce must not fetch")
	}

	updated, cmd = next.Update(searchDebounceMsg{Seq: 2, Text: "fresh"})
	next = updated.(Model)
	if next.engine.SearchText() != "fresh" || !next.engine.Searching() {
		t.Fatal("current debounce must start the search")
	}
	if cmd == nil {
		t.Fatal("search must fetch its first page")
	}
}

func TestTaskMutatedReloadsListing(t *testing.T) {
	m := testModel(t)
	seq, _, _ := m.engine.BeginLoad()
	updated, _ := m.Update(tasksPageMsg{Seq: seq, Page: firefly.TaskPage{
		Items:   []model.Task{listingTask(1, "open", time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC))},
		HasMore: false,
	}})
	next := updated.(Model)

	updated, cmd := next.Update(taskMutatedMsg{TaskID: 1, Action: "done"})
	next = updated.(Model)
	if cmd == nil {
		t.Fatal("mutation must trigger a refetch")
	}
	if !next.engine.Loading() {
		t.Fatal("listing must be reloading after a mutation")
	}
}

func TestResourceDrillDown(t *testing.T) {
	m := testModel(t)
	m.resources.Nodes = []model.ResourceNode{
		{ID: 2, URL: "/dashboard", Section: "Subjects", Title: "Subjects", HasChildren: true},
	}

	updated, cmd := m.handleResourcesKey(tea.KeyMsg{Type: tea.KeyEnter})
	if len(updated.resources.Stack) != 1 || updated.resources.Stack[0].Section != "Subjects" {
		t.Fatalf("unexpected stack: %+v", updated.resources.Stack)
	}
	if cmd == nil {
		t.Fatal("drill down must fetch the level")
	}

	updated, cmd = updated.handleResourcesKey(tea.KeyMsg{Type: tea.KeyEsc})
	if len(updated.resources.Stack) != 0 {
		t.Fatalf("esc must pop the stack: %+v", updated.resources.Stack)
	}
	if cmd == nil {
		t.Fatal("popping must refetch the parent level")
	}
}

func TestLogoutQuits(t *testing.T) {
	m := testModel(t)
	updated, cmd := m.Update(logoutDoneMsg{})
	next := updated.(Model)
	if !next.Quitting {
		t.Fatal("logout must quit the program")
	}
	if cmd == nil {
		t.Fatal("expected tea.Quit command")
	}
	if next.session.Account != nil {
		t.Fatal("session account must be cleared")
	}
}

func TestViewRenders(t *testing.T) {
	m := testModel(t)
	seq, _, _ := m.engine.BeginLoad()
	updated, _ := m.Update(tasksPageMsg{Seq: seq, Page: firefly.TaskPage{
		Items: []model.Task{listingTask(1, "History essay", time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC))},
	}})
	next := updated.(Model)

	out := next.View()
	if out == "" {
		t.Fatal("view must render")
	}
	for _, want := range []string{"ffly", "History essay", "tasks"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q", want)
		}
	}
}
