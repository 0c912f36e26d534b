// Package update holds the bubbletea model: panel state, key handling, and
// the commands that talk to the portal.
package update

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"go.uber.org/zap"

	"ffly/internal/config"
	"ffly/internal/detail"
	"ffly/internal/firefly"
	"ffly/internal/model"
	"ffly/internal/storage"
	"ffly/internal/tasklist"
)

type View string

const (
	ViewTasks     View = "Tasks"
	ViewResources View = "Resources"
	ViewBookmarks View = "Bookmarks"
	ViewAccount   View = "Account"
	ViewDetail    View = "Detail"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Tasks     string
	Resources string
	Bookmarks string
	Account   string
	Help      string
	Quit      string
}

// Services bundles everything the update loop needs to reach the outside
// world. Tests swap in clients against httptest servers.
type Services struct {
	Client   *firefly.Client
	Repo     storage.Repository
	Renderer *detail.Renderer
	Log      *zap.Logger
	Config   config.Config
}

// resourceLevel is one step of the resources breadcrumb.
type resourceLevel struct {
	URL     string
	Section string
	Title   string
}

type ResourceState struct {
	Stack   []resourceLevel
	Nodes   []model.ResourceNode
	Cursor  int
	Loading bool
}

type DetailState struct {
	Task     model.Task
	State    detail.TaskDetail
	Markdown string
	Loading  bool
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Model struct {
	CurrentView View
	services    Services
	session     model.Session

	engine       *tasklist.Engine
	taskCursor   int
	readOverride map[int64]bool

	resources       ResourceState
	pinned          []model.ResourceNode
	bookmarks       []model.Bookmark
	bookmarksLoaded bool
	bookmarkCursor  int

	detail     DetailState
	commenting bool

	Palette     CommandPaletteState
	HelpVisible bool
	ShowSecret  bool
	Status      StatusBar
	Keys        GlobalKeyMap
	Quitting    bool
	LastError   error

	searchInput  textinput.Model
	commandInput textinput.Model
	commentArea  textarea.Model
	loadSpinner  spinner.Model
	detailView   viewport.Model
	debounceSeq  int
}

func NewModel(services Services, session model.Session) Model {
	searchInput := textinput.New()
	searchInput.Placeholder = "search tasks"

	commandInput := textinput.New()
	commandInput.Placeholder = "filter todo | search essay | open 123 | logout"

	commentArea := textarea.New()
	commentArea.Placeholder = "message to the setter"

	loadSpinner := spinner.New()
	loadSpinner.Spinner = spinner.Dot

	return Model{
		CurrentView:  ViewTasks,
		services:     services,
		session:      session,
		engine:       tasklist.NewEngine(firefly.FilterAll),
		readOverride: make(map[int64]bool),
		Keys: GlobalKeyMap{
			Tasks:     "1",
			Resources: "2",
			Bookmarks: "3",
			Account:   "4",
			Help:      "?",
			Quit:      "q",
		},
		searchInput:  searchInput,
		commandInput: commandInput,
		commentArea:  commentArea,
		loadSpinner:  loadSpinner,
		detailView:   viewport.New(80, 24),
	}
}

// Messages.

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

type SwitchViewMsg struct {
	View View
}

type tasksPageMsg struct {
	Seq  int
	Page firefly.TaskPage
}

type tasksPageErrMsg struct {
	Seq int
	Err error
}

type searchDebounceMsg struct {
	Seq  int
	Text string
}

type searchPageMsg struct {
	Gen     int
	PageNum int
	Page    firefly.TaskPage
}

type searchErrMsg struct {
	Gen int
	Err error
}

type resourcesMsg struct {
	Nodes []model.ResourceNode
	Err   error
}

type pinnedMsg struct {
	Nodes []model.ResourceNode
	Err   error
}

type bookmarksMsg struct {
	Bookmarks []model.Bookmark
	Err       error
}

type detailMsg struct {
	TaskID   int64
	State    detail.TaskDetail
	Markdown string
	Err      error
}

// taskMutatedMsg reports the outcome of a done/undone/comment action. On
// success the listing and the open detail are refetched rather than patched.
type taskMutatedMsg struct {
	TaskID int64
	Action string
	Err    error
}

type browserOpenedMsg struct {
	URL string
	Err error
}

type copiedMsg struct {
	What string
	Err  error
}

type logoutDoneMsg struct {
	Err error
}
