package views

import (
	"fmt"
	"strings"
)

type TaskRowData struct {
	ID       int64
	Title    string
	Due      string
	Status   string
	Unread   bool
	Overdue  bool
	Selected bool
}

type TaskPanelData struct {
	FilterTitle string
	SearchView  string
	SearchText  string
	Searching   bool
	SearchCount int
	ToDo        []TaskRowData
	Done        []TaskRowData
	Loading     bool
	Empty       bool
	HasMore     bool
}

type TaskMetadataData struct {
	ID           int64
	PersonalTask bool
	Status       string
	Title        string
	Setter       string
	Addressees   string
	SetOn        string
	DueOn        string
	MarkLabel    string
	MarkValue    string
	Submission   string
}

type AttachmentData struct {
	Name string
	URL  string
}

type DetailPanelData struct {
	Title       string
	Body        string
	Attachments []AttachmentData
	Metadata    TaskMetadataData
	CommentView string
	Commenting  bool
	Loading     bool
}

type ResourceRowData struct {
	Title    string
	Folder   bool
	Pinned   bool
	Selected bool
}

type ResourcePanelData struct {
	Breadcrumb string
	Pinned     []ResourceRowData
	Rows       []ResourceRowData
	Loading    bool
}

type BookmarkRowData struct {
	Title      string
	From       string
	Breadcrumb string
	Selected   bool
}

type BookmarkPanelData struct {
	Rows    []BookmarkRowData
	Loading bool
}

type AccountPanelData struct {
	LoggedIn   bool
	Username   string
	FullName   string
	Email      string
	Role       string
	DeviceID   string
	Secret     string
	TokenDate  string
	ShowSecret bool
}

func RenderTaskPanel(data TaskPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("tasks [%s]:\n", data.FilterTitle))
	b.WriteString(data.SearchView + "\n")
	b.WriteString("actions: [j/k]move [enter]detail [f]filter [o]browser [L]more\n")

	if data.SearchText != "" {
		if data.Searching {
			b.WriteString(fmt.Sprintf("searching %q... %d so far\n", data.SearchText, data.SearchCount))
		} else {
			b.WriteString(fmt.Sprintf("search %q: %d found\n", data.SearchText, data.SearchCount))
		}
	}

	renderTaskSection(&b, "To Do", data.ToDo)
	renderTaskSection(&b, "Done", data.Done)

	switch {
	case data.Loading && len(data.ToDo)+len(data.Done) == 0:
		b.WriteString("loading tasks...\n")
	case data.Empty:
		b.WriteString("no tasks found\n")
	case data.HasMore:
		b.WriteString("more pages available\n")
	}
	return strings.TrimSpace(b.String())
}

func renderTaskSection(b *strings.Builder, title string, rows []TaskRowData) {
	if len(rows) == 0 {
		return
	}
	b.WriteString(title + ":\n")
	for _, row := range rows {
		cursor := "  "
		if row.Selected {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%s", cursor, row.Title)
		if row.Due != "" {
			due := row.Due
			if row.Overdue {
				due = dangerStyle.Render(due)
			}
			line += fmt.Sprintf(" (%s)", due)
		}
		if row.Unread {
			line += " " + unreadStyle.Render("[unread]")
		}
		if row.Status != "" {
			line += fmt.Sprintf(" [%s]", row.Status)
		}
		b.WriteString(line + "\n")
	}
}

func RenderTaskMetadata(data TaskMetadataData) string {
	var b strings.Builder
	if data.PersonalTask {
		b.WriteString("personal task\n")
	}
	b.WriteString("Status: " + data.Status + "\n")
	b.WriteString("Title: " + data.Title + "\n")
	b.WriteString("Set by: " + data.Setter + "\n")
	b.WriteString("Set to: " + data.Addressees + "\n")
	b.WriteString("---\n")
	b.WriteString("Set on: " + data.SetOn + "\n")
	b.WriteString("Due on: " + data.DueOn + "\n")
	b.WriteString("---\n")
	if data.MarkValue != "" {
		b.WriteString(data.MarkLabel + ": " + data.MarkValue + "\n")
	} else {
		b.WriteString("Marked: no\n")
	}
	b.WriteString("Submission: " + data.Submission + "\n")
	b.WriteString("---\n")
	b.WriteString(fmt.Sprintf("ID: %d\n", data.ID))
	return strings.TrimSpace(b.String())
}

func RenderDetailPanel(data DetailPanelData) string {
	if data.Loading {
		return "loading task detail..."
	}
	var b strings.Builder
	b.WriteString("task: " + data.Title + "\n")
	b.WriteString("actions: [d]done/undone [c]comment [o]browser [y]copy url [esc]back\n")
	if data.Commenting {
		b.WriteString("comment (enter sends, esc cancels):\n")
		b.WriteString(data.CommentView + "\n")
	}
	if len(data.Attachments) > 0 {
		b.WriteString("attachments:\n")
		for _, att := range data.Attachments {
			b.WriteString(fmt.Sprintf("  %s -> %s\n", att.Name, att.URL))
		}
	}
	b.WriteString(RenderMarkdown(data.Body) + "\n")
	b.WriteString("---\n")
	b.WriteString(RenderTaskMetadata(data.Metadata))
	return strings.TrimSpace(b.String())
}

func RenderResourcePanel(data ResourcePanelData) string {
	var b strings.Builder
	b.WriteString("resources: " + data.Breadcrumb + "\n")
	b.WriteString("actions: [j/k]move [enter]drill [esc]up [p]pin [u]unpin [o]browser\n")
	if len(data.Pinned) > 0 {
		b.WriteString("Pinned:\n")
		renderResourceRows(&b, data.Pinned)
	}
	if data.Loading {
		b.WriteString("loading pages...\n")
	} else if len(data.Rows) == 0 {
		b.WriteString("no pages here\n")
	} else {
		renderResourceRows(&b, data.Rows)
	}
	return strings.TrimSpace(b.String())
}

func renderResourceRows(b *strings.Builder, rows []ResourceRowData) {
	for _, row := range rows {
		cursor := "  "
		if row.Selected {
			cursor = "> "
		}
		marker := "·"
		if row.Folder {
			marker = "+"
		}
		line := fmt.Sprintf("%s%s %s", cursor, marker, row.Title)
		if row.Pinned {
			line += " [pinned]"
		}
		b.WriteString(line + "\n")
	}
}

func RenderBookmarkPanel(data BookmarkPanelData) string {
	var b strings.Builder
	b.WriteString("bookmarks:\n")
	b.WriteString("actions: [j/k]move [o]browser [y]copy url\n")
	if data.Loading {
		b.WriteString("loading bookmarks...\n")
		return strings.TrimSpace(b.String())
	}
	if len(data.Rows) == 0 {
		b.WriteString("no bookmarks\n")
		return strings.TrimSpace(b.String())
	}
	for _, row := range data.Rows {
		cursor := "  "
		if row.Selected {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%s", cursor, row.Title)
		if row.From != "" {
			line += " by " + row.From
		}
		if row.Breadcrumb != "" {
			line += " (" + row.Breadcrumb + ")"
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimSpace(b.String())
}

const maskedValue = "••••••••••"

func RenderAccountPanel(data AccountPanelData) string {
	var b strings.Builder
	b.WriteString("account:\n")
	if !data.LoggedIn {
		b.WriteString("not logged in; run `ffly login`\n")
		return strings.TrimSpace(b.String())
	}
	b.WriteString("actions: [s]show/hide secret [y]copy username\n")
	b.WriteString("Status: Working\n")
	b.WriteString("Username: " + data.Username + "\n")
	fullName := maskedValue
	if data.ShowSecret {
		fullName = data.FullName
	}
	b.WriteString("Full Name: " + fullName + "\n")
	b.WriteString("Email: " + data.Email + "\n")
	b.WriteString("Role: " + titleCase(data.Role) + "\n")
	b.WriteString("---\n")
	b.WriteString("Device ID: " + data.DeviceID + "\n")
	secret := maskedValue
	if data.ShowSecret {
		secret = data.Secret
	}
	b.WriteString("Secret: " + secret + "\n")
	b.WriteString("Secret Creation Date: " + data.TokenDate + "\n")
	return strings.TrimSpace(b.String())
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
