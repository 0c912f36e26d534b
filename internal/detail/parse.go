// Package detail handles the task detail page: extracting the embedded JSON
// state from its XML view and rendering the description for the terminal.
package detail

import (
	"encoding/json"
	"io"

	"golang.org/x/net/html"
)

// Attachment is one file attached to a task.
type Attachment struct {
	ID       int64  `json:"id"`
	Type     string `json:"type"`
	FileName string `json:"fileName"`
}

// DetailAddressee is a recipient as shown on the detail page.
type DetailAddressee struct {
	DisplayName string `json:"displayName"`
	PictureHref string `json:"pictureHref"`
	Type        string `json:"type"`
	GUID        string `json:"guid"`
}

// TaskBody is the inner task record of the detail state.
type TaskBody struct {
	ID                           int64             `json:"id"`
	Title                        string            `json:"title"`
	DisplayTitle                 string            `json:"displayTitle"`
	SetDateUTC                   []string          `json:"setDateUtc"`
	DueDateUTC                   []string          `json:"dueDateUtc"`
	Description                  string            `json:"description"`
	DescriptionContainsQuestions bool              `json:"descriptionContainsQuestions"`
	DescriptionPageURL           string            `json:"descriptionPageUrl"`
	Attachments                  []Attachment      `json:"attachments"`
	PageID                       string            `json:"pageId"`
	Archived                     bool              `json:"archived"`
	SetterGUID                   string            `json:"setterGuid"`
	TaskType                     string            `json:"taskType"`
	FileSubmissionRequired       bool              `json:"fileSubmissionRequired"`
	Addressees                   []DetailAddressee `json:"addressees"`
	ReleaseMode                  string            `json:"releaseMode"`
}

// TaskDetail is the state blob embedded in the detail page. Only the fields
// the panels use are decoded; the rest of the blob is ignored.
type TaskDetail struct {
	Task struct {
		Task   TaskBody `json:"task"`
		Setter struct {
			Name    string `json:"name"`
			SortKey string `json:"sortKey"`
		} `json:"setter"`
	} `json:"task"`
	LoggedInUser struct {
		GUID    string `json:"guid"`
		Role    string `json:"role"`
		Name    string `json:"name"`
		IsAdmin bool   `json:"isAdmin"`
	} `json:"loggedInUser"`
	RenderRestrictedView bool `json:"renderRestrictedView"`
}

// Parse extracts the detail state from a task's XML page view. The state
// lives in the initial-state attribute of a single custom element. A page
// without that element, or with an unreadable blob, yields the zero detail
// rather than an error so stale or restricted pages still render.
func Parse(r io.Reader) TaskDetail {
	var out TaskDetail

	doc, err := html.Parse(r)
	if err != nil {
		return out
	}
	raw := findInitialState(doc)
	if raw == "" {
		return out
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return TaskDetail{}
	}
	return out
}

func findInitialState(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "task-details-react-component" {
		for _, a := range n.Attr {
			if a.Key == "initial-state" {
				return a.Val
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if state := findInitialState(c); state != "" {
			return state
		}
	}
	return ""
}
