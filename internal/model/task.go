package model

import (
	"fmt"
	"strings"
	"time"
)

// Status is the derived display state of a task. It is never stored; it is
// computed from the raw flags and the due date on every render.
type Status string

const (
	StatusArchived             Status = "Archived"
	StatusDone                 Status = "Done"
	StatusExcused              Status = "Excused"
	StatusResubmissionRequired Status = "Resubmission required"
	StatusOverdue              Status = "Overdue"
	StatusToDo                 Status = "To Do"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusArchived, StatusDone, StatusExcused, StatusResubmissionRequired, StatusOverdue, StatusToDo:
		return true
	default:
		return false
	}
}

// User identifies a portal user as returned by the listing endpoint.
type User struct {
	SortKey string `json:"sortKey"`
	GUID    string `json:"guid"`
	Name    string `json:"name"`
	Deleted bool   `json:"deleted"`
}

// Addressee is a recipient of a task (a student, or a group).
type Addressee struct {
	GUID    string `json:"guid"`
	Name    string `json:"name"`
	IsGroup bool   `json:"isGroup"`
	Source  string `json:"source"`
}

// Mark carries the grading metadata of a task.
type Mark struct {
	IsMarked    bool     `json:"isMarked"`
	Grade       *string  `json:"grade"`
	Mark        *float64 `json:"mark"`
	MarkMax     *float64 `json:"markMax"`
	HasFeedback bool     `json:"hasFeedback"`
	Feedback    *string  `json:"feedback"`
}

// MarkBand buckets a numeric mark ratio into the fixed color tiers.
type MarkBand string

const (
	MarkBandStrong     MarkBand = "strong"     // ratio >= 0.8
	MarkBandGood       MarkBand = "good"       // ratio >= 0.7
	MarkBandBorderline MarkBand = "borderline" // ratio >= 0.6
	MarkBandWeak       MarkBand = "weak"
)

// Band returns the color tier for a numeric mark. The second return is false
// when the task has no numeric mark to bucket.
func (m Mark) Band() (MarkBand, bool) {
	ratio, ok := m.Ratio()
	if !ok {
		return "", false
	}
	switch {
	case ratio >= 0.8:
		return MarkBandStrong, true
	case ratio >= 0.7:
		return MarkBandGood, true
	case ratio >= 0.6:
		return MarkBandBorderline, true
	default:
		return MarkBandWeak, true
	}
}

// Ratio returns mark/markMax, or false when no numeric mark exists.
func (m Mark) Ratio() (float64, bool) {
	if !m.IsMarked || m.Mark == nil || m.MarkMax == nil || *m.MarkMax == 0 {
		return 0, false
	}
	return *m.Mark / *m.MarkMax, true
}

// Label is the metadata row title: Mark when a numeric mark exists, Grade
// when only a letter grade does, Marked otherwise.
func (m Mark) Label() string {
	if m.IsMarked {
		if m.Mark != nil {
			return "Mark"
		}
		if m.Grade != nil {
			return "Grade"
		}
	}
	return "Marked"
}

// Display renders the mark value, falling back from numeric mark to letter
// grade to a generic marked indicator. Empty for unmarked tasks.
func (m Mark) Display() string {
	if !m.IsMarked {
		return ""
	}
	if m.Mark != nil && m.MarkMax != nil {
		out := fmt.Sprintf("%s / %s", trimFloat(*m.Mark), trimFloat(*m.MarkMax))
		if m.Grade != nil && *m.Grade != "" {
			out += fmt.Sprintf(" (%s)", *m.Grade)
		}
		return out
	}
	if m.Grade != nil && *m.Grade != "" {
		return *m.Grade
	}
	return "Marked"
}

func trimFloat(v float64) string {
	out := fmt.Sprintf("%.2f", v)
	out = strings.TrimRight(out, "0")
	return strings.TrimRight(out, ".")
}

// Task is one assignment record from the listing endpoint. It is immutable
// client-side; state changes go through the responses endpoint followed by a
// refetch, never a local patch.
type Task struct {
	ID                           int64       `json:"id"`
	Title                        string      `json:"title"`
	Setter                       User        `json:"setter"`
	Addressees                   []Addressee `json:"addressees"`
	SetDate                      Timestamp   `json:"setDate"`
	DueDate                      Timestamp   `json:"dueDate"`
	Student                      User        `json:"student"`
	Mark                         Mark        `json:"mark"`
	IsPersonalTask               bool        `json:"isPersonalTask"`
	IsExcused                    bool        `json:"isExcused"`
	IsDone                       bool        `json:"isDone"`
	IsResubmissionRequired       bool        `json:"isResubmissionRequired"`
	LastMarkedAsDoneBy           *User       `json:"lastMarkedAsDoneBy"`
	Archived                     bool        `json:"archived"`
	IsUnread                     bool        `json:"isUnread"`
	FileSubmissionRequired       bool        `json:"fileSubmissionRequired"`
	HasFileSubmission            bool        `json:"hasFileSubmission"`
	DescriptionContainsQuestions bool        `json:"descriptionContainsQuestions"`
	IsMissingDueDate             bool        `json:"isMissingDueDate"`
	TaskSource                   string      `json:"taskSource"`
}

// AddresseeNames joins the addressee display names for the metadata pane.
func (t Task) AddresseeNames() string {
	names := make([]string, 0, len(t.Addressees))
	for _, a := range t.Addressees {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

// SubmissionSummary describes the submission requirements of a task.
func (t Task) SubmissionSummary() string {
	parts := make([]string, 0, 2)
	if t.FileSubmissionRequired {
		parts = append(parts, "File Required")
	}
	if t.DescriptionContainsQuestions {
		parts = append(parts, "Online Worksheet")
	}
	if len(parts) == 0 {
		return "No Requirement"
	}
	return strings.Join(parts, ", ")
}

// DeltaDays is the whole-day distance between date and now. The +1 shifts
// ties toward the past so a due date earlier on the current calendar day
// still counts as day zero rather than overdue.
func DeltaDays(date, now time.Time) int {
	diff := date.Sub(now).Hours() / 24
	return floorInt(diff) + 1
}

func floorInt(v float64) int {
	n := int(v)
	if v < 0 && float64(n) != v {
		n--
	}
	return n
}

// ClassifyStatus derives the single display status of a task. Precedence is
// fixed: archived beats done beats excused beats resubmission beats overdue.
func ClassifyStatus(t Task, now time.Time) Status {
	switch {
	case t.Archived:
		return StatusArchived
	case t.IsDone:
		return StatusDone
	case t.IsExcused:
		return StatusExcused
	case t.IsResubmissionRequired:
		return StatusResubmissionRequired
	case DeltaDays(t.DueDate.Time, now) < 0:
		return StatusOverdue
	default:
		return StatusToDo
	}
}
