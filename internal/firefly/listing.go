package firefly

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"ffly/internal/model"
)

// CompletionFilter narrows the task listing by progress state.
type CompletionFilter string

const (
	FilterAll  CompletionFilter = "AllIncludingArchived"
	FilterTodo CompletionFilter = "Todo"
	FilterDone CompletionFilter = "DoneOrArchived"
)

func (f CompletionFilter) IsValid() bool {
	switch f {
	case FilterAll, FilterTodo, FilterDone:
		return true
	default:
		return false
	}
}

// Title is the filter's display name.
func (f CompletionFilter) Title() string {
	switch f {
	case FilterTodo:
		return "To Do"
	case FilterDone:
		return "Done"
	default:
		return "All"
	}
}

type sortingCriterion struct {
	Column string `json:"column"`
	Order  string `json:"order"`
}

type listingRequest struct {
	ArchiveStatus    string             `json:"archiveStatus"`
	CompletionStatus CompletionFilter   `json:"completionStatus"`
	OwnerType        string             `json:"ownerType"`
	Page             int                `json:"page"`
	PageSize         int                `json:"pageSize"`
	SortingCriteria  []sortingCriterion `json:"sortingCriteria"`
}

type listingResponse struct {
	Items            []model.Task `json:"items"`
	AggregateOffsets struct {
		ToFfIndex int `json:"toFfIndex"`
	} `json:"aggregateOffsets"`
	TotalCount int `json:"totalCount"`
}

// TaskPage is one page of the task listing. HasMore is derived from the
// server's aggregate offset, not from the item count: short pages can still
// have more data behind them.
type TaskPage struct {
	Items      []model.Task
	TotalCount int
	HasMore    bool
}

// ListTasks fetches one page of the student task listing. Pages are numbered
// from zero and always sorted by due date descending server-side.
func (c *Client) ListTasks(ctx context.Context, filter CompletionFilter, page, pageSize int) (TaskPage, error) {
	payload, err := json.Marshal(listingRequest{
		ArchiveStatus:    "All",
		CompletionStatus: filter,
		OwnerType:        "OnlySetters",
		Page:             page,
		PageSize:         pageSize,
		SortingCriteria:  []sortingCriterion{{Column: "DueDate", Order: "Descending"}},
	})
	if err != nil {
		return TaskPage{}, fmt.Errorf("firefly: encode listing request: %w", err)
	}

	body, err := c.post(ctx, "/api/v2/taskListing/view/student/tasks/all/filterBy", "application/json", bytes.NewReader(payload))
	if err != nil {
		return TaskPage{}, err
	}

	var res listingResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return TaskPage{}, fmt.Errorf("firefly: decode listing response: %w", err)
	}
	return TaskPage{
		Items:      res.Items,
		TotalCount: res.TotalCount,
		HasMore:    res.AggregateOffsets.ToFfIndex != res.TotalCount,
	}, nil
}
