package firefly

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"ffly/internal/detail"
)

// TaskDetail fetches and parses the detail page of one task.
func (c *Client) TaskDetail(ctx context.Context, taskID int64) (detail.TaskDetail, error) {
	body, err := c.get(ctx, fmt.Sprintf("/set-tasks/%d", taskID), url.Values{"view": {"xml"}})
	if err != nil {
		return detail.TaskDetail{}, err
	}
	return detail.Parse(bytes.NewReader(body)), nil
}
