package firefly

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

type recipient struct {
	Type string `json:"type"`
	GUID string `json:"guid"`
}

type responseEvent struct {
	Type     string `json:"type"`
	Feedback string `json:"feedback"`
	Message  string `json:"message,omitempty"`
	Sent     string `json:"sent"`
	Author   string `json:"author"`
}

type responseEnvelope struct {
	Recipient recipient     `json:"recipient"`
	Event     responseEvent `json:"event"`
}

// MarkRead clears the unread flag of a task for the logged-in user.
func (c *Client) MarkRead(ctx context.Context, taskID int64) error {
	payload, err := json.Marshal(struct {
		Recipient recipient `json:"recipient"`
	}{Recipient: recipient{Type: "user", GUID: c.userGUID}})
	if err != nil {
		return fmt.Errorf("firefly: encode mark_as_read: %w", err)
	}
	_, err = c.postData(ctx, fmt.Sprintf("/_api/1.0/tasks/%d/mark_as_read", taskID), string(payload))
	return err
}

// SetDone records a mark-as-done or mark-as-undone response on a task. The
// listing is not patched locally; callers refetch after a success.
func (c *Client) SetDone(ctx context.Context, taskID int64, done bool) error {
	eventType := "mark-as-undone"
	if done {
		eventType = "mark-as-done"
	}
	return c.respond(ctx, taskID, responseEvent{Type: eventType})
}

// Comment sends a message to the task's setter through the response stream.
func (c *Client) Comment(ctx context.Context, taskID int64, message string) error {
	return c.respond(ctx, taskID, responseEvent{Type: "comment", Message: message})
}

func (c *Client) respond(ctx context.Context, taskID int64, event responseEvent) error {
	event.Sent = c.now().UTC().Format(time.RFC3339)
	event.Author = c.userGUID
	payload, err := json.Marshal(responseEnvelope{
		Recipient: recipient{Type: "user", GUID: c.userGUID},
		Event:     event,
	})
	if err != nil {
		return fmt.Errorf("firefly: encode response event: %w", err)
	}
	_, err = c.postData(ctx, fmt.Sprintf("/_api/1.0/tasks/%d/responses", taskID), string(payload))
	return err
}
