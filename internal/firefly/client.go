// Package firefly is the HTTP client for the school portal. Every endpoint
// authenticates with the device id and secret as query parameters; there are
// no sessions or cookies.
package firefly

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"ffly/internal/model"
)

var (
	ErrNotAuthenticated = errors.New("firefly: session has no credential")
	ErrActionFailed     = errors.New("firefly: portal rejected the request")
)

// Client issues authenticated calls against one portal instance.
type Client struct {
	instanceURL string
	deviceID    string
	secret      string
	userGUID    string

	http *http.Client
	log  *zap.Logger
	now  func() time.Time
}

// New builds a client from an authenticated session. It fails when the
// session has no account, since every endpoint needs the secret.
func New(session model.Session, httpClient *http.Client, log *zap.Logger) (*Client, error) {
	if !session.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		instanceURL: strings.TrimRight(session.InstanceURL, "/"),
		deviceID:    session.DeviceID,
		secret:      session.Account.Secret,
		userGUID:    session.Account.GUID,
		http:        httpClient,
		log:         log,
		now:         time.Now,
	}, nil
}

// InstanceURL returns the portal base URL without a trailing slash.
func (c *Client) InstanceURL() string {
	return c.instanceURL
}

// endpoint builds an absolute portal URL with the auth query parameters
// appended. path may already carry a query string.
func (c *Client) endpoint(path string, extra url.Values) string {
	q := url.Values{}
	for k, vs := range extra {
		q[k] = vs
	}
	q.Set("ffauth_device_id", c.deviceID)
	q.Set("ffauth_secret", c.secret)

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return c.instanceURL + path + sep + q.Encode()
}

func (c *Client) get(ctx context.Context, path string, extra url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path, extra), nil)
	if err != nil {
		return nil, fmt.Errorf("firefly: build request: %w", err)
	}
	return c.do(req)
}

func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path, nil), body)
	if err != nil {
		return nil, fmt.Errorf("firefly: build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	return c.do(req)
}

// postData sends the portal's form envelope: a single urlencoded `data` field
// holding a JSON payload.
func (c *Client) postData(ctx context.Context, path, payload string) ([]byte, error) {
	form := url.Values{"data": {payload}}
	return c.post(ctx, path, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	c.log.Debug("portal request", zap.String("method", req.Method), zap.String("path", req.URL.Path))
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("firefly: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("firefly: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn("portal error response",
			zap.String("path", req.URL.Path),
			zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: %s %s: status %d", ErrActionFailed, req.Method, req.URL.Path, resp.StatusCode)
	}
	return body, nil
}

// TaskURL is the browser-facing address of a task.
func (c *Client) TaskURL(taskID int64) string {
	return fmt.Sprintf("%s/set-tasks/%d", c.instanceURL, taskID)
}

// AttachmentURL is the authenticated download address of a task attachment.
func (c *Client) AttachmentURL(taskID, attachmentID int64) string {
	return c.endpoint(fmt.Sprintf("/_api/1.0/tasks/%d/attachments/%d", taskID, attachmentID), nil)
}

// PageURL is the browser-facing address of a resource page.
func (c *Client) PageURL(pageURL string) string {
	return c.instanceURL + "/" + strings.TrimPrefix(pageURL, "/")
}

// LoginURL is the browser address that bootstraps a credential token for the
// given device. It needs no secret, so it is a package function.
func LoginURL(instanceURL, deviceID string) string {
	instanceURL = strings.TrimRight(instanceURL, "/")
	prelogin := fmt.Sprintf("/Login/api/gettoken?ffauth_device_id=%s&ffauth_secret=&device_id=%s&app_id=ipad_tasks",
		deviceID, deviceID)
	return instanceURL + "/login/login.aspx?prelogin=" + url.QueryEscape(prelogin)
}
