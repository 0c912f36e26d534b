package firefly

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"ffly/internal/model"
)

func testSession(instanceURL string) model.Session {
	return model.Session{
		InstanceURL: instanceURL,
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
}

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(testSession(srv.URL), srv.Client(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.now = func() time.Time { return time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC) }
	return c
}

func TestNewRequiresCredential(t *testing.T) {
	if _, err := New(model.Session{InstanceURL: "https://x", DeviceID: "d"}, nil, nil); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("got %v, want ErrNotAuthenticated", err)
	}
}

func TestListTasks(t *testing.T) {
	var gotBody listingRequest
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/taskListing/view/student/tasks/all/filterBy" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("ffauth_device_id") != "dev-1" || r.URL.Query().Get("ffauth_secret") != "s3cret" {
			t.Errorf("missing auth params: %s", r.URL.RawQuery)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		io.WriteString(w, `{
			"items": [{"id": 1, "title": "Essay", "dueDate": "2024-01-12T00:00:00Z"}],
			"aggregateOffsets": {"toFfIndex": 50},
			"totalCount": 120
		}`)
	}))

	page, err := c.ListTasks(context.Background(), FilterTodo, 0, 50)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].Title != "Essay" {
		t.Fatalf("unexpected items: %+v", page.Items)
	}
	if !page.HasMore {
		t.Fatal("offset 50 of 120 must report more pages")
	}
	if page.TotalCount != 120 {
		t.Fatalf("total count: got %d", page.TotalCount)
	}

	if gotBody.CompletionStatus != FilterTodo || gotBody.ArchiveStatus != "All" || gotBody.OwnerType != "OnlySetters" {
		t.Fatalf("unexpected request body: %+v", gotBody)
	}
	if gotBody.PageSize != 50 || gotBody.Page != 0 {
		t.Fatalf("unexpected paging: %+v", gotBody)
	}
	if len(gotBody.SortingCriteria) != 1 || gotBody.SortingCriteria[0].Column != "DueDate" {
		t.Fatalf("unexpected sorting: %+v", gotBody.SortingCriteria)
	}
}

func TestListTasksLastPage(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"items": [], "aggregateOffsets": {"toFfIndex": 120}, "totalCount": 120}`)
	}))
	page, err := c.ListTasks(context.Background(), FilterAll, 2, 50)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if page.HasMore {
		t.Fatal("offset equal to total must report no more pages")
	}
}

func decodeDataParam(t *testing.T, r *http.Request, into any) {
	t.Helper()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	form, err := url.ParseQuery(string(body))
	if err != nil {
		t.Fatalf("parse form: %v", err)
	}
	if err := json.Unmarshal([]byte(form.Get("data")), into); err != nil {
		t.Fatalf("decode data param: %v", err)
	}
}

func TestSetDone(t *testing.T) {
	var envelope responseEnvelope
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/_api/1.0/tasks/42/responses" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("content type: %s", ct)
		}
		decodeDataParam(t, r, &envelope)
	}))

	if err := c.SetDone(context.Background(), 42, true); err != nil {
		t.Fatalf("SetDone: %v", err)
	}
	if envelope.Event.Type != "mark-as-done" {
		t.Fatalf("event type: %q", envelope.Event.Type)
	}
	if envelope.Recipient.GUID != "user-guid" || envelope.Event.Author != "user-guid" {
		t.Fatalf("unexpected envelope: %+v", envelope)
	}
	if envelope.Event.Sent != "2024-01-10T12:00:00Z" {
		t.Fatalf("sent: %q", envelope.Event.Sent)
	}

	if err := c.SetDone(context.Background(), 42, false); err != nil {
		t.Fatalf("SetDone undone: %v", err)
	}
	if envelope.Event.Type != "mark-as-undone" {
		t.Fatalf("event type: %q", envelope.Event.Type)
	}
}

func TestComment(t *testing.T) {
	var envelope responseEnvelope
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decodeDataParam(t, r, &envelope)
	}))

	if err := c.Comment(context.Background(), 7, "late again, sorry"); err != nil {
		t.Fatalf("Comment: %v", err)
	}
	if envelope.Event.Type != "comment" || envelope.Event.Message != "late again, sorry" {
		t.Fatalf("unexpected event: %+v", envelope.Event)
	}
}

func TestMarkRead(t *testing.T) {
	var payload struct {
		Recipient recipient `json:"recipient"`
	}
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/_api/1.0/tasks/9/mark_as_read" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		decodeDataParam(t, r, &payload)
	}))

	if err := c.MarkRead(context.Background(), 9); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if payload.Recipient.Type != "user" || payload.Recipient.GUID != "user-guid" {
		t.Fatalf("unexpected recipient: %+v", payload.Recipient)
	}
}

func TestActionFailed(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	err := c.SetDone(context.Background(), 1, true)
	if !errors.Is(err, ErrActionFailed) {
		t.Fatalf("got %v, want ErrActionFailed", err)
	}
}

func TestResources(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("view") != "xml" {
			t.Errorf("missing view=xml: %s", r.URL.RawQuery)
		}
		io.WriteString(w, `<portal>
			<toplevel title="Home" id="1" href="/"/>
			<toplevel title="Subjects" id="2" href="/subjects"/>
		</portal>`)
	}))

	nodes, err := c.Resources(context.Background(), "/dashboard", "")
	if err != nil {
		t.Fatalf("Resources: %v", err)
	}
	if len(nodes) != 1 || nodes[0].Section != "Subjects" {
		t.Fatalf("unexpected nodes: %+v", nodes)
	}
}

func TestBookmarks(t *testing.T) {
	var query string
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		form, _ := url.ParseQuery(string(body))
		query = form.Get("data")
		io.WriteString(w, `{"data": {"users": [{"bookmarks": [
			{"guid": "b2", "title": "Second", "position": 2},
			{"guid": "b1", "title": "First", "position": 1}
		]}]}}`)
	}))

	bookmarks, err := c.Bookmarks(context.Background())
	if err != nil {
		t.Fatalf("Bookmarks: %v", err)
	}
	if !strings.Contains(query, `users(guid: "user-guid")`) {
		t.Fatalf("query missing user guid: %s", query)
	}
	if len(bookmarks) != 2 || bookmarks[0].GUID != "b1" || bookmarks[1].GUID != "b2" {
		t.Fatalf("not sorted by position: %+v", bookmarks)
	}
}

func TestTaskDetailFetch(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/set-tasks/42" || r.URL.Query().Get("view") != "xml" {
			t.Errorf("unexpected request: %s?%s", r.URL.Path, r.URL.RawQuery)
		}
		io.WriteString(w, `<page><task-details-react-component initial-state='{"task":{"task":{"id":42,"title":"Essay"}}}'></task-details-react-component></page>`)
	}))

	d, err := c.TaskDetail(context.Background(), 42)
	if err != nil {
		t.Fatalf("TaskDetail: %v", err)
	}
	if d.Task.Task.ID != 42 || d.Task.Task.Title != "Essay" {
		t.Fatalf("unexpected detail: %+v", d)
	}
}

func TestURLs(t *testing.T) {
	c, err := New(testSession("https://school.example.org/"), &http.Client{}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := c.TaskURL(42); got != "https://school.example.org/set-tasks/42" {
		t.Fatalf("TaskURL: %q", got)
	}
	attachment := c.AttachmentURL(42, 7)
	if !strings.HasPrefix(attachment, "https://school.example.org/_api/1.0/tasks/42/attachments/7?") {
		t.Fatalf("AttachmentURL: %q", attachment)
	}
	if !strings.Contains(attachment, "ffauth_secret=s3cret") {
		t.Fatalf("AttachmentURL missing auth: %q", attachment)
	}
	if got := c.PageURL("/subjects/maths"); got != "https://school.example.org/subjects/maths" {
		t.Fatalf("PageURL: %q", got)
	}
}

func TestLoginURL(t *testing.T) {
	got := LoginURL("https://school.example.org/", "DEV-9")
	want := "https://school.example.org/login/login.aspx?prelogin=" +
		url.QueryEscape("/Login/api/gettoken?ffauth_device_id=DEV-9&ffauth_secret=&device_id=DEV-9&app_id=ipad_tasks")
	if got != want {
		t.Fatalf("LoginURL:\n got %q\nwant %q", got, want)
	}
}
