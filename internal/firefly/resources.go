package firefly

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"

	"ffly/internal/menu"
	"ffly/internal/model"
)

// Resources fetches one page's XML listing and extracts its resource nodes.
// section selects a drill-down into one dashboard section; empty means the
// page's own menu (or the dashboard root for "/dashboard").
func (c *Client) Resources(ctx context.Context, pageURL, section string) ([]model.ResourceNode, error) {
	body, err := c.get(ctx, pageURL, url.Values{"view": {"xml"}})
	if err != nil {
		return nil, err
	}
	return menu.Extract(bytes.NewReader(body), pageURL, section), nil
}

const bookmarksQuery = `query Query {
  users(guid: %q) {
    bookmarks {
      simple_url
      deletable
      position
      read
      from {
        guid
        name
      }
      type
      title
      is_form
      form_answered
      breadcrumb
      guid
      created
    }
  }
}`

type bookmarksResponse struct {
	Data struct {
		Users []struct {
			Bookmarks []model.Bookmark `json:"bookmarks"`
		} `json:"users"`
	} `json:"data"`
}

// Bookmarks fetches the logged-in user's bookmarks, ordered by position.
func (c *Client) Bookmarks(ctx context.Context) ([]model.Bookmark, error) {
	body, err := c.postData(ctx, "/_api/1.0/graphql", fmt.Sprintf(bookmarksQuery, c.userGUID))
	if err != nil {
		return nil, err
	}

	var res bookmarksResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("firefly: decode bookmarks: %w", err)
	}
	if len(res.Data.Users) == 0 {
		return []model.Bookmark{}, nil
	}

	bookmarks := res.Data.Users[0].Bookmarks
	sort.SliceStable(bookmarks, func(i, j int) bool {
		return bookmarks[i].Position < bookmarks[j].Position
	})
	return bookmarks, nil
}
