package model

// ResourceNode is one entry in the portal's navigable content hierarchy: a
// top-level section, a page, or a menu child. ID is unique only within the
// listing it came from, not globally.
type ResourceNode struct {
	URL         string `json:"url"`
	Section     string `json:"section,omitempty"`
	Title       string `json:"title"`
	ID          int64  `json:"id"`
	HasChildren bool   `json:"hasChildren"`
}

// Bookmark is one entry from the graphql bookmarks query.
type Bookmark struct {
	SimpleURL    string `json:"simple_url"`
	Position     int    `json:"position"`
	From         User   `json:"from"`
	Type         string `json:"type"`
	Title        string `json:"title"`
	IsForm       bool   `json:"is_form"`
	FormAnswered bool   `json:"form_answered"`
	Breadcrumb   string `json:"breadcrumb"`
	GUID         string `json:"guid"`
	Created      string `json:"created"`
}
