// Package menu extracts navigable resource nodes from the portal's XML page
// listings. The markup is inconsistent across portal versions, so extraction
// is lenient: malformed input yields an empty slice, never an error.
package menu

import (
	"io"
	"strconv"

	"golang.org/x/net/html"

	"ffly/internal/model"
)

// Extract parses one `?view=xml` page listing and returns its resource nodes.
// Three shapes exist:
//
//   - a section drill-down (section != ""): the children of the matching
//     toplevel element;
//   - the dashboard root (url == "/dashboard", no section): one pseudo-node
//     per toplevel section, excluding the bare "/" entry;
//   - any other page: the page menu, either the siblings of the selected
//     homepage item or the nested items below the selected one.
func Extract(r io.Reader, url, section string) []model.ResourceNode {
	doc, err := html.Parse(r)
	if err != nil {
		return []model.ResourceNode{}
	}

	switch {
	case section != "":
		return sectionChildren(doc, section)
	case url == "/dashboard":
		return dashboardSections(doc)
	default:
		return pageMenuItems(doc)
	}
}

func sectionChildren(doc *html.Node, section string) []model.ResourceNode {
	nodes := []model.ResourceNode{}
	for _, top := range findAll(doc, "toplevel") {
		if attr(top, "title") != section {
			continue
		}
		for _, child := range findAll(top, "child") {
			nodes = append(nodes, model.ResourceNode{
				URL:   attr(child, "href"),
				Title: attr(child, "title"),
				ID:    parseID(attr(child, "page_id")),
				// The listing does not say whether a child has
				// its own children, so assume it does.
				HasChildren: true,
			})
		}
	}
	return nodes
}

func dashboardSections(doc *html.Node) []model.ResourceNode {
	nodes := []model.ResourceNode{}
	for _, top := range findAll(doc, "toplevel") {
		if attr(top, "href") == "/" {
			continue
		}
		title := attr(top, "title")
		nodes = append(nodes, model.ResourceNode{
			URL:         "/dashboard",
			Section:     title,
			Title:       title,
			ID:          parseID(attr(top, "id")),
			HasChildren: true,
		})
	}
	return nodes
}

func pageMenuItems(doc *html.Node) []model.ResourceNode {
	nodes := []model.ResourceNode{}
	var items []*html.Node
	for _, pm := range findAll(doc, "pagemenu") {
		selected := firstSelectedMenuItem(pm)
		if selected != nil && attr(selected, "homepage") == "yes" {
			for _, item := range topMenuItems(pm) {
				if attr(item, "homepage") != "yes" {
					items = append(items, item)
				}
			}
		} else {
			for _, item := range findAll(pm, "item") {
				if attr(item, "selected") == "yes" {
					items = append(items, findAll(item, "item")...)
				}
			}
		}
	}
	for _, item := range items {
		nodes = append(nodes, model.ResourceNode{
			URL:         attr(item, "href"),
			Title:       attr(item, "title"),
			ID:          parseID(attr(item, "id")),
			HasChildren: attr(item, "numchildren") != "0",
		})
	}
	return nodes
}

// topMenuItems returns the item elements directly under pagemenu > menu.
func topMenuItems(pagemenu *html.Node) []*html.Node {
	var items []*html.Node
	for menu := pagemenu.FirstChild; menu != nil; menu = menu.NextSibling {
		if !isElement(menu, "menu") {
			continue
		}
		for item := menu.FirstChild; item != nil; item = item.NextSibling {
			if isElement(item, "item") {
				items = append(items, item)
			}
		}
	}
	return items
}

func firstSelectedMenuItem(pagemenu *html.Node) *html.Node {
	for _, item := range topMenuItems(pagemenu) {
		if attr(item, "selected") == "yes" {
			return item
		}
	}
	return nil
}

// findAll returns every descendant element of n with the given tag. The
// parser lowercases tag and attribute names, so lookups use lowercase.
func findAll(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if isElement(c, tag) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

func isElement(n *html.Node, tag string) bool {
	return n.Type == html.ElementNode && n.Data == tag
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func parseID(raw string) int64 {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return id
}
