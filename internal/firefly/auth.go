package firefly

import (
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/net/html"

	"ffly/internal/model"
)

var tokenDateLayouts = []string{
	time.RFC1123,
	time.RFC1123Z,
}

// ParseCredentialToken reads the XML document the portal serves after a
// successful browser login and returns the account it describes. Every field
// must be present; a partial token is rejected so a half-written credential
// never reaches the store.
func ParseCredentialToken(r io.Reader) (model.Account, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return model.Account{}, fmt.Errorf("firefly: parse credential token: %w", err)
	}

	var account model.Account
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "secret":
				account.Secret = strings.TrimSpace(text(n))
			case "user":
				account.Username = attrValue(n, "username")
				account.FullName = attrValue(n, "fullname")
				account.Email = attrValue(n, "email")
				account.GUID = attrValue(n, "guid")
				account.Role = attrValue(n, "role")
			case "datetime":
				account.TokenDate = parseTokenDate(attrValue(n, "rfc1123"))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if err := account.Validate(); err != nil {
		return model.Account{}, err
	}
	return account, nil
}

func parseTokenDate(raw string) time.Time {
	for _, layout := range tokenDateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func text(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
