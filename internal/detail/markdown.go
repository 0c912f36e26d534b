package detail

import (
	"fmt"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

var linkPattern = regexp.MustCompile(`\[(.*?)\]\((.+?)\)`)

// Renderer converts task description HTML into markdown with portal-relative
// links rewritten to absolute, authenticated URLs.
type Renderer struct {
	instanceURL string
	deviceID    string
	secret      string
	converter   *md.Converter
}

func NewRenderer(instanceURL, deviceID, secret string) *Renderer {
	return &Renderer{
		instanceURL: strings.TrimRight(instanceURL, "/"),
		deviceID:    deviceID,
		secret:      secret,
		converter:   md.NewConverter("", true, nil),
	}
}

// Render converts description HTML to markdown and rewrites its links.
func (r *Renderer) Render(descriptionHTML string) (string, error) {
	out, err := r.converter.ConvertString(descriptionHTML)
	if err != nil {
		return "", fmt.Errorf("detail: convert description: %w", err)
	}
	return r.RewriteLinks(out), nil
}

// RewriteLinks resolves portal-relative markdown links. Absolute http(s)
// links pass through; resource links get the auth parameters appended since
// the browser has no session of its own.
func (r *Renderer) RewriteLinks(markdown string) string {
	return linkPattern.ReplaceAllStringFunc(markdown, func(match string) string {
		parts := linkPattern.FindStringSubmatch(match)
		text, url := parts[1], parts[2]
		switch {
		case strings.HasPrefix(url, "http"):
			return match
		case strings.HasPrefix(url, "resource.aspx?id="):
			return fmt.Sprintf("[%s](%s/%s&ffauth_device_id=%s&ffauth_secret=%s)",
				text, r.instanceURL, url, r.deviceID, r.secret)
		case strings.HasPrefix(url, "/"):
			return fmt.Sprintf("[%s](%s%s)", text, r.instanceURL, url)
		default:
			return fmt.Sprintf("[%s](%s/%s)", text, r.instanceURL, url)
		}
	})
}
