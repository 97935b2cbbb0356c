package portal

import (
	"net/url"
	"strings"
)

// Cursor is the portal path the next request goes to when none is given.
// It never starts with a slash and may carry a query.
type Cursor string

// Resolve returns the cursor after following reference from the current
// one. Absolute paths and absolute URLs replace the cursor; anything else
// replaces only its final path segment.
func (c Cursor) Resolve(reference string) Cursor {
	switch {
	case strings.HasPrefix(reference, "/"):
		return Cursor(strings.TrimLeft(reference, "/"))
	case strings.HasPrefix(reference, "http"):
		parsedURL, err := url.Parse(reference)
		if err != nil || parsedURL.Host == "" {
			break
		}
		next := strings.TrimLeft(parsedURL.EscapedPath(), "/")
		if parsedURL.RawQuery != "" {
			next += "?" + parsedURL.RawQuery
		}
		return Cursor(next)
	}
	current := string(c)
	if index := strings.IndexByte(current, '?'); index >= 0 {
		current = current[:index]
	}
	if index := strings.LastIndexByte(current, '/'); index >= 0 {
		return Cursor(current[:index+1] + reference)
	}
	return Cursor(reference)
}

func (c Cursor) String() string {
	return string(c)
}
