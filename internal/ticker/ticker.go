// Package ticker extracts a ticker symbol from a request path or query.
package ticker

import (
	"errors"
	"net/url"
	"strings"
)

// ErrMissingTicker means neither the path nor the query named a ticker.
var ErrMissingTicker = errors.New("missing required ticker")

// DefaultPrefixes are the path shapes whose next segment is the ticker.
var DefaultPrefixes = []string{"/.netlify/functions/evaluate", "/evaluate"}

// Resolver finds the ticker in a path segment following one of Prefixes,
// falling back to the `ticker` query parameter.
type Resolver struct {
	Prefixes []string
}

func NewResolver(prefixes ...string) *Resolver {
	if len(prefixes) == 0 {
		prefixes = DefaultPrefixes
	}
	return &Resolver{Prefixes: prefixes}
}

// Normalize trims and upper-cases a raw symbol.
func Normalize(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

// Resolve returns the normalized ticker or ErrMissingTicker.
func (r *Resolver) Resolve(path string, query url.Values) (string, error) {
	if t := Normalize(r.fromPath(path)); t != "" {
		return t, nil
	}
	if t := Normalize(query.Get("ticker")); t != "" {
		return t, nil
	}
	return "", ErrMissingTicker
}

func (r *Resolver) fromPath(path string) string {
	parts := segments(path)
	for _, prefix := range r.Prefixes {
		want := segments(prefix)
		if len(parts) <= len(want) {
			continue
		}
		if hasPrefix(parts, want) {
			seg, err := url.PathUnescape(parts[len(want)])
			if err != nil {
				return parts[len(want)]
			}
			return seg
		}
	}
	return ""
}

func segments(p string) []string {
	raw := strings.Split(p, "/")
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func hasPrefix(parts, want []string) bool {
	for i, w := range want {
		if parts[i] != w {
			return false
		}
	}
	return true
}
