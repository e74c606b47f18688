package ticker

import (
	"errors"
	"net/url"
	"testing"
)

func TestResolve(t *testing.T) {
	r := NewResolver()
	cases := []struct {
		name  string
		path  string
		query url.Values
		want  string
	}{
		{"netlify path", "/.netlify/functions/evaluate/tsla", nil, "TSLA"},
		{"short path", "/evaluate/aapl", nil, "AAPL"},
		{"trailing slash", "/evaluate/msft/", nil, "MSFT"},
		{"path wins over query", "/evaluate/tsla", url.Values{"ticker": {"aapl"}}, "TSLA"},
		{"query", "/evaluate", url.Values{"ticker": {" nvda "}}, "NVDA"},
		{"blank segment falls to query", "/evaluate/%20", url.Values{"ticker": {"amd"}}, "AMD"},
		{"unrelated path uses query", "/other/TSLA", url.Values{"ticker": {"ibm"}}, "IBM"},
		{"escaped segment", "/evaluate/brk.b", nil, "BRK.B"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.Resolve(tc.path, tc.query)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestResolve_Missing(t *testing.T) {
	r := NewResolver()
	for _, tc := range []struct {
		path  string
		query url.Values
	}{
		{"/evaluate", nil},
		{"/.netlify/functions/evaluate", url.Values{}},
		{"", url.Values{"ticker": {"   "}}},
		{"/other/TSLA", nil},
	} {
		if _, err := r.Resolve(tc.path, tc.query); !errors.Is(err, ErrMissingTicker) {
			t.Fatalf("%q %v: want ErrMissingTicker, got %v", tc.path, tc.query, err)
		}
	}
}

func TestResolve_CustomPrefix(t *testing.T) {
	r := NewResolver("/api/v1/signal")
	got, err := r.Resolve("/api/v1/signal/goog", nil)
	if err != nil || got != "GOOG" {
		t.Fatalf("got %q, %v", got, err)
	}
	if _, err := r.Resolve("/evaluate/goog", nil); !errors.Is(err, ErrMissingTicker) {
		t.Fatalf("default prefixes should not apply: %v", err)
	}
}
