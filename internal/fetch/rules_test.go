package fetch

import (
	"regexp"
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "nbviewer rule wins over catch-all",
			url:  "http://nbviewer.ipython.org/gist/user/abc123",
			want: "https://gist.githubusercontent.com/user/abc123/raw",
		},
		{
			name: "github rule wins over catch-all",
			url:  "https://gist.github.com/user/abc123",
			want: "https://gist.githubusercontent.com/user/abc123/raw",
		},
		{
			name: "unrecognized URL falls through unchanged",
			url:  "https://example.com/some/data.json",
			want: "https://example.com/some/data.json",
		},
		{
			name: "https nbviewer is not the nbviewer rule",
			url:  "https://nbviewer.ipython.org/gist/user/abc123",
			want: "https://nbviewer.ipython.org/gist/user/abc123",
		},
	}

	rules := DefaultRules()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(rules, tt.url)
			if err != nil {
				t.Fatalf("Resolve(%q) returned error: %v", tt.url, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestResolveFirstMatchWins(t *testing.T) {
	// Both rules match; the first one must be applied.
	rules := []Rule{
		{regexp.MustCompile(`^https://example\.com/.*`), func(string) (string, error) {
			return "first", nil
		}},
		{regexp.MustCompile(`.*`), func(string) (string, error) {
			return "second", nil
		}},
	}

	got, err := Resolve(rules, "https://example.com/x")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if got != "first" {
		t.Errorf("Resolve applied the wrong rule: got %q, want %q", got, "first")
	}
}

func TestDefaultRulesEndWithCatchAll(t *testing.T) {
	rules := DefaultRules()
	last := rules[len(rules)-1]

	for _, url := range []string{"", "not a url", "ftp://weird/scheme", "https://anything.example"} {
		if !last.Pattern.MatchString(url) {
			t.Errorf("catch-all pattern does not match %q", url)
		}
	}
}
