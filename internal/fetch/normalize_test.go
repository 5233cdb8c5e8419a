package fetch

import (
	"net/http"
	"testing"
)

func TestNormalizeNBViewer(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{
			name: "gist reference",
			url:  "http://nbviewer.ipython.org/gist/someuser/1234abcd",
			want: "https://gist.githubusercontent.com/someuser/1234abcd/raw",
		},
		{
			name: "github blob reference",
			url:  "http://nbviewer.ipython.org/github/someuser/somerepo/blob/master/notebooks/index.ipynb",
			want: "https://raw.githubusercontent.com/someuser/somerepo/master/notebooks/index.ipynb",
		},
		{
			name: "github reference with nested path",
			url:  "http://nbviewer.ipython.org/github/org/repo/blob/dev/a/b/c.csv",
			want: "https://raw.githubusercontent.com/org/repo/dev/a/b/c.csv",
		},
		{
			name: "raw web reference",
			url:  "http://nbviewer.ipython.org/url/example.com/data/file.json",
			want: "http://example.com/data/file.json",
		},
		{
			name:    "unknown kind",
			url:     "http://nbviewer.ipython.org/foo/bar",
			wantErr: true,
		},
		{
			name:    "missing kind segment",
			url:     "http://nbviewer.ipython.org",
			wantErr: true,
		},
		{
			name:    "gist without reference",
			url:     "http://nbviewer.ipython.org/gist",
			wantErr: true,
		},
		{
			name:    "github without repository",
			url:     "http://nbviewer.ipython.org/github/onlyuser",
			wantErr: true,
		},
		{
			name:    "url kind without target",
			url:     "http://nbviewer.ipython.org/url",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeNBViewer(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NormalizeNBViewer(%q) = %q, want error", tt.url, got)
				}
				if status := StatusOf(err); status != http.StatusBadRequest {
					t.Errorf("StatusOf(err) = %d, want %d", status, http.StatusBadRequest)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeNBViewer(%q) returned error: %v", tt.url, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeNBViewer(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestNormalizeGitHub(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{
			name: "direct gist",
			url:  "https://gist.github.com/someuser/1234abcd",
			want: "https://gist.githubusercontent.com/someuser/1234abcd/raw",
		},
		{
			name: "direct github blob",
			url:  "https://github.com/someuser/somerepo/blob/master/data.csv",
			want: "https://raw.githubusercontent.com/someuser/somerepo/master/data.csv",
		},
		{
			name: "direct github nested path",
			url:  "http://github.com/org/repo/blob/main/dir/file.json",
			want: "https://raw.githubusercontent.com/org/repo/main/dir/file.json",
		},
		{
			name:    "too few path segments",
			url:     "https://github.com/onlyuser",
			wantErr: true,
		},
		{
			name:    "unknown host",
			url:     "https://example.com/user/repo/blob/master/x",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeGitHub(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NormalizeGitHub(%q) = %q, want error", tt.url, got)
				}
				if status := StatusOf(err); status != http.StatusBadRequest {
					t.Errorf("StatusOf(err) = %d, want %d", status, http.StatusBadRequest)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeGitHub(%q) returned error: %v", tt.url, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeGitHub(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdentity(t *testing.T) {
	url := "https://example.com/data.csv?version=2"
	got, err := NormalizeIdentity(url)
	if err != nil {
		t.Fatalf("NormalizeIdentity returned error: %v", err)
	}
	if got != url {
		t.Errorf("NormalizeIdentity(%q) = %q, want input unchanged", url, got)
	}
}
