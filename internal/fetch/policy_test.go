package fetch

import (
	"net/http"
	"testing"
)

func respWithHeader(key, value string) *http.Response {
	header := http.Header{}
	if value != "" {
		header.Set(key, value)
	}
	return &http.Response{Header: header}
}

func TestPolicyCheckContentType(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		wantStatus  int // 0 means accepted
	}{
		{
			name:        "plain text accepted",
			contentType: "text/plain",
		},
		{
			name:        "csv with charset parameter accepted",
			contentType: "text/csv; charset=utf-8",
		},
		{
			name:        "json accepted",
			contentType: "application/json",
		},
		{
			name:        "html rejected",
			contentType: "text/html",
			wantStatus:  http.StatusUnsupportedMediaType,
		},
		{
			name:        "missing header rejected",
			contentType: "",
			wantStatus:  http.StatusUnsupportedMediaType,
		},
	}

	policy := DefaultPolicy()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.CheckContentType(respWithHeader("Content-Type", tt.contentType))
			if tt.wantStatus == 0 {
				if err != nil {
					t.Fatalf("CheckContentType(%q) = %v, want nil", tt.contentType, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("CheckContentType(%q) = nil, want status %d", tt.contentType, tt.wantStatus)
			}
			if status := StatusOf(err); status != tt.wantStatus {
				t.Errorf("StatusOf(err) = %d, want %d", status, tt.wantStatus)
			}
		})
	}
}

func TestPolicyCheckContentLength(t *testing.T) {
	tests := []struct {
		name          string
		contentLength string
		wantStatus    int // 0 means accepted
	}{
		{
			name:          "under ceiling accepted",
			contentLength: "1024",
		},
		{
			name:          "at ceiling accepted",
			contentLength: "20480000",
		},
		{
			name:          "over ceiling rejected",
			contentLength: "99999999999",
			wantStatus:    http.StatusRequestEntityTooLarge,
		},
		{
			name:          "absent header skipped",
			contentLength: "",
		},
		{
			name:          "non-numeric header skipped",
			contentLength: "not-a-number",
		},
	}

	policy := DefaultPolicy()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.CheckContentLength(respWithHeader("Content-Length", tt.contentLength))
			if tt.wantStatus == 0 {
				if err != nil {
					t.Fatalf("CheckContentLength(%q) = %v, want nil", tt.contentLength, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("CheckContentLength(%q) = nil, want status %d", tt.contentLength, tt.wantStatus)
			}
			if status := StatusOf(err); status != tt.wantStatus {
				t.Errorf("StatusOf(err) = %d, want %d", status, tt.wantStatus)
			}
		})
	}
}
