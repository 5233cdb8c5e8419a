package fetch

import (
	"net/http"
	"strconv"
	"strings"
)

// DefaultMaxContentLength is the default response size ceiling (20 MB).
const DefaultMaxContentLength = 20480000

// defaultContentTypes are the MIME prefixes accepted when a policy does
// not override them.
var defaultContentTypes = []string{"text/plain", "text/csv", "application/json"}

// Policy bounds which responses are accepted: a content-type prefix
// allow-list and a size ceiling. The header checks are advisory (a server
// can omit or lie about its headers); the fetcher additionally caps the
// bytes it actually writes at MaxContentLength.
type Policy struct {
	AllowedContentTypes []string
	MaxContentLength    int64
}

// DefaultPolicy returns the policy applied when none is configured.
func DefaultPolicy() Policy {
	return Policy{
		AllowedContentTypes: defaultContentTypes,
		MaxContentLength:    DefaultMaxContentLength,
	}
}

// CheckContentType validates the declared content-type header. A missing
// header is rejected along with anything outside the allow-list.
func (p Policy) CheckContentType(resp *http.Response) error {
	contentType := resp.Header.Get("Content-Type")
	if contentType != "" {
		for _, allowed := range p.AllowedContentTypes {
			if strings.HasPrefix(contentType, allowed) {
				return nil
			}
		}
	}
	return NewError(http.StatusUnsupportedMediaType,
		"content type %q not supported", contentType)
}

// CheckContentLength validates the declared content-length header.
// A missing or non-numeric header is tolerated; the declared length is
// only checked when the server states one.
func (p Policy) CheckContentLength(resp *http.Response) error {
	declared := resp.Header.Get("Content-Length")
	if declared == "" {
		return nil
	}
	length, err := strconv.ParseInt(declared, 10, 64)
	if err != nil {
		return nil
	}
	if length > p.MaxContentLength {
		return NewError(http.StatusRequestEntityTooLarge,
			"content length %d exceeds maximum allowed %d", length, p.MaxContentLength)
	}
	return nil
}
