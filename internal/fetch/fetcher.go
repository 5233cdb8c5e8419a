package fetch

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultTimeout bounds connect plus read time for one fetch.
	DefaultTimeout = 3050 * time.Millisecond

	// chunkSize is the streaming copy buffer size. Writes go straight to
	// the destination file, so peak memory stays bounded regardless of
	// resource size.
	chunkSize = 8 * 1024

	// reasonLimit caps how much of an error response body is read into
	// the failure message.
	reasonLimit = 512
)

// Options control a single fetch.
type Options struct {
	Timeout         time.Duration
	VerifyTLS       bool
	FollowRedirects bool
	Policy          Policy
}

// DefaultOptions returns the options applied when the caller passes the
// zero value for a field.
func DefaultOptions() Options {
	return Options{
		Timeout:         DefaultTimeout,
		VerifyTLS:       true,
		FollowRedirects: true,
		Policy:          DefaultPolicy(),
	}
}

// Result describes a completed fetch. The caller owns the file at Path
// and is responsible for moving or deleting it.
type Result struct {
	ID          string
	Path        string
	SourceURL   string
	ResolvedURL string
	ContentType string
	Bytes       int64
}

// Fetcher retrieves remote resources and stages them as temporary files.
// It is safe for concurrent use; each fetch touches only its own file.
type Fetcher struct {
	rules    []Rule
	logger   *zap.Logger
	secure   *http.Transport
	insecure *http.Transport
}

// NewFetcher creates a Fetcher dispatching through the given rule table.
// A nil or empty table falls back to DefaultRules.
func NewFetcher(rules []Rule, logger *zap.Logger) *Fetcher {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		rules:  rules,
		logger: logger,
		secure: &http.Transport{},
		insecure: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}
}

// Fetch resolves rawURL through the rule table, retrieves the resolved
// URL, and streams the validated body into a fresh temporary file inside
// dstDir. dstDir must already exist; the fetcher never creates it.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, dstDir string, opts Options) (*Result, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if len(opts.Policy.AllowedContentTypes) == 0 {
		opts.Policy.AllowedContentTypes = defaultContentTypes
	}
	if opts.Policy.MaxContentLength <= 0 {
		opts.Policy.MaxContentLength = DefaultMaxContentLength
	}

	resolved, err := Resolve(f.rules, rawURL)
	if err != nil {
		return nil, err
	}
	if resolved != rawURL {
		f.logger.Debug("normalized source URL",
			zap.String("url", rawURL),
			zap.String("resolved", resolved))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resolved, nil)
	if err != nil {
		return nil, invalidURL("malformed URL %s", resolved)
	}

	resp, err := f.newClient(opts).Do(req)
	if err != nil {
		return nil, unreachable(resolved, err)
	}
	defer resp.Body.Close()

	result := &Result{
		ID:          uuid.NewString(),
		SourceURL:   rawURL,
		ResolvedURL: resolved,
		ContentType: resp.Header.Get("Content-Type"),
	}
	if err := f.processResponse(resp, dstDir, opts.Policy, result); err != nil {
		return nil, err
	}

	f.logger.Debug("resource staged",
		zap.String("url", resolved),
		zap.String("path", result.Path),
		zap.Int64("bytes", result.Bytes))
	return result, nil
}

// newClient builds the HTTP client for one fetch.
func (f *Fetcher) newClient(opts Options) *http.Client {
	transport := f.secure
	if !opts.VerifyTLS {
		transport = f.insecure
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   opts.Timeout,
	}
	if !opts.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return client
}

// processResponse validates the response headers and streams the body to
// a temporary file, filling in result.Path and result.Bytes.
func (f *Fetcher) processResponse(resp *http.Response, dstDir string, policy Policy, result *Result) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return NewError(resp.StatusCode, "unable to retrieve resource at %s: %s",
			result.ResolvedURL, failureReason(resp))
	}

	// Header checks run before any body byte is persisted, so a policy
	// rejection never leaves a partial file behind.
	if err := policy.CheckContentType(resp); err != nil {
		return err
	}
	if err := policy.CheckContentLength(resp); err != nil {
		return err
	}

	dst, err := os.CreateTemp(dstDir, "fetch-"+result.ID+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dstDir, err)
	}

	written, err := copyCapped(dst, resp.Body, policy.MaxContentLength)
	if closeErr := dst.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close temp file: %w", closeErr)
	}
	if err != nil {
		os.Remove(dst.Name())
		return err
	}

	path, err := filepath.Abs(dst.Name())
	if err != nil {
		os.Remove(dst.Name())
		return fmt.Errorf("failed to resolve temp file path: %w", err)
	}

	result.Path = path
	result.Bytes = written
	return nil
}

// copyCapped streams src to dst in bounded chunks, enforcing maxBytes on
// the bytes actually received. The declared content-length check is
// advisory; this cap holds regardless of what the server claimed.
func copyCapped(dst io.Writer, src io.Reader, maxBytes int64) (int64, error) {
	buf := make([]byte, chunkSize)
	var written int64
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			if written+int64(n) > maxBytes {
				return written, NewError(http.StatusRequestEntityTooLarge,
					"resource body exceeds maximum allowed %d bytes", maxBytes)
			}
			wn, writeErr := dst.Write(buf[:n])
			written += int64(wn)
			if writeErr != nil {
				return written, fmt.Errorf("failed to write resource body: %w", writeErr)
			}
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, &Error{
				Status:  http.StatusBadRequest,
				Message: "connection lost while reading resource body",
				Cause:   readErr,
			}
		}
	}
}

// failureReason extracts a human-readable reason from a non-2xx response,
// preferring the status text and falling back to a bounded body excerpt.
func failureReason(resp *http.Response) string {
	if reason := http.StatusText(resp.StatusCode); reason != "" {
		return reason
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, reasonLimit))
	if err != nil || len(body) == 0 {
		return fmt.Sprintf("status %d", resp.StatusCode)
	}
	return string(body)
}
