package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vertextoedge/resource-fetcher/internal/domain"
	"github.com/vertextoedge/resource-fetcher/internal/fetch"
	"github.com/vertextoedge/resource-fetcher/internal/port"
	"github.com/vertextoedge/resource-fetcher/internal/util/ratelimiter"
	"go.uber.org/zap"
)

const defaultListLimit = 50

// FetchHandler handles fetch requests and fetch history queries
type FetchHandler struct {
	fetcher *fetch.Fetcher
	options fetch.Options
	history port.HistoryRepository
	workDir string
	limiter *ratelimiter.Limiter
	logger  *zap.Logger
}

// NewFetchHandler creates a new FetchHandler. A zero fetchInterval
// disables rate limiting.
func NewFetchHandler(fetcher *fetch.Fetcher, opts fetch.Options, history port.HistoryRepository,
	workDir string, fetchInterval time.Duration, logger *zap.Logger) *FetchHandler {

	h := &FetchHandler{
		fetcher: fetcher,
		options: opts,
		history: history,
		workDir: workDir,
		logger:  logger,
	}
	if fetchInterval > 0 {
		h.limiter = ratelimiter.New(fetchInterval)
	}
	return h
}

// fetchResponse is the JSON body returned for a successful fetch
type fetchResponse struct {
	ID          string `json:"id"`
	SourceURL   string `json:"source_url"`
	ResolvedURL string `json:"resolved_url"`
	Path        string `json:"path"`
	Bytes       int64  `json:"bytes"`
}

// historyEntry is one element of the fetch history listing
type historyEntry struct {
	ID          string    `json:"id"`
	SourceURL   string    `json:"source_url"`
	ResolvedURL string    `json:"resolved_url"`
	Status      int       `json:"status"`
	Bytes       int64     `json:"bytes"`
	Path        string    `json:"path,omitempty"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// HandleFetches routes /api/fetches and /api/fetches/{subdir}
func (h *FetchHandler) HandleFetches(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleFetch(w, r)
	case http.MethodGet:
		h.handleList(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleFetch fetches the resource named by the url query argument into
// the work directory (or the named subdirectory) and returns its path.
func (h *FetchHandler) handleFetch(w http.ResponseWriter, r *http.Request) {
	srcURL := r.URL.Query().Get("url")
	if srcURL == "" {
		http.Error(w, "url query argument required", http.StatusBadRequest)
		return
	}

	if h.limiter != nil {
		if allowed, wait := h.limiter.Allow(); !allowed {
			w.Header().Set("Retry-After", strconv.Itoa(int(wait.Seconds())+1))
			http.Error(w, "Too many fetch requests", http.StatusTooManyRequests)
			return
		}
	}

	dstDir, err := h.resolveDestination(r.URL.Path)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.fetcher.Fetch(r.Context(), srcURL, dstDir, h.options)
	if err != nil {
		status := fetch.StatusOf(err)
		h.logger.Warn("fetch failed",
			zap.String("url", srcURL),
			zap.Int("status", status),
			zap.Error(err))
		h.record(&domain.FetchRecord{
			ID:        uuid.NewString(),
			SourceURL: srcURL,
			Status:    status,
			Error:     err.Error(),
		})
		http.Error(w, err.Error(), status)
		return
	}

	h.logger.Info("resource fetched",
		zap.String("url", srcURL),
		zap.String("path", result.Path),
		zap.Int64("bytes", result.Bytes))
	h.record(&domain.FetchRecord{
		ID:          result.ID,
		SourceURL:   result.SourceURL,
		ResolvedURL: result.ResolvedURL,
		Status:      http.StatusOK,
		Bytes:       result.Bytes,
		FilePath:    result.Path,
	})

	writeJSON(w, http.StatusCreated, fetchResponse{
		ID:          result.ID,
		SourceURL:   result.SourceURL,
		ResolvedURL: result.ResolvedURL,
		Path:        result.Path,
		Bytes:       result.Bytes,
	})
}

// handleList returns the most recent fetch attempts, newest first
func (h *FetchHandler) handleList(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	records, err := h.history.ListRecent(limit)
	if err != nil {
		h.logger.Error("failed to list fetch history", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	entries := make([]historyEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, historyEntry{
			ID:          rec.ID,
			SourceURL:   rec.SourceURL,
			ResolvedURL: rec.ResolvedURL,
			Status:      rec.Status,
			Bytes:       rec.Bytes,
			Path:        rec.FilePath,
			Error:       rec.Error,
			CreatedAt:   rec.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, entries)
}

// resolveDestination maps the request path to a destination directory
// under the work directory. The directory must already exist; the fetch
// core never creates it.
func (h *FetchHandler) resolveDestination(urlPath string) (string, error) {
	subdir := strings.Trim(strings.TrimPrefix(urlPath, "/api/fetches"), "/")

	dstDir := h.workDir
	if subdir != "" {
		dstDir = filepath.Join(h.workDir, filepath.FromSlash(subdir))
		// Reject traversal out of the work directory
		rel, err := filepath.Rel(h.workDir, dstDir)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return "", fmt.Errorf("destination escapes work directory")
		}
	}

	info, err := os.Stat(dstDir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("destination directory %s does not exist", dstDir)
	}
	return dstDir, nil
}

// record writes a fetch attempt to the history, logging on failure
func (h *FetchHandler) record(rec *domain.FetchRecord) {
	if err := h.history.RecordFetch(rec); err != nil {
		h.logger.Error("failed to record fetch history",
			zap.String("url", rec.SourceURL),
			zap.Error(err))
	}
}

// writeJSON serializes v as the JSON response body
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
