package domain

import "time"

// FetchRecord is one row of fetch history: a single attempt to retrieve
// a remote resource, successful or not.
type FetchRecord struct {
	ID          string
	SourceURL   string
	ResolvedURL string
	Status      int
	Bytes       int64
	FilePath    string
	Error       string
	CreatedAt   time.Time
}

// Succeeded reports whether the attempt completed with a 2xx status.
func (r *FetchRecord) Succeeded() bool {
	return r.Status >= 200 && r.Status < 300
}
