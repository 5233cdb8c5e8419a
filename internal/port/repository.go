package port

import (
	"time"

	"github.com/vertextoedge/resource-fetcher/internal/domain"
)

// HistoryRepository records fetch attempts and serves the recent history.
type HistoryRepository interface {
	RecordFetch(rec *domain.FetchRecord) error
	ListRecent(limit int) ([]*domain.FetchRecord, error)
	PruneOlderThan(age time.Duration) (int, error)
}

// Store is the full persistence surface the application wires together.
type Store interface {
	HistoryRepository
	Ping() error
	Close() error
}
