package sqlite

import (
	"fmt"
	"time"

	"github.com/vertextoedge/resource-fetcher/internal/domain"
)

// RecordFetch inserts one fetch attempt into the history.
func (s *Store) RecordFetch(rec *domain.FetchRecord) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.Exec(`
		INSERT INTO fetches (id, source_url, resolved_url, status, bytes, file_path, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.SourceURL, rec.ResolvedURL, rec.Status, rec.Bytes,
		rec.FilePath, rec.Error, createdAt)
	if err != nil {
		return fmt.Errorf("failed to record fetch: %w", err)
	}
	return nil
}

// ListRecent returns the most recent fetch attempts, newest first.
func (s *Store) ListRecent(limit int) ([]*domain.FetchRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(`
		SELECT id, source_url, resolved_url, status, bytes, file_path, error, created_at
		FROM fetches
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list fetches: %w", err)
	}
	defer rows.Close()

	var records []*domain.FetchRecord
	for rows.Next() {
		rec := &domain.FetchRecord{}
		if err := rows.Scan(&rec.ID, &rec.SourceURL, &rec.ResolvedURL,
			&rec.Status, &rec.Bytes, &rec.FilePath, &rec.Error, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan fetch record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate fetch records: %w", err)
	}

	return records, nil
}

// PruneOlderThan deletes history rows older than age and returns the
// number removed.
func (s *Store) PruneOlderThan(age time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-age)

	result, err := s.db.Exec(`DELETE FROM fetches WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune fetch history: %w", err)
	}

	pruned, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned rows: %w", err)
	}
	return int(pruned), nil
}
