package maintenance

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/vertextoedge/resource-fetcher/internal/port"
	"go.uber.org/zap"
)

// tempFilePrefix matches the staging files the fetcher creates. Only
// files with this prefix are ever reaped; everything else in the work
// directory belongs to the caller.
const tempFilePrefix = "fetch-"

// Config contains maintenance service configuration
type Config struct {
	// CleanupInterval is how often to run cleanup tasks
	CleanupInterval time.Duration

	// TempFileMaxAge is the maximum age of abandoned temp files before cleanup
	TempFileMaxAge time.Duration

	// HistoryMaxAge is the maximum age of fetch history rows before pruning
	HistoryMaxAge time.Duration
}

// DefaultConfig returns default maintenance configuration
func DefaultConfig() *Config {
	return &Config{
		CleanupInterval: time.Hour,
		TempFileMaxAge:  24 * time.Hour,
		HistoryMaxAge:   30 * 24 * time.Hour,
	}
}

// Service handles periodic maintenance tasks: reaping abandoned temp
// files from the work directory and pruning old fetch history.
type Service struct {
	config  *Config
	history port.HistoryRepository
	workDir string
	logger  *zap.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New creates a new maintenance Service
func New(cfg *Config, history port.HistoryRepository, workDir string, logger *zap.Logger) *Service {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.CleanupInterval == 0 {
		cfg.CleanupInterval = time.Hour
	}
	if cfg.TempFileMaxAge == 0 {
		cfg.TempFileMaxAge = 24 * time.Hour
	}
	if cfg.HistoryMaxAge == 0 {
		cfg.HistoryMaxAge = 30 * 24 * time.Hour
	}

	return &Service{
		config:  cfg,
		history: history,
		workDir: workDir,
		logger:  logger,
	}
}

// Start starts the maintenance service and blocks until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("maintenance service already running")
	}
	s.running = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.logger.Info("maintenance service started",
		zap.Duration("cleanup_interval", s.config.CleanupInterval),
		zap.Duration("temp_file_max_age", s.config.TempFileMaxAge))

	s.wg.Add(1)
	go s.maintenanceLoop(ctx)

	<-ctx.Done()
	s.wg.Wait()
	s.logger.Info("maintenance service stopped")
	return nil
}

// Stop stops the maintenance service
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.running = false
}

// maintenanceLoop handles periodic maintenance tasks
func (s *Service) maintenanceLoop(ctx context.Context) {
	defer s.wg.Done()

	cleanupTicker := time.NewTicker(s.config.CleanupInterval)
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-cleanupTicker.C:
			s.cleanupTempFiles()
			s.pruneHistory()
		}
	}
}

// cleanupTempFiles removes abandoned staging files from the work directory
func (s *Service) cleanupTempFiles() {
	count, err := s.CleanTempFiles(s.config.TempFileMaxAge)
	if err != nil {
		s.logger.Error("failed to cleanup old temp files", zap.Error(err))
	} else if count > 0 {
		s.logger.Info("cleaned up old temp files", zap.Int("count", count))
	}
}

// pruneHistory removes old fetch history rows
func (s *Service) pruneHistory() {
	pruned, err := s.history.PruneOlderThan(s.config.HistoryMaxAge)
	if err != nil {
		s.logger.Error("failed to prune fetch history", zap.Error(err))
	} else if pruned > 0 {
		s.logger.Info("pruned fetch history", zap.Int("count", pruned))
	}
}

// CleanTempFiles removes staging files under the work directory older
// than olderThan and returns the number removed.
func (s *Service) CleanTempFiles(olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)
	count := 0

	err := filepath.WalkDir(s.workDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasPrefix(d.Name(), tempFilePrefix) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err != nil {
				s.logger.Warn("failed to remove temp file",
					zap.String("path", path),
					zap.Error(err))
				return nil
			}
			count++
		}
		return nil
	})
	if err != nil {
		return count, fmt.Errorf("failed to walk work directory: %w", err)
	}

	return count, nil
}
