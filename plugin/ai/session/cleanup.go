package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	// DefaultRetentionDays is the default number of days to retain idle sessions.
	DefaultRetentionDays = 30
	// DefaultCleanupInterval is the default interval between cleanup runs.
	DefaultCleanupInterval = 24 * time.Hour
)

// CleanupConfig holds configuration for the cleanup job.
type CleanupConfig struct {
	RetentionDays   int
	CleanupInterval time.Duration
}

// DefaultCleanupConfig returns the default cleanup configuration.
func DefaultCleanupConfig() CleanupConfig {
	return CleanupConfig{
		RetentionDays:   DefaultRetentionDays,
		CleanupInterval: DefaultCleanupInterval,
	}
}

// CleanupJob periodically removes idle sessions.
type CleanupJob struct {
	sessions Service
	config   CleanupConfig

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
}

// NewCleanupJob creates a new cleanup job.
func NewCleanupJob(svc Service, config CleanupConfig) *CleanupJob {
	if config.RetentionDays <= 0 {
		config.RetentionDays = DefaultRetentionDays
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultCleanupInterval
	}

	return &CleanupJob{
		sessions: svc,
		config:   config,
	}
}

// Start begins the periodic cleanup in a goroutine. Non-blocking.
func (j *CleanupJob) Start(ctx context.Context) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.running {
		return
	}
	j.running = true
	j.stopChan = make(chan struct{})

	go j.run(ctx)

	slog.Info("session cleanup job started",
		slog.Int("retention_days", j.config.RetentionDays),
		slog.Duration("interval", j.config.CleanupInterval))
}

// Stop stops the cleanup job.
func (j *CleanupJob) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.running {
		return
	}
	close(j.stopChan)
	j.running = false
}

// RunOnce executes a single cleanup run immediately.
func (j *CleanupJob) RunOnce(ctx context.Context) (int64, error) {
	return j.sessions.CleanupExpired(ctx, j.config.RetentionDays)
}

func (j *CleanupJob) run(ctx context.Context) {
	ticker := time.NewTicker(j.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-j.stopChan:
			return
		case <-ticker.C:
			if deleted, err := j.RunOnce(ctx); err != nil {
				slog.Error("session cleanup failed", slog.String("error", err.Error()))
			} else if deleted > 0 {
				slog.Info("session cleanup completed", slog.Int64("deleted", deleted))
			}
		}
	}
}

// IsRunning returns whether the cleanup job is currently running.
func (j *CleanupJob) IsRunning() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.running
}
