package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// WaitForReady is the startup readiness gate: it opens the repository
// (connectivity check plus migrations), retrying at a fixed interval up
// to attempts times. It runs once before the process accepts traffic;
// steady-state request handling never retries through here.
func WaitForReady(ctx context.Context, dbPath string, attempts int, interval time.Duration) (*Repository, error) {
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		repo, err := NewRepository(dbPath)
		if err == nil {
			if attempt > 1 {
				slog.InfoContext(ctx, "Database ready", "attempt", attempt, "path", dbPath)
			}
			return repo, nil
		}
		lastErr = err

		slog.WarnContext(ctx, "Database not ready",
			"attempt", attempt,
			"max_attempts", attempts,
			"error", err)

		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("readiness gate cancelled: %w", ctx.Err())
		case <-time.After(interval):
		}
	}
	return nil, fmt.Errorf("database not ready after %d attempts: %w", attempts, lastErr)
}
