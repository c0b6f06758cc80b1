package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/umyakar/a3-UtkuYakar/internal/port"
)

// DefaultSweepInterval is used when the configured interval is not positive.
const DefaultSweepInterval = time.Hour

// StartSessionSweeper deletes expired sessions every interval until ctx is
// cancelled. The returned channel closes when the goroutine exits.
func StartSessionSweeper(ctx context.Context, sessions port.SessionStore, interval time.Duration) <-chan struct{} {
	if interval <= 0 {
		slog.WarnContext(ctx, "invalid session sweep interval, using default", "interval", interval, "default", DefaultSweepInterval)
		interval = DefaultSweepInterval
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				SweepSessions(ctx, sessions, time.Now())
			}
		}
	}()
	return done
}

// SweepSessions runs one sweep and logs the outcome.
func SweepSessions(ctx context.Context, sessions port.SessionStore, now time.Time) {
	n, err := sessions.DeleteExpiredSessions(ctx, now)
	if err != nil {
		slog.ErrorContext(ctx, "session sweep failed", "error", err)
		return
	}
	if n > 0 {
		slog.InfoContext(ctx, "expired sessions removed", "count", n)
	}
}
