package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ExpiredSessionPurger is implemented by session stores without native expiry.
type ExpiredSessionPurger interface {
	PurgeExpired(now time.Time) int
}

// RunSessionSweeper purges expired sessions every interval until ctx is done.
func RunSessionSweeper(ctx context.Context, store ExpiredSessionPurger, interval time.Duration, logger *zap.Logger) {
	if store == nil || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if purged := store.PurgeExpired(now); purged > 0 {
				logger.Debug("expired sessions purged", zap.Int("count", purged))
			}
		}
	}
}
