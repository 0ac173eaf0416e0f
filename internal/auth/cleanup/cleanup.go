package cleanup

import (
	"context"
	"time"

	"github.com/glimmer-social/backend/internal/common/constants"
	"github.com/glimmer-social/backend/internal/common/logger"
	"github.com/glimmer-social/backend/internal/observability/metrics"
)

// ExpiredDeleter is the slice of the token repository the worker needs.
type ExpiredDeleter interface {
	DeleteExpiredResetTokens(ctx context.Context) (int64, error)
}

// StartResetTokenCleanup periodically removes reset tokens past their window.
// Blocks until ctx is cancelled; run it on its own goroutine.
func StartResetTokenCleanup(ctx context.Context, repo ExpiredDeleter, log *logger.Logger) {
	run(ctx, repo, log, constants.ResetTokenCleanupInterval)
}

func run(ctx context.Context, repo ExpiredDeleter, log *logger.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := repo.DeleteExpiredResetTokens(ctx)
			if err != nil {
				log.Errorf("reset token cleanup failed: %v", err)
				continue
			}
			if deleted > 0 {
				metrics.ResetTokensCleanupDeleted.Add(float64(deleted))
				log.Infof("reset token cleanup: deleted %d expired tokens", deleted)
			}
		}
	}
}
