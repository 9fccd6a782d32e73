package service

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper periodically deletes expired refresh-token rows. The revocation
// check in Refresh does not depend on it; sweeping only keeps the table from
// accumulating dead rows.
type Sweeper struct {
	auth     *AuthService
	interval time.Duration
}

func NewSweeper(auth *AuthService, interval time.Duration) *Sweeper {
	return &Sweeper{auth: auth, interval: interval}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.auth.SweepExpiredRefreshTokens(ctx); err != nil {
				slog.WarnContext(ctx, "refresh token sweep failed", "error", err)
			}
		}
	}
}
