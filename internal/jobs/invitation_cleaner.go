// Package jobs runs periodic background maintenance.
package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

type InvitationExpirer interface {
	ExpireInvitations(ctx context.Context, now time.Time) (int64, error)
}

// InvitationCleaner marks stale pending invitations as expired on every tick.
type InvitationCleaner struct {
	Store    InvitationExpirer
	Interval time.Duration
	Now      func() time.Time
}

func NewInvitationCleaner(store InvitationExpirer, interval time.Duration) *InvitationCleaner {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &InvitationCleaner{Store: store, Interval: interval, Now: time.Now}
}

// Run sweeps once immediately, then on every interval until ctx is done.
func (c *InvitationCleaner) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.Interval)
	defer ticker.Stop()

	c.Sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "jobs").Msg("invitation cleaner stopped")
			return nil
		case <-ticker.C:
			c.Sweep(ctx)
		}
	}
}

func (c *InvitationCleaner) Sweep(ctx context.Context) {
	n, err := c.Store.ExpireInvitations(ctx, c.Now())
	if err != nil {
		log.Error().Err(err).Str("module", "jobs").Msg("invitation sweep failed")
		return
	}
	if n > 0 {
		log.Info().Str("module", "jobs").Int64("expired", n).Msg("invitations expired")
	}
}
