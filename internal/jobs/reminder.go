package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

type ReminderSender interface {
	SendReminders(ctx context.Context, now time.Time) (int, error)
}

// Reminder mails upcoming task deadlines and room events on every tick.
type Reminder struct {
	Sender   ReminderSender
	Interval time.Duration
	Now      func() time.Time
}

func NewReminder(sender ReminderSender, interval time.Duration) *Reminder {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Reminder{Sender: sender, Interval: interval, Now: time.Now}
}

// Run sweeps once immediately, then on every interval until ctx is done.
func (r *Reminder) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	r.Sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "jobs").Msg("reminder stopped")
			return nil
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

func (r *Reminder) Sweep(ctx context.Context) {
	n, err := r.Sender.SendReminders(ctx, r.Now())
	if err != nil {
		log.Error().Err(err).Str("module", "jobs").Int("sent", n).Msg("reminder sweep failed")
		return
	}
	if n > 0 {
		log.Info().Str("module", "jobs").Int("sent", n).Msg("reminders sent")
	}
}
