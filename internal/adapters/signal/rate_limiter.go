package signal

import (
	"fmt"
	"sync"
	"time"

	"github.com/dkeye/StudyHub/internal/core"
	"github.com/dkeye/StudyHub/internal/domain"
)

// RoomRateLimiter is a sliding-window limit on inbound events per session.
// A non-positive limit disables it.
type RoomRateLimiter struct {
	mu       sync.Mutex
	history  map[core.SessionID][]time.Time
	limit    int
	interval time.Duration
	now      func() time.Time
}

func NewRoomRateLimiter(limit int, interval time.Duration) *RoomRateLimiter {
	return &RoomRateLimiter{
		history:  make(map[core.SessionID][]time.Time),
		limit:    limit,
		interval: interval,
		now:      time.Now,
	}
}

func (rl *RoomRateLimiter) Allow(sid core.SessionID) bool {
	if rl.limit <= 0 || rl.interval <= 0 {
		return true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	windowStart := now.Add(-rl.interval)

	attempts := rl.history[sid]
	fresh := attempts[:0]
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}
	if len(fresh) >= rl.limit {
		rl.history[sid] = fresh
		return false
	}
	rl.history[sid] = append(fresh, now)
	return true
}

// Check is Allow reported as an error wrapping domain.ErrRateLimited.
func (rl *RoomRateLimiter) Check(sid core.SessionID) error {
	if rl.Allow(sid) {
		return nil
	}
	return fmt.Errorf("%w: %d events per %s", domain.ErrRateLimited, rl.limit, rl.interval)
}

func (rl *RoomRateLimiter) Forget(sid core.SessionID) {
	rl.mu.Lock()
	delete(rl.history, sid)
	rl.mu.Unlock()
}
