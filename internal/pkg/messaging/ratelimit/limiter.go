// Package ratelimit throttles message sends per sender with a sliding window.
// Like typing presence the state is process-local; a shared TTL store can
// replace it behind the same interface when the service scales out.
package ratelimit

import (
	"sync"
	"time"
)

const (
	// Window is the sliding interval sends are counted over.
	Window = 60 * time.Second
	// MaxSends is the number of sends allowed inside one window.
	MaxSends = 45
)

// SlidingWindow keeps the recent send timestamps per user.
type SlidingWindow struct {
	mu    sync.Mutex
	sends map[string][]time.Time

	now func() time.Time
}

func NewSlidingWindow() *SlidingWindow {
	return &SlidingWindow{
		sends: make(map[string][]time.Time),
		now:   time.Now,
	}
}

// Allow prunes timestamps older than the window, and either records the new
// send and accepts, or rejects when the sender is already at the limit.
func (l *SlidingWindow) Allow(userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	threshold := now.Add(-Window)

	recent := l.sends[userID][:0]
	for _, ts := range l.sends[userID] {
		if ts.After(threshold) {
			recent = append(recent, ts)
		}
	}

	if len(recent) >= MaxSends {
		l.sends[userID] = recent
		return false
	}

	l.sends[userID] = append(recent, now)
	return true
}
