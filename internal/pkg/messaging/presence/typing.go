// Package presence tracks which users are currently composing in a thread.
// State is ephemeral and process-local on purpose: a restart clears it, which
// is correct for a transient UI signal. Swapping in a shared TTL store for
// multi-instance deployments only touches this package.
package presence

import (
	"sort"
	"sync"
	"time"
)

// TTL is how long a typing entry survives without a refresh.
const TTL = 6 * time.Second

// Tracker is a per-thread map of userID -> expiry, safe for concurrent use.
type Tracker struct {
	mu      sync.Mutex
	threads map[int64]map[string]time.Time

	now func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{
		threads: make(map[int64]map[string]time.Time),
		now:     time.Now,
	}
}

// Set turns the typing signal on or off for (threadID, userID) and returns
// the active typist list after the change. on=true refreshes the expiry.
func (t *Tracker) Set(threadID int64, userID string, on bool) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if on {
		entries := t.threads[threadID]
		if entries == nil {
			entries = make(map[string]time.Time)
			t.threads[threadID] = entries
		}
		entries[userID] = t.now().Add(TTL)
	} else {
		t.removeLocked(threadID, userID)
	}
	return t.activeLocked(threadID)
}

// Active sweeps expired entries and returns the users still typing in the thread.
func (t *Tracker) Active(threadID int64) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.activeLocked(threadID)
}

// ClearUser drops the user's typing entries in every thread and returns the
// thread ids that changed, so callers can broadcast the updated lists.
// Used on session disconnect and on thread leave.
func (t *Tracker) ClearUser(userID string) []int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	var touched []int64
	for threadID, entries := range t.threads {
		if _, ok := entries[userID]; ok {
			t.removeLocked(threadID, userID)
			touched = append(touched, threadID)
		}
	}
	return touched
}

func (t *Tracker) activeLocked(threadID int64) []string {
	entries := t.threads[threadID]
	if len(entries) == 0 {
		return []string{}
	}

	now := t.now()
	active := make([]string, 0, len(entries))
	for userID, expiresAt := range entries {
		if expiresAt.After(now) {
			active = append(active, userID)
		} else {
			delete(entries, userID)
		}
	}
	if len(entries) == 0 {
		delete(t.threads, threadID)
	}
	sort.Strings(active)
	return active
}

func (t *Tracker) removeLocked(threadID int64, userID string) {
	entries := t.threads[threadID]
	if entries == nil {
		return
	}
	delete(entries, userID)
	if len(entries) == 0 {
		delete(t.threads, threadID)
	}
}
