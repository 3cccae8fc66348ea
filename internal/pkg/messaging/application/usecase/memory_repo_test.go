package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go-parley/internal/infrastructure/realtime"
	identityport "go-parley/internal/pkg/identity/port"
	"go-parley/internal/pkg/messaging/application/notify"
	messaging "go-parley/internal/pkg/messaging/domain"
	repository "go-parley/internal/pkg/messaging/persistence/repository/port"

	"go.uber.org/zap"
)

// memStore is an in-memory stand-in for both repository ports. Inserts get
// strictly increasing timestamps so keyset ordering is deterministic.
type memStore struct {
	mu           sync.Mutex
	threads      map[int64]*messaging.Thread
	participants map[int64][]messaging.Participant
	messages     []messaging.Message
	receipts     map[int64]map[string]time.Time // messageID -> userID -> readAt

	threadSeq int64
	msgSeq    int64
	attachSeq int64
	clock     time.Time

	failCreateMessage bool // simulate a mid-transaction failure
}

var (
	_ repository.ThreadRepository  = (*memStore)(nil)
	_ repository.MessageRepository = (*memStore)(nil)
)

func newMemStore() *memStore {
	return &memStore{
		threads:      make(map[int64]*messaging.Thread),
		participants: make(map[int64][]messaging.Participant),
		receipts:     make(map[int64]map[string]time.Time),
		clock:        time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *memStore) CreateThread(_ context.Context, title *string, isGroup bool, members []messaging.Participant) (messaging.Thread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.threadSeq++
	now := s.tick()
	t := messaging.Thread{ID: s.threadSeq, Title: title, IsGroup: isGroup, CreatedAt: now, UpdatedAt: now}
	s.threads[t.ID] = &t

	for _, m := range members {
		m.ThreadID = t.ID
		m.JoinedAt = now
		s.participants[t.ID] = append(s.participants[t.ID], m)
	}
	return t, nil
}

func (s *memStore) FindParticipant(_ context.Context, threadID int64, userID string) (*messaging.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.participants[threadID] {
		if p.UserID == userID && p.Active(s.clock) {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memStore) ListThreadSummaries(_ context.Context, userID string, q repository.ThreadQuery) ([]messaging.ThreadSummary, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []messaging.ThreadSummary
	for _, t := range s.threads {
		member := false
		for _, p := range s.participants[t.ID] {
			if p.UserID == userID && p.Active(s.clock) {
				member = true
			}
		}
		if !member {
			continue
		}
		if q.Search != "" {
			if t.Title == nil || !strings.Contains(strings.ToLower(*t.Title), strings.ToLower(q.Search)) {
				continue
			}
		}
		if q.Status == "archived" && !t.Archived {
			continue
		}
		matched = append(matched, s.summaryLocked(*t, userID))
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].Thread.UpdatedAt.Equal(matched[j].Thread.UpdatedAt) {
			return matched[i].Thread.UpdatedAt.After(matched[j].Thread.UpdatedAt)
		}
		return matched[i].Thread.ID > matched[j].Thread.ID
	})

	total := len(matched)
	start := (q.Page - 1) * q.Limit
	if start > total {
		start = total
	}
	end := start + q.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (s *memStore) GetThreadSummary(_ context.Context, threadID int64, userID string) (*messaging.ThreadSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.threads[threadID]
	if !ok {
		return nil, nil
	}
	summary := s.summaryLocked(*t, userID)
	return &summary, nil
}

func (s *memStore) summaryLocked(t messaging.Thread, userID string) messaging.ThreadSummary {
	summary := messaging.ThreadSummary{Thread: t, UnreadCount: s.unreadLocked(userID, &t.ID)}
	for _, p := range s.participants[t.ID] {
		if p.Active(s.clock) {
			summary.Participants = append(summary.Participants, p)
		}
	}
	if t.LastMessageID != nil {
		for i := range s.messages {
			if s.messages[i].ID == *t.LastMessageID {
				m := s.messages[i]
				summary.LastMessage = &m
			}
		}
	}
	return summary
}

func (s *memStore) ArchiveStale(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, t := range s.threads {
		if !t.Archived && t.UpdatedAt.Before(cutoff) {
			t.Archived = true
			n++
		}
	}
	return n, nil
}

func (s *memStore) CreateMessage(_ context.Context, m messaging.Message) (messaging.Message, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failCreateMessage {
		return messaging.Message{}, false, errors.New("simulated store failure")
	}

	if m.DedupeKey != nil {
		for i := range s.messages {
			existing := s.messages[i]
			if existing.ThreadID == m.ThreadID && existing.DedupeKey != nil && *existing.DedupeKey == *m.DedupeKey {
				return existing, false, nil
			}
		}
	}

	s.msgSeq++
	m.ID = s.msgSeq
	m.CreatedAt = s.tick()
	for i := range m.Attachments {
		s.attachSeq++
		m.Attachments[i].ID = s.attachSeq
	}
	m.Receipts = []messaging.ReadReceipt{}
	s.messages = append(s.messages, m)

	t := s.threads[m.ThreadID]
	id := m.ID
	t.LastMessageID = &id
	t.UpdatedAt = m.CreatedAt
	return m, true, nil
}

func (s *memStore) ListMessages(_ context.Context, threadID int64, cursor *repository.MessageCursor, limit int, includeSystem bool) ([]messaging.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var page []messaging.Message
	for i := len(s.messages) - 1; i >= 0 && len(page) < limit; i-- {
		m := s.messages[i]
		if m.ThreadID != threadID {
			continue
		}
		if !includeSystem && m.Kind == messaging.MessageKindSystem {
			continue
		}
		if cursor != nil {
			after := m.CreatedAt.After(cursor.CreatedAt) ||
				(m.CreatedAt.Equal(cursor.CreatedAt) && m.ID >= cursor.ID)
			if after {
				continue
			}
		}
		page = append(page, m)
	}
	return page, nil
}

func (s *memStore) MarkRead(_ context.Context, threadID int64, userID string, upTo *int64, at time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var touched int64
	for _, m := range s.messages {
		if m.ThreadID != threadID {
			continue
		}
		if upTo != nil && m.ID > *upTo {
			continue
		}
		byUser := s.receipts[m.ID]
		if byUser == nil {
			byUser = make(map[string]time.Time)
			s.receipts[m.ID] = byUser
		}
		if existing, ok := byUser[userID]; !ok || at.After(existing) {
			byUser[userID] = at
		}
		touched++
	}
	return touched, nil
}

func (s *memStore) UnreadCount(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unreadLocked(userID, nil), nil
}

// unreadLocked recomputes the derived counter, optionally scoped to one thread.
func (s *memStore) unreadLocked(userID string, threadID *int64) int {
	count := 0
	for _, m := range s.messages {
		if threadID != nil && m.ThreadID != *threadID {
			continue
		}
		if m.SenderID == userID {
			continue
		}
		member := false
		for _, p := range s.participants[m.ThreadID] {
			if p.UserID == userID && p.Active(s.clock) {
				member = true
			}
		}
		if !member {
			continue
		}
		if _, read := s.receipts[m.ID][userID]; !read {
			count++
		}
	}
	return count
}

// fakeDirectory resolves a static user set.
type fakeDirectory struct {
	users map[string]identityport.User
}

func (f *fakeDirectory) Resolve(_ context.Context, userID string) (identityport.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return identityport.User{}, identityport.ErrUnknownUser
	}
	return u, nil
}

// allowAll is a Limiter that never throttles.
type allowAll struct{}

func (allowAll) Allow(string) bool { return true }

// denyAll is a Limiter that always throttles.
type denyAll struct{}

func (denyAll) Allow(string) bool { return false }

// fakeSession collects payloads delivered through the realtime router.
type fakeSession struct {
	id       string
	userID   string
	payloads [][]byte
}

func (f *fakeSession) SessionID() string             { return f.id }
func (f *fakeSession) UserID() string                { return f.userID }
func (f *fakeSession) Send(p []byte) error           { f.payloads = append(f.payloads, p); return nil }
func (f *fakeSession) Close(code int, reason string) {}

// events decodes every delivered payload into a loose map, filtered by type.
func (f *fakeSession) events(eventType string) []map[string]any {
	var out []map[string]any
	for _, p := range f.payloads {
		var ev map[string]any
		if err := json.Unmarshal(p, &ev); err != nil {
			continue
		}
		if ev["type"] == eventType {
			out = append(out, ev)
		}
	}
	return out
}

// testEnv wires a full application core around the in-memory store, with a
// real router and notifier so fan-out is observable through fake sessions.
type testEnv struct {
	store     *memStore
	router    *realtime.Router
	notifier  *notify.Notifier
	directory *fakeDirectory
	logger    *zap.Logger
}

func newTestEnv() *testEnv {
	router := realtime.NewRouter()
	logger := zap.NewNop()
	return &testEnv{
		store:    newMemStore(),
		router:   router,
		notifier: notify.NewNotifier(router, logger),
		directory: &fakeDirectory{users: map[string]identityport.User{
			"alice": {ID: "alice", DisplayName: "Alice", Role: "educator"},
			"bob":   {ID: "bob", DisplayName: "Bob", Role: messaging.RoleGuardian},
			"carol": {ID: "carol", DisplayName: "Carol", Role: "coordinator"},
		}},
		logger: logger,
	}
}

func (e *testEnv) sendUseCase(limiter Limiter) *SendMessageUseCase {
	return NewSendMessageUseCase(e.store, e.store, limiter, e.directory, e.notifier, e.logger)
}

func (e *testEnv) seedThread(title string, members ...messaging.Participant) messaging.Thread {
	t, err := e.store.CreateThread(context.Background(), &title, len(members) > 2, members)
	if err != nil {
		panic(err)
	}
	return t
}

// attach registers a fake session with the router and joins it to the given
// rooms. The personal room is implicit in router delivery via NotifyUser.
func (e *testEnv) attach(userID string, rooms ...string) *fakeSession {
	s := &fakeSession{id: userID + "-session-" + strconv.Itoa(len(rooms)), userID: userID}
	e.router.Attach(s)
	for _, room := range rooms {
		e.router.Join(room, s)
	}
	return s
}

func member(userID, role string) messaging.Participant {
	return messaging.Participant{UserID: userID, Role: role}
}
