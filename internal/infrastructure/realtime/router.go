package realtime

import (
	"fmt"
	"sync"
)

// ThreadRoom names the room every viewer of a thread subscribes to.
func ThreadRoom(threadID int64) string {
	return fmt.Sprintf("thread:%d", threadID)
}

// Router coordinates live sessions and logical rooms. Rooms are plain string
// keys (thread rooms via ThreadRoom); per-user delivery goes through
// NotifyUser, which reaches every session the user currently holds.
type Router struct {
	mu           sync.RWMutex
	sessions     map[string]Session             // sessionID -> session
	userSessions map[string]map[string]Session  // userID -> sessionID -> session
	rooms        map[string]map[string]Session  // room -> sessionID -> session
	sessionRooms map[string]map[string]struct{} // sessionID -> set of rooms
}

// NewRouter constructs an initialized Router.
func NewRouter() *Router {
	return &Router{
		sessions:     make(map[string]Session),
		userSessions: make(map[string]map[string]Session),
		rooms:        make(map[string]map[string]Session),
		sessionRooms: make(map[string]map[string]struct{}),
	}
}

// Attach registers a session. Existing sessions of the same user stay live;
// one user may be connected from several devices at once.
func (r *Router) Attach(s Session) {
	r.mu.Lock()
	r.sessions[s.SessionID()] = s

	byUser := r.userSessions[s.UserID()]
	if byUser == nil {
		byUser = make(map[string]Session)
		r.userSessions[s.UserID()] = byUser
	}
	byUser[s.SessionID()] = s

	r.sessionRooms[s.SessionID()] = make(map[string]struct{})
	r.mu.Unlock()
}

// Detach removes a session and its room memberships if it is still tracked.
func (r *Router) Detach(s Session) {
	r.mu.Lock()
	r.detachLocked(s.SessionID())
	r.mu.Unlock()
}

// Join adds the session to the room.
func (r *Router) Join(room string, s Session) {
	r.mu.Lock()
	if _, ok := r.sessions[s.SessionID()]; !ok {
		r.mu.Unlock()
		return
	}

	members := r.rooms[room]
	if members == nil {
		members = make(map[string]Session)
		r.rooms[room] = members
	}
	members[s.SessionID()] = s

	memberships := r.sessionRooms[s.SessionID()]
	if memberships == nil {
		memberships = make(map[string]struct{})
		r.sessionRooms[s.SessionID()] = memberships
	}
	memberships[room] = struct{}{}
	r.mu.Unlock()
}

// Leave removes the session from the room.
func (r *Router) Leave(room string, s Session) {
	r.mu.Lock()
	r.leaveLocked(room, s.SessionID())
	r.mu.Unlock()
}

// Broadcast writes payload to all members of the room.
// excludeUserID, when non-empty, prevents delivering to that user's sessions.
func (r *Router) Broadcast(room string, payload []byte, excludeUserID string) int {
	r.mu.RLock()
	members := r.rooms[room]
	if len(members) == 0 {
		r.mu.RUnlock()
		return 0
	}

	delivered := 0
	for _, s := range members {
		if excludeUserID != "" && s.UserID() == excludeUserID {
			continue
		}
		if err := s.Send(payload); err == nil {
			delivered++
		}
	}
	r.mu.RUnlock()
	return delivered
}

// NotifyUser delivers payload to every current session of the given user and
// reports how many sessions took it.
func (r *Router) NotifyUser(userID string, payload []byte) int {
	r.mu.RLock()
	byUser := r.userSessions[userID]
	sessions := make([]Session, 0, len(byUser))
	for _, s := range byUser {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	delivered := 0
	for _, s := range sessions {
		if err := s.Send(payload); err == nil {
			delivered++
		}
	}
	return delivered
}

// Close terminates all tracked sessions and clears router state.
func (r *Router) Close() {
	r.mu.Lock()
	sessions := make([]Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.sessions = make(map[string]Session)
	r.userSessions = make(map[string]map[string]Session)
	r.rooms = make(map[string]map[string]Session)
	r.sessionRooms = make(map[string]map[string]struct{})
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close(1001, "router shutdown")
	}
}

func (r *Router) detachLocked(sessionID string) {
	s, ok := r.sessions[sessionID]
	if !ok {
		return
	}
	delete(r.sessions, sessionID)

	if byUser, ok := r.userSessions[s.UserID()]; ok {
		delete(byUser, sessionID)
		if len(byUser) == 0 {
			delete(r.userSessions, s.UserID())
		}
	}

	for room := range r.sessionRooms[sessionID] {
		r.leaveLocked(room, sessionID)
	}
	delete(r.sessionRooms, sessionID)
}

func (r *Router) leaveLocked(room string, sessionID string) {
	if sessionID == "" {
		return
	}
	members := r.rooms[room]
	if members == nil {
		return
	}
	delete(members, sessionID)
	if len(members) == 0 {
		delete(r.rooms, room)
	}
	if memberships, ok := r.sessionRooms[sessionID]; ok {
		delete(memberships, room)
		if len(memberships) == 0 {
			delete(r.sessionRooms, sessionID)
		}
	}
}
