package web

import (
	"sync"

	"github.com/google/uuid"

	"github.com/1Sheikhhamza/case-search-app/internal/document"
)

// maxSessions bounds how many opened documents are held at once. The oldest
// session is evicted when the bound is hit; an evicted document simply needs
// reopening.
const maxSessions = 16

type storedSession struct {
	session *document.Session
	seq     uint64
}

// sessionStore holds opened document sessions keyed by id. Each open writes
// a whole new session value; print, download and page reads only ever see a
// complete session, never a partially updated one.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*storedSession
	nextSeq  uint64
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*storedSession)}
}

// Put stores a freshly opened session and returns its id.
func (st *sessionStore) Put(sess *document.Session) string {
	st.mu.Lock()
	defer st.mu.Unlock()

	if len(st.sessions) >= maxSessions {
		st.evictOldestLocked()
	}

	id := uuid.NewString()
	st.nextSeq++
	st.sessions[id] = &storedSession{session: sess, seq: st.nextSeq}
	return id
}

// Get returns the session for id, or nil when it is unknown or evicted.
func (st *sessionStore) Get(id string) *document.Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	stored, ok := st.sessions[id]
	if !ok {
		return nil
	}
	return stored.session
}

// Delete releases a session when the user leaves the document view.
func (st *sessionStore) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

func (st *sessionStore) evictOldestLocked() {
	var oldestID string
	var oldestSeq uint64
	for id, stored := range st.sessions {
		if oldestID == "" || stored.seq < oldestSeq {
			oldestID = id
			oldestSeq = stored.seq
		}
	}
	if oldestID != "" {
		delete(st.sessions, oldestID)
	}
}
