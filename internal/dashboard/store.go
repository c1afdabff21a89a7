package dashboard

import (
	"sync"

	"github.com/couchcryptid/hydro-explorer-service/internal/domain"
	"github.com/google/uuid"
)

// Store is a thread-safe LRU of live sessions. When full, the least recently
// used session is closed and dropped.
type Store struct {
	deps       Deps
	maxEntries int
	newID      func() string

	mu      sync.Mutex
	entries map[string]*entry
	head    *entry // most recently used
	tail    *entry // least recently used
}

type entry struct {
	key   string
	value *Session
	prev  *entry
	next  *entry
}

// NewStore creates a session store holding at most maxEntries sessions.
func NewStore(deps Deps, maxEntries int) *Store {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &Store{
		deps:       deps,
		maxEntries: maxEntries,
		newID:      uuid.NewString,
		entries:    make(map[string]*entry),
	}
}

// Create starts a new session and makes it the most recently used.
func (st *Store) Create() *Session {
	s := NewSession(st.newID(), st.deps)

	st.mu.Lock()
	e := &entry{key: s.ID(), value: s}
	st.entries[e.key] = e
	st.addToFront(e)
	var evicted *Session
	if len(st.entries) > st.maxEntries {
		evicted = st.evictTail()
	}
	st.deps.Metrics.SessionsActive.Set(float64(len(st.entries)))
	st.mu.Unlock()

	if evicted != nil {
		evicted.Close()
		st.deps.Metrics.SessionsEvicted.Inc()
		st.deps.Logger.Info("session evicted", "session_id", evicted.ID())
	}
	s.recorder.Record(domain.NewActivityEvent(s.ID(), domain.ActionSessionCreated, domain.Selection{}, nil))
	return s
}

// Get returns a live session and marks it most recently used.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	e, ok := st.entries[id]
	if !ok {
		return nil, false
	}
	st.moveToFront(e)
	return e.value, true
}

// Delete closes and drops a session. It reports whether the session existed.
func (st *Store) Delete(id string) bool {
	st.mu.Lock()
	e, ok := st.entries[id]
	if ok {
		delete(st.entries, id)
		st.remove(e)
		st.deps.Metrics.SessionsActive.Set(float64(len(st.entries)))
	}
	st.mu.Unlock()

	if ok {
		e.value.Close()
	}
	return ok
}

// Len reports the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.entries)
}

// CloseAll closes and drops every session.
func (st *Store) CloseAll() {
	st.mu.Lock()
	sessions := make([]*Session, 0, len(st.entries))
	for e := st.head; e != nil; e = e.next {
		sessions = append(sessions, e.value)
	}
	st.entries = make(map[string]*entry)
	st.head, st.tail = nil, nil
	st.deps.Metrics.SessionsActive.Set(0)
	st.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

func (st *Store) moveToFront(e *entry) {
	if e == st.head {
		return
	}
	st.remove(e)
	st.addToFront(e)
}

func (st *Store) addToFront(e *entry) {
	e.next = st.head
	e.prev = nil
	if st.head != nil {
		st.head.prev = e
	}
	st.head = e
	if st.tail == nil {
		st.tail = e
	}
}

func (st *Store) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		st.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		st.tail = e.prev
	}
}

func (st *Store) evictTail() *Session {
	if st.tail == nil {
		return nil
	}
	victim := st.tail
	delete(st.entries, victim.key)
	st.remove(victim)
	return victim.value
}
