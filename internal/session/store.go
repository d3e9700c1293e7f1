package session

import (
	"sort"
	"sync"
)

// Identity distinguishes the two kinds of classroom clients.
type Identity int

const (
	Student Identity = 1
	Teacher Identity = 2
)

func (i Identity) Valid() bool {
	return i == Student || i == Teacher
}

func (i Identity) String() string {
	switch i {
	case Student:
		return "student"
	case Teacher:
		return "teacher"
	}
	return "unknown"
}

// LandingPage is the page a client is sent to once its session is established.
func (i Identity) LandingPage() string {
	if i == Teacher {
		return "teacherPage.html"
	}
	return "studentPage.html"
}

type Session struct {
	ID        string
	UserID    string
	Name      string
	Identity  Identity
	Connected bool
}

// Store maps session IDs to session records.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]Session)}
}

func (s *Store) Find(id string) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *Store) Save(sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
}

// Update applies fn to the stored session under the store lock and saves the
// result. It reports false when id is unknown.
func (s *Store) Update(id string, fn func(*Session)) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, false
	}
	fn(&sess)
	sess.ID = id
	s.sessions[id] = sess
	return sess, true
}

// All returns every stored session ordered by ID.
func (s *Store) All() []Session {
	s.mu.RLock()
	out := make([]Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
