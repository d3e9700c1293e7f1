package session

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultTeacherName = "Instructor"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidIdentity = errors.New("identity must be student or teacher")
	ErrNameRequired    = errors.New("student name is required")
)

// Handshake carries what a client sends when it connects.
type Handshake struct {
	SessionID string
	Name      string
	Identity  Identity
}

// Authenticator restores known sessions and creates new ones.
type Authenticator struct {
	store  *Store
	logger *zap.Logger
	newID  func() string
}

func NewAuthenticator(store *Store, logger *zap.Logger) *Authenticator {
	if store == nil {
		panic("store must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authenticator{
		store:  store,
		logger: logger.Named("session"),
		newID:  uuid.NewString,
	}
}

// Authenticate resumes the session named in the handshake when the store
// knows it, and otherwise creates a fresh one. reused reports which happened.
func (a *Authenticator) Authenticate(h Handshake) (sess Session, reused bool, err error) {
	if h.SessionID != "" {
		if existing, ok := a.store.Update(h.SessionID, func(s *Session) { s.Connected = true }); ok {

			a.logger.Info("existing session",
				zap.String("session_id", existing.ID),
				zap.String("name", existing.Name),
				zap.Stringer("identity", existing.Identity))
			return existing, true, nil
		}
		a.logger.Debug("unknown session id, creating new session", zap.String("session_id", h.SessionID))
	}

	if !h.Identity.Valid() {
		return Session{}, false, ErrInvalidIdentity
	}

	name := strings.TrimSpace(h.Name)
	if name == "" {
		if h.Identity == Student {
			return Session{}, false, ErrNameRequired
		}
		name = defaultTeacherName
	}

	sess = Session{
		ID:        a.newID(),
		UserID:    a.newID(),
		Name:      name,
		Identity:  h.Identity,
		Connected: true,
	}
	a.store.Save(sess)

	a.logger.Info("new session",
		zap.String("session_id", sess.ID),
		zap.String("name", sess.Name),
		zap.Stringer("identity", sess.Identity))
	return sess, false, nil
}

// Disconnect keeps the session but records that its client went away.
func (a *Authenticator) Disconnect(id string) error {
	if _, ok := a.store.Update(id, func(s *Session) { s.Connected = false }); !ok {
		return ErrSessionNotFound
	}

	a.logger.Info("session disconnected", zap.String("session_id", id))
	return nil
}

// Lookup returns the session for id.
func (a *Authenticator) Lookup(id string) (Session, error) {
	sess, ok := a.store.Find(id)
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return sess, nil
}

func (a *Authenticator) Sessions() []Session {
	return a.store.All()
}
