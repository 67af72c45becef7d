package auth

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/recruitify/internal/localstore"
	"github.com/wolfeidau/recruitify/internal/models"
)

// SessionKey is the local storage key holding the current login.
const SessionKey = "session"

var (
	// ErrNotLoggedIn is returned when no session is stored.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrSessionExpired is returned when the stored session has expired.
	ErrSessionExpired = errors.New("session expired")
)

// SessionStore keeps the login session in local storage.
type SessionStore struct {
	store localstore.Store
}

// NewSessionStore creates a session store on top of store.
func NewSessionStore(store localstore.Store) *SessionStore {
	return &SessionStore{store: store}
}

// Login parses token and saves it as the current session, replacing any previous one.
func (s *SessionStore) Login(token string) (*models.Session, error) {
	session, err := ParseIdentity(token)
	if err != nil {
		return nil, err
	}

	if session.IsExpired() {
		return nil, ErrSessionExpired
	}

	data, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.store.Set(SessionKey, data); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	log.Info().
		Str("userID", session.User.ID).
		Time("expiresAt", session.ExpiresAt).
		Msg("logged in")

	return session, nil
}

// Load returns the current session.
// Returns ErrNotLoggedIn if there is none, ErrSessionExpired if it has expired.
func (s *SessionStore) Load() (*models.Session, error) {
	session, err := s.Stored()
	if err != nil {
		return nil, err
	}

	if session.IsExpired() {
		return nil, ErrSessionExpired
	}

	return session, nil
}

// Stored returns the stored session even if it has expired.
func (s *SessionStore) Stored() (*models.Session, error) {
	data, err := s.store.Get(SessionKey)
	if err != nil {
		if errors.Is(err, localstore.ErrKeyNotFound) {
			return nil, ErrNotLoggedIn
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		// a session we cannot read is as good as none
		log.Warn().Err(err).Msg("discarding malformed session")
		return nil, ErrNotLoggedIn
	}

	if session.Token == "" || session.User.ID == "" {
		return nil, ErrNotLoggedIn
	}

	return &session, nil
}

// Logout deletes the current session.
func (s *SessionStore) Logout() error {
	if err := s.store.Delete(SessionKey); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	log.Info().Msg("logged out")

	return nil
}
