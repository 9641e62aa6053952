package jellyfin

import (
	"sync"

	"github.com/mmcdole/reel/internal/domain"
)

// multiSetter is implemented by stores that can write several keys in one transaction
type multiSetter interface {
	SetStrings(values map[string]string) error
}

// Session owns the current token and user id. Both fields always change together.
type Session struct {
	mu      sync.RWMutex
	current domain.Session
	store   domain.CredentialStore
}

// NewSession restores a previously persisted session from store, if any
func NewSession(store domain.CredentialStore) *Session {
	s := &Session{store: store}
	if store != nil {
		s.current.Token, _ = store.GetString(domain.KeyAccessToken)
		s.current.UserID, _ = store.GetString(domain.KeyUserID)
	}
	return s
}

// Get returns a snapshot of the current session
func (s *Session) Get() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Set replaces the session in memory and persists it. The in-memory value is
// updated even when persisting fails.
func (s *Session) Set(next domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = next
	return s.persist(next)
}

// Clear forgets the session
func (s *Session) Clear() error {
	return s.Set(domain.Session{})
}

func (s *Session) persist(next domain.Session) error {
	if s.store == nil {
		return nil
	}
	if ms, ok := s.store.(multiSetter); ok {
		return ms.SetStrings(map[string]string{
			domain.KeyAccessToken: next.Token,
			domain.KeyUserID:      next.UserID,
		})
	}
	if err := s.store.SetString(domain.KeyAccessToken, next.Token); err != nil {
		return err
	}
	return s.store.SetString(domain.KeyUserID, next.UserID)
}
