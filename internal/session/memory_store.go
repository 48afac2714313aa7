package session

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/go-blog/internal/model"
)

type memorySession struct {
	userID   uint64
	username string
	returnTo string
	success  string
	errorMsg string
	expires  time.Time
}

// MemoryStore is the in-process fallback used when Redis is not
// reachable, and by tests. Sessions do not survive a restart; the
// caller logs a warning when falling back to it.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*memorySession
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]*memorySession),
		now:      time.Now,
	}
}

// get returns the live session for token, evicting it when expired.
// Callers must hold the mutex.
func (s *MemoryStore) get(token string) *memorySession {
	sess, ok := s.sessions[token]
	if !ok {
		return nil
	}
	if s.now().After(sess.expires) {
		delete(s.sessions, token)
		return nil
	}
	return sess
}

func (s *MemoryStore) Create(_ context.Context, userID uint64, username string) (string, error) {
	token, err := NewToken()
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = &memorySession{
		userID:   userID,
		username: username,
		expires:  s.now().Add(s.ttl),
	}
	return token, nil
}

func (s *MemoryStore) Resolve(_ context.Context, token string) (*model.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.get(token)
	if sess == nil {
		return nil, nil
	}
	sess.expires = s.now().Add(s.ttl) // sliding expiry, like the Redis store
	if sess.userID == 0 {
		return nil, nil
	}
	return &model.Identity{UserID: sess.userID, Username: sess.username}, nil
}

func (s *MemoryStore) Destroy(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *MemoryStore) SetFlash(_ context.Context, token, kind, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.get(token)
	if sess == nil {
		return nil
	}
	if kind == FlashError {
		sess.errorMsg = message
	} else {
		sess.success = message
	}
	return nil
}

func (s *MemoryStore) PopFlash(_ context.Context, token string) (Flash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.get(token)
	if sess == nil {
		return Flash{}, nil
	}
	f := Flash{Success: sess.success, Error: sess.errorMsg}
	sess.success, sess.errorMsg = "", ""
	return f, nil
}

func (s *MemoryStore) SetReturnTo(_ context.Context, token, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess := s.get(token); sess != nil {
		sess.returnTo = target
	}
	return nil
}

func (s *MemoryStore) PopReturnTo(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.get(token)
	if sess == nil {
		return "", nil
	}
	target := sess.returnTo
	sess.returnTo = ""
	return target, nil
}
