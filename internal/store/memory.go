package store

import (
	"context"
	"sync"
	"time"

	"github.com/dgallion1/sheetgraph/internal/table"
	"github.com/google/uuid"
)

// MemoryStore keeps everything in process memory. It backs demo mode, where
// nothing needs to survive a restart.
type MemoryStore struct {
	mu       sync.Mutex
	users    map[string]User // keyed by username
	sessions map[string]Session
	uploads  map[string]Upload
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]User),
		sessions: make(map[string]Session),
		uploads:  make(map[string]Upload),
	}
}

func (s *MemoryStore) UpsertUser(_ context.Context, u User) (User, error) {
	if u.Role == "" {
		u.Role = "user"
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.users[u.Username]; ok {
		u.ID = prev.ID
		u.CreatedAt = prev.CreatedAt
	} else {
		if u.ID == "" {
			u.ID = uuid.New().String()
		}
		u.CreatedAt = time.Now().UTC()
	}
	s.users[u.Username] = u
	return u, nil
}

func (s *MemoryStore) UserByUsername(_ context.Context, username string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (s *MemoryStore) CreateSession(_ context.Context, u User, ttl time.Duration) (Session, error) {
	token, err := NewToken()
	if err != nil {
		return Session{}, err
	}
	now := time.Now().UTC()
	u.PasswordHash = ""
	sess := Session{
		Token:     token,
		User:      u,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = sess
	return sess, nil
}

func (s *MemoryStore) LookupSession(_ context.Context, token string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return Session{}, ErrNotFound
	}
	if !time.Now().Before(sess.ExpiresAt) {
		return Session{}, ErrSessionExpired
	}
	return sess, nil
}

func (s *MemoryStore) DeleteSession(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[token]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, token)
	return nil
}

// PurgeExpiredSessions removes expired sessions.
func (s *MemoryStore) PurgeExpiredSessions(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	n := 0
	for token, sess := range s.sessions {
		if !now.Before(sess.ExpiresAt) {
			delete(s.sessions, token)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) SaveUpload(_ context.Context, userID string, t *table.Table, contentHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads[userID] = Upload{
		UserID:      userID,
		Table:       t,
		RowCount:    t.Len(),
		ContentHash: contentHash,
		CreatedAt:   time.Now().UTC(),
	}
	return nil
}

func (s *MemoryStore) LatestUpload(_ context.Context, userID string) (Upload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	up, ok := s.uploads[userID]
	if !ok {
		return Upload{}, ErrNotFound
	}
	return up, nil
}

func (s *MemoryStore) ClearUpload(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.uploads, userID)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
