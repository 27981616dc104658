package userstore

import (
	"context"
	"sync"
	"time"

	"github.com/avallejos/visitauth/internal/domain/auth"
	"github.com/avallejos/visitauth/internal/domain/visits"
)

// Memory keeps everything in process. Used by tests and as a development
// fallback when no database is configured.
type Memory struct {
	mu      sync.RWMutex
	users   map[string]auth.User
	denied  map[string]int64
	history map[int64][]visits.Visit
	seq     int64
	visitID int64
}

// NewMemory constructs an empty in-process store.
func NewMemory() *Memory {
	return &Memory{
		users:   make(map[string]auth.User),
		denied:  make(map[string]int64),
		history: make(map[int64][]visits.Visit),
	}
}

func (s *Memory) GetUserByEmail(_ context.Context, email string) (auth.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[email]
	return user, ok, nil
}

func (s *Memory) InsertUser(_ context.Context, email, passwordHash string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[email]; ok {
		return 0, auth.ErrEmailExists
	}
	s.seq++
	s.users[email] = auth.User{ID: s.seq, Email: email, PasswordHash: passwordHash}
	return s.seq, nil
}

func (s *Memory) UpdateUserPassword(_ context.Context, email, passwordHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[email]
	if !ok {
		return false, nil
	}
	user.PasswordHash = passwordHash
	s.users[email] = user
	return true, nil
}

func (s *Memory) DeleteUser(_ context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[email]
	if !ok {
		return false, nil
	}
	delete(s.users, email)
	delete(s.history, user.ID)
	return true, nil
}

func (s *Memory) DenyToken(_ context.Context, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.denied[token] = expiresAt.UnixMilli()
	return nil
}

func (s *Memory) IsTokenDenied(_ context.Context, token string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.denied[token]
	return ok, nil
}

func (s *Memory) AddVisit(_ context.Context, userID int64, dateTime string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visitID++
	s.history[userID] = append(s.history[userID], visits.Visit{
		ID:       s.visitID,
		UserID:   userID,
		DateTime: dateTime,
	})
	return nil
}

func (s *Memory) VisitsByUser(_ context.Context, userID int64) ([]visits.Visit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := s.history[userID]
	out := make([]visits.Visit, len(records))
	copy(out, records)
	return out, nil
}

func (s *Memory) Close() error { return nil }

var _ Store = (*Memory)(nil)
