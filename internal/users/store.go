package users

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Store keeps user records addressable by id and by email address.
type Store interface {
	// FindUser looks a user up by id or email address. A miss is not an error.
	FindUser(ctx context.Context, identifier string) (*User, bool)
	CreateUser(ctx context.Context, fields Fields) (*User, error)
	UpdateUser(ctx context.Context, id string, update Update) (*User, error)
}

// MemoryStore is a process-local Store. Records live as long as the process.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]*User
	byEmail map[string]string
	newID   func() string
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]*User),
		byEmail: make(map[string]string),
		newID:   uuid.NewString,
	}
}

func (s *MemoryStore) FindUser(_ context.Context, identifier string) (*User, bool) {
	if identifier == "" {
		return nil, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if u, ok := s.byID[identifier]; ok {
		return clone(u), true
	}
	if id, ok := s.byEmail[identifier]; ok {
		return clone(s.byID[id]), true
	}
	return nil, false
}

func (s *MemoryStore) CreateUser(_ context.Context, fields Fields) (*User, error) {
	if fields.EmailAddress == "" {
		return nil, fmt.Errorf("email address is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[fields.EmailAddress]; exists {
		return nil, fmt.Errorf("%w: %s", ErrEmailTaken, fields.EmailAddress)
	}

	u := &User{
		ID:           s.newID(),
		EmailAddress: fields.EmailAddress,
		AccessToken:  fields.AccessToken,
	}
	s.byID[u.ID] = u
	s.byEmail[u.EmailAddress] = u.ID
	return clone(u), nil
}

func (s *MemoryStore) UpdateUser(_ context.Context, id string, update Update) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if update.AccessToken != nil {
		u.AccessToken = *update.AccessToken
	}
	return clone(u), nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func clone(u *User) *User {
	c := *u
	return &c
}
