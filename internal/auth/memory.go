package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryDirectory keeps accounts in process memory.
type MemoryDirectory struct {
	mu    sync.RWMutex
	users map[string]User
	roles map[uuid.UUID]ProfileRole

	// ProfileRoleErr, when set, makes CreateProfileRole fail.
	ProfileRoleErr error
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		users: make(map[string]User),
		roles: make(map[uuid.UUID]ProfileRole),
	}
}

func (m *MemoryDirectory) CreateUser(ctx context.Context, email, passwordHash string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[email]; ok {
		return User{}, ErrEmailTaken
	}
	u := User{ID: uuid.New(), Email: email, PasswordHash: passwordHash, CreatedAt: time.Now().UTC()}
	m.users[email] = u
	return u, nil
}

func (m *MemoryDirectory) UserByEmail(ctx context.Context, email string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[email]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

func (m *MemoryDirectory) CreateProfileRole(ctx context.Context, role ProfileRole) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ProfileRoleErr != nil {
		return m.ProfileRoleErr
	}
	m.roles[role.ID] = role
	return nil
}

func (m *MemoryDirectory) ProfileRole(id uuid.UUID) (ProfileRole, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.roles[id]
	return r, ok
}
