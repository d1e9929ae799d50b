package store

import (
	"sync"

	"kareerbot/pkg/domain"
)

// MemoryStore keeps accounts and plans in-process. Used in tests and for
// running without Postgres.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]domain.User // key: user ID
	email map[string]string      // email -> user ID
	phone map[string]string      // phone -> user ID
	plans map[string]domain.Plan // user ID -> plan
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]domain.User),
		email: make(map[string]string),
		phone: make(map[string]string),
		plans: make(map[string]domain.Plan),
	}
}

// SaveUser registers or replaces a user.
func (m *MemoryStore) SaveUser(u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	if u.Email != "" {
		m.email[u.Email] = u.ID
	}
	if u.Phone != "" {
		m.phone[u.Phone] = u.ID
	}
	return nil
}

// GetUserByID returns a user by ID.
func (m *MemoryStore) GetUserByID(id string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

// GetUserByEmail looks up a user by email contact.
func (m *MemoryStore) GetUserByEmail(email string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.email[email]; ok {
		u, exists := m.users[id]
		return u, exists, nil
	}
	return domain.User{}, false, nil
}

// GetUserByPhone looks up a user by phone contact.
func (m *MemoryStore) GetUserByPhone(phone string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.phone[phone]; ok {
		u, exists := m.users[id]
		return u, exists, nil
	}
	return domain.User{}, false, nil
}

// SavePlan stores or replaces the user's plan.
func (m *MemoryStore) SavePlan(userID string, plan domain.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans[userID] = plan
	return nil
}

// GetPlan retrieves the user's plan.
func (m *MemoryStore) GetPlan(userID string) (domain.Plan, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	plan, ok := m.plans[userID]
	return plan, ok, nil
}
