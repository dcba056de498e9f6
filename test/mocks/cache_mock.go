package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/gracepointe/serve-hub/scheduling-service/internal/core/domain"
	"github.com/gracepointe/serve-hub/scheduling-service/internal/core/ports"
)

// MockRoleCache implements ports.RoleCache in memory. TTLs are recorded but
// never expire; tests drive expiry by clearing entries explicitly.
type MockRoleCache struct {
	mu sync.RWMutex

	roles map[string]domain.Role

	GetCalls        []string
	SetCalls        []string
	InvalidateCalls []string

	GetError        error
	SetError        error
	InvalidateError error

	LastTTL time.Duration
}

var _ ports.RoleCache = (*MockRoleCache)(nil)

func NewMockRoleCache() *MockRoleCache {
	return &MockRoleCache{roles: make(map[string]domain.Role)}
}

func (m *MockRoleCache) Get(ctx context.Context, userID string) (domain.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetCalls = append(m.GetCalls, userID)

	if m.GetError != nil {
		return "", m.GetError
	}
	role, ok := m.roles[userID]
	if !ok {
		return "", ports.ErrNotFound
	}
	return role, nil
}

func (m *MockRoleCache) Set(ctx context.Context, userID string, role domain.Role, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SetCalls = append(m.SetCalls, userID)
	m.LastTTL = ttl

	if m.SetError != nil {
		return m.SetError
	}
	m.roles[userID] = role
	return nil
}

func (m *MockRoleCache) Invalidate(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.InvalidateCalls = append(m.InvalidateCalls, userID)

	if m.InvalidateError != nil {
		return m.InvalidateError
	}
	delete(m.roles, userID)
	return nil
}

// MockTokenBlacklist implements ports.TokenBlacklist in memory.
type MockTokenBlacklist struct {
	mu sync.RWMutex

	revoked map[string]bool

	RevokeCalls    []string
	IsRevokedCalls []string

	RevokeError    error
	IsRevokedError error

	LastTTL time.Duration
}

var _ ports.TokenBlacklist = (*MockTokenBlacklist)(nil)

func NewMockTokenBlacklist() *MockTokenBlacklist {
	return &MockTokenBlacklist{revoked: make(map[string]bool)}
}

func (m *MockTokenBlacklist) Revoke(ctx context.Context, tokenHash string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RevokeCalls = append(m.RevokeCalls, tokenHash)
	m.LastTTL = ttl

	if m.RevokeError != nil {
		return m.RevokeError
	}
	m.revoked[tokenHash] = true
	return nil
}

func (m *MockTokenBlacklist) IsRevoked(ctx context.Context, tokenHash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.IsRevokedCalls = append(m.IsRevokedCalls, tokenHash)

	if m.IsRevokedError != nil {
		return false, m.IsRevokedError
	}
	return m.revoked[tokenHash], nil
}
