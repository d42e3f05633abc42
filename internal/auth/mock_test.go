package auth

import (
	"context"
	"sync"
)

// MockStore is an in-package account store; the Func fields override the
// map behaviour when set.
type MockStore struct {
	mu       sync.Mutex
	accounts map[string]Account

	CreateFunc func(ctx context.Context, a Account) error
	ByIDFunc   func(ctx context.Context, id string) (Account, error)
}

func newMockStore() *MockStore {
	return &MockStore{accounts: map[string]Account{}}
}

func (m *MockStore) CreateAccount(ctx context.Context, a Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, a)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.accounts {
		if existing.Email == a.Email {
			return ErrEmailTaken
		}
	}
	m.accounts[a.ID] = a
	return nil
}

func (m *MockStore) AccountByEmail(_ context.Context, email string) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return Account{}, ErrAccountNotFound
}

func (m *MockStore) AccountByID(ctx context.Context, id string) (Account, error) {
	if m.ByIDFunc != nil {
		return m.ByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return a, nil
}

// plainHasher keeps tests fast.
type plainHasher struct{}

func (plainHasher) Hash(pw string) (string, error) { return "plain:" + pw, nil }
func (plainHasher) Verify(hash, pw string) bool    { return hash == "plain:"+pw }
