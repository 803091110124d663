package credentials

import "sync"

// MockStore is an in-memory Store with error injection for tests
type MockStore struct {
	mu    sync.RWMutex
	creds map[string]Credential

	StoreError    error
	RetrieveError error
	DeleteError   error
}

func NewMockStore() *MockStore {
	return &MockStore{creds: make(map[string]Credential)}
}

func (m *MockStore) Store(cred *Credential) error {
	if m.StoreError != nil {
		return m.StoreError
	}
	if cred == nil || cred.Name == "" {
		return ErrInvalidCredentials
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds[cred.Name] = *cred
	return nil
}

func (m *MockStore) Retrieve(name string) (*Credential, error) {
	if m.RetrieveError != nil {
		return nil, m.RetrieveError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	cred, ok := m.creds[name]
	if !ok {
		return nil, ErrCredentialsNotFound
	}
	return &cred, nil
}

func (m *MockStore) Delete(name string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.creds[name]; !ok {
		return ErrCredentialsNotFound
	}
	delete(m.creds, name)
	return nil
}

func (m *MockStore) Exists(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.creds[name]
	return ok
}

// Count returns the number of stored credentials
func (m *MockStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.creds)
}

// NewMockManager creates a Manager backed by a single MockStore
func NewMockManager() (*Manager, *MockStore) {
	store := NewMockStore()
	return NewManagerWithStores(store), store
}
