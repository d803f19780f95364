package client

import "sync"

// MockCredentialStore is an in-memory CredentialStore for tests.
type MockCredentialStore struct {
	mu      sync.Mutex
	apiID   string
	apiHash string
	set     bool

	// Call counters for verification
	SetCalls   int
	ClearCalls int
}

func NewMockCredentialStore() *MockCredentialStore {
	return &MockCredentialStore{}
}

func (m *MockCredentialStore) Credential() (string, string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return "", "", false
	}
	return m.apiID, m.apiHash, true
}

func (m *MockCredentialStore) SetCredential(apiID, apiHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apiID = apiID
	m.apiHash = apiHash
	m.set = true
	m.SetCalls++
	return nil
}

func (m *MockCredentialStore) ClearCredential() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apiID = ""
	m.apiHash = ""
	m.set = false
	m.ClearCalls++
	return nil
}
