package store

import (
	"context"
	"sync"
)

// Memory is an in-process [Store] for tests and short-lived CLI sessions.
//
// Memory instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Memory struct {
	mu    sync.Mutex
	creds Credentials
	user  []byte
	set   bool
}

// NewMemory describes the newmemory operation and its observable behavior.
func NewMemory() *Memory {
	return &Memory{}
}

// SaveSession describes the savesession operation and its observable behavior.
func (m *Memory) SaveSession(_ context.Context, creds Credentials, user []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.creds = creds
	m.user = cloneBytes(user)
	m.set = true
	return nil
}

// SaveUser describes the saveuser operation and its observable behavior.
func (m *Memory) SaveUser(_ context.Context, user []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.set {
		return ErrNotFound
	}
	m.user = cloneBytes(user)
	return nil
}

// Credentials describes the credentials operation and its observable behavior.
func (m *Memory) Credentials(_ context.Context) (Credentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.set {
		return Credentials{}, ErrNotFound
	}
	return m.creds, nil
}

// User describes the user operation and its observable behavior.
func (m *Memory) User(_ context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.set || m.user == nil {
		return nil, ErrNotFound
	}
	return cloneBytes(m.user), nil
}

// Clear describes the clear operation and its observable behavior.
func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.creds = Credentials{}
	m.user = nil
	m.set = false
	return nil
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
