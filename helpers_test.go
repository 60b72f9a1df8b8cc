package sessiongate

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/awqef/sessiongate/store"
)

type fakeBackend struct {
	mu sync.Mutex

	loginFn    func(email, password string) (AuthPayload, error)
	registerFn func(email, password, name string) (AuthPayload, error)
	refreshFn  func(refreshToken string) (AuthPayload, error)
	validateFn func(accessToken string) (UserSnapshot, error)
	forgotFn   func(email string) error
	resetFn    func(token, newPassword string) error
	profileFn  func(accessToken string, update ProfileUpdate) (UserSnapshot, error)

	loginCalls    int
	refreshCalls  int
	validateCalls int
}

func (b *fakeBackend) Login(_ context.Context, email, password string) (AuthPayload, error) {
	b.mu.Lock()
	b.loginCalls++
	fn := b.loginFn
	b.mu.Unlock()

	if fn == nil {
		return AuthPayload{}, ErrInvalidCredentials
	}
	return fn(email, password)
}

func (b *fakeBackend) Register(_ context.Context, email, password, name string) (AuthPayload, error) {
	b.mu.Lock()
	fn := b.registerFn
	b.mu.Unlock()

	if fn == nil {
		return AuthPayload{}, ErrInvalidCredentials
	}
	return fn(email, password, name)
}

func (b *fakeBackend) RefreshToken(_ context.Context, refreshToken string) (AuthPayload, error) {
	b.mu.Lock()
	b.refreshCalls++
	fn := b.refreshFn
	b.mu.Unlock()

	if fn == nil {
		return AuthPayload{}, ErrRefreshFailed
	}
	return fn(refreshToken)
}

func (b *fakeBackend) ValidateToken(_ context.Context, accessToken string) (UserSnapshot, error) {
	b.mu.Lock()
	b.validateCalls++
	fn := b.validateFn
	b.mu.Unlock()

	if fn == nil {
		return UserSnapshot{}, ErrUnauthenticated
	}
	return fn(accessToken)
}

func (b *fakeBackend) ForgotPassword(_ context.Context, email string) error {
	b.mu.Lock()
	fn := b.forgotFn
	b.mu.Unlock()

	if fn == nil {
		return nil
	}
	return fn(email)
}

func (b *fakeBackend) ResetPassword(_ context.Context, token, newPassword string) error {
	b.mu.Lock()
	fn := b.resetFn
	b.mu.Unlock()

	if fn == nil {
		return nil
	}
	return fn(token, newPassword)
}

func (b *fakeBackend) UpdateProfile(_ context.Context, accessToken string, update ProfileUpdate) (UserSnapshot, error) {
	b.mu.Lock()
	fn := b.profileFn
	b.mu.Unlock()

	if fn == nil {
		return UserSnapshot{}, ErrUnauthenticated
	}
	return fn(accessToken, update)
}

func (b *fakeBackend) calls() (login, refresh, validate int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loginCalls, b.refreshCalls, b.validateCalls
}

func testUser() UserSnapshot {
	return UserSnapshot{
		ID:    "u-100",
		Email: "amal@awqef.example",
		Name:  "Amal",
		Role:  RoleAdmin,
	}
}

func testPayload() AuthPayload {
	return AuthPayload{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		User:         testUser(),
	}
}

func testConfig() Config {
	cfg := defaultConfig()
	cfg.Session.MinAuthCheckInterval = 50 * time.Millisecond
	cfg.Session.RefreshInterval = time.Hour
	cfg.Metrics.Enabled = true
	return cfg
}

func newTestManager(t *testing.T, backend *fakeBackend) (*Manager, *store.Memory) {
	t.Helper()

	st := store.NewMemory()
	m, err := New().
		WithConfig(testConfig()).
		WithBackend(backend).
		WithStore(st).
		Build()
	if err != nil {
		t.Fatalf("build manager: %v", err)
	}
	t.Cleanup(m.Close)
	return m, st
}

func loginTestManager(t *testing.T, backend *fakeBackend) (*Manager, *store.Memory) {
	t.Helper()

	backend.mu.Lock()
	if backend.loginFn == nil {
		backend.loginFn = func(string, string) (AuthPayload, error) {
			return testPayload(), nil
		}
	}
	backend.mu.Unlock()

	m, st := newTestManager(t, backend)
	if _, err := m.Login(context.Background(), "amal@awqef.example", "correct-password"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	return m, st
}
