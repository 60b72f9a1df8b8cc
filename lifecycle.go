package sessiongate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/awqef/sessiongate/internal/tokens"
	"github.com/awqef/sessiongate/store"
)

// expiryLeeway biases the local expiry peek toward refresh so a token about
// to expire is not presented for validation it will fail.
const expiryLeeway = 30 * time.Second

// Start runs the startup protocol and reports whether a session was
// restored:
//
//  1. With no stored credentials, the Manager is marked initialized and
//     Start returns false.
//  2. With credentials whose access token still looks live, the stored
//     token is validated via [Manager.CheckAuth].
//  3. When the peek says expired, or validation fails, exactly one refresh
//     is attempted; on success the check is re-run, on failure the session
//     is terminally expired.
//
// Whatever the outcome, initialized becomes true exactly once. Start also
// launches the background refresh loop, which runs until [Manager.Close]
// and silently renews the session every RefreshInterval while a user is
// authenticated. A failed background refresh terminally expires the
// session.
func (m *Manager) Start(ctx context.Context) (bool, error) {
	if m == nil {
		return false, ErrManagerNotReady
	}

	authenticated, err := m.restore(ctx)

	m.mu.Lock()
	m.initialized = true
	m.mu.Unlock()

	m.wg.Add(1)
	go m.refreshLoop()

	return authenticated, err
}

func (m *Manager) restore(ctx context.Context) (bool, error) {
	creds, err := m.store.Credentials(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	if !tokens.Expired(creds.AccessToken, expiryLeeway) {
		m.hydrateUser(ctx)
		if ok, err := m.CheckAuth(ctx); err != nil {
			return false, err
		} else if ok {
			m.logger.Info("session_restored", slog.String("path", "validate"))
			return true, nil
		}
	}

	// Validation failed or the token was already expired locally: one
	// refresh attempt decides the session.
	if _, err := m.refreshTokens(ctx); err != nil {
		m.Expire(ctx, "startup refresh failed")
		return false, nil
	}

	m.mu.Lock()
	m.lastAuthCheck = time.Time{} // force the post-refresh check through
	m.mu.Unlock()

	ok, err := m.CheckAuth(ctx)
	if err != nil {
		return false, err
	}
	if ok {
		m.logger.Info("session_restored", slog.String("path", "refresh"))
	}
	return ok, nil
}

// hydrateUser adopts the stored user snapshot so the UI has a subject to
// render while the authoritative check is in flight. CheckAuth replaces it
// with the server's answer.
func (m *Manager) hydrateUser(ctx context.Context) {
	data, err := m.store.User(ctx)
	if err != nil {
		return
	}

	var snap UserSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return
	}

	m.mu.Lock()
	if m.user == nil {
		u := snap
		m.user = &u
	}
	m.mu.Unlock()
}

func (m *Manager) refreshLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.config.Session.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if m.CurrentUser() == nil {
				continue
			}

			timeout := m.config.Backend.Timeout
			if timeout <= 0 {
				timeout = 15 * time.Second
			}
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			_, err := m.RefreshSession(ctx)
			cancel()

			if err != nil {
				m.logger.Warn("silent_refresh_failed", slog.String("err", err.Error()))
				m.Expire(context.Background(), "silent refresh failed")
			}
		case <-m.done:
			return
		}
	}
}
