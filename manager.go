package sessiongate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/awqef/sessiongate/store"
)

// Manager is the single source of truth for "who is logged in": credential
// persistence, login/logout/registration flows, debounced auth checks,
// silent refresh, and role queries.
//
// Manager instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Manager struct {
	config  Config
	backend Backend
	store   store.Store
	logger  *slog.Logger
	events  *eventDispatcher
	metrics *Metrics

	// refreshGroup serializes every refresh path: the periodic timer,
	// manual RefreshSession, and 401 recovery from the gateway.
	refreshGroup singleflight.Group

	mu            sync.Mutex
	user          *UserSnapshot
	loading       bool
	lastError     string
	initialized   bool
	lastAuthCheck time.Time

	cbMu         sync.Mutex
	unauthorized map[int]func(reason string)
	cbSeq        int

	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) Close() {
	if m == nil {
		return
	}
	m.closeOnce.Do(func() {
		close(m.done)
		m.wg.Wait()
		if m.events != nil {
			m.events.Close()
		}
	})
}

// EventsDropped describes the eventsdropped operation and its observable behavior.
//
// EventsDropped may return an error when input validation, dependency calls, or security checks fail.
// EventsDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) EventsDropped() uint64 {
	if m == nil || m.events == nil {
		return 0
	}
	return m.events.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) MetricsSnapshot() MetricsSnapshot {
	if m == nil || m.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return m.metrics.Snapshot()
}

func (m *Manager) metricInc(id MetricID) {
	if m == nil || m.metrics == nil {
		return
	}
	m.metrics.Inc(id)
}

func (m *Manager) emit(ctx context.Context, event AuthEvent) {
	if m == nil || m.events == nil {
		return
	}
	event.Timestamp = time.Now()
	m.events.Emit(ctx, event)
}

func (m *Manager) beginOp() {
	m.mu.Lock()
	m.loading = true
	m.lastError = ""
	m.mu.Unlock()
}

func (m *Manager) endOp(err error) {
	m.mu.Lock()
	m.loading = false
	if err != nil {
		m.lastError = err.Error()
	}
	m.mu.Unlock()
}

// Login authenticates against the backend and, on success, persists the
// credential pair and user snapshot as one unit and adopts the snapshot.
//
// A failed login leaves any existing session untouched: the error is
// recorded and returned, but the current user (if any) is not cleared.
func (m *Manager) Login(ctx context.Context, email, password string) (AuthPayload, error) {
	if m == nil {
		return AuthPayload{}, ErrManagerNotReady
	}

	m.beginOp()

	payload, err := m.backend.Login(ctx, email, password)
	if err != nil {
		m.endOp(err)
		m.metricInc(MetricLoginFailure)
		m.emit(ctx, AuthEvent{Type: EventLoginFailure, Email: email, Error: err.Error()})
		return AuthPayload{}, err
	}

	if err := m.persistSession(ctx, payload); err != nil {
		m.endOp(err)
		m.metricInc(MetricLoginFailure)
		m.emit(ctx, AuthEvent{Type: EventLoginFailure, Email: email, Error: err.Error()})
		return AuthPayload{}, err
	}

	m.adoptUser(payload.User, true)
	m.endOp(nil)
	m.metricInc(MetricLoginSuccess)
	m.emit(ctx, AuthEvent{Type: EventLoginSuccess, UserID: payload.User.ID, Email: email, Success: true})
	m.logger.Info("login", slog.String("user_id", payload.User.ID), slog.String("role", string(payload.User.Role)))
	return payload, nil
}

// Register creates an account and establishes a session with the same
// persistence contract as [Manager.Login].
func (m *Manager) Register(ctx context.Context, email, password, name string) (AuthPayload, error) {
	if m == nil {
		return AuthPayload{}, ErrManagerNotReady
	}

	m.beginOp()

	payload, err := m.backend.Register(ctx, email, password, name)
	if err != nil {
		m.endOp(err)
		m.metricInc(MetricRegisterFailure)
		m.emit(ctx, AuthEvent{Type: EventRegisterFailure, Email: email, Error: err.Error()})
		return AuthPayload{}, err
	}

	if err := m.persistSession(ctx, payload); err != nil {
		m.endOp(err)
		m.metricInc(MetricRegisterFailure)
		m.emit(ctx, AuthEvent{Type: EventRegisterFailure, Email: email, Error: err.Error()})
		return AuthPayload{}, err
	}

	m.adoptUser(payload.User, true)
	m.endOp(nil)
	m.metricInc(MetricRegisterSuccess)
	m.emit(ctx, AuthEvent{Type: EventRegisterSuccess, UserID: payload.User.ID, Email: email, Success: true})
	return payload, nil
}

// Logout clears stored credentials and the in-memory user. Storage clearing
// is best-effort: when it fails the error is recorded and returned, but the
// in-memory user is cleared regardless so the process never keeps acting
// authenticated on credentials it tried to destroy.
func (m *Manager) Logout(ctx context.Context) error {
	if m == nil {
		return ErrManagerNotReady
	}

	m.beginOp()

	err := m.store.Clear(ctx)

	m.mu.Lock()
	userID := ""
	if m.user != nil {
		userID = m.user.ID
	}
	m.user = nil
	m.mu.Unlock()

	m.endOp(err)
	m.metricInc(MetricLogout)
	m.emit(ctx, AuthEvent{Type: EventLogout, UserID: userID, Success: err == nil})
	m.logger.Info("logout", slog.String("user_id", userID))
	return err
}

// ForgotPassword requests a password-reset challenge for email. It never
// touches the current session.
func (m *Manager) ForgotPassword(ctx context.Context, email string) error {
	if m == nil {
		return ErrManagerNotReady
	}

	m.beginOp()
	err := m.backend.ForgotPassword(ctx, email)
	m.endOp(err)

	m.metricInc(MetricPasswordResetRequested)
	m.emit(ctx, AuthEvent{Type: EventPasswordResetRequested, Email: email, Success: err == nil, Error: errString(err)})
	return err
}

// ResetPassword redeems a reset token for a new password. It never touches
// the current session.
func (m *Manager) ResetPassword(ctx context.Context, token, newPassword string) error {
	if m == nil {
		return ErrManagerNotReady
	}

	m.beginOp()
	err := m.backend.ResetPassword(ctx, token, newPassword)
	m.endOp(err)

	if err == nil {
		m.metricInc(MetricPasswordResetConfirmed)
	}
	m.emit(ctx, AuthEvent{Type: EventPasswordResetConfirmed, Success: err == nil, Error: errString(err)})
	return err
}

// UpdateProfile sends the partial update to the backend and adopts the
// authoritative returned snapshot, never the locally merged one.
func (m *Manager) UpdateProfile(ctx context.Context, update ProfileUpdate) (UserSnapshot, error) {
	if m == nil {
		return UserSnapshot{}, ErrManagerNotReady
	}
	if m.CurrentUser() == nil {
		return UserSnapshot{}, ErrUnauthenticated
	}

	m.beginOp()

	creds, err := m.store.Credentials(ctx)
	if err != nil || creds.AccessToken == "" {
		if err == nil || errors.Is(err, store.ErrNotFound) {
			err = ErrNoCredentials
		}
		m.endOp(err)
		return UserSnapshot{}, err
	}

	snap, err := m.backend.UpdateProfile(ctx, creds.AccessToken, update)
	if err != nil {
		m.endOp(err)
		return UserSnapshot{}, err
	}

	if data, merr := json.Marshal(snap); merr == nil {
		if serr := m.store.SaveUser(ctx, data); serr != nil {
			m.logger.Warn("profile_store_sync_failed", slog.String("err", serr.Error()))
		}
	}

	m.adoptUser(snap, false)
	m.endOp(nil)
	m.metricInc(MetricProfileUpdated)
	m.emit(ctx, AuthEvent{Type: EventProfileUpdated, UserID: snap.ID, Success: true})
	return snap, nil
}

// CheckAuth validates the stored access token against the backend and
// reports whether a session is established.
//
// Calls arriving within the configured MinAuthCheckInterval of the previous
// check short-circuit to the cached state with no backend round trip.
// Whatever the outcome, the first completed check marks the Manager
// initialized.
func (m *Manager) CheckAuth(ctx context.Context) (bool, error) {
	if m == nil {
		return false, ErrManagerNotReady
	}

	m.mu.Lock()
	if !m.lastAuthCheck.IsZero() && time.Since(m.lastAuthCheck) < m.config.Session.MinAuthCheckInterval {
		authenticated := m.user != nil
		m.mu.Unlock()
		m.metricInc(MetricAuthCheckDebounced)
		return authenticated, nil
	}
	m.mu.Unlock()

	m.metricInc(MetricAuthCheck)

	creds, err := m.store.Credentials(ctx)
	if err != nil {
		m.settleAuthCheck(nil)
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	snap, err := m.backend.ValidateToken(ctx, creds.AccessToken)
	if err != nil {
		m.settleAuthCheck(nil)
		m.emit(ctx, AuthEvent{Type: EventAuthCheck, Error: err.Error()})
		return false, nil
	}

	if data, merr := json.Marshal(snap); merr == nil {
		if serr := m.store.SaveUser(ctx, data); serr != nil {
			m.logger.Warn("auth_check_store_sync_failed", slog.String("err", serr.Error()))
		}
	}
	m.settleAuthCheck(&snap)
	m.emit(ctx, AuthEvent{Type: EventAuthCheck, UserID: snap.ID, Success: true})
	return true, nil
}

// RefreshSession exchanges the stored refresh credential for a fresh pair.
// It is a no-op returning false when no session was ever established.
func (m *Manager) RefreshSession(ctx context.Context) (bool, error) {
	if m == nil {
		return false, ErrManagerNotReady
	}
	if m.CurrentUser() == nil {
		return false, nil
	}

	if _, err := m.refreshTokens(ctx); err != nil {
		return false, err
	}

	m.mu.Lock()
	m.lastAuthCheck = time.Now()
	m.mu.Unlock()
	return true, nil
}

// refreshTokens is the single-flight refresh primitive. Concurrent callers
// share one backend call and its outcome.
func (m *Manager) refreshTokens(ctx context.Context) (AuthPayload, error) {
	v, err, _ := m.refreshGroup.Do("refresh", func() (any, error) {
		start := time.Now()

		creds, err := m.store.Credentials(ctx)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, ErrNoCredentials
			}
			return nil, err
		}

		pair := CredentialPair{AccessToken: creds.AccessToken, RefreshToken: creds.RefreshToken}
		refreshCred := pair.RefreshCredential()
		if refreshCred == "" {
			return nil, ErrNoCredentials
		}

		payload, err := m.backend.RefreshToken(ctx, refreshCred)
		if m.metrics.LatencyEnabled() {
			m.metrics.Observe(MetricRefreshLatency, time.Since(start))
		}
		if err != nil {
			m.metricInc(MetricRefreshFailure)
			m.emit(ctx, AuthEvent{Type: EventRefreshFailure, Error: err.Error()})
			return nil, fmt.Errorf("%w: %v", ErrRefreshFailed, err)
		}

		if err := m.persistSession(ctx, payload); err != nil {
			m.metricInc(MetricRefreshFailure)
			return nil, err
		}

		m.adoptUser(payload.User, false)
		m.metricInc(MetricRefreshSuccess)
		m.emit(ctx, AuthEvent{Type: EventRefreshSuccess, UserID: payload.User.ID, Success: true})
		return payload, nil
	})
	if err != nil {
		return AuthPayload{}, err
	}
	return v.(AuthPayload), nil
}

// HasRole reports whether the current user's role is any of roles. It is
// false whenever no user is authenticated, regardless of the argument.
func (m *Manager) HasRole(roles ...Role) bool {
	if m == nil {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.user == nil {
		return false
	}
	for _, role := range roles {
		if m.user.Role == role {
			return true
		}
	}
	return false
}

// CurrentUser returns a copy of the authenticated user, or nil.
func (m *Manager) CurrentUser() *UserSnapshot {
	if m == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// State returns a point-in-time copy of the observable session state.
func (m *Manager) State() State {
	if m == nil {
		return State{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s := State{
		Loading:       m.loading,
		Error:         m.lastError,
		Initialized:   m.initialized,
		LastAuthCheck: m.lastAuthCheck,
	}
	if m.user != nil {
		u := *m.user
		s.User = &u
	}
	return s
}

// Initialized reports whether the first auth check has completed. The flag
// is monotonic: once true it never reverts for the life of the Manager.
func (m *Manager) Initialized() bool {
	if m == nil {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initialized
}

// OnUnauthorized registers fn to run whenever the session is terminally
// expired (failed refresh, forced logout). The returned cancel function
// removes the registration.
func (m *Manager) OnUnauthorized(fn func(reason string)) (cancel func()) {
	if m == nil || fn == nil {
		return func() {}
	}

	m.cbMu.Lock()
	m.cbSeq++
	id := m.cbSeq
	m.unauthorized[id] = fn
	m.cbMu.Unlock()

	return func() {
		m.cbMu.Lock()
		delete(m.unauthorized, id)
		m.cbMu.Unlock()
	}
}

// AccessToken returns the stored access token, or "" when none is stored.
// It satisfies the gateway's session source contract.
func (m *Manager) AccessToken(ctx context.Context) (string, error) {
	if m == nil {
		return "", ErrManagerNotReady
	}

	creds, err := m.store.Credentials(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return creds.AccessToken, nil
}

// Refresh runs the single-flight refresh and returns the new access token.
// It satisfies the gateway's session source contract.
func (m *Manager) Refresh(ctx context.Context) (string, error) {
	if m == nil {
		return "", ErrManagerNotReady
	}

	payload, err := m.refreshTokens(ctx)
	if err != nil {
		return "", err
	}
	return payload.AccessToken, nil
}

// SignalUnauthorized records an observed authorization failure without
// destroying the session. The gateway calls it on every 401, including ones
// that a refresh subsequently recovers.
func (m *Manager) SignalUnauthorized(reason string) {
	if m == nil {
		return
	}
	m.metricInc(MetricUnauthorizedSignal)
	m.emit(context.Background(), AuthEvent{Type: EventUnauthorized, Error: reason})
}

// Expire terminally destroys the session: credentials are cleared
// best-effort, the in-memory user is dropped, and every registered
// unauthorized callback runs.
func (m *Manager) Expire(ctx context.Context, reason string) {
	if m == nil {
		return
	}

	if err := m.store.Clear(ctx); err != nil {
		m.logger.Warn("expire_clear_failed", slog.String("err", err.Error()))
	}

	m.mu.Lock()
	userID := ""
	if m.user != nil {
		userID = m.user.ID
	}
	m.user = nil
	m.mu.Unlock()

	m.metricInc(MetricSessionExpired)
	m.emit(ctx, AuthEvent{
		Type:     EventUnauthorized,
		UserID:   userID,
		Error:    reason,
		Metadata: map[string]string{"terminal": "true"},
	})
	m.logger.Info("session_expired", slog.String("user_id", userID), slog.String("reason", reason))

	m.cbMu.Lock()
	callbacks := make([]func(string), 0, len(m.unauthorized))
	for _, fn := range m.unauthorized {
		callbacks = append(callbacks, fn)
	}
	m.cbMu.Unlock()

	for _, fn := range callbacks {
		fn(reason)
	}
}

func (m *Manager) persistSession(ctx context.Context, payload AuthPayload) error {
	data, err := json.Marshal(payload.User)
	if err != nil {
		return fmt.Errorf("encode user snapshot: %w", err)
	}
	creds := store.Credentials{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
	}
	return m.store.SaveSession(ctx, creds, data)
}

func (m *Manager) adoptUser(snap UserSnapshot, touchCheck bool) {
	m.mu.Lock()
	u := snap
	m.user = &u
	m.initialized = true
	if touchCheck {
		m.lastAuthCheck = time.Now()
	}
	m.mu.Unlock()
}

// settleAuthCheck records the auth-check outcome: user (possibly nil),
// initialized flag, and the debounce timestamp in both branches.
func (m *Manager) settleAuthCheck(snap *UserSnapshot) {
	m.mu.Lock()
	if snap == nil {
		m.user = nil
	} else {
		u := *snap
		m.user = &u
	}
	m.initialized = true
	m.lastAuthCheck = time.Now()
	m.mu.Unlock()
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
