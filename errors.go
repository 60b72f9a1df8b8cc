package sessiongate

import "errors"

var (
	// ErrManagerNotReady is an exported constant or variable used by the session core.
	ErrManagerNotReady = errors.New("session manager not ready")
	// ErrAlreadyBuilt is an exported constant or variable used by the session core.
	ErrAlreadyBuilt = errors.New("builder already consumed")
	// ErrBackendRequired is an exported constant or variable used by the session core.
	ErrBackendRequired = errors.New("backend implementation required")
	// ErrUnauthenticated is an exported constant or variable used by the session core.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalidCredentials is an exported constant or variable used by the session core.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNoCredentials is an exported constant or variable used by the session core.
	ErrNoCredentials = errors.New("no stored credentials")
	// ErrRefreshFailed is an exported constant or variable used by the session core.
	ErrRefreshFailed = errors.New("session refresh failed")
	// ErrSessionExpired is an exported constant or variable used by the session core.
	ErrSessionExpired = errors.New("session expired")
	// ErrManagerClosed is an exported constant or variable used by the session core.
	ErrManagerClosed = errors.New("session manager closed")
)
