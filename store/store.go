package store

import (
	"context"
	"errors"
)

const (
	// KeyAccessToken is an exported constant or variable used by the session core.
	KeyAccessToken = "auth_token"
	// KeyRefreshToken is an exported constant or variable used by the session core.
	KeyRefreshToken = "auth_refresh_token"
	// KeyUser is an exported constant or variable used by the session core.
	KeyUser = "auth_user"
)

var (
	// ErrNotFound is an exported constant or variable used by the session core.
	ErrNotFound = errors.New("no stored session")
	// ErrStoreUnavailable is an exported constant or variable used by the session core.
	ErrStoreUnavailable = errors.New("session store unavailable")
)

// Credentials is the stored token pair. Either field may be empty, but the
// pair is always read and written as a unit.
type Credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Empty reports whether no token is stored at all.
func (c Credentials) Empty() bool {
	return c.AccessToken == "" && c.RefreshToken == ""
}

// Store is the durable session storage contract.
//
// SaveSession replaces the token pair and the user snapshot atomically.
// Clear removes all three keys as a unit; after Clear, Credentials and User
// both return [ErrNotFound]. Implementations must be safe for concurrent
// use.
type Store interface {
	SaveSession(ctx context.Context, creds Credentials, user []byte) error
	SaveUser(ctx context.Context, user []byte) error
	Credentials(ctx context.Context) (Credentials, error)
	User(ctx context.Context) ([]byte, error)
	Clear(ctx context.Context) error
}
