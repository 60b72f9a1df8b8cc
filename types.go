package sessiongate

import (
	"context"
	"time"
)

// Role identifies the authorization tier of an authenticated user.
//
// The set is closed: the backend only ever reports admin, moderator, or
// user. RoleGuest is the synthetic role of an absent session and is never
// stored in a [UserSnapshot] persisted by the backend.
type Role string

const (
	// RoleAdmin is an exported constant or variable used by the session core.
	RoleAdmin Role = "admin"
	// RoleModerator is an exported constant or variable used by the session core.
	RoleModerator Role = "moderator"
	// RoleUser is an exported constant or variable used by the session core.
	RoleUser Role = "user"
	// RoleGuest is an exported constant or variable used by the session core.
	RoleGuest Role = "guest"
)

// UserSnapshot mirrors the backend's user representation at last sync.
//
// The Manager owns the snapshot exclusively; callers read it but never
// mutate it in place. All mutations go through [Manager.UpdateProfile],
// which adopts the authoritative server response.
type UserSnapshot struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      Role   `json:"role"`
	Phone     string `json:"phone,omitempty"`
	Locale    string `json:"locale,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// CredentialPair is the (access token, refresh token) tuple treated as one
// unit for storage. It is stored and cleared atomically; the core never
// holds an access token without knowing whether a refresh token exists.
type CredentialPair struct {
	AccessToken  string
	RefreshToken string
}

// RefreshCredential returns the credential to present on a refresh call.
// When the refresh token is absent the access token is reused as a fallback
// refresh credential — a degraded but defined state.
func (c CredentialPair) RefreshCredential() string {
	if c.RefreshToken != "" {
		return c.RefreshToken
	}
	return c.AccessToken
}

// Empty reports whether the pair carries no credential at all.
func (c CredentialPair) Empty() bool {
	return c.AccessToken == "" && c.RefreshToken == ""
}

// AuthPayload is the wire shape of every credential-minting backend response
// (login, register, refresh).
type AuthPayload struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	User         UserSnapshot `json:"user"`
}

// Credentials returns the payload's tokens as a [CredentialPair].
func (p AuthPayload) Credentials() CredentialPair {
	return CredentialPair{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
	}
}

// ProfileUpdate carries the mutable profile fields for
// [Manager.UpdateProfile]. Nil fields are left unchanged on the server.
type ProfileUpdate struct {
	Name      *string `json:"name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Locale    *string `json:"locale,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// State is a point-in-time copy of the Manager's observable session state.
//
// State instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type State struct {
	User          *UserSnapshot
	Loading       bool
	Error         string
	Initialized   bool
	LastAuthCheck time.Time
}

// Authenticated reports whether the state carries a user.
func (s State) Authenticated() bool {
	return s.User != nil
}

// Backend is the RPC boundary to the Awqef auth service. Implementations
// must be safe for concurrent use; the [rest] package provides the HTTP one.
//
// Each credential-minting call returns the full [AuthPayload]; validation
// and profile calls return only the authoritative [UserSnapshot]. Every
// method reports failure through its error, never through a zero payload.
type Backend interface {
	Login(ctx context.Context, email, password string) (AuthPayload, error)
	Register(ctx context.Context, email, password, name string) (AuthPayload, error)
	RefreshToken(ctx context.Context, refreshToken string) (AuthPayload, error)
	ValidateToken(ctx context.Context, accessToken string) (UserSnapshot, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	UpdateProfile(ctx context.Context, accessToken string, update ProfileUpdate) (UserSnapshot, error)
}
