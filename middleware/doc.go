// Package middleware exposes HTTP middleware for gating server-rendered
// routes on the platform's session cookies or a bearer token.
//
// # Guards
//
//   - [RequireSession] — validates the access token against the backend and
//     injects the user snapshot into the request context.
//   - [RequireRole] — [RequireSession] plus a role check.
//   - [RequireToken] — presence and local-expiry check only, no backend
//     round trip.
//
// Each guard looks for the token in the Authorization header first, then in
// the awqef_auth_token cookie set by the cookie-mirroring endpoint.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into validation calls. It does NOT
// implement authentication logic itself; all decisions are delegated to the
// configured [Validator].
//
// # What this package must NOT do
//
//   - Verify JWT signatures (the backend holds the keys).
//   - Refresh tokens or mutate session state.
//   - Make authorization decisions beyond pass/reject and the role check.
package middleware
