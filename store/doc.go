// Package store provides durable credential and user-snapshot storage for
// the session core.
//
// # Key layout
//
// Every implementation persists exactly three keys: "auth_token" (access
// token), "auth_refresh_token" (refresh token), and "auth_user"
// (JSON-serialized user snapshot). The token pair and the snapshot are
// written and cleared as one unit; a reader never observes an access token
// without the matching refresh/user state.
//
// # Architecture boundaries
//
// This package owns persistence only. It treats the user snapshot as an
// opaque byte slice and never decodes it.
//
// # What this package must NOT do
//
//   - Import sessiongate, gateway, or rest.
//   - Call the auth backend or inspect token contents.
//   - Decide session policy (TTLs are supplied by the caller).
package store
