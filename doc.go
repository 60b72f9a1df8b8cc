// Package sessiongate implements the authenticated-session core of the Awqef
// client: credential-pair persistence, login/logout/registration flows,
// debounced auth checks, periodic silent refresh, and role-based
// authorization queries.
//
// The package is designed for concurrent clients: Manager methods are safe to
// call from multiple goroutines after initialization through [Builder.Build].
//
// # Architecture boundaries
//
// sessiongate is the public surface. It exposes [Manager], [Builder],
// [Config], the [Backend] RPC boundary, and value types (UserSnapshot,
// CredentialPair, State, AuthEvent). Credential storage lives in store,
// resilient HTTP dispatch with single-flight refresh lives in gateway, and
// the concrete REST backend lives in rest. None of those subpackages reach
// back into Manager internals.
//
// # What this package must NOT do
//
//   - Issue HTTP requests itself. All backend traffic goes through the
//     [Backend] interface; storage traffic goes through the store.Store
//     interface.
//   - Render, route, or translate. UI concerns observe Manager state and the
//     unauthorized signal; they are never driven from here.
//   - Start more than one concurrent refresh. Every refresh path — the
//     periodic timer, manual RefreshSession, and 401 recovery — funnels
//     through a single-flight group.
//
// # Refresh contract
//
// Refresh is the coordination hot path. For any number of concurrent callers
// that need a new credential pair, exactly one refresh call reaches the
// backend; all other callers share its outcome. A failed refresh is terminal
// for the session: credentials are cleared and the unauthorized signal fires.
package sessiongate
