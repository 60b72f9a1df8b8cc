// Package gateway implements the resilient request path to the Awqef
// backend: bearer-credential injection, 401 detection, and transparent
// recovery through a single shared token refresh.
//
// # Recovery protocol
//
// Every 401 raises the unauthorized signal on the session source. The first
// request to observe a 401 while no refresh is in flight becomes the
// refresh leader; requests that observe a 401 while the leader's refresh is
// pending join an ordered queue instead of starting their own. When the
// refresh settles, queued requests are released in enqueue order — each
// replays independently with the new token on success, or fails uniformly
// with [ErrAuthExpired] on refresh failure. Regardless of how many requests
// observe a 401 concurrently, exactly one refresh call reaches the backend.
//
// # What this package must NOT do
//
//   - Retry anything other than the single refresh-then-replay-once path.
//     Transport failures and non-401 errors surface to the caller as-is.
//   - Perform the refresh itself. Token exchange belongs to the session
//     source; the gateway only coordinates who triggers it.
//   - Import sessiongate. The coupling runs one way, through the
//     [SessionSource] interface.
package gateway
