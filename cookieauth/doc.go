// Package cookieauth exposes the cookie-mirroring endpoint used by
// server-side route gating: it copies the credential pair into httpOnly
// cookies that middleware can read where client storage is not reachable.
//
// # Endpoints
//
//	POST   /session — body {"accessToken": ..., "refreshToken": ...};
//	                  400 when accessToken is missing; sets both cookies
//	                  and answers {"success": true}.
//	DELETE /session — expires both cookies for logout parity.
//
// Cookies are httpOnly with SameSite=Strict: awqef_auth_token carries the
// access token for its one-hour lifetime, awqef_refresh_token carries the
// refresh token for seven days.
package cookieauth
