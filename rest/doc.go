// Package rest implements the sessiongate Backend interface over the Awqef
// REST API.
//
// # Wire contract
//
// Credential-minting endpoints (login, register, refresh-token) answer with
// {"access_token": ..., "refresh_token": ..., "user": {...}}; validate and
// profile endpoints answer with the bare user object. Failures carry
// {"error": "..."} with a conventional status code.
//
// # Architecture boundaries
//
// This package owns the HTTP shape of the auth boundary only: paths,
// request/response structs, and error mapping. It holds no session state
// and never touches the store; the Manager decides what to do with every
// response.
package rest
