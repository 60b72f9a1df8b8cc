// Package reqctx holds the context keys for per-request metadata so the
// root package and both backend clients stamp outgoing headers from the
// same values without importing each other.
package reqctx

import "context"

type localeKey struct{}
type requestIDKey struct{}

// WithLocale attaches the caller's UI locale to ctx.
func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, localeKey{}, locale)
}

// Locale returns the locale attached by [WithLocale], or "".
func Locale(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	locale, _ := ctx.Value(localeKey{}).(string)
	return locale
}

// WithRequestID attaches an externally assigned request identifier to ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request ID attached by [WithRequestID], or "".
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
