package sessiongate

import (
	"context"

	"github.com/awqef/sessiongate/internal/reqctx"
)

// WithLocale attaches the caller's UI locale ("en" or "ar") to ctx. The rest
// backend and the request gateway forward it as Accept-Language so validation
// and error messages come back in the viewer's language.
func WithLocale(ctx context.Context, locale string) context.Context {
	return reqctx.WithLocale(ctx, locale)
}

// WithRequestID attaches an externally assigned request identifier to ctx.
// When absent, the gateway and rest backend mint their own.
func WithRequestID(ctx context.Context, id string) context.Context {
	return reqctx.WithRequestID(ctx, id)
}

// LocaleFromContext returns the locale attached by [WithLocale], or "".
func LocaleFromContext(ctx context.Context) string {
	return reqctx.Locale(ctx)
}

// RequestIDFromContext returns the request ID attached by [WithRequestID],
// or "".
func RequestIDFromContext(ctx context.Context) string {
	return reqctx.RequestID(ctx)
}
