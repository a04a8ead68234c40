// Package requestctx carries per-request values through handler chains.
package requestctx

import "context"

type localeContextKey struct{}

// WithLocale stores the negotiated locale tag in context.
func WithLocale(ctx context.Context, locale string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, localeContextKey{}, locale)
}

// LocaleFromContext returns the locale stored in context, or fallback when
// none was negotiated.
func LocaleFromContext(ctx context.Context, fallback string) string {
	if ctx == nil {
		return fallback
	}
	value, _ := ctx.Value(localeContextKey{}).(string)
	if value == "" {
		return fallback
	}
	return value
}
