package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type contextKey string

const (
	// LocaleKey is the context key for the locale.
	LocaleKey = contextKey("locale")

	// LocaleParam is the chi URL parameter holding the locale prefix.
	LocaleParam = "locale"

	// LocalePrefix is the route pattern of the locale segment. Only
	// two-letter segments match, so stray paths like /favicon.ico fall
	// through to the not-found handler.
	LocalePrefix = "/{" + LocaleParam + ":[a-z][a-z]}"
)

// LocaleResolver maps a requested locale onto a supported one.
type LocaleResolver interface {
	Resolve(locale string) string
	Match(acceptLanguage string) string
}

// Locale injects the locale from the {locale} path segment into the
// request context. Unsupported locales resolve to the default one.
func Locale(resolver LocaleResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := resolver.Resolve(chi.URLParam(r, LocaleParam))
			w.Header().Set("Content-Language", locale)
			next.ServeHTTP(w, r.WithContext(WithLocale(r.Context(), locale)))
		})
	}
}

// NegotiateLocale picks a locale from the Accept-Language header.
func NegotiateLocale(resolver LocaleResolver, r *http.Request) string {
	return resolver.Match(r.Header.Get("Accept-Language"))
}

// WithLocale returns a copy of ctx carrying locale.
func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, LocaleKey, locale)
}

// GetLocale extracts the locale from the context.
// Returns an empty string if no locale is found.
func GetLocale(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if locale, ok := ctx.Value(LocaleKey).(string); ok {
		return locale
	}
	return ""
}
