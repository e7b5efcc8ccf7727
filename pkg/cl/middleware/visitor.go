package middleware

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

const (
	// VisitorCookieName is the name of the visitor cookie.
	VisitorCookieName = "srd_visitor"

	// VisitorIDKey is the context key for the visitor ID.
	VisitorIDKey = contextKey("visitor_id")

	visitorMaxAge = 30 * 24 * 60 * 60
)

// VisitorSigner signs visitor IDs so clients cannot pick someone else's.
type VisitorSigner struct {
	key [32]byte
}

// NewVisitorSigner derives a MAC key from secret. An empty secret yields a
// random key, which invalidates every cookie when the process restarts.
func NewVisitorSigner(secret string) (*VisitorSigner, error) {
	if secret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("cannot generate visitor secret: %w", err)
		}
		secret = string(buf)
	}
	return &VisitorSigner{key: blake2b.Sum256([]byte(secret))}, nil
}

// Sign returns the cookie value for id.
func (s *VisitorSigner) Sign(id uuid.UUID) string {
	return id.String() + "." + hex.EncodeToString(s.mac(id))
}

// Verify parses a cookie value and checks its MAC.
func (s *VisitorSigner) Verify(value string) (uuid.UUID, bool) {
	idStr, macHex, ok := strings.Cut(value, ".")
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, false
	}
	got, err := hex.DecodeString(macHex)
	if err != nil {
		return uuid.Nil, false
	}
	if subtle.ConstantTimeCompare(got, s.mac(id)) != 1 {
		return uuid.Nil, false
	}
	return id, true
}

func (s *VisitorSigner) mac(id uuid.UUID) []byte {
	h, _ := blake2b.New256(s.key[:]) // error only for keys over 64 bytes
	h.Write([]byte(id.String()))
	return h.Sum(nil)
}

// Visitor identifies the browser through a signed cookie, issuing a new
// identity when the cookie is missing or does not verify.
func Visitor(signer *VisitorSigner, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id uuid.UUID
			if cookie, err := r.Cookie(VisitorCookieName); err == nil {
				if parsed, ok := signer.Verify(cookie.Value); ok {
					id = parsed
				}
			}

			if id == uuid.Nil {
				id = uuid.New()
				http.SetCookie(w, &http.Cookie{
					Name:     VisitorCookieName,
					Value:    signer.Sign(id),
					Path:     "/",
					MaxAge:   visitorMaxAge,
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			next.ServeHTTP(w, r.WithContext(WithVisitorID(r.Context(), id.String())))
		})
	}
}

// WithVisitorID returns a copy of ctx carrying the visitor ID.
func WithVisitorID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, VisitorIDKey, id)
}

// GetVisitorID extracts the visitor ID from the context.
// Returns an empty string if no visitor ID is found.
func GetVisitorID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(VisitorIDKey).(string); ok {
		return id
	}
	return ""
}

// SecurityHeaders sets conservative response headers for public pages.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// DefaultStack applies the default middleware stack to a router.
// Timeouts are left to route groups so websocket streams are not cut.
// X-Forwarded-For and X-Real-IP replace RemoteAddr only when trustProxy is set.
func DefaultStack(r chi.Router, trustProxy bool) {
	r.Use(chimw.RequestID)
	if trustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.Recoverer)
	r.Use(SecurityHeaders)
}
