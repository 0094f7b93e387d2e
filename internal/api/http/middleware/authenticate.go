package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ivolkov/secrethold/internal/logger"
	"github.com/ivolkov/secrethold/internal/model"
)

// SessionCookieName is the cookie the session token travels in.
const SessionCookieName = "secrethold_session"

// SessionResolver reconstructs a session identity from a raw token.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (model.SessionIdentity, error)
}

// Authenticate resolves the request's session token and injects the identity
// into the context. A missing or invalid token leaves the request anonymous;
// the access gate downstream decides what that means per operation.
type Authenticate struct {
	sessions       SessionResolver
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(sessions SessionResolver, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{sessions: sessions, contextManager: contextManager, logger: logger}
}

// Handle wraps next with session resolution.
func (m *Authenticate) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ReadSessionToken(r)

		identity, err := m.sessions.Resolve(r.Context(), token)
		switch {
		case err == nil:
			r = r.WithContext(m.contextManager.SetIdentity(r.Context(), identity))
		case errors.Is(err, model.ErrAnonymous), errors.Is(err, model.ErrInvalidToken):
			// Proceed anonymous.
		default:
			m.logger.Error("Authenticate middleware: session resolution failed",
				"error", err.Error())
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ReadSessionToken extracts the session token from the Authorization header
// or the session cookie, in that order.
func ReadSessionToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}
