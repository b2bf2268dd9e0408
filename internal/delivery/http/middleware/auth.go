package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	h "guestcheckin/internal/delivery/http/helpers"
	"guestcheckin/internal/domain"
)

type contextKey string

const callerKey contextKey = "caller"

// WithCaller returns a context carrying the authenticated address.
func WithCaller(ctx context.Context, addr domain.Address) context.Context {
	return context.WithValue(ctx, callerKey, addr)
}

// CallerFromContext returns the authenticated address, if present.
func CallerFromContext(ctx context.Context) (domain.Address, bool) {
	addr, ok := ctx.Value(callerKey).(domain.Address)
	return addr, ok && !addr.IsZero()
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(header string) (string, string) {
	if header == "" {
		return "", "missing authorization header"
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", "invalid authorization format"
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", "missing token"
	}
	return token, ""
}

// RequireAuth returns a wrapper that validates the Bearer token and puts the
// caller address in the request context. On failure it responds 401 and
// does not call next.
func RequireAuth(verifier domain.TokenVerifier, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, problem := bearerToken(r.Header.Get("Authorization"))
			if problem != "" {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, problem)
				return
			}
			caller, err := verifier.Verify(token)
			if err != nil {
				logger.DebugContext(r.Context(), "token rejected", "path", r.URL.Path, "err", err)
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid or expired token")
				return
			}
			next(w, r.WithContext(WithCaller(r.Context(), caller)))
		}
	}
}
