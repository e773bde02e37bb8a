package jwt

import (
	"context"
	"net/http"
	"strings"

	"wavechat/internal/pkg/logx"
)

// Context key for the parsed Payload, preventing collisions with other packages.
type contextKey string

const (
	// ContextAuthPayloadKey stores the parsed Payload (user identity) in the
	// request Context.
	ContextAuthPayloadKey contextKey = "auth_payload"
)

// IdentityExtractorMiddleware extracts and validates a JWT from the request.
// The token is read from the Authorization header ("Bearer <token>") or,
// for WebSocket handshakes where custom headers are awkward, from the
// "token" query parameter. On success the Payload is injected into the
// Context; on failure the request continues as anonymous, it is NOT
// interrupted here. Handlers that require an identity check the context.
func IdentityExtractorMiddleware(secretKey string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := TokenFromRequest(r)
			if tokenString == "" {
				next.ServeHTTP(w, r)
				return
			}

			payload, err := ParseToken(tokenString, secretKey)
			if err != nil {
				logx.Warn("Invalid or expired JWT provided, treating as anonymous", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ContextAuthPayloadKey, payload)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TokenFromRequest pulls the raw token string out of the Authorization
// header or the "token" query parameter. Empty means no token presented.
func TokenFromRequest(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}

	return r.URL.Query().Get("token")
}

// GetPayloadFromContext safely extracts the authenticated Payload from the
// request Context. A nil return means the request is anonymous.
func GetPayloadFromContext(r *http.Request) *Payload {
	payload, ok := r.Context().Value(ContextAuthPayloadKey).(*Payload)

	if !ok {
		return nil
	}

	return payload
}
