package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the JWT claims issued by the Wave Chat auth collaborator.
// The relay core never inspects tokens itself: it receives the extracted
// UserID from the transport layer and trusts it.
type Payload struct {
	// StandardClaims embeds the JWT standard fields (Exp, Iat, Iss) used for
	// token validity checks.
	jwt.StandardClaims `json:"standard_claims"`

	// UserID is the opaque identity string the relay keys all session and
	// relationship state on.
	UserID string `json:"user_id"`

	// UserType distinguishes generated guest identities from ids supplied by
	// the caller (e.g. "guest", "registered").
	UserType string `json:"user_type"`
}
