package jwt

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	payload := &Payload{UserID: "alice", UserType: "registered"}

	tokenString, err := GenerateToken(payload, "secret", time.Minute)
	require.NoError(t, err)

	parsed, err := ParseToken(tokenString, "secret")
	require.NoError(t, err)

	assert.Equal(t, "alice", parsed.UserID)
	assert.Equal(t, "registered", parsed.UserType)
	assert.Equal(t, TokenIssuer, parsed.Issuer)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	tokenString, err := GenerateToken(&Payload{UserID: "alice"}, "secret", time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(tokenString, "other-secret")
	assert.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	tokenString, err := GenerateToken(&Payload{UserID: "alice"}, "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(tokenString, "secret")
	assert.Error(t, err)
}

func TestTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/ws", nil)
	assert.Empty(t, TokenFromRequest(r))

	r = httptest.NewRequest("GET", "/ws?token=abc", nil)
	assert.Equal(t, "abc", TokenFromRequest(r))

	r = httptest.NewRequest("GET", "/ws", nil)
	r.Header.Set("Authorization", "Bearer xyz")
	assert.Equal(t, "xyz", TokenFromRequest(r))

	r = httptest.NewRequest("GET", "/ws", nil)
	r.Header.Set("Authorization", "Basic xyz")
	assert.Empty(t, TokenFromRequest(r))
}
