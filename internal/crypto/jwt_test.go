package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	mgr, err := NewJWTManager("test-secret")
	require.NoError(t, err)

	token, err := mgr.GenerateToken("user-123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := mgr.VerifyToken(token)
	require.NoError(t, err)
	require.Equal(t, "user-123", claims.Subject)
}

func TestJWTRejectsEmptySecret(t *testing.T) {
	_, err := NewJWTManager("")
	require.Error(t, err)
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	issuer, err := NewJWTManager("secret-a")
	require.NoError(t, err)
	token, err := issuer.GenerateToken("user-123")
	require.NoError(t, err)

	verifier, err := NewJWTManager("secret-b")
	require.NoError(t, err)
	_, err = verifier.VerifyToken(token)
	require.Error(t, err)
}

func TestJWTRejectsGarbage(t *testing.T) {
	mgr, err := NewJWTManager("test-secret")
	require.NoError(t, err)

	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		_, err := mgr.VerifyToken(tok)
		require.Error(t, err, "token %q", tok)
	}
}
