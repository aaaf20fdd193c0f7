package crypto

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPasswordHashAndCheck(t *testing.T) {
	hash, err := HashPassword("s3cret!pass")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret!pass", hash)

	require.True(t, CheckPassword(hash, "s3cret!pass"))
	require.False(t, CheckPassword(hash, "wrong"))
	require.False(t, CheckPassword("not-a-hash", "s3cret!pass"))
}

func TestNewOTPCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		code, err := NewOTPCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, 100000)
		require.LessOrEqual(t, n, 999999)
		seen[code] = true
	}
	// 20 draws from 900k values should essentially never collide into one.
	require.Greater(t, len(seen), 1)
}
