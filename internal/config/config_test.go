package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CHATTR_MASTER_SECRET", "test-secret")
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_PATH", "")
	t.Setenv("UPLOAD_DIR", "")
	t.Setenv("DEBUG", "")
	t.Setenv("ALLOWED_ORIGIN", "")

	cfg, err := Load(Overrides{})
	require.NoError(t, err)
	require.Equal(t, ":5000", cfg.Addr)
	require.Equal(t, "./chattr.db", cfg.DatabasePath)
	require.Equal(t, "./uploads", cfg.UploadDir)
	require.False(t, cfg.Debug)
	require.Equal(t, []string{"*"}, cfg.AllowedOrigins)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CHATTR_MASTER_SECRET", "test-secret")
	t.Setenv("PORT", "8080")
	t.Setenv("DATABASE_PATH", "/tmp/other.db")
	t.Setenv("DEBUG", "true")
	t.Setenv("ALLOWED_ORIGIN", "https://chat.example.com")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "2525")

	cfg, err := Load(Overrides{})
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Addr)
	require.Equal(t, "/tmp/other.db", cfg.DatabasePath)
	require.True(t, cfg.Debug)
	require.Equal(t, []string{"https://chat.example.com"}, cfg.AllowedOrigins)
	require.Equal(t, "smtp.example.com", cfg.SMTP.Host)
	require.Equal(t, 2525, cfg.SMTP.Port)
}

func TestLoadOverridesBeatEnvironment(t *testing.T) {
	t.Setenv("CHATTR_MASTER_SECRET", "env-secret")
	t.Setenv("PORT", "8080")

	addr := ":9999"
	debug := true
	cfg, err := Load(Overrides{Addr: &addr, Debug: &debug})
	require.NoError(t, err)
	require.Equal(t, ":9999", cfg.Addr)
	require.True(t, cfg.Debug)
}

func TestLoadRequiresMasterSecret(t *testing.T) {
	t.Setenv("CHATTR_MASTER_SECRET", "")

	_, err := Load(Overrides{})
	require.Error(t, err)
}
