package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ADDR", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("ADMIN_USERS", "")

	cfg := Load()
	require.Equal(t, ":8080", cfg.Addr)
	require.Empty(t, cfg.DatabaseURL)
	require.Empty(t, cfg.AdminUsers)
}

func TestLoad_AdminList(t *testing.T) {
	t.Setenv("ADMIN_USERS", "op, second op ,,")

	cfg := Load()
	require.Equal(t, []string{"op", "second op"}, cfg.AdminUsers)
	require.Equal(t, map[string]bool{"op": true, "second op": true}, cfg.AdminSet())
}
