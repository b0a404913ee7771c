package config

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestRegisterFlags_defaultsLoadCorrectly(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	v := NewViper()
	require.NoError(t, RegisterFlags(cmd, v))

	cfg := Load(v)
	require.Equal(t, 16, cfg.BlockSize)
	require.Equal(t, "http://127.0.0.1:8000/validate", cfg.OracleEndpoint)
	require.False(t, cfg.Verbose)
}

func TestRegisterFlags_flagOverridesDefault(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	v := NewViper()
	require.NoError(t, RegisterFlags(cmd, v))
	require.NoError(t, cmd.PersistentFlags().Set("block-size", "8"))

	cfg := Load(v)
	require.Equal(t, 8, cfg.BlockSize)
}

func TestNewViper_readsEnvironmentOverride(t *testing.T) {
	t.Setenv("PADORACLE_BLOCK_SIZE", "32")

	cmd := &cobra.Command{Use: "test"}
	v := NewViper()
	require.NoError(t, RegisterFlags(cmd, v))

	cfg := Load(v)
	require.Equal(t, 32, cfg.BlockSize)
}
