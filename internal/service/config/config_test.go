package config

import (
	"scoremint/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		t.Setenv("CLAIM_CHECK_POLICY", "")
		t.Setenv("SESSION_TTL", "")
		t.Setenv("PRIVATE_KEY", "0xabc123")

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, domain.AvailabilityBiasedCheck, cfg.ClaimCheckPolicy)
		assert.Equal(t, 7*24*time.Hour, cfg.SessionTTL)
		assert.Equal(t, "abc123", cfg.PrivateKey)
		assert.Equal(t, defaultIDRegistryAddress, cfg.IDRegistryAddress)
	})

	t.Run("Strict Policy", func(t *testing.T) {
		t.Setenv("CLAIM_CHECK_POLICY", "strict")
		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, domain.StrictCheck, cfg.ClaimCheckPolicy)
	})

	t.Run("Bad Values", func(t *testing.T) {
		t.Setenv("CLAIM_CHECK_POLICY", "optimistic")
		t.Setenv("NONCE_TTL", "ten minutes")
		t.Setenv("REDIS_DB", "zero")

		_, err := FromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "CLAIM_CHECK_POLICY")
		assert.Contains(t, err.Error(), "NONCE_TTL")
		assert.Contains(t, err.Error(), "REDIS_DB")
	})
}

func TestRequireServer(t *testing.T) {
	cfg := Config{JWTSecret: "s", ChainRPCURL: "http://rpc", ContractAddress: "0x1"}
	err := cfg.RequireServer()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PRIVATE_KEY")
	assert.Contains(t, err.Error(), "AUTH_DOMAIN")
	assert.NotContains(t, err.Error(), "JWT_SECRET")
}
