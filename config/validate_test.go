package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAll(t *testing.T) {
	assert.Error(t, ValidateAll(nil))
	assert.NoError(t, ValidateAll(NewConfig()))
}

// TestValidateAndFix 测试自动修正
func TestValidateAndFix(t *testing.T) {
	cfg := NewConfig()
	cfg.Walk.DefaultTTL = 12
	cfg.Walk.MaxTTL = 4
	cfg.Route.QueryTimeout = 0
	cfg.Lease.RequestedLease = Duration(time.Hour)
	cfg.Lease.RenewBefore = Duration(30 * time.Minute)

	fixed, err := ValidateAndFix(cfg)
	require.NoError(t, err)
	assert.Equal(t, uint32(12), fixed.Walk.MaxTTL)
	assert.Equal(t, DefaultRouteConfig().QueryTimeout, fixed.Route.QueryTimeout)
	assert.Equal(t, fixed.Lease.MaxLease, fixed.Lease.RequestedLease)
	assert.Equal(t, Duration(2*time.Minute), fixed.Lease.RenewBefore)

	fresh, err := ValidateAndFix(nil)
	require.NoError(t, err)
	assert.NoError(t, fresh.Validate())

	bad := NewConfig()
	bad.Route.MaxHops = 0
	_, err = ValidateAndFix(bad)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

// TestValidateCompatibility 测试跨子配置检查
func TestValidateCompatibility(t *testing.T) {
	assert.NoError(t, ValidateCompatibility(NewConfig()))
	assert.Error(t, ValidateCompatibility(nil))

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"timeout longer than lease", func(c *Config) { c.Lease.RequestTimeout = Duration(time.Hour) }},
		{"candidates exceed cache", func(c *Config) { c.Route.CacheSize = 2 }},
		{"rate limit without burst", func(c *Config) { c.Lease.Burst = 0 }},
		{"referral peers without referrals", func(c *Config) {
			c.Lease.ReferralPeers = []string{"R1"}
			c.Lease.MaxReferrals = 0
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			assert.Error(t, ValidateCompatibility(cfg))
		})
	}
}

// TestValidateForRole 测试角色检查
func TestValidateForRole(t *testing.T) {
	edge := NewConfig()
	require.NoError(t, ApplyPreset(edge, "edge"))
	assert.NoError(t, ValidateForRole(edge, "edge"))
	assert.Error(t, ValidateForRole(edge, "rendezvous"))

	rv := NewConfig()
	require.NoError(t, ApplyPreset(rv, "rendezvous"))
	assert.NoError(t, ValidateForRole(rv, "rendezvous"))
	assert.Error(t, ValidateForRole(rv, "edge"))

	assert.Error(t, ValidateForRole(NewConfig(), "satellite"))
}

func TestMustValidate(t *testing.T) {
	assert.NotPanics(t, func() { MustValidate(NewConfig()) })
	bad := NewConfig()
	bad.Walk.DefaultTTL = 0
	assert.Panics(t, func() { MustValidate(bad) })
}
