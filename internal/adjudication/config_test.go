package adjudication

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"negative waiting period", func(c *Config) { c.WaitingPeriods.GeneralDays = -1 }, "waiting periods"},
		{"zero per-claim limit", func(c *Config) { c.Limits.PerClaimLimit = 0 }, "per-claim limit"},
		{"discount above one", func(c *Config) { c.Rates.NetworkDiscount = 2 }, "network discount"},
		{"confidence weights off", func(c *Config) { c.Confidence.FraudWeight = 0.5 }, "sum to 1"},
		{"rule without conditions", func(c *Config) { c.NecessityRules[0].Conditions = nil }, "fever"},
		{"velocity window", func(c *Config) { c.Fraud.VelocityWindowDays = 0 }, "velocity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestEngineOwnsItsConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Exclusions = append(cfg.Exclusions, "Cosmetic", "COSMETIC")
	e, err := NewEngine(cfg)
	require.NoError(t, err)

	cfg.Fraud.Weights[IndicatorDuplicateClaim] = 0
	cfg.NecessityRules[0].Treatments[0] = "changed"

	got := e.Config()
	assert.Equal(t, 0.35, got.Fraud.Weights[IndicatorDuplicateClaim])
	assert.Equal(t, "paracetamol", got.NecessityRules[0].Treatments[0])
	assert.Equal(t, len(DefaultConfig().Exclusions), len(got.Exclusions))
}

func TestBenefits(t *testing.T) {
	b := DefaultConfig().Benefits()
	assert.Equal(t, 10.0, b.CopayPercent)
	assert.Equal(t, 20.0, b.NetworkDiscountPercent)
	assert.Equal(t, 5000.0, b.PerClaimLimit)
	assert.Equal(t, 180, b.ConditionWaitingDays)
}
