package ruleconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `meta:
  ruleset_id: cmj_fatigue_v1
  version: "1.0"
baselines:
  min_history: 1
rules:
  mrsi_baseline_ratio: 0.90
  mrsi_team_deviation: 0.15
  jump_height_baseline_ratio: 0.93
  propulsive_net_impulse_baseline_ratio: 0.93
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flag_rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, raw, err := Load(writeTemp(t, validYAML))
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.NotEmpty(t, raw)

	assert.Equal(t, "cmj_fatigue_v1", cfg.Meta.RulesetID)
	assert.Equal(t, 0.90, cfg.Rules.MRSIBaselineRatio)
	assert.Equal(t, 0.15, cfg.Rules.MRSITeamDeviation)
	assert.Equal(t, 0.93, cfg.Rules.JumpHeightBaselineRatio)
	assert.Equal(t, 0.93, cfg.Rules.PropulsiveNetImpulseBaselineRatio)
	assert.Equal(t, 1, cfg.Baselines.MinHistory)
}

func TestLoadUnknownField(t *testing.T) {
	yaml := validYAML + "extras:\n  foo: 1\n"
	_, _, err := Load(writeTemp(t, yaml))
	assert.Error(t, err, "unknown fields must fail the strict decode")
}

func TestLoadMatchesDefault(t *testing.T) {
	cfg, _, err := Load(writeTemp(t, validYAML))
	require.NoError(t, err)
	assert.Equal(t, Default().Rules, cfg.Rules)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default is valid", func(c *Config) {}, false},
		{"missing ruleset id", func(c *Config) { c.Meta.RulesetID = "" }, true},
		{"missing version", func(c *Config) { c.Meta.Version = "" }, true},
		{"zero min history", func(c *Config) { c.Baselines.MinHistory = 0 }, true},
		{"ratio above one", func(c *Config) { c.Rules.MRSIBaselineRatio = 1.1 }, true},
		{"zero ratio", func(c *Config) { c.Rules.JumpHeightBaselineRatio = 0 }, true},
		{"deviation of one", func(c *Config) { c.Rules.MRSITeamDeviation = 1.0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHashDeterministic(t *testing.T) {
	h1, err := Hash(Default())
	require.NoError(t, err)
	h2, err := Hash(Default())
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	changed := Default()
	changed.Rules.MRSITeamDeviation = 0.20
	h3, err := Hash(changed)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestNewRunSnapshot(t *testing.T) {
	cfg := Default()
	snap, err := NewRunSnapshot(cfg, []byte(validYAML))
	require.NoError(t, err)

	assert.Equal(t, "cmj_fatigue_v1", snap.RulesetID)
	assert.NotEmpty(t, snap.ConfigHash)
	assert.Equal(t, validYAML, snap.ConfigYAML)
	assert.False(t, snap.CreatedAt.IsZero())
}
