package ruleconfig

import "time"

// Config is the full threshold rule set for a flag run.
type Config struct {
	Meta      Meta      `yaml:"meta" json:"meta"`
	Baselines Baselines `yaml:"baselines" json:"baselines"`
	Rules     Rules     `yaml:"rules" json:"rules"`
}

// Meta identifies the rule set.
type Meta struct {
	RulesetID string `yaml:"ruleset_id" json:"ruleset_id"`
	Version   string `yaml:"version" json:"version"`
}

// Baselines controls the historical window requirements.
type Baselines struct {
	// MinHistory is the minimum number of prior tests an athlete needs
	// before baseline rules apply.
	MinHistory int `yaml:"min_history" json:"min_history"`
}

// Rules holds the four threshold parameters.
//
// Ratio rules flag when current <= ratio * baseline median.
// The team rule flags when |current - team avg| / team avg >= deviation.
type Rules struct {
	MRSIBaselineRatio                 float64 `yaml:"mrsi_baseline_ratio" json:"mrsi_baseline_ratio"`
	MRSITeamDeviation                 float64 `yaml:"mrsi_team_deviation" json:"mrsi_team_deviation"`
	JumpHeightBaselineRatio           float64 `yaml:"jump_height_baseline_ratio" json:"jump_height_baseline_ratio"`
	PropulsiveNetImpulseBaselineRatio float64 `yaml:"propulsive_net_impulse_baseline_ratio" json:"propulsive_net_impulse_baseline_ratio"`
}

// Default returns the standard rule set: a 10% mRSI drop and 7%
// output-metric drops sit just above the reported typical error for
// RSImod (7.5%-9.3%), so anything beyond them is more likely a genuine
// physiological change than test-retest noise.
func Default() *Config {
	return &Config{
		Meta: Meta{
			RulesetID: "cmj_fatigue_v1",
			Version:   "1.0",
		},
		Baselines: Baselines{
			MinHistory: 1,
		},
		Rules: Rules{
			MRSIBaselineRatio:                 0.90,
			MRSITeamDeviation:                 0.15,
			JumpHeightBaselineRatio:           0.93,
			PropulsiveNetImpulseBaselineRatio: 0.93,
		},
	}
}

// RunSnapshot captures the exact configuration a flag run used.
type RunSnapshot struct {
	ConfigHash string    `json:"config_hash"`
	ConfigYAML string    `json:"config_yaml"`
	RulesetID  string    `json:"ruleset_id"`
	CreatedAt  time.Time `json:"created_at"`
}
