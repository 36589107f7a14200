package ruleconfig

import "fmt"

// ValidationError is a hard validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required constraints.
func Validate(cfg *Config) error {
	if cfg.Meta.RulesetID == "" {
		return ValidationError{"meta.ruleset_id", "required"}
	}
	if cfg.Meta.Version == "" {
		return ValidationError{"meta.version", "required"}
	}

	if cfg.Baselines.MinHistory < 1 {
		return ValidationError{"baselines.min_history", "must be at least 1"}
	}

	ratios := map[string]float64{
		"rules.mrsi_baseline_ratio":                   cfg.Rules.MRSIBaselineRatio,
		"rules.jump_height_baseline_ratio":            cfg.Rules.JumpHeightBaselineRatio,
		"rules.propulsive_net_impulse_baseline_ratio": cfg.Rules.PropulsiveNetImpulseBaselineRatio,
	}
	for field, ratio := range ratios {
		if ratio <= 0 || ratio > 1 {
			return ValidationError{field, "must be in (0, 1]"}
		}
	}

	if dev := cfg.Rules.MRSITeamDeviation; dev <= 0 || dev >= 1 {
		return ValidationError{"rules.mrsi_team_deviation", "must be in (0, 1)"}
	}

	return nil
}
