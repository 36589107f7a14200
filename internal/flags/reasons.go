package flags

import (
	"fmt"
	"math"

	"github.com/athlab/vigil/internal/contracts"
	"github.com/athlab/vigil/internal/ruleconfig"
)

// Reasons builds the human-readable flag_reason strings for a rule set.
// With the default thresholds these render as:
//
//	mRSI drop >=10% vs baseline
//	mRSI >15% from team average
//	Jump Height(m) drop >=7% vs baseline
//	Propulsive Net Impulse(N.s) drop >=7% vs baseline
type Reasons struct {
	MRSIBaseline         string
	MRSITeam             string
	JumpHeight           string
	PropulsiveNetImpulse string
}

// NewReasons derives reason strings from the configured thresholds.
func NewReasons(rules *ruleconfig.Config) Reasons {
	return Reasons{
		MRSIBaseline:         baselineReason(contracts.MetricMRSI, rules.Rules.MRSIBaselineRatio),
		MRSITeam:             teamReason(rules.Rules.MRSITeamDeviation),
		JumpHeight:           baselineReason(contracts.MetricJumpHeight, rules.Rules.JumpHeightBaselineRatio),
		PropulsiveNetImpulse: baselineReason(contracts.MetricPropulsiveNetImpulse, rules.Rules.PropulsiveNetImpulseBaselineRatio),
	}
}

func baselineReason(m contracts.Metric, ratio float64) string {
	pct := int(math.Round((1 - ratio) * 100))
	return fmt.Sprintf("%s drop >=%d%% vs baseline", m.Label(), pct)
}

func teamReason(deviation float64) string {
	pct := int(math.Round(deviation * 100))
	return fmt.Sprintf("mRSI >%d%% from team average", pct)
}
