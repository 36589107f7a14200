package contracts

import "time"

// Metric identifies one of the three jump-test metrics tracked per event.
type Metric string

const (
	MetricMRSI                 Metric = "mrsi"
	MetricJumpHeight           Metric = "jump_height_m"
	MetricPropulsiveNetImpulse Metric = "propulsive_net_impulse_ns"
)

// Metrics lists all tracked metrics in canonical order.
var Metrics = []Metric{MetricMRSI, MetricJumpHeight, MetricPropulsiveNetImpulse}

// Label returns the human-readable metric name used in reports and
// flag reasons. These match the labels used by the upstream export.
func (m Metric) Label() string {
	switch m {
	case MetricMRSI:
		return "mRSI"
	case MetricJumpHeight:
		return "Jump Height(m)"
	case MetricPropulsiveNetImpulse:
		return "Propulsive Net Impulse(N.s)"
	default:
		return string(m)
	}
}

// TestEvent is one countermovement jump test session for one athlete.
// Events are immutable inputs; all derived state is recomputed per run.
type TestEvent struct {
	PlayerName string    `json:"playername"`
	Team       string    `json:"team"`
	TestDate   time.Time `json:"test_date"`

	MRSI                   float64 `json:"mrsi"`
	JumpHeightM            float64 `json:"jump_height_m"`
	PropulsiveNetImpulseNs float64 `json:"propulsive_net_impulse_ns"`
}

// MetricValue returns the value for a given metric.
func (e *TestEvent) MetricValue(m Metric) float64 {
	switch m {
	case MetricMRSI:
		return e.MRSI
	case MetricJumpHeight:
		return e.JumpHeightM
	case MetricPropulsiveNetImpulse:
		return e.PropulsiveNetImpulseNs
	default:
		return 0
	}
}

// Complete reports whether the event carries the identity fields and
// positive values for all three metrics.
func (e *TestEvent) Complete() bool {
	if e.PlayerName == "" || e.Team == "" || e.TestDate.IsZero() {
		return false
	}
	for _, m := range Metrics {
		if e.MetricValue(m) <= 0 {
			return false
		}
	}
	return true
}

// AthleteBaseline holds per-athlete median baselines computed from a
// strict historical window (tests dated before the evaluated event).
type AthleteBaseline struct {
	PlayerName string             `json:"playername"`
	AsOf       time.Time          `json:"as_of"`
	Medians    map[Metric]float64 `json:"medians"`
	History    int                `json:"history"` // prior tests in window
}

// Median returns the baseline median for a metric, false when the
// window was empty.
func (b *AthleteBaseline) Median(m Metric) (float64, bool) {
	v, ok := b.Medians[m]
	return v, ok
}

// TeamBaseline holds the team average mRSI over the same strict window.
type TeamBaseline struct {
	Team       string    `json:"team"`
	AsOf       time.Time `json:"as_of"`
	AvgMRSI    float64   `json:"avg_mrsi"`
	SampleSize int       `json:"sample_size"`
}
