package baseline

import (
	"time"

	"github.com/athlab/vigil/internal/contracts"
	"github.com/athlab/vigil/pkg/logger"
)

// Calculator derives per-athlete median baselines and team averages
// from test events. Callers pass the historical window; the calculator
// itself never looks at events dated on or after the as-of date, so a
// baseline can never include the event it is compared against.
type Calculator struct {
	logger *logger.Logger
}

// NewCalculator creates a new baseline calculator.
func NewCalculator(log *logger.Logger) *Calculator {
	return &Calculator{logger: log}
}

// ForAthlete computes median baselines for one athlete from events
// strictly before asOf. Events for other athletes are ignored; metric
// values <= 0 are treated as missing and excluded from that metric's
// median.
func (c *Calculator) ForAthlete(events []contracts.TestEvent, playerName string, asOf time.Time) *contracts.AthleteBaseline {
	b := &contracts.AthleteBaseline{
		PlayerName: playerName,
		AsOf:       asOf,
		Medians:    make(map[contracts.Metric]float64),
	}

	byMetric := make(map[contracts.Metric][]float64)
	for _, e := range events {
		if e.PlayerName != playerName || !e.TestDate.Before(asOf) {
			continue
		}
		b.History++
		for _, m := range contracts.Metrics {
			if v := e.MetricValue(m); v > 0 {
				byMetric[m] = append(byMetric[m], v)
			}
		}
	}

	for m, values := range byMetric {
		b.Medians[m] = Median(values)
	}

	c.logger.WithFields(map[string]interface{}{
		"player":  playerName,
		"as_of":   asOf.Format("2006-01-02"),
		"history": b.History,
	}).Debug("Computed athlete baseline")

	return b
}

// ForTeam computes the team average mRSI from events strictly before
// asOf. Values <= 0 are excluded.
func (c *Calculator) ForTeam(events []contracts.TestEvent, team string, asOf time.Time) *contracts.TeamBaseline {
	var values []float64
	for _, e := range events {
		if e.Team != team || !e.TestDate.Before(asOf) {
			continue
		}
		if e.MRSI > 0 {
			values = append(values, e.MRSI)
		}
	}

	return &contracts.TeamBaseline{
		Team:       team,
		AsOf:       asOf,
		AvgMRSI:    Mean(values),
		SampleSize: len(values),
	}
}
