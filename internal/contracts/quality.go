package contracts

import "time"

// CoverageSnapshot summarizes completeness of the stored test events:
// how many events, athletes and teams, the covered date range, and the
// fraction of events with a usable value per metric.
type CoverageSnapshot struct {
	GeneratedAt time.Time `json:"generated_at"`

	TotalEvents int `json:"total_events"`
	Athletes    int `json:"athletes"`
	Teams       int `json:"teams"`

	FirstTestDate time.Time `json:"first_test_date"`
	LastTestDate  time.Time `json:"last_test_date"`

	// Coverage is the fraction of events carrying a positive value,
	// keyed by metric.
	Coverage map[Metric]float64 `json:"coverage"`

	// QualityScore is the mean metric coverage, 0.0 to 1.0.
	QualityScore float64 `json:"quality_score"`
}
