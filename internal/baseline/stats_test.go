package baseline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMedian(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single", []float64{0.5}, 0.5},
		{"odd count", []float64{0.3, 0.9, 0.5}, 0.5},
		{"even count", []float64{0.4, 0.6, 0.2, 0.8}, 0.5},
		{"duplicates", []float64{0.5, 0.5, 0.5}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Median(tt.values), 1e-9)
		})
	}
}

func TestMedianDoesNotMutateInput(t *testing.T) {
	values := []float64{0.9, 0.1, 0.5}
	Median(values)
	assert.Equal(t, []float64{0.9, 0.1, 0.5}, values)
}

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.InDelta(t, 0.4, Mean([]float64{0.3, 0.5}), 1e-9)
	assert.InDelta(t, 0.5, Mean([]float64{0.5}), 1e-9)
}
