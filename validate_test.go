package epicast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateForecast(t *testing.T) {
	testData := map[string]struct {
		predictions []float64
		history     []float64
		err         error
	}{
		"clean forecast": {
			predictions: []float64{5, 5, 5},
			history:     []float64{4, 6, 5},
		},
		"nan": {
			predictions: []float64{5, math.NaN(), 5},
			history:     []float64{4, 6, 5},
			err:         ErrNonFiniteForecast,
		},
		"infinity": {
			predictions: []float64{math.Inf(1)},
			history:     []float64{4, 6, 5},
			err:         ErrNonFiniteForecast,
		},
		"exceeds explosion threshold": {
			predictions: []float64{101},
			history:     []float64{2, 10, 4},
			err:         ErrExplodingForecast,
		},
		"at the explosion threshold": {
			predictions: []float64{100},
			history:     []float64{2, 10, 4},
		},
		"runaway growth": {
			predictions: []float64{1, 2, 4, 8},
			history:     []float64{2, 10, 4},
			err:         ErrRunawayGrowth,
		},
		"decaying forecast": {
			predictions: []float64{8, 4, 2, 1},
			history:     []float64{2, 10, 4},
		},
		"zero steps skip the growth check": {
			predictions: []float64{0, 0, 9},
			history:     []float64{2, 10, 4},
		},
		"all-zero history skips the explosion check": {
			predictions: []float64{50},
			history:     []float64{0, 0, 0},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			err := validateForecast(td.predictions, td.history, 10.0, 1.5)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
