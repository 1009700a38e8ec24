// Package sarima fits seasonal ARIMA models with conditional
// sum-of-squares estimation and produces multi-step forecasts. The solver
// is an internal detail; callers train once and read forecasts and
// residuals from the returned model.
package sarima

import (
	"errors"
	"fmt"
	"math"

	"github.com/epicastproj/epicast/order"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrInsufficientTrainingData = errors.New("insufficient training data for order")
	ErrEmptyAfterDifferencing   = errors.New("differencing consumed the entire series")
	ErrNonPositiveHorizon       = errors.New("forecast horizon must be at least 1")
)

const (
	maxIterations    = 200
	convergenceTol   = 1e-8
	initialLearnRate = 0.005
	momentumFactor   = 0.9
	learnRateDecay   = 0.99
	// AR/MA coefficients are confined to the open unit interval to keep
	// the fit stationary and invertible.
	coefLimit = 0.99
)

// Model is a fitted seasonal ARIMA model.
type Model struct {
	order order.Order

	ar  []float64 // non-seasonal AR (phi)
	ma  []float64 // non-seasonal MA (theta)
	sar []float64 // seasonal AR
	sma []float64 // seasonal MA

	intercept float64
	variance  float64

	y         []float64 // original training series
	w         []float64 // differenced working series
	residuals []float64
}

// Train fits a model of the given order to y. The input slice is copied
// and never mutated. Fit failures are returned as errors for the caller
// to recover from; nothing panics on ordinary numerical trouble.
func Train(y []float64, o order.Order) (*Model, error) {
	if o.Period < 1 {
		o.Period = 1
	}
	minLen := o.P + o.D + o.Q + o.Period*(o.SP+o.SD+o.SQ) + 4
	if len(y) < minLen {
		return nil, fmt.Errorf("need at least %d points for %s, got %d, %w", minLen, o, len(y), ErrInsufficientTrainingData)
	}

	m := &Model{
		order: o,
		ar:    make([]float64, o.P),
		ma:    make([]float64, o.Q),
		sar:   make([]float64, o.SP),
		sma:   make([]float64, o.SQ),
		y:     append([]float64(nil), y...),
	}

	w := difference(m.y, o.D)
	for i := 0; i < o.SD; i++ {
		w = seasonalDifference(w, o.Period)
	}
	if len(w) < 2 {
		return nil, ErrEmptyAfterDifferencing
	}
	m.w = w

	m.initCoefficients()
	m.estimate()

	if !finite(m.ar) || !finite(m.ma) || !finite(m.sar) || !finite(m.sma) || math.IsNaN(m.intercept) {
		return nil, fmt.Errorf("estimation produced non-finite coefficients for %s", o)
	}
	return m, nil
}

// Order returns the order the model was fit with.
func (m *Model) Order() order.Order {
	return m.order
}

// String returns the compact order notation, used as a provenance tag.
func (m *Model) String() string {
	return m.order.String()
}

// Residuals returns a copy of the one-step training residuals on the
// differenced scale.
func (m *Model) Residuals() []float64 {
	res := make([]float64, len(m.residuals))
	copy(res, m.residuals)
	return res
}

// ResidualStdDev returns the pooled standard deviation of the training
// residuals, the basis of the forecast confidence band.
func (m *Model) ResidualStdDev() float64 {
	return math.Sqrt(m.variance)
}

// Forecast produces horizon point predictions on the original scale.
func (m *Model) Forecast(horizon int) ([]float64, error) {
	if horizon < 1 {
		return nil, ErrNonPositiveHorizon
	}

	n := len(m.w)
	extW := make([]float64, n+horizon)
	copy(extW, m.w)
	extRes := make([]float64, n+horizon)
	copy(extRes, m.residuals)

	for h := 0; h < horizon; h++ {
		t := n + h
		// Future shocks have zero expectation; residuals past the
		// training window stay 0.
		extW[t] = m.predictAt(t, extW, extRes, n)
		extRes[t] = 0
	}

	forecasts := make([]float64, horizon)
	copy(forecasts, extW[n:])
	return m.integrate(forecasts), nil
}

// predictAt evaluates the model equation at index t over the working
// series w and residual history res. Residual lags at or beyond resLimit
// are treated as zero, which callers use to mask future shocks.
func (m *Model) predictAt(t int, w, res []float64, resLimit int) float64 {
	pred := m.intercept
	for i := 0; i < len(m.ar); i++ {
		if lag := t - i - 1; lag >= 0 {
			pred += m.ar[i] * (w[lag] - m.intercept)
		}
	}
	for i := 0; i < len(m.sar); i++ {
		if lag := t - (i+1)*m.order.Period; lag >= 0 {
			pred += m.sar[i] * (w[lag] - m.intercept)
		}
	}
	for i := 0; i < len(m.ma); i++ {
		if lag := t - i - 1; lag >= 0 && lag < resLimit {
			pred += m.ma[i] * res[lag]
		}
	}
	for i := 0; i < len(m.sma); i++ {
		if lag := t - (i+1)*m.order.Period; lag >= 0 && lag < resLimit {
			pred += m.sma[i] * res[lag]
		}
	}
	return pred
}

// initCoefficients seeds AR terms from the autocorrelation function via
// Levinson-Durbin and MA terms with a small constant.
func (m *Model) initCoefficients() {
	m.intercept = stat.Mean(m.w, nil)

	if m.order.P > 0 {
		if acf := autocorrelations(m.w, m.order.P); acf != nil {
			copy(m.ar, levinsonDurbin(acf, m.order.P))
			for i := range m.ar {
				m.ar[i] = clamp(m.ar[i]*0.5, -coefLimit, coefLimit)
			}
		}
	}
	if m.order.SP > 0 {
		if acf := autocorrelations(m.w, m.order.SP*m.order.Period); acf != nil {
			for i := 0; i < m.order.SP; i++ {
				if idx := (i + 1) * m.order.Period; idx < len(acf) {
					m.sar[i] = clamp(acf[idx]*0.5, -coefLimit, coefLimit)
				}
			}
		}
	}
	for i := range m.ma {
		m.ma[i] = 0.1
	}
	for i := range m.sma {
		m.sma[i] = 0.1
	}
}

// estimate minimizes the conditional sum of squares with momentum
// gradient descent, keeping the best coefficients seen.
func (m *Model) estimate() {
	n := len(m.w)
	p, q, sp, sq := m.order.P, m.order.Q, m.order.SP, m.order.SQ

	start := p
	if q > start {
		start = q
	}
	if s := sp * m.order.Period; s > start {
		start = s
	}
	if s := sq * m.order.Period; s > start {
		start = s
	}
	if start >= n-4 {
		start = 0
	}

	arVel := make([]float64, p)
	maVel := make([]float64, q)
	sarVel := make([]float64, sp)
	smaVel := make([]float64, sq)

	bestSSE := math.Inf(1)
	bestAR := append([]float64(nil), m.ar...)
	bestMA := append([]float64(nil), m.ma...)
	bestSAR := append([]float64(nil), m.sar...)
	bestSMA := append([]float64(nil), m.sma...)
	stale := 0

	rate := initialLearnRate
	for iter := 0; iter < maxIterations; iter++ {
		residuals := make([]float64, n)
		sse := 0.0
		for t := start; t < n; t++ {
			residuals[t] = m.w[t] - m.predictAt(t, m.w, residuals, n)
			sse += residuals[t] * residuals[t]
		}

		if sse < bestSSE {
			if bestSSE-sse < convergenceTol && iter > 0 {
				bestSSE = sse
				copy(bestAR, m.ar)
				copy(bestMA, m.ma)
				copy(bestSAR, m.sar)
				copy(bestSMA, m.sma)
				break
			}
			bestSSE = sse
			copy(bestAR, m.ar)
			copy(bestMA, m.ma)
			copy(bestSAR, m.sar)
			copy(bestSMA, m.sma)
			stale = 0
		} else {
			stale++
			if stale > 20 {
				break
			}
		}

		arGrad := make([]float64, p)
		maGrad := make([]float64, q)
		sarGrad := make([]float64, sp)
		smaGrad := make([]float64, sq)
		for t := start; t < n; t++ {
			for i := 0; i < p; i++ {
				if lag := t - i - 1; lag >= 0 {
					arGrad[i] -= 2 * residuals[t] * (m.w[lag] - m.intercept)
				}
			}
			for i := 0; i < sp; i++ {
				if lag := t - (i+1)*m.order.Period; lag >= 0 {
					sarGrad[i] -= 2 * residuals[t] * (m.w[lag] - m.intercept)
				}
			}
			for i := 0; i < q; i++ {
				if lag := t - i - 1; lag >= 0 {
					maGrad[i] -= 2 * residuals[t] * residuals[lag]
				}
			}
			for i := 0; i < sq; i++ {
				if lag := t - (i+1)*m.order.Period; lag >= 0 {
					smaGrad[i] -= 2 * residuals[t] * residuals[lag]
				}
			}
		}

		step := func(coefs, vel, grad []float64) {
			for i := range coefs {
				vel[i] = momentumFactor*vel[i] + rate*grad[i]/float64(n)
				coefs[i] = clamp(coefs[i]-vel[i], -coefLimit, coefLimit)
			}
		}
		step(m.ar, arVel, arGrad)
		step(m.sar, sarVel, sarGrad)
		step(m.ma, maVel, maGrad)
		step(m.sma, smaVel, smaGrad)

		rate *= learnRateDecay
	}

	copy(m.ar, bestAR)
	copy(m.ma, bestMA)
	copy(m.sar, bestSAR)
	copy(m.sma, bestSMA)

	// Final residual pass over the full working series.
	m.residuals = make([]float64, n)
	for t := 0; t < n; t++ {
		m.residuals[t] = m.w[t] - m.predictAt(t, m.w, m.residuals, n)
	}

	sse := 0.0
	count := 0
	for t := start; t < n; t++ {
		sse += m.residuals[t] * m.residuals[t]
		count++
	}
	params := p + q + sp + sq + 1
	if count > params {
		m.variance = sse / float64(count-params)
	} else if count > 0 {
		m.variance = sse / float64(count)
	}
}

// integrate undoes the differencing applied during training, seasonal
// first, then non-seasonal cumulative sums anchored at the last observed
// values.
func (m *Model) integrate(forecasts []float64) []float64 {
	d, sd, period := m.order.D, m.order.SD, m.order.Period

	result := append([]float64(nil), forecasts...)

	base := difference(m.y, d)
	if sd > 0 && period > 0 {
		nb := len(base)
		for i := 0; i < sd; i++ {
			for j := range result {
				if j < period {
					if idx := nb - period + j; idx >= 0 && idx < nb {
						result[j] += base[idx]
					}
				} else {
					result[j] += result[j-period]
				}
			}
		}
	}

	// Each pass undoes one differencing level, anchored at the last value
	// of the series differenced to that level.
	for k := d - 1; k >= 0; k-- {
		anchor := difference(m.y, k)
		last := anchor[len(anchor)-1]
		for j := range result {
			if j == 0 {
				result[j] += last
			} else {
				result[j] += result[j-1]
			}
		}
	}
	return result
}

func difference(y []float64, d int) []float64 {
	out := append([]float64(nil), y...)
	for i := 0; i < d && len(out) > 1; i++ {
		next := make([]float64, len(out)-1)
		for j := 1; j < len(out); j++ {
			next[j-1] = out[j] - out[j-1]
		}
		out = next
	}
	return out
}

func seasonalDifference(y []float64, period int) []float64 {
	if period < 1 || len(y) <= period {
		return append([]float64(nil), y...)
	}
	out := make([]float64, len(y)-period)
	for i := range out {
		out[i] = y[i+period] - y[i]
	}
	return out
}

// autocorrelations returns the sample ACF of y at lags 0..maxLag.
func autocorrelations(y []float64, maxLag int) []float64 {
	n := len(y)
	if n < 2 || maxLag < 1 {
		return nil
	}
	if maxLag >= n {
		maxLag = n - 1
	}

	mean := stat.Mean(y, nil)
	denom := 0.0
	for _, v := range y {
		d := v - mean
		denom += d * d
	}
	if denom == 0 {
		return nil
	}

	acf := make([]float64, maxLag+1)
	acf[0] = 1
	for k := 1; k <= maxLag; k++ {
		num := 0.0
		for t := k; t < n; t++ {
			num += (y[t] - mean) * (y[t-k] - mean)
		}
		acf[k] = num / denom
	}
	return acf
}

// levinsonDurbin solves the Yule-Walker equations for AR coefficients.
func levinsonDurbin(acf []float64, p int) []float64 {
	if p <= 0 || len(acf) <= p {
		return nil
	}

	phi := make([]float64, p)
	phi[0] = acf[1]
	if p == 1 {
		return phi
	}

	v := 1 - phi[0]*phi[0]
	for k := 1; k < p; k++ {
		lambda := acf[k+1]
		for j := 0; j < k; j++ {
			lambda -= phi[j] * acf[k-j]
		}
		if v == 0 {
			break
		}
		lambda /= v

		next := make([]float64, k+1)
		for j := 0; j < k; j++ {
			next[j] = phi[j] - lambda*phi[k-1-j]
		}
		next[k] = lambda
		copy(phi, next)

		v *= 1 - lambda*lambda
		if v <= 0 {
			break
		}
	}
	return phi
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func finite(vals []float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
