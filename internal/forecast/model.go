package forecast

import (
	"math"
	"time"

	"github.com/scott-pak-loreal/automation-beta/internal/errors"
)

const (
	// yearlyOrder is the Fourier order of the yearly component.
	yearlyOrder = 3
	// yearPeriodDays is the yearly seasonality period in days.
	yearPeriodDays = 365.25
	// minYearlySpanDays is the minimum observed span before a yearly
	// component is fit; shorter histories cannot separate yearly
	// seasonality from trend.
	minYearlySpanDays = 730
	// ridgeLambda regularizes the Fourier fit so near-collinear
	// designs stay solvable and deterministic.
	ridgeLambda = 1e-3
)

// Observation is one point of a franchise's weekly series: the week
// value and the summed units for that week.
type Observation struct {
	Week  time.Time
	Units float64
}

// Components is a single decomposed prediction.
type Components struct {
	Trend  float64
	Weekly float64
	Yearly float64
}

// Value returns the additive point prediction.
func (c Components) Value() float64 {
	return c.Trend + c.Weekly + c.Yearly
}

// Model is a fitted additive decomposition for one franchise.
type Model struct {
	origin time.Time

	intercept float64
	slope     float64

	weekday    [7]float64
	hasWeekday [7]bool
	hasWeekly  bool

	yearly    []float64 // 2*yearlyOrder Fourier coefficients
	hasYearly bool
}

// Fit fits the decomposition to a franchise's observations, which must
// be sorted ascending by week with duplicate weeks pre-summed. Fewer
// than 2 distinct points is a forecast error: the franchise cannot
// support even a trend line.
func Fit(obs []Observation) (*Model, error) {
	if len(obs) < 2 {
		return nil, errors.NewForecastError("at least 2 distinct week points required to fit", nil).
			WithContext("points", len(obs))
	}

	m := &Model{origin: obs[0].Week}

	ts := make([]float64, len(obs))
	ys := make([]float64, len(obs))
	for i, o := range obs {
		ts[i] = m.days(o.Week)
		ys[i] = o.Units
	}

	m.fitTrend(ts, ys)

	residuals := make([]float64, len(obs))
	for i := range obs {
		residuals[i] = ys[i] - m.trendAt(ts[i])
	}

	m.fitWeekly(obs, residuals)
	for i, o := range obs {
		residuals[i] -= m.weeklyAt(o.Week)
	}

	span := ts[len(ts)-1] - ts[0]
	if span >= minYearlySpanDays && len(obs) > 2*yearlyOrder+1 {
		m.fitYearly(ts, residuals)
	}

	return m, nil
}

// Predict returns the decomposed prediction for a week, in or out of
// sample.
func (m *Model) Predict(week time.Time) Components {
	t := m.days(week)
	return Components{
		Trend:  m.trendAt(t),
		Weekly: m.weeklyAt(week),
		Yearly: m.yearlyAt(t),
	}
}

// days converts a week value to fractional days since the series
// origin, the model's time base.
func (m *Model) days(week time.Time) float64 {
	return week.Sub(m.origin).Hours() / 24
}

// fitTrend fits the ordinary least-squares line over days since origin.
func (m *Model) fitTrend(ts, ys []float64) {
	n := float64(len(ts))

	var sumT, sumY, sumTT, sumTY float64
	for i := range ts {
		sumT += ts[i]
		sumY += ys[i]
		sumTT += ts[i] * ts[i]
		sumTY += ts[i] * ys[i]
	}

	denom := n*sumTT - sumT*sumT
	if denom == 0 {
		// All observations on one day; flat trend at the mean.
		m.intercept = sumY / n
		m.slope = 0
		return
	}

	m.slope = (n*sumTY - sumT*sumY) / denom
	m.intercept = (sumY - m.slope*sumT) / n
}

func (m *Model) trendAt(t float64) float64 {
	return m.intercept + m.slope*t
}

// fitWeekly sets the weekly component to the mean detrended residual
// per weekday. Weekly snapshots usually observe a single weekday, in
// which case the component is identically zero and the signal stays in
// the trend and yearly terms.
func (m *Model) fitWeekly(obs []Observation, residuals []float64) {
	var sums [7]float64
	var counts [7]int
	distinct := 0

	for i, o := range obs {
		wd := int(o.Week.Weekday())
		if counts[wd] == 0 {
			distinct++
		}
		sums[wd] += residuals[i]
		counts[wd]++
	}

	if distinct < 2 {
		return
	}

	m.hasWeekly = true
	for wd := 0; wd < 7; wd++ {
		if counts[wd] > 0 {
			m.weekday[wd] = sums[wd] / float64(counts[wd])
			m.hasWeekday[wd] = true
		}
	}
}

func (m *Model) weeklyAt(week time.Time) float64 {
	if !m.hasWeekly {
		return 0
	}
	return m.weekday[int(week.Weekday())]
}

// fitYearly fits a Fourier series of order yearlyOrder over the yearly
// period to the remaining residuals, using ridge-regularized normal
// equations solved by Gaussian elimination.
func (m *Model) fitYearly(ts, residuals []float64) {
	p := 2 * yearlyOrder

	design := make([][]float64, len(ts))
	for i, t := range ts {
		design[i] = fourierRow(t)
	}

	// Normal equations: (X'X + lambda I) beta = X'r.
	ata := make([][]float64, p)
	atb := make([]float64, p)
	for j := 0; j < p; j++ {
		ata[j] = make([]float64, p)
		for k := 0; k < p; k++ {
			var s float64
			for i := range design {
				s += design[i][j] * design[i][k]
			}
			ata[j][k] = s
		}
		ata[j][j] += ridgeLambda
		var s float64
		for i := range design {
			s += design[i][j] * residuals[i]
		}
		atb[j] = s
	}

	beta, ok := solveLinear(ata, atb)
	if !ok {
		return
	}

	m.yearly = beta
	m.hasYearly = true
}

func (m *Model) yearlyAt(t float64) float64 {
	if !m.hasYearly {
		return 0
	}
	row := fourierRow(t)
	var s float64
	for j := range row {
		s += m.yearly[j] * row[j]
	}
	return s
}

// fourierRow builds the yearly-period Fourier features for one time
// point.
func fourierRow(t float64) []float64 {
	row := make([]float64, 2*yearlyOrder)
	for k := 1; k <= yearlyOrder; k++ {
		angle := 2 * math.Pi * float64(k) * t / yearPeriodDays
		row[2*(k-1)] = math.Sin(angle)
		row[2*(k-1)+1] = math.Cos(angle)
	}
	return row
}

// solveLinear solves a dense symmetric system by Gaussian elimination
// with partial pivoting. Returns false when the system is singular.
func solveLinear(a [][]float64, b []float64) ([]float64, bool) {
	n := len(b)

	// Work on copies; callers keep their matrices.
	m := make([][]float64, n)
	for i := range a {
		m[i] = append([]float64(nil), a[i]...)
	}
	x := append([]float64(nil), b...)

	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(m[row][col]) > math.Abs(m[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(m[pivot][col]) < 1e-12 {
			return nil, false
		}
		m[col], m[pivot] = m[pivot], m[col]
		x[col], x[pivot] = x[pivot], x[col]

		for row := col + 1; row < n; row++ {
			factor := m[row][col] / m[col][col]
			for k := col; k < n; k++ {
				m[row][k] -= factor * m[col][k]
			}
			x[row] -= factor * x[col]
		}
	}

	for col := n - 1; col >= 0; col-- {
		s := x[col]
		for k := col + 1; k < n; k++ {
			s -= m[col][k] * x[k]
		}
		x[col] = s / m[col][col]
	}

	return x, true
}
