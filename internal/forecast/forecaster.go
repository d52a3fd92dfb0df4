package forecast

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/scott-pak-loreal/automation-beta/internal/config"
	"github.com/scott-pak-loreal/automation-beta/pkg/contracts/domain"
)

const weekStep = 7 * 24 * time.Hour

// Forecaster runs independent per-franchise fits over a bounded worker
// pool and merges the predictions back onto actuals deterministically.
type Forecaster struct {
	logger *slog.Logger
	cfg    config.ForecastConfig
}

// NewForecaster creates a forecaster with the given configuration.
func NewForecaster(logger *slog.Logger, cfg config.ForecastConfig) *Forecaster {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 4
	}
	if cfg.FitTimeout <= 0 {
		cfg.FitTimeout = 30 * time.Second
	}
	return &Forecaster{logger: logger, cfg: cfg}
}

// Run fits every franchise found among the included records and
// returns the forecast table: one row per distinct (franchise, week)
// key across observed weeks and the forward horizon, ordered by
// franchise then week ascending.
//
// Each fit consumes an immutable copy of its own series and writes to
// a franchise-scoped result slot, so the merge result is independent
// of worker completion order. A franchise that cannot be fit (fewer
// than 2 distinct weeks, or a fit timeout) contributes its observed
// rows with null predictions; the batch always proceeds.
func (f *Forecaster) Run(ctx context.Context, records []domain.SalesRecord) ([]domain.ForecastPoint, error) {
	start := time.Now()

	series := groupSeries(records)

	franchises := make([]string, 0, len(series))
	for franchise := range series {
		franchises = append(franchises, franchise)
	}
	sort.Strings(franchises)

	f.logger.InfoContext(ctx, "starting per-franchise forecasting",
		slog.Int("franchises", len(franchises)),
		slog.Int("horizon_days", f.cfg.HorizonDays),
		slog.Int("max_concurrency", f.cfg.MaxConcurrency))

	results := make([][]domain.ForecastPoint, len(franchises))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.cfg.MaxConcurrency)

	for i, franchise := range franchises {
		i, franchise := i, franchise
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			fitCtx, cancel := context.WithTimeout(gctx, f.cfg.FitTimeout)
			defer cancel()

			results[i] = f.forecastFranchise(fitCtx, franchise, series[franchise])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var points []domain.ForecastPoint
	for _, rows := range results {
		points = append(points, rows...)
	}

	f.logger.InfoContext(ctx, "forecasting completed",
		slog.Int("points", len(points)),
		slog.Duration("duration", time.Since(start)))

	return points, nil
}

// forecastFranchise fits one franchise and produces its merged rows.
// Fit failures are scoped to the franchise: its observed rows come
// back with null predictions.
func (f *Forecaster) forecastFranchise(ctx context.Context, franchise string, obs []Observation) []domain.ForecastPoint {
	model, err := Fit(obs)
	if err != nil || ctx.Err() != nil {
		if err == nil {
			err = ctx.Err()
		}
		f.logger.WarnContext(ctx, "skipping franchise forecast",
			slog.String("franchise", franchise),
			slog.Int("points", len(obs)),
			slog.String("error", err.Error()))
		return nullPoints(franchise, obs)
	}

	inSample := make([]domain.ForecastPoint, 0, len(obs))
	for _, o := range obs {
		inSample = append(inSample, point(franchise, o.Week, ptr(o.Units), model.Predict(o.Week)))
	}

	var outOfSample []domain.ForecastPoint
	last := obs[len(obs)-1].Week
	end := last.AddDate(0, 0, f.cfg.HorizonDays)
	for week := last.Add(weekStep); !week.After(end); week = week.Add(weekStep) {
		if ctx.Err() != nil {
			f.logger.WarnContext(ctx, "forecast horizon truncated by timeout",
				slog.String("franchise", franchise))
			break
		}
		outOfSample = append(outOfSample, point(franchise, week, nil, model.Predict(week)))
	}

	return mergePredictions(inSample, outOfSample)
}

// mergePredictions joins in-sample and out-of-sample predictions into
// exactly one row per (franchise, week) key. When the model surfaces
// both for the same key, the in-sample value wins. Output is ordered
// by week ascending.
func mergePredictions(inSample, outOfSample []domain.ForecastPoint) []domain.ForecastPoint {
	seen := make(map[int64]bool, len(inSample))
	merged := make([]domain.ForecastPoint, 0, len(inSample)+len(outOfSample))

	for _, p := range inSample {
		key := p.Week.Unix()
		if seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, p)
	}

	for _, p := range outOfSample {
		key := p.Week.Unix()
		if seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, p)
	}

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Week.Before(merged[j].Week)
	})

	return merged
}

// groupSeries builds each franchise's (week, summed units) series from
// the included records: duplicate weeks pre-aggregated by sum, null
// units contributing zero, sorted ascending by week. Records with a
// null week or empty franchise are not forecastable.
func groupSeries(records []domain.SalesRecord) map[string][]Observation {
	sums := make(map[string]map[time.Time]float64)

	for _, r := range records {
		if r.Franchise == "" || r.Week.IsZero() {
			continue
		}
		weeks, ok := sums[r.Franchise]
		if !ok {
			weeks = make(map[time.Time]float64)
			sums[r.Franchise] = weeks
		}
		weeks[r.Week] += r.UnitsOrZero()
	}

	series := make(map[string][]Observation, len(sums))
	for franchise, weeks := range sums {
		obs := make([]Observation, 0, len(weeks))
		for week, units := range weeks {
			obs = append(obs, Observation{Week: week, Units: units})
		}
		sort.Slice(obs, func(i, j int) bool {
			return obs[i].Week.Before(obs[j].Week)
		})
		series[franchise] = obs
	}

	return series
}

// nullPoints returns the observed rows for an unfit franchise with
// null model components.
func nullPoints(franchise string, obs []Observation) []domain.ForecastPoint {
	points := make([]domain.ForecastPoint, 0, len(obs))
	for _, o := range obs {
		points = append(points, domain.ForecastPoint{
			Franchise:   franchise,
			Week:        o.Week,
			ActualUnits: ptr(o.Units),
		})
	}
	return points
}

func point(franchise string, week time.Time, actual *float64, c Components) domain.ForecastPoint {
	return domain.ForecastPoint{
		Franchise:       franchise,
		Week:            week,
		ActualUnits:     actual,
		Trend:           ptr(c.Trend),
		WeeklyComponent: ptr(c.Weekly),
		YearlyComponent: ptr(c.Yearly),
		PredictedUnits:  ptr(c.Value()),
	}
}

func ptr(v float64) *float64 {
	return &v
}
