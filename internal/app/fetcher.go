package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"hotel_weather/internal/domain"
)

// BatchMode decides what one city's weather failure does to the batch.
type BatchMode string

const (
	// FailFast cancels every outstanding fetch on the first city failure.
	FailFast BatchMode = "fail-fast"
	// BestEffort records the failure for that city and keeps going.
	BestEffort BatchMode = "best-effort"
)

// FetcherConfig tunes the batch. Address pacing is not here: the
// AddressSource owns the shared limiter so that retries are paced too.
type FetcherConfig struct {
	HistoryDays int           // past days fetched per city
	ItemTimeout time.Duration // per lookup, retries included; 0 means none
	Mode        BatchMode
	MaxInFlight int // weather requests in flight; 0 means unlimited
}

// WeatherResult is one coordinate's weather, or the error that stopped it.
type WeatherResult struct {
	Coord  domain.Coord
	Series domain.WeatherSeries
	Err    error
}

// Fetcher runs the concurrent weather and address lookups for a batch.
type Fetcher struct {
	weather  domain.WeatherSource
	geo      domain.AddressSource
	cfg      FetcherConfig
	sem      *semaphore.Weighted
	progress *Progress
}

func NewFetcher(w domain.WeatherSource, g domain.AddressSource, cfg FetcherConfig, p *Progress) *Fetcher {
	if cfg.Mode == "" {
		cfg.Mode = FailFast
	}
	f := &Fetcher{weather: w, geo: g, cfg: cfg, progress: p}
	if cfg.MaxInFlight > 0 {
		f.sem = semaphore.NewWeighted(int64(cfg.MaxInFlight))
	}
	return f
}

// FetchWeatherBulk fetches forecast and history for every coordinate
// concurrently. Results are aligned with coords.
//
// Inside one city a failed request cancels its sibling requests and fails
// the city. In FailFast mode that failure also cancels the other cities and
// is returned; in BestEffort mode it is stored in the city's result.
func (f *Fetcher) FetchWeatherBulk(ctx context.Context, coords []domain.Coord, today time.Time) ([]WeatherResult, error) {
	results := make([]WeatherResult, len(coords))
	f.progress.weatherStart(len(coords))

	if f.cfg.Mode == BestEffort {
		var wg sync.WaitGroup
		for i, c := range coords {
			wg.Add(1)
			go func(i int, c domain.Coord) {
				defer wg.Done()
				s, err := f.fetchCity(ctx, c, today)
				f.progress.weatherFinished(err)
				if err != nil {
					log.Warn().Err(err).Float64("lat", c.Lat).Float64("lon", c.Lon).Msg("weather fetch failed")
				}
				results[i] = WeatherResult{Coord: c, Series: s, Err: err}
			}(i, c)
		}
		wg.Wait()
		return results, ctx.Err()
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range coords {
		i, c := i, c
		g.Go(func() error {
			s, err := f.fetchCity(gctx, c, today)
			f.progress.weatherFinished(err)
			if err != nil {
				return err
			}
			results[i] = WeatherResult{Coord: c, Series: s}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("weather batch: %w", err)
	}
	return results, nil
}

// fetchCity issues one forecast and HistoryDays history requests at once.
func (f *Fetcher) fetchCity(ctx context.Context, c domain.Coord, today time.Time) (domain.WeatherSeries, error) {
	g, gctx := errgroup.WithContext(ctx)

	var forecast domain.WeatherSeries
	history := make([]domain.DayWeather, f.cfg.HistoryDays)

	g.Go(func() error {
		return f.call(gctx, func(ctx context.Context) error {
			s, err := f.weather.Forecast(ctx, c, today)
			forecast = s
			return err
		})
	})
	for d := 1; d <= f.cfg.HistoryDays; d++ {
		d := d
		day := domain.Day(today).AddDate(0, 0, -d)
		g.Go(func() error {
			return f.call(gctx, func(ctx context.Context) error {
				w, err := f.weather.History(ctx, c, day, today)
				history[d-1] = w
				return err
			})
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	series := make(domain.WeatherSeries, 0, len(history)+len(forecast))
	series = append(series, history...)
	series = append(series, forecast...)
	return series.Sorted(), nil
}

func (f *Fetcher) call(ctx context.Context, fn func(context.Context) error) error {
	if f.sem != nil {
		if err := f.sem.Acquire(ctx, 1); err != nil {
			return err
		}
		defer f.sem.Release(1)
	}
	if f.cfg.ItemTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.cfg.ItemTimeout)
		defer cancel()
	}
	return fn(ctx)
}

// FetchAddresses reverse-geocodes every coordinate. All lookups start at
// once; the AddressSource paces them (see restclient.Options.Limiter).
// A failed lookup leaves nil at its index and nothing else.
func (f *Fetcher) FetchAddresses(ctx context.Context, coords []domain.Coord) []*string {
	out := make([]*string, len(coords))
	f.progress.addressStart(len(coords))

	var wg sync.WaitGroup
	for i, c := range coords {
		wg.Add(1)
		go func(i int, c domain.Coord) {
			defer wg.Done()
			addr, err := f.address(ctx, c)
			if err != nil {
				f.progress.addressFinished(true)
				if !errors.Is(err, domain.ErrNotFound) {
					log.Warn().Err(err).Float64("lat", c.Lat).Float64("lon", c.Lon).Msg("address lookup failed")
				}
				return
			}
			out[i] = &addr
			f.progress.addressFinished(false)
		}(i, c)
	}
	wg.Wait()
	return out
}

func (f *Fetcher) address(ctx context.Context, c domain.Coord) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.cfg.ItemTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.cfg.ItemTimeout)
		defer cancel()
	}
	return f.geo.Reverse(ctx, c)
}
