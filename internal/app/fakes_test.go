package app_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"hotel_weather/internal/domain"
)

// ---- fakes ----

var errBoom = errors.New("boom")

// fakeWeather serves a deterministic series per coordinate. Coordinates in
// block wait for cancellation; coordinates in fail error out immediately.
type fakeWeather struct {
	forecastDays int
	fail         map[domain.Coord]error
	failHistory  map[domain.Coord]error
	block        map[domain.Coord]bool

	mu          sync.Mutex
	calls       int
	cancelled   int
	inFlight    int
	maxInFlight int
	historyDays []time.Time
}

func (f *fakeWeather) enter() {
	f.mu.Lock()
	f.calls++
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	f.mu.Unlock()
}

func (f *fakeWeather) leave() {
	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()
}

func (f *fakeWeather) wait(ctx context.Context, c domain.Coord) error {
	if !f.block[c] {
		time.Sleep(5 * time.Millisecond)
		return nil
	}
	select {
	case <-ctx.Done():
		f.mu.Lock()
		f.cancelled++
		f.mu.Unlock()
		return ctx.Err()
	case <-time.After(5 * time.Second):
		return nil
	}
}

func (f *fakeWeather) Forecast(ctx context.Context, c domain.Coord, today time.Time) (domain.WeatherSeries, error) {
	f.enter()
	defer f.leave()
	if err := f.fail[c]; err != nil {
		return nil, err
	}
	if err := f.wait(ctx, c); err != nil {
		return nil, err
	}
	n := f.forecastDays
	if n == 0 {
		n = 8
	}
	s := make(domain.WeatherSeries, n)
	for i := range s {
		s[i] = domain.DayWeather{Date: today.AddDate(0, 0, i), Offset: i, MaxTemp: c.Lat + float64(i), MinTemp: c.Lat - 10}
	}
	return s, nil
}

func (f *fakeWeather) History(ctx context.Context, c domain.Coord, day, today time.Time) (domain.DayWeather, error) {
	f.enter()
	defer f.leave()
	f.mu.Lock()
	f.historyDays = append(f.historyDays, day)
	f.mu.Unlock()
	if err := f.failHistory[c]; err != nil {
		return domain.DayWeather{}, err
	}
	if err := f.wait(ctx, c); err != nil {
		return domain.DayWeather{}, err
	}
	off := domain.DayOffset(day, today)
	return domain.DayWeather{Date: domain.Day(day), Offset: off, MaxTemp: c.Lat + float64(off), MinTemp: c.Lat - 10}, nil
}

type fakeGeo struct {
	fail map[domain.Coord]error

	mu    sync.Mutex
	times []time.Time
}

func (g *fakeGeo) Reverse(ctx context.Context, c domain.Coord) (string, error) {
	g.mu.Lock()
	g.times = append(g.times, time.Now())
	g.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := g.fail[c]; err != nil {
		return "", err
	}
	return fmt.Sprintf("%.4f %.4f street", c.Lat, c.Lon), nil
}

type fakeSink struct {
	mu   sync.Mutex
	outs []domain.CityOutput
	err  error
}

func (s *fakeSink) WriteCity(ctx context.Context, out domain.CityOutput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.outs = append(s.outs, out)
	return nil
}
