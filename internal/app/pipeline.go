package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_weather/internal/adapters/observability"
	"hotel_weather/internal/domain"
)

var ErrNoValidRecords = errors.New("no valid hotel records in input")

type PipelineConfig struct {
	// WindowDays crops every weather series to |date - today| <= WindowDays.
	WindowDays int
}

// Pipeline turns raw hotel rows into per-city artifacts and weather statistics.
type Pipeline struct {
	fetcher  *Fetcher
	sink     domain.OutputSink
	report   io.Writer
	progress *Progress
	cfg      PipelineConfig
}

func NewPipeline(f *Fetcher, sink domain.OutputSink, report io.Writer, p *Progress, cfg PipelineConfig) *Pipeline {
	return &Pipeline{fetcher: f, sink: sink, report: report, progress: p, cfg: cfg}
}

// Result summarizes a finished run.
type Result struct {
	Refine       RefineStats
	Centers      []domain.CityCenter
	Stats        domain.Stats
	FailedCities []domain.CityKey
}

func (p *Pipeline) Run(ctx context.Context, raw []domain.RawRecord, today time.Time) (Result, error) {
	var res Result
	today = domain.Day(today)

	// 1) Clean
	p.progress.SetStage(StageRefine)
	hotels, rs := RefineWithStats(raw)
	res.Refine = rs
	observability.ObserveRefine(rs.Kept, rs.Dropped)
	log.Info().Int("read", len(raw)).Int("kept", rs.Kept).Interface("dropped", rs.Dropped).Msg("records refined")
	if len(hotels) == 0 {
		return res, ErrNoValidRecords
	}

	// 2) Most hoteled city per country, with bounding-box centers
	p.progress.SetStage(StageSelect)
	buckets := BucketCities(hotels, SelectMostHoteled(hotels))
	res.Centers = ComputeCityCenters(buckets)
	log.Info().Int("cities", len(buckets)).Msg("cities selected")

	// 3) Weather for every center
	p.progress.SetStage(StageWeather)
	coords := make([]domain.Coord, len(res.Centers))
	for i, c := range res.Centers {
		coords[i] = c.Center
	}
	results, err := p.fetcher.FetchWeatherBulk(ctx, coords, today)
	if err != nil {
		return res, err
	}

	corpus := make(domain.WeatherCorpus, len(results))
	weather := make([]domain.WeatherSeries, len(results))
	for i, r := range results {
		key := res.Centers[i].Key
		if r.Err != nil {
			res.FailedCities = append(res.FailedCities, key)
			log.Warn().Str("city", key.String()).Err(r.Err).Msg("city excluded from statistics")
			continue
		}
		weather[i] = r.Series.Window(today, p.cfg.WindowDays)
		corpus[key] = weather[i]
	}

	// 4) Statistics
	p.progress.SetStage(StageAnalytics)
	res.Stats = Summarize(corpus)
	if p.report != nil {
		if err := WriteReport(p.report, res.Stats); err != nil {
			return res, fmt.Errorf("write report: %w", err)
		}
	}

	// 5) Addresses of every hotel of interest
	p.progress.SetStage(StageAddresses)
	var hotelCoords []domain.Coord
	for _, b := range buckets {
		for _, h := range b.Hotels {
			hotelCoords = append(hotelCoords, h.Coord())
		}
	}
	addrs := p.fetcher.FetchAddresses(ctx, hotelCoords)
	if err := ctx.Err(); err != nil {
		return res, err
	}

	// 6) Artifacts
	p.progress.SetStage(StageOutput)
	n := 0
	for i, b := range buckets {
		rows := make([]domain.HotelRow, len(b.Hotels))
		for j, h := range b.Hotels {
			rows[j] = domain.HotelRow{Name: h.Name, Latitude: h.Latitude, Longitude: h.Longitude}
			if a := addrs[n]; a != nil {
				rows[j].Address = *a
			}
			n++
		}
		out := domain.CityOutput{
			Key:     b.Key,
			Center:  res.Centers[i].Center,
			Hotels:  rows,
			Weather: weather[i],
			Today:   today,
		}
		if err := p.sink.WriteCity(ctx, out); err != nil {
			return res, fmt.Errorf("write %s: %w", b.Key, err)
		}
	}

	p.progress.SetStage(StageDone)
	return res, nil
}
