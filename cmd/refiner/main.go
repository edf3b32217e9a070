package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"hotel_weather/internal/adapters/here"
	server "hotel_weather/internal/adapters/http_server"
	"hotel_weather/internal/adapters/observability"
	"hotel_weather/internal/adapters/openweather"
	"hotel_weather/internal/adapters/restclient"
	"hotel_weather/internal/app"
	"hotel_weather/internal/domain"
	"hotel_weather/internal/shared"
	"hotel_weather/internal/storage/archive"
	"hotel_weather/internal/storage/output"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: %s <input_path> <output_path> [requests_per_second] [flags]\n", filepath.Base(os.Args[0]))
	fmt.Fprintln(flag.CommandLine.Output(), "flags may appear before, between or after the positional arguments")
	flag.PrintDefaults()
}

func main() {
	mode := flag.String("mode", "", "weather batch mode: fail-fast or best-effort (overrides WEATHER_MODE)")
	keepTemp := flag.Bool("keep-temp", false, "keep the extracted CSVs under <output_path>/temp")
	flag.Usage = usage
	// flag.CommandLine exits on a bad flag
	args, _ := parseArgs(flag.CommandLine, os.Args[1:])

	cfg := shared.Load()
	if *mode != "" {
		cfg.WeatherMode = *mode
	}
	cfg.KeepTemp = cfg.KeepTemp || *keepTemp

	if len(args) < 2 || len(args) > 3 {
		usage()
		os.Exit(2)
	}
	input, outDir := args[0], args[1]
	if len(args) == 3 {
		rps, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "requests_per_second must be a number: %v\n", err)
			os.Exit(2)
		}
		cfg.RequestsPerSecond = rps
	}

	// 1) initialize global logger (console in dev, JSON otherwise)
	runID := uuid.NewString()
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel).With().Str("run_id", runID).Logger()

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("configuration rejected")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, runID, input, outDir); err != nil {
		var ife *domain.InputFormatError
		switch {
		case errors.As(err, &ife):
			log.Error().Err(err).Msg("bad input")
		case errors.Is(err, context.Canceled):
			log.Error().Msg("interrupted")
		default:
			log.Error().Err(err).Msg("run failed")
		}
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg shared.Config, runID, input, outDir string) error {
	start := time.Now()
	log.Info().
		Str("input", input).
		Str("output", outDir).
		Float64("rps", cfg.RequestsPerSecond).
		Str("mode", cfg.WeatherMode).
		Msg("refiner starting")

	if st, err := os.Stat(input); err != nil || st.IsDir() {
		return &domain.InputFormatError{Path: input, Err: fmt.Errorf("not a regular file")}
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	progress := app.NewProgress()
	if cfg.StatusAddr != "" {
		srv := server.New()
		srv.Mount("/metrics", observability.MetricsHandler(observability.InitRegistry()))
		srv.MountHandlers(&server.Handlers{Progress: progress, RunID: runID})
		go func() {
			if err := srv.Run(ctx, cfg.StatusAddr); err != nil {
				log.Error().Err(err).Msg("status server failed")
			}
		}()
	}

	// 2) unpack and read the hotel CSVs
	tmp := filepath.Join(outDir, "temp")
	if _, err := archive.Unpack(input, tmp); err != nil {
		return err
	}
	if !cfg.KeepTemp {
		defer func() {
			if err := os.RemoveAll(tmp); err != nil {
				log.Warn().Err(err).Str("dir", tmp).Msg("temp cleanup failed")
			}
		}()
	}
	raw, err := archive.Assemble(tmp)
	if err != nil {
		return err
	}

	// 3) external services
	weather, err := openweather.New(cfg.OpenWeatherBase, cfg.OpenWeatherKey,
		restclient.New("openweather", restclient.Options{Timeout: cfg.RequestTimeout, MaxRetries: cfg.MaxRetries}))
	if err != nil {
		return err
	}
	// the pacer is taken before every attempt, so retries count against the rate too
	geo, err := here.New(cfg.HereBase, cfg.HereKey, cfg.HereLang,
		restclient.New("here", restclient.Options{
			Timeout:    cfg.RequestTimeout,
			MaxRetries: cfg.MaxRetries,
			Limiter:    restclient.NewPacer(cfg.RequestsPerSecond),
		}))
	if err != nil {
		return err
	}

	fetcher := app.NewFetcher(weather, geo, app.FetcherConfig{
		HistoryDays: cfg.HistoryDays,
		// RequestTimeout bounds one attempt; an item may retry MaxRetries times
		ItemTimeout: restclient.Budget(cfg.RequestTimeout, cfg.MaxRetries),
		Mode:        app.BatchMode(cfg.WeatherMode),
		MaxInFlight: cfg.MaxInFlight,
	}, progress)
	sink := output.NewWriter(outDir, cfg.ChunkSize, output.Layout(cfg.Layout))
	pipe := app.NewPipeline(fetcher, sink, os.Stdout, progress, app.PipelineConfig{WindowDays: cfg.WindowDays})

	// 4) run
	res, err := pipe.Run(ctx, raw, time.Now().UTC())
	if err != nil {
		return err
	}
	log.Info().
		Int("cities", len(res.Centers)).
		Int("failed_cities", len(res.FailedCities)).
		Dur("took", time.Since(start)).
		Msg("refiner completed")
	return nil
}
