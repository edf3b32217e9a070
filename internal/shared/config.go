package shared

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv     string `validate:"required"`
	LogLevel   string `validate:"oneof=trace debug info warn error"`
	StatusAddr string // empty disables the status server

	OpenWeatherBase string `validate:"required,url"`
	OpenWeatherKey  string `validate:"required"`
	HereBase        string `validate:"required,url"`
	HereKey         string `validate:"required"`
	HereLang        string

	RequestsPerSecond float64       `validate:"gt=0"`
	HistoryDays       int           `validate:"gte=0,lte=5"`
	WindowDays        int           `validate:"gte=0"`
	WeatherMode       string        `validate:"oneof=fail-fast best-effort"`
	MaxInFlight       int           `validate:"gte=0"`
	RequestTimeout    time.Duration `validate:"gt=0"`
	MaxRetries        int           `validate:"gte=0"`

	ChunkSize int    `validate:"gt=0"`
	Layout    string `validate:"oneof=per-city split"`
	KeepTemp  bool
}

var validate = validator.New()

// Load reads .env (if any) and the environment. Malformed numbers fall
// back to their defaults with a warning; call Validate before use.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg(".env not loaded")
	}
	return Config{
		AppEnv:     env("APP_ENV", "prod"),
		LogLevel:   env("LOG_LEVEL", "info"),
		StatusAddr: env("STATUS_ADDR", ""),

		OpenWeatherBase: env("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5"),
		OpenWeatherKey:  env("OPENWEATHER_API_KEY", ""),
		HereBase:        env("HERE_BASE_URL", "https://revgeocode.search.hereapi.com/v1"),
		HereKey:         env("HERE_API_KEY", ""),
		HereLang:        env("HERE_LANG", "en-US"),

		RequestsPerSecond: atof("REQUESTS_PER_SECOND", 1),
		HistoryDays:       atoi("WEATHER_HISTORY_DAYS", 4),
		WindowDays:        atoi("WEATHER_WINDOW_DAYS", 5),
		WeatherMode:       env("WEATHER_MODE", "fail-fast"),
		MaxInFlight:       atoi("MAX_IN_FLIGHT", 0),
		RequestTimeout:    time.Duration(atoi("REQUEST_TIMEOUT_SECONDS", 15)) * time.Second,
		MaxRetries:        atoi("MAX_RETRIES", 3),

		ChunkSize: atoi("OUTPUT_CHUNK_SIZE", 100),
		Layout:    env("OUTPUT_LAYOUT", "per-city"),
		KeepTemp:  env("KEEP_TEMP", "") == "true",
	}
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoi(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
	}
	return def
}

func atof(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Warn().Str("key", k).Str("value", v).Msg("not a number, using default")
	}
	return def
}
