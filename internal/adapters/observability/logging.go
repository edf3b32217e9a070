package observability

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns a zerolog Logger writing to stderr, so stdout stays
// free for the statistics report.
// APP_ENV=dev (or development) uses a human-friendly console writer.
// Unknown levels fall back to info.
func NewLogger(env, level string) zerolog.Logger {
	var out io.Writer = os.Stderr
	if env == "dev" || env == "development" {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}
