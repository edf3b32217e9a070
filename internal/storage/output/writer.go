// Package output writes the per-city artifacts: hotel CSV chunks, the
// city center and the temperature chart.
package output

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"

	"hotel_weather/internal/domain"
)

type Layout string

const (
	// LayoutPerCity puts everything for a city under <root>/<City>_<Country>.
	LayoutPerCity Layout = "per-city"
	// LayoutSplit puts CSVs under <root>/csv/<City>_<Country> and charts under <root>/img.
	LayoutSplit Layout = "split"
)

const DefaultChunkSize = 100

type Writer struct {
	root      string
	chunkSize int
	layout    Layout
}

func NewWriter(root string, chunkSize int, layout Layout) *Writer {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if layout == "" {
		layout = LayoutPerCity
	}
	return &Writer{root: root, chunkSize: chunkSize, layout: layout}
}

func (w *Writer) csvDir(k domain.CityKey) string {
	if w.layout == LayoutSplit {
		return filepath.Join(w.root, "csv", dirName(k))
	}
	return filepath.Join(w.root, dirName(k))
}

func (w *Writer) imgDir(k domain.CityKey) string {
	if w.layout == LayoutSplit {
		return filepath.Join(w.root, "img")
	}
	return filepath.Join(w.root, dirName(k))
}

// WriteCity writes hotels_NNNN.csv chunks, center_coords.csv and, when
// weather is available, weather_<city_country>.png.
func (w *Writer) WriteCity(ctx context.Context, out domain.CityOutput) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := w.csvDir(out.Key)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	n, err := w.writeChunks(dir, out.Hotels)
	if err != nil {
		return err
	}
	center := []domain.CenterRow{{Latitude: out.Center.Lat, Longitude: out.Center.Lon}}
	if err := writeCSV(filepath.Join(dir, "center_coords.csv"), &center); err != nil {
		return err
	}

	l := log.With().Str("city", out.Key.String()).Logger()
	if len(out.Weather) == 0 {
		l.Warn().Msg("no weather for city, chart skipped")
	} else {
		img := w.imgDir(out.Key)
		if err := os.MkdirAll(img, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", img, err)
		}
		name := "weather_" + strings.ToLower(dirName(out.Key)) + ".png"
		if err := DrawTemperatures(filepath.Join(img, name), out.Key.String(), out.Weather, out.Today); err != nil {
			return fmt.Errorf("chart %s: %w", out.Key, err)
		}
	}
	l.Debug().Int("hotels", len(out.Hotels)).Int("chunks", n).Msg("city written")
	return nil
}

func (w *Writer) writeChunks(dir string, rows []domain.HotelRow) (int, error) {
	n := 0
	for start := 0; start < len(rows); start += w.chunkSize {
		end := min(start+w.chunkSize, len(rows))
		chunk := rows[start:end]
		p := filepath.Join(dir, fmt.Sprintf("hotels_%04d.csv", n))
		if err := writeCSV(p, &chunk); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func writeCSV(path string, rows any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gocsv.MarshalFile(rows, f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// dirName keeps keys usable as a single path element.
func dirName(k domain.CityKey) string {
	return strings.NewReplacer("/", "-", `\`, "-").Replace(k.String())
}
