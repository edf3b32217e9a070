package output_test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"hotel_weather/internal/domain"
	"hotel_weather/internal/storage/output"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func cityOutput(hotels int, withWeather bool) domain.CityOutput {
	today := time.Date(2021, 9, 2, 0, 0, 0, 0, time.UTC)
	out := domain.CityOutput{
		Key:    domain.CityKey{Country: "FI", City: "Kuopio"},
		Center: domain.Coord{Lat: 62.5, Lon: 27.75},
		Today:  today,
	}
	for i := 0; i < hotels; i++ {
		out.Hotels = append(out.Hotels, domain.HotelRow{
			Name: fmt.Sprintf("Hotel %d", i), Address: "Kauppakatu 1, Kuopio", Latitude: 62.89, Longitude: 27.67,
		})
	}
	if withWeather {
		for off := -4; off <= 5; off++ {
			out.Weather = append(out.Weather, domain.DayWeather{
				Date: today.AddDate(0, 0, off), Offset: off, MaxTemp: 20 + float64(off), MinTemp: 10 + float64(off),
			})
		}
	}
	return out
}

func readFile(t *testing.T, p string) []byte {
	t.Helper()
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read %s: %v", p, err)
	}
	return b
}

func TestWriteCity_PerCity(t *testing.T) {
	root := t.TempDir()
	w := output.NewWriter(root, 100, output.LayoutPerCity)
	if err := w.WriteCity(context.Background(), cityOutput(250, true)); err != nil {
		t.Fatalf("write: %v", err)
	}
	dir := filepath.Join(root, "Kuopio_FI")

	for i, want := range []int{100, 100, 50} {
		b := readFile(t, filepath.Join(dir, fmt.Sprintf("hotels_%04d.csv", i)))
		lines := strings.Split(strings.TrimSpace(string(b)), "\n")
		if lines[0] != "Name,Address,Latitude,Longitude" {
			t.Fatalf("chunk %d header: %q", i, lines[0])
		}
		if got := len(lines) - 1; got != want {
			t.Fatalf("chunk %d: %d rows, want %d", i, got, want)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "hotels_0003.csv")); !os.IsNotExist(err) {
		t.Fatalf("unexpected fourth chunk")
	}

	center := strings.TrimSpace(string(readFile(t, filepath.Join(dir, "center_coords.csv"))))
	if center != "Latitude,Longitude\n62.5,27.75" {
		t.Fatalf("center file: %q", center)
	}

	img := readFile(t, filepath.Join(dir, "weather_kuopio_fi.png"))
	if !bytes.HasPrefix(img, pngMagic) {
		t.Fatalf("chart is not a PNG")
	}
}

func TestWriteCity_SplitLayout(t *testing.T) {
	root := t.TempDir()
	w := output.NewWriter(root, 0, output.LayoutSplit)
	if err := w.WriteCity(context.Background(), cityOutput(3, true)); err != nil {
		t.Fatalf("write: %v", err)
	}
	for _, p := range []string{
		filepath.Join(root, "csv", "Kuopio_FI", "hotels_0000.csv"),
		filepath.Join(root, "csv", "Kuopio_FI", "center_coords.csv"),
		filepath.Join(root, "img", "weather_kuopio_fi.png"),
	} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("missing %s: %v", p, err)
		}
	}
}

func TestWriteCity_NoWeatherSkipsChart(t *testing.T) {
	root := t.TempDir()
	w := output.NewWriter(root, 100, "")
	if err := w.WriteCity(context.Background(), cityOutput(1, false)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "Kuopio_FI", "weather_kuopio_fi.png")); !os.IsNotExist(err) {
		t.Fatalf("chart must not be written without weather")
	}
	if _, err := os.Stat(filepath.Join(root, "Kuopio_FI", "center_coords.csv")); err != nil {
		t.Fatalf("center must still be written: %v", err)
	}
}

func TestWriteCity_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := output.NewWriter(t.TempDir(), 100, "").WriteCity(ctx, cityOutput(1, true)); err == nil {
		t.Fatalf("expected context error")
	}
}
