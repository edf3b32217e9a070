package domain

import (
	"context"
	"time"
)

// WeatherSource fetches normalized weather for one coordinate.
// today is the run's reference date used for day offsets.
type WeatherSource interface {
	Forecast(ctx context.Context, c Coord, today time.Time) (WeatherSeries, error)
	History(ctx context.Context, c Coord, day, today time.Time) (DayWeather, error)
}

// AddressSource reverse-geocodes a coordinate. Returns ErrNotFound when
// the service knows no address for it.
type AddressSource interface {
	Reverse(ctx context.Context, c Coord) (string, error)
}

// CityOutput is everything written for one selected city.
type CityOutput struct {
	Key     CityKey
	Center  Coord
	Hotels  []HotelRow
	Weather WeatherSeries // nil when the city's weather fetch failed
	Today   time.Time
}

// OutputSink persists per-city artifacts.
type OutputSink interface {
	WriteCity(ctx context.Context, out CityOutput) error
}
