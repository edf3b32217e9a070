package openweather

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"hotel_weather/internal/adapters/restclient"
	"hotel_weather/internal/domain"
)

const service = "openweather"

// Client reads the One Call 2.5 forecast and time machine endpoints.
type Client struct {
	base string
	key  string
	rc   *restclient.Client
}

func New(base, key string, rc *restclient.Client) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("openweather: API key is required")
	}
	if rc == nil {
		rc = restclient.New(service, restclient.Options{MaxRetries: 3})
	}
	return &Client{base: base, key: key, rc: rc}, nil
}

func (c *Client) Forecast(ctx context.Context, co domain.Coord, today time.Time) (domain.WeatherSeries, error) {
	q := c.query(co)
	q.Set("exclude", "current,minutely,hourly,alerts")
	body, err := c.rc.Get(ctx, "onecall", c.base+"/onecall?"+q.Encode())
	if err != nil {
		return nil, wrap("forecast", co, err)
	}
	s, err := ParseForecast(body, today)
	if err != nil {
		return nil, wrap("forecast", co, err)
	}
	return s, nil
}

// History requests the day starting at UTC midnight of day.
func (c *Client) History(ctx context.Context, co domain.Coord, day, today time.Time) (domain.DayWeather, error) {
	q := c.query(co)
	q.Set("dt", strconv.FormatInt(domain.Day(day).Unix(), 10))
	body, err := c.rc.Get(ctx, "timemachine", c.base+"/onecall/timemachine?"+q.Encode())
	if err != nil {
		return domain.DayWeather{}, wrap("history", co, err)
	}
	w, err := ParseHistory(body, today)
	if err != nil {
		return domain.DayWeather{}, wrap("history", co, err)
	}
	return w, nil
}

func (c *Client) query(co domain.Coord) url.Values {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(co.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(co.Lon, 'f', -1, 64))
	q.Set("units", "metric")
	q.Set("appid", c.key)
	return q
}

func wrap(op string, co domain.Coord, err error) error {
	return &domain.FetchError{
		Service:   service,
		Op:        op,
		Coord:     co,
		Transient: domain.IsTransient(err),
		Err:       err,
	}
}
