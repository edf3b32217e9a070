package openweather

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"hotel_weather/internal/domain"
)

// forecastPayload is the subset of a One Call response with daily data.
type forecastPayload struct {
	Daily *[]struct {
		Dt   *int64 `json:"dt"`
		Temp *struct {
			Max *float64 `json:"max"`
			Min *float64 `json:"min"`
		} `json:"temp"`
	} `json:"daily"`
}

// historyPayload is the subset of a One Call time machine response.
type historyPayload struct {
	Current *struct {
		Dt *int64 `json:"dt"`
	} `json:"current"`
	Hourly *[]struct {
		Temp *float64 `json:"temp"`
	} `json:"hourly"`
}

// ParseForecast normalizes a daily forecast payload into a series.
// Dates are the UTC calendar dates of each entry's timestamp; offsets are
// relative to today.
func ParseForecast(body []byte, today time.Time) (domain.WeatherSeries, error) {
	var p forecastPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, &domain.ParseError{Shape: "forecast", Field: "$", Err: err}
	}
	if p.Daily == nil {
		return nil, &domain.ParseError{Shape: "forecast", Field: "daily"}
	}

	out := make(domain.WeatherSeries, 0, len(*p.Daily))
	for i, d := range *p.Daily {
		switch {
		case d.Dt == nil:
			return nil, &domain.ParseError{Shape: "forecast", Field: fmt.Sprintf("daily[%d].dt", i)}
		case d.Temp == nil || d.Temp.Max == nil:
			return nil, &domain.ParseError{Shape: "forecast", Field: fmt.Sprintf("daily[%d].temp.max", i)}
		case d.Temp.Min == nil:
			return nil, &domain.ParseError{Shape: "forecast", Field: fmt.Sprintf("daily[%d].temp.min", i)}
		}
		date := domain.Day(time.Unix(*d.Dt, 0))
		out = append(out, domain.DayWeather{
			Date:    date,
			Offset:  domain.DayOffset(date, today),
			MaxTemp: *d.Temp.Max,
			MinTemp: *d.Temp.Min,
		})
	}
	return out, nil
}

// ParseHistory reduces one day of hourly samples to a single record. The
// date comes from the payload's current timestamp.
func ParseHistory(body []byte, today time.Time) (domain.DayWeather, error) {
	var p historyPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return domain.DayWeather{}, &domain.ParseError{Shape: "history", Field: "$", Err: err}
	}
	if p.Current == nil || p.Current.Dt == nil {
		return domain.DayWeather{}, &domain.ParseError{Shape: "history", Field: "current.dt"}
	}
	if p.Hourly == nil || len(*p.Hourly) == 0 {
		return domain.DayWeather{}, &domain.ParseError{Shape: "history", Field: "hourly"}
	}

	maxT, minT := math.Inf(-1), math.Inf(1)
	for i, h := range *p.Hourly {
		if h.Temp == nil {
			return domain.DayWeather{}, &domain.ParseError{Shape: "history", Field: fmt.Sprintf("hourly[%d].temp", i)}
		}
		maxT = math.Max(maxT, *h.Temp)
		minT = math.Min(minT, *h.Temp)
	}
	date := domain.Day(time.Unix(*p.Current.Dt, 0))
	return domain.DayWeather{
		Date:    date,
		Offset:  domain.DayOffset(date, today),
		MaxTemp: maxT,
		MinTemp: minT,
	}, nil
}
