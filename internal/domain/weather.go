package domain

import (
	"sort"
	"time"
)

// DayWeather is one day of a city's temperature history or forecast.
// Date is always a UTC midnight; Offset is the signed day distance from
// the run's reference date (0 = that date, negative = past).
type DayWeather struct {
	Date    time.Time
	Offset  int
	MaxTemp float64
	MinTemp float64
}

// WeatherSeries is ordered by Date ascending.
type WeatherSeries []DayWeather

// WeatherCorpus maps every selected city to its series.
type WeatherCorpus map[CityKey]WeatherSeries

// Day truncates t to its UTC calendar date.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayOffset returns the number of whole days from ref to d (both truncated to UTC dates).
func DayOffset(d, ref time.Time) int {
	return int(Day(d).Sub(Day(ref)).Hours() / 24)
}

// Sorted returns a copy of s ordered by date. Later entries win on duplicate dates.
func (s WeatherSeries) Sorted() WeatherSeries {
	byDate := make(map[time.Time]DayWeather, len(s))
	for _, d := range s {
		byDate[d.Date] = d
	}
	out := make(WeatherSeries, 0, len(byDate))
	for _, d := range byDate {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Window keeps the days whose distance from ref is at most days.
func (s WeatherSeries) Window(ref time.Time, days int) WeatherSeries {
	out := make(WeatherSeries, 0, len(s))
	for _, d := range s {
		off := DayOffset(d.Date, ref)
		if off <= days && off >= -days {
			out = append(out, d)
		}
	}
	return out
}

// Contiguous reports whether consecutive days are exactly one day apart.
func (s WeatherSeries) Contiguous() bool {
	for i := 1; i < len(s); i++ {
		if DayOffset(s[i].Date, s[i-1].Date) != 1 {
			return false
		}
	}
	return true
}

// TempRow is a city/date where a temperature extremum was registered.
type TempRow struct {
	Key  CityKey
	Date time.Time
	Temp float64
}

// RangeRow is a city/date with its diurnal temperature range.
type RangeRow struct {
	Key   CityKey
	Date  time.Time
	Range float64
}

// WarmingRow is a city's mean temperature change over its whole series.
type WarmingRow struct {
	Key   CityKey
	Delta float64
}

// Stats bundles the four corpus-wide statistics.
type Stats struct {
	MaxTemp    []TempRow
	MinTemp    []TempRow
	MaxRange   []RangeRow
	MaxWarming []WarmingRow
}
