package app

import (
	"fmt"
	"io"
	"math"
	"sort"

	"hotel_weather/internal/domain"
)

// The Find* functions return every row reaching the corpus-wide extremum;
// ties are all reported. An empty corpus yields an empty result.
// Results are ordered by country, city and date.

func FindMaxTemp(corpus domain.WeatherCorpus) []domain.TempRow {
	return extremeTemp(corpus, func(d domain.DayWeather) float64 { return d.MaxTemp }, func(a, b float64) bool { return a > b })
}

func FindMinTemp(corpus domain.WeatherCorpus) []domain.TempRow {
	return extremeTemp(corpus, func(d domain.DayWeather) float64 { return d.MinTemp }, func(a, b float64) bool { return a < b })
}

func FindMaxDailyRange(corpus domain.WeatherCorpus) []domain.RangeRow {
	rows := extremeTemp(corpus, func(d domain.DayWeather) float64 { return d.MaxTemp - d.MinTemp }, func(a, b float64) bool { return a > b })
	out := make([]domain.RangeRow, len(rows))
	for i, r := range rows {
		out[i] = domain.RangeRow{Key: r.Key, Date: r.Date, Range: r.Temp}
	}
	return out
}

// FindMaxWarming compares, per city, the mean of max and min temperature on
// the latest day with the same mean on the earliest day.
func FindMaxWarming(corpus domain.WeatherCorpus) []domain.WarmingRow {
	var out []domain.WarmingRow
	best := math.Inf(-1)
	for k, s := range corpus {
		if len(s) == 0 {
			continue
		}
		first, last := s[0], s[0]
		for _, d := range s[1:] {
			if d.Date.Before(first.Date) {
				first = d
			}
			if d.Date.After(last.Date) {
				last = d
			}
		}
		delta := (last.MaxTemp+last.MinTemp)/2 - (first.MaxTemp+first.MinTemp)/2
		switch {
		case delta > best:
			best = delta
			out = append(out[:0], domain.WarmingRow{Key: k, Delta: delta})
		case delta == best:
			out = append(out, domain.WarmingRow{Key: k, Delta: delta})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key.Less(out[j].Key) })
	return out
}

func extremeTemp(corpus domain.WeatherCorpus, value func(domain.DayWeather) float64, better func(a, b float64) bool) []domain.TempRow {
	var (
		out  []domain.TempRow
		best float64
		seen bool
	)
	for k, s := range corpus {
		for _, d := range s {
			v := value(d)
			switch {
			case !seen || better(v, best):
				best, seen = v, true
				out = append(out[:0], domain.TempRow{Key: k, Date: d.Date, Temp: v})
			case v == best:
				out = append(out, domain.TempRow{Key: k, Date: d.Date, Temp: v})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key != out[j].Key {
			return out[i].Key.Less(out[j].Key)
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// Summarize computes all four statistics for the corpus.
func Summarize(corpus domain.WeatherCorpus) domain.Stats {
	return domain.Stats{
		MaxTemp:    FindMaxTemp(corpus),
		MinTemp:    FindMinTemp(corpus),
		MaxRange:   FindMaxDailyRange(corpus),
		MaxWarming: FindMaxWarming(corpus),
	}
}

// WriteReport prints the statistics in the CLI's human-readable format.
func WriteReport(w io.Writer, st domain.Stats) error {
	const dateFmt = "2006-01-02"
	var lines []string
	lines = append(lines, "Max temperature")
	for _, r := range st.MaxTemp {
		lines = append(lines, fmt.Sprintf("\t%s (%s): %.2f C at %s", r.Key.City, r.Key.Country, r.Temp, r.Date.Format(dateFmt)))
	}
	lines = append(lines, "Min temperature")
	for _, r := range st.MinTemp {
		lines = append(lines, fmt.Sprintf("\t%s (%s): %.2f C at %s", r.Key.City, r.Key.Country, r.Temp, r.Date.Format(dateFmt)))
	}
	lines = append(lines, "Max daily temperature difference")
	for _, r := range st.MaxRange {
		lines = append(lines, fmt.Sprintf("\t%s (%s): %.2f C at %s", r.Key.City, r.Key.Country, r.Range, r.Date.Format(dateFmt)))
	}
	lines = append(lines, "Max temperature change over current period")
	for _, r := range st.MaxWarming {
		lines = append(lines, fmt.Sprintf("\t%s (%s): %.2f C", r.Key.City, r.Key.Country, r.Delta))
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}
