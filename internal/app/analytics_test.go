package app_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"hotel_weather/internal/app"
	"hotel_weather/internal/domain"
)

var (
	kuopio   = domain.CityKey{Country: "FI", City: "Kuopio"}
	suojarvi = domain.CityKey{Country: "RU", City: "Suojarvi"}
)

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func series(start time.Time, maxs, mins []float64) domain.WeatherSeries {
	s := make(domain.WeatherSeries, len(maxs))
	for i := range maxs {
		s[i] = domain.DayWeather{Date: start.AddDate(0, 0, i), Offset: i, MaxTemp: maxs[i], MinTemp: mins[i]}
	}
	return s
}

func finnishCorpus() domain.WeatherCorpus {
	start := date(2021, 8, 29)
	return domain.WeatherCorpus{
		kuopio:   series(start, []float64{18, 19, 18, 22, 23}, []float64{12, 15, 14, 18, 19}),
		suojarvi: series(start, []float64{18, 22, 25, 24, 28}, []float64{14, 15, 17, 17, 16}),
	}
}

func TestFindMaxTemp(t *testing.T) {
	got := app.FindMaxTemp(finnishCorpus())
	if len(got) != 1 || got[0].Key != suojarvi || got[0].Temp != 28 || !got[0].Date.Equal(date(2021, 9, 2)) {
		t.Fatalf("unexpected: %+v", got)
	}
}

func TestFindMinTemp(t *testing.T) {
	got := app.FindMinTemp(finnishCorpus())
	if len(got) != 1 || got[0].Key != kuopio || got[0].Temp != 12 || !got[0].Date.Equal(date(2021, 8, 29)) {
		t.Fatalf("unexpected: %+v", got)
	}
}

func TestFindMaxDailyRange(t *testing.T) {
	got := app.FindMaxDailyRange(finnishCorpus())
	if len(got) != 1 || got[0].Key != suojarvi || got[0].Range != 12 || !got[0].Date.Equal(date(2021, 9, 2)) {
		t.Fatalf("unexpected: %+v", got)
	}
}

func TestFindMaxWarming_Ties(t *testing.T) {
	got := app.FindMaxWarming(finnishCorpus())
	if len(got) != 2 || got[0].Key != kuopio || got[1].Key != suojarvi || got[0].Delta != 6 || got[1].Delta != 6 {
		t.Fatalf("expected both cities with 6, got %+v", got)
	}
}

func TestFindMaxWarming_GlobalMaxOnly(t *testing.T) {
	start := date(2022, 3, 1)
	a := domain.CityKey{Country: "AA", City: "A"}
	b := domain.CityKey{Country: "BB", City: "B"}
	corpus := domain.WeatherCorpus{
		// means 6 -> 20.5
		a: series(start, []float64{8, 9, 10, 11, 25}, []float64{4, 5, 6, 7, 16}),
		b: series(start, []float64{10, 10, 10, 10, 20}, []float64{0, 0, 0, 0, 10}),
	}
	got := app.FindMaxWarming(corpus)
	if len(got) != 1 || got[0].Key != a || got[0].Delta != 14.5 {
		t.Fatalf("unexpected: %+v", got)
	}

	// shuffled input days must not change the answer
	s := corpus[a]
	corpus[a] = domain.WeatherSeries{s[4], s[2], s[0], s[3], s[1]}
	if got := app.FindMaxWarming(corpus); len(got) != 1 || got[0].Delta != 14.5 {
		t.Fatalf("order dependent: %+v", got)
	}

	// a bigger warming elsewhere takes over
	corpus[b] = series(start, []float64{0, 30}, []float64{0, 30})
	if got := app.FindMaxWarming(corpus); len(got) != 1 || got[0].Key != b {
		t.Fatalf("expected B, got %+v", got)
	}
}

func TestFindMaxTemp_AllTiesReported(t *testing.T) {
	start := date(2021, 1, 1)
	corpus := domain.WeatherCorpus{
		suojarvi: series(start, []float64{5, 9}, []float64{0, 0}),
		kuopio:   series(start, []float64{9, 9}, []float64{0, 0}),
	}
	got := app.FindMaxTemp(corpus)
	if len(got) != 3 {
		t.Fatalf("expected 3 rows, got %+v", got)
	}
	if got[0].Key != kuopio || got[1].Key != kuopio || got[2].Key != suojarvi || !got[0].Date.Before(got[1].Date) {
		t.Fatalf("rows not ordered by key then date: %+v", got)
	}
}

func TestAnalytics_EmptyCorpus(t *testing.T) {
	st := app.Summarize(domain.WeatherCorpus{})
	if len(st.MaxTemp)+len(st.MinTemp)+len(st.MaxRange)+len(st.MaxWarming) != 0 {
		t.Fatalf("expected empty stats, got %+v", st)
	}
	st = app.Summarize(domain.WeatherCorpus{kuopio: nil})
	if len(st.MaxTemp)+len(st.MaxWarming) != 0 {
		t.Fatalf("empty series must be skipped, got %+v", st)
	}
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	if err := app.WriteReport(&buf, app.Summarize(finnishCorpus())); err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		"Max temperature",
		"\tSuojarvi (RU): 28.00 C at 2021-09-02",
		"Min temperature",
		"\tKuopio (FI): 12.00 C at 2021-08-29",
		"Max daily temperature difference",
		"\tSuojarvi (RU): 12.00 C at 2021-09-02",
		"Max temperature change over current period",
		"\tKuopio (FI): 6.00 C",
		"\tSuojarvi (RU): 6.00 C",
		"",
	}, "\n")
	if buf.String() != want {
		t.Fatalf("report:\n%s\nwant:\n%s", buf.String(), want)
	}
}
