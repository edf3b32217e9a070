package output

import (
	"image/color"
	"math"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"hotel_weather/internal/domain"
)

var (
	minColor   = color.RGBA{R: 0, G: 255, B: 255, A: 255}
	maxColor   = color.RGBA{R: 255, A: 255}
	todayColor = color.Black
)

// DrawTemperatures saves a PNG with min and max temperature lines over
// date and a vertical marker at today.
func DrawTemperatures(path, title string, s domain.WeatherSeries, today time.Time) error {
	s = s.Sorted()

	p := plot.New()
	p.Title.Text = "Weather in " + title
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Temperature C"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	mins := make(plotter.XYs, len(s))
	maxs := make(plotter.XYs, len(s))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, d := range s {
		x := float64(d.Date.Unix())
		mins[i] = plotter.XY{X: x, Y: d.MinTemp}
		maxs[i] = plotter.XY{X: x, Y: d.MaxTemp}
		lo = math.Min(lo, d.MinTemp)
		hi = math.Max(hi, d.MaxTemp)
	}

	minLine, err := plotter.NewLine(mins)
	if err != nil {
		return err
	}
	minLine.Color = minColor
	maxLine, err := plotter.NewLine(maxs)
	if err != nil {
		return err
	}
	maxLine.Color = maxColor

	tx := float64(domain.Day(today).Unix())
	todayLine, err := plotter.NewLine(plotter.XYs{{X: tx, Y: lo}, {X: tx, Y: hi}})
	if err != nil {
		return err
	}
	todayLine.Color = todayColor

	p.Add(minLine, maxLine, todayLine)
	p.Legend.Add("Min temperature", minLine)
	p.Legend.Add("Max temperature", maxLine)

	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}
