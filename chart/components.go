package chart

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"time"

	"github.com/aouyang1/go-covidcast/forecaster"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	ComponentWidth       = 10 * vg.Inch
	ComponentPanelHeight = 3 * vg.Inch
)

var componentColor = color.RGBA{R: 0x00, G: 0x72, B: 0xb2, A: 0xff}

// ComponentsPNG draws the trend and every named seasonality of a forecast as stacked
// panels and writes them as a png. Events are drawn when any are non zero.
func ComponentsPNG(w io.Writer, res *forecaster.Results) error {
	if res == nil || len(res.T) == 0 {
		return ErrNoData
	}
	comp := res.SeriesComponents

	panels := []*plot.Plot{}
	trend, err := componentPlot("trend", res.T, padded(comp.Trend, len(res.T)))
	if err != nil {
		return err
	}
	panels = append(panels, trend)

	for _, name := range comp.SeasonalNames() {
		p, err := componentPlot(name, res.T, padded(comp.Seasonal[name], len(res.T)))
		if err != nil {
			return err
		}
		panels = append(panels, p)
	}
	if nonZero(comp.Event) {
		p, err := componentPlot(forecaster.ColEvent, res.T, comp.Event)
		if err != nil {
			return err
		}
		panels = append(panels, p)
	}

	rows := make([][]*plot.Plot, len(panels))
	for i, p := range panels {
		rows[i] = []*plot.Plot{p}
	}

	img := vgimg.New(ComponentWidth, ComponentPanelHeight*vg.Length(len(panels)))
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      len(panels),
		Cols:      1,
		PadTop:    vg.Points(5),
		PadBottom: vg.Points(5),
		PadLeft:   vg.Points(5),
		PadRight:  vg.Points(10),
		PadY:      vg.Points(10),
	}
	canvases := plot.Align(rows, tiles, dc)
	for i, p := range panels {
		p.Draw(canvases[i][0])
	}

	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(w); err != nil {
		return fmt.Errorf("unable to write components png, %w", err)
	}
	return nil
}

func componentPlot(name string, t []time.Time, y []float64) (*plot.Plot, error) {
	if len(t) != len(y) {
		return nil, fmt.Errorf("%s component, %w", name, ErrLengthMismatch)
	}

	xys := make(plotter.XYs, 0, len(t))
	for i, ts := range t {
		if math.IsNaN(y[i]) {
			continue
		}
		xys = append(xys, plotter.XY{X: float64(ts.Unix()), Y: y[i]})
	}

	p := plot.New()
	p.Title.Text = name
	p.X.Label.Text = "ds"
	p.X.Tick.Marker = plot.TimeTicks{Format: time.DateOnly}
	p.Add(plotter.NewGrid())

	if len(xys) == 0 {
		return p, nil
	}
	l, err := plotter.NewLine(xys)
	if err != nil {
		return nil, fmt.Errorf("unable to plot %s component, %w", name, err)
	}
	l.LineStyle.Color = componentColor
	l.LineStyle.Width = vg.Points(1.5)
	p.Add(l)
	return p, nil
}

func nonZero(v []float64) bool {
	for _, val := range v {
		if val != 0 && !math.IsNaN(val) {
			return true
		}
	}
	return false
}
