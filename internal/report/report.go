// Package report renders offline diagnostic charts of a recording and the
// shots detected in it.
package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/jumpshot/internal/imu"
	"github.com/banshee-data/jumpshot/internal/shot"
)

// DefaultMaxPoints bounds the number of magnitude points drawn.
const DefaultMaxPoints = 20000

// Options controls chart rendering.
type Options struct {
	Title      string
	AssetsHost string // empty uses the go-echarts CDN
	MaxPoints  int
}

// Render writes an HTML page with the magnitude trace, shot markers and a
// per-shot range bar chart. Shot indices must refer to samples.
func Render(w io.Writer, samples []imu.Sample, shots []shot.Record, o Options) error {
	if o.Title == "" {
		o.Title = "Jump shot detection"
	}
	if o.MaxPoints <= 0 {
		o.MaxPoints = DefaultMaxPoints
	}

	page := components.NewPage()
	page.PageTitle = o.Title
	page.AddCharts(traceChart(samples, shots, o), rangeChart(shots, o))
	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

func seconds(t, t0 int64) float64 { return float64(t-t0) / 1000 }

func traceChart(samples []imu.Sample, shots []shot.Record, o Options) *charts.Line {
	var t0 int64
	if len(samples) > 0 {
		t0 = samples[0].T
	}
	stride := len(samples)/o.MaxPoints + 1

	trace := make([]opts.LineData, 0, len(samples)/stride+1)
	for i := 0; i < len(samples); i += stride {
		s := samples[i]
		trace = append(trace, opts.LineData{Value: []interface{}{seconds(s.T, t0), s.AMag}})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: o.Title, Width: "1200px", Height: "500px", AssetsHost: o.AssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: o.Title, Subtitle: fmt.Sprintf("samples=%d shots=%d", len(samples), len(shots))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "t (s)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "aMag (m/s²)", NameLocation: "middle", NameGap: 30}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)
	line.AddSeries("aMag", trace, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))

	peaks := make([]opts.ScatterData, 0, len(shots))
	dips := make([]opts.ScatterData, 0, len(shots))
	for _, r := range shots {
		if r.PeakIndex < 0 || r.DipIndex >= int64(len(samples)) {
			continue
		}
		peaks = append(peaks, opts.ScatterData{Value: []interface{}{seconds(samples[r.PeakIndex].T, t0), r.PeakMag}})
		dips = append(dips, opts.ScatterData{Value: []interface{}{seconds(samples[r.DipIndex].T, t0), r.DipMag}})
	}
	scatter := charts.NewScatter()
	scatter.AddSeries("peak", peaks, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 10}))
	scatter.AddSeries("dip", dips, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}))
	line.Overlap(scatter)
	return line
}

func rangeChart(shots []shot.Record, o Options) *charts.Bar {
	x := make([]string, len(shots))
	y := make([]opts.BarData, len(shots))
	for i, r := range shots {
		x[i] = fmt.Sprintf("#%d", i+1)
		y[i] = opts.BarData{Value: r.Range}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: "300px", AssetsHost: o.AssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: "Peak-to-dip range"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).AddSeries("range", y,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
	)
	return bar
}
