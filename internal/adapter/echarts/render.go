// Package echarts renders normalized hydrological charts as standalone HTML
// pages, for the server's chart endpoint and the chartcheck tool.
package echarts

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/couchcryptid/hydro-explorer-service/internal/domain"
)

// missing is how echarts marks a gap in a line.
const missing = "-"

// Options control page-level rendering.
type Options struct {
	Width      string
	Height     string
	AssetsHost string
}

// DefaultOptions fills the browser width with a fixed height.
func DefaultOptions() Options {
	return Options{Width: "100%", Height: "520px"}
}

// BuildLine constructs a line chart for a normalized chart. Time axes take
// Unix milliseconds; linear axes take distances.
func BuildLine(title string, c domain.Chart, o Options) *charts.Line {
	xType := "value"
	if c.Axis.XKind == domain.XTime {
		xType = "time"
	}

	init := opts.Initialization{PageTitle: title, Width: o.Width, Height: o.Height}
	if o.AssetsHost != "" {
		init.AssetsHost = o.AssetsHost
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(init),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Type: xType, Name: c.Axis.XLabel, NameLocation: "middle", NameGap: 30}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: c.Axis.YLabel, NameLocation: "middle", NameGap: 45}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}),
	)

	for _, s := range c.Series {
		data := make([]opts.LineData, len(s.Points))
		for i, p := range s.Points {
			var y any = missing
			if p.Y != nil {
				y = *p.Y
			}
			data[i] = opts.LineData{Value: []any{p.X, y}}
		}

		var seriesOpts []charts.SeriesOpts
		if color := s.Role.Color(); color != "" {
			seriesOpts = append(seriesOpts,
				charts.WithItemStyleOpts(opts.ItemStyle{Color: color}),
				charts.WithLineStyleOpts(opts.LineStyle{Color: color, Width: 2}),
			)
		}
		seriesOpts = append(seriesOpts, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))

		line.AddSeries(s.Label, data, seriesOpts...)
	}
	return line
}

// Render writes a chart page to w.
func Render(w io.Writer, title string, c domain.Chart, o Options) error {
	if err := BuildLine(title, c, o).Render(w); err != nil {
		return fmt.Errorf("render chart %q: %w", title, err)
	}
	return nil
}
