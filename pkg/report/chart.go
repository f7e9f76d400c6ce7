package report

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/justin-oleary/simwatch/pkg/derive"
)

const (
	chartHeight   = 320
	chartBarWidth = 48
	chartSpacing  = 28
	chartMinWidth = 480
)

var (
	colorGood = drawing.ColorFromHex("00ff88")
	colorWarn = drawing.ColorFromHex("ffd700")
	colorBad  = drawing.ColorFromHex("ff4757")
)

// overheadColor buckets a bar: at or below zero is free, up to 5% is
// tolerable, anything above is expensive.
func overheadColor(pct float64) drawing.Color {
	switch {
	case pct <= 0:
		return colorGood
	case pct <= 5:
		return colorWarn
	}
	return colorBad
}

// RenderChartSVG draws the overhead bar chart of one series as SVG.
func RenderChartSVG(s derive.Series) ([]byte, error) {
	bars := make([]chart.Value, 0, len(s.Points))
	for _, p := range s.Points {
		c := overheadColor(p.Overhead)
		bars = append(bars, chart.Value{
			Label: p.Label,
			Value: p.Overhead,
			Style: chart.Style{
				FillColor:   c.WithAlpha(204),
				StrokeColor: c,
				StrokeWidth: 2,
			},
		})
	}

	width := len(bars)*(chartBarWidth+chartSpacing) + 120
	if width < chartMinWidth {
		width = chartMinWidth
	}

	bc := chart.BarChart{
		Width:      width,
		Height:     chartHeight,
		BarWidth:   chartBarWidth,
		BarSpacing: chartSpacing,
		Background: chart.Style{Padding: chart.Box{Top: 24, Left: 16, Right: 16, Bottom: 16}},
		YAxis: chart.YAxis{
			Name:  "Overhead (%)",
			Range: &chart.ContinuousRange{Min: s.YMin, Max: s.YMax},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%+.1f%%", f)
				}
				return ""
			},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := bc.Render(chart.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render %s chart: %w", s.Benchmark, err)
	}
	return buf.Bytes(), nil
}

// chartHTML is the template hook for inline charts. A chart that fails to
// render is replaced by a note instead of failing the whole document.
func chartHTML(s derive.Series) template.HTML {
	svg, err := RenderChartSVG(s)
	if err != nil {
		return template.HTML(`<div class="no-data">chart unavailable</div>`)
	}
	return template.HTML(svg)
}
