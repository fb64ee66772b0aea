package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/seenimoa/valuescreen/internal/valuation"
	"github.com/seenimoa/valuescreen/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// SVG Charts
// ════════════════════════════════════════════════════════════════════

// ChartConfig holds rendering parameters for SVG charts.
type ChartConfig struct {
	Width        int    // SVG width in pixels (default: 720)
	Height       int    // SVG height in pixels (default: 320)
	MarginTop    int    // top margin (default: 40)
	MarginRight  int    // right margin (default: 20)
	MarginBottom int    // bottom margin (default: 40)
	MarginLeft   int    // left margin (default: 70)
	BgColor      string // background color (default: "#ffffff")
	GridColor    string // grid line color (default: "#e8e8e8")
	TextColor    string // axis label color (default: "#333333")
	FontSize     int    // axis label font size (default: 11)
	Title        string // chart title
}

// DefaultChartConfig returns sensible defaults for chart rendering.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:        720,
		Height:       320,
		MarginTop:    40,
		MarginRight:  20,
		MarginBottom: 40,
		MarginLeft:   70,
		BgColor:      "#ffffff",
		GridColor:    "#e8e8e8",
		TextColor:    "#333333",
		FontSize:     11,
	}
}

// plotArea returns the usable drawing area dimensions.
func (c ChartConfig) plotArea() (x, y, w, h int) {
	return c.MarginLeft, c.MarginTop,
		c.Width - c.MarginLeft - c.MarginRight,
		c.Height - c.MarginTop - c.MarginBottom
}

// ScheduleChart draws the DCF forecast as paired bars per year: projected
// cash flow and its present value.
func ScheduleChart(schedule []valuation.YearProjection, cfg ChartConfig) string {
	if cfg.Width == 0 {
		cfg = DefaultChartConfig()
	}
	if len(schedule) == 0 {
		return emptySVG(cfg, "No forecast")
	}
	if cfg.Title == "" {
		cfg.Title = "Projected vs discounted free cash flow"
	}

	px, py, pw, ph := cfg.plotArea()

	minVal, maxVal := 0.0, 0.0
	for _, p := range schedule {
		minVal = math.Min(minVal, math.Min(p.CashFlow, p.Discounted))
		maxVal = math.Max(maxVal, math.Max(p.CashFlow, p.Discounted))
	}
	valRange := maxVal - minVal
	if valRange == 0 {
		valRange = 1
	}
	yOf := func(v float64) float64 {
		return float64(py) + (maxVal-v)/valRange*float64(ph)
	}
	zeroY := yOf(0)

	slot := float64(pw) / float64(len(schedule))
	barW := slot * 0.35

	var sb strings.Builder
	sb.WriteString(svgHeader(cfg))
	sb.WriteString(fmt.Sprintf(`<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`,
		cfg.Width, cfg.Height, cfg.BgColor))
	sb.WriteString(fmt.Sprintf(`<text x="%d" y="20" font-size="14" font-weight="bold" fill="%s" text-anchor="middle">%s</text>`,
		cfg.Width/2, cfg.TextColor, escapeXML(cfg.Title)))

	// Horizontal grid with value labels.
	const gridLines = 4
	for i := 0; i <= gridLines; i++ {
		v := minVal + valRange*float64(i)/gridLines
		y := yOf(v)
		sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="%s" stroke-width="1"/>`,
			px, y, px+pw, y, cfg.GridColor))
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%.1f" font-size="%d" fill="%s" text-anchor="end">%s</text>`,
			px-6, y+4, cfg.FontSize, cfg.TextColor, utils.FormatCompact(v)))
	}

	for i, p := range schedule {
		x := float64(px) + float64(i)*slot + slot*0.15
		sb.WriteString(bar(x, barW, zeroY, yOf(p.CashFlow), "#2563eb"))
		sb.WriteString(bar(x+barW, barW, zeroY, yOf(p.Discounted), "#16a34a"))
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%d" font-size="%d" fill="%s" text-anchor="middle">Y%d</text>`,
			x+barW, py+ph+16, cfg.FontSize, cfg.TextColor, p.Year))
	}

	// Legend
	lx := px + pw - 220
	sb.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="10" height="10" fill="#2563eb"/>`, lx, cfg.Height-14))
	sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-size="%d" fill="%s">Projected</text>`, lx+14, cfg.Height-5, cfg.FontSize, cfg.TextColor))
	sb.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="10" height="10" fill="#16a34a"/>`, lx+100, cfg.Height-14))
	sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-size="%d" fill="%s">Present value</text>`, lx+114, cfg.Height-5, cfg.FontSize, cfg.TextColor))

	sb.WriteString("</svg>")
	return sb.String()
}

func bar(x, w, zeroY, valueY float64, color string) string {
	top, h := valueY, zeroY-valueY
	if h < 0 {
		top, h = zeroY, -h
	}
	return fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" rx="1"/>`, x, top, w, h, color)
}

// ScoreGauge draws a semicircular gauge for score out of outOf.
func ScoreGauge(score, outOf int, label string, width int) string {
	if width == 0 {
		width = 200
	}
	height := width/2 + 30

	cx := float64(width) / 2
	cy := float64(width)/2 - 10
	radius := float64(width)/2 - 20

	frac := 0.0
	if outOf > 0 {
		frac = math.Max(0, math.Min(1, float64(score)/float64(outOf)))
	}

	var color string
	switch {
	case frac < 0.3:
		color = "#ef5350"
	case frac < 0.5:
		color = "#ff9800"
	case frac < 0.7:
		color = "#ffc107"
	default:
		color = "#4caf50"
	}

	angle := math.Pi - frac*math.Pi
	needleX := cx + radius*0.85*math.Cos(angle)
	needleY := cy - radius*0.85*math.Sin(angle)
	endX := cx + radius*math.Cos(angle)
	endY := cy - radius*math.Sin(angle)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`, width, height, width, height))
	sb.WriteString(fmt.Sprintf(`<path d="M%.1f,%.1f A%.1f,%.1f 0 0,1 %.1f,%.1f" fill="none" stroke="#e0e0e0" stroke-width="12" stroke-linecap="round"/>`,
		cx-radius, cy, radius, radius, cx+radius, cy))
	if frac > 0 {
		sb.WriteString(fmt.Sprintf(`<path d="M%.1f,%.1f A%.1f,%.1f 0 0,1 %.1f,%.1f" fill="none" stroke="%s" stroke-width="12" stroke-linecap="round"/>`,
			cx-radius, cy, radius, radius, endX, endY, color))
	}
	sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#333" stroke-width="2"/>`,
		cx, cy, needleX, needleY))
	sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="5" fill="#333"/>`, cx, cy))
	sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" font-size="22" font-weight="bold" fill="%s" text-anchor="middle">%d/%d</text>`,
		cx, cy+25, color, score, outOf))
	sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%d" font-size="11" fill="#666" text-anchor="middle">%s</text>`,
		cx, height-5, escapeXML(label)))
	sb.WriteString("</svg>")
	return sb.String()
}

// --- SVG helpers ---

func svgHeader(cfg ChartConfig) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height)
}

func emptySVG(cfg ChartConfig, msg string) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"><rect width="%d" height="%d" fill="#f5f5f5"/><text x="%d" y="%d" text-anchor="middle" fill="#999" font-size="14">%s</text></svg>`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height, cfg.Width/2, cfg.Height/2, escapeXML(msg))
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}
