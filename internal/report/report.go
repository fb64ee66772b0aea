// Package report renders screening results as terminal text, JSON, or a
// standalone HTML page with SVG charts.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/seenimoa/valuescreen/internal/scoring"
	"github.com/seenimoa/valuescreen/internal/screen"
	"github.com/seenimoa/valuescreen/internal/valuation"
	"github.com/seenimoa/valuescreen/pkg/utils"
)

// Format specifies the output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatHTML Format = "html"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatHTML:
		return f, nil
	case "":
		return FormatText, nil
	}
	return "", fmt.Errorf("unknown format %q (want text, json or html)", s)
}

// Render writes rep to w in the given format.
func Render(w io.Writer, rep *screen.Report, f Format) error {
	var (
		out []byte
		err error
	)
	switch f {
	case FormatJSON:
		out, err = JSON(rep)
	case FormatHTML:
		var s string
		s, err = HTML(rep)
		out = []byte(s)
	default:
		out = []byte(Text(rep))
	}
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// JSON returns the report as indented JSON.
func JSON(rep *screen.Report) ([]byte, error) {
	if rep == nil {
		return nil, fmt.Errorf("nil report")
	}
	return json.MarshalIndent(rep, "", "  ")
}

// HTML renders the report as a self-contained HTML page.
func HTML(rep *screen.Report) (string, error) {
	if rep == nil {
		return "", fmt.Errorf("nil report")
	}
	tmpl, err := template.New("report").Parse(ReportTemplate)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, buildReportData(rep)); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}
	return buf.String(), nil
}

// ════════════════════════════════════════════════════════════════════
// Template data
// ════════════════════════════════════════════════════════════════════

// ReportData holds the preformatted values shared by the text and HTML
// renderers.
type ReportData struct {
	Title       string
	Ticker      string
	Name        string
	Sector      string
	Currency    string
	Source      string
	GeneratedAt string

	Price     string
	Shares    string
	MarketCap string

	FundamentalScore string
	ChecklistPassed  bool
	ChecklistVerdict string
	Checks           []CheckRow
	MoatScore        string
	MoatFactors      string

	Assumptions    string
	ShowValuation  bool
	ValuationError string
	Lines          []ValueRow
	ScheduleRows   []ScheduleRow

	Margin       string
	MarginClass  string
	MarginNote   string
	PriceVerdict string
	Rating      string
	RatingClass string

	Headlines []HeadlineRow
	Warnings  []string

	ScheduleSVG template.HTML
	ScoreSVG    template.HTML
	MoatSVG     template.HTML
}

// CheckRow is one line of the fundamental checklist.
type CheckRow struct {
	Mark   string
	Name   string
	Value  string
	Reason string
	Passed bool
}

// ValueRow is a labelled money amount.
type ValueRow struct {
	Label string
	Value string
}

// ScheduleRow is one forecast year.
type ScheduleRow struct {
	Year       int
	Growth     string
	CashFlow   string
	Discounted string
}

// HeadlineRow is a formatted news item.
type HeadlineRow struct {
	Title string
	URL   string
	Date  string
}

func buildReportData(r *screen.Report) ReportData {
	money := func(v float64) string { return utils.FormatMoney(v, r.Currency) }

	d := ReportData{
		Title:       fmt.Sprintf("%s: Value Screen", r.Ticker),
		Ticker:      r.Ticker,
		Name:        r.Name,
		Sector:      orNA(r.Sector),
		Currency:    orNA(r.Currency),
		Source:      orNA(r.Source),
		GeneratedAt: r.GeneratedAt.Format("02 Jan 2006, 15:04 MST"),
		Price:       "n/a",
		Shares:      "n/a",
		MarketCap:   "n/a",

		FundamentalScore: fmt.Sprintf("%d/%d", r.Fundamentals.Score, r.Fundamentals.Max),
		ChecklistPassed:  r.ChecklistPassed,
		ChecklistVerdict: "Does not meet enough criteria",
		MoatScore:        fmt.Sprintf("%d/%d", r.MoatScore, scoring.MoatMax),
		MoatFactors:      strings.Join(r.Moat.Names(), ", "),

		Assumptions: assumptions(r.Parameters),
		Rating:      string(r.Rating),
		RatingClass: ratingClass(r.Rating),
		Warnings:    r.Warnings,
	}
	if d.MoatFactors == "" {
		d.MoatFactors = "none"
	}
	if r.ChecklistPassed {
		d.ChecklistVerdict = "Meets most value criteria"
	}

	if r.Price != nil {
		d.Price = money(*r.Price)
	}
	if r.SharesOutstanding != nil {
		d.Shares = utils.FormatCompact(*r.SharesOutstanding)
	}
	if r.MarketCap > 0 {
		d.MarketCap = utils.FormatCompact(r.MarketCap)
	}

	for _, c := range r.Fundamentals.Checks {
		row := CheckRow{Name: c.Name, Value: utils.FormatRatio(c.Value), Reason: c.Reason, Passed: c.Passed, Mark: "✗"}
		if c.Passed {
			row.Mark = "✓"
		}
		d.Checks = append(d.Checks, row)
	}

	if v := r.Valuation; v != nil {
		d.ShowValuation = true
		d.Lines = []ValueRow{
			{"Base FCF (3y avg)", money(v.BaseCashFlow)},
			{"PV of forecast", money(v.PresentValueOfForecast)},
			{"Terminal value", money(v.TerminalValue)},
			{"PV of terminal", money(v.PresentValueOfTerminal)},
			{"Intrinsic value", money(v.IntrinsicValue)},
		}
		if r.IntrinsicValuePerShare != nil {
			d.Lines = append(d.Lines, ValueRow{"Per share", money(*r.IntrinsicValuePerShare)})
		}
		for _, p := range v.Schedule {
			d.ScheduleRows = append(d.ScheduleRows, ScheduleRow{
				Year:       p.Year,
				Growth:     fmt.Sprintf("%.2f%%", p.Growth*100),
				CashFlow:   money(p.CashFlow),
				Discounted: money(p.Discounted),
			})
		}
		d.ScheduleSVG = template.HTML(ScheduleChart(v.Schedule, DefaultChartConfig()))
	} else if r.ValuationError != nil {
		d.ValuationError = r.ValuationError.Message
	}

	if r.Margin.Defined {
		d.Margin = utils.FormatPct(r.Margin.Value)
		d.MarginClass = "neg"
		d.PriceVerdict = "Overvalued at the current price"
		if r.Undervalued() {
			d.MarginClass = "pos"
			d.PriceVerdict = "Undervalued at the current price"
		}
	} else {
		d.Margin = "undefined"
		d.MarginClass = "muted"
		if r.MarginError != nil {
			d.MarginNote = r.MarginError.Message
		}
	}

	for _, h := range r.Headlines {
		row := HeadlineRow{Title: h.Title, URL: h.URL}
		if !h.PublishedAt.IsZero() {
			row.Date = h.PublishedAt.Format("02 Jan 2006")
		}
		d.Headlines = append(d.Headlines, row)
	}

	d.ScoreSVG = template.HTML(ScoreGauge(r.Fundamentals.Score, r.Fundamentals.Max, "Fundamentals", 180))
	d.MoatSVG = template.HTML(ScoreGauge(r.MoatScore, scoring.MoatMax, "Moat", 180))
	return d
}

func assumptions(p valuation.Parameters) string {
	growth := fmt.Sprintf("Growth %.2f%%", p.GrowthRateInitial*100)
	if p.SplitYear > 0 {
		growth += fmt.Sprintf(" for %d years, then %.2f%%", p.SplitYear, p.GrowthRateTerminal*100)
	}
	return fmt.Sprintf("%s | Terminal %.2f%% | Discount %.2f%% | %d years",
		growth, p.GrowthRateTerminal*100, p.DiscountRate*100, p.ForecastYears)
}

func ratingClass(r valuation.Rating) string {
	switch r {
	case valuation.RatingExcellent:
		return "excellent"
	case valuation.RatingGood:
		return "good"
	case valuation.RatingAverage:
		return "average"
	default:
		return "avoid"
	}
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "n/a"
	}
	return s
}

// ════════════════════════════════════════════════════════════════════
// Text report
// ════════════════════════════════════════════════════════════════════

// Text renders the report for a terminal.
func Text(rep *screen.Report) string {
	if rep == nil {
		return ""
	}
	d := buildReportData(rep)

	var sb strings.Builder
	line := strings.Repeat("═", 60)
	thinLine := strings.Repeat("─", 60)

	sb.WriteString("\n" + line + "\n")
	sb.WriteString(fmt.Sprintf("  %s\n", d.Title))
	sb.WriteString(fmt.Sprintf("  Generated: %s | Source: %s\n", d.GeneratedAt, d.Source))
	sb.WriteString(line + "\n\n")

	if d.Name != "" {
		sb.WriteString(fmt.Sprintf("  %s (%s)\n", d.Name, d.Ticker))
	}
	sb.WriteString(fmt.Sprintf("  Sector: %s | Currency: %s\n", d.Sector, d.Currency))
	sb.WriteString(fmt.Sprintf("  Price: %s | Shares: %s | Market Cap: %s\n", d.Price, d.Shares, d.MarketCap))
	sb.WriteString(thinLine + "\n")

	sb.WriteString(fmt.Sprintf("\n  ■ FUNDAMENTAL CHECKLIST (%s)\n", d.FundamentalScore))
	for _, c := range d.Checks {
		sb.WriteString(fmt.Sprintf("    [%s] %-16s %8s  %s\n", c.Mark, c.Name, c.Value, c.Reason))
	}
	mark := "✗"
	if d.ChecklistPassed {
		mark = "✓"
	}
	sb.WriteString(fmt.Sprintf("    %s %s\n", mark, d.ChecklistVerdict))
	sb.WriteString(thinLine + "\n")

	sb.WriteString(fmt.Sprintf("\n  ■ ECONOMIC MOAT (%s)\n", d.MoatScore))
	sb.WriteString(fmt.Sprintf("    %s\n", d.MoatFactors))
	sb.WriteString(thinLine + "\n")

	sb.WriteString("\n  ■ DCF VALUATION\n")
	sb.WriteString(fmt.Sprintf("    %s\n", d.Assumptions))
	if d.ShowValuation {
		for _, l := range d.Lines {
			sb.WriteString(fmt.Sprintf("    %-20s %18s\n", l.Label, l.Value))
		}
	} else {
		sb.WriteString(fmt.Sprintf("    Valuation unavailable: %s\n", d.ValuationError))
	}
	sb.WriteString(thinLine + "\n")

	sb.WriteString("\n  ■ MARGIN OF SAFETY\n")
	if d.PriceVerdict != "" {
		sb.WriteString(fmt.Sprintf("    %s (%s)\n", d.Margin, d.PriceVerdict))
	} else {
		sb.WriteString(fmt.Sprintf("    %s\n", d.Margin))
	}
	if d.MarginNote != "" {
		sb.WriteString(fmt.Sprintf("    (%s)\n", d.MarginNote))
	}
	sb.WriteString(thinLine + "\n")

	sb.WriteString(fmt.Sprintf("\n  ★ RATING: %s\n", d.Rating))
	sb.WriteString(thinLine + "\n")

	if len(d.Headlines) > 0 {
		sb.WriteString("\n  ■ HEADLINES\n")
		for _, h := range d.Headlines {
			if h.Date != "" {
				sb.WriteString(fmt.Sprintf("    %s  %s\n", h.Date, h.Title))
			} else {
				sb.WriteString(fmt.Sprintf("    %s\n", h.Title))
			}
		}
		sb.WriteString(thinLine + "\n")
	}

	for _, w := range d.Warnings {
		sb.WriteString(fmt.Sprintf("  ! %s\n", w))
	}

	sb.WriteString("\n" + line + "\n")
	sb.WriteString("  Disclaimer: for educational purposes only. Not financial advice.\n")
	sb.WriteString(line + "\n")

	return sb.String()
}
