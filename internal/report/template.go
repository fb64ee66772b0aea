package report

// ReportTemplate is the HTML template for a screening report.
const ReportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
  :root {
    --bg: #ffffff;
    --text: #1a1a2e;
    --muted: #6b7280;
    --border: #e5e7eb;
    --accent: #2563eb;
    --green: #16a34a;
    --red: #dc2626;
    --section-bg: #f8fafc;
  }
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
    color: var(--text);
    background: var(--bg);
    line-height: 1.6;
    max-width: 900px;
    margin: 0 auto;
    padding: 20px;
  }
  h1 { font-size: 1.5rem; margin-bottom: 4px; color: var(--accent); }
  h2 { font-size: 1.2rem; margin: 24px 0 12px; padding-bottom: 6px; border-bottom: 2px solid var(--accent); }
  .muted { color: var(--muted); font-size: 0.85rem; }
  .pos { color: var(--green); }
  .neg { color: var(--red); }

  .header {
    display: flex;
    justify-content: space-between;
    align-items: flex-start;
    border-bottom: 3px solid var(--accent);
    padding-bottom: 12px;
    margin-bottom: 16px;
  }
  .header-right { text-align: right; }
  .ticker-badge {
    display: inline-block;
    background: var(--accent);
    color: white;
    padding: 2px 12px;
    border-radius: 4px;
    font-weight: 700;
    margin-right: 8px;
  }

  .quote-bar {
    display: grid;
    grid-template-columns: repeat(auto-fill, minmax(140px, 1fr));
    gap: 8px;
    background: var(--section-bg);
    padding: 12px;
    border-radius: 8px;
  }
  .quote-item { text-align: center; }
  .quote-item .label { font-size: 0.75rem; color: var(--muted); text-transform: uppercase; }
  .quote-item .value { font-size: 1rem; font-weight: 600; }

  .rating-box { padding: 16px; border-radius: 8px; margin: 12px 0; font-size: 1.4rem; font-weight: 700; }
  .rating-box.excellent { background: #dcfce7; border-left: 5px solid var(--green); color: var(--green); }
  .rating-box.good { background: #ecfdf5; border-left: 5px solid #22c55e; color: #22c55e; }
  .rating-box.average { background: #fefce8; border-left: 5px solid #eab308; color: #a16207; }
  .rating-box.avoid { background: #fef2f2; border-left: 5px solid var(--red); color: var(--red); }

  table { width: 100%; border-collapse: collapse; margin: 8px 0 16px; font-size: 0.9rem; }
  th { background: var(--section-bg); text-align: left; padding: 8px; font-weight: 600; }
  td { padding: 8px; border-bottom: 1px solid var(--border); }
  td.num { text-align: right; font-variant-numeric: tabular-nums; }

  .gauges { display: flex; gap: 24px; }
  .chart-container { margin: 12px 0; overflow-x: auto; }
  .chart-container svg { max-width: 100%; height: auto; }
  .section-summary { background: var(--section-bg); padding: 12px; border-radius: 6px; margin: 8px 0; }

  .footer {
    margin-top: 30px;
    padding-top: 12px;
    border-top: 2px solid var(--border);
    font-size: 0.8rem;
    color: var(--muted);
    text-align: center;
  }
</style>
</head>
<body>

<!-- ═══════ HEADER ═══════ -->
<div class="header">
  <div>
    <h1><span class="ticker-badge">{{.Ticker}}</span> {{.Name}}</h1>
    <p class="muted">{{.Sector}} · {{.Currency}}</p>
  </div>
  <div class="header-right">
    <p class="muted">{{.GeneratedAt}}</p>
    <p class="muted">Source: {{.Source}}</p>
  </div>
</div>

<div class="quote-bar">
  <div class="quote-item"><div class="label">Price</div><div class="value">{{.Price}}</div></div>
  <div class="quote-item"><div class="label">Shares</div><div class="value">{{.Shares}}</div></div>
  <div class="quote-item"><div class="label">Market Cap</div><div class="value">{{.MarketCap}}</div></div>
  <div class="quote-item"><div class="label">Margin of Safety</div><div class="value {{.MarginClass}}">{{.Margin}}</div></div>
</div>

<div class="rating-box {{.RatingClass}}">{{.Rating}}</div>
{{if .PriceVerdict}}<p class="{{.MarginClass}}">{{.PriceVerdict}}</p>{{end}}

<!-- ═══════ SCORES ═══════ -->
<div class="section">
  <h2>Fundamentals &amp; Moat</h2>
  <div class="gauges">{{.ScoreSVG}}{{.MoatSVG}}</div>
  <table>
    <thead><tr><th></th><th>Check</th><th>Value</th><th>Result</th></tr></thead>
    <tbody>
    {{range .Checks}}
    <tr>
      <td class="{{if .Passed}}pos{{else}}neg{{end}}">{{.Mark}}</td>
      <td>{{.Name}}</td>
      <td class="num">{{.Value}}</td>
      <td>{{.Reason}}</td>
    </tr>
    {{end}}
    </tbody>
  </table>
  <p class="{{if .ChecklistPassed}}pos{{else}}neg{{end}}"><strong>{{.ChecklistVerdict}}</strong></p>
  <p>Moat factors: {{.MoatFactors}}</p>
</div>

<!-- ═══════ VALUATION ═══════ -->
<div class="section">
  <h2>Discounted Cash Flow</h2>
  <div class="section-summary">{{.Assumptions}}</div>
  {{if .ShowValuation}}
  <table>
    <tbody>
    {{range .Lines}}
    <tr><td>{{.Label}}</td><td class="num">{{.Value}}</td></tr>
    {{end}}
    </tbody>
  </table>
  <div class="chart-container">{{.ScheduleSVG}}</div>
  <table>
    <thead><tr><th>Year</th><th>Growth</th><th>Cash flow</th><th>Present value</th></tr></thead>
    <tbody>
    {{range .ScheduleRows}}
    <tr><td>{{.Year}}</td><td class="num">{{.Growth}}</td><td class="num">{{.CashFlow}}</td><td class="num">{{.Discounted}}</td></tr>
    {{end}}
    </tbody>
  </table>
  {{else}}
  <p class="neg">Valuation unavailable: {{.ValuationError}}</p>
  {{end}}
  {{if .MarginNote}}<p class="muted">Margin of safety undefined: {{.MarginNote}}</p>{{end}}
</div>

{{if .Headlines}}
<!-- ═══════ HEADLINES ═══════ -->
<div class="section">
  <h2>Headlines</h2>
  <ul>
  {{range .Headlines}}
    <li>{{if .Date}}<span class="muted">{{.Date}}</span> {{end}}<a href="{{.URL}}">{{.Title}}</a></li>
  {{end}}
  </ul>
</div>
{{end}}

{{if .Warnings}}
<div class="section muted">
  {{range .Warnings}}<p>{{.}}</p>{{end}}
</div>
{{end}}

<!-- ═══════ FOOTER ═══════ -->
<div class="footer">
  <p><strong>Disclaimer:</strong> for educational purposes only. Not financial advice.</p>
  <p>Generated on {{.GeneratedAt}}</p>
</div>

</body>
</html>`
