package report

// DefaultTemplate is the dashboard page. It only reads the Model, so the
// output depends on nothing but the Model's contents.
const DefaultTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
{{- if gt .RefreshSeconds 0}}
<meta http-equiv="refresh" content="{{.RefreshSeconds}}">
{{- end}}
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; background: #10131a; color: #e6e6e6; margin: 0; padding: 24px; }
h1 { margin: 0 0 4px 0; }
.meta { color: #8a93a6; font-size: 13px; margin-bottom: 20px; }
.cards { display: flex; gap: 12px; flex-wrap: wrap; margin-bottom: 20px; }
.card { background: #1a1f2b; border-radius: 8px; padding: 12px 18px; min-width: 120px; }
.card .n { font-size: 26px; font-weight: 600; }
.card .l { color: #8a93a6; font-size: 12px; text-transform: uppercase; }
.progress { background: #1a1f2b; border-radius: 6px; height: 10px; margin-bottom: 24px; overflow: hidden; }
.progress div { background: #00ff88; height: 100%; }
table { border-collapse: collapse; width: 100%; margin-bottom: 28px; font-size: 14px; }
th, td { padding: 6px 10px; border-bottom: 1px solid #262c3a; text-align: left; }
th { color: #8a93a6; font-weight: 500; }
.completed { color: #00ff88; }
.running { color: #4da6ff; }
.failed { color: #ff4757; }
.pending { color: #8a93a6; }
.positive { color: #ffd700; }
.zero { color: #00ff88; }
.err { color: #ff4757; font-size: 12px; }
.chart { background: #f4f5f7; border-radius: 8px; padding: 8px; margin-bottom: 24px; display: inline-block; }
.no-data { color: #8a93a6; font-style: italic; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="meta">Output: {{.OutputDir}} &middot; Updated {{stamp .}}</div>

<div class="cards">
  <div class="card"><div class="n">{{.Totals.Total}}</div><div class="l">Total</div></div>
  <div class="card"><div class="n completed">{{.Totals.Completed}}</div><div class="l">Completed</div></div>
  <div class="card"><div class="n running">{{.Totals.Running}}</div><div class="l">Running</div></div>
  <div class="card"><div class="n failed">{{.Totals.Failed}}</div><div class="l">Failed</div></div>
  <div class="card"><div class="n pending">{{.Totals.Pending}}</div><div class="l">Pending</div></div>
</div>
<div class="progress"><div style="width: {{pct .Totals.Progress}}%"></div></div>

{{- if .Processes}}
<h2>Active Simulations</h2>
<table>
<tr><th>PID</th><th>CPU %</th><th>Mem %</th><th>Output</th></tr>
{{- range .Processes}}
<tr><td>{{.PID}}</td><td>{{.CPU}}</td><td>{{.Mem}}</td><td>{{base .OutDir}}</td></tr>
{{- end}}
</table>
{{- end}}

{{- if .Charts}}
<h2>Overhead</h2>
{{- range .Charts}}
<h3>{{.Benchmark}}</h3>
<div class="chart">{{chart .}}</div>
{{- end}}
{{- end}}

{{- range .Groups}}
<h2>{{.Title}} <span class="meta">({{.Completed}}/{{.Total}} completed)</span></h2>
<table>
<tr><th>Latency</th><th>Status</th><th>Sim Time</th><th>Overhead</th><th>Validations</th><th>Cache Hit Rate</th></tr>
{{- range .Rows}}
<tr>
<td>{{.LatencyLabel}}</td>
<td class="{{.Status}}">{{.Status}}{{if .Error}}<div class="err">{{.Error}}</div>{{end}}</td>
<td>{{.SimTime}}</td>
<td class="{{.OverheadClass}}">{{.Overhead}}</td>
<td>{{.Validations}}</td>
<td>{{.CacheRate}}</td>
</tr>
{{- end}}
</table>
{{- end}}

<h2>Results</h2>
{{- if .Results}}
<table>
<tr><th>Benchmark</th><th>Latency</th><th>Sim Time</th><th>Ticks</th><th>Overhead</th><th>Validations</th><th>Cache Hit Rate</th></tr>
{{- range .Results}}
<tr>
<td>{{.Benchmark}}</td>
<td>{{.LatencyLabel}}</td>
<td>{{.SimTime}}</td>
<td>{{.Ticks}}</td>
<td class="{{.OverheadClass}}">{{.Overhead}}</td>
<td>{{.Validations}}</td>
<td>{{.CacheRate}}</td>
</tr>
{{- end}}
</table>
{{- else}}
<div class="no-data">No completed experiments yet.</div>
{{- end}}
</body>
</html>
`
