package api

// dashboardTemplate renders the pull statistics table. Deltas already clamp
// to zero upstream, so the template displays values as-is.
const dashboardTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Docker Hub Pulls</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.4em 0.8em; text-align: right; }
th:first-child, td:first-child { text-align: left; }
</style>
</head>
<body>
<h1>Docker Hub Pulls</h1>
<table>
<tr><th>Repository</th><th>Total</th><th>1 day</th><th>7 days</th><th>30 days</th></tr>
{{range .Stats}}
<tr>
<td>{{.Org}}/{{.Repo}}</td>
<td>{{.TotalPulls}}</td>
<td>{{.OneDayPulls}}</td>
<td>{{.SevenDayPulls}}</td>
<td>{{.ThirtyDayPulls}}</td>
</tr>
{{end}}
</table>
</body>
</html>
`
