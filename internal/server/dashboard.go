package server

import (
	"fmt"
	"html/template"
	"net/http"

	"github.com/prepflow/growth-engine/internal/stats"
)

type dashboardData struct {
	Tests []dashboardTest
}

type dashboardTest struct {
	ID         string
	Name       string
	Confidence string
	Rows       []dashboardRow
}

type dashboardRow struct {
	VariantID    string
	TotalUsers   int
	Conversions  int
	Rate         string
	Revenue      string
	Significance int
	CI           string
	Leading      bool
}

var dashboardTmpl = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>PrepFlow Growth Dashboard</title>
<style>
body{font-family:system-ui,sans-serif;margin:2rem;color:#222}
table{border-collapse:collapse;margin:1rem 0 2rem}
th,td{padding:.4rem .8rem;border-bottom:1px solid #ddd;text-align:left}
.leading{font-weight:600}
.confidence{color:#555;font-size:.9rem}
h2{margin-bottom:0}
</style>
</head>
<body>
<h1>Growth Dashboard</h1>
{{range .Tests}}
<h2>{{.Name}} <small>({{.ID}})</small></h2>
<p class="confidence">{{.Confidence}}</p>
<table>
<tr><th>Variant</th><th>Users</th><th>Conversions</th><th>Rate</th><th>Revenue</th><th>Significance*</th><th>95% CI</th></tr>
{{range .Rows}}
<tr{{if .Leading}} class="leading"{{end}}>
<td>{{.VariantID}}</td><td>{{.TotalUsers}}</td><td>{{.Conversions}}</td>
<td>{{.Rate}}</td><td>{{.Revenue}}</td><td>{{.Significance}}</td><td>{{.CI}}</td>
</tr>
{{end}}
</table>
{{end}}
<p><small>* legacy heuristic score (0-100), not a hypothesis test. The
confidence line above each table is a two-proportion z-test.</small></p>
</body>
</html>`))

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("logout") == "1" {
		http.SetCookie(w, &http.Cookie{Name: tokenCookieName, Value: "", Path: "/", MaxAge: -1})
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}

	var data dashboardData
	for _, t := range s.analytics.Registry().List() {
		results, err := s.analytics.TestResults(t.ID)
		if err != nil {
			continue
		}
		cmp := stats.Compare(results)

		dt := dashboardTest{ID: t.ID, Name: t.Name}
		switch {
		case cmp.Confident:
			dt.Confidence = fmt.Sprintf("%.1f%% confident %q is the winner", cmp.ConfidenceLevel*100, cmp.LeadingVariantID)
		case cmp.ConfidenceLevel >= 0.90:
			dt.Confidence = fmt.Sprintf("%.1f%% confident %q leads (not yet significant)", cmp.ConfidenceLevel*100, cmp.LeadingVariantID)
		default:
			dt.Confidence = "Not enough data to determine a winner"
		}

		for _, res := range results {
			ci := cmp.Intervals[res.VariantID]
			dt.Rows = append(dt.Rows, dashboardRow{
				VariantID:    res.VariantID,
				TotalUsers:   res.TotalUsers,
				Conversions:  res.Conversions,
				Rate:         fmt.Sprintf("%.2f%%", res.ConversionRate),
				Revenue:      fmt.Sprintf("$%.2f", res.Revenue),
				Significance: res.StatisticalSignificance,
				CI:           fmt.Sprintf("[%.1f%%, %.1f%%]", ci.Lower*100, ci.Upper*100),
				Leading:      res.VariantID == cmp.LeadingVariantID,
			})
		}
		data.Tests = append(data.Tests, dt)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTmpl.Execute(w, data); err != nil {
		s.log.WithError(err).Error("dashboard render failed")
	}
}
