// Package html renders the operator dashboard page.
package html

import (
	"fmt"
	"strings"
	"time"

	"github.com/AtRiskMedia/pulsetrack-go/config"
	"github.com/AtRiskMedia/pulsetrack-go/models"
)

// RenderDashboard builds the auto-refreshing dashboard page for a snapshot.
// The page is self-contained; refresh cadence comes from config.
func RenderDashboard(snapshot models.AnalyticsSnapshot) string {
	var b strings.Builder

	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("<meta charset=\"utf-8\">\n")
	b.WriteString(fmt.Sprintf("<meta http-equiv=\"refresh\" content=\"%d\">\n", config.DashboardRefreshSecs))
	b.WriteString("<title>PulseTrack Dashboard</title>\n")
	b.WriteString("<style>\n")
	b.WriteString("body{font-family:system-ui,sans-serif;margin:2rem;background:#fafafa;color:#222}\n")
	b.WriteString(".cards{display:flex;gap:1rem;flex-wrap:wrap}\n")
	b.WriteString(".card{background:#fff;border:1px solid #ddd;border-radius:8px;padding:1rem 1.5rem;min-width:10rem}\n")
	b.WriteString(".card h2{margin:0;font-size:2rem}\n")
	b.WriteString(".card p{margin:0.25rem 0 0;color:#666}\n")
	b.WriteString("table{border-collapse:collapse;margin-top:1.5rem;background:#fff}\n")
	b.WriteString("th,td{border:1px solid #ddd;padding:0.4rem 0.9rem;text-align:right}\n")
	b.WriteString("th:first-child,td:first-child{text-align:left}\n")
	b.WriteString("</style>\n</head>\n<body>\n")

	b.WriteString("<h1>PulseTrack</h1>\n")
	b.WriteString("<div class=\"cards\">\n")
	b.WriteString(renderCard(fmt.Sprintf("%d", snapshot.TotalEntries), "total entries"))
	b.WriteString(renderCard(fmt.Sprintf("%d", snapshot.TotalUsers), "total users"))
	b.WriteString(renderCard(fmt.Sprintf("%d", snapshot.ActiveUsers), "active now"))
	b.WriteString(renderCard(fmt.Sprintf("%d", snapshot.Today.Entries), "entries today"))
	b.WriteString(renderCard(fmt.Sprintf("%d", snapshot.Today.UniqueUsers), "users today"))
	b.WriteString("</div>\n")

	b.WriteString("<table>\n<tr><th>Day</th><th>Entries</th><th>Unique users</th></tr>\n")
	for _, day := range snapshot.RecentStats {
		b.WriteString(fmt.Sprintf("<tr><td>%s</td><td>%d</td><td>%d</td></tr>\n",
			day.Date, day.Entries, day.UniqueUsers))
	}
	b.WriteString("</table>\n")

	generatedAt := time.UnixMilli(snapshot.Timestamp).Format("2006-01-02 15:04:05")
	b.WriteString(fmt.Sprintf("<p>Generated %s &middot; refreshes every %ds</p>\n",
		generatedAt, config.DashboardRefreshSecs))

	b.WriteString("</body>\n</html>\n")
	return b.String()
}

func renderCard(value, label string) string {
	return fmt.Sprintf("<div class=\"card\"><h2>%s</h2><p>%s</p></div>\n", value, label)
}
