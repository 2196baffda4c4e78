package report

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/user/registry-watch/pkg/types"
)

// HTMLFormatter renders the state collection as a standalone HTML page.
type HTMLFormatter struct{}

// Format implements ReportFormatter.
func (f HTMLFormatter) Format(states []types.ImageState) (string, error) {
	var sb strings.Builder

	sb.WriteString(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Registry Watch Report</title>
    <style>
        body { background: #0d1117; color: #c9d1d9; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Helvetica, Arial, sans-serif; margin: 2rem; }
        table { border-collapse: collapse; width: 100%; }
        th, td { border: 1px solid #30363d; padding: 0.5rem 0.75rem; text-align: left; }
        th { background: #161b22; }
        .update { color: #d29922; font-weight: bold; }
        .ok { color: #238636; }
        .dismissed { color: #8b949e; }
        .meta { color: #8b949e; font-size: 0.85rem; margin-bottom: 1rem; }
    </style>
</head>
<body>
`)

	updates := 0
	for _, st := range states {
		if st.HasUpdate {
			updates++
		}
	}

	sb.WriteString("    <h1>Registry Watch Report</h1>\n")
	sb.WriteString(fmt.Sprintf("    <p class=\"meta\">Generated %s — %d images, %d with updates</p>\n",
		time.Now().Format("2006-01-02 15:04:05"), len(states), updates))

	sb.WriteString("    <table>\n        <tr><th>Image</th><th>Tag</th><th>Status</th><th>Newest</th><th>Checked</th></tr>\n")
	for _, st := range states {
		sb.WriteString("        <tr>")
		sb.WriteString(fmt.Sprintf("<td>%s</td>", html.EscapeString(st.Image)))
		sb.WriteString(fmt.Sprintf("<td>%s</td>", html.EscapeString(st.Tag)))
		sb.WriteString(fmt.Sprintf("<td class=%q>%s</td>", statusClass(st), statusText(st)))
		sb.WriteString(fmt.Sprintf("<td>%s</td>", html.EscapeString(newestText(st))))
		sb.WriteString(fmt.Sprintf("<td>%s</td>", st.CheckedAt.Format("2006-01-02 15:04")))
		sb.WriteString("</tr>\n")
	}
	sb.WriteString("    </table>\n</body>\n</html>\n")

	return sb.String(), nil
}

// FormatName implements ReportFormatter.
func (f HTMLFormatter) FormatName() string {
	return "html"
}

func statusClass(st types.ImageState) string {
	switch {
	case st.Dismissed:
		return "dismissed"
	case st.HasUpdate:
		return "update"
	default:
		return "ok"
	}
}

func statusText(st types.ImageState) string {
	switch {
	case st.Dismissed:
		return "dismissed"
	case st.HasUpdate:
		return "update available"
	case st.CurrentContentID == "":
		return "never checked"
	default:
		return "up to date"
	}
}

func newestText(st types.ImageState) string {
	if st.LatestAvailableVersion != "" {
		return st.LatestAvailableVersion
	}
	if st.RepresentativeTag != "" {
		return st.RepresentativeTag
	}
	return "-"
}
