package compose

import (
	"html"
	"strings"

	"github.com/nextbit-dev/storelift/internal/models"
)

// RenderSpecTable renders one row per (name, value) pair with both fields
// non-empty, all text escaped. Zero qualifying rows yields "" so callers
// can feed the absence back into the enrichment gate instead of shipping an
// empty table.
func RenderSpecTable(set models.SpecificationSet) string {
	var rows []string
	for _, entry := range set {
		name := strings.TrimSpace(entry.Name)
		value := strings.TrimSpace(entry.Value)
		if name == "" || value == "" {
			continue
		}
		if entry.Unit != "" && !strings.Contains(value, entry.Unit) {
			value = value + " " + entry.Unit
		}
		rows = append(rows,
			"<tr><th>"+html.EscapeString(name)+"</th><td>"+html.EscapeString(value)+"</td></tr>")
	}
	if len(rows) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("<table class=\"storelift-specs\">\n<tbody>\n")
	for _, row := range rows {
		b.WriteString(row)
		b.WriteString("\n")
	}
	b.WriteString("</tbody>\n</table>")
	return b.String()
}
