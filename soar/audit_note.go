package soar

import (
	"strings"

	"aegis/core"
)

// RenderAuditTrail renders a case's audit trail as simple HTML for case
// management notes: rows with errors in red, rows with warnings in orange,
// clean rows in green.
func RenderAuditTrail(cf *core.CaseFile) string {
	var b strings.Builder
	for _, row := range cf.AuditTrail {
		switch {
		case row.HadErrors:
			b.WriteString("<p style='color:red'>")
		case row.HadWarnings:
			b.WriteString("<p style='color:orange'>")
		default:
			b.WriteString("<p style='color:green'>")
		}
		b.WriteString(strings.ReplaceAll(row.String(), "\n", "<br>"))
		b.WriteString("</p><br>")
	}
	return b.String()
}
