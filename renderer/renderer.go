// Package renderer turns ledger reports into markdown strings, ready to be
// printed raw or through a terminal markdown renderer.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/ezhou/ledger"
)

//go:embed templates/*.md
var templates embed.FS

// Accounts renders the full account listing to a markdown table.
func Accounts(summaries []ledger.Summary) string {
	return renderTemplate("accounts", "templates/accounts.md", data{
		"Summaries": summaries,
	})
}

// ExpiryReport renders the expiry scan result.
func ExpiryReport(r *ledger.ExpiryReport) string {
	return renderTemplate("expiring", "templates/expiring.md", data{
		"Report":   r,
		"AllClear": len(r.Expired) == 0 && len(r.Expiring) == 0,
	})
}

// SyncStatus renders the remote sync state.
func SyncStatus(s ledger.SyncStatus) string {
	return renderTemplate("syncstatus", "templates/syncstatus.md", data{
		"Status": s,
	})
}

type data map[string]any

var funcs = template.FuncMap{
	"mark": func(b bool) string {
		if b {
			return "yes"
		}
		return "no"
	},
	"orDash": func(s string) string {
		if s == "" {
			return "-"
		}
		return s
	},
}

// renderTemplate renders one embedded template over the given data.
func renderTemplate(name, file string, data any) string {
	content, err := fs.ReadFile(templates, file)
	if err != nil {
		return fmt.Sprintf("error reading template %q: %v", file, err)
	}
	tmpl, err := template.New(name).Funcs(funcs).Parse(string(content))
	if err != nil {
		return fmt.Sprintf("error parsing template %q: %v", file, err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", name, err)
	}
	return b.String()
}
