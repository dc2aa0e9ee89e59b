package formatting

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	pkgstrings "realmauth/pkg/strings"
)

const noAccessesMessage = "No accesses available."

// Accesses writes rows to w in the format selected by opts.
func Accesses(w io.Writer, rows []Row, opts Options) error {
	switch opts.Format {
	case FormatJSON:
		return writeJSON(w, rows)
	case FormatYAML:
		return writeYAML(w, rows)
	case FormatTemplate:
		return writeTemplate(w, rows, opts.Template)
	case FormatTable, "":
		writeAccessTable(w, rows, opts)
		return nil
	default:
		return fmt.Errorf("unsupported output format %q", opts.Format)
	}
}

func writeAccessTable(w io.Writer, rows []Row, opts Options) {
	if len(rows) == 0 {
		msg := noAccessesMessage
		if opts.Color {
			msg = text.FgYellow.Sprint(msg)
		}
		fmt.Fprintln(w, msg)
		return
	}

	t := createTable(w)
	if !opts.NoHeaders {
		headers := table.Row{"ACTIVE", "ID", "REALM", "TENANT", "TYPE", "STATUS"}
		if opts.Color {
			for i, h := range headers {
				headers[i] = text.FgHiCyan.Sprint(h)
			}
		}
		t.AppendHeader(headers)
	}

	for _, row := range rows {
		marker := ""
		if row.Active {
			marker = "*"
			if opts.Color {
				marker = text.FgGreen.Sprint(marker)
			}
		}
		t.AppendRow(table.Row{
			marker,
			row.ID,
			nameOrID(row.Access.Realm.Name(), row.Access.Realm.RealmID),
			nameOrID(row.Access.Tenant.Name(), row.Access.Tenant.TenantID),
			tenantTypeLabel(row.Access),
			accessStatus(row.Access),
		})
	}
	t.Render()
}

// createTable creates a new table with the standard style.
func createTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}

func nameOrID(name, id string) string {
	if name != "" {
		return pkgstrings.Truncate(name, pkgstrings.DefaultNameMaxLen)
	}
	return id
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return enc.Close()
}

// ParseTemplate parses tmpl with the sprig text function map.
func ParseTemplate(tmpl string) (*template.Template, error) {
	if strings.TrimSpace(tmpl) == "" {
		return nil, fmt.Errorf("template output requires a template")
	}
	t, err := template.New("output").Funcs(sprig.TxtFuncMap()).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return nil, fmt.Errorf("invalid template: %w", err)
	}
	return t, nil
}

// writeTemplate executes tmpl once per row. Each execution is terminated by
// a newline unless the template already ends with one.
func writeTemplate(w io.Writer, rows []Row, tmpl string) error {
	t, err := ParseTemplate(tmpl)
	if err != nil {
		return err
	}
	var buf strings.Builder
	for _, row := range rows {
		buf.Reset()
		if err := t.Execute(&buf, row); err != nil {
			return fmt.Errorf("failed to execute template for %s: %w", row.ID, err)
		}
		out := buf.String()
		if !strings.HasSuffix(out, "\n") {
			out += "\n"
		}
		if _, err := io.WriteString(w, out); err != nil {
			return err
		}
	}
	return nil
}
