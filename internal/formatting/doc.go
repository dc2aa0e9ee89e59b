// Package formatting renders access contexts and store status for the CLI
// and the interactive shell.
//
// Accesses supports four output formats: a go-pretty table, JSON, YAML, and
// a Go template with the sprig function library. Templates are executed once
// per access with a Row as data:
//
//	{{ .ID }} {{ .Access.Realm.Data.Spec.Name | upper }}{{ if .Active }} *{{ end }}
package formatting
