package formatting

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"realmauth/pkg/realmauth"
)

// StatusView is the machine-readable form of the store status.
type StatusView struct {
	IsAuthenticated  bool   `json:"isAuthenticated" yaml:"isAuthenticated"`
	IsAuthenticating bool   `json:"isAuthenticating" yaml:"isAuthenticating"`
	ActiveAccess     string `json:"activeAccess,omitempty" yaml:"activeAccess,omitempty"`
	ActiveName       string `json:"activeName,omitempty" yaml:"activeName,omitempty"`
	Accesses         int    `json:"accesses" yaml:"accesses"`
}

// NewStatusView summarizes state. A nil id uses realmauth.DefaultAccessID.
func NewStatusView(state realmauth.State, id realmauth.IDFunc) StatusView {
	if id == nil {
		id = realmauth.DefaultAccessID
	}
	view := StatusView{
		IsAuthenticated:  state.IsAuthenticated,
		IsAuthenticating: state.IsAuthenticating,
		Accesses:         state.Context.Len(),
	}
	if state.ActiveAccess != nil {
		view.ActiveAccess = id(*state.ActiveAccess)
		view.ActiveName = state.ActiveAccess.DisplayName()
	}
	return view
}

// Status writes the status summary. Template output is not supported for
// status and falls back to the table.
func Status(w io.Writer, view StatusView, opts Options) error {
	switch opts.Format {
	case FormatJSON:
		return writeJSON(w, view)
	case FormatYAML:
		return writeYAML(w, view)
	}

	active := "none"
	if view.ActiveAccess != "" {
		active = fmt.Sprintf("%s (%s)", view.ActiveAccess, view.ActiveName)
	}

	t := createTable(w)
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false
	t.Style().Options.SeparateRows = false
	for _, row := range []table.Row{
		{"Authenticated", yesNo(view.IsAuthenticated, opts.Color)},
		{"Authenticating", yesNo(view.IsAuthenticating, opts.Color)},
		{"Active access", active},
		{"Accesses", view.Accesses},
	} {
		t.AppendRow(row)
	}
	t.Render()
	return nil
}

func yesNo(b bool, color bool) string {
	if !b {
		if color {
			return text.FgRed.Sprint("no")
		}
		return "no"
	}
	if color {
		return text.FgGreen.Sprint("yes")
	}
	return "yes"
}
