package shell

import "github.com/pkordes/companion/internal/domain"

// View is what the content area shows for one tab. Members is the roster
// the view was built from; views own no roster state of their own.
type View struct {
	Tab     domain.Tab      `json:"tab"`
	Label   string          `json:"label"`
	Members []domain.Member `json:"members"`
}

// ViewFunc builds the view for one tab from a read-only copy of the roster.
type ViewFunc func(members []domain.Member) View

// ViewTable maps each tab to its view.
type ViewTable map[domain.Tab]ViewFunc

// DefaultViews returns a table with a plain labelled view for every tab.
func DefaultViews() ViewTable {
	t := make(ViewTable, len(domain.Tabs))
	for _, tab := range domain.Tabs {
		t[tab] = LabelledView(tab)
	}
	return t
}

// LabelledView returns a ViewFunc that reports tab, its label and the roster.
func LabelledView(tab domain.Tab) ViewFunc {
	return func(members []domain.Member) View {
		return View{Tab: tab, Label: tab.Label(), Members: members}
	}
}

// SettingsRow is one line of the settings overlay: an editable name next to
// a read-only avatar.
type SettingsRow struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Color  string `json:"color"`
	Avatar string `json:"avatar"`
}
