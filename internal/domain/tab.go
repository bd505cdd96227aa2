package domain

import "fmt"

// Tab identifies one of the four top-level views.
type Tab string

const (
	TabSchedule Tab = "SCHEDULE"
	TabExpense  Tab = "EXPENSE"
	TabPlanning Tab = "PLANNING"
	TabJournal  Tab = "JOURNAL"
)

// Tabs lists every tab in navigation order.
var Tabs = []Tab{TabSchedule, TabExpense, TabPlanning, TabJournal}

var tabLabels = map[Tab]string{
	TabSchedule: "行程",
	TabExpense:  "記帳",
	TabPlanning: "清單",
	TabJournal:  "日誌",
}

// Label returns the navigation label shown for t.
func (t Tab) Label() string {
	return tabLabels[t]
}

// Valid reports whether t is one of the four known tabs.
func (t Tab) Valid() bool {
	_, ok := tabLabels[t]
	return ok
}

// ParseTab converts s into a Tab.
// Returns ErrValidation for anything other than the four known values.
func ParseTab(s string) (Tab, error) {
	t := Tab(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown tab %q", ErrValidation, s)
	}
	return t, nil
}
