// Package tui is the terminal client of the trip companion: a header, the
// active tab's content, a bottom navigation bar and the settings overlay,
// all drawn from a shell.
package tui

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pkordes/companion/internal/domain"
	"github.com/pkordes/companion/internal/shell"
)

// Controller is the part of *shell.Shell the terminal client drives.
type Controller interface {
	State() shell.State
	Render() shell.View
	SettingsRows() []shell.SettingsRow
	SwitchTab(tab domain.Tab) error
	OpenSettings()
	CloseSettings()
	RenameAsync(id, name string)
}

// RefreshMsg tells the model the shell changed. It carries no state: the
// model reads a fresh copy, so refreshes may arrive in any order.
type RefreshMsg struct{}

// Notifier forwards shell changes to a program attached after the shell
// is built. Changes before Attach are dropped.
type Notifier struct {
	p atomic.Pointer[tea.Program]
}

// Attach starts forwarding to p.
func (n *Notifier) Attach(p *tea.Program) { n.p.Store(p) }

// Hook is a shell change hook. Send runs on its own goroutine so the shell
// never blocks on the UI.
func (n *Notifier) Hook(shell.State) {
	if p := n.p.Load(); p != nil {
		go p.Send(RefreshMsg{})
	}
}

// Model is the Bubble Tea model. Construct it with New.
type Model struct {
	ctrl Controller

	state shell.State
	view  shell.View
	rows  []shell.SettingsRow

	// settings overlay
	cursor  int
	editID  string
	ti      textinput.Model // shared name input, bound to the selected row
	lastErr string

	width int
}

// New returns a model showing ctrl's current state.
func New(ctrl Controller) Model {
	m := Model{ctrl: ctrl}
	m.ti = textinput.New()
	m.ti.Prompt = "> "
	m.ti.Placeholder = "name"
	m.ti.CharLimit = 0 // unlimited; a stored name must never be cut on select
	m.refresh()
	return m
}

// Init asks for one refresh so state that changed before the program
// started is picked up.
func (m Model) Init() tea.Cmd {
	return func() tea.Msg { return RefreshMsg{} }
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch x := msg.(type) {
	case RefreshMsg:
		m.refresh()
		return m, nil
	case tea.WindowSizeMsg:
		m.width = x.Width
		return m, nil
	case tea.KeyMsg:
		if m.state.SettingsOpen {
			return m.updateSettings(x)
		}
		return m.updateMain(x)
	}
	return m, nil
}

func (m Model) updateMain(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "1", "2", "3", "4":
		m.switchTo(domain.Tabs[int(k.String()[0]-'1')])
	case "tab":
		m.switchTo(domain.Tabs[(tabIndex(m.state.ActiveTab)+1)%len(domain.Tabs)])
	case "shift+tab":
		m.switchTo(domain.Tabs[(tabIndex(m.state.ActiveTab)+len(domain.Tabs)-1)%len(domain.Tabs)])
	case "s":
		m.ctrl.OpenSettings()
		m.refresh()
		m.cursor = 0
		return m, m.selectRow()
	}
	return m, nil
}

func (m Model) updateSettings(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc", "enter":
		m.ti.Blur()
		m.editID = ""
		m.ctrl.CloseSettings()
		m.refresh()
		return m, nil
	case "up":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, m.selectRow()
	case "down":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
		return m, m.selectRow()
	}

	if m.editID == "" {
		return m, nil
	}
	before := m.ti.Value()
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(k)
	if v := m.ti.Value(); v != before {
		m.ctrl.RenameAsync(m.editID, v)
	}
	return m, cmd
}

// selectRow binds the name input to the row under the cursor.
func (m *Model) selectRow() tea.Cmd {
	if len(m.rows) == 0 {
		m.editID = ""
		m.ti.Blur()
		return nil
	}
	m.cursor = min(m.cursor, len(m.rows)-1)
	row := m.rows[m.cursor]
	m.editID = row.ID
	m.ti.SetValue(row.Name)
	m.ti.CursorEnd()
	return m.ti.Focus()
}

func (m *Model) switchTo(tab domain.Tab) {
	if err := m.ctrl.SwitchTab(tab); err != nil {
		m.lastErr = err.Error()
	}
	m.refresh()
}

// refresh copies the shell's state. The text of the row being edited is
// left alone so a late snapshot does not overwrite what is being typed.
func (m *Model) refresh() {
	m.state = m.ctrl.State()
	m.view = m.ctrl.Render()
	m.rows = m.ctrl.SettingsRows()
	if m.state.Status.LastError != "" {
		m.lastErr = m.state.Status.LastError
	}
	if m.state.SettingsOpen && m.editID != "" && rowIndex(m.rows, m.editID) < 0 {
		m.cursor = 0
		m.selectRow()
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n\n")
	if m.state.SettingsOpen {
		b.WriteString(m.settingsView())
	} else {
		b.WriteString(m.contentView())
	}
	b.WriteString("\n\n")
	b.WriteString(m.navView())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	return b.String()
}

func (m Model) header() string {
	conn := pendingStyle.Render("○ offline")
	if m.state.Status.Connected {
		conn = successStyle.Render("● live")
	}
	if m.state.Status.Seeding {
		conn = pendingStyle.Render("◌ seeding")
	}
	return fmt.Sprintf("%s   %s", titleStyle.Render("Trip Companion"), conn)
}

func (m Model) contentView() string {
	lines := []string{labelStyle.Render(m.view.Label)}
	if len(m.view.Members) == 0 {
		lines = append(lines, mutedStyle.Render("waiting for members…"))
	}
	avatars := make([]string, 0, len(m.view.Members))
	for _, mem := range m.view.Members {
		avatars = append(avatars, memberStyle(mem.Color).Render("● "+mem.Name))
	}
	if len(avatars) > 0 {
		lines = append(lines, strings.Join(avatars, "  "))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) settingsView() string {
	lines := []string{labelStyle.Render("Members")}
	for i, row := range m.rows {
		name := memberStyle(row.Color).Render(row.Name)
		if i == m.cursor && row.ID == m.editID {
			name = m.ti.View()
		}
		prefix := "  "
		if i == m.cursor {
			prefix = selectedStyle.Render(">") + " "
		}
		lines = append(lines, fmt.Sprintf("%s%-4s %s  %s", prefix, row.ID, name, mutedStyle.Render(row.Avatar)))
	}
	lines = append(lines, "", helpStyle.Render("↑/↓ select · type to rename · esc close"))
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) navView() string {
	items := make([]string, len(domain.Tabs))
	for i, tab := range domain.Tabs {
		label := fmt.Sprintf("%d %s", i+1, tab.Label())
		if tab == m.state.ActiveTab {
			items[i] = navActiveStyle.Render(label)
		} else {
			items[i] = navStyle.Render(label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, items...)
}

func (m Model) statusLine() string {
	if m.lastErr != "" {
		return errorStyle.Render("✖ " + m.lastErr)
	}
	return helpStyle.Render("1-4/tab switch · s settings · q quit")
}

func tabIndex(t domain.Tab) int {
	for i, tab := range domain.Tabs {
		if tab == t {
			return i
		}
	}
	return 0
}

func rowIndex(rows []shell.SettingsRow, id string) int {
	for i, r := range rows {
		if r.ID == id {
			return i
		}
	}
	return -1
}
