package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Sopitive/forgebridge/labels"
	"github.com/Sopitive/forgebridge/stash"
	"github.com/Sopitive/forgebridge/transfer"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#5F87AF")).
			Padding(0, 1)

	itemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#5F87AF"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateMenu modelState = iota
	stateSaveName
	stateSnapshots
	stateConfirmExport
	stateShowResult
)

var menuItems = []string{
	"Import live objects",
	"Export a snapshot",
	"Refresh labels",
	"List snapshots",
}

type interactiveModel struct {
	bridge *transfer.Bridge
	store  *stash.Store

	state    modelState
	selected int
	snapSel  int

	imported  []transfer.Slot
	snapshots []stash.Info
	nameInput textinput.Model

	result string
	err    error
}

type importedMsg struct {
	slots []transfer.Slot
	err   error
}

type labelsMsg struct {
	entries []labels.Entry
	err     error
}

type snapshotsMsg struct {
	infos []stash.Info
	next  modelState
	err   error
}

type doneMsg struct {
	result string
	err    error
}

func newInteractiveModel(bridge *transfer.Bridge, store *stash.Store) *interactiveModel {
	return &interactiveModel{bridge: bridge, store: store, state: stateMenu}
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) doImport() tea.Msg {
	slots, err := m.bridge.Import(0)
	return importedMsg{slots: slots, err: err}
}

func (m *interactiveModel) doLabels() tea.Msg {
	entries, err := m.bridge.RefreshLabels()
	return labelsMsg{entries: entries, err: err}
}

func (m *interactiveModel) loadSnapshots(next modelState) tea.Cmd {
	return func() tea.Msg {
		infos, err := m.store.List()
		return snapshotsMsg{infos: infos, next: next, err: err}
	}
}

func (m *interactiveModel) doSave() tea.Cmd {
	name := strings.TrimSpace(m.nameInput.Value())
	slots := m.imported
	return func() tea.Msg {
		if name == "" {
			return doneMsg{result: "Not saved."}
		}
		recs := transfer.Records(slots)
		if err := m.store.Save(name, recs); err != nil {
			return doneMsg{err: err}
		}
		return doneMsg{result: fmt.Sprintf("Saved snapshot %q (%d records)", name, len(recs))}
	}
}

func (m *interactiveModel) doExport() tea.Cmd {
	name := m.snapshots[m.snapSel].Name
	return func() tea.Msg {
		recs, err := m.store.Load(name)
		if err != nil {
			return doneMsg{err: err}
		}
		res, err := m.bridge.Export(recs)
		if err != nil {
			return doneMsg{err: err}
		}
		out := fmt.Sprintf("Exported %d records from %q", res.Written, name)
		if res.Skipped > 0 {
			out += fmt.Sprintf(" (%d skipped)", res.Skipped)
		}
		return doneMsg{result: out}
	}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateSaveName {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateMenu && m.selected > 0 {
				m.selected--
			}
			if m.state == stateSnapshots && m.snapSel > 0 {
				m.snapSel--
			}

		case "down", "j":
			if m.state == stateMenu && m.selected < len(menuItems)-1 {
				m.selected++
			}
			if m.state == stateSnapshots && m.snapSel < len(m.snapshots)-1 {
				m.snapSel++
			}

		case "enter":
			switch m.state {
			case stateMenu:
				switch m.selected {
				case 0:
					return m, m.doImport
				case 1:
					return m, m.loadSnapshots(stateSnapshots)
				case 2:
					return m, m.doLabels
				case 3:
					return m, m.loadSnapshots(stateShowResult)
				}

			case stateSaveName:
				m.state = stateShowResult
				return m, m.doSave()

			case stateSnapshots:
				if len(m.snapshots) > 0 {
					m.state = stateConfirmExport
				}

			case stateShowResult:
				m.state = stateMenu
				m.result = ""
				m.err = nil
			}

		case "y":
			if m.state == stateConfirmExport {
				m.state = stateShowResult
				return m, m.doExport()
			}

		case "n":
			if m.state == stateConfirmExport {
				m.state = stateMenu
			}

		case "esc":
			switch m.state {
			case stateConfirmExport, stateSnapshots, stateSaveName:
				m.state = stateMenu
			case stateShowResult:
				m.state = stateMenu
				m.result = ""
				m.err = nil
			}
		}

	case importedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = stateShowResult
			return m, nil
		}
		m.imported = msg.slots
		m.nameInput = textinput.New()
		m.nameInput.Placeholder = "snapshot name (empty to skip)"
		m.nameInput.Width = 40
		m.nameInput.Focus()
		m.state = stateSaveName

	case labelsMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			var b strings.Builder
			fmt.Fprintf(&b, "Labels: %d\n", len(msg.entries))
			for _, e := range msg.entries {
				fmt.Fprintf(&b, "  [%3d] %s\n", e.Index, e.Name)
			}
			m.result = b.String()
		}
		m.state = stateShowResult

	case snapshotsMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = stateShowResult
			return m, nil
		}
		m.snapshots = msg.infos
		m.snapSel = 0
		if msg.next == stateShowResult {
			m.result = renderSnapshots(msg.infos)
			m.state = stateShowResult
		} else {
			m.state = stateSnapshots
		}

	case doneMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateSaveName {
		var cmd tea.Cmd
		m.nameInput, cmd = m.nameInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

func renderSnapshots(infos []stash.Info) string {
	if len(infos) == 0 {
		return "No snapshots."
	}
	var b strings.Builder
	for _, info := range infos {
		fmt.Fprintf(&b, "%-24s %4d records  %s\n", info.Name, info.Records,
			info.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return b.String()
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Forge Bridge"))
	b.WriteString("\n\n")

	switch m.state {
	case stateMenu:
		for i, item := range menuItems {
			cursor := "  "
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + item))
			} else {
				b.WriteString(cursor + itemStyle.Render(item))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter run • q quit"))

	case stateSaveName:
		fmt.Fprintf(&b, "Imported %d objects.\n\n", len(m.imported))
		b.WriteString(m.nameInput.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter save • esc skip"))

	case stateSnapshots:
		if len(m.snapshots) == 0 {
			b.WriteString("No snapshots to export.\n\n")
			b.WriteString(helpStyle.Render("esc back"))
			break
		}
		b.WriteString("Select a snapshot to export:\n\n")
		for i, info := range m.snapshots {
			line := fmt.Sprintf("%-24s %4d records", info.Name, info.Records)
			if i == m.snapSel {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + itemStyle.Render(line))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter export • esc back"))

	case stateConfirmExport:
		info := m.snapshots[m.snapSel]
		fmt.Fprintf(&b, "Publish %q (%d records) into the target?\n", info.Name, info.Records)
		b.WriteString("This overwrites every slot in the array.\n\n")
		b.WriteString(helpStyle.Render("y confirm • n cancel"))

	case stateShowResult:
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func runInteractive(bridge *transfer.Bridge, store *stash.Store) error {
	p := tea.NewProgram(newInteractiveModel(bridge, store), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
