package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/wippyai/contract-sdk/spec"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	kindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	entryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type entryInfo struct {
	kind   string
	name   string
	detail []string
}

type browserModel struct {
	source   string
	entries  []entryInfo
	visible  []int
	filter   textinput.Model
	selected int
}

func newBrowserModel(s *spec.Spec, source string) *browserModel {
	filter := textinput.New()
	filter.Placeholder = "filter entries"
	filter.Focus()

	m := &browserModel{source: source, filter: filter}
	for _, e := range s.Entries() {
		m.entries = append(m.entries, describeEntry(e))
	}
	m.refilter()
	return m
}

func describeEntry(e spec.Entry) entryInfo {
	switch e := e.(type) {
	case spec.FunctionEntry:
		return entryInfo{kind: "fn", name: e.Name, detail: []string{spec.Signature(e)}}
	case spec.StructEntry:
		lines := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			lines = append(lines, fmt.Sprintf("%s: %s", f.Name, f.Type))
		}
		return entryInfo{kind: "struct", name: e.Name, detail: lines}
	case spec.UnionEntry:
		lines := make([]string, 0, len(e.Cases))
		for _, c := range e.Cases {
			if c.Payload == nil {
				lines = append(lines, c.Name)
			} else {
				lines = append(lines, fmt.Sprintf("%s(%s)", c.Name, c.Payload))
			}
		}
		return entryInfo{kind: "union", name: e.Name, detail: lines}
	case spec.EnumEntry:
		return entryInfo{kind: "enum", name: e.Name, detail: caseLines(e.Cases)}
	case spec.ErrorEnumEntry:
		return entryInfo{kind: "error", name: e.Name, detail: caseLines(e.Cases)}
	}
	return entryInfo{kind: "?", name: e.EntryName()}
}

func caseLines(cases []spec.EnumCase) []string {
	lines := make([]string, 0, len(cases))
	for _, c := range cases {
		lines = append(lines, fmt.Sprintf("%s = %d", c.Name, c.Value))
	}
	return lines
}

func (m *browserModel) refilter() {
	q := strings.ToLower(m.filter.Value())
	m.visible = m.visible[:0]
	for i, e := range m.entries {
		if q == "" || strings.Contains(strings.ToLower(e.name), q) {
			m.visible = append(m.visible, i)
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = 0
	}
}

func (m *browserModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case tea.KeyDown:
			if m.selected < len(m.visible)-1 {
				m.selected++
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.refilter()
	return m, cmd
}

func (m *browserModel) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("spectool: "+m.source) + "\n\n")
	sb.WriteString(m.filter.View() + "\n\n")

	if len(m.visible) == 0 {
		sb.WriteString(helpStyle.Render("no matching entries") + "\n")
	}
	for pos, idx := range m.visible {
		e := m.entries[idx]
		line := fmt.Sprintf("%-7s %s", e.kind, e.name)
		if pos == m.selected {
			sb.WriteString(selectedStyle.Render("> "+line) + "\n")
			for _, d := range e.detail {
				sb.WriteString(detailStyle.Render("      "+d) + "\n")
			}
		} else {
			sb.WriteString("  " + kindStyle.Render(fmt.Sprintf("%-7s", e.kind)) + " " + entryStyle.Render(e.name) + "\n")
		}
	}

	sb.WriteString("\n" + helpStyle.Render("↑/↓ select · type to filter · esc quit"))
	return sb.String()
}

func runInteractive(s *spec.Spec, source string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("interactive mode needs a terminal")
	}
	p := tea.NewProgram(newBrowserModel(s, source), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
