package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the TUI interface
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(m.renderHeader() + "\n")

	body := m.renderGrid()
	if m.showStats && m.panel != nil {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.renderStatsPanel())
	}
	s.WriteString(body + "\n")

	switch {
	case m.filtering:
		s.WriteString(m.filter.View())
	case m.host.Query() != "":
		s.WriteString(dimStyle.Render("filter: " + m.host.Query()))
	}
	s.WriteString("\n")

	s.WriteString(messageStyle.Render(m.message) + "\n")
	s.WriteString(m.help.View(m.keys))

	return s.String()
}

func (m Model) renderHeader() string {
	running := 0
	for _, c := range m.containers {
		if c.Running() {
			running++
		}
	}
	summary := fmt.Sprintf(" %d total, %d running", len(m.containers), running)
	if count := m.engine.Count(); count > 0 {
		summary += fmt.Sprintf(", showing %d", m.engine.Last().Visible)
	}
	if w := m.engine.PreferredWidth(); w > 0 {
		summary += fmt.Sprintf(", width %d", w)
	}
	return headerStyle.Render("dockerconsole") + dimStyle.Render(summary) + "\n"
}

// renderGrid draws the scrolled window of the card grid
func (m Model) renderGrid() string {
	width, height := m.gridWidth(), m.gridHeight()
	frame := lipgloss.NewStyle().Width(width).Height(height).MaxWidth(width).MaxHeight(height)

	switch {
	case m.err != nil:
		return frame.Render(stoppedStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	case m.loading && len(m.containers) == 0:
		return frame.Render("Loading containers...")
	case len(m.containers) == 0:
		return frame.Render("No containers found.\nStart some containers: docker run -d nginx")
	}

	lines := m.host.compose(m.selectedID)
	start := min(m.offset, len(lines))
	end := min(start+height, len(lines))
	return frame.Render(strings.Join(lines[start:end], "\n"))
}

func (m Model) renderStatsPanel() string {
	width := m.panelWidth()
	height := m.gridHeight()
	inner := max(width-4, 1)

	content := m.panel.View(inner)
	used := lipgloss.Height(content)
	content += "\n\n" + renderHistory(m.historyPoints, inner, height-used-4, m.timeRange)

	return panelStyle.
		Width(width - 2).
		Height(max(height-2, 1)).
		MaxHeight(height).
		Render(content)
}
