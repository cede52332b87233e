package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rusenback/dockerconsole/internal/gauge"
	"github.com/rusenback/dockerconsole/internal/storage"
)

var (
	overlapStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#CBA6F7"))
	axisStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
)

// renderHistory draws stored CPU and memory usage of the selected range.
// Short panels get sparklines, taller ones a combined bar chart.
func renderHistory(points []storage.DataPoint, width, height int, r storage.TimeRange) string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("History - "+r.String()) + "\n")
	s.WriteString(axisStyle.Render("[1]30m [2]1h [3]6h [4]1d [5]1w") + "\n\n")

	if len(points) == 0 {
		s.WriteString(dimStyle.Render("No stored samples in this range yet"))
		return s.String()
	}

	cpu := make([]float64, len(points))
	mem := make([]float64, len(points))
	for i, p := range points {
		cpu[i] = p.CPUPercent
		mem[i] = p.MemoryPercent
	}

	if height < 6 {
		s.WriteString(seriesLine("CPU", cpu, width, cpuGraphStyle) + "\n")
		s.WriteString(seriesLine("Mem", mem, width, memGraphStyle))
		return s.String()
	}

	s.WriteString(cpuGraphStyle.Render("█") + " CPU " + cpuGraphStyle.Render(fmt.Sprintf("%.1f%%", cpu[len(cpu)-1])) + "  ")
	s.WriteString(memGraphStyle.Render("█") + " Memory " + memGraphStyle.Render(fmt.Sprintf("%.1f%%", mem[len(mem)-1])) + "  ")
	s.WriteString(overlapStyle.Render("█") + " both\n")
	s.WriteString(combinedChart(cpu, mem, width-6, height-4))

	return s.String()
}

func seriesLine(label string, data []float64, width int, style lipgloss.Style) string {
	lo, hi := data[0], data[0]
	for _, v := range data {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	head := fmt.Sprintf("%-4s%5.1f%% ", label, data[len(data)-1])
	tail := axisStyle.Render(fmt.Sprintf(" %.0f-%.0f%%", lo, hi))
	return head + style.Render(gauge.Sparkline(data, max(width-len(head)-10, 4))) + tail
}

// combinedChart plots both series on a fixed 0-100% scale, newest on the right
func combinedChart(cpu, mem []float64, width, rows int) string {
	width = max(width, 4)
	rows = max(rows, 2)

	start := max(len(cpu)-width, 0)
	cpu, mem = cpu[start:], mem[start:]

	var s strings.Builder
	for row := rows; row > 0; row-- {
		switch row {
		case rows:
			s.WriteString(axisStyle.Render("100% "))
		case (rows + 1) / 2:
			s.WriteString(axisStyle.Render(" 50% "))
		default:
			s.WriteString("     ")
		}
		s.WriteString(axisStyle.Render("│"))

		threshold := float64(row) / float64(rows) * 100
		for i := range cpu {
			cpuAbove := cpu[i] >= threshold
			memAbove := mem[i] >= threshold
			switch {
			case cpuAbove && memAbove:
				s.WriteString(overlapStyle.Render("█"))
			case cpuAbove:
				s.WriteString(cpuGraphStyle.Render("█"))
			case memAbove:
				s.WriteString(memGraphStyle.Render("█"))
			default:
				s.WriteString(" ")
			}
		}
		s.WriteString("\n")
	}
	s.WriteString(axisStyle.Render("  0% └" + strings.Repeat("─", max(len(cpu), 1))))
	return s.String()
}
