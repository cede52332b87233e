// internal/gauge/radial.go
package gauge

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	ringOuter = 1.0
	ringInner = 0.72
)

var (
	ringEmptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#45475A"))
	majorStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#CDD6F4"))
	minorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#A6ADC8"))
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#B4BEFE"))
)

// Radial is a ring gauge drawn with block characters. Terminal cells are
// about twice as tall as they are wide, so a gauge of diameter d is d cells
// wide and d/2 rows tall.
type Radial struct {
	diameter   int
	value      float64
	majorTitle string
	minorTitle string
	label      string
	color      lipgloss.Color
	rendered   string
}

// NewRadial creates a gauge with a default diameter
func NewRadial() *Radial {
	return &Radial{diameter: 16, color: lipgloss.Color("#A6E3A1")}
}

// Diameter sets the gauge width in cells
func (r *Radial) Diameter(d int) *Radial {
	if d < 6 {
		d = 6
	}
	r.diameter = d
	return r
}

// Value sets the filled fraction in percent, clamped to [0, 100]
func (r *Radial) Value(percent float64) *Radial {
	if math.IsNaN(percent) || percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	r.value = percent
	return r
}

// MajorTitle sets the center text. An empty title shows the percentage.
func (r *Radial) MajorTitle(s string) *Radial {
	r.majorTitle = s
	return r
}

// MinorTitle sets the text below the major title
func (r *Radial) MinorTitle(s string) *Radial {
	r.minorTitle = s
	return r
}

// Label sets the caption under the ring
func (r *Radial) Label(s string) *Radial {
	r.label = s
	return r
}

// Color sets the fill color
func (r *Radial) Color(c lipgloss.Color) *Radial {
	r.color = c
	return r
}

// Percent returns the current value
func (r *Radial) Percent() float64 { return r.value }

// Title returns the text shown in the center
func (r *Radial) Title() string {
	if r.majorTitle == "" {
		return fmt.Sprintf("%.1f%%", r.value)
	}
	return r.majorTitle
}

// Render draws the gauge and caches the result for View
func (r *Radial) Render() *Radial {
	r.rendered = r.draw()
	return r
}

// View returns the last rendered gauge
func (r *Radial) View() string {
	if r.rendered == "" {
		r.Render()
	}
	return r.rendered
}

func (r *Radial) draw() string {
	cols := r.diameter
	rows := cols / 2
	fill := lipgloss.NewStyle().Foreground(r.color)

	grid := make([][]string, rows)
	for row := 0; row < rows; row++ {
		grid[row] = make([]string, cols)
		for col := 0; col < cols; col++ {
			x := (float64(col) + 0.5 - float64(cols)/2) / (float64(cols) / 2)
			y := (float64(row) + 0.5 - float64(rows)/2) / (float64(rows) / 2)
			dist := math.Hypot(x, y)

			if dist > ringOuter || dist < ringInner {
				grid[row][col] = " "
				continue
			}

			// Clockwise from twelve o'clock
			angle := math.Atan2(x, -y)
			if angle < 0 {
				angle += 2 * math.Pi
			}
			if angle/(2*math.Pi)*100 < r.value {
				grid[row][col] = fill.Render("█")
			} else {
				grid[row][col] = ringEmptyStyle.Render("░")
			}
		}
	}

	inner := int(float64(cols) * ringInner)
	center := rows / 2
	if rows > 0 {
		writeCentered(grid[center], clip(r.Title(), inner), majorStyle)
	}
	if r.minorTitle != "" && center+1 < rows {
		writeCentered(grid[center+1], clip(r.minorTitle, inner), minorStyle)
	}

	lines := make([]string, rows)
	for row := range grid {
		lines[row] = strings.Join(grid[row], "")
	}

	gauge := strings.Join(lines, "\n")
	if r.label == "" {
		return gauge
	}
	caption := lipgloss.PlaceHorizontal(cols, lipgloss.Center, labelStyle.Render(r.label))
	return lipgloss.JoinVertical(lipgloss.Left, gauge, caption)
}

// writeCentered puts text in the middle cells of a row, one rune per cell
func writeCentered(cells []string, text string, style lipgloss.Style) {
	runes := []rune(text)
	left := (len(cells) - len(runes)) / 2
	if left < 0 {
		left = 0
	}
	for i, ch := range runes {
		if left+i >= len(cells) {
			return
		}
		cells[left+i] = style.Render(string(ch))
	}
}

func clip(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
