// internal/gauge/sparkline.go
package gauge

import (
	"math"
	"strings"
)

var sparkChars = []string{"▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}

// Sparkline draws the last width points of data scaled between 0 and the
// series maximum. Short series are left-padded with the lowest bar.
func Sparkline(data []float64, width int) string {
	if width <= 0 {
		return ""
	}
	if len(data) == 0 {
		return strings.Repeat(sparkChars[0], width)
	}

	start := 0
	if len(data) > width {
		start = len(data) - width
	}
	shown := data[start:]

	top := 0.0
	for _, v := range shown {
		if v > top {
			top = v
		}
	}
	if top == 0 {
		top = 1
	}

	var s strings.Builder
	s.WriteString(strings.Repeat(sparkChars[0], width-len(shown)))
	for _, v := range shown {
		if math.IsNaN(v) || v < 0 {
			v = 0
		}
		idx := int(v / top * float64(len(sparkChars)-1))
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		s.WriteString(sparkChars[idx])
	}

	return s.String()
}
