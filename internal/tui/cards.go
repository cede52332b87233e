package tui

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
	"github.com/rusenback/dockerconsole/internal/config"
	"github.com/rusenback/dockerconsole/internal/grid"
	"github.com/rusenback/dockerconsole/internal/model"
)

// cardLines is the content height of a card, borders excluded
const cardLines = 4

// cardHeight is the outer height of a rendered card
const cardHeight = cardLines + 2

type card struct {
	container   model.Container
	transformed bool
	transitions bool
	hidden      bool
	placement   grid.Placement
	// poppedAt is set while the card is highlighted after popping in
	poppedAt time.Time
}

// cardHost lays container cards out on the terminal. Cards matching the
// filter query come first, the rest measure zero height and are not drawn.
type cardHost struct {
	cards []*card
	query string

	available int
	explicit  int
	height    float64

	minWidth int
	maxWidth int
	marginX  int
	marginY  int

	now func() time.Time
}

var _ grid.Host = (*cardHost)(nil)

func newCardHost(cfg config.Grid, now func() time.Time) *cardHost {
	if now == nil {
		now = time.Now
	}
	return &cardHost{
		minWidth: cfg.MinCardWidth,
		maxWidth: cfg.MaxCardWidth,
		marginX:  cfg.MarginX,
		marginY:  cfg.MarginY,
		now:      now,
	}
}

// SetContainers replaces the card set, keeping the state of known containers.
// New cards start hidden and untransformed so they pop in on the next pass.
// It reports whether the set or order of cards changed.
func (h *cardHost) SetContainers(list []model.Container) bool {
	known := make(map[string]*card, len(h.cards))
	before := make([]string, len(h.cards))
	for i, c := range h.cards {
		known[c.container.ID] = c
		before[i] = c.container.ID
	}

	cards := make([]*card, 0, len(list))
	for _, cont := range list {
		c, ok := known[cont.ID]
		if !ok {
			c = &card{hidden: true}
		}
		c.container = cont
		cards = append(cards, c)
	}
	h.cards = cards
	h.reorder()

	if len(before) != len(h.cards) {
		return true
	}
	for i, c := range h.cards {
		if before[i] != c.container.ID {
			return true
		}
	}
	return false
}

// SetQuery filters cards by name, image or state. It reports whether the
// card order changed.
func (h *cardHost) SetQuery(q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == h.query {
		return false
	}
	h.query = q
	h.reorder()
	return true
}

func (h *cardHost) Query() string { return h.query }

func (h *cardHost) matches(c *card) bool {
	if h.query == "" {
		return true
	}
	for _, field := range []string{c.container.Name, c.container.Image, c.container.State} {
		if strings.Contains(strings.ToLower(field), h.query) {
			return true
		}
	}
	return false
}

func (h *cardHost) reorder() {
	sort.SliceStable(h.cards, func(i, j int) bool {
		return h.matches(h.cards[i]) && !h.matches(h.cards[j])
	})
}

func (h *cardHost) setAvailable(width int) {
	h.available = max(width, 0)
}

// selectable returns the drawn cards in layout order
func (h *cardHost) selectable() []*card {
	var out []*card
	for _, c := range h.cards {
		if h.drawn(c) {
			out = append(out, c)
		}
	}
	return out
}

func (h *cardHost) drawn(c *card) bool {
	return !c.hidden && c.transformed && h.matches(c)
}

// expirePopIns clears highlights older than d and reports whether any remain
func (h *cardHost) expirePopIns(now time.Time, d time.Duration) bool {
	remaining := false
	for _, c := range h.cards {
		if c.poppedAt.IsZero() {
			continue
		}
		if now.Sub(c.poppedAt) >= d {
			c.poppedAt = time.Time{}
			continue
		}
		remaining = true
	}
	return remaining
}

func (h *cardHost) popping() bool {
	for _, c := range h.cards {
		if !c.poppedAt.IsZero() {
			return true
		}
	}
	return false
}

func (h *cardHost) Width() float64 {
	w := h.available
	if h.explicit > 0 && h.explicit < w {
		w = h.explicit
	}
	return float64(w)
}

func (h *cardHost) Len() int { return len(h.cards) }

func (h *cardHost) Measure(i int) grid.Measurement {
	maxWidth := float64(h.maxWidth)
	if h.maxWidth == 0 {
		maxWidth = math.MaxFloat64
	}
	m := grid.Measurement{
		MinWidth:     float64(h.minWidth),
		MaxWidth:     maxWidth,
		MarginRight:  float64(h.marginX),
		MarginBottom: float64(h.marginY),
	}
	if h.matches(h.cards[i]) {
		m.Height = cardHeight
	}
	return m
}

func (h *cardHost) Transformed(i int) bool { return h.cards[i].transformed }

func (h *cardHost) SetTransitions(i int, enabled bool) { h.cards[i].transitions = enabled }

// Reflow has nothing to flush: placements are read at render time.
func (h *cardHost) Reflow(int) {}

func (h *cardHost) ApplyPosition(i int, p grid.Placement) {
	c := h.cards[i]
	c.placement = p
	c.transformed = true
	if p.Scale == 0 && !c.transitions {
		c.poppedAt = h.now()
	}
}

func (h *cardHost) Hidden(i int) bool { return h.cards[i].hidden }

func (h *cardHost) Show(i int) { h.cards[i].hidden = false }

func (h *cardHost) Hide(i int) { h.cards[i].hidden = true }

func (h *cardHost) SetHeight(v float64) { h.height = v }

func (h *cardHost) SetWidth(w int) { h.explicit = max(w, 0) }

// Height returns the laid out height in rows
func (h *cardHost) Height() int { return int(math.Ceil(h.height)) }

// renderCard draws a single card at its placed width
func renderCard(c *card, selected bool) string {
	width := max(c.placement.Width, 6)
	inner := width - 4

	state := runningStyle
	if !c.container.Running() {
		state = stoppedStyle
	}

	status := c.container.State
	if c.container.Status != "" {
		status += " · " + c.container.Status
	}

	details := []string{}
	if !c.container.Created.IsZero() {
		details = append(details, "created "+humanize.Time(c.container.Created))
	}
	if ports := formatPorts(c.container.Ports); ports != "" {
		details = append(details, ports)
	}

	lines := []string{
		titleStyle.Render(ansi.Truncate(c.container.Name, inner, "…")),
		dimStyle.Render(ansi.Truncate(c.container.Image, inner, "…")),
		state.Render(ansi.Truncate(status, inner, "…")),
		dimStyle.Render(ansi.Truncate(strings.Join(details, "  "), inner, "…")),
	}

	style := cardStyle.Width(width - 2)
	switch {
	case !c.poppedAt.IsZero():
		style = style.BorderForeground(popInBorder).Border(lipgloss.DoubleBorder())
	case selected:
		style = style.BorderForeground(selectedBorder).Border(lipgloss.ThickBorder())
	}
	return style.Render(strings.Join(lines, "\n"))
}

func formatPorts(ports []model.Port) string {
	var out []string
	for _, p := range ports {
		if p.Public == 0 {
			continue
		}
		out = append(out, fmt.Sprintf("%d→%d/%s", p.Public, p.Private, p.Type))
	}
	return strings.Join(out, " ")
}

// compose draws every placed card into terminal rows
func (h *cardHost) compose(selectedID string) []string {
	type placed struct {
		x    int
		rows []string
	}

	byRow := map[int][]placed{}
	bottom := h.Height()
	for _, c := range h.cards {
		if !h.drawn(c) {
			continue
		}
		x := int(math.Round(c.placement.X))
		y := int(math.Round(c.placement.Y))
		view := renderCard(c, c.container.ID == selectedID)
		byRow[y] = append(byRow[y], placed{x: x, rows: strings.Split(view, "\n")})
		bottom = max(bottom, y+cardHeight)
	}

	lines := make([]string, bottom)
	for y, row := range byRow {
		sort.Slice(row, func(i, j int) bool { return row[i].x < row[j].x })
		for j := 0; j < cardHeight; j++ {
			var b strings.Builder
			col := 0
			for _, p := range row {
				if j >= len(p.rows) {
					continue
				}
				if p.x > col {
					b.WriteString(strings.Repeat(" ", p.x-col))
					col = p.x
				}
				b.WriteString(p.rows[j])
				col += ansi.StringWidth(p.rows[j])
			}
			lines[y+j] = b.String()
		}
	}
	return lines
}
