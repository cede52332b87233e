// internal/grid/host.go
package grid

// Placement is what the engine writes back to an item
type Placement struct {
	X     float64
	Y     float64
	Width int
	Scale float64
}

// Host is the rendering surface the engine measures and mutates.
// Items are addressed by their index in container order.
type Host interface {
	// Width returns the measured container width
	Width() float64
	Len() int
	Measure(i int) Measurement

	// Transformed reports whether the item has been placed before
	Transformed(i int) bool
	SetTransitions(i int, enabled bool)
	// Reflow forces the host to flush pending writes for the item
	Reflow(i int)
	ApplyPosition(i int, p Placement)

	Hidden(i int) bool
	Show(i int)
	Hide(i int)

	SetHeight(h float64)
	// SetWidth sets an explicit container width, 0 restores automatic width
	SetWidth(w int)
}
