// internal/grid/layout.go
package grid

import "math"

// Measurement is the measured box of a single grid item
type Measurement struct {
	Height       float64
	MinWidth     float64
	MaxWidth     float64 // math.MaxFloat64 for no cap
	MarginTop    float64
	MarginBottom float64
	MarginLeft   float64
	MarginRight  float64
}

// MarginWidth returns the horizontal margin sum
func (m Measurement) MarginWidth() float64 {
	return clean(m.MarginLeft) + clean(m.MarginRight)
}

// MarginHeight returns the vertical margin sum
func (m Measurement) MarginHeight() float64 {
	return clean(m.MarginTop) + clean(m.MarginBottom)
}

// Position is the top-left corner of an item relative to the container
type Position struct {
	X float64
	Y float64
}

// Result is the outcome of a single layout pass
type Result struct {
	Columns   int
	Rows      int
	ItemWidth int
	Spacing   float64
	RowHeight float64
	Visible   int
	Rendered  int        // visible items with nonzero height
	Positions []Position // one per visible item
	Height    float64
}

// Layout computes column count, item width and positions for items inside a
// container of the given width. countHint of 0 means no hint.
//
// When a hint is set and differs from len(items), only full rows are kept
// visible: rows is floor(len(items)/columns), so a partial last row is dropped.
func Layout(width float64, items []Measurement, countHint int) Result {
	length := len(items)
	if length == 0 {
		return Result{}
	}

	width = clean(width)

	rowHeight := 0.0
	for _, item := range items {
		if h := clean(item.Height); h > rowHeight {
			rowHeight = h
		}
	}

	// Items are assumed homogeneous; the first one carries the style
	first := items[0]
	minWidth := clean(first.MinWidth)
	maxWidth := clean(first.MaxWidth)
	marginWidth := first.MarginWidth()
	marginHeight := first.MarginHeight()

	// A zero denominator leaves room for every item
	columns := float64(length)
	if denom := minWidth + marginWidth; denom != 0 {
		columns = math.Floor(width / denom)
	}
	columnsToUse := int(math.Max(math.Min(columns, float64(length)), 1))

	rows := length / columnsToUse

	itemWidth := int(math.Floor(math.Min(math.Floor(width/float64(columnsToUse))-marginWidth, maxWidth)))

	spacing := marginWidth
	if columnsToUse != 1 && columns <= float64(length) {
		spacing = (width - marginWidth - float64(columnsToUse*itemWidth)) / float64(columnsToUse-1)
	}

	visible := length
	if countHint != 0 && countHint != length {
		visible = rows * columnsToUse
	}

	res := Result{
		Columns:   columnsToUse,
		Rows:      rows,
		ItemWidth: itemWidth,
		Spacing:   spacing,
		RowHeight: rowHeight,
		Visible:   visible,
		Positions: make([]Position, visible),
	}

	rendered := 0
	for i := 0; i < visible; i++ {
		res.Positions[i] = Position{
			X: float64(i%columnsToUse) * (float64(itemWidth) + spacing),
			Y: float64(rendered/columnsToUse) * (rowHeight + marginHeight),
		}
		if clean(items[i].Height) != 0 {
			rendered++
		}
	}

	res.Rendered = rendered
	renderedRows := (rendered + columnsToUse - 1) / columnsToUse
	res.Height = float64(renderedRows) * (rowHeight + marginHeight)

	return res
}

// clean maps NaN and infinities to 0 so the arithmetic stays defined
func clean(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
