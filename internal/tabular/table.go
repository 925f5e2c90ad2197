// Package tabular models tables extracted from a rate document and
// reconstructs (service, weight, price) records from them.
package tabular

// Cell is one grid cell: either empty or carrying text. Extraction tools
// emit nullable strings; modeling the absence explicitly forces every
// consumer to decide what an empty cell means.
type Cell struct {
	Text string
	Ok   bool
}

// TextCell returns a populated cell.
func TextCell(s string) Cell { return Cell{Text: s, Ok: true} }

// EmptyCell returns an absent cell.
func EmptyCell() Cell { return Cell{} }

// CellFromPtr converts the nullable-string shape used on the wire.
func CellFromPtr(s *string) Cell {
	if s == nil {
		return Cell{}
	}
	return Cell{Text: *s, Ok: true}
}

// Row is one table row.
type Row []Cell

// Cell returns the cell at col, treating out-of-range as empty; extracted
// tables are ragged.
func (r Row) Cell(col int) Cell {
	if col < 0 || col >= len(r) {
		return Cell{}
	}
	return r[col]
}

// FromEnd returns the cell offset positions from the row's end (offset 1 is
// the last cell).
func (r Row) FromEnd(offset int) Cell {
	return r.Cell(len(r) - offset)
}

// Table is a grid of cells as returned by the extraction tool.
type Table []Row

// Layout describes where a table variant keeps its structure. The source
// document shifts columns and rows between its two page styles; one
// descriptor per style keeps the reconstruction algorithm single-copy.
type Layout struct {
	// HeaderRow is the index of the row holding service names.
	HeaderRow int
	// WeightCol is the preferred weight column; WeightColFallback is used
	// when the preferred cell is empty (some variants shift all columns
	// right by one).
	WeightCol         int
	WeightColFallback int
	// ZoneRow and ZoneCellOffsets locate the zone-label cell in tables
	// whose page header says "rates to": offsets from the row end, tried
	// in order.
	ZoneRow         int
	ZoneCellOffsets []int
}

// LayoutFor picks the layout for a page, keyed on how the page header
// phrased its zone ("rates to <label>" pages push the header a row down
// and carry the zone label inside the table).
func LayoutFor(hasTo bool) Layout {
	if hasTo {
		return Layout{
			HeaderRow:         1,
			WeightCol:         1,
			WeightColFallback: 0,
			ZoneRow:           0,
			ZoneCellOffsets:   []int{1, 2},
		}
	}
	return Layout{
		HeaderRow:         0,
		WeightCol:         1,
		WeightColFallback: 0,
		ZoneRow:           0,
		ZoneCellOffsets:   []int{1, 2},
	}
}
