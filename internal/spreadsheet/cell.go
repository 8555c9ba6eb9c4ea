// Package spreadsheet decodes Excel workbooks into cell grids and parses
// the known family budget layout into structured budget lines. It has no
// knowledge of the database or transport layers.
package spreadsheet

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CellKind discriminates the cell variant.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellNumber
	CellText
)

// Cell is a tagged variant: Empty, Number, or Text. Representing cells
// this way keeps the numeric-vs-string cleanup in the parser exhaustive
// instead of switching on an untyped value.
type Cell struct {
	Kind   CellKind
	Number decimal.Decimal
	Text   string
}

// Grid is a 2-D sheet of cells. Rows may have differing lengths.
type Grid [][]Cell

// classifyCell converts a raw cell string from the workbook reader into a
// Cell. Values that parse cleanly as a decimal become Number cells;
// anything else non-blank is Text.
func classifyCell(raw string) Cell {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Cell{Kind: CellEmpty}
	}
	if n, err := decimal.NewFromString(trimmed); err == nil {
		return Cell{Kind: CellNumber, Number: n}
	}
	return Cell{Kind: CellText, Text: trimmed}
}

// cellAt returns the cell at (row, col), or an empty cell when the
// coordinates fall outside the grid.
func (g Grid) cellAt(row, col int) Cell {
	if row < 0 || row >= len(g) {
		return Cell{Kind: CellEmpty}
	}
	if col < 0 || col >= len(g[row]) {
		return Cell{Kind: CellEmpty}
	}
	return g[row][col]
}

// textAt returns the trimmed string form of the cell at (row, col):
// the text for Text cells, the decimal representation for Number cells,
// and "" for Empty cells.
func (g Grid) textAt(row, col int) string {
	cell := g.cellAt(row, col)
	switch cell.Kind {
	case CellText:
		return cell.Text
	case CellNumber:
		return cell.Number.String()
	default:
		return ""
	}
}
