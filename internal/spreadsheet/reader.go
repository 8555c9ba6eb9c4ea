package spreadsheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// DefaultSheetName is the sheet the family budget template stores its
// category budgets on.
const DefaultSheetName = "Input Categories Budget"

// Workbook is a named set of cell grids, one per sheet.
type Workbook struct {
	sheets map[string]Grid
	names  []string
}

// ReadWorkbook decodes an Excel workbook (.xlsx, .xlsm, .xls) from r into
// a Workbook of cell grids.
func ReadWorkbook(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	wb := &Workbook{sheets: make(map[string]Grid)}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}

		grid := make(Grid, len(rows))
		for i, row := range rows {
			cells := make([]Cell, len(row))
			for j, raw := range row {
				cells[j] = classifyCell(raw)
			}
			grid[i] = cells
		}

		wb.sheets[name] = grid
		wb.names = append(wb.names, name)
	}

	return wb, nil
}

// Sheet returns the grid for the named sheet.
func (w *Workbook) Sheet(name string) (Grid, bool) {
	grid, ok := w.sheets[name]
	return grid, ok
}

// SheetNames returns the sheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	return w.names
}
