package spreadsheet

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// monthNames is the canonical set of month labels the header scan looks for.
var monthNames = []string{
	"JANUARY", "FEBRUARY", "MARCH", "APRIL", "MAY", "JUNE",
	"JULY", "AUGUST", "SEPTEMBER", "OCTOBER", "NOVEMBER", "DECEMBER",
}

// maxRowScan bounds the row walk (and the expenses-section scan) below
// the header row.
const maxRowScan = 500

// Parse error codes.
const (
	CodeHeaderNotFound     = "HEADER_NOT_FOUND"
	CodeNoMonthColumns     = "NO_MONTH_COLUMNS"
	CodeNoBudgetLinesFound = "NO_BUDGET_LINES_FOUND"
)

// Diagnostics describes what the layout heuristic detected. It is part of
// the parse contract: callers surface it to users troubleshooting a sheet
// that produced no budget lines.
type Diagnostics struct {
	Sheet                string    `json:"sheet"`
	HeaderRow            int       `json:"header_row"` // -1 when not found
	MonthColumns         int       `json:"month_columns"`
	Columns              ColumnMap `json:"columns"`
	FoundExpensesSection bool      `json:"found_expenses_section"`
	RowsScanned          int       `json:"rows_scanned"`
}

// ParseError is a structured parse failure carrying layout diagnostics.
type ParseError struct {
	Code        string
	Message     string
	Diagnostics Diagnostics
}

func (e *ParseError) Error() string {
	return e.Message
}

// ParsedBudgetLine is one budget row extracted from the spreadsheet.
// Category and subcategory are the raw human-entered text; normalization
// to system enums happens at import time.
type ParsedBudgetLine struct {
	Category       string                     `json:"category"`
	Subcategory    string                     `json:"subcategory"`
	MonthlyAmounts map[string]decimal.Decimal `json:"monthly_amounts"`
	TotalAmount    decimal.Decimal            `json:"total_amount"`
}

// ParseBudgetSheet walks a sheet grid of the family budget template and
// extracts one ParsedBudgetLine per expense row with a positive total.
//
// The layout heuristic:
//  1. The header row is the first row whose cells mention a month name.
//  2. Each month's amount sits one column to the right of its label.
//  3. Type/Category/Subcategory columns are resolved around the header
//     row, falling back to fixed template indices.
//  4. When an EXPENSES section marker exists, rows typed as other
//     sections are skipped and a following INCOME/SAVINGS/INVESTMENTS/
//     DEBTS marker ends the walk.
//  5. Blank category cells inherit the last category seen (merged cells
//     leave repeated labels blank).
func ParseBudgetSheet(grid Grid, sheet string) ([]ParsedBudgetLine, error) {
	headerRow, monthCols := findHeaderRow(grid)
	if headerRow == -1 {
		return nil, &ParseError{
			Code:        CodeHeaderNotFound,
			Message:     "no header row with month names (JANUARY, FEBRUARY, ...) found",
			Diagnostics: Diagnostics{Sheet: sheet, HeaderRow: -1},
		}
	}
	if len(monthCols) == 0 {
		return nil, &ParseError{
			Code:        CodeNoMonthColumns,
			Message:     "header row contains no month columns",
			Diagnostics: Diagnostics{Sheet: sheet, HeaderRow: headerRow},
		}
	}

	cols := resolveColumns(grid, headerRow)
	foundExpenses := findExpensesSection(grid, headerRow, cols.Type.Index)

	end := headerRow + maxRowScan
	if end > len(grid) {
		end = len(grid)
	}

	var lines []ParsedBudgetLine
	currentCategory := ""

	for row := headerRow + 1; row < end; row++ {
		typeVal := strings.ToUpper(strings.TrimSpace(grid.textAt(row, cols.Type.Index)))

		// With a detected expenses section, a different known section
		// marker ends the walk; any other non-expense type is a stray
		// sub-header row and is skipped.
		if foundExpenses && typeVal != "" && !isExpensesMarker(typeVal) {
			if isSectionMarker(typeVal) {
				break
			}
			continue
		}

		catVal := strings.TrimSpace(grid.textAt(row, cols.Category.Index))
		if catVal != "" && !isExpensesMarker(strings.ToUpper(catVal)) {
			currentCategory = catVal
		}
		if currentCategory == "" {
			continue
		}

		subcategory := strings.TrimSpace(grid.textAt(row, cols.Subcategory.Index))
		if subcategory == "" {
			continue
		}

		monthlyAmounts := make(map[string]decimal.Decimal)
		total := decimal.Zero
		for month, col := range monthCols {
			amount := amountAt(grid, row, col)
			if amount.IsPositive() {
				monthlyAmounts[month] = amount
				total = total.Add(amount)
			}
		}

		if total.IsPositive() {
			lines = append(lines, ParsedBudgetLine{
				Category:       currentCategory,
				Subcategory:    subcategory,
				MonthlyAmounts: monthlyAmounts,
				TotalAmount:    total,
			})
		}
	}

	if len(lines) == 0 {
		diag := Diagnostics{
			Sheet:                sheet,
			HeaderRow:            headerRow,
			MonthColumns:         len(monthCols),
			Columns:              cols,
			FoundExpensesSection: foundExpenses,
			RowsScanned:          end - headerRow - 1,
		}
		return nil, &ParseError{
			Code: CodeNoBudgetLinesFound,
			Message: fmt.Sprintf(
				"no valid budget lines found: header at row %d, %d month columns, expenses section found=%t, columns type=%d category=%d subcategory=%d",
				diag.HeaderRow, diag.MonthColumns, diag.FoundExpensesSection,
				diag.Columns.Type.Index, diag.Columns.Category.Index, diag.Columns.Subcategory.Index,
			),
			Diagnostics: diag,
		}
	}

	return lines, nil
}

// findHeaderRow scans top to bottom for the first row mentioning a month
// name and maps each month label to its amount column (one to the right
// of the label).
func findHeaderRow(grid Grid) (int, map[string]int) {
	for row := range grid {
		var sb strings.Builder
		for col := range grid[row] {
			sb.WriteString(strings.ToUpper(grid.textAt(row, col)))
			sb.WriteByte(' ')
		}
		rowText := sb.String()

		found := false
		for _, month := range monthNames {
			if strings.Contains(rowText, month) {
				found = true
				break
			}
		}
		if !found {
			continue
		}

		monthCols := make(map[string]int)
		for col := range grid[row] {
			val := strings.ToUpper(grid.textAt(row, col))
			for _, month := range monthNames {
				if strings.Contains(val, month) {
					monthCols[month] = col + 1
					break
				}
			}
		}
		return row, monthCols
	}
	return -1, nil
}

// findExpensesSection looks below the header for an EXPENSES marker,
// first in the type column and then across the first few columns of the
// row. The result is a gate applied per row during the walk, not a row
// boundary by itself.
func findExpensesSection(grid Grid, headerRow, typeCol int) bool {
	end := headerRow + maxRowScan
	if end > len(grid) {
		end = len(grid)
	}
	for row := headerRow + 1; row < end; row++ {
		typeVal := strings.ToUpper(strings.TrimSpace(grid.textAt(row, typeCol)))
		if isExpensesMarker(typeVal) {
			return true
		}
		for col := 0; col < 5; col++ {
			val := strings.ToUpper(strings.TrimSpace(grid.textAt(row, col)))
			if isExpensesMarker(val) {
				return true
			}
		}
	}
	return false
}

func isExpensesMarker(val string) bool {
	return val == "EXPENSES" || val == "EXPENSE"
}

// isSectionMarker reports whether val names a known non-expense top-level
// section of the template.
func isSectionMarker(val string) bool {
	switch val {
	case "INCOME", "SAVINGS", "INVESTMENTS", "DEBTS":
		return true
	}
	return false
}

// amountAt reads a monetary amount from the cell at (row, col). Number
// cells are used as-is; Text cells are cleaned by stripping every
// character that is not a digit, '.', or '-', then parsed. Unparseable
// values yield zero, which the caller treats as absent.
func amountAt(grid Grid, row, col int) decimal.Decimal {
	cell := grid.cellAt(row, col)
	switch cell.Kind {
	case CellNumber:
		return cell.Number
	case CellText:
		cleaned := cleanAmount(cell.Text)
		if cleaned == "" {
			return decimal.Zero
		}
		n, err := decimal.NewFromString(cleaned)
		if err != nil {
			return decimal.Zero
		}
		return n
	default:
		return decimal.Zero
	}
}

func cleanAmount(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
