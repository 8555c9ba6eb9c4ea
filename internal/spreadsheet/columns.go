package spreadsheet

import "strings"

// Fallback indices used when a structural column label cannot be located
// around the header row. The known template orders columns as
// Type, Category, Subcategory starting at the second column.
const (
	fallbackTypeColumn        = 1
	fallbackCategoryColumn    = 2
	fallbackSubcategoryColumn = 3
)

// Column is a resolved structural column with provenance: Defaulted is
// true when the label was not found and the fallback index was used.
type Column struct {
	Index     int  `json:"index"`
	Defaulted bool `json:"defaulted"`
}

// ColumnMap holds the resolved Type/Category/Subcategory columns.
type ColumnMap struct {
	Type        Column `json:"type"`
	Category    Column `json:"category"`
	Subcategory Column `json:"subcategory"`
}

func matchesTypeLabel(val string) bool {
	return strings.Contains(val, "TYPE") || val == "LEVEL 1"
}

func matchesCategoryLabel(val string) bool {
	return strings.Contains(val, "CATEGOR") || val == "LEVEL 2"
}

func matchesSubcategoryLabel(val string) bool {
	return strings.Contains(val, "SUBCATEGOR") || val == "LEVEL 3"
}

// resolveColumns locates the Type, Category, and Subcategory columns by
// scanning the header row and the two rows on either side of it. Labels
// match case-insensitively on substrings ("TYPE", "CATEGOR",
// "SUBCATEGOR") so prefixed forms like "Level 1: Type" are tolerated.
// Columns that cannot be found fall back to fixed template indices and
// are marked Defaulted so diagnostics can report which were guessed.
func resolveColumns(grid Grid, headerRow int) ColumnMap {
	typeIdx, categoryIdx, subcategoryIdx := -1, -1, -1

	start := headerRow - 2
	if start < 0 {
		start = 0
	}
	for row := start; row <= headerRow+2 && row < len(grid); row++ {
		for col := range grid[row] {
			val := strings.ToUpper(grid.textAt(row, col))
			if val == "" {
				continue
			}
			if typeIdx == -1 && matchesTypeLabel(val) {
				typeIdx = col
			}
			if categoryIdx == -1 && matchesCategoryLabel(val) {
				categoryIdx = col
			}
			if subcategoryIdx == -1 && matchesSubcategoryLabel(val) {
				subcategoryIdx = col
			}
		}
	}

	cols := ColumnMap{
		Type:        Column{Index: typeIdx},
		Category:    Column{Index: categoryIdx},
		Subcategory: Column{Index: subcategoryIdx},
	}
	if cols.Type.Index == -1 {
		cols.Type = Column{Index: fallbackTypeColumn, Defaulted: true}
	}
	if cols.Category.Index == -1 {
		cols.Category = Column{Index: fallbackCategoryColumn, Defaulted: true}
	}
	if cols.Subcategory.Index == -1 {
		cols.Subcategory = Column{Index: fallbackSubcategoryColumn, Defaulted: true}
	}
	return cols
}
