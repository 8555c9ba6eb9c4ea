package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "domus/internal/errors"
	"domus/internal/services"
	"domus/internal/spreadsheet"
)

// --- mock import service ---

type mockImportService struct {
	parseWorkbookFn func(data []byte, sheetName string) ([]spreadsheet.ParsedBudgetLine, error)
	importBudgetsFn func(userID uint, year int, lines []spreadsheet.ParsedBudgetLine) (*services.ImportReport, error)
}

func (m *mockImportService) ParseWorkbook(data []byte, sheetName string) ([]spreadsheet.ParsedBudgetLine, error) {
	if m.parseWorkbookFn != nil {
		return m.parseWorkbookFn(data, sheetName)
	}
	return []spreadsheet.ParsedBudgetLine{}, nil
}

func (m *mockImportService) ImportBudgets(userID uint, year int, lines []spreadsheet.ParsedBudgetLine) (*services.ImportReport, error) {
	if m.importBudgetsFn != nil {
		return m.importBudgetsFn(userID, year, lines)
	}
	return &services.ImportReport{}, nil
}

var _ services.ImportServicer = (*mockImportService)(nil)

func setupExcelRouter(handler *ExcelHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(1))
	auth.POST("/excel/parse-budgets", handler.ParseBudgets)
	auth.POST("/excel/import-budgets", handler.ImportBudgets)
	return r
}

// doMultipartRequest uploads a file field plus form fields.
func doMultipartRequest(t *testing.T, r *gin.Engine, path, filename string, content []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("failed to write form file: %v", err)
		}
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("failed to write form field: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest("POST", path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func sampleLines() []spreadsheet.ParsedBudgetLine {
	amount := decimal.NewFromInt(250)
	return []spreadsheet.ParsedBudgetLine{{
		Category:       "Food",
		Subcategory:    "Groceries",
		MonthlyAmounts: map[string]decimal.Decimal{"JANUARY": amount},
		TotalAmount:    amount,
	}}
}

// --- tests ---

func TestExcelHandler_ParseBudgets(t *testing.T) {
	t.Run("returns parsed lines", func(t *testing.T) {
		var gotSheet string
		svc := &mockImportService{
			parseWorkbookFn: func(_ []byte, sheetName string) ([]spreadsheet.ParsedBudgetLine, error) {
				gotSheet = sheetName
				return sampleLines(), nil
			},
		}
		r := setupExcelRouter(NewExcelHandler(svc))

		rec := doMultipartRequest(t, r, "/excel/parse-budgets", "budget.xlsx",
			[]byte("workbook bytes"), map[string]string{"sheet_name": "My Sheet"})

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotSheet != "My Sheet" {
			t.Errorf("expected sheet_name to pass through, got %q", gotSheet)
		}

		result := parseJSON(t, rec)
		if result["total"] != float64(1) {
			t.Errorf("expected total 1, got %v", result["total"])
		}
		budgets, ok := result["budgets"].([]interface{})
		if !ok || len(budgets) != 1 {
			t.Fatalf("expected 1 budget in response, got %v", result["budgets"])
		}
	})

	t.Run("rejects missing file", func(t *testing.T) {
		r := setupExcelRouter(NewExcelHandler(&mockImportService{}))

		rec := doMultipartRequest(t, r, "/excel/parse-budgets", "", nil, nil)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("rejects wrong extension", func(t *testing.T) {
		r := setupExcelRouter(NewExcelHandler(&mockImportService{}))

		rec := doMultipartRequest(t, r, "/excel/parse-budgets", "budget.csv",
			[]byte("a,b,c"), nil)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_FILE")
	})

	t.Run("rejects empty file", func(t *testing.T) {
		r := setupExcelRouter(NewExcelHandler(&mockImportService{}))

		rec := doMultipartRequest(t, r, "/excel/parse-budgets", "budget.xlsx", nil, nil)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "EMPTY_FILE")
	})

	t.Run("surfaces parse diagnostics", func(t *testing.T) {
		svc := &mockImportService{
			parseWorkbookFn: func(_ []byte, _ string) ([]spreadsheet.ParsedBudgetLine, error) {
				return nil, &spreadsheet.ParseError{
					Code:    spreadsheet.CodeNoBudgetLinesFound,
					Message: "no valid budget lines found",
					Diagnostics: spreadsheet.Diagnostics{
						Sheet:        spreadsheet.DefaultSheetName,
						HeaderRow:    4,
						MonthColumns: 12,
					},
				}
			},
		}
		r := setupExcelRouter(NewExcelHandler(svc))

		rec := doMultipartRequest(t, r, "/excel/parse-budgets", "budget.xlsx",
			[]byte("workbook bytes"), nil)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		assertErrorCode(t, result, spreadsheet.CodeNoBudgetLinesFound)

		errObj := result["error"].(map[string]interface{})
		diag, ok := errObj["diagnostics"].(map[string]interface{})
		if !ok {
			t.Fatalf("expected diagnostics in error response, got %v", errObj)
		}
		if diag["header_row"] != float64(4) {
			t.Errorf("expected header_row 4 in diagnostics, got %v", diag["header_row"])
		}
		if diag["month_columns"] != float64(12) {
			t.Errorf("expected month_columns 12 in diagnostics, got %v", diag["month_columns"])
		}
	})
}

func TestExcelHandler_ImportBudgets(t *testing.T) {
	t.Run("json mode imports pre-parsed lines", func(t *testing.T) {
		var gotYear int
		var gotLines int
		svc := &mockImportService{
			importBudgetsFn: func(_ uint, year int, lines []spreadsheet.ParsedBudgetLine) (*services.ImportReport, error) {
				gotYear = year
				gotLines = len(lines)
				return &services.ImportReport{Created: len(lines), ErrorDetails: []string{}}, nil
			},
		}
		r := setupExcelRouter(NewExcelHandler(svc))

		rec := doRequest(r, "POST", "/excel/import-budgets",
			`{"year":2025,"budgets":[{"category":"Food","subcategory":"Groceries","monthly_amounts":{"JANUARY":"250"},"total_amount":"250"}]}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotYear != 2025 {
			t.Errorf("expected year 2025, got %d", gotYear)
		}
		if gotLines != 1 {
			t.Errorf("expected 1 line, got %d", gotLines)
		}
	})

	t.Run("json mode rejects out_of_range year", func(t *testing.T) {
		r := setupExcelRouter(NewExcelHandler(&mockImportService{}))

		rec := doRequest(r, "POST", "/excel/import-budgets",
			`{"year":1776,"budgets":[{"category":"Food","subcategory":"Groceries","total_amount":"250"}]}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("json mode rejects empty budgets", func(t *testing.T) {
		r := setupExcelRouter(NewExcelHandler(&mockImportService{}))

		rec := doRequest(r, "POST", "/excel/import-budgets", `{"year":2025,"budgets":[]}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("multipart mode parses then imports", func(t *testing.T) {
		var gotYear int
		svc := &mockImportService{
			parseWorkbookFn: func(_ []byte, _ string) ([]spreadsheet.ParsedBudgetLine, error) {
				return sampleLines(), nil
			},
			importBudgetsFn: func(_ uint, year int, lines []spreadsheet.ParsedBudgetLine) (*services.ImportReport, error) {
				gotYear = year
				return &services.ImportReport{Created: len(lines), ErrorDetails: []string{}}, nil
			},
		}
		r := setupExcelRouter(NewExcelHandler(svc))

		rec := doMultipartRequest(t, r, "/excel/import-budgets", "budget.xlsx",
			[]byte("workbook bytes"), map[string]string{"year": "2026"})

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotYear != 2026 {
			t.Errorf("expected year 2026, got %d", gotYear)
		}
	})

	t.Run("partial failure still returns 200", func(t *testing.T) {
		svc := &mockImportService{
			importBudgetsFn: func(_ uint, _ int, _ []spreadsheet.ParsedBudgetLine) (*services.ImportReport, error) {
				return &services.ImportReport{
					Created:      0,
					Errors:       1,
					ErrorDetails: []string{"failed to create budget FOOD/GROCERIES: store rejected it"},
				}, nil
			},
		}
		r := setupExcelRouter(NewExcelHandler(svc))

		rec := doRequest(r, "POST", "/excel/import-budgets",
			`{"year":2025,"budgets":[{"category":"Food","subcategory":"Groceries","total_amount":"250"}]}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 even for failed lines, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		if result["errors"] != float64(1) {
			t.Errorf("expected 1 error in report, got %v", result["errors"])
		}
		details, ok := result["error_details"].([]interface{})
		if !ok || len(details) != 1 {
			t.Errorf("expected error details in report, got %v", result["error_details"])
		}
	})

	t.Run("forwards authorization failure", func(t *testing.T) {
		svc := &mockImportService{
			importBudgetsFn: func(_ uint, _ int, _ []spreadsheet.ParsedBudgetLine) (*services.ImportReport, error) {
				return nil, apperrors.ErrNotFamilyAdmin
			},
		}
		r := setupExcelRouter(NewExcelHandler(svc))

		rec := doRequest(r, "POST", "/excel/import-budgets",
			`{"year":2025,"budgets":[{"category":"Food","subcategory":"Groceries","total_amount":"250"}]}`)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "NOT_FAMILY_ADMIN")
	})
}
