package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "domus/internal/errors"
	"domus/internal/services"
	"domus/internal/spreadsheet"
)

// validExtensions is the supported spreadsheet file family.
var validExtensions = []string{".xlsx", ".xlsm", ".xls"}

// ExcelHandler handles spreadsheet budget ingestion requests.
type ExcelHandler struct {
	importService services.ImportServicer
}

// NewExcelHandler creates a new ExcelHandler.
func NewExcelHandler(importService services.ImportServicer) *ExcelHandler {
	return &ExcelHandler{importService: importService}
}

// ImportBudgetsRequest is the JSON payload for importing pre-parsed
// budget lines (when the end user picked a subset after parsing).
type ImportBudgetsRequest struct {
	Year    int                            `json:"year" binding:"required,budget_year"`
	Budgets []spreadsheet.ParsedBudgetLine `json:"budgets" binding:"required"`
}

// ParseBudgetsResponse documents the parse response for swagger.
type ParseBudgetsResponse struct {
	Budgets []spreadsheet.ParsedBudgetLine `json:"budgets"`
	Total   int                            `json:"total"`
	Message string                         `json:"message"`
}

// ParseBudgets handles parsing budgets from an uploaded spreadsheet.
// @Summary     Parse budgets from a spreadsheet
// @Description Parse an uploaded Excel workbook into budget lines for user review
// @Tags        excel
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       file       formData file   true  "Excel workbook (.xlsx, .xlsm, .xls)"
// @Param       sheet_name formData string false "Sheet to parse (default: Input Categories Budget)"
// @Success     200 {object} ParseBudgetsResponse "Parsed budget lines"
// @Failure     400 {object} ErrorResponse "Invalid file or no budgets found"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /excel/parse-budgets [post]
func (h *ExcelHandler) ParseBudgets(c *gin.Context) {
	if _, err := getUserID(c); err != nil {
		respondWithError(c, err)
		return
	}

	data, err := readUploadedFile(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	lines, err := h.importService.ParseWorkbook(data, c.PostForm("sheet_name"))
	if err != nil {
		respondWithImportError(c, err)
		return
	}

	c.JSON(http.StatusOK, ParseBudgetsResponse{
		Budgets: lines,
		Total:   len(lines),
		Message: fmt.Sprintf("Found %d budgets in the spreadsheet", len(lines)),
	})
}

// ImportBudgets handles importing budgets for a year. Accepts either a
// JSON body with pre-parsed budget lines, or a multipart upload to parse
// and import in one step.
// @Summary     Import budgets
// @Description Replace the family's budgets for a year with lines from a spreadsheet or a pre-parsed selection. Returns 200 with a per-line report even when some or all lines failed; inspect the errors field.
// @Tags        excel
// @Accept      multipart/form-data
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ImportBudgetsRequest false "Pre-parsed budget lines (JSON mode)"
// @Param       file formData file   false "Excel workbook (multipart mode)"
// @Param       year formData string false "Target year (multipart mode, default: current year)"
// @Success     200 {object} services.ImportReport "Import report"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the family administrator"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /excel/import-budgets [post]
func (h *ExcelHandler) ImportBudgets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var (
		year  int
		lines []spreadsheet.ParsedBudgetLine
	)

	if strings.Contains(c.ContentType(), "application/json") {
		var req ImportBudgetsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
		if len(req.Budgets) == 0 {
			respondWithError(c, apperrors.ErrNoBudgetsProvided)
			return
		}
		year = req.Year
		lines = req.Budgets
	} else {
		data, err := readUploadedFile(c)
		if err != nil {
			respondWithError(c, err)
			return
		}

		year = time.Now().Year()
		if yearParam := c.PostForm("year"); yearParam != "" {
			parsed, err := strconv.Atoi(yearParam)
			if err != nil {
				respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid year"))
				return
			}
			year = parsed
		}

		lines, err = h.importService.ParseWorkbook(data, c.PostForm("sheet_name"))
		if err != nil {
			respondWithImportError(c, err)
			return
		}
	}

	report, err := h.importService.ImportBudgets(userID, year, lines)
	if err != nil {
		respondWithError(c, err)
		return
	}

	// Partial (or even total) per-line failure is still a report, not an
	// HTTP failure: the caller inspects the errors field.
	c.JSON(http.StatusOK, report)
}

// readUploadedFile validates and reads the multipart "file" field.
func readUploadedFile(c *gin.Context) ([]byte, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "No file was provided")
	}

	if !hasValidExtension(fileHeader.Filename) {
		return nil, apperrors.ErrInvalidFile
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidFile, err)
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidFile, err)
	}
	if len(data) == 0 {
		return nil, apperrors.ErrEmptyFile
	}
	return data, nil
}

func hasValidExtension(filename string) bool {
	lower := strings.ToLower(filename)
	for _, ext := range validExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// respondWithImportError handles parse errors specially: layout parse
// failures carry diagnostics that are part of the response contract.
func respondWithImportError(c *gin.Context, err error) {
	var parseErr *spreadsheet.ParseError
	if errors.As(err, &parseErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":        parseErr.Code,
				"message":     parseErr.Message,
				"diagnostics": parseErr.Diagnostics,
			},
		})
		return
	}
	respondWithError(c, err)
}
