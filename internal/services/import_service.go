package services

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "domus/internal/errors"
	"domus/internal/models"
	"domus/internal/spreadsheet"
)

// importService orchestrates the spreadsheet budget ingestion pipeline.
type importService struct {
	db              *gorm.DB
	familyService   FamilyServicer
	activityService ActivityServicer
}

// NewImportService creates a new ImportServicer.
func NewImportService(db *gorm.DB, familyService FamilyServicer, activityService ActivityServicer) ImportServicer {
	return &importService{db: db, familyService: familyService, activityService: activityService}
}

// ParseWorkbook decodes spreadsheet bytes and extracts budget lines from
// the named sheet. Parse failures propagate as *spreadsheet.ParseError so
// callers can surface the layout diagnostics.
func (s *importService) ParseWorkbook(data []byte, sheetName string) ([]spreadsheet.ParsedBudgetLine, error) {
	if len(data) == 0 {
		return nil, apperrors.ErrEmptyFile
	}

	wb, err := spreadsheet.ReadWorkbook(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidFile, err)
	}

	if sheetName == "" {
		sheetName = spreadsheet.DefaultSheetName
	}
	grid, ok := wb.Sheet(sheetName)
	if !ok {
		return nil, apperrors.WithMessage(apperrors.ErrSheetNotFound,
			fmt.Sprintf("sheet %q not found in workbook", sheetName))
	}

	return spreadsheet.ParseBudgetSheet(grid, sheetName)
}

// ImportPlan is the materialized intent of one import call: retire every
// budget of (FamilyID, Year), then create Creates in order.
type ImportPlan struct {
	FamilyID uint
	Year     int
	Creates  []models.FamilyBudget
}

// planImport turns parsed lines into an import plan, normalizing category
// and subcategory text to system enum form.
func planImport(familyID uint, year int, lines []spreadsheet.ParsedBudgetLine) ImportPlan {
	creates := make([]models.FamilyBudget, 0, len(lines))
	for _, line := range lines {
		creates = append(creates, models.FamilyBudget{
			FamilyID:           familyID,
			Year:               year,
			Category:           NormalizeEnum(line.Category),
			Subcategory:        NormalizeEnum(line.Subcategory),
			TotalAmount:        line.TotalAmount,
			MonthlyAmounts:     models.MonthlyAmounts(line.MonthlyAmounts),
			BudgetType:         models.BudgetTypeShared,
			DistributionMethod: models.DistributionEqual,
			AutoDistribute:     true,
		})
	}
	return ImportPlan{FamilyID: familyID, Year: year, Creates: creates}
}

// ImportBudgets replaces the family's budgets for the given year with the
// provided lines. Provisioning or authorization failures abort the whole
// call; per-line failures are isolated into the report and the batch
// continues. Each budget and its allocations commit as one unit.
func (s *importService) ImportBudgets(userID uint, year int, lines []spreadsheet.ParsedBudgetLine) (*ImportReport, error) {
	if len(lines) == 0 {
		return nil, apperrors.ErrNoBudgetsProvided
	}

	prov, err := s.familyService.EnsureFamily(userID)
	if err != nil {
		return nil, err
	}

	// Only the family administrator may replace the family's budgets. A
	// user provisioned during this call is the new administrator.
	if !prov.Created {
		var user models.User
		if err := s.db.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrUserNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if !user.IsFamilyAdmin {
			return nil, apperrors.ErrNotFamilyAdmin
		}
	}

	plan := planImport(prov.FamilyID, year, lines)

	// Idempotent replace: the year's allocations and budgets go first so
	// a re-import replaces rather than accumulates. This completes fully
	// before any insert begins.
	if err := s.retireYear(plan.FamilyID, plan.Year); err != nil {
		return nil, err
	}

	report := &ImportReport{
		ErrorDetails: []string{},
		Budgets:      []models.FamilyBudget{},
	}

	for i := range plan.Creates {
		budget := plan.Creates[i]
		if err := s.createWithAllocations(&budget); err != nil {
			report.Errors++
			report.ErrorDetails = append(report.ErrorDetails,
				lineError(&plan.Creates[i], err))
			continue
		}
		report.Created++
		report.Budgets = append(report.Budgets, budget)
	}

	// Best-effort activity log; a logging failure never fails the import.
	s.activityService.Log(userID, "budgets_imported", "budget",
		fmt.Sprintf("Imported %d budgets from spreadsheet for year %d", report.Created, year),
		map[string]interface{}{
			"year":   year,
			"count":  report.Created,
			"errors": report.Errors,
		})

	return report, nil
}

// retireYear deletes all allocations and budgets of (familyID, year).
func (s *importService) retireYear(familyID uint, year int) error {
	var ids []uint
	if err := s.db.Model(&models.FamilyBudget{}).
		Where("family_id = ? AND year = ?", familyID, year).
		Pluck("id", &ids).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(ids) == 0 {
		return nil
	}

	// Allocations first; the store is a dumb CRUD backend with no
	// cascade of its own.
	if err := s.db.Where("family_budget_id IN ?", ids).
		Delete(&models.UserBudget{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Where("id IN ?", ids).
		Delete(&models.FamilyBudget{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// createWithAllocations creates one budget and, for auto-distributed
// equal budgets, one allocation per active family member, in a single
// transaction. Each member's share is the total divided by the member
// count rounded to cents; the sub-cent remainder stays unassigned.
func (s *importService) createWithAllocations(budget *models.FamilyBudget) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(budget).Error; err != nil {
			return err
		}

		if !budget.AutoDistribute || budget.DistributionMethod != models.DistributionEqual {
			return nil
		}

		members, err := s.familyService.ActiveMembers(budget.FamilyID)
		if err != nil {
			return err
		}
		if len(members) == 0 {
			return nil
		}

		share := budget.TotalAmount.
			Div(decimal.NewFromInt(int64(len(members)))).
			Round(2)

		allocations := make([]models.UserBudget, 0, len(members))
		for _, member := range members {
			allocations = append(allocations, models.UserBudget{
				UserID:          member.ID,
				FamilyBudgetID:  budget.ID,
				AllocatedAmount: share,
				SpentAmount:     decimal.Zero,
			})
		}
		return tx.Create(&allocations).Error
	})
}

// lineError formats a per-line failure, appending a permissions hint when
// the store error looks authorization-related.
func lineError(budget *models.FamilyBudget, err error) string {
	msg := fmt.Sprintf("failed to create budget %s/%s: %v",
		budget.Category, budget.Subcategory, err)
	lower := strings.ToLower(err.Error())
	if strings.Contains(lower, "permission") || strings.Contains(lower, "denied") ||
		strings.Contains(lower, "policy") {
		msg += " (store permission error: verify the importing user is the family administrator)"
	}
	return msg
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeEnum converts human-entered category text to system enum
// form: upper-case, whitespace runs collapsed to underscores, anything
// outside [A-Z0-9_] stripped.
func NormalizeEnum(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = whitespaceRun.ReplaceAllString(s, "_")

	var sb strings.Builder
	for _, r := range s {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
