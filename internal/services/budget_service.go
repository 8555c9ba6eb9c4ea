package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "domus/internal/errors"
	"domus/internal/models"
	"domus/internal/pagination"
)

// budgetService handles read access to family budgets.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// GetFamilyBudgets returns a paginated list of the caller's family
// budgets, optionally filtered by year.
func (s *budgetService) GetFamilyBudgets(userID uint, year *int, page pagination.PageRequest) (*pagination.PageResponse[models.FamilyBudget], error) {
	familyID, err := s.familyIDFor(userID)
	if err != nil {
		return nil, err
	}
	page.Defaults()

	base := s.db.Model(&models.FamilyBudget{}).Where("family_id = ?", familyID)
	if year != nil {
		base = base.Where("year = ?", *year)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgets []models.FamilyBudget
	if err := base.Order("year DESC, category, subcategory").
		Scopes(pagination.Paginate(page)).Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(budgets, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetBudgetAllocations returns member allocations for one of the
// caller's family budgets.
func (s *budgetService) GetBudgetAllocations(userID, budgetID uint) ([]models.UserBudget, error) {
	familyID, err := s.familyIDFor(userID)
	if err != nil {
		return nil, err
	}

	var budget models.FamilyBudget
	if err := s.db.Where("id = ? AND family_id = ?", budgetID, familyID).
		First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var allocations []models.UserBudget
	if err := s.db.Where("family_budget_id = ?", budget.ID).
		Order("user_id").Find(&allocations).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return allocations, nil
}

func (s *budgetService) familyIDFor(userID uint) (uint, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperrors.ErrUserNotFound
		}
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if user.FamilyID == nil {
		return 0, apperrors.ErrUserWithoutFamily
	}
	return *user.FamilyID, nil
}
