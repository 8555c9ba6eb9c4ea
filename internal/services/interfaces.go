package services

import (
	"domus/internal/models"
	"domus/internal/pagination"
	"domus/internal/spreadsheet"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, name string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	StoreRefreshTokenHash(userID uint, tokenHash string) error
	GetRefreshTokenHash(userID uint) (string, error)
}

// ProvisionResult describes the outcome of EnsureFamily.
type ProvisionResult struct {
	FamilyID uint
	// Created is true when a family was provisioned during this call,
	// making the acting user its administrator.
	Created bool
	// ReadBackStale is true when the membership read-back poll never
	// observed the new family and the write-time family ID was trusted.
	ReadBackStale bool
}

// FamilyServicer defines the contract for family membership and provisioning.
type FamilyServicer interface {
	// EnsureFamily guarantees the user belongs to a family, creating one
	// with the user as administrator when needed. Idempotent: a user who
	// already has a family gets its ID back unchanged.
	EnsureFamily(userID uint) (*ProvisionResult, error)
	GetFamilyWithMembers(userID uint) (*models.Family, error)
	ActiveMembers(familyID uint) ([]models.User, error)
}

// ImportReport aggregates per-line outcomes of a budget import. A batch
// with zero successes and at least one error is still a report, not a
// failure: callers must inspect Errors, not just the HTTP status.
type ImportReport struct {
	Created      int                   `json:"created"`
	Errors       int                   `json:"errors"`
	ErrorDetails []string              `json:"error_details"`
	Budgets      []models.FamilyBudget `json:"budgets"`
}

// ImportServicer defines the contract for the spreadsheet budget
// ingestion pipeline.
type ImportServicer interface {
	// ParseWorkbook decodes spreadsheet bytes and extracts budget lines
	// from the named sheet (DefaultSheetName when empty).
	ParseWorkbook(data []byte, sheetName string) ([]spreadsheet.ParsedBudgetLine, error)
	// ImportBudgets replaces the family's budgets for the given year with
	// the provided lines, provisioning a family for the user if needed.
	ImportBudgets(userID uint, year int, lines []spreadsheet.ParsedBudgetLine) (*ImportReport, error)
}

// BudgetServicer defines the contract for reading family budgets.
type BudgetServicer interface {
	GetFamilyBudgets(userID uint, year *int, page pagination.PageRequest) (*pagination.PageResponse[models.FamilyBudget], error)
	GetBudgetAllocations(userID, budgetID uint) ([]models.UserBudget, error)
}

// ActivityServicer defines the contract for activity logging.
type ActivityServicer interface {
	Log(userID uint, actionType, entityType, description string, details map[string]interface{})
}
