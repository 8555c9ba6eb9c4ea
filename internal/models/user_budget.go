package models

import "github.com/shopspring/decimal"

// UserBudget is one family member's share of a FamilyBudget. Allocations
// are created alongside their budget during import and deleted with it;
// SpentAmount is mutated by transaction recording, not by the import
// pipeline.
type UserBudget struct {
	Base
	UserID          uint            `gorm:"not null;index" json:"user_id"`
	FamilyBudgetID  uint            `gorm:"not null;index" json:"family_budget_id"`
	AllocatedAmount decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"allocated_amount"`
	SpentAmount     decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"spent_amount"`
}
