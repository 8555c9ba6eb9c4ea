package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// BudgetType distinguishes budgets shared by the whole family from
// budgets owned by a single member.
type BudgetType string

const (
	BudgetTypeShared     BudgetType = "shared"
	BudgetTypeIndividual BudgetType = "individual"
)

// DistributionMethod describes how a budget's total is split between
// family members.
type DistributionMethod string

const (
	DistributionEqual      DistributionMethod = "equal"
	DistributionPercentage DistributionMethod = "percentage"
	DistributionManual     DistributionMethod = "manual"
)

// MonthlyAmounts maps upper-case month names (JANUARY..DECEMBER) to the
// budgeted amount for that month. Only months with a positive amount are
// present. Stored as a JSON column.
type MonthlyAmounts map[string]decimal.Decimal

// Value implements driver.Valuer, serializing the map as JSON.
func (m MonthlyAmounts) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner, deserializing a JSON column value.
func (m *MonthlyAmounts) Scan(value interface{}) error {
	if value == nil {
		*m = MonthlyAmounts{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for MonthlyAmounts: %T", value)
	}
	if len(data) == 0 {
		*m = MonthlyAmounts{}
		return nil
	}
	return json.Unmarshal(data, m)
}

// Total returns the sum of all monthly amounts.
func (m MonthlyAmounts) Total() decimal.Decimal {
	total := decimal.Zero
	for _, amount := range m {
		total = total.Add(amount)
	}
	return total
}

// FamilyBudget is one category/subcategory spend plan for a family in a
// given year. Category and subcategory are stored normalized (upper-case,
// whitespace collapsed to underscores, non-alphanumeric stripped).
// Re-importing a year replaces all of that year's budgets.
type FamilyBudget struct {
	Base
	FamilyID           uint               `gorm:"not null;index:idx_family_budgets_family_year" json:"family_id"`
	Year               int                `gorm:"not null;index:idx_family_budgets_family_year" json:"year"`
	Category           string             `gorm:"not null" json:"category"`
	Subcategory        string             `gorm:"not null" json:"subcategory"`
	TotalAmount        decimal.Decimal    `gorm:"type:numeric(14,2);not null" json:"total_amount"`
	MonthlyAmounts     MonthlyAmounts     `gorm:"type:jsonb" json:"monthly_amounts"`
	BudgetType         BudgetType         `gorm:"not null;default:shared" json:"budget_type"`
	DistributionMethod DistributionMethod `gorm:"not null;default:equal" json:"distribution_method"`
	AutoDistribute     bool               `gorm:"default:true" json:"auto_distribute"`

	Allocations []UserBudget `gorm:"foreignKey:FamilyBudgetID" json:"allocations,omitempty"`
}
