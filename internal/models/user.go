package models

import "time"

// User represents the user model in the database. A user may belong to at
// most one family; the family administrator is the only member allowed to
// import or replace the family's budgets.
type User struct {
	Base
	Email            string     `gorm:"uniqueIndex;not null" json:"email"`
	Password         string     `gorm:"not null" json:"-"`
	Name             string     `json:"name"`
	FamilyID         *uint      `gorm:"index" json:"family_id,omitempty"`
	IsFamilyAdmin    bool       `gorm:"default:false" json:"is_family_admin"`
	IsActive         bool       `gorm:"default:true" json:"is_active"`
	RefreshTokenHash string     `gorm:"size:64" json:"-"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`

	Family      *Family      `gorm:"foreignKey:FamilyID" json:"family,omitempty"`
	UserBudgets []UserBudget `gorm:"foreignKey:UserID" json:"user_budgets,omitempty"`
}
