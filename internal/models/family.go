package models

// Family is the sharing unit that owns budgets. Members split each shared
// budget's allocation between them.
type Family struct {
	Base
	Name       string `gorm:"not null" json:"name"`
	InviteCode string `gorm:"uniqueIndex;size:36" json:"invite_code"`
	CreatedBy  uint   `gorm:"not null" json:"created_by"`

	Members []User         `gorm:"foreignKey:FamilyID" json:"members,omitempty"`
	Budgets []FamilyBudget `gorm:"foreignKey:FamilyID" json:"budgets,omitempty"`
}
