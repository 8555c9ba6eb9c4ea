package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"domus/internal/models"
	"domus/internal/uuid"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates an active user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		Name:     fmt.Sprintf("Test User %d", nextID()),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestFamily creates a family owned by the given user.
func CreateTestFamily(t *testing.T, db *gorm.DB, createdBy uint) *models.Family {
	t.Helper()

	family := &models.Family{
		Name:       fmt.Sprintf("Test Family %d", nextID()),
		InviteCode: uuid.New(),
		CreatedBy:  createdBy,
	}
	if err := db.Create(family).Error; err != nil {
		t.Fatalf("failed to create test family: %v", err)
	}
	return family
}

// CreateTestAdmin creates a user who administers a fresh family.
// Returns the user and the family.
func CreateTestAdmin(t *testing.T, db *gorm.DB) (*models.User, *models.Family) {
	t.Helper()

	user := CreateTestUser(t, db)
	family := CreateTestFamily(t, db, user.ID)
	JoinFamily(t, db, user, family.ID, true)
	return user, family
}

// CreateTestMember creates an active non-admin member of the family.
func CreateTestMember(t *testing.T, db *gorm.DB, familyID uint) *models.User {
	t.Helper()

	user := CreateTestUser(t, db)
	JoinFamily(t, db, user, familyID, false)
	return user
}

// JoinFamily assigns the user to the family, optionally as administrator.
func JoinFamily(t *testing.T, db *gorm.DB, user *models.User, familyID uint, admin bool) {
	t.Helper()

	if err := db.Model(user).Updates(map[string]interface{}{
		"family_id":       familyID,
		"is_family_admin": admin,
	}).Error; err != nil {
		t.Fatalf("failed to join family: %v", err)
	}
	user.FamilyID = &familyID
	user.IsFamilyAdmin = admin
}

// CreateTestFamilyBudget creates a shared, equally distributed budget.
func CreateTestFamilyBudget(t *testing.T, db *gorm.DB, familyID uint, year int, category, subcategory, total string) *models.FamilyBudget {
	t.Helper()

	totalAmount, err := decimal.NewFromString(total)
	if err != nil {
		t.Fatalf("invalid total amount %q: %v", total, err)
	}

	budget := &models.FamilyBudget{
		FamilyID:           familyID,
		Year:               year,
		Category:           category,
		Subcategory:        subcategory,
		TotalAmount:        totalAmount,
		MonthlyAmounts:     models.MonthlyAmounts{"JANUARY": totalAmount},
		BudgetType:         models.BudgetTypeShared,
		DistributionMethod: models.DistributionEqual,
		AutoDistribute:     true,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test family budget: %v", err)
	}
	return budget
}
