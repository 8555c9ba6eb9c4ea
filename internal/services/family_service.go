package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "domus/internal/errors"
	"domus/internal/logger"
	"domus/internal/models"
	"domus/internal/uuid"
)

// familyService handles family membership and automatic provisioning.
type familyService struct {
	db     *gorm.DB
	policy ProvisionPolicy
}

// NewFamilyService creates a new FamilyServicer with the given
// provisioning policy.
func NewFamilyService(db *gorm.DB, policy ProvisionPolicy) FamilyServicer {
	return &familyService{db: db, policy: policy}
}

// provisionStep is one step of the provisioning saga. When a later step
// fails, the compensate funcs of all completed steps run in reverse
// order before the failure surfaces.
type provisionStep struct {
	name       string
	fail       *apperrors.AppError
	run        func() error
	compensate func() error
}

// runProvisionSteps executes steps in order, compensating completed
// steps on failure. Compensation errors are logged, not surfaced: the
// original failure is the one the caller needs.
func runProvisionSteps(steps []provisionStep) error {
	for i, step := range steps {
		err := step.run()
		if err == nil {
			continue
		}
		for j := i - 1; j >= 0; j-- {
			if steps[j].compensate == nil {
				continue
			}
			if cerr := steps[j].compensate(); cerr != nil {
				logger.Get().Errorw("provisioning compensation failed",
					"step", steps[j].name,
					"error", cerr.Error(),
				)
			}
		}
		return apperrors.Wrap(step.fail, err)
	}
	return nil
}

// EnsureFamily guarantees the user belongs to a family. When the user has
// none, it creates one and assigns the user as administrator; if the
// admin assignment fails the just-created family is deleted, since a
// family with no reachable administrator is worse than no family.
func (s *familyService) EnsureFamily(userID uint) (*ProvisionResult, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// Already provisioned: no-op.
	if user.FamilyID != nil {
		return &ProvisionResult{FamilyID: *user.FamilyID}, nil
	}

	family := models.Family{
		Name:       familyNameFor(&user),
		InviteCode: uuid.New(),
		CreatedBy:  user.ID,
	}

	steps := []provisionStep{
		{
			name: "create family",
			fail: apperrors.ErrFamilyCreationFailed,
			run: func() error {
				return s.db.Create(&family).Error
			},
			compensate: func() error {
				return s.db.Unscoped().Delete(&models.Family{}, family.ID).Error
			},
		},
		{
			name: "assign admin",
			fail: apperrors.ErrAdminAssignmentFailed,
			run: func() error {
				return s.db.Model(&models.User{}).Where("id = ?", user.ID).
					Updates(map[string]interface{}{
						"family_id":       family.ID,
						"is_family_admin": true,
					}).Error
			},
		},
	}

	if err := runProvisionSteps(steps); err != nil {
		return nil, err
	}

	stale := s.pollMembership(user.ID)
	if stale && !s.policy.TrustWriteOnStaleRead {
		return nil, apperrors.WithMessage(apperrors.ErrFamilyCreationFailed,
			"family membership was not visible after provisioning")
	}
	if stale {
		logger.Get().Warnw("family membership read-back stayed stale, trusting write-time family ID",
			"user_id", user.ID,
			"family_id", family.ID,
		)
	}

	return &ProvisionResult{FamilyID: family.ID, Created: true, ReadBackStale: stale}, nil
}

// pollMembership re-reads the user's membership with a bounded
// fixed-delay poll; the backing store may not reflect the admin
// assignment immediately to a subsequent read. Returns true when the
// poll never observed the new family.
func (s *familyService) pollMembership(userID uint) bool {
	attempts := s.policy.ReadBack.attempts()
	for attempt := 1; attempt <= attempts; attempt++ {
		var fresh models.User
		err := s.db.First(&fresh, userID).Error
		if err == nil && fresh.FamilyID != nil {
			return false
		}
		if err != nil {
			logger.Get().Warnw("membership read-back failed",
				"user_id", userID,
				"attempt", attempt,
				"error", err.Error(),
			)
		}
		if attempt < attempts && s.policy.ReadBack.Backoff > 0 {
			time.Sleep(s.policy.ReadBack.Backoff)
		}
	}
	return true
}

// GetFamilyWithMembers returns the user's family with its members loaded.
func (s *familyService) GetFamilyWithMembers(userID uint) (*models.Family, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if user.FamilyID == nil {
		return nil, apperrors.ErrUserWithoutFamily
	}

	var family models.Family
	if err := s.db.Preload("Members").First(&family, *user.FamilyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrFamilyNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &family, nil
}

// ActiveMembers returns the family's active members.
func (s *familyService) ActiveMembers(familyID uint) ([]models.User, error) {
	var members []models.User
	if err := s.db.Where("family_id = ? AND is_active = ?", familyID, true).
		Order("id").Find(&members).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return members, nil
}

// familyNameFor derives a default family name from the user's display
// name, falling back to the email local part.
func familyNameFor(user *models.User) string {
	base := strings.TrimSpace(user.Name)
	if base == "" {
		base = user.Email
		if at := strings.Index(base, "@"); at > 0 {
			base = base[:at]
		}
	}
	return base + "'s Family"
}
