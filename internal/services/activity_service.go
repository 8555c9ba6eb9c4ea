package services

import (
	"encoding/json"

	"gorm.io/gorm"

	"domus/internal/logger"
	"domus/internal/models"
)

// activityService handles activity log recording.
type activityService struct {
	db *gorm.DB
}

// NewActivityService creates a new ActivityServicer.
func NewActivityService(db *gorm.DB) ActivityServicer {
	return &activityService{db: db}
}

// Log records an activity event. Errors are logged but never propagate
// to avoid disrupting the main operation.
func (s *activityService) Log(userID uint, actionType, entityType, description string, details map[string]interface{}) {
	var detailsJSON string
	if details != nil {
		data, err := json.Marshal(details)
		if err != nil {
			logger.Get().Errorw("failed to marshal activity log details", "error", err, "action_type", actionType)
			detailsJSON = "{}"
		} else {
			detailsJSON = string(data)
		}
	}

	entry := &models.ActivityLog{
		UserID:      userID,
		ActionType:  actionType,
		EntityType:  entityType,
		Description: description,
		Details:     detailsJSON,
	}

	if err := s.db.Create(entry).Error; err != nil {
		logger.Get().Errorw("failed to create activity log entry",
			"error", err,
			"user_id", userID,
			"action_type", actionType,
			"entity_type", entityType,
		)
	}
}
