package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ActivityEvent is an append-only audit row: logins, progress completions,
// enrollment submissions and reviews.
type ActivityEvent struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Action    string         `gorm:"column:action;not null;index" json:"action"`
	Detail    datatypes.JSON `gorm:"column:detail;type:jsonb" json:"detail,omitempty"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
}

func (ActivityEvent) TableName() string { return "activity_event" }

const (
	ActionLogin            = "login"
	ActionLessonProgress   = "lesson_progress"
	ActionLessonCompleted  = "lesson_completed"
	ActionRequestSubmitted = "enrollment_request_submitted"
	ActionRequestReviewed  = "enrollment_request_reviewed"
	ActionReviewPosted     = "course_review_posted"
	ActionSettingsUpdated  = "settings_updated"
)
