package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SiteSettings is a single configuration row, loaded once per request
// through the settings service rather than held as global mutable state.
// Options is a jsonb map restricted to recognized keys.
type SiteSettings struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SiteName     string         `gorm:"column:site_name;not null" json:"site_name"`
	CurrencyCode string         `gorm:"column:currency_code;not null;default:'USD'" json:"currency_code"`
	Options      datatypes.JSON `gorm:"column:options;type:jsonb" json:"options,omitempty"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null" json:"updated_at"`
}

func (SiteSettings) TableName() string { return "site_settings" }

// Recognized option keys for SiteSettings.Options. Unknown keys are
// rejected on update.
const (
	OptionEnrollmentOpen   = "enrollment_open"
	OptionPublicLessonFeed = "public_lesson_feed"
	OptionReviewsEnabled   = "reviews_enabled"
	OptionMaintenanceMode  = "maintenance_mode"
)

func RecognizedOption(key string) bool {
	switch key {
	case OptionEnrollmentOpen, OptionPublicLessonFeed, OptionReviewsEnabled, OptionMaintenanceMode:
		return true
	}
	return false
}
