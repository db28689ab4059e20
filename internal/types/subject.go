package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Subject struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SchoolID  uuid.UUID      `gorm:"type:uuid;not null;index:idx_school_subject_code,unique" json:"school_id"`
	School    *School        `gorm:"constraint:OnDelete:CASCADE;foreignKey:SchoolID;references:ID" json:"school,omitempty"`
	Name      string         `gorm:"column:name;not null" json:"name"`
	Code      string         `gorm:"column:code;not null;index:idx_school_subject_code,unique" json:"code"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Subject) TableName() string { return "subject" }
