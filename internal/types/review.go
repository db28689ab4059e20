package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CourseReview: one per student per course, rating 1-5.
type CourseReview struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID  uuid.UUID      `gorm:"type:uuid;not null;index:idx_course_review,unique" json:"course_id"`
	Course    *Course        `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
	StudentID uuid.UUID      `gorm:"type:uuid;not null;index:idx_course_review,unique" json:"student_id"`
	Student   *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"student,omitempty"`
	Rating    int            `gorm:"column:rating;not null" json:"rating"`
	Comment   string         `gorm:"column:comment" json:"comment"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (CourseReview) TableName() string { return "course_review" }
