package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Course struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SchoolID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"school_id"`
	School      *School        `gorm:"constraint:OnDelete:CASCADE;foreignKey:SchoolID;references:ID" json:"school,omitempty"`
	TeacherID   *uuid.UUID     `gorm:"type:uuid;index" json:"teacher_id,omitempty"`
	Teacher     *User          `gorm:"constraint:OnDelete:SET NULL;foreignKey:TeacherID;references:ID" json:"teacher,omitempty"`
	SubjectID   *uuid.UUID     `gorm:"type:uuid;index" json:"subject_id,omitempty"`
	Subject     *Subject       `gorm:"constraint:OnDelete:SET NULL;foreignKey:SubjectID;references:ID" json:"subject,omitempty"`
	Title       string         `gorm:"column:title;not null" json:"title"`
	Description string         `gorm:"column:description" json:"description"`
	IsPublished bool           `gorm:"column:is_published;not null;default:false" json:"is_published"`
	PriceCents  int            `gorm:"column:price_cents;not null;default:0" json:"price_cents"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Course) TableName() string { return "course" }

// CourseClass links a course to the classes whose rosters may take it.
type CourseClass struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID  uuid.UUID `gorm:"type:uuid;not null;index:idx_course_class,unique" json:"course_id"`
	Course    *Course   `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
	ClassID   uuid.UUID `gorm:"type:uuid;not null;index:idx_course_class,unique" json:"class_id"`
	Class     *Class    `gorm:"constraint:OnDelete:CASCADE;foreignKey:ClassID;references:ID" json:"class,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (CourseClass) TableName() string { return "course_class" }
