package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SharingMode is a closed set. The visibility resolver switches over it
// exhaustively; anything unrecognized is a deny, never a silent allow.
type SharingMode string

const (
	SharingModePrivate SharingMode = "private"
	SharingModeClass   SharingMode = "class"
	SharingModeCustom  SharingMode = "custom"
	SharingModePublic  SharingMode = "public"
)

func (m SharingMode) Valid() bool {
	switch m {
	case SharingModePrivate, SharingModeClass, SharingModeCustom, SharingModePublic:
		return true
	}
	return false
}

type ContentType string

const (
	ContentTypeText     ContentType = "text"
	ContentTypeVideo    ContentType = "video"
	ContentTypeDocument ContentType = "document"
	ContentTypeMixed    ContentType = "mixed"
)

func (c ContentType) Valid() bool {
	switch c {
	case ContentTypeText, ContentTypeVideo, ContentTypeDocument, ContentTypeMixed:
		return true
	}
	return false
}

// Lesson may be standalone: CourseID is nullable and a nil course with
// sharing mode "class" simply has no roster to grant through.
type Lesson struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID     *uuid.UUID     `gorm:"type:uuid;index" json:"course_id,omitempty"`
	Course       *Course        `gorm:"constraint:OnDelete:SET NULL;foreignKey:CourseID;references:ID" json:"course,omitempty"`
	TeacherID    *uuid.UUID     `gorm:"type:uuid;index" json:"teacher_id,omitempty"`
	Teacher      *User          `gorm:"constraint:OnDelete:SET NULL;foreignKey:TeacherID;references:ID" json:"teacher,omitempty"`
	Title        string         `gorm:"column:title;not null" json:"title"`
	ContentType  ContentType    `gorm:"column:content_type;not null;default:'text'" json:"content_type"`
	SharingMode  SharingMode    `gorm:"column:sharing_mode;not null;default:'private'" json:"sharing_mode"`
	IsStandalone bool           `gorm:"column:is_standalone;not null;default:false" json:"is_standalone"`
	Position     int            `gorm:"column:position;not null;default:0" json:"position"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Lesson) TableName() string { return "lesson" }

// LessonClassAssignment is the explicit sharing target for "custom" mode.
type LessonClassAssignment struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LessonID   uuid.UUID `gorm:"type:uuid;not null;index:idx_lesson_class,unique" json:"lesson_id"`
	Lesson     *Lesson   `gorm:"constraint:OnDelete:CASCADE;foreignKey:LessonID;references:ID" json:"lesson,omitempty"`
	ClassID    uuid.UUID `gorm:"type:uuid;not null;index:idx_lesson_class,unique" json:"class_id"`
	Class      *Class    `gorm:"constraint:OnDelete:CASCADE;foreignKey:ClassID;references:ID" json:"class,omitempty"`
	// No column default, same reason as ClassStudent.IsActive: a default tag
	// makes gorm skip the field on insert when it is false.
	IsActive   bool      `gorm:"column:is_active;not null" json:"is_active"`
	AssignedAt time.Time `gorm:"column:assigned_at;not null" json:"assigned_at"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (LessonClassAssignment) TableName() string { return "lesson_class" }

// LessonStudentExclusion overrides every positive grant for its pair.
type LessonStudentExclusion struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LessonID   uuid.UUID `gorm:"type:uuid;not null;index:idx_lesson_student_excl,unique" json:"lesson_id"`
	Lesson     *Lesson   `gorm:"constraint:OnDelete:CASCADE;foreignKey:LessonID;references:ID" json:"lesson,omitempty"`
	StudentID  uuid.UUID `gorm:"type:uuid;not null;index:idx_lesson_student_excl,unique" json:"student_id"`
	Student    *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"student,omitempty"`
	Reason     string    `gorm:"column:reason" json:"reason"`
	ExcludedAt time.Time `gorm:"column:excluded_at;not null" json:"excluded_at"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (LessonStudentExclusion) TableName() string { return "lesson_student_exclusion" }
