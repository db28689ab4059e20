package types

import (
	"time"

	"github.com/google/uuid"
)

type ProgressStatus string

const (
	ProgressStatusNotStarted ProgressStatus = "not_started"
	ProgressStatusInProgress ProgressStatus = "in_progress"
	ProgressStatusCompleted  ProgressStatus = "completed"
)

// StudentProgress is one row per (student, lesson). "not_started" is
// implicit: the row is only created on the first progress write.
type StudentProgress struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID          uuid.UUID      `gorm:"type:uuid;not null;index:idx_student_lesson,unique" json:"student_id"`
	Student            *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"student,omitempty"`
	LessonID           uuid.UUID      `gorm:"type:uuid;not null;index:idx_student_lesson,unique" json:"lesson_id"`
	Lesson             *Lesson        `gorm:"constraint:OnDelete:CASCADE;foreignKey:LessonID;references:ID" json:"lesson,omitempty"`
	Status             ProgressStatus `gorm:"column:status;not null;default:'in_progress'" json:"status"`
	ProgressPercentage int            `gorm:"column:progress_percentage;not null;default:0" json:"progress_percentage"`
	VideoProgress      int            `gorm:"column:video_progress;not null;default:0" json:"video_progress"`
	DocumentsRead      int            `gorm:"column:documents_read;not null;default:0" json:"documents_read"`
	TotalDocuments     int            `gorm:"column:total_documents;not null;default:0" json:"total_documents"`
	TimeSpentMinutes   int            `gorm:"column:time_spent_minutes;not null;default:0" json:"time_spent_minutes"`
	StartedAt          *time.Time     `gorm:"column:started_at" json:"started_at,omitempty"`
	CompletedAt        *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt          time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"not null" json:"updated_at"`
}

func (StudentProgress) TableName() string { return "student_progress" }
