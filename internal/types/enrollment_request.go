package types

import (
	"time"

	"github.com/google/uuid"
)

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPending, RequestStatusApproved, RequestStatusRejected:
		return true
	}
	return false
}

func (s RequestStatus) Terminal() bool {
	return s == RequestStatusApproved || s == RequestStatusRejected
}

// EnrollmentRequest gates access to restricted courses. One row per
// (student, course); terminal rows are immutable, so resubmission after a
// rejection is blocked while the row exists.
type EnrollmentRequest struct {
	ID              uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID       uuid.UUID     `gorm:"type:uuid;not null;index:idx_student_course_req,unique" json:"student_id"`
	Student         *User         `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"student,omitempty"`
	CourseID        uuid.UUID     `gorm:"type:uuid;not null;index:idx_student_course_req,unique" json:"course_id"`
	Course          *Course       `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty"`
	ClassID         *uuid.UUID    `gorm:"type:uuid" json:"class_id,omitempty"`
	Class           *Class        `gorm:"constraint:OnDelete:SET NULL;foreignKey:ClassID;references:ID" json:"class,omitempty"`
	Status          RequestStatus `gorm:"column:status;not null;default:'pending'" json:"status"`
	Message         string        `gorm:"column:message" json:"message"`
	RejectionReason string        `gorm:"column:rejection_reason" json:"rejection_reason"`
	ReviewedBy      *uuid.UUID    `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	Reviewer        *User         `gorm:"constraint:OnDelete:SET NULL;foreignKey:ReviewedBy;references:ID" json:"reviewer,omitempty"`
	ReviewedAt      *time.Time    `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt       time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time     `gorm:"not null" json:"updated_at"`
}

func (EnrollmentRequest) TableName() string { return "enrollment_request" }
