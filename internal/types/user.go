package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SchoolID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"school_id"`
	School    *School        `gorm:"constraint:OnDelete:CASCADE;foreignKey:SchoolID;references:ID" json:"school,omitempty"`
	Email     string         `gorm:"column:email;uniqueIndex;not null" json:"email"`
	Password  string         `gorm:"column:password;not null" json:"-"`
	FirstName string         `gorm:"column:first_name;not null" json:"first_name"`
	LastName  string         `gorm:"column:last_name;not null" json:"last_name"`
	Role      Role           `gorm:"column:role;not null;default:'student'" json:"role"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "user" }
