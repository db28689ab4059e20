package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Class struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SchoolID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"school_id"`
	School       *School        `gorm:"constraint:OnDelete:CASCADE;foreignKey:SchoolID;references:ID" json:"school,omitempty"`
	Name         string         `gorm:"column:name;not null" json:"name"`
	GradeLevel   string         `gorm:"column:grade_level" json:"grade_level"`
	AcademicYear string         `gorm:"column:academic_year" json:"academic_year"`
	Capacity     int            `gorm:"column:capacity;not null;default:0" json:"capacity"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Class) TableName() string { return "class" }

// ClassStudent is the roster pivot. Sharing-mode "class" visibility and
// enrollment approval both resolve through active rows here.
type ClassStudent struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClassID   uuid.UUID `gorm:"type:uuid;not null;index:idx_class_student,unique" json:"class_id"`
	Class     *Class    `gorm:"constraint:OnDelete:CASCADE;foreignKey:ClassID;references:ID" json:"class,omitempty"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;index:idx_class_student,unique" json:"student_id"`
	Student   *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:StudentID;references:ID" json:"student,omitempty"`
	// No column default: gorm skips zero-value fields that carry one, which
	// would make an inactive row unrepresentable via Create. Writers set the
	// value explicitly.
	IsActive  bool      `gorm:"column:is_active;not null" json:"is_active"`
	JoinedAt  time.Time `gorm:"column:joined_at;not null" json:"joined_at"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ClassStudent) TableName() string { return "class_student" }

type ClassTeacher struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClassID   uuid.UUID `gorm:"type:uuid;not null;index:idx_class_teacher,unique" json:"class_id"`
	Class     *Class    `gorm:"constraint:OnDelete:CASCADE;foreignKey:ClassID;references:ID" json:"class,omitempty"`
	TeacherID uuid.UUID `gorm:"type:uuid;not null;index:idx_class_teacher,unique" json:"teacher_id"`
	Teacher   *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:TeacherID;references:ID" json:"teacher,omitempty"`
	RoleLabel string    `gorm:"column:role_label" json:"role_label"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ClassTeacher) TableName() string { return "class_teacher" }

type ClassSubject struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClassID   uuid.UUID `gorm:"type:uuid;not null;index:idx_class_subject,unique" json:"class_id"`
	Class     *Class    `gorm:"constraint:OnDelete:CASCADE;foreignKey:ClassID;references:ID" json:"class,omitempty"`
	SubjectID uuid.UUID `gorm:"type:uuid;not null;index:idx_class_subject,unique" json:"subject_id"`
	Subject   *Subject  `gorm:"constraint:OnDelete:CASCADE;foreignKey:SubjectID;references:ID" json:"subject,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ClassSubject) TableName() string { return "class_subject" }
