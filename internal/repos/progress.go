package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightclass/brightclass-backend/internal/logger"
	"github.com/brightclass/brightclass-backend/internal/types"
)

type ProgressRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.StudentProgress) error
	Save(ctx context.Context, tx *gorm.DB, row *types.StudentProgress) error
	// GetByStudentAndLesson returns nil (no error) when no row exists yet.
	GetByStudentAndLesson(ctx context.Context, tx *gorm.DB, studentID, lessonID uuid.UUID) (*types.StudentProgress, error)
	GetByStudentAndLessonIDs(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, lessonIDs []uuid.UUID) ([]*types.StudentProgress, error)
}

type progressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProgressRepo(db *gorm.DB, baseLog *logger.Logger) ProgressRepo {
	return &progressRepo{db: db, log: baseLog.With("repo", "ProgressRepo")}
}

func (r *progressRepo) Create(ctx context.Context, tx *gorm.DB, row *types.StudentProgress) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *progressRepo) Save(ctx context.Context, tx *gorm.DB, row *types.StudentProgress) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil
	}
	return transaction.WithContext(ctx).Save(row).Error
}

func (r *progressRepo) GetByStudentAndLesson(ctx context.Context, tx *gorm.DB, studentID, lessonID uuid.UUID) (*types.StudentProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.StudentProgress
	err := transaction.WithContext(ctx).
		Where("student_id = ? AND lesson_id = ?", studentID, lessonID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *progressRepo) GetByStudentAndLessonIDs(ctx context.Context, tx *gorm.DB, studentID uuid.UUID, lessonIDs []uuid.UUID) ([]*types.StudentProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.StudentProgress
	if studentID == uuid.Nil || len(lessonIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("student_id = ? AND lesson_id IN ?", studentID, lessonIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
