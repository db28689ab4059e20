package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightclass/brightclass-backend/internal/logger"
	"github.com/brightclass/brightclass-backend/internal/types"
)

type ReviewRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.CourseReview) error
	ListByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.CourseReview, error)
	GetByStudentAndCourse(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) (*types.CourseReview, error)
}

type reviewRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReviewRepo(db *gorm.DB, baseLog *logger.Logger) ReviewRepo {
	return &reviewRepo{db: db, log: baseLog.With("repo", "ReviewRepo")}
}

func (r *reviewRepo) Create(ctx context.Context, tx *gorm.DB, row *types.CourseReview) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *reviewRepo) ListByCourseID(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.CourseReview, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.CourseReview
	if courseID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *reviewRepo) GetByStudentAndCourse(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) (*types.CourseReview, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.CourseReview
	err := transaction.WithContext(ctx).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
