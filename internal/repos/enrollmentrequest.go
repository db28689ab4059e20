package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightclass/brightclass-backend/internal/logger"
	"github.com/brightclass/brightclass-backend/internal/types"
)

type EnrollmentRequestRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.EnrollmentRequest) error
	Save(ctx context.Context, tx *gorm.DB, row *types.EnrollmentRequest) error
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.EnrollmentRequest, error)
	// GetByStudentAndCourse returns nil (no error) when no request exists.
	GetByStudentAndCourse(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) (*types.EnrollmentRequest, error)
	ListByStatus(ctx context.Context, tx *gorm.DB, status types.RequestStatus) ([]*types.EnrollmentRequest, error)
}

type enrollmentRequestRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEnrollmentRequestRepo(db *gorm.DB, baseLog *logger.Logger) EnrollmentRequestRepo {
	return &enrollmentRequestRepo{db: db, log: baseLog.With("repo", "EnrollmentRequestRepo")}
}

func (r *enrollmentRequestRepo) Create(ctx context.Context, tx *gorm.DB, row *types.EnrollmentRequest) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *enrollmentRequestRepo) Save(ctx context.Context, tx *gorm.DB, row *types.EnrollmentRequest) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil
	}
	return transaction.WithContext(ctx).Save(row).Error
}

func (r *enrollmentRequestRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.EnrollmentRequest, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.EnrollmentRequest
	if len(ids) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *enrollmentRequestRepo) GetByStudentAndCourse(ctx context.Context, tx *gorm.DB, studentID, courseID uuid.UUID) (*types.EnrollmentRequest, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.EnrollmentRequest
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

func (r *enrollmentRequestRepo) ListByStatus(ctx context.Context, tx *gorm.DB, status types.RequestStatus) ([]*types.EnrollmentRequest, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.EnrollmentRequest
	if err := transaction.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
