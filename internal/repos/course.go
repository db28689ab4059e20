package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightclass/brightclass-backend/internal/logger"
	"github.com/brightclass/brightclass-backend/internal/types"
)

type CourseRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Course) ([]*types.Course, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Course, error)
	ListPublishedBySchool(ctx context.Context, tx *gorm.DB, schoolID uuid.UUID) ([]*types.Course, error)
	LinkClass(ctx context.Context, tx *gorm.DB, row *types.CourseClass) error
	// ClassIDsForCourse returns linked classes, oldest link first.
	ClassIDsForCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]uuid.UUID, error)
	// CourseIDsForClassIDs returns the courses any of the given classes are
	// linked to.
	CourseIDsForClassIDs(ctx context.Context, tx *gorm.DB, classIDs []uuid.UUID) ([]uuid.UUID, error)
}

type courseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return &courseRepo{db: db, log: baseLog.With("repo", "CourseRepo")}
}

func (r *courseRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Course) ([]*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.Course{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *courseRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Course
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

func (r *courseRepo) ListPublishedBySchool(ctx context.Context, tx *gorm.DB, schoolID uuid.UUID) ([]*types.Course, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Course
	if schoolID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("school_id = ? AND is_published = ?", schoolID, true).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *courseRepo) LinkClass(ctx context.Context, tx *gorm.DB, row *types.CourseClass) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *courseRepo) ClassIDsForCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]uuid.UUID, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var ids []uuid.UUID
	if courseID == uuid.Nil {
		return ids, nil
	}
	if err := transaction.WithContext(ctx).
		Model(&types.CourseClass{}).
		Where("course_id = ?", courseID).
		Order("created_at ASC").
		Pluck("class_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *courseRepo) CourseIDsForClassIDs(ctx context.Context, tx *gorm.DB, classIDs []uuid.UUID) ([]uuid.UUID, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var ids []uuid.UUID
	if len(classIDs) == 0 {
		return ids, nil
	}
	if err := transaction.WithContext(ctx).
		Model(&types.CourseClass{}).
		Distinct("course_id").
		Where("class_id IN ?", classIDs).
		Pluck("course_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
