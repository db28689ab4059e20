package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightclass/brightclass-backend/internal/logger"
	"github.com/brightclass/brightclass-backend/internal/types"
)

type LessonRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Lesson) ([]*types.Lesson, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Lesson, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) (*types.Lesson, error)

	// Visibility candidates, one query per grant rule.
	ListByMode(ctx context.Context, tx *gorm.DB, mode types.SharingMode) ([]*types.Lesson, error)
	ListByCourseIDsAndMode(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID, mode types.SharingMode) ([]*types.Lesson, error)
	ListActiveCustomForClassIDs(ctx context.Context, tx *gorm.DB, classIDs []uuid.UUID) ([]*types.Lesson, error)

	// Class assignments (sharing targets).
	AssignClass(ctx context.Context, tx *gorm.DB, row *types.LessonClassAssignment) error
	UnassignClass(ctx context.Context, tx *gorm.DB, lessonID, classID uuid.UUID) error
	ActiveAssignmentExistsForClasses(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID, classIDs []uuid.UUID) (bool, error)

	// Exclusions.
	AddExclusion(ctx context.Context, tx *gorm.DB, row *types.LessonStudentExclusion) error
	RemoveExclusion(ctx context.Context, tx *gorm.DB, lessonID, studentID uuid.UUID) error
	ExclusionExists(ctx context.Context, tx *gorm.DB, lessonID, studentID uuid.UUID) (bool, error)
	ExcludedLessonIDsForStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]uuid.UUID, error)
}

type lessonRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLessonRepo(db *gorm.DB, baseLog *logger.Logger) LessonRepo {
	return &lessonRepo{db: db, log: baseLog.With("repo", "LessonRepo")}
}

func (r *lessonRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Lesson) ([]*types.Lesson, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.Lesson{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *lessonRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Lesson, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Lesson
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

func (r *lessonRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) (*types.Lesson, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).
		Model(&types.Lesson{}).
		Where("id = ?", id).
		Updates(updates).Error; err != nil {
		return nil, err
	}
	var lesson types.Lesson
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&lesson).Error; err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *lessonRepo) ListByMode(ctx context.Context, tx *gorm.DB, mode types.SharingMode) ([]*types.Lesson, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Lesson
	if err := transaction.WithContext(ctx).
		Where("sharing_mode = ?", mode).
		Order("position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *lessonRepo) ListByCourseIDsAndMode(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID, mode types.SharingMode) ([]*types.Lesson, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Lesson
	if len(courseIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("course_id IN ? AND sharing_mode = ?", courseIDs, mode).
		Order("position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *lessonRepo) ListActiveCustomForClassIDs(ctx context.Context, tx *gorm.DB, classIDs []uuid.UUID) ([]*types.Lesson, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Lesson
	if len(classIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Joins("JOIN lesson_class ON lesson_class.lesson_id = lesson.id").
		Where("lesson_class.class_id IN ? AND lesson_class.is_active = ? AND lesson.sharing_mode = ?",
			classIDs, true, types.SharingModeCustom).
		Distinct("lesson.*").
		Order("lesson.position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *lessonRepo) AssignClass(ctx context.Context, tx *gorm.DB, row *types.LessonClassAssignment) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *lessonRepo) UnassignClass(ctx context.Context, tx *gorm.DB, lessonID, classID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("lesson_id = ? AND class_id = ?", lessonID, classID).
		Delete(&types.LessonClassAssignment{}).Error
}

func (r *lessonRepo) ActiveAssignmentExistsForClasses(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID, classIDs []uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(classIDs) == 0 {
		return false, nil
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.LessonClassAssignment{}).
		Where("lesson_id = ? AND class_id IN ? AND is_active = ?", lessonID, classIDs, true).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *lessonRepo) AddExclusion(ctx context.Context, tx *gorm.DB, row *types.LessonStudentExclusion) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *lessonRepo) RemoveExclusion(ctx context.Context, tx *gorm.DB, lessonID, studentID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("lesson_id = ? AND student_id = ?", lessonID, studentID).
		Delete(&types.LessonStudentExclusion{}).Error
}

func (r *lessonRepo) ExclusionExists(ctx context.Context, tx *gorm.DB, lessonID, studentID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.LessonStudentExclusion{}).
		Where("lesson_id = ? AND student_id = ?", lessonID, studentID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *lessonRepo) ExcludedLessonIDsForStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]uuid.UUID, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var ids []uuid.UUID
	if studentID == uuid.Nil {
		return ids, nil
	}
	if err := transaction.WithContext(ctx).
		Model(&types.LessonStudentExclusion{}).
		Where("student_id = ?", studentID).
		Pluck("lesson_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
