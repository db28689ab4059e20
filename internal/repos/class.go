package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightclass/brightclass-backend/internal/logger"
	"github.com/brightclass/brightclass-backend/internal/types"
)

type ClassRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Class) ([]*types.Class, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Class, error)
	AddStudent(ctx context.Context, tx *gorm.DB, row *types.ClassStudent) error
	AddTeacher(ctx context.Context, tx *gorm.DB, row *types.ClassTeacher) error
	AddSubject(ctx context.Context, tx *gorm.DB, row *types.ClassSubject) error
	// ActiveClassIDsForStudent returns the classes where the student has an
	// active roster row.
	ActiveClassIDsForStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]uuid.UUID, error)
	RosterRowExists(ctx context.Context, tx *gorm.DB, classID, studentID uuid.UUID) (bool, error)
}

type classRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewClassRepo(db *gorm.DB, baseLog *logger.Logger) ClassRepo {
	return &classRepo{db: db, log: baseLog.With("repo", "ClassRepo")}
}

func (r *classRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Class) ([]*types.Class, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.Class{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *classRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Class, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Class
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

func (r *classRepo) AddStudent(ctx context.Context, tx *gorm.DB, row *types.ClassStudent) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *classRepo) AddTeacher(ctx context.Context, tx *gorm.DB, row *types.ClassTeacher) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *classRepo) AddSubject(ctx context.Context, tx *gorm.DB, row *types.ClassSubject) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil
	}
	return transaction.WithContext(ctx).Create(row).Error
}

func (r *classRepo) ActiveClassIDsForStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]uuid.UUID, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var ids []uuid.UUID
	if studentID == uuid.Nil {
		return ids, nil
	}
	if err := transaction.WithContext(ctx).
		Model(&types.ClassStudent{}).
		Where("student_id = ? AND is_active = ?", studentID, true).
		Pluck("class_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *classRepo) RosterRowExists(ctx context.Context, tx *gorm.DB, classID, studentID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.ClassStudent{}).
		Where("class_id = ? AND student_id = ?", classID, studentID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
