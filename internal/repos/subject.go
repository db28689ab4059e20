package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightclass/brightclass-backend/internal/logger"
	"github.com/brightclass/brightclass-backend/internal/types"
)

type SubjectRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Subject) ([]*types.Subject, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Subject, error)
	GetBySchoolIDs(ctx context.Context, tx *gorm.DB, schoolIDs []uuid.UUID) ([]*types.Subject, error)
}

type subjectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubjectRepo(db *gorm.DB, baseLog *logger.Logger) SubjectRepo {
	return &subjectRepo{db: db, log: baseLog.With("repo", "SubjectRepo")}
}

func (r *subjectRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Subject) ([]*types.Subject, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.Subject{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *subjectRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Subject, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Subject
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

func (r *subjectRepo) GetBySchoolIDs(ctx context.Context, tx *gorm.DB, schoolIDs []uuid.UUID) ([]*types.Subject, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Subject
	if len(schoolIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("school_id IN ?", schoolIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
