package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightclass/brightclass-backend/internal/logger"
	"github.com/brightclass/brightclass-backend/internal/types"
)

type SchoolRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.School) ([]*types.School, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.School, error)
	GetBySlugs(ctx context.Context, tx *gorm.DB, slugs []string) ([]*types.School, error)
}

type schoolRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSchoolRepo(db *gorm.DB, baseLog *logger.Logger) SchoolRepo {
	return &schoolRepo{db: db, log: baseLog.With("repo", "SchoolRepo")}
}

func (r *schoolRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.School) ([]*types.School, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.School{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *schoolRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.School, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.School
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

func (r *schoolRepo) GetBySlugs(ctx context.Context, tx *gorm.DB, slugs []string) ([]*types.School, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.School
	if len(slugs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("slug IN ?", slugs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
