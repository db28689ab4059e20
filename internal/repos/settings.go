package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/brightclass/brightclass-backend/internal/logger"
	"github.com/brightclass/brightclass-backend/internal/types"
)

type SettingsRepo interface {
	// Get returns the singleton row, or nil when none has been created yet.
	Get(ctx context.Context, tx *gorm.DB) (*types.SiteSettings, error)
	Save(ctx context.Context, tx *gorm.DB, row *types.SiteSettings) error
}

type settingsRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSettingsRepo(db *gorm.DB, baseLog *logger.Logger) SettingsRepo {
	return &settingsRepo{db: db, log: baseLog.With("repo", "SettingsRepo")}
}

func (r *settingsRepo) Get(ctx context.Context, tx *gorm.DB) (*types.SiteSettings, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.SiteSettings
	err := transaction.WithContext(ctx).
		Order("created_at ASC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *settingsRepo) Save(ctx context.Context, tx *gorm.DB, row *types.SiteSettings) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil {
		return nil
	}
	return transaction.WithContext(ctx).Save(row).Error
}
