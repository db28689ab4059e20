package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/brightclass/brightclass-backend/internal/logger"
	"github.com/brightclass/brightclass-backend/internal/repos"
	"github.com/brightclass/brightclass-backend/internal/types"
)

// ActivityService appends audit rows. Logging failures are reported to the
// caller's logger but never fail the surrounding operation.
type ActivityService interface {
	Log(ctx context.Context, tx *gorm.DB, userID uuid.UUID, action string, detail map[string]interface{})
	ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]*types.ActivityEvent, error)
}

type activityService struct {
	db           *gorm.DB
	log          *logger.Logger
	activityRepo repos.ActivityEventRepo
}

func NewActivityService(db *gorm.DB, baseLog *logger.Logger, activityRepo repos.ActivityEventRepo) ActivityService {
	return &activityService{
		db:           db,
		log:          baseLog.With("service", "ActivityService"),
		activityRepo: activityRepo,
	}
}

func (as *activityService) Log(ctx context.Context, tx *gorm.DB, userID uuid.UUID, action string, detail map[string]interface{}) {
	if userID == uuid.Nil || action == "" {
		return
	}
	var payload datatypes.JSON
	if len(detail) > 0 {
		raw, err := json.Marshal(detail)
		if err != nil {
			as.log.Warn("Failed to marshal activity detail", "action", action, "error", err)
		} else {
			payload = raw
		}
	}
	event := &types.ActivityEvent{
		ID:        uuid.New(),
		UserID:    userID,
		Action:    action,
		Detail:    payload,
		CreatedAt: time.Now(),
	}
	if err := as.activityRepo.Create(ctx, tx, []*types.ActivityEvent{event}); err != nil {
		as.log.Warn("Failed to append activity event", "action", action, "error", err)
	}
}

func (as *activityService) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]*types.ActivityEvent, error) {
	return as.activityRepo.ListByUserID(ctx, nil, userID, limit)
}
