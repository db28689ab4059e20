package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightclass/brightclass-backend/internal/apierr"
	"github.com/brightclass/brightclass-backend/internal/logger"
	"github.com/brightclass/brightclass-backend/internal/repos"
	"github.com/brightclass/brightclass-backend/internal/types"
)

// ProgressInput carries one progress report. Percentage and time spent are
// absolute totals as reported by the client, not deltas: the stored value
// only ever moves forward (max of stored and incoming), so duplicated or
// reordered requests cannot regress a record.
type ProgressInput struct {
	ProgressPercentage int
	TimeSpentMinutes   int
	VideoProgress      *int
	DocumentsRead      *int
	TotalDocuments     *int
}

type ProgressService interface {
	// Record writes one progress report. Fails with NOT_ENROLLED when the
	// visibility resolver denies the lesson at call time.
	Record(ctx context.Context, studentID, lessonID uuid.UUID, input ProgressInput) (*types.StudentProgress, error)
	// Complete forces completion; equivalent to Record with percentage 100.
	Complete(ctx context.Context, studentID, lessonID uuid.UUID) (*types.StudentProgress, error)
	GetForLessons(ctx context.Context, studentID uuid.UUID, lessonIDs []uuid.UUID) ([]*types.StudentProgress, error)
}

type progressService struct {
	db           *gorm.DB
	log          *logger.Logger
	lessonRepo   repos.LessonRepo
	progressRepo repos.ProgressRepo
	visibility   VisibilityService
	activity     ActivityService
}

func NewProgressService(
	db *gorm.DB,
	baseLog *logger.Logger,
	lessonRepo repos.LessonRepo,
	progressRepo repos.ProgressRepo,
	visibility VisibilityService,
	activity ActivityService,
) ProgressService {
	return &progressService{
		db:           db,
		log:          baseLog.With("service", "ProgressService"),
		lessonRepo:   lessonRepo,
		progressRepo: progressRepo,
		visibility:   visibility,
		activity:     activity,
	}
}

func (ps *progressService) Record(ctx context.Context, studentID, lessonID uuid.UUID, input ProgressInput) (*types.StudentProgress, error) {
	var result *types.StudentProgress
	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := ps.record(ctx, tx, studentID, lessonID, input)
		if err != nil {
			return err
		}
		result = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (ps *progressService) record(ctx context.Context, tx *gorm.DB, studentID, lessonID uuid.UUID, input ProgressInput) (*types.StudentProgress, error) {
	lessons, err := ps.lessonRepo.GetByIDs(ctx, tx, []uuid.UUID{lessonID})
	if err != nil {
		return nil, apierr.Storage(fmt.Errorf("load lesson: %w", err))
	}
	if len(lessons) == 0 || lessons[0] == nil {
		return nil, apierr.NotFound("lesson %s not found", lessonID)
	}
	lesson := lessons[0]

	allowed, err := ps.visibility.CanAccess(ctx, tx, lesson, studentID)
	if err != nil {
		return nil, apierr.Storage(fmt.Errorf("resolve access: %w", err))
	}
	if !allowed {
		return nil, apierr.NotEnrolled("student cannot access lesson %s", lessonID)
	}

	percentage := clampPercentage(input.ProgressPercentage)
	now := time.Now()

	row, err := ps.progressRepo.GetByStudentAndLesson(ctx, tx, studentID, lessonID)
	if err != nil {
		return nil, apierr.Storage(fmt.Errorf("load progress: %w", err))
	}
	if row == nil {
		row = &types.StudentProgress{
			ID:        uuid.New(),
			StudentID: studentID,
			LessonID:  lessonID,
			Status:    types.ProgressStatusInProgress,
			StartedAt: &now,
		}
		// The insert runs in a savepoint: on postgres a unique-constraint
		// violation aborts the whole transaction otherwise, and the reload
		// below would fail with "current transaction is aborted".
		createErr := tx.Transaction(func(stx *gorm.DB) error {
			return ps.progressRepo.Create(ctx, stx, row)
		})
		if createErr != nil {
			if !repos.IsUniqueViolation(createErr) {
				return nil, apierr.Storage(fmt.Errorf("create progress: %w", createErr))
			}
			// Lost the first-write race; retry once against the winner's row.
			row, err = ps.progressRepo.GetByStudentAndLesson(ctx, tx, studentID, lessonID)
			if err != nil || row == nil {
				return nil, apierr.Storage(fmt.Errorf("reload progress after conflict: %w", err))
			}
		}
	}

	if percentage > row.ProgressPercentage {
		row.ProgressPercentage = percentage
	}
	if input.TimeSpentMinutes > row.TimeSpentMinutes {
		row.TimeSpentMinutes = input.TimeSpentMinutes
	}
	if input.VideoProgress != nil && *input.VideoProgress > row.VideoProgress {
		row.VideoProgress = *input.VideoProgress
	}
	if input.DocumentsRead != nil && *input.DocumentsRead > row.DocumentsRead {
		row.DocumentsRead = *input.DocumentsRead
	}
	if input.TotalDocuments != nil && *input.TotalDocuments > row.TotalDocuments {
		row.TotalDocuments = *input.TotalDocuments
	}

	completedNow := false
	if row.ProgressPercentage >= 100 && row.Status != types.ProgressStatusCompleted {
		row.Status = types.ProgressStatusCompleted
		completedNow = true
	}
	// Completion is idempotent: completed_at is written exactly once.
	if row.Status == types.ProgressStatusCompleted && row.CompletedAt == nil {
		row.CompletedAt = &now
	}

	if err := ps.progressRepo.Save(ctx, tx, row); err != nil {
		return nil, apierr.Storage(fmt.Errorf("save progress: %w", err))
	}

	action := types.ActionLessonProgress
	if completedNow {
		action = types.ActionLessonCompleted
	}
	ps.activity.Log(ctx, tx, studentID, action, map[string]interface{}{
		"lesson_id":           lessonID.String(),
		"progress_percentage": row.ProgressPercentage,
	})

	return row, nil
}

func (ps *progressService) Complete(ctx context.Context, studentID, lessonID uuid.UUID) (*types.StudentProgress, error) {
	return ps.Record(ctx, studentID, lessonID, ProgressInput{ProgressPercentage: 100})
}

func (ps *progressService) GetForLessons(ctx context.Context, studentID uuid.UUID, lessonIDs []uuid.UUID) ([]*types.StudentProgress, error) {
	return ps.progressRepo.GetByStudentAndLessonIDs(ctx, nil, studentID, lessonIDs)
}

func clampPercentage(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
