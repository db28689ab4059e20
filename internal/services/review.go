package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightclass/brightclass-backend/internal/apierr"
	"github.com/brightclass/brightclass-backend/internal/logger"
	"github.com/brightclass/brightclass-backend/internal/normalization"
	"github.com/brightclass/brightclass-backend/internal/repos"
	"github.com/brightclass/brightclass-backend/internal/types"
)

type ReviewService interface {
	// Post stores one review per (student, course). Posting is disabled
	// site-wide through the reviews_enabled settings option.
	Post(ctx context.Context, studentID, courseID uuid.UUID, rating int, comment string) (*types.CourseReview, error)
	ListForCourse(ctx context.Context, courseID uuid.UUID) ([]*types.CourseReview, error)
}

type reviewService struct {
	db         *gorm.DB
	log        *logger.Logger
	reviewRepo repos.ReviewRepo
	courseRepo repos.CourseRepo
	settings   SettingsService
	activity   ActivityService
}

func NewReviewService(
	db *gorm.DB,
	baseLog *logger.Logger,
	reviewRepo repos.ReviewRepo,
	courseRepo repos.CourseRepo,
	settings SettingsService,
	activity ActivityService,
) ReviewService {
	return &reviewService{
		db:         db,
		log:        baseLog.With("service", "ReviewService"),
		reviewRepo: reviewRepo,
		courseRepo: courseRepo,
		settings:   settings,
		activity:   activity,
	}
}

func (rs *reviewService) Post(ctx context.Context, studentID, courseID uuid.UUID, rating int, comment string) (*types.CourseReview, error) {
	if rating < 1 || rating > 5 {
		return nil, apierr.Validation("rating must be between 1 and 5")
	}

	siteSettings, err := rs.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !OptionEnabled(siteSettings, types.OptionReviewsEnabled) {
		return nil, apierr.Forbidden("reviews are disabled")
	}

	courses, err := rs.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{courseID})
	if err != nil {
		return nil, apierr.Storage(fmt.Errorf("load course: %w", err))
	}
	if len(courses) == 0 || courses[0] == nil {
		return nil, apierr.NotFound("course %s not found", courseID)
	}

	existing, err := rs.reviewRepo.GetByStudentAndCourse(ctx, nil, studentID, courseID)
	if err != nil {
		return nil, apierr.Storage(fmt.Errorf("check existing review: %w", err))
	}
	if existing != nil {
		return nil, apierr.Validation("course %s already reviewed", courseID)
	}

	review := &types.CourseReview{
		ID:        uuid.New(),
		CourseID:  courseID,
		StudentID: studentID,
		Rating:    rating,
		Comment:   normalization.TrimInputString(comment),
	}
	if err := rs.reviewRepo.Create(ctx, nil, review); err != nil {
		if repos.IsUniqueViolation(err) {
			return nil, apierr.Validation("course %s already reviewed", courseID)
		}
		return nil, apierr.Storage(fmt.Errorf("create review: %w", err))
	}

	rs.activity.Log(ctx, nil, studentID, types.ActionReviewPosted, map[string]interface{}{
		"course_id": courseID.String(),
		"rating":    rating,
	})
	return review, nil
}

func (rs *reviewService) ListForCourse(ctx context.Context, courseID uuid.UUID) ([]*types.CourseReview, error) {
	reviews, err := rs.reviewRepo.ListByCourseID(ctx, nil, courseID)
	if err != nil {
		return nil, apierr.Storage(fmt.Errorf("list reviews: %w", err))
	}
	return reviews, nil
}
