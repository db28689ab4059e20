package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightclass/brightclass-backend/internal/apierr"
	"github.com/brightclass/brightclass-backend/internal/logger"
	"github.com/brightclass/brightclass-backend/internal/normalization"
	"github.com/brightclass/brightclass-backend/internal/repos"
	"github.com/brightclass/brightclass-backend/internal/types"
)

const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

type EnrollmentService interface {
	// Submit creates a pending request. A pending or approved request for
	// the same (student, course) pair fails with DUPLICATE_REQUEST, as does
	// a concurrent submit losing the unique-constraint race. A rejected row
	// also blocks resubmission while it exists.
	Submit(ctx context.Context, studentID, courseID uuid.UUID, classID *uuid.UUID, message string) (*types.EnrollmentRequest, error)
	// Review settles a pending request. Approval creates the roster row
	// that satisfies class-mode visibility for the course's lessons.
	Review(ctx context.Context, requestID uuid.UUID, decision string, reviewerID uuid.UUID, rejectionReason string) (*types.EnrollmentRequest, error)
	ListByStatus(ctx context.Context, status types.RequestStatus) ([]*types.EnrollmentRequest, error)
}

type enrollmentService struct {
	db          *gorm.DB
	log         *logger.Logger
	requestRepo repos.EnrollmentRequestRepo
	courseRepo  repos.CourseRepo
	classRepo   repos.ClassRepo
	settings    SettingsService
	activity    ActivityService
}

func NewEnrollmentService(
	db *gorm.DB,
	baseLog *logger.Logger,
	requestRepo repos.EnrollmentRequestRepo,
	courseRepo repos.CourseRepo,
	classRepo repos.ClassRepo,
	settings SettingsService,
	activity ActivityService,
) EnrollmentService {
	return &enrollmentService{
		db:          db,
		log:         baseLog.With("service", "EnrollmentService"),
		requestRepo: requestRepo,
		courseRepo:  courseRepo,
		classRepo:   classRepo,
		settings:    settings,
		activity:    activity,
	}
}

func (es *enrollmentService) Submit(ctx context.Context, studentID, courseID uuid.UUID, classID *uuid.UUID, message string) (*types.EnrollmentRequest, error) {
	siteSettings, err := es.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !OptionEnabled(siteSettings, types.OptionEnrollmentOpen) {
		return nil, apierr.Forbidden("enrollment is currently closed")
	}

	var result *types.EnrollmentRequest
	err = es.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		courses, err := es.courseRepo.GetByIDs(ctx, tx, []uuid.UUID{courseID})
		if err != nil {
			return apierr.Storage(fmt.Errorf("load course: %w", err))
		}
		if len(courses) == 0 || courses[0] == nil || !courses[0].IsPublished {
			return apierr.NotFound("course %s not found", courseID)
		}

		existing, err := es.requestRepo.GetByStudentAndCourse(ctx, tx, studentID, courseID)
		if err != nil {
			return apierr.Storage(fmt.Errorf("check existing request: %w", err))
		}
		if existing != nil {
			return apierr.DuplicateRequest("enrollment request for course %s already exists with status %s", courseID, existing.Status)
		}

		request := &types.EnrollmentRequest{
			ID:        uuid.New(),
			StudentID: studentID,
			CourseID:  courseID,
			ClassID:   classID,
			Status:    types.RequestStatusPending,
			Message:   normalization.TrimInputString(message),
		}
		if createErr := es.requestRepo.Create(ctx, tx, request); createErr != nil {
			if repos.IsUniqueViolation(createErr) {
				// Concurrent submit won the race; surface the conflict
				// instead of silently dropping this one.
				return apierr.DuplicateRequest("enrollment request for course %s already exists", courseID)
			}
			return apierr.Storage(fmt.Errorf("create request: %w", createErr))
		}

		es.activity.Log(ctx, tx, studentID, types.ActionRequestSubmitted, map[string]interface{}{
			"course_id":  courseID.String(),
			"request_id": request.ID.String(),
		})
		result = request
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (es *enrollmentService) Review(ctx context.Context, requestID uuid.UUID, decision string, reviewerID uuid.UUID, rejectionReason string) (*types.EnrollmentRequest, error) {
	if decision != DecisionApprove && decision != DecisionReject {
		return nil, apierr.Validation("unknown decision %q", decision)
	}

	var result *types.EnrollmentRequest
	err := es.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		requests, err := es.requestRepo.GetByIDs(ctx, tx, []uuid.UUID{requestID})
		if err != nil {
			return apierr.Storage(fmt.Errorf("load request: %w", err))
		}
		if len(requests) == 0 || requests[0] == nil {
			return apierr.NotFound("enrollment request %s not found", requestID)
		}
		request := requests[0]

		if request.Status != types.RequestStatusPending {
			return apierr.AlreadyReviewed("enrollment request %s already %s", requestID, request.Status)
		}

		now := time.Now()
		switch decision {
		case DecisionApprove:
			if err := es.enrollStudent(ctx, tx, request); err != nil {
				return err
			}
			request.Status = types.RequestStatusApproved
		case DecisionReject:
			reason := normalization.TrimInputString(rejectionReason)
			if reason == "" {
				return apierr.MissingReason("a rejection reason is required")
			}
			request.Status = types.RequestStatusRejected
			request.RejectionReason = reason
		}
		request.ReviewedBy = &reviewerID
		request.ReviewedAt = &now

		if err := es.requestRepo.Save(ctx, tx, request); err != nil {
			return apierr.Storage(fmt.Errorf("save request: %w", err))
		}

		es.activity.Log(ctx, tx, reviewerID, types.ActionRequestReviewed, map[string]interface{}{
			"request_id": request.ID.String(),
			"status":     string(request.Status),
		})
		result = request
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// enrollStudent picks the roster class for an approval: the request's
// explicit class when given, otherwise the course's oldest linked class.
func (es *enrollmentService) enrollStudent(ctx context.Context, tx *gorm.DB, request *types.EnrollmentRequest) error {
	classID := uuid.Nil
	if request.ClassID != nil {
		classID = *request.ClassID
	} else {
		classIDs, err := es.courseRepo.ClassIDsForCourse(ctx, tx, request.CourseID)
		if err != nil {
			return apierr.Storage(fmt.Errorf("load course classes: %w", err))
		}
		if len(classIDs) == 0 {
			return apierr.NotFound("course %s has no linked class to enroll into", request.CourseID)
		}
		classID = classIDs[0]
	}

	exists, err := es.classRepo.RosterRowExists(ctx, tx, classID, request.StudentID)
	if err != nil {
		return apierr.Storage(fmt.Errorf("check roster: %w", err))
	}
	if exists {
		return nil
	}

	row := &types.ClassStudent{
		ID:        uuid.New(),
		ClassID:   classID,
		StudentID: request.StudentID,
		IsActive:  true,
		JoinedAt:  time.Now(),
	}
	// The insert runs in a savepoint: the caller still has to save the
	// request row on this transaction, and on postgres a tolerated
	// unique-constraint violation would otherwise abort it.
	err = tx.Transaction(func(stx *gorm.DB) error {
		return es.classRepo.AddStudent(ctx, stx, row)
	})
	if err != nil {
		// A concurrent approval already enrolled the student.
		if repos.IsUniqueViolation(err) {
			return nil
		}
		return apierr.Storage(fmt.Errorf("add roster row: %w", err))
	}
	return nil
}

func (es *enrollmentService) ListByStatus(ctx context.Context, status types.RequestStatus) ([]*types.EnrollmentRequest, error) {
	return es.requestRepo.ListByStatus(ctx, nil, status)
}
