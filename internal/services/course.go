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
	"github.com/brightclass/brightclass-backend/internal/requestdata"
	"github.com/brightclass/brightclass-backend/internal/types"
)

type CreateCourseInput struct {
	SubjectID   *uuid.UUID
	Title       string
	Description string
	IsPublished bool
	PriceCents  int
}

type CourseService interface {
	ListPublished(ctx context.Context) ([]*types.Course, error)
	GetByID(ctx context.Context, courseID uuid.UUID) (*types.Course, error)
	Create(ctx context.Context, input CreateCourseInput) (*types.Course, error)
	LinkClass(ctx context.Context, courseID, classID uuid.UUID) error
}

type courseService struct {
	db          *gorm.DB
	log         *logger.Logger
	courseRepo  repos.CourseRepo
	classRepo   repos.ClassRepo
	subjectRepo repos.SubjectRepo
}

func NewCourseService(db *gorm.DB, baseLog *logger.Logger, courseRepo repos.CourseRepo, classRepo repos.ClassRepo, subjectRepo repos.SubjectRepo) CourseService {
	return &courseService{
		db:          db,
		log:         baseLog.With("service", "CourseService"),
		courseRepo:  courseRepo,
		classRepo:   classRepo,
		subjectRepo: subjectRepo,
	}
}

func (cs *courseService) ListPublished(ctx context.Context) ([]*types.Course, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.SchoolID == uuid.Nil {
		return nil, apierr.Unauthorized("request data not set in context")
	}
	courses, err := cs.courseRepo.ListPublishedBySchool(ctx, nil, rd.SchoolID)
	if err != nil {
		return nil, apierr.Storage(fmt.Errorf("list courses: %w", err))
	}
	return courses, nil
}

func (cs *courseService) GetByID(ctx context.Context, courseID uuid.UUID) (*types.Course, error) {
	courses, err := cs.courseRepo.GetByIDs(ctx, nil, []uuid.UUID{courseID})
	if err != nil {
		return nil, apierr.Storage(fmt.Errorf("load course: %w", err))
	}
	if len(courses) == 0 || courses[0] == nil {
		return nil, apierr.NotFound("course %s not found", courseID)
	}
	return courses[0], nil
}

func (cs *courseService) Create(ctx context.Context, input CreateCourseInput) (*types.Course, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized("request data not set in context")
	}
	title := normalization.TrimInputString(input.Title)
	if title == "" {
		return nil, apierr.Validation("a course title is required")
	}
	if input.PriceCents < 0 {
		return nil, apierr.Validation("price cannot be negative")
	}
	if input.SubjectID != nil {
		subjects, err := cs.subjectRepo.GetByIDs(ctx, nil, []uuid.UUID{*input.SubjectID})
		if err != nil {
			return nil, apierr.Storage(fmt.Errorf("load subject: %w", err))
		}
		if len(subjects) == 0 {
			return nil, apierr.NotFound("subject %s not found", *input.SubjectID)
		}
	}

	teacherID := rd.UserID
	course := &types.Course{
		ID:          uuid.New(),
		SchoolID:    rd.SchoolID,
		TeacherID:   &teacherID,
		SubjectID:   input.SubjectID,
		Title:       title,
		Description: input.Description,
		IsPublished: input.IsPublished,
		PriceCents:  input.PriceCents,
	}
	if _, err := cs.courseRepo.Create(ctx, nil, []*types.Course{course}); err != nil {
		return nil, apierr.Storage(fmt.Errorf("create course: %w", err))
	}
	return course, nil
}

func (cs *courseService) LinkClass(ctx context.Context, courseID, classID uuid.UUID) error {
	if _, err := cs.GetByID(ctx, courseID); err != nil {
		return err
	}
	classes, err := cs.classRepo.GetByIDs(ctx, nil, []uuid.UUID{classID})
	if err != nil {
		return apierr.Storage(fmt.Errorf("load class: %w", err))
	}
	if len(classes) == 0 {
		return apierr.NotFound("class %s not found", classID)
	}

	row := &types.CourseClass{
		ID:       uuid.New(),
		CourseID: courseID,
		ClassID:  classID,
	}
	if err := cs.courseRepo.LinkClass(ctx, nil, row); err != nil {
		if repos.IsUniqueViolation(err) {
			return nil
		}
		return apierr.Storage(fmt.Errorf("link class: %w", err))
	}
	return nil
}
