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

type CreateLessonInput struct {
	CourseID    *uuid.UUID
	Title       string
	ContentType types.ContentType
	SharingMode types.SharingMode
	Position    int
}

// LessonWithProgress annotates a lesson with the caller's progress record,
// when one exists.
type LessonWithProgress struct {
	Lesson   *types.Lesson          `json:"lesson"`
	Progress *types.StudentProgress `json:"progress,omitempty"`
}

type LessonService interface {
	ListForStudent(ctx context.Context, studentID uuid.UUID) ([]LessonWithProgress, error)
	Create(ctx context.Context, teacherID uuid.UUID, input CreateLessonInput) (*types.Lesson, error)
	Update(ctx context.Context, lessonID uuid.UUID, updates map[string]interface{}) (*types.Lesson, error)
	AssignClass(ctx context.Context, lessonID, classID uuid.UUID) error
	UnassignClass(ctx context.Context, lessonID, classID uuid.UUID) error
	ExcludeStudent(ctx context.Context, lessonID, studentID uuid.UUID, reason string) error
	RemoveExclusion(ctx context.Context, lessonID, studentID uuid.UUID) error
}

type lessonService struct {
	db           *gorm.DB
	log          *logger.Logger
	lessonRepo   repos.LessonRepo
	classRepo    repos.ClassRepo
	userRepo     repos.UserRepo
	visibility   VisibilityService
	progressRepo repos.ProgressRepo
}

func NewLessonService(
	db *gorm.DB,
	baseLog *logger.Logger,
	lessonRepo repos.LessonRepo,
	classRepo repos.ClassRepo,
	userRepo repos.UserRepo,
	visibility VisibilityService,
	progressRepo repos.ProgressRepo,
) LessonService {
	return &lessonService{
		db:           db,
		log:          baseLog.With("service", "LessonService"),
		lessonRepo:   lessonRepo,
		classRepo:    classRepo,
		userRepo:     userRepo,
		visibility:   visibility,
		progressRepo: progressRepo,
	}
}

func (ls *lessonService) ListForStudent(ctx context.Context, studentID uuid.UUID) ([]LessonWithProgress, error) {
	lessons, err := ls.visibility.ListAccessible(ctx, nil, studentID)
	if err != nil {
		return nil, apierr.Storage(fmt.Errorf("list accessible lessons: %w", err))
	}
	if len(lessons) == 0 {
		return []LessonWithProgress{}, nil
	}

	lessonIDs := make([]uuid.UUID, 0, len(lessons))
	for _, lesson := range lessons {
		lessonIDs = append(lessonIDs, lesson.ID)
	}
	progressRows, err := ls.progressRepo.GetByStudentAndLessonIDs(ctx, nil, studentID, lessonIDs)
	if err != nil {
		return nil, apierr.Storage(fmt.Errorf("load progress: %w", err))
	}
	byLesson := make(map[uuid.UUID]*types.StudentProgress, len(progressRows))
	for _, row := range progressRows {
		byLesson[row.LessonID] = row
	}

	out := make([]LessonWithProgress, 0, len(lessons))
	for _, lesson := range lessons {
		out = append(out, LessonWithProgress{Lesson: lesson, Progress: byLesson[lesson.ID]})
	}
	return out, nil
}

func (ls *lessonService) Create(ctx context.Context, teacherID uuid.UUID, input CreateLessonInput) (*types.Lesson, error) {
	title := normalization.TrimInputString(input.Title)
	if title == "" {
		return nil, apierr.Validation("a lesson title is required")
	}
	contentType := input.ContentType
	if contentType == "" {
		contentType = types.ContentTypeText
	}
	if !contentType.Valid() {
		return nil, apierr.Validation("unknown content type %q", contentType)
	}
	sharingMode := input.SharingMode
	if sharingMode == "" {
		sharingMode = types.SharingModePrivate
	}
	if !sharingMode.Valid() {
		return nil, apierr.Validation("unknown sharing mode %q", sharingMode)
	}

	lesson := &types.Lesson{
		ID:           uuid.New(),
		CourseID:     input.CourseID,
		TeacherID:    &teacherID,
		Title:        title,
		ContentType:  contentType,
		SharingMode:  sharingMode,
		IsStandalone: input.CourseID == nil,
		Position:     input.Position,
	}
	if _, err := ls.lessonRepo.Create(ctx, nil, []*types.Lesson{lesson}); err != nil {
		return nil, apierr.Storage(fmt.Errorf("create lesson: %w", err))
	}
	return lesson, nil
}

// Update accepts a whitelisted field map so handlers can pass through a
// partial PATCH body without exposing arbitrary columns.
func (ls *lessonService) Update(ctx context.Context, lessonID uuid.UUID, updates map[string]interface{}) (*types.Lesson, error) {
	allowed := map[string]bool{
		"title":        true,
		"content_type": true,
		"sharing_mode": true,
		"position":     true,
		"course_id":    true,
	}
	filtered := make(map[string]interface{}, len(updates))
	for key, value := range updates {
		if !allowed[key] {
			return nil, apierr.Validation("field %q cannot be updated", key)
		}
		filtered[key] = value
	}
	if mode, ok := filtered["sharing_mode"].(string); ok {
		if !types.SharingMode(mode).Valid() {
			return nil, apierr.Validation("unknown sharing mode %q", mode)
		}
	}
	if ct, ok := filtered["content_type"].(string); ok {
		if !types.ContentType(ct).Valid() {
			return nil, apierr.Validation("unknown content type %q", ct)
		}
	}
	if len(filtered) == 0 {
		return nil, apierr.Validation("no updatable fields supplied")
	}

	lesson, err := ls.lessonRepo.UpdateFields(ctx, nil, lessonID, filtered)
	if err != nil {
		return nil, apierr.Storage(fmt.Errorf("update lesson: %w", err))
	}
	return lesson, nil
}

func (ls *lessonService) AssignClass(ctx context.Context, lessonID, classID uuid.UUID) error {
	if err := ls.ensureLessonExists(ctx, lessonID); err != nil {
		return err
	}
	classes, err := ls.classRepo.GetByIDs(ctx, nil, []uuid.UUID{classID})
	if err != nil {
		return apierr.Storage(fmt.Errorf("load class: %w", err))
	}
	if len(classes) == 0 {
		return apierr.NotFound("class %s not found", classID)
	}

	row := &types.LessonClassAssignment{
		ID:         uuid.New(),
		LessonID:   lessonID,
		ClassID:    classID,
		IsActive:   true,
		AssignedAt: time.Now(),
	}
	if err := ls.lessonRepo.AssignClass(ctx, nil, row); err != nil {
		// Re-assigning an existing target is a no-op.
		if repos.IsUniqueViolation(err) {
			return nil
		}
		return apierr.Storage(fmt.Errorf("assign class: %w", err))
	}
	return nil
}

func (ls *lessonService) UnassignClass(ctx context.Context, lessonID, classID uuid.UUID) error {
	if err := ls.lessonRepo.UnassignClass(ctx, nil, lessonID, classID); err != nil {
		return apierr.Storage(fmt.Errorf("unassign class: %w", err))
	}
	return nil
}

func (ls *lessonService) ExcludeStudent(ctx context.Context, lessonID, studentID uuid.UUID, reason string) error {
	if err := ls.ensureLessonExists(ctx, lessonID); err != nil {
		return err
	}
	students, err := ls.userRepo.GetByIDs(ctx, nil, []uuid.UUID{studentID})
	if err != nil {
		return apierr.Storage(fmt.Errorf("load student: %w", err))
	}
	if len(students) == 0 {
		return apierr.NotFound("student %s not found", studentID)
	}

	row := &types.LessonStudentExclusion{
		ID:         uuid.New(),
		LessonID:   lessonID,
		StudentID:  studentID,
		Reason:     normalization.TrimInputString(reason),
		ExcludedAt: time.Now(),
	}
	if err := ls.lessonRepo.AddExclusion(ctx, nil, row); err != nil {
		if repos.IsUniqueViolation(err) {
			return nil
		}
		return apierr.Storage(fmt.Errorf("add exclusion: %w", err))
	}
	return nil
}

func (ls *lessonService) RemoveExclusion(ctx context.Context, lessonID, studentID uuid.UUID) error {
	if err := ls.lessonRepo.RemoveExclusion(ctx, nil, lessonID, studentID); err != nil {
		return apierr.Storage(fmt.Errorf("remove exclusion: %w", err))
	}
	return nil
}

func (ls *lessonService) ensureLessonExists(ctx context.Context, lessonID uuid.UUID) error {
	lessons, err := ls.lessonRepo.GetByIDs(ctx, nil, []uuid.UUID{lessonID})
	if err != nil {
		return apierr.Storage(fmt.Errorf("load lesson: %w", err))
	}
	if len(lessons) == 0 {
		return apierr.NotFound("lesson %s not found", lessonID)
	}
	return nil
}
