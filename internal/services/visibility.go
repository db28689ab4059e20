package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightclass/brightclass-backend/internal/logger"
	"github.com/brightclass/brightclass-backend/internal/repos"
	"github.com/brightclass/brightclass-backend/internal/types"
)

// VisibilityService decides whether a student may see a lesson. Decisions
// are read-only; missing data always resolves to deny, never to an error.
// Teacher-side preview access is a separate authorization path and is not
// handled here.
type VisibilityService interface {
	CanAccess(ctx context.Context, tx *gorm.DB, lesson *types.Lesson, studentID uuid.UUID) (bool, error)
	// ListAccessible returns every lesson CanAccess would allow for the
	// student, ordered by position.
	ListAccessible(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]*types.Lesson, error)
}

type visibilityService struct {
	db         *gorm.DB
	log        *logger.Logger
	lessonRepo repos.LessonRepo
	classRepo  repos.ClassRepo
	courseRepo repos.CourseRepo
	settings   SettingsService
}

func NewVisibilityService(
	db *gorm.DB,
	baseLog *logger.Logger,
	lessonRepo repos.LessonRepo,
	classRepo repos.ClassRepo,
	courseRepo repos.CourseRepo,
	settings SettingsService,
) VisibilityService {
	return &visibilityService{
		db:         db,
		log:        baseLog.With("service", "VisibilityService"),
		lessonRepo: lessonRepo,
		classRepo:  classRepo,
		courseRepo: courseRepo,
		settings:   settings,
	}
}

// CanAccess evaluates the grant rules in precedence order; the first match
// decides. An exclusion row wins over every grant, including "public".
func (vs *visibilityService) CanAccess(ctx context.Context, tx *gorm.DB, lesson *types.Lesson, studentID uuid.UUID) (bool, error) {
	if lesson == nil || studentID == uuid.Nil {
		return false, nil
	}

	excluded, err := vs.lessonRepo.ExclusionExists(ctx, tx, lesson.ID, studentID)
	if err != nil {
		return false, fmt.Errorf("check exclusion: %w", err)
	}
	if excluded {
		return false, nil
	}

	switch lesson.SharingMode {
	case types.SharingModePublic:
		// The site-wide public_lesson_feed option can turn the feed off;
		// public lessons are then hidden like private ones.
		return vs.publicFeedEnabled(ctx)

	case types.SharingModePrivate:
		return false, nil

	case types.SharingModeClass:
		// Course-derived roster. A standalone lesson (nil course) in this
		// mode has no roster to grant through and stays inaccessible.
		if lesson.CourseID == nil {
			return false, nil
		}
		studentClassIDs, err := vs.classRepo.ActiveClassIDsForStudent(ctx, tx, studentID)
		if err != nil {
			return false, fmt.Errorf("load student classes: %w", err)
		}
		if len(studentClassIDs) == 0 {
			return false, nil
		}
		courseClassIDs, err := vs.courseRepo.ClassIDsForCourse(ctx, tx, *lesson.CourseID)
		if err != nil {
			return false, fmt.Errorf("load course classes: %w", err)
		}
		return intersects(studentClassIDs, courseClassIDs), nil

	case types.SharingModeCustom:
		studentClassIDs, err := vs.classRepo.ActiveClassIDsForStudent(ctx, tx, studentID)
		if err != nil {
			return false, fmt.Errorf("load student classes: %w", err)
		}
		return vs.lessonRepo.ActiveAssignmentExistsForClasses(ctx, tx, lesson.ID, studentClassIDs)

	default:
		// Unknown mode is a deny, not an allow. New modes must be added
		// here explicitly.
		vs.log.Warn("Unknown sharing mode, denying access", "sharing_mode", string(lesson.SharingMode))
		return false, nil
	}
}

func (vs *visibilityService) ListAccessible(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) ([]*types.Lesson, error) {
	if studentID == uuid.Nil {
		return nil, nil
	}

	var publicLessons []*types.Lesson
	feedEnabled, err := vs.publicFeedEnabled(ctx)
	if err != nil {
		return nil, err
	}
	if feedEnabled {
		publicLessons, err = vs.lessonRepo.ListByMode(ctx, tx, types.SharingModePublic)
		if err != nil {
			return nil, fmt.Errorf("list public lessons: %w", err)
		}
	}

	studentClassIDs, err := vs.classRepo.ActiveClassIDsForStudent(ctx, tx, studentID)
	if err != nil {
		return nil, fmt.Errorf("load student classes: %w", err)
	}

	var classLessons, customLessons []*types.Lesson
	if len(studentClassIDs) > 0 {
		courseIDs, err := vs.courseRepo.CourseIDsForClassIDs(ctx, tx, studentClassIDs)
		if err != nil {
			return nil, fmt.Errorf("load courses for classes: %w", err)
		}
		classLessons, err = vs.lessonRepo.ListByCourseIDsAndMode(ctx, tx, courseIDs, types.SharingModeClass)
		if err != nil {
			return nil, fmt.Errorf("list class-shared lessons: %w", err)
		}
		customLessons, err = vs.lessonRepo.ListActiveCustomForClassIDs(ctx, tx, studentClassIDs)
		if err != nil {
			return nil, fmt.Errorf("list custom-shared lessons: %w", err)
		}
	}

	excludedIDs, err := vs.lessonRepo.ExcludedLessonIDsForStudent(ctx, tx, studentID)
	if err != nil {
		return nil, fmt.Errorf("load exclusions: %w", err)
	}
	excluded := make(map[uuid.UUID]bool, len(excludedIDs))
	for _, id := range excludedIDs {
		excluded[id] = true
	}

	seen := make(map[uuid.UUID]bool)
	var out []*types.Lesson
	for _, group := range [][]*types.Lesson{publicLessons, classLessons, customLessons} {
		for _, lesson := range group {
			if excluded[lesson.ID] || seen[lesson.ID] {
				continue
			}
			seen[lesson.ID] = true
			out = append(out, lesson)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (vs *visibilityService) publicFeedEnabled(ctx context.Context) (bool, error) {
	siteSettings, err := vs.settings.Get(ctx)
	if err != nil {
		return false, fmt.Errorf("load settings: %w", err)
	}
	return OptionEnabled(siteSettings, types.OptionPublicLessonFeed), nil
}

func intersects(a, b []uuid.UUID) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[uuid.UUID]bool, len(a))
	for _, id := range a {
		set[id] = true
	}
	for _, id := range b {
		if set[id] {
			return true
		}
	}
	return false
}
