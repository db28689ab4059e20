package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/brightclass/brightclass-backend/internal/db"
	"github.com/brightclass/brightclass-backend/internal/logger"
	"github.com/brightclass/brightclass-backend/internal/repos"
	"github.com/brightclass/brightclass-backend/internal/types"
)

// testEnv wires the full service stack against an in-memory sqlite database
// migrated from the same table list production uses.
type testEnv struct {
	db         *gorm.DB
	log        *logger.Logger
	userRepo   repos.UserRepo
	classRepo  repos.ClassRepo
	courseRepo repos.CourseRepo
	lessonRepo repos.LessonRepo

	visibility VisibilityService
	progress   ProgressService
	enrollment EnrollmentService
	lessons    LessonService
	settings   SettingsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(db.Tables()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}

	userRepo := repos.NewUserRepo(gdb, log)
	classRepo := repos.NewClassRepo(gdb, log)
	courseRepo := repos.NewCourseRepo(gdb, log)
	lessonRepo := repos.NewLessonRepo(gdb, log)
	progressRepo := repos.NewProgressRepo(gdb, log)
	requestRepo := repos.NewEnrollmentRequestRepo(gdb, log)
	activityRepo := repos.NewActivityEventRepo(gdb, log)
	settingsRepo := repos.NewSettingsRepo(gdb, log)

	activity := NewActivityService(gdb, log, activityRepo)
	settings := NewSettingsService(gdb, log, settingsRepo, nil, activity)
	// Materialize the settings singleton up front so reads inside service
	// transactions never have to create it mid-flight.
	if _, err := settings.Get(context.Background()); err != nil {
		t.Fatalf("init settings: %v", err)
	}
	visibility := NewVisibilityService(gdb, log, lessonRepo, classRepo, courseRepo, settings)
	progress := NewProgressService(gdb, log, lessonRepo, progressRepo, visibility, activity)
	enrollment := NewEnrollmentService(gdb, log, requestRepo, courseRepo, classRepo, settings, activity)
	lessons := NewLessonService(gdb, log, lessonRepo, classRepo, userRepo, visibility, progressRepo)

	return &testEnv{
		db:         gdb,
		log:        log,
		userRepo:   userRepo,
		classRepo:  classRepo,
		courseRepo: courseRepo,
		lessonRepo: lessonRepo,
		visibility: visibility,
		progress:   progress,
		enrollment: enrollment,
		lessons:    lessons,
		settings:   settings,
	}
}

func (e *testEnv) seedSchool(t *testing.T) *types.School {
	t.Helper()
	school := &types.School{ID: uuid.New(), Name: "Test School", Slug: uuid.New().String(), IsActive: true}
	if err := e.db.Create(school).Error; err != nil {
		t.Fatalf("seed school: %v", err)
	}
	return school
}

func (e *testEnv) seedUser(t *testing.T, schoolID uuid.UUID, role types.Role) *types.User {
	t.Helper()
	user := &types.User{
		ID:        uuid.New(),
		SchoolID:  schoolID,
		Email:     fmt.Sprintf("%s@example.com", uuid.New().String()[:8]),
		Password:  "hashed",
		FirstName: "Test",
		LastName:  string(role),
		Role:      role,
	}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func (e *testEnv) seedClass(t *testing.T, schoolID uuid.UUID, name string) *types.Class {
	t.Helper()
	class := &types.Class{ID: uuid.New(), SchoolID: schoolID, Name: name}
	if err := e.db.Create(class).Error; err != nil {
		t.Fatalf("seed class: %v", err)
	}
	return class
}

func (e *testEnv) enroll(t *testing.T, classID, studentID uuid.UUID) {
	t.Helper()
	row := &types.ClassStudent{
		ID:        uuid.New(),
		ClassID:   classID,
		StudentID: studentID,
		IsActive:  true,
		JoinedAt:  time.Now(),
	}
	if err := e.db.Create(row).Error; err != nil {
		t.Fatalf("seed roster row: %v", err)
	}
}

func (e *testEnv) seedCourse(t *testing.T, schoolID uuid.UUID, title string, published bool) *types.Course {
	t.Helper()
	course := &types.Course{
		ID:          uuid.New(),
		SchoolID:    schoolID,
		Title:       title,
		IsPublished: published,
	}
	if err := e.db.Create(course).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}
	return course
}

func (e *testEnv) linkCourseClass(t *testing.T, courseID, classID uuid.UUID) {
	t.Helper()
	row := &types.CourseClass{ID: uuid.New(), CourseID: courseID, ClassID: classID}
	if err := e.db.Create(row).Error; err != nil {
		t.Fatalf("seed course class link: %v", err)
	}
}

func (e *testEnv) seedLesson(t *testing.T, courseID *uuid.UUID, title string, mode types.SharingMode, position int) *types.Lesson {
	t.Helper()
	lesson := &types.Lesson{
		ID:           uuid.New(),
		CourseID:     courseID,
		Title:        title,
		ContentType:  types.ContentTypeText,
		SharingMode:  mode,
		IsStandalone: courseID == nil,
		Position:     position,
	}
	if err := e.db.Create(lesson).Error; err != nil {
		t.Fatalf("seed lesson: %v", err)
	}
	return lesson
}

func (e *testEnv) assignLessonClass(t *testing.T, lessonID, classID uuid.UUID, active bool) {
	t.Helper()
	row := &types.LessonClassAssignment{
		ID:         uuid.New(),
		LessonID:   lessonID,
		ClassID:    classID,
		IsActive:   active,
		AssignedAt: time.Now(),
	}
	if err := e.db.Create(row).Error; err != nil {
		t.Fatalf("seed lesson class assignment: %v", err)
	}
}

func (e *testEnv) excludeStudent(t *testing.T, lessonID, studentID uuid.UUID) {
	t.Helper()
	row := &types.LessonStudentExclusion{
		ID:         uuid.New(),
		LessonID:   lessonID,
		StudentID:  studentID,
		ExcludedAt: time.Now(),
	}
	if err := e.db.Create(row).Error; err != nil {
		t.Fatalf("seed exclusion: %v", err)
	}
}
