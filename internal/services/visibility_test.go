package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/brightclass/brightclass-backend/internal/types"
)

func TestCanAccess_PublicLessonAllowsAnyStudent(t *testing.T) {
	env := newTestEnv(t)
	school := env.seedSchool(t)
	student := env.seedUser(t, school.ID, types.RoleStudent)
	lesson := env.seedLesson(t, nil, "Open lesson", types.SharingModePublic, 0)

	allowed, err := env.visibility.CanAccess(context.Background(), nil, lesson, student.ID)
	if err != nil {
		t.Fatalf("CanAccess: %v", err)
	}
	if !allowed {
		t.Fatalf("expected public lesson to be accessible")
	}
}

func TestCanAccess_PrivateLessonDeniesEveryone(t *testing.T) {
	env := newTestEnv(t)
	school := env.seedSchool(t)
	student := env.seedUser(t, school.ID, types.RoleStudent)
	class := env.seedClass(t, school.ID, "10A")
	env.enroll(t, class.ID, student.ID)
	course := env.seedCourse(t, school.ID, "Algebra", true)
	env.linkCourseClass(t, course.ID, class.ID)
	lesson := env.seedLesson(t, &course.ID, "Draft lesson", types.SharingModePrivate, 0)

	allowed, err := env.visibility.CanAccess(context.Background(), nil, lesson, student.ID)
	if err != nil {
		t.Fatalf("CanAccess: %v", err)
	}
	if allowed {
		t.Fatalf("expected private lesson to be denied even for enrolled students")
	}
}

func TestCanAccess_ClassModeRequiresRosterOverlap(t *testing.T) {
	env := newTestEnv(t)
	school := env.seedSchool(t)
	enrolled := env.seedUser(t, school.ID, types.RoleStudent)
	outsider := env.seedUser(t, school.ID, types.RoleStudent)
	class := env.seedClass(t, school.ID, "10A")
	otherClass := env.seedClass(t, school.ID, "10B")
	env.enroll(t, class.ID, enrolled.ID)
	env.enroll(t, otherClass.ID, outsider.ID)
	course := env.seedCourse(t, school.ID, "Algebra", true)
	env.linkCourseClass(t, course.ID, class.ID)
	lesson := env.seedLesson(t, &course.ID, "Fractions", types.SharingModeClass, 0)

	allowed, err := env.visibility.CanAccess(context.Background(), nil, lesson, enrolled.ID)
	if err != nil {
		t.Fatalf("CanAccess enrolled: %v", err)
	}
	if !allowed {
		t.Fatalf("expected student in a linked class to access the lesson")
	}

	allowed, err = env.visibility.CanAccess(context.Background(), nil, lesson, outsider.ID)
	if err != nil {
		t.Fatalf("CanAccess outsider: %v", err)
	}
	if allowed {
		t.Fatalf("expected student outside the linked classes to be denied")
	}
}

func TestCanAccess_ClassModeStandaloneLessonDenies(t *testing.T) {
	env := newTestEnv(t)
	school := env.seedSchool(t)
	student := env.seedUser(t, school.ID, types.RoleStudent)
	class := env.seedClass(t, school.ID, "10A")
	env.enroll(t, class.ID, student.ID)
	lesson := env.seedLesson(t, nil, "Orphaned", types.SharingModeClass, 0)

	allowed, err := env.visibility.CanAccess(context.Background(), nil, lesson, student.ID)
	if err != nil {
		t.Fatalf("CanAccess: %v", err)
	}
	if allowed {
		t.Fatalf("class-mode lesson with no course has no roster and must deny")
	}
}

func TestCanAccess_CustomModeUsesActiveAssignments(t *testing.T) {
	env := newTestEnv(t)
	school := env.seedSchool(t)
	student := env.seedUser(t, school.ID, types.RoleStudent)
	class := env.seedClass(t, school.ID, "10A")
	env.enroll(t, class.ID, student.ID)
	lesson := env.seedLesson(t, nil, "Bonus material", types.SharingModeCustom, 0)

	allowed, err := env.visibility.CanAccess(context.Background(), nil, lesson, student.ID)
	if err != nil {
		t.Fatalf("CanAccess without assignment: %v", err)
	}
	if allowed {
		t.Fatalf("custom lesson without an assignment must deny")
	}

	env.assignLessonClass(t, lesson.ID, class.ID, true)
	allowed, err = env.visibility.CanAccess(context.Background(), nil, lesson, student.ID)
	if err != nil {
		t.Fatalf("CanAccess with assignment: %v", err)
	}
	if !allowed {
		t.Fatalf("expected active assignment to grant access")
	}
}

func TestCanAccess_InactiveAssignmentDoesNotGrant(t *testing.T) {
	env := newTestEnv(t)
	school := env.seedSchool(t)
	student := env.seedUser(t, school.ID, types.RoleStudent)
	class := env.seedClass(t, school.ID, "10A")
	env.enroll(t, class.ID, student.ID)
	lesson := env.seedLesson(t, nil, "Retired material", types.SharingModeCustom, 0)
	env.assignLessonClass(t, lesson.ID, class.ID, false)

	allowed, err := env.visibility.CanAccess(context.Background(), nil, lesson, student.ID)
	if err != nil {
		t.Fatalf("CanAccess: %v", err)
	}
	if allowed {
		t.Fatalf("inactive assignment must not grant access")
	}
}

func TestInactiveRowsAreStoredInactive(t *testing.T) {
	env := newTestEnv(t)
	school := env.seedSchool(t)
	student := env.seedUser(t, school.ID, types.RoleStudent)
	class := env.seedClass(t, school.ID, "10A")
	lesson := env.seedLesson(t, nil, "Retired material", types.SharingModeCustom, 0)
	env.assignLessonClass(t, lesson.ID, class.ID, false)

	var assignment types.LessonClassAssignment
	if err := env.db.Where("lesson_id = ? AND class_id = ?", lesson.ID, class.ID).First(&assignment).Error; err != nil {
		t.Fatalf("load assignment: %v", err)
	}
	if assignment.IsActive {
		t.Fatalf("assignment created inactive came back active")
	}

	roster := &types.ClassStudent{
		ID:        uuid.New(),
		ClassID:   class.ID,
		StudentID: student.ID,
		IsActive:  false,
		JoinedAt:  time.Now(),
	}
	if err := env.db.Create(roster).Error; err != nil {
		t.Fatalf("create roster row: %v", err)
	}
	var reloaded types.ClassStudent
	if err := env.db.First(&reloaded, "id = ?", roster.ID).Error; err != nil {
		t.Fatalf("load roster row: %v", err)
	}
	if reloaded.IsActive {
		t.Fatalf("roster row created inactive came back active")
	}
}

func TestCanAccess_DisabledPublicFeedHidesPublicLessons(t *testing.T) {
	env := newTestEnv(t)
	school := env.seedSchool(t)
	student := env.seedUser(t, school.ID, types.RoleStudent)
	lesson := env.seedLesson(t, nil, "Open lesson", types.SharingModePublic, 0)
	ctx := context.Background()

	if _, err := env.settings.Update(ctx, UpdateSettingsInput{Options: map[string]bool{types.OptionPublicLessonFeed: false}}); err != nil {
		t.Fatalf("Update settings: %v", err)
	}

	allowed, err := env.visibility.CanAccess(ctx, nil, lesson, student.ID)
	if err != nil {
		t.Fatalf("CanAccess: %v", err)
	}
	if allowed {
		t.Fatalf("public lessons must be hidden while the feed is disabled")
	}

	lessons, err := env.visibility.ListAccessible(ctx, nil, student.ID)
	if err != nil {
		t.Fatalf("ListAccessible: %v", err)
	}
	if len(lessons) != 0 {
		t.Fatalf("expected an empty feed, got %d lessons", len(lessons))
	}
}

func TestCanAccess_ExclusionOverridesPublic(t *testing.T) {
	env := newTestEnv(t)
	school := env.seedSchool(t)
	student := env.seedUser(t, school.ID, types.RoleStudent)
	lesson := env.seedLesson(t, nil, "Open lesson", types.SharingModePublic, 0)
	env.excludeStudent(t, lesson.ID, student.ID)

	allowed, err := env.visibility.CanAccess(context.Background(), nil, lesson, student.ID)
	if err != nil {
		t.Fatalf("CanAccess: %v", err)
	}
	if allowed {
		t.Fatalf("an exclusion must override a public grant")
	}
}

func TestCanAccess_UnknownModeDenies(t *testing.T) {
	env := newTestEnv(t)
	school := env.seedSchool(t)
	student := env.seedUser(t, school.ID, types.RoleStudent)
	lesson := &types.Lesson{ID: uuid.New(), Title: "Odd", SharingMode: types.SharingMode("experimental")}

	allowed, err := env.visibility.CanAccess(context.Background(), nil, lesson, student.ID)
	if err != nil {
		t.Fatalf("CanAccess: %v", err)
	}
	if allowed {
		t.Fatalf("an unrecognized sharing mode must deny")
	}
}

func TestListAccessible_UnionMinusExclusionsOrderedByPosition(t *testing.T) {
	env := newTestEnv(t)
	school := env.seedSchool(t)
	student := env.seedUser(t, school.ID, types.RoleStudent)
	class := env.seedClass(t, school.ID, "10A")
	env.enroll(t, class.ID, student.ID)
	course := env.seedCourse(t, school.ID, "Algebra", true)
	env.linkCourseClass(t, course.ID, class.ID)

	classLesson := env.seedLesson(t, &course.ID, "Roster lesson", types.SharingModeClass, 2)
	publicLesson := env.seedLesson(t, nil, "Open lesson", types.SharingModePublic, 1)
	customLesson := env.seedLesson(t, nil, "Assigned lesson", types.SharingModeCustom, 3)
	env.assignLessonClass(t, customLesson.ID, class.ID, true)
	excludedLesson := env.seedLesson(t, nil, "Blocked lesson", types.SharingModePublic, 0)
	env.excludeStudent(t, excludedLesson.ID, student.ID)
	env.seedLesson(t, &course.ID, "Hidden lesson", types.SharingModePrivate, 4)

	lessons, err := env.visibility.ListAccessible(context.Background(), nil, student.ID)
	if err != nil {
		t.Fatalf("ListAccessible: %v", err)
	}
	if len(lessons) != 3 {
		t.Fatalf("expected 3 accessible lessons, got %d", len(lessons))
	}
	want := []uuid.UUID{publicLesson.ID, classLesson.ID, customLesson.ID}
	for i, lesson := range lessons {
		if lesson.ID != want[i] {
			t.Fatalf("position %d: expected lesson %s, got %s (%q)", i, want[i], lesson.ID, lesson.Title)
		}
	}
}
