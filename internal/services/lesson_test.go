package services

import (
	"context"
	"testing"

	"github.com/brightclass/brightclass-backend/internal/apierr"
	"github.com/brightclass/brightclass-backend/internal/types"
)

func TestListForStudent_AnnotatesProgress(t *testing.T) {
	env := newTestEnv(t)
	school := env.seedSchool(t)
	student := env.seedUser(t, school.ID, types.RoleStudent)
	started := env.seedLesson(t, nil, "Started", types.SharingModePublic, 0)
	env.seedLesson(t, nil, "Untouched", types.SharingModePublic, 1)
	ctx := context.Background()

	if _, err := env.progress.Record(ctx, student.ID, started.ID, ProgressInput{ProgressPercentage: 25}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	out, err := env.lessons.ListForStudent(ctx, student.ID)
	if err != nil {
		t.Fatalf("ListForStudent: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 lessons, got %d", len(out))
	}
	if out[0].Progress == nil || out[0].Progress.ProgressPercentage != 25 {
		t.Fatalf("expected the started lesson to carry its progress record")
	}
	if out[1].Progress != nil {
		t.Fatalf("expected no progress record on the untouched lesson")
	}
}

func TestCreate_DefaultsAndValidation(t *testing.T) {
	env := newTestEnv(t)
	school := env.seedSchool(t)
	teacher := env.seedUser(t, school.ID, types.RoleTeacher)
	ctx := context.Background()

	lesson, err := env.lessons.Create(ctx, teacher.ID, CreateLessonInput{Title: "  Intro   lesson "})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if lesson.Title != "Intro lesson" {
		t.Fatalf("expected normalized title, got %q", lesson.Title)
	}
	if lesson.SharingMode != types.SharingModePrivate {
		t.Fatalf("new lessons must default to private, got %s", lesson.SharingMode)
	}
	if !lesson.IsStandalone {
		t.Fatalf("a lesson without a course is standalone")
	}

	if _, err := env.lessons.Create(ctx, teacher.ID, CreateLessonInput{Title: "   "}); !apierr.IsCode(err, apierr.CodeValidation) {
		t.Fatalf("expected VALIDATION for an empty title, got %v", err)
	}
	if _, err := env.lessons.Create(ctx, teacher.ID, CreateLessonInput{Title: "x", SharingMode: "everyone"}); !apierr.IsCode(err, apierr.CodeValidation) {
		t.Fatalf("expected VALIDATION for an unknown sharing mode, got %v", err)
	}
}

func TestUpdate_RejectsUnknownFields(t *testing.T) {
	env := newTestEnv(t)
	school := env.seedSchool(t)
	teacher := env.seedUser(t, school.ID, types.RoleTeacher)
	ctx := context.Background()

	lesson, err := env.lessons.Create(ctx, teacher.ID, CreateLessonInput{Title: "Editable"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := env.lessons.Update(ctx, lesson.ID, map[string]interface{}{"sharing_mode": "public"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.SharingMode != types.SharingModePublic {
		t.Fatalf("expected sharing mode to change, got %s", updated.SharingMode)
	}

	if _, err := env.lessons.Update(ctx, lesson.ID, map[string]interface{}{"teacher_id": "x"}); !apierr.IsCode(err, apierr.CodeValidation) {
		t.Fatalf("expected VALIDATION for a non-updatable field, got %v", err)
	}
}

func TestExcludeStudent_IsIdempotentAndReversible(t *testing.T) {
	env := newTestEnv(t)
	school := env.seedSchool(t)
	student := env.seedUser(t, school.ID, types.RoleStudent)
	lesson := env.seedLesson(t, nil, "Open", types.SharingModePublic, 0)
	ctx := context.Background()

	if err := env.lessons.ExcludeStudent(ctx, lesson.ID, student.ID, "behavior"); err != nil {
		t.Fatalf("first exclude: %v", err)
	}
	if err := env.lessons.ExcludeStudent(ctx, lesson.ID, student.ID, "again"); err != nil {
		t.Fatalf("repeat exclude should be a no-op: %v", err)
	}

	allowed, err := env.visibility.CanAccess(ctx, nil, lesson, student.ID)
	if err != nil {
		t.Fatalf("CanAccess: %v", err)
	}
	if allowed {
		t.Fatalf("excluded student must not see the lesson")
	}

	if err := env.lessons.RemoveExclusion(ctx, lesson.ID, student.ID); err != nil {
		t.Fatalf("RemoveExclusion: %v", err)
	}
	allowed, err = env.visibility.CanAccess(ctx, nil, lesson, student.ID)
	if err != nil {
		t.Fatalf("CanAccess after removal: %v", err)
	}
	if !allowed {
		t.Fatalf("removing the exclusion must restore access")
	}
}
