package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightclass/brightclass-backend/internal/apierr"
	"github.com/brightclass/brightclass-backend/internal/types"
)

func TestSubmit_CreatesPendingRequest(t *testing.T) {
	env := newTestEnv(t)
	school := env.seedSchool(t)
	student := env.seedUser(t, school.ID, types.RoleStudent)
	course := env.seedCourse(t, school.ID, "Algebra", true)

	request, err := env.enrollment.Submit(context.Background(), student.ID, course.ID, nil, "please")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if request.Status != types.RequestStatusPending {
		t.Fatalf("expected pending, got %s", request.Status)
	}
	if request.ReviewedBy != nil || request.ReviewedAt != nil {
		t.Fatalf("a fresh request must not carry review fields")
	}
}

func TestSubmit_ClosedEnrollmentIsForbidden(t *testing.T) {
	env := newTestEnv(t)
	school := env.seedSchool(t)
	student := env.seedUser(t, school.ID, types.RoleStudent)
	course := env.seedCourse(t, school.ID, "Algebra", true)
	ctx := context.Background()

	if _, err := env.settings.Update(ctx, UpdateSettingsInput{Options: map[string]bool{types.OptionEnrollmentOpen: false}}); err != nil {
		t.Fatalf("Update settings: %v", err)
	}

	_, err := env.enrollment.Submit(ctx, student.ID, course.ID, nil, "")
	if !apierr.IsCode(err, apierr.CodeForbidden) {
		t.Fatalf("expected FORBIDDEN while enrollment is closed, got %v", err)
	}
}

func TestSubmit_UnpublishedCourseIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	school := env.seedSchool(t)
	student := env.seedUser(t, school.ID, types.RoleStudent)
	course := env.seedCourse(t, school.ID, "Draft course", false)

	_, err := env.enrollment.Submit(context.Background(), student.ID, course.ID, nil, "")
	if !apierr.IsCode(err, apierr.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND for an unpublished course, got %v", err)
	}
}

func TestSubmit_DuplicateIsRejected(t *testing.T) {
	env := newTestEnv(t)
	school := env.seedSchool(t)
	student := env.seedUser(t, school.ID, types.RoleStudent)
	course := env.seedCourse(t, school.ID, "Algebra", true)
	ctx := context.Background()

	if _, err := env.enrollment.Submit(ctx, student.ID, course.ID, nil, ""); err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	_, err := env.enrollment.Submit(ctx, student.ID, course.ID, nil, "")
	if !apierr.IsCode(err, apierr.CodeDuplicateRequest) {
		t.Fatalf("expected DUPLICATE_REQUEST, got %v", err)
	}
}

func TestSubmit_RejectedRowStillBlocksResubmission(t *testing.T) {
	env := newTestEnv(t)
	school := env.seedSchool(t)
	student := env.seedUser(t, school.ID, types.RoleStudent)
	teacher := env.seedUser(t, school.ID, types.RoleTeacher)
	course := env.seedCourse(t, school.ID, "Algebra", true)
	ctx := context.Background()

	request, err := env.enrollment.Submit(ctx, student.ID, course.ID, nil, "")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := env.enrollment.Review(ctx, request.ID, DecisionReject, teacher.ID, "not this term"); err != nil {
		t.Fatalf("Review: %v", err)
	}

	_, err = env.enrollment.Submit(ctx, student.ID, course.ID, nil, "")
	if !apierr.IsCode(err, apierr.CodeDuplicateRequest) {
		t.Fatalf("expected DUPLICATE_REQUEST while the rejected row exists, got %v", err)
	}
}

func TestSubmit_LostInsertRaceMapsToDuplicate(t *testing.T) {
	env := newTestEnv(t)
	school := env.seedSchool(t)
	student := env.seedUser(t, school.ID, types.RoleStudent)
	course := env.seedCourse(t, school.ID, "Algebra", true)
	ctx := context.Background()

	// Slip a competing request in between Submit's duplicate pre-check and
	// its insert, so the unique index is what reports the conflict.
	raced := false
	err := env.db.Callback().Create().Before("gorm:create").Register("competing_request", func(tx *gorm.DB) {
		if raced || tx.Statement.Table != (types.EnrollmentRequest{}).TableName() {
			return
		}
		raced = true
		competing := &types.EnrollmentRequest{
			ID:        uuid.New(),
			StudentID: student.ID,
			CourseID:  course.ID,
			Status:    types.RequestStatusPending,
		}
		if err := tx.Session(&gorm.Session{NewDB: true}).Create(competing).Error; err != nil {
			t.Errorf("insert competing request: %v", err)
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	_, err = env.enrollment.Submit(ctx, student.ID, course.ID, nil, "")
	if !apierr.IsCode(err, apierr.CodeDuplicateRequest) {
		t.Fatalf("expected DUPLICATE_REQUEST from the losing insert, got %v", err)
	}
	if !raced {
		t.Fatalf("competing insert never ran")
	}
}

func TestReview_RejectWithoutReasonFails(t *testing.T) {
	env := newTestEnv(t)
	school := env.seedSchool(t)
	student := env.seedUser(t, school.ID, types.RoleStudent)
	teacher := env.seedUser(t, school.ID, types.RoleTeacher)
	course := env.seedCourse(t, school.ID, "Algebra", true)
	ctx := context.Background()

	request, err := env.enrollment.Submit(ctx, student.ID, course.ID, nil, "")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	_, err = env.enrollment.Review(ctx, request.ID, DecisionReject, teacher.ID, "   ")
	if !apierr.IsCode(err, apierr.CodeMissingReason) {
		t.Fatalf("expected MISSING_REASON, got %v", err)
	}

	// The failed review must leave the request pending.
	pending, err := env.enrollment.ListByStatus(ctx, types.RequestStatusPending)
	if err != nil {
		t.Fatalf("ListByStatus: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != request.ID {
		t.Fatalf("expected the request to stay pending")
	}
}

func TestReview_TerminalRequestIsImmutable(t *testing.T) {
	env := newTestEnv(t)
	school := env.seedSchool(t)
	student := env.seedUser(t, school.ID, types.RoleStudent)
	teacher := env.seedUser(t, school.ID, types.RoleTeacher)
	class := env.seedClass(t, school.ID, "10A")
	course := env.seedCourse(t, school.ID, "Algebra", true)
	env.linkCourseClass(t, course.ID, class.ID)
	ctx := context.Background()

	request, err := env.enrollment.Submit(ctx, student.ID, course.ID, nil, "")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := env.enrollment.Review(ctx, request.ID, DecisionApprove, teacher.ID, ""); err != nil {
		t.Fatalf("approve: %v", err)
	}

	_, err = env.enrollment.Review(ctx, request.ID, DecisionReject, teacher.ID, "changed my mind")
	if !apierr.IsCode(err, apierr.CodeAlreadyReviewed) {
		t.Fatalf("expected ALREADY_REVIEWED, got %v", err)
	}
}

func TestReview_ApproveEnrollsAndUnlocksClassLessons(t *testing.T) {
	env := newTestEnv(t)
	school := env.seedSchool(t)
	student := env.seedUser(t, school.ID, types.RoleStudent)
	teacher := env.seedUser(t, school.ID, types.RoleTeacher)
	class := env.seedClass(t, school.ID, "10A")
	course := env.seedCourse(t, school.ID, "Algebra", true)
	env.linkCourseClass(t, course.ID, class.ID)
	lesson := env.seedLesson(t, &course.ID, "Fractions", types.SharingModeClass, 0)
	ctx := context.Background()

	allowed, err := env.visibility.CanAccess(ctx, nil, lesson, student.ID)
	if err != nil {
		t.Fatalf("CanAccess before approval: %v", err)
	}
	if allowed {
		t.Fatalf("student must not see the lesson before approval")
	}

	request, err := env.enrollment.Submit(ctx, student.ID, course.ID, nil, "")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	reviewed, err := env.enrollment.Review(ctx, request.ID, DecisionApprove, teacher.ID, "")
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if reviewed.Status != types.RequestStatusApproved {
		t.Fatalf("expected approved, got %s", reviewed.Status)
	}
	if reviewed.ReviewedBy == nil || *reviewed.ReviewedBy != teacher.ID || reviewed.ReviewedAt == nil {
		t.Fatalf("review fields not recorded")
	}

	allowed, err = env.visibility.CanAccess(ctx, nil, lesson, student.ID)
	if err != nil {
		t.Fatalf("CanAccess after approval: %v", err)
	}
	if !allowed {
		t.Fatalf("approval must flip class-mode visibility for the course's lessons")
	}
}

func TestReview_ApproveWithoutLinkedClassFailsAndStaysPending(t *testing.T) {
	env := newTestEnv(t)
	school := env.seedSchool(t)
	student := env.seedUser(t, school.ID, types.RoleStudent)
	teacher := env.seedUser(t, school.ID, types.RoleTeacher)
	course := env.seedCourse(t, school.ID, "Unlinked course", true)
	ctx := context.Background()

	request, err := env.enrollment.Submit(ctx, student.ID, course.ID, nil, "")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	_, err = env.enrollment.Review(ctx, request.ID, DecisionApprove, teacher.ID, "")
	if !apierr.IsCode(err, apierr.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND for a course with no linked class, got %v", err)
	}

	pending, err := env.enrollment.ListByStatus(ctx, types.RequestStatusPending)
	if err != nil {
		t.Fatalf("ListByStatus: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected the request to stay pending after the failed approval")
	}
}

func TestReview_ExplicitClassWinsOverCourseLink(t *testing.T) {
	env := newTestEnv(t)
	school := env.seedSchool(t)
	student := env.seedUser(t, school.ID, types.RoleStudent)
	teacher := env.seedUser(t, school.ID, types.RoleTeacher)
	linked := env.seedClass(t, school.ID, "10A")
	requested := env.seedClass(t, school.ID, "10B")
	course := env.seedCourse(t, school.ID, "Algebra", true)
	env.linkCourseClass(t, course.ID, linked.ID)
	ctx := context.Background()

	request, err := env.enrollment.Submit(ctx, student.ID, course.ID, &requested.ID, "")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := env.enrollment.Review(ctx, request.ID, DecisionApprove, teacher.ID, ""); err != nil {
		t.Fatalf("Review: %v", err)
	}

	var rows []types.ClassStudent
	if err := env.db.Where("student_id = ?", student.ID).Find(&rows).Error; err != nil {
		t.Fatalf("load roster: %v", err)
	}
	if len(rows) != 1 || rows[0].ClassID != requested.ID {
		t.Fatalf("expected roster row in the explicitly requested class")
	}
}
