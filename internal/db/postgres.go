package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/brightclass/brightclass-backend/internal/logger"
	"github.com/brightclass/brightclass-backend/internal/types"
	"github.com/brightclass/brightclass-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "brightclass", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	log.Info("Connecting to Postgres...")
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	if err := gdb.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		serviceLog.Error("Failed to enable uuid-ossp extension", "error", err)
		return nil, fmt.Errorf("failed to enable uuid-ossp extension: %w", err)
	}

	return &PostgresService{db: gdb, log: serviceLog}, nil
}

// Tables returns every persisted model in dependency order. Shared with the
// sqlite-backed test harness so migrations never drift from production.
func Tables() []interface{} {
	return []interface{}{
		&types.School{},
		&types.User{},
		&types.UserToken{},
		&types.Subject{},
		&types.Class{},
		&types.ClassStudent{},
		&types.ClassTeacher{},
		&types.ClassSubject{},
		&types.Course{},
		&types.CourseClass{},
		&types.Lesson{},
		&types.LessonClassAssignment{},
		&types.LessonStudentExclusion{},
		&types.StudentProgress{},
		&types.EnrollmentRequest{},
		&types.CourseReview{},
		&types.ActivityEvent{},
		&types.SiteSettings{},
	}
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := s.db.AutoMigrate(Tables()...); err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}

	s.log.Info("Configuring foreign key relationships for postgres tables...")
	constraints := []struct {
		name string
		ddl  string
	}{
		{"fk_user_school_id", `ALTER TABLE "user" ADD CONSTRAINT "fk_user_school_id" FOREIGN KEY ("school_id") REFERENCES "school"("id") ON DELETE CASCADE`},
		{"fk_user_token_user_id", `ALTER TABLE "user_token" ADD CONSTRAINT "fk_user_token_user_id" FOREIGN KEY ("user_id") REFERENCES "user"("id") ON DELETE CASCADE`},
		{"fk_class_student_class_id", `ALTER TABLE "class_student" ADD CONSTRAINT "fk_class_student_class_id" FOREIGN KEY ("class_id") REFERENCES "class"("id") ON DELETE CASCADE`},
		{"fk_class_student_student_id", `ALTER TABLE "class_student" ADD CONSTRAINT "fk_class_student_student_id" FOREIGN KEY ("student_id") REFERENCES "user"("id") ON DELETE CASCADE`},
		{"fk_class_teacher_class_id", `ALTER TABLE "class_teacher" ADD CONSTRAINT "fk_class_teacher_class_id" FOREIGN KEY ("class_id") REFERENCES "class"("id") ON DELETE CASCADE`},
		{"fk_class_subject_class_id", `ALTER TABLE "class_subject" ADD CONSTRAINT "fk_class_subject_class_id" FOREIGN KEY ("class_id") REFERENCES "class"("id") ON DELETE CASCADE`},
		{"fk_course_class_course_id", `ALTER TABLE "course_class" ADD CONSTRAINT "fk_course_class_course_id" FOREIGN KEY ("course_id") REFERENCES "course"("id") ON DELETE CASCADE`},
		{"fk_course_class_class_id", `ALTER TABLE "course_class" ADD CONSTRAINT "fk_course_class_class_id" FOREIGN KEY ("class_id") REFERENCES "class"("id") ON DELETE CASCADE`},
		{"fk_lesson_course_id", `ALTER TABLE "lesson" ADD CONSTRAINT "fk_lesson_course_id" FOREIGN KEY ("course_id") REFERENCES "course"("id") ON DELETE SET NULL`},
		{"fk_lesson_class_lesson_id", `ALTER TABLE "lesson_class" ADD CONSTRAINT "fk_lesson_class_lesson_id" FOREIGN KEY ("lesson_id") REFERENCES "lesson"("id") ON DELETE CASCADE`},
		{"fk_lesson_class_class_id", `ALTER TABLE "lesson_class" ADD CONSTRAINT "fk_lesson_class_class_id" FOREIGN KEY ("class_id") REFERENCES "class"("id") ON DELETE CASCADE`},
		{"fk_lesson_excl_lesson_id", `ALTER TABLE "lesson_student_exclusion" ADD CONSTRAINT "fk_lesson_excl_lesson_id" FOREIGN KEY ("lesson_id") REFERENCES "lesson"("id") ON DELETE CASCADE`},
		{"fk_lesson_excl_student_id", `ALTER TABLE "lesson_student_exclusion" ADD CONSTRAINT "fk_lesson_excl_student_id" FOREIGN KEY ("student_id") REFERENCES "user"("id") ON DELETE CASCADE`},
		{"fk_student_progress_student_id", `ALTER TABLE "student_progress" ADD CONSTRAINT "fk_student_progress_student_id" FOREIGN KEY ("student_id") REFERENCES "user"("id") ON DELETE CASCADE`},
		{"fk_student_progress_lesson_id", `ALTER TABLE "student_progress" ADD CONSTRAINT "fk_student_progress_lesson_id" FOREIGN KEY ("lesson_id") REFERENCES "lesson"("id") ON DELETE CASCADE`},
		{"fk_enrollment_request_student_id", `ALTER TABLE "enrollment_request" ADD CONSTRAINT "fk_enrollment_request_student_id" FOREIGN KEY ("student_id") REFERENCES "user"("id") ON DELETE CASCADE`},
		{"fk_enrollment_request_course_id", `ALTER TABLE "enrollment_request" ADD CONSTRAINT "fk_enrollment_request_course_id" FOREIGN KEY ("course_id") REFERENCES "course"("id") ON DELETE CASCADE`},
		{"fk_course_review_course_id", `ALTER TABLE "course_review" ADD CONSTRAINT "fk_course_review_course_id" FOREIGN KEY ("course_id") REFERENCES "course"("id") ON DELETE CASCADE`},
		{"fk_activity_event_user_id", `ALTER TABLE "activity_event" ADD CONSTRAINT "fk_activity_event_user_id" FOREIGN KEY ("user_id") REFERENCES "user"("id") ON DELETE CASCADE`},
	}
	for _, c := range constraints {
		var exists bool
		if err := s.db.Raw(`SELECT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = ?)`, c.name).Scan(&exists).Error; err != nil {
			return fmt.Errorf("failed to check constraint %s: %w", c.name, err)
		}
		if exists {
			continue
		}
		if err := s.db.Exec(c.ddl).Error; err != nil {
			return fmt.Errorf("failed to add %s: %w", c.name, err)
		}
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
