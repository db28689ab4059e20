package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	redisclient "github.com/brightclass/brightclass-backend/internal/clients/redis"
	"github.com/brightclass/brightclass-backend/internal/db"
	"github.com/brightclass/brightclass-backend/internal/handlers"
	"github.com/brightclass/brightclass-backend/internal/logger"
	"github.com/brightclass/brightclass-backend/internal/middleware"
	"github.com/brightclass/brightclass-backend/internal/repos"
	"github.com/brightclass/brightclass-backend/internal/server"
	"github.com/brightclass/brightclass-backend/internal/services"
	"github.com/brightclass/brightclass-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
	allowedOrigins := strings.Split(utils.GetEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000", log), ",")

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	schoolRepo := repos.NewSchoolRepo(thePG, log)
	subjectRepo := repos.NewSubjectRepo(thePG, log)
	classRepo := repos.NewClassRepo(thePG, log)
	courseRepo := repos.NewCourseRepo(thePG, log)
	lessonRepo := repos.NewLessonRepo(thePG, log)
	progressRepo := repos.NewProgressRepo(thePG, log)
	enrollmentRequestRepo := repos.NewEnrollmentRequestRepo(thePG, log)
	reviewRepo := repos.NewReviewRepo(thePG, log)
	activityEventRepo := repos.NewActivityEventRepo(thePG, log)
	settingsRepo := repos.NewSettingsRepo(thePG, log)

	// Redis settings cache (optional)
	settingsCache, err := redisclient.NewSettingsCache(log)
	if err != nil {
		log.Warn("Settings cache unavailable, reads go to the database", "error", err)
		settingsCache = nil
	} else {
		defer settingsCache.Close()
	}

	// Services
	log.Info("Setting up Services from main...")
	activityService := services.NewActivityService(thePG, log, activityEventRepo)
	authService := services.NewAuthService(
		thePG,
		log,
		userRepo,
		schoolRepo,
		userTokenRepo,
		activityService,
		jwtSecretKey,
		time.Duration(accessTokenTTL)*time.Second,
		time.Duration(refreshTokenTTL)*time.Second,
	)
	userService := services.NewUserService(thePG, log, userRepo)
	settingsService := services.NewSettingsService(thePG, log, settingsRepo, settingsCache, activityService)
	visibilityService := services.NewVisibilityService(thePG, log, lessonRepo, classRepo, courseRepo, settingsService)
	progressService := services.NewProgressService(thePG, log, lessonRepo, progressRepo, visibilityService, activityService)
	lessonService := services.NewLessonService(thePG, log, lessonRepo, classRepo, userRepo, visibilityService, progressRepo)
	courseService := services.NewCourseService(thePG, log, courseRepo, classRepo, subjectRepo)
	enrollmentService := services.NewEnrollmentService(thePG, log, enrollmentRequestRepo, courseRepo, classRepo, settingsService, activityService)
	reviewService := services.NewReviewService(thePG, log, reviewRepo, courseRepo, settingsService, activityService)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService, activityService)
	lessonHandler := handlers.NewLessonHandler(lessonService, progressService)
	courseHandler := handlers.NewCourseHandler(courseService, reviewService)
	enrollmentHandler := handlers.NewEnrollmentHandler(enrollmentService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService, settingsService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthMiddleware:    authMiddleware,
		AuthHandler:       authHandler,
		UserHandler:       userHandler,
		LessonHandler:     lessonHandler,
		CourseHandler:     courseHandler,
		EnrollmentHandler: enrollmentHandler,
		SettingsHandler:   settingsHandler,
		AllowedOrigins:    allowedOrigins,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Warn("Server failed", "error", err)
	}
}
