package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/brightclass/brightclass-backend/internal/handlers"
	"github.com/brightclass/brightclass-backend/internal/middleware"
	"github.com/brightclass/brightclass-backend/internal/types"
)

type RouterConfig struct {
	AuthMiddleware    *middleware.AuthMiddleware
	AuthHandler       *handlers.AuthHandler
	UserHandler       *handlers.UserHandler
	LessonHandler     *handlers.LessonHandler
	CourseHandler     *handlers.CourseHandler
	EnrollmentHandler *handlers.EnrollmentHandler
	SettingsHandler   *handlers.SettingsHandler
	AllowedOrigins    []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/register", cfg.AuthHandler.Register)
	router.POST("/login", cfg.AuthHandler.Login)

	// Protected
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	protected.POST("/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/logout", cfg.AuthHandler.Logout)

	api := protected.Group("/api")
	api.GET("/user", cfg.UserHandler.GetMe)
	api.GET("/user/activity", cfg.UserHandler.GetActivity)

	api.GET("/lessons", cfg.LessonHandler.List)
	api.POST("/lessons/:id/progress", cfg.LessonHandler.RecordProgress)
	api.POST("/lessons/:id/complete", cfg.LessonHandler.Complete)

	api.GET("/courses", cfg.CourseHandler.List)
	api.GET("/courses/:id", cfg.CourseHandler.Get)
	api.GET("/courses/:id/reviews", cfg.CourseHandler.ListReviews)
	api.POST("/courses/:id/reviews", cfg.CourseHandler.PostReview)
	api.POST("/courses/:id/enroll-request", cfg.EnrollmentHandler.Submit)

	api.GET("/settings", cfg.SettingsHandler.Get)

	// Teacher and admin management surface
	manage := api.Group("/")
	manage.Use(cfg.AuthMiddleware.RequireRole(types.RoleTeacher, types.RoleAdmin))
	manage.POST("/lessons", cfg.LessonHandler.Create)
	manage.PATCH("/lessons/:id", cfg.LessonHandler.Update)
	manage.POST("/lessons/:id/classes", cfg.LessonHandler.AssignClass)
	manage.DELETE("/lessons/:id/classes/:classID", cfg.LessonHandler.UnassignClass)
	manage.POST("/lessons/:id/exclusions", cfg.LessonHandler.ExcludeStudent)
	manage.DELETE("/lessons/:id/exclusions/:studentID", cfg.LessonHandler.RemoveExclusion)
	manage.POST("/courses", cfg.CourseHandler.Create)
	manage.POST("/courses/:id/classes", cfg.CourseHandler.LinkClass)
	manage.GET("/enrollment-requests", cfg.EnrollmentHandler.List)
	manage.PUT("/enrollment-requests/:id", cfg.EnrollmentHandler.Review)

	// Admin only
	admin := api.Group("/")
	admin.Use(cfg.AuthMiddleware.RequireRole(types.RoleAdmin))
	admin.PUT("/settings", cfg.SettingsHandler.Update)

	return router
}
