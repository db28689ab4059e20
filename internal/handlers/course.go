package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brightclass/brightclass-backend/internal/apierr"
	"github.com/brightclass/brightclass-backend/internal/requestdata"
	"github.com/brightclass/brightclass-backend/internal/services"
)

type CourseHandler struct {
	courseService services.CourseService
	reviewService services.ReviewService
}

func NewCourseHandler(courseService services.CourseService, reviewService services.ReviewService) *CourseHandler {
	return &CourseHandler{courseService: courseService, reviewService: reviewService}
}

func (ch *CourseHandler) List(c *gin.Context) {
	courses, err := ch.courseService.ListPublished(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"courses": courses})
}

func (ch *CourseHandler) Get(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", errors.New("invalid course id"))
		return
	}
	course, err := ch.courseService.GetByID(c.Request.Context(), courseID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, course)
}

func (ch *CourseHandler) Create(c *gin.Context) {
	var req struct {
		SubjectID   *uuid.UUID `json:"subject_id"`
		Title       string     `json:"title"`
		Description string     `json:"description"`
		IsPublished bool       `json:"is_published"`
		PriceCents  int        `json:"price_cents"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", errors.New("invalid request body"))
		return
	}
	course, err := ch.courseService.Create(c.Request.Context(), services.CreateCourseInput{
		SubjectID:   req.SubjectID,
		Title:       req.Title,
		Description: req.Description,
		IsPublished: req.IsPublished,
		PriceCents:  req.PriceCents,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, course)
}

func (ch *CourseHandler) LinkClass(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", errors.New("invalid course id"))
		return
	}
	var req struct {
		ClassID uuid.UUID `json:"class_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ClassID == uuid.Nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", errors.New("a class_id is required"))
		return
	}
	if err := ch.courseService.LinkClass(c.Request.Context(), courseID, req.ClassID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"linked": true})
}

func (ch *CourseHandler) ListReviews(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", errors.New("invalid course id"))
		return
	}
	reviews, err := ch.reviewService.ListForCourse(c.Request.Context(), courseID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"reviews": reviews})
}

func (ch *CourseHandler) PostReview(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondServiceError(c, apierr.Unauthorized("request data not set in context"))
		return
	}
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", errors.New("invalid course id"))
		return
	}
	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", errors.New("invalid request body"))
		return
	}
	review, err := ch.reviewService.Post(c.Request.Context(), rd.UserID, courseID, req.Rating, req.Comment)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, review)
}
