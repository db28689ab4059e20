package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brightclass/brightclass-backend/internal/apierr"
	"github.com/brightclass/brightclass-backend/internal/requestdata"
	"github.com/brightclass/brightclass-backend/internal/services"
	"github.com/brightclass/brightclass-backend/internal/types"
)

type LessonHandler struct {
	lessonService   services.LessonService
	progressService services.ProgressService
}

func NewLessonHandler(lessonService services.LessonService, progressService services.ProgressService) *LessonHandler {
	return &LessonHandler{lessonService: lessonService, progressService: progressService}
}

// List resolves the lessons visible to the caller. Teachers and admins may
// pass ?student={uuid} to resolve for a specific student instead.
func (lh *LessonHandler) List(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondServiceError(c, apierr.Unauthorized("request data not set in context"))
		return
	}

	studentID := rd.UserID
	if raw := c.Query("student"); raw != "" {
		if rd.Role == types.RoleStudent {
			RespondServiceError(c, apierr.Forbidden("students cannot resolve other students"))
			return
		}
		parsed, err := uuid.Parse(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "VALIDATION", errors.New("invalid student id"))
			return
		}
		studentID = parsed
	}

	lessons, err := lh.lessonService.ListForStudent(c.Request.Context(), studentID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"lessons": lessons})
}

func (lh *LessonHandler) RecordProgress(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondServiceError(c, apierr.Unauthorized("request data not set in context"))
		return
	}
	lessonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", errors.New("invalid lesson id"))
		return
	}
	var req struct {
		ProgressPercentage int  `json:"progress_percentage"`
		TimeSpentMinutes   int  `json:"time_spent_minutes"`
		VideoProgress      *int `json:"video_progress"`
		DocumentsRead      *int `json:"documents_read"`
		TotalDocuments     *int `json:"total_documents"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", errors.New("invalid request body"))
		return
	}

	record, err := lh.progressService.Record(c.Request.Context(), rd.UserID, lessonID, services.ProgressInput{
		ProgressPercentage: req.ProgressPercentage,
		TimeSpentMinutes:   req.TimeSpentMinutes,
		VideoProgress:      req.VideoProgress,
		DocumentsRead:      req.DocumentsRead,
		TotalDocuments:     req.TotalDocuments,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, record)
}

func (lh *LessonHandler) Complete(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondServiceError(c, apierr.Unauthorized("request data not set in context"))
		return
	}
	lessonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", errors.New("invalid lesson id"))
		return
	}
	record, err := lh.progressService.Complete(c.Request.Context(), rd.UserID, lessonID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, record)
}

func (lh *LessonHandler) Create(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondServiceError(c, apierr.Unauthorized("request data not set in context"))
		return
	}
	var req struct {
		CourseID    *uuid.UUID `json:"course_id"`
		Title       string     `json:"title"`
		ContentType string     `json:"content_type"`
		SharingMode string     `json:"sharing_mode"`
		Position    int        `json:"position"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", errors.New("invalid request body"))
		return
	}
	lesson, err := lh.lessonService.Create(c.Request.Context(), rd.UserID, services.CreateLessonInput{
		CourseID:    req.CourseID,
		Title:       req.Title,
		ContentType: types.ContentType(req.ContentType),
		SharingMode: types.SharingMode(req.SharingMode),
		Position:    req.Position,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, lesson)
}

func (lh *LessonHandler) Update(c *gin.Context) {
	lessonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", errors.New("invalid lesson id"))
		return
	}
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", errors.New("invalid request body"))
		return
	}
	lesson, err := lh.lessonService.Update(c.Request.Context(), lessonID, updates)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, lesson)
}

func (lh *LessonHandler) AssignClass(c *gin.Context) {
	lessonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", errors.New("invalid lesson id"))
		return
	}
	var req struct {
		ClassID uuid.UUID `json:"class_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ClassID == uuid.Nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", errors.New("a class_id is required"))
		return
	}
	if err := lh.lessonService.AssignClass(c.Request.Context(), lessonID, req.ClassID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"assigned": true})
}

func (lh *LessonHandler) UnassignClass(c *gin.Context) {
	lessonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", errors.New("invalid lesson id"))
		return
	}
	classID, err := uuid.Parse(c.Param("classID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", errors.New("invalid class id"))
		return
	}
	if err := lh.lessonService.UnassignClass(c.Request.Context(), lessonID, classID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"assigned": false})
}

func (lh *LessonHandler) ExcludeStudent(c *gin.Context) {
	lessonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", errors.New("invalid lesson id"))
		return
	}
	var req struct {
		StudentID uuid.UUID `json:"student_id"`
		Reason    string    `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.StudentID == uuid.Nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", errors.New("a student_id is required"))
		return
	}
	if err := lh.lessonService.ExcludeStudent(c.Request.Context(), lessonID, req.StudentID, req.Reason); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"excluded": true})
}

func (lh *LessonHandler) RemoveExclusion(c *gin.Context) {
	lessonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", errors.New("invalid lesson id"))
		return
	}
	studentID, err := uuid.Parse(c.Param("studentID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", errors.New("invalid student id"))
		return
	}
	if err := lh.lessonService.RemoveExclusion(c.Request.Context(), lessonID, studentID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"excluded": false})
}
