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

type EnrollmentHandler struct {
	enrollmentService services.EnrollmentService
}

func NewEnrollmentHandler(enrollmentService services.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollmentService: enrollmentService}
}

func (eh *EnrollmentHandler) Submit(c *gin.Context) {
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
		ClassID *uuid.UUID `json:"class_id"`
		Message string     `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", errors.New("invalid request body"))
		return
	}
	request, err := eh.enrollmentService.Submit(c.Request.Context(), rd.UserID, courseID, req.ClassID, req.Message)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, request)
}

func (eh *EnrollmentHandler) List(c *gin.Context) {
	status := types.RequestStatus(c.DefaultQuery("status", string(types.RequestStatusPending)))
	if !status.Valid() {
		RespondError(c, http.StatusBadRequest, "VALIDATION", errors.New("unknown status"))
		return
	}
	requests, err := eh.enrollmentService.ListByStatus(c.Request.Context(), status)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"requests": requests})
}

func (eh *EnrollmentHandler) Review(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondServiceError(c, apierr.Unauthorized("request data not set in context"))
		return
	}
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", errors.New("invalid request id"))
		return
	}
	var req struct {
		Status          string `json:"status"`
		RejectionReason string `json:"rejection_reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", errors.New("invalid request body"))
		return
	}

	var decision string
	switch types.RequestStatus(req.Status) {
	case types.RequestStatusApproved:
		decision = services.DecisionApprove
	case types.RequestStatusRejected:
		decision = services.DecisionReject
	default:
		RespondError(c, http.StatusBadRequest, "VALIDATION", errors.New("status must be approved or rejected"))
		return
	}

	request, err := eh.enrollmentService.Review(c.Request.Context(), requestID, decision, rd.UserID, req.RejectionReason)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, request)
}
