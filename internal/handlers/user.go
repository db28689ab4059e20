package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brightclass/brightclass-backend/internal/apierr"
	"github.com/brightclass/brightclass-backend/internal/requestdata"
	"github.com/brightclass/brightclass-backend/internal/services"
)

type UserHandler struct {
	userService     services.UserService
	activityService services.ActivityService
}

func NewUserHandler(userService services.UserService, activityService services.ActivityService) *UserHandler {
	return &UserHandler{userService: userService, activityService: activityService}
}

func (uh *UserHandler) GetMe(c *gin.Context) {
	user, err := uh.userService.GetMe(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, user)
}

func (uh *UserHandler) GetActivity(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondServiceError(c, apierr.Unauthorized("request data not set in context"))
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	events, err := uh.activityService.ListForUser(c.Request.Context(), rd.UserID, limit)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"events": events})
}
