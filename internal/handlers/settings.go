package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brightclass/brightclass-backend/internal/services"
)

type SettingsHandler struct {
	settingsService services.SettingsService
}

func NewSettingsHandler(settingsService services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

func (sh *SettingsHandler) Get(c *gin.Context) {
	settings, err := sh.settingsService.Get(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, settings)
}

func (sh *SettingsHandler) Update(c *gin.Context) {
	var req struct {
		SiteName     *string         `json:"site_name"`
		CurrencyCode *string         `json:"currency_code"`
		Options      map[string]bool `json:"options"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION", errors.New("invalid request body"))
		return
	}
	settings, err := sh.settingsService.Update(c.Request.Context(), services.UpdateSettingsInput{
		SiteName:     req.SiteName,
		CurrencyCode: req.CurrencyCode,
		Options:      req.Options,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, settings)
}
