package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brightclass/brightclass-backend/internal/logger"
	"github.com/brightclass/brightclass-backend/internal/requestdata"
	"github.com/brightclass/brightclass-backend/internal/services"
	"github.com/brightclass/brightclass-backend/internal/types"
)

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
	settings    services.SettingsService
}

func NewAuthMiddleware(baseLog *logger.Logger, authService services.AuthService, settings services.SettingsService) *AuthMiddleware {
	return &AuthMiddleware{
		log:         baseLog.With("middleware", "AuthMiddleware"),
		authService: authService,
		settings:    settings,
	}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "missing or invalid token", "code": "UNAUTHORIZED"},
			})
			return
		}
		ctx, err := am.authService.SetContextFromToken(c.Request.Context(), tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": err.Error(), "code": "UNAUTHORIZED"},
			})
			return
		}
		c.Request = c.Request.WithContext(ctx)
		rd := requestdata.GetRequestData(ctx)
		if rd == nil || rd.UserID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{"message": "forbidden", "code": "FORBIDDEN"},
			})
			return
		}
		// Maintenance mode locks out everyone but admins. A failed settings
		// read skips the gate rather than taking the site down with it.
		if rd.Role != types.RoleAdmin {
			siteSettings, err := am.settings.Get(ctx)
			if err != nil {
				am.log.Warn("Settings lookup failed, skipping maintenance gate", "error", err)
			} else if services.OptionValue(siteSettings, types.OptionMaintenanceMode, false) {
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
					"error": gin.H{"message": "the site is down for maintenance", "code": "MAINTENANCE"},
				})
				return
			}
		}
		c.Next()
	}
}

// RequireRole gates a route group to the given roles. It assumes RequireAuth
// already ran and attached the request data.
func (am *AuthMiddleware) RequireRole(roles ...types.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		rd := requestdata.GetRequestData(c.Request.Context())
		if rd == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "missing or invalid token", "code": "UNAUTHORIZED"},
			})
			return
		}
		for _, role := range roles {
			if rd.Role == role {
				c.Next()
				return
			}
		}
		am.log.Warn("Role check rejected request",
			"user_id", rd.UserID.String(),
			"role", string(rd.Role),
			"path", c.FullPath(),
		)
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": gin.H{"message": "forbidden", "code": "FORBIDDEN"},
		})
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return c.Query("token")
}
