package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/brightclass/brightclass-backend/internal/db"
	"github.com/brightclass/brightclass-backend/internal/logger"
	"github.com/brightclass/brightclass-backend/internal/repos"
	"github.com/brightclass/brightclass-backend/internal/requestdata"
	"github.com/brightclass/brightclass-backend/internal/services"
	"github.com/brightclass/brightclass-backend/internal/types"
)

// staticAuthService resolves tokens from a fixed map; only
// SetContextFromToken matters to the middleware under test.
type staticAuthService struct {
	identities map[string]*requestdata.RequestData
}

func (s *staticAuthService) RegisterUser(ctx context.Context, user *types.User) error { return nil }
func (s *staticAuthService) LoginUser(ctx context.Context, email, password string) (string, string, error) {
	return "", "", nil
}
func (s *staticAuthService) RefreshUser(ctx context.Context, refreshToken string) (string, string, error) {
	return "", "", nil
}
func (s *staticAuthService) LogoutUser(ctx context.Context) error { return nil }
func (s *staticAuthService) GetAccessTTL() time.Duration          { return time.Hour }

func (s *staticAuthService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	rd, ok := s.identities[tokenString]
	if !ok {
		return ctx, errors.New("invalid token")
	}
	return requestdata.WithRequestData(ctx, rd), nil
}

func newProtectedTestRouter(t *testing.T) (*gin.Engine, services.SettingsService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(db.Tables()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}

	activity := services.NewActivityService(gdb, log, repos.NewActivityEventRepo(gdb, log))
	settings := services.NewSettingsService(gdb, log, repos.NewSettingsRepo(gdb, log), nil, activity)

	auth := &staticAuthService{identities: map[string]*requestdata.RequestData{
		"student-token": {UserID: uuid.New(), SchoolID: uuid.New(), Role: types.RoleStudent},
		"admin-token":   {UserID: uuid.New(), SchoolID: uuid.New(), Role: types.RoleAdmin},
	}}
	am := NewAuthMiddleware(log, auth, settings)

	router := gin.New()
	protected := router.Group("/api", am.RequireAuth())
	protected.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router, settings
}

func doPing(router *gin.Engine, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestRequireAuth_MaintenanceModeLocksOutNonAdmins(t *testing.T) {
	router, settings := newProtectedTestRouter(t)

	if w := doPing(router, "student-token"); w.Code != http.StatusOK {
		t.Fatalf("expected 200 before maintenance, got %d", w.Code)
	}

	if _, err := settings.Update(context.Background(), services.UpdateSettingsInput{
		Options: map[string]bool{types.OptionMaintenanceMode: true},
	}); err != nil {
		t.Fatalf("enable maintenance: %v", err)
	}

	if w := doPing(router, "student-token"); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 for a student during maintenance, got %d", w.Code)
	}
	if w := doPing(router, "admin-token"); w.Code != http.StatusOK {
		t.Fatalf("expected admins to pass during maintenance, got %d", w.Code)
	}
}

func TestRequireAuth_RejectsMissingAndUnknownTokens(t *testing.T) {
	router, _ := newProtectedTestRouter(t)

	if w := doPing(router, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", w.Code)
	}
	if w := doPing(router, "bogus"); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for an unknown token, got %d", w.Code)
	}
}
