package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightclass/brightclass-backend/internal/apierr"
	"github.com/brightclass/brightclass-backend/internal/logger"
	"github.com/brightclass/brightclass-backend/internal/normalization"
	"github.com/brightclass/brightclass-backend/internal/repos"
	"github.com/brightclass/brightclass-backend/internal/requestdata"
	"github.com/brightclass/brightclass-backend/internal/types"
	"github.com/brightclass/brightclass-backend/internal/utils"
)

type AuthService interface {
	RegisterUser(ctx context.Context, user *types.User) error
	// LoginUser returns (accessToken, refreshToken).
	LoginUser(ctx context.Context, email, password string) (string, string, error)
	RefreshUser(ctx context.Context, refreshToken string) (string, string, error)
	LogoutUser(ctx context.Context) error
	// SetContextFromToken validates the access token and attaches the
	// caller's identity to the context.
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	schoolRepo    repos.SchoolRepo
	userTokenRepo repos.UserTokenRepo
	activity      ActivityService
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	schoolRepo repos.SchoolRepo,
	userTokenRepo repos.UserTokenRepo,
	activity ActivityService,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	return &authService{
		db:            db,
		log:           baseLog.With("service", "AuthService"),
		userRepo:      userRepo,
		schoolRepo:    schoolRepo,
		userTokenRepo: userTokenRepo,
		activity:      activity,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (as *authService) RegisterUser(ctx context.Context, user *types.User) error {
	if user == nil {
		return apierr.Validation("no user given, cannot proceed with registration")
	}
	utils.NormalizeUserFields(user)
	if user.Role == "" {
		user.Role = types.RoleStudent
	}
	if err := utils.ValidateRegistration(user); err != nil {
		return apierr.Validation("%s", err.Error())
	}

	exists, err := as.userRepo.EmailExists(ctx, nil, user.Email)
	if err != nil {
		return apierr.Storage(fmt.Errorf("check email: %w", err))
	}
	if exists {
		return apierr.Validation("email is already in use")
	}

	schools, err := as.schoolRepo.GetByIDs(ctx, nil, []uuid.UUID{user.SchoolID})
	if err != nil {
		return apierr.Storage(fmt.Errorf("load school: %w", err))
	}
	if len(schools) == 0 || schools[0] == nil || !schools[0].IsActive {
		return apierr.NotFound("school %s not found", user.SchoolID)
	}

	if err := utils.HashPassword(user); err != nil {
		return apierr.Storage(err)
	}

	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user.ID = uuid.New()
		if _, err := as.userRepo.Create(ctx, tx, []*types.User{user}); err != nil {
			if repos.IsUniqueViolation(err) {
				return apierr.Validation("email is already in use")
			}
			return apierr.Storage(fmt.Errorf("create user: %w", err))
		}
		return nil
	})
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (string, string, error) {
	email = normalization.ParseInputString(email)
	if email == "" || password == "" {
		return "", "", apierr.Validation("email and password are required")
	}

	users, err := as.userRepo.GetByEmails(ctx, nil, []string{email})
	if err != nil {
		return "", "", apierr.Storage(fmt.Errorf("load user: %w", err))
	}
	if len(users) == 0 || users[0] == nil {
		return "", "", apierr.Unauthorized("invalid email or password")
	}
	user := users[0]

	if err := utils.CheckPassword(user.Password, password); err != nil {
		return "", "", apierr.Unauthorized("invalid email or password")
	}

	var accessToken, refreshToken string
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// A fresh login replaces any tokens the user still holds.
		if err := as.userTokenRepo.FullDeleteByUserIDs(ctx, tx, []uuid.UUID{user.ID}); err != nil {
			return apierr.Storage(fmt.Errorf("clear old tokens: %w", err))
		}
		access, refresh, err := as.issueTokens(ctx, tx, user)
		if err != nil {
			return err
		}
		accessToken, refreshToken = access, refresh
		as.activity.Log(ctx, tx, user.ID, types.ActionLogin, nil)
		return nil
	})
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (as *authService) RefreshUser(ctx context.Context, refreshToken string) (string, string, error) {
	if refreshToken == "" {
		return "", "", apierr.Unauthorized("a refresh token is required")
	}

	var accessToken, newRefreshToken string
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tokens, err := as.userTokenRepo.GetByRefreshTokens(ctx, tx, []string{refreshToken})
		if err != nil {
			return apierr.Storage(fmt.Errorf("load refresh token: %w", err))
		}
		if len(tokens) == 0 || tokens[0] == nil {
			return apierr.Unauthorized("unknown refresh token")
		}
		existing := tokens[0]
		if existing.ExpiresAt.Before(time.Now()) {
			if err := as.userTokenRepo.FullDeleteByIDs(ctx, tx, []uuid.UUID{existing.ID}); err != nil {
				return apierr.Storage(fmt.Errorf("delete expired token: %w", err))
			}
			return apierr.Unauthorized("refresh token expired")
		}

		users, err := as.userRepo.GetByIDs(ctx, tx, []uuid.UUID{existing.UserID})
		if err != nil {
			return apierr.Storage(fmt.Errorf("load user: %w", err))
		}
		if len(users) == 0 || users[0] == nil {
			return apierr.Unauthorized("no user for refresh token")
		}

		if err := as.userTokenRepo.FullDeleteByIDs(ctx, tx, []uuid.UUID{existing.ID}); err != nil {
			return apierr.Storage(fmt.Errorf("rotate token: %w", err))
		}
		access, refresh, err := as.issueTokens(ctx, tx, users[0])
		if err != nil {
			return err
		}
		accessToken, newRefreshToken = access, refresh
		return nil
	})
	if err != nil {
		return "", "", err
	}
	return accessToken, newRefreshToken, nil
}

func (as *authService) LogoutUser(ctx context.Context) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return apierr.Unauthorized("request data not set in context")
	}
	if err := as.userTokenRepo.FullDeleteByUserIDs(ctx, nil, []uuid.UUID{rd.UserID}); err != nil {
		return apierr.Storage(fmt.Errorf("delete tokens: %w", err))
	}
	return nil
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil || !token.Valid {
		return ctx, apierr.Unauthorized("invalid access token")
	}

	userID, err := claimUUID(claims, "sub")
	if err != nil {
		return ctx, apierr.Unauthorized("invalid access token subject")
	}
	schoolID, err := claimUUID(claims, "school_id")
	if err != nil {
		return ctx, apierr.Unauthorized("invalid access token school")
	}
	role, _ := claims["role"].(string)
	if !types.Role(role).Valid() {
		return ctx, apierr.Unauthorized("invalid access token role")
	}

	rd := &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      userID,
		SchoolID:    schoolID,
		Role:        types.Role(role),
	}
	return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) issueTokens(ctx context.Context, tx *gorm.DB, user *types.User) (string, string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":       user.ID.String(),
		"school_id": user.SchoolID.String(),
		"role":      string(user.Role),
		"iat":       now.Unix(),
		"exp":       now.Add(as.accessTTL).Unix(),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(as.jwtSecretKey))
	if err != nil {
		return "", "", apierr.Storage(fmt.Errorf("sign access token: %w", err))
	}

	refreshToken := uuid.New().String()
	row := &types.UserToken{
		ID:           uuid.New(),
		UserID:       user.ID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    now.Add(as.refreshTTL),
	}
	if _, err := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{row}); err != nil {
		return "", "", apierr.Storage(fmt.Errorf("store token: %w", err))
	}
	return accessToken, refreshToken, nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}

func claimUUID(claims jwt.MapClaims, key string) (uuid.UUID, error) {
	raw, _ := claims[key].(string)
	return uuid.Parse(raw)
}
