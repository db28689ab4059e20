package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brightclass/brightclass-backend/internal/apierr"
	redisclient "github.com/brightclass/brightclass-backend/internal/clients/redis"
	"github.com/brightclass/brightclass-backend/internal/logger"
	"github.com/brightclass/brightclass-backend/internal/normalization"
	"github.com/brightclass/brightclass-backend/internal/repos"
	"github.com/brightclass/brightclass-backend/internal/requestdata"
	"github.com/brightclass/brightclass-backend/internal/types"
)

type UpdateSettingsInput struct {
	SiteName     *string
	CurrencyCode *string
	Options      map[string]bool
}

// SettingsService serves the site-settings singleton. Reads go through the
// redis cache when one is configured; a nil cache means every read hits the
// database, which is fine for a single-row lookup.
type SettingsService interface {
	Get(ctx context.Context) (*types.SiteSettings, error)
	Update(ctx context.Context, input UpdateSettingsInput) (*types.SiteSettings, error)
}

type settingsService struct {
	db           *gorm.DB
	log          *logger.Logger
	settingsRepo repos.SettingsRepo
	cache        redisclient.SettingsCache
	activity     ActivityService
}

func NewSettingsService(
	db *gorm.DB,
	baseLog *logger.Logger,
	settingsRepo repos.SettingsRepo,
	cache redisclient.SettingsCache,
	activity ActivityService,
) SettingsService {
	return &settingsService{
		db:           db,
		log:          baseLog.With("service", "SettingsService"),
		settingsRepo: settingsRepo,
		cache:        cache,
		activity:     activity,
	}
}

func (ss *settingsService) Get(ctx context.Context) (*types.SiteSettings, error) {
	if ss.cache != nil {
		cached, err := ss.cache.Get(ctx)
		if err != nil {
			ss.log.Warn("Settings cache read failed, falling back to database", "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	settings, err := ss.settingsRepo.Get(ctx, nil)
	if err != nil {
		return nil, apierr.Storage(fmt.Errorf("load settings: %w", err))
	}
	if settings == nil {
		settings, err = ss.createDefaults(ctx)
		if err != nil {
			return nil, err
		}
	}

	if ss.cache != nil {
		if err := ss.cache.Set(ctx, settings); err != nil {
			ss.log.Warn("Settings cache write failed", "error", err)
		}
	}
	return settings, nil
}

func (ss *settingsService) createDefaults(ctx context.Context) (*types.SiteSettings, error) {
	defaults := map[string]bool{
		types.OptionEnrollmentOpen:   true,
		types.OptionPublicLessonFeed: true,
		types.OptionReviewsEnabled:   true,
		types.OptionMaintenanceMode:  false,
	}
	raw, err := json.Marshal(defaults)
	if err != nil {
		return nil, apierr.Storage(fmt.Errorf("marshal default options: %w", err))
	}
	settings := &types.SiteSettings{
		ID:           uuid.New(),
		SiteName:     "BrightClass",
		CurrencyCode: "USD",
		Options:      raw,
	}
	if err := ss.settingsRepo.Save(ctx, nil, settings); err != nil {
		return nil, apierr.Storage(fmt.Errorf("create default settings: %w", err))
	}
	return settings, nil
}

func (ss *settingsService) Update(ctx context.Context, input UpdateSettingsInput) (*types.SiteSettings, error) {
	for key := range input.Options {
		if !types.RecognizedOption(key) {
			return nil, apierr.Validation("unrecognized option %q", key)
		}
	}
	if input.CurrencyCode != nil {
		code := strings.ToUpper(normalization.TrimInputString(*input.CurrencyCode))
		if len(code) != 3 {
			return nil, apierr.Validation("currency code must be a 3-letter ISO code")
		}
		input.CurrencyCode = &code
	}

	settings, err := ss.Get(ctx)
	if err != nil {
		return nil, err
	}

	if input.SiteName != nil {
		name := normalization.TrimInputString(*input.SiteName)
		if name == "" {
			return nil, apierr.Validation("site name cannot be empty")
		}
		settings.SiteName = name
	}
	if input.CurrencyCode != nil {
		settings.CurrencyCode = *input.CurrencyCode
	}
	if len(input.Options) > 0 {
		options := map[string]bool{}
		if len(settings.Options) > 0 {
			if err := json.Unmarshal(settings.Options, &options); err != nil {
				options = map[string]bool{}
			}
		}
		for key, value := range input.Options {
			options[key] = value
		}
		raw, err := json.Marshal(options)
		if err != nil {
			return nil, apierr.Storage(fmt.Errorf("marshal options: %w", err))
		}
		settings.Options = raw
	}

	if err := ss.settingsRepo.Save(ctx, nil, settings); err != nil {
		return nil, apierr.Storage(fmt.Errorf("save settings: %w", err))
	}
	if ss.cache != nil {
		if err := ss.cache.Invalidate(ctx); err != nil {
			ss.log.Warn("Settings cache invalidation failed", "error", err)
		}
	}
	if rd := requestdata.GetRequestData(ctx); rd != nil {
		ss.activity.Log(ctx, nil, rd.UserID, types.ActionSettingsUpdated, map[string]interface{}{
			"site_name": settings.SiteName,
		})
	}
	return settings, nil
}

// OptionValue reads one boolean option from a settings row, returning
// fallback when the option has never been set.
func OptionValue(settings *types.SiteSettings, key string, fallback bool) bool {
	if settings == nil || len(settings.Options) == 0 {
		return fallback
	}
	options := map[string]bool{}
	if err := json.Unmarshal(settings.Options, &options); err != nil {
		return fallback
	}
	value, ok := options[key]
	if !ok {
		return fallback
	}
	return value
}

// OptionEnabled is OptionValue with the enabled fallback. The feature
// options (enrollment, reviews, the public feed) are opt-out; maintenance
// mode is the one opt-in option and reads through OptionValue directly.
func OptionEnabled(settings *types.SiteSettings, key string) bool {
	return OptionValue(settings, key, true)
}
