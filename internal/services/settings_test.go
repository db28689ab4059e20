package services

import (
	"context"
	"testing"

	"github.com/brightclass/brightclass-backend/internal/apierr"
	"github.com/brightclass/brightclass-backend/internal/types"
)

func TestGet_ServesSingletonWithDefaults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	settings, err := env.settings.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if settings.SiteName == "" || settings.CurrencyCode != "USD" {
		t.Fatalf("unexpected defaults: %q %q", settings.SiteName, settings.CurrencyCode)
	}
	if !OptionEnabled(settings, types.OptionReviewsEnabled) {
		t.Fatalf("reviews should default to enabled")
	}
	if OptionEnabled(settings, types.OptionMaintenanceMode) {
		t.Fatalf("maintenance mode should default to disabled")
	}

	again, err := env.settings.Get(ctx)
	if err != nil {
		t.Fatalf("second Get: %v", err)
	}
	if again.ID != settings.ID {
		t.Fatalf("expected the singleton row to be reused")
	}
}

func TestUpdate_RejectsUnknownOptionAndBadCurrency(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.settings.Update(ctx, UpdateSettingsInput{Options: map[string]bool{"dark_mode": true}}); !apierr.IsCode(err, apierr.CodeValidation) {
		t.Fatalf("expected VALIDATION for an unrecognized option, got %v", err)
	}

	bad := "dollars"
	if _, err := env.settings.Update(ctx, UpdateSettingsInput{CurrencyCode: &bad}); !apierr.IsCode(err, apierr.CodeValidation) {
		t.Fatalf("expected VALIDATION for a non-ISO currency code, got %v", err)
	}
}

func TestUpdate_MergesOptionsAndUppercasesCurrency(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	currency := "eur"
	name := "  Bright  Academy "
	settings, err := env.settings.Update(ctx, UpdateSettingsInput{
		SiteName:     &name,
		CurrencyCode: &currency,
		Options:      map[string]bool{types.OptionReviewsEnabled: false},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if settings.SiteName != "Bright Academy" {
		t.Fatalf("expected normalized site name, got %q", settings.SiteName)
	}
	if settings.CurrencyCode != "EUR" {
		t.Fatalf("expected uppercased currency, got %q", settings.CurrencyCode)
	}
	if OptionEnabled(settings, types.OptionReviewsEnabled) {
		t.Fatalf("expected reviews to be disabled")
	}
	// Untouched options keep their values through the merge.
	if !OptionEnabled(settings, types.OptionEnrollmentOpen) {
		t.Fatalf("expected enrollment_open to survive the update")
	}
}
