package service

import (
	"testing"
)

func TestGetSettingsReturnsDefaults(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewSiteSettingService(gdb)
	settings, err := svc.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings returned error: %v", err)
	}
	if settings.SiteName != "Fieldnotes" {
		t.Fatalf("expected default site name, got %q", settings.SiteName)
	}
	if settings.SiteTagline != "" || settings.FooterText != "" {
		t.Fatalf("expected empty optional settings, got %+v", settings)
	}
}

func TestUpdateSettingsPersistsValues(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewSiteSettingService(gdb)
	updated, err := svc.UpdateSettings(SiteSettingsInput{
		SiteName:    "  Field Notes  ",
		SiteTagline: "days since posting",
		FooterText:  "made by hand",
	})
	if err != nil {
		t.Fatalf("UpdateSettings returned error: %v", err)
	}
	if updated.SiteName != "Field Notes" {
		t.Fatalf("expected trimmed site name, got %q", updated.SiteName)
	}

	again, err := svc.UpdateSettings(SiteSettingsInput{
		SiteName:    "Renamed",
		SiteTagline: "still posting",
		FooterText:  "made by hand",
	})
	if err != nil {
		t.Fatalf("second UpdateSettings returned error: %v", err)
	}
	if again.SiteName != "Renamed" || again.SiteTagline != "still posting" {
		t.Fatalf("expected upserted settings, got %+v", again)
	}
}
