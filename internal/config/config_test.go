package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Joao-Gabriel-Santos/autobarber-sub000/internal/models"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
database:
  path: "test.db"
barbers:
  - id: 1
    name: "Marco"
services:
  - id: 10
    name: "Haircut"
    duration_minutes: 30
    price_cents: 6000
booking:
  max_booking_days: 30
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Database.Path != "test.db" {
		t.Errorf("expected database path test.db, got %s", cfg.Database.Path)
	}
	if len(cfg.Barbers) != 1 || cfg.Barbers[0].ID != 1 {
		t.Errorf("expected 1 barber with ID 1")
	}
	if len(cfg.Services) != 1 || cfg.Services[0].DurationMinutes != 30 {
		t.Errorf("expected 1 service with 30 minute duration")
	}
	if cfg.Booking.MaxBookingDays != 30 {
		t.Errorf("expected max booking days 30, got %d", cfg.Booking.MaxBookingDays)
	}
}

func TestLoadConfig_EnvExpansion(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("TEST_DB_PATH", "/tmp/env.db")

	yamlContent := `
database:
  path: "${TEST_DB_PATH}"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Database.Path != "/tmp/env.db" {
		t.Errorf("expected expanded path /tmp/env.db, got %s", cfg.Database.Path)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				Barbers:  []models.Barber{{ID: 1, Name: "Marco"}},
				Services: []models.Service{{ID: 10, Name: "Haircut", DurationMinutes: 30}},
			},
			wantErr: false,
		},
		{
			name:    "missing database path",
			cfg:     Config{},
			wantErr: true,
		},
		{
			name: "duplicate barber id",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				Barbers: []models.Barber{
					{ID: 1, Name: "Marco"},
					{ID: 1, Name: "Rafael"},
				},
			},
			wantErr: true,
		},
		{
			name: "sheets enabled without credentials",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				Google:   GoogleConfig{Enabled: true},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	if cfg.API.HTTP.Port != 8080 {
		t.Errorf("expected default HTTP port 8080, got %d", cfg.API.HTTP.Port)
	}
	if cfg.Booking.MaxBookingDays != models.DefaultMaxBookingDays {
		t.Errorf("expected default max booking days %d, got %d", models.DefaultMaxBookingDays, cfg.Booking.MaxBookingDays)
	}
	if cfg.Booking.SlotCacheTTLSeconds != models.DefaultSlotCacheTTL {
		t.Errorf("expected default slot cache ttl %d, got %d", models.DefaultSlotCacheTTL, cfg.Booking.SlotCacheTTLSeconds)
	}
	if cfg.API.Auth.HeaderAPIKey != "x-api-key" {
		t.Errorf("expected default api key header, got %s", cfg.API.Auth.HeaderAPIKey)
	}
}

func TestValidateCatalog(t *testing.T) {
	tests := []struct {
		name     string
		barbers  []models.Barber
		services []models.Service
		wantErr  bool
	}{
		{
			name: "valid catalog",
			barbers: []models.Barber{
				{ID: 1, Name: "Marco"},
				{ID: 2, Name: "Rafael"},
			},
			services: []models.Service{
				{ID: 10, Name: "Haircut", DurationMinutes: 30},
			},
			wantErr: false,
		},
		{
			name: "duplicate service id",
			services: []models.Service{
				{ID: 10, Name: "Haircut"},
				{ID: 10, Name: "Beard"},
			},
			wantErr: true,
		},
		{
			name:    "barber id 0",
			barbers: []models.Barber{{ID: 0, Name: "Marco"}},
			wantErr: true,
		},
		{
			name:     "negative service duration",
			services: []models.Service{{ID: 10, Name: "Haircut", DurationMinutes: -5}},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCatalog(tt.barbers, tt.services)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCatalog() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
