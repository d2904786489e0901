package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Port:            "8000",
		Env:             "production",
		DatabaseURL:     "postgres://localhost/clinica",
		JWTSecret:       "secret",
		TokenTTLMinutes: 60,
		ClinicOpening:   "09:00",
		ClinicClosing:   "18:00",
		SlotMinutes:     30,
		Specializations: DefaultSpecializations,
	}
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_RequiresSecretOutsideDev(t *testing.T) {
	cfg := validConfig()
	cfg.JWTSecret = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing JWT secret in production")
	}

	cfg.Env = "development"
	if err := cfg.Validate(); err != nil {
		t.Errorf("development should allow empty secret: %v", err)
	}
}

func TestValidate_SlotTemplate(t *testing.T) {
	cfg := validConfig()
	cfg.SlotMinutes = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero slot minutes")
	}

	cfg = validConfig()
	cfg.ClinicOpening = "19:00"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for opening after closing")
	}

	cfg = validConfig()
	cfg.ClinicClosing = "6pm"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for malformed closing time")
	}
}

func TestDerivedValues(t *testing.T) {
	cfg := validConfig()
	if got := cfg.TokenTTL(); got != time.Hour {
		t.Errorf("expected 1h token ttl, got %s", got)
	}
	cfg.MaxReportMB = 2
	if got := cfg.MaxReportBytes(); got != 2*1024*1024 {
		t.Errorf("unexpected byte cap %d", got)
	}
	if cfg.IsDev() {
		t.Error("production config reported as development")
	}
}
