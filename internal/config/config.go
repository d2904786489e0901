package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultSpecializations is the clinic's fixed specialization catalogue.
// It can be overridden through the SPECIALIZATIONS variable (comma-separated).
var DefaultSpecializations = []string{
	"Cardiology", "Dermatology", "Orthopedics", "Pediatrics", "Ophthalmology",
	"Gynecology", "Neurology", "Psychiatry", "Urology", "ENT",
	"Gastroenterology", "Endocrinology", "General Medicine",
}

type Config struct {
	Port            string   `mapstructure:"PORT"`
	Env             string   `mapstructure:"ENV"`
	DatabaseURL     string   `mapstructure:"DATABASE_URL"`
	DBMaxConns      int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns      int32    `mapstructure:"DB_MIN_CONNS"`
	JWTSecret       string   `mapstructure:"JWT_SECRET"`
	TokenTTLMinutes int      `mapstructure:"TOKEN_TTL_MINUTES"`
	CORSOrigins     []string `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS    float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst  int      `mapstructure:"RATE_LIMIT_BURST"`
	ClinicOpening   string   `mapstructure:"CLINIC_OPENING"`
	ClinicClosing   string   `mapstructure:"CLINIC_CLOSING"`
	SlotMinutes     int      `mapstructure:"SLOT_MINUTES"`
	Specializations []string `mapstructure:"SPECIALIZATIONS"`
	MaxReportMB     int      `mapstructure:"MAX_REPORT_MB"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("TOKEN_TTL_MINUTES", 720)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("CLINIC_OPENING", "09:00")
	v.SetDefault("CLINIC_CLOSING", "18:00")
	v.SetDefault("SLOT_MINUTES", 30)
	v.SetDefault("MAX_REPORT_MB", 25)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("TOKEN_TTL_MINUTES")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("CLINIC_OPENING")
	v.BindEnv("CLINIC_CLOSING")
	v.BindEnv("SLOT_MINUTES")
	v.BindEnv("SPECIALIZATIONS")
	v.BindEnv("MAX_REPORT_MB")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		if origins := v.GetString("CORS_ORIGINS"); origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}
	if cfg.Specializations == nil {
		if specs := v.GetString("SPECIALIZATIONS"); specs != "" {
			cfg.Specializations = strings.Split(specs, ",")
		} else {
			cfg.Specializations = DefaultSpecializations
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// TokenTTL returns the bearer token lifetime as a duration.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}

// MaxReportBytes returns the report upload size cap in bytes.
func (c *Config) MaxReportBytes() int64 {
	return int64(c.MaxReportMB) * 1024 * 1024
}

// Validate checks that the configuration is safe to run. Outside development
// a JWT_SECRET must be set so bearer tokens are actually verifiable, and the
// slot template must describe a non-empty day.
func (c *Config) Validate() error {
	if !c.IsDev() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when ENV=%q. Refusing to start without a token signing key", c.Env)
	}
	if c.SlotMinutes <= 0 {
		return fmt.Errorf("SLOT_MINUTES must be positive, got %d", c.SlotMinutes)
	}
	opening, err := time.Parse("15:04", c.ClinicOpening)
	if err != nil {
		return fmt.Errorf("CLINIC_OPENING is not a valid HH:MM time: %w", err)
	}
	closing, err := time.Parse("15:04", c.ClinicClosing)
	if err != nil {
		return fmt.Errorf("CLINIC_CLOSING is not a valid HH:MM time: %w", err)
	}
	if !opening.Before(closing) {
		return fmt.Errorf("CLINIC_OPENING %s must be before CLINIC_CLOSING %s", c.ClinicOpening, c.ClinicClosing)
	}
	if len(c.Specializations) == 0 {
		return fmt.Errorf("SPECIALIZATIONS must not be empty")
	}
	return nil
}
