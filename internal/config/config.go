package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"

	"nailsalon/internal/scheduling"
)

type Config struct {
	DatabaseURL string   `envconfig:"DATABASE_URL" required:"true"`
	Port        string   `envconfig:"PORT" default:"8080"`
	JWTSecret   string   `envconfig:"JWT_SECRET"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogPretty bool   `envconfig:"LOG_PRETTY" default:"false"`

	Salon    SalonConfig
	Booking  BookingConfig
	Jobs     JobsConfig
	SendGrid SendGridConfig
	Twilio   TwilioConfig
}

type SalonConfig struct {
	Name                   string        `envconfig:"SALON_NAME" default:"Nail Salon"`
	OpenAt                 time.Duration `envconfig:"SALON_OPEN_AT" default:"6h"`
	CloseAt                time.Duration `envconfig:"SALON_CLOSE_AT" default:"23h"`
	SlotInterval           time.Duration `envconfig:"SALON_SLOT_INTERVAL" default:"30m"`
	DefaultServiceDuration int           `envconfig:"SALON_DEFAULT_SERVICE_DURATION" default:"60"`
	// MaxRangeDays caps how many days one availability query may span.
	MaxRangeDays int `envconfig:"SALON_MAX_RANGE_DAYS" default:"31"`
}

type BookingConfig struct {
	RateLimit float64 `envconfig:"BOOKING_RATE_LIMIT" default:"0.2"`
	RateBurst int     `envconfig:"BOOKING_RATE_BURST" default:"5"`
}

type JobsConfig struct {
	CompleteSpec string `envconfig:"JOB_COMPLETE_SPEC" default:"*/15 * * * *"`
	ExpireSpec   string `envconfig:"JOB_EXPIRE_SPEC" default:"*/30 * * * *"`
}

type SendGridConfig struct {
	APIKey    string `envconfig:"SENDGRID_API_KEY"`
	FromEmail string `envconfig:"SENDGRID_FROM_EMAIL"`
	FromName  string `envconfig:"SENDGRID_FROM_NAME" default:"Nail Salon"`
}

type TwilioConfig struct {
	AccountSID string `envconfig:"TWILIO_ACCOUNT_SID"`
	AuthToken  string `envconfig:"TWILIO_AUTH_TOKEN"`
	FromNumber string `envconfig:"TWILIO_FROM_NUMBER"`
}

func (c SendGridConfig) Enabled() bool {
	return c.APIKey != "" && c.FromEmail != ""
}

func (c TwilioConfig) Enabled() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.FromNumber != ""
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using environment only")
	}
	return FromEnv()
}

// FromEnv decodes the process environment without touching .env.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}
	cfg.CORSOrigins = trimAll(cfg.CORSOrigins)
	if err := cfg.Policy().Validate(); err != nil {
		return nil, fmt.Errorf("invalid salon hours: %w", err)
	}
	if cfg.Salon.MaxRangeDays < 1 {
		return nil, fmt.Errorf("SALON_MAX_RANGE_DAYS must be positive, got %d", cfg.Salon.MaxRangeDays)
	}
	return &cfg, nil
}

// Policy is the working-hours policy the scheduler runs with.
func (c *Config) Policy() scheduling.Policy {
	return scheduling.Policy{
		OpenAt:                 c.Salon.OpenAt,
		CloseAt:                c.Salon.CloseAt,
		SlotInterval:           c.Salon.SlotInterval,
		DefaultServiceDuration: time.Duration(c.Salon.DefaultServiceDuration) * time.Minute,
	}
}

func trimAll(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
