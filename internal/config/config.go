package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env         string `yaml:"env" env:"ENV" env-default:"local"`
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH" env-required:"true"`
	RedisAddr   string `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	HTTPServer  `yaml:"http_server"`
	Booking     Booking `yaml:"booking"`
	Sweep       Sweep   `yaml:"sweep"`
	Video       Video   `yaml:"video"`
	Mail        Mail    `yaml:"mail"`
	Log         Log     `yaml:"log"`
}

type HTTPServer struct {
	Address         string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	Timeout         time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"15s"`
}

// Booking controls slot generation and the session gate.
type Booking struct {
	HorizonDays  int           `yaml:"horizon_days" env:"BOOKING_HORIZON_DAYS" env-default:"4"`
	SlotDuration time.Duration `yaml:"slot_duration" env:"BOOKING_SLOT_DURATION" env-default:"30m"`
	JoinWindow   time.Duration `yaml:"join_window" env:"BOOKING_JOIN_WINDOW" env-default:"2m"`
	Timezone     string        `yaml:"timezone" env:"BOOKING_TIMEZONE" env-default:"UTC"`
}

type Sweep struct {
	Disabled bool          `yaml:"disabled" env:"SWEEP_DISABLED"`
	Interval time.Duration `yaml:"interval" env:"SWEEP_INTERVAL" env-default:"1m"`
	LockTTL  time.Duration `yaml:"lock_ttl" env:"SWEEP_LOCK_TTL" env-default:"50s"`
}

type Video struct {
	BaseURL     string        `yaml:"base_url" env:"VIDEO_BASE_URL"`
	APIKey      string        `yaml:"api_key" env:"VIDEO_API_KEY"`
	TokenSecret string        `yaml:"token_secret" env:"VIDEO_TOKEN_SECRET" env-required:"true"`
	Issuer      string        `yaml:"issuer" env:"VIDEO_ISSUER" env-default:"booking-service"`
	Timeout     time.Duration `yaml:"timeout" env:"VIDEO_TIMEOUT" env-default:"5s"`
}

type Mail struct {
	SendGridAPIKey string `yaml:"sendgrid_api_key" env:"SENDGRID_API_KEY"`
	FromEmail      string `yaml:"from_email" env:"MAIL_FROM_EMAIL"`
	FromName       string `yaml:"from_name" env:"MAIL_FROM_NAME" env-default:"Consultations"`
}

// Log configures an optional rotating file sink next to stdout.
type Log struct {
	File       string `yaml:"file" env:"LOG_FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb" env-default:"100"`
	MaxBackups int    `yaml:"max_backups" env-default:"5"`
	MaxAgeDays int    `yaml:"max_age_days" env-default:"28"`
}

func MustLoad() *Config {
	// .env is optional, it only feeds the env overrides below
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("Config file does not exist: %s", configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("Failed to read config file: %v", err)
	}

	return cfg
}

// Load reads the file at path, applies env overrides and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Booking.HorizonDays <= 0 {
		return errInvalid("booking.horizon_days must be positive")
	}
	if c.Booking.SlotDuration <= 0 {
		return errInvalid("booking.slot_duration must be positive")
	}
	if c.Booking.JoinWindow < 0 {
		return errInvalid("booking.join_window must not be negative")
	}
	if _, err := time.LoadLocation(c.Booking.Timezone); err != nil {
		return errInvalid("booking.timezone: " + err.Error())
	}
	if !c.Sweep.Disabled && c.Sweep.Interval <= 0 {
		return errInvalid("sweep.interval must be positive")
	}
	return nil
}

// Location returns the zone availability windows are expressed in.
func (b Booking) Location() *time.Location {
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type errInvalid string

func (e errInvalid) Error() string { return "config: " + string(e) }
