package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/heweather-bot/internal/weather"
)

var validate = validator.New()

type AppConfig struct {
	Timezone     string             `validate:"required"`
	APIHost      string             `validate:"required,url"`
	APITier      int                `validate:"oneof=0 1 2"`
	HourlyType   weather.HourlyType `validate:"oneof=1 2"`
	ForecastDays int                `validate:"min=3,max=30"`

	// Credentials. A static key wins over JWT mode.
	UseJWT        bool
	APIKey        string
	JWTSub        string
	JWTKid        string
	JWTPrivateKey string

	// Location is Timezone loaded.
	Location *time.Location `validate:"-"`

	HTTPTimeout          time.Duration `validate:"gt=0"`
	RendererURL          string        `validate:"required,url"`
	// Cached tokens are renewed a minute before their 15 minute lifetime ends.
	TokenRefreshInterval time.Duration `validate:"gte=1m,lt=14m"`

	Port string `validate:"required"`
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.Timezone = getenvDefault("TIMEZONE", "Asia/Shanghai")
	cfg.APIHost = getenvDefault("QWEATHER_API_HOST", "https://api.qweather.com")
	tier, err := getenvInt("QWEATHER_API_TYPE", 0)
	if err != nil {
		return nil, err
	}
	cfg.APITier = tier
	days, err := getenvInt("QWEATHER_FORECAST_DAYS", 3)
	if err != nil {
		return nil, err
	}
	cfg.ForecastDays = days

	hourly, err := ParseHourlyType(getenvDefault("QWEATHER_HOURLY_TYPE", "12h"))
	if err != nil {
		return nil, err
	}
	cfg.HourlyType = hourly

	useJWT, err := getenvBool("QWEATHER_USE_JWT", true)
	if err != nil {
		return nil, err
	}
	cfg.UseJWT = useJWT
	cfg.APIKey = os.Getenv("QWEATHER_API_KEY")
	cfg.JWTSub = os.Getenv("QWEATHER_JWT_SUB")
	cfg.JWTKid = os.Getenv("QWEATHER_JWT_KID")
	cfg.JWTPrivateKey = os.Getenv("QWEATHER_JWT_PRIVATE_KEY")

	timeout, err := time.ParseDuration(getenvDefault("HTTP_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	refresh, err := time.ParseDuration(getenvDefault("TOKEN_REFRESH_INTERVAL", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_REFRESH_INTERVAL: %w", err)
	}
	cfg.TokenRefreshInterval = refresh

	cfg.RendererURL = getenvDefault("RENDERER_URL", "http://localhost:3000")
	cfg.Port = getenvDefault("PORT", "8080")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field ranges, the tier/forecast-days combination, the
// credentials and the timezone. Domain violations are *weather.ConfigError.
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return &weather.ConfigError{Msg: err.Error()}
	}
	if err := weather.ValidateForecastDays(c.APITier, c.ForecastDays); err != nil {
		return err
	}
	if c.APIKey == "" && !c.UseJWT {
		return &weather.ConfigError{Msg: "configure QWEATHER_API_KEY or enable QWEATHER_USE_JWT"}
	}
	if c.APIKey == "" && (c.JWTSub == "" || c.JWTKid == "" || c.JWTPrivateKey == "") {
		return &weather.ConfigError{Msg: "JWT mode needs QWEATHER_JWT_SUB, QWEATHER_JWT_KID and QWEATHER_JWT_PRIVATE_KEY"}
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return &weather.ConfigError{Msg: fmt.Sprintf("invalid TIMEZONE %q: %v", c.Timezone, err)}
	}
	c.Location = loc
	return nil
}

// ParseHourlyType accepts "12h"/"24h" as well as the numeric values 1/2.
func ParseHourlyType(s string) (weather.HourlyType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "12h", "1":
		return weather.Hourly12h, nil
	case "24h", "2":
		return weather.Hourly24h, nil
	default:
		return 0, &weather.ConfigError{Msg: fmt.Sprintf("invalid QWEATHER_HOURLY_TYPE %q, want 12h or 24h", s)}
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
