package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort              string
	ServerReadHeaderTimeout time.Duration
	ServerWriteTimeout      time.Duration
	ServerIdleTimeout       time.Duration
	RequestTimeout          time.Duration

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	JWTAccessSecret  string
	JWTRefreshSecret string
	JWTResetSecret   string
	JWTAccessTTL     time.Duration
	JWTRefreshTTL    time.Duration
	ResetTokenTTL    time.Duration

	BcryptCost int
	OTPStep    uint
	OTPWindow  uint
	OTPDigits  int

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
	AppBaseURL   string

	CORSOrigins      []string
	RateLimitRPM     int
	AuthRateLimitRPM int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:              getEnv("SERVER_PORT", "8080"),
		ServerReadHeaderTimeout: getDuration("SERVER_READ_HEADER_TIMEOUT", 10*time.Second),
		ServerWriteTimeout:      getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		ServerIdleTimeout:       getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		RequestTimeout:          getDuration("REQUEST_TIMEOUT", 30*time.Second),

		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxConns:  int32(getInt("DB_MAX_CONNS", 10)),
		DBMinConns:  int32(getInt("DB_MIN_CONNS", 2)),

		JWTAccessSecret:  strings.TrimSpace(os.Getenv("JWT_ACCESS_SECRET")),
		JWTRefreshSecret: strings.TrimSpace(os.Getenv("JWT_REFRESH_SECRET")),
		JWTResetSecret:   strings.TrimSpace(os.Getenv("JWT_RESET_SECRET")),
		JWTAccessTTL:     getDuration("JWT_ACCESS_TTL", 8*time.Hour),
		JWTRefreshTTL:    getDuration("JWT_REFRESH_TTL", 168*time.Hour),
		ResetTokenTTL:    getDuration("RESET_TOKEN_TTL", time.Hour),

		BcryptCost: getInt("BCRYPT_COST", 12),
		OTPStep:    uint(getInt("OTP_STEP_SECONDS", 120)),
		OTPWindow:  uint(getInt("OTP_WINDOW", 2)),
		OTPDigits:  getInt("OTP_DIGITS", 6),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getInt("SMTP_PORT", 587),
		SMTPUsername: strings.TrimSpace(os.Getenv("SMTP_USERNAME")),
		SMTPPassword: strings.TrimSpace(os.Getenv("SMTP_PASSWORD")),
		MailFrom:     getEnv("MAIL_FROM", "no-reply@cabinet.example.org"),
		AppBaseURL:   getEnv("APP_BASE_URL", "http://localhost:8080"),

		CORSOrigins:      splitCSV(getEnv("CORS_ORIGINS", "*")),
		RateLimitRPM:     getInt("RATE_LIMIT_RPM", 100),
		AuthRateLimitRPM: getInt("AUTH_RATE_LIMIT_RPM", 10),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if strings.TrimSpace(c.JWTAccessSecret) == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}

	if strings.TrimSpace(c.JWTRefreshSecret) == "" {
		return fmt.Errorf("JWT_REFRESH_SECRET is required")
	}

	if strings.TrimSpace(c.JWTResetSecret) == "" {
		return fmt.Errorf("JWT_RESET_SECRET is required")
	}

	if c.JWTAccessSecret == c.JWTRefreshSecret || c.JWTAccessSecret == c.JWTResetSecret || c.JWTRefreshSecret == c.JWTResetSecret {
		return fmt.Errorf("JWT signing secrets must be distinct")
	}

	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	if c.BcryptCost < 12 {
		return fmt.Errorf("BCRYPT_COST must be at least 12")
	}

	if c.OTPStep == 0 {
		return fmt.Errorf("OTP_STEP_SECONDS must be positive")
	}

	if c.OTPDigits < 4 || c.OTPDigits > 10 {
		return fmt.Errorf("OTP_DIGITS must be between 4 and 10")
	}

	return nil
}

func getEnv(key string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	return v
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return v
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}

	return out
}
