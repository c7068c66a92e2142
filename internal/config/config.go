package config

import (
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/caarlos0/env/v10"
)

const EnvProduction = "production"

// Config centraliza la configuración del servicio.
type Config struct {
	AppEnv      string `env:"APP_ENV" envDefault:"development"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"5000"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`

	JWTSecret string        `env:"JWT_SECRET,required,notEmpty"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"168h"`

	OTPTTL           time.Duration `env:"OTP_TTL" envDefault:"5m"`
	OTPDevBypassCode string        `env:"OTP_DEV_BYPASS_CODE"`
	OTPRequestWindow time.Duration `env:"OTP_REQUEST_WINDOW" envDefault:"10m"`
	OTPRequestMax    int           `env:"OTP_REQUEST_MAX" envDefault:"3"`

	ResetTokenTTL time.Duration `env:"RESET_TOKEN_TTL" envDefault:"1h"`
	BcryptCost    int           `env:"BCRYPT_COST" envDefault:"12"`

	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"15m"`
	RateLimitMax    int           `env:"RATE_LIMIT_MAX_REQUESTS" envDefault:"100"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPass     string `env:"SMTP_PASS"`
	SMTPFrom     string `env:"SMTP_FROM"`
	SMTPFromName string `env:"SMTP_FROM_NAME" envDefault:"Notes"`
	SMTPUseTLS   bool   `env:"SMTP_USE_TLS" envDefault:"false"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
}

var (
	ErrBypassInProduction = errors.New("OTP_DEV_BYPASS_CODE must not be set in production")
	ErrBypassFormat       = errors.New("OTP_DEV_BYPASS_CODE must be 6 digits")
)

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	cfg.AppEnv = strings.ToLower(strings.TrimSpace(cfg.AppEnv))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsProduction reporta si el servicio corre en modo produccion.
func (c *Config) IsProduction() bool {
	return c.AppEnv == EnvProduction
}

// DevBypassCode devuelve el codigo OTP de desarrollo; siempre vacio en produccion.
func (c *Config) DevBypassCode() string {
	if c.IsProduction() {
		return ""
	}
	return strings.TrimSpace(c.OTPDevBypassCode)
}

// Validate aplica las reglas que el parser de env no cubre.
func (c *Config) Validate() error {
	code := strings.TrimSpace(c.OTPDevBypassCode)
	if code == "" {
		return nil
	}
	if c.IsProduction() {
		return ErrBypassInProduction
	}
	if len(code) != 6 {
		return ErrBypassFormat
	}
	for _, r := range code {
		if !unicode.IsDigit(r) {
			return ErrBypassFormat
		}
	}
	return nil
}
