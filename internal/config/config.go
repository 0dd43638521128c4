package config

import (
	"fmt"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required"`
	JWTSecret   string `env:"JWT_SECRET,required"`
	Port        int    `env:"PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv      string `env:"APP_ENV" envDefault:"production"`
	AppVersion  string `env:"APP_VERSION" envDefault:"2.8.0"`

	PayPalEmail         string        `env:"PAYPAL_EMAIL,required,notEmpty"`
	PayPalSandbox       bool          `env:"PAYPAL_SANDBOX" envDefault:"false"`
	PayPalLiveURL       string        `env:"PAYPAL_LIVE_URL" envDefault:"https://www.paypal.com/cgi-bin/webscr"`
	PayPalSandboxURL    string        `env:"PAYPAL_SANDBOX_URL" envDefault:"https://www.sandbox.paypal.com/cgi-bin/webscr"`
	PayPalVerifyTimeout time.Duration `env:"PAYPAL_VERIFY_TIMEOUT" envDefault:"60s"`

	SiteTimezone string `env:"SITE_TIMEZONE" envDefault:"UTC"`

	CurrencyDecimalSeparator   string `env:"CURRENCY_DECIMAL_SEPARATOR" envDefault:"."`
	CurrencyThousandsSeparator string `env:"CURRENCY_THOUSANDS_SEPARATOR" envDefault:","`
	CurrencyDecimals           int32  `env:"CURRENCY_DECIMALS" envDefault:"2"`

	DBMaxOpenConns     int `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns     int `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetimeS int `env:"DB_CONN_MAX_LIFETIME_S" envDefault:"300"`
	DBConnMaxIdleTimeS int `env:"DB_CONN_MAX_IDLE_TIME_S" envDefault:"60"`
}

func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	if _, err := cfg.Location(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

// Location resolves SITE_TIMEZONE.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.SiteTimezone)
	if err != nil {
		return nil, fmt.Errorf("site timezone %q: %w", c.SiteTimezone, err)
	}
	return loc, nil
}
