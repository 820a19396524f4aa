package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds application configuration.
type Config struct {
	ProjectID      string        `mapstructure:"GCP_PROJECT_ID" validate:"required"`
	StoreDriver    string        `mapstructure:"FOREX_STORE_DRIVER" validate:"oneof=firestore sqlite postgres memory"`
	StoreDSN       string        `mapstructure:"FOREX_STORE_DSN" validate:"required_if=StoreDriver postgres"`
	Collection     string        `mapstructure:"FOREX_COLLECTION" validate:"required"`
	IndexURL       string        `mapstructure:"FOREX_INDEX_URL" validate:"required,url"`
	FixturesDir    string        `mapstructure:"FOREX_FIXTURES_DIR" validate:"required"`
	RequestTimeout time.Duration `mapstructure:"FOREX_REQUEST_TIMEOUT" validate:"gt=0"`
	RetryNum       uint64        `mapstructure:"FOREX_RETRY_NUM"`
	RetryDuration  time.Duration `mapstructure:"FOREX_RETRY_DURATION" validate:"gte=0"`
	CleanupLimit   int           `mapstructure:"FOREX_CLEANUP_LIMIT" validate:"min=1"`
	RetainedDates  int           `mapstructure:"FOREX_RETAINED_DATES" validate:"min=1,max=10"`
	Schedule       string        `mapstructure:"FOREX_SCHEDULE"`
	Port           string        `mapstructure:"PORT" validate:"required,numeric"`
	LogLevel       string        `mapstructure:"FOREX_LOG_LEVEL" validate:"oneof=debug info warn error"`
}

var defaults = map[string]interface{}{
	"GCP_PROJECT_ID":        "",
	"FOREX_STORE_DRIVER":    "firestore",
	"FOREX_STORE_DSN":       "",
	"FOREX_COLLECTION":      "exchange_rates",
	"FOREX_INDEX_URL":       "https://www.ecb.europa.eu/home/html/rss.en.html",
	"FOREX_FIXTURES_DIR":    "testdata/fixtures",
	"FOREX_REQUEST_TIMEOUT": "30s",
	"FOREX_RETRY_NUM":       0,
	"FOREX_RETRY_DURATION":  "1s",
	"FOREX_CLEANUP_LIMIT":   100,
	"FOREX_RETAINED_DATES":  4,
	"FOREX_SCHEDULE":        "",
	"PORT":                  "8080",
	"FOREX_LOG_LEVEL":       "info",
}

// Load loads configuration from environment variables and .env files if present.
// Real environment variables take precedence over the files
func Load(envFiles ...string) (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if cfg.StoreDriver == "sqlite" && cfg.StoreDSN == "" {
		cfg.StoreDSN = cfg.ProjectID + ".db"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks field constraints, the project identity is the only value without a default
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			fields := make([]string, 0, len(validationErrs))
			for _, fe := range validationErrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}

			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(fields, ", "))
		}

		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return nil
}

// ParsedIndexURL returns IndexURL as url.URL
func (c *Config) ParsedIndexURL() (url.URL, error) {
	u, err := url.Parse(c.IndexURL)
	if err != nil {
		return url.URL{}, fmt.Errorf("%w: index url: %v", ErrInvalidConfig, err)
	}

	return *u, nil
}
