package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/asaskevich/govalidator"
	"github.com/jekabolt/tutorcruncher-dashboard/internal/analytics"
	httpapi "github.com/jekabolt/tutorcruncher-dashboard/internal/api/http"
	"github.com/jekabolt/tutorcruncher-dashboard/internal/mail"
	"github.com/jekabolt/tutorcruncher-dashboard/internal/store"
	"github.com/jekabolt/tutorcruncher-dashboard/internal/tcsync"
	"github.com/jekabolt/tutorcruncher-dashboard/internal/tutorcruncher"
	"github.com/jekabolt/tutorcruncher-dashboard/log"
	"github.com/spf13/viper"
)

// Config represents the global configuration for the service.
type Config struct {
	DB            store.Config         `mapstructure:"mysql"`
	Logger        log.Config           `mapstructure:"logger"`
	HTTP          httpapi.Config       `mapstructure:"http"`
	TutorCruncher tutorcruncher.Config `mapstructure:"tutorcruncher"`
	Sync          tcsync.Config        `mapstructure:"sync"`
	Analytics     analytics.Config     `mapstructure:"analytics"`
	Mailer        mail.Config          `mapstructure:"mailer"`
}

// LoadConfig loads the configuration from a file and/or environment variables.
// Environment variables take precedence over config file values.
// Nested config keys use double underscore, e.g. MYSQL__DSN for mysql.dsn,
// the common keys are also bound to flat names such as MYSQL_DSN.
func LoadConfig(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__", "-", "__"))

	setDefaults(v)
	if err := bindEnvVars(v); err != nil {
		return nil, fmt.Errorf("failed to bind env vars: %w", err)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/config/tutorcruncher-dashboard")
		v.AddConfigPath("/etc/tutorcruncher-dashboard")
		_ = v.ReadInConfig()
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config into struct: %w", err)
	}

	if config.DB.DSN == "" {
		config.DB.DSN = dsnFromEnv()
	}

	return &config, nil
}

// dsnFromEnv builds a MySQL DSN from MYSQL_HOST and friends, empty when they are incomplete.
func dsnFromEnv() string {
	host := os.Getenv("MYSQL_HOST")
	user := os.Getenv("MYSQL_USER")
	password := os.Getenv("MYSQL_PASSWORD")
	database := os.Getenv("MYSQL_DATABASE")
	if host == "" || user == "" || password == "" || database == "" {
		return ""
	}
	port := os.Getenv("MYSQL_PORT")
	if port == "" {
		port = "3306"
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true",
		user, password, host, port, database)
	if os.Getenv("MYSQL_CA_CERT") != "" || os.Getenv("MYSQL_TLS_CA_PATH") != "" {
		dsn += "&tls=custom"
	}
	return dsn
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mysql.automigrate", true)
	v.SetDefault("mysql.max_open_connections", 10)
	v.SetDefault("mysql.max_idle_connections", 5)

	v.SetDefault("logger.level", 0)

	v.SetDefault("http.port", "3000")
	v.SetDefault("http.request_timeout", "60s")
	v.SetDefault("http.send_limit_per_hour", 5)

	tc := tutorcruncher.DefaultConfig()
	v.SetDefault("tutorcruncher.base_url", tc.BaseURL)
	v.SetDefault("tutorcruncher.enabled", tc.Enabled)
	v.SetDefault("tutorcruncher.page_delay", tc.PageDelay)
	v.SetDefault("tutorcruncher.detail_delay", tc.DetailDelay)
	v.SetDefault("tutorcruncher.max_attempts", tc.MaxAttempts)
	v.SetDefault("tutorcruncher.backoff", tc.Backoff)
	v.SetDefault("tutorcruncher.http_timeout", tc.HTTPTimeout)
	v.SetDefault("tutorcruncher.detail_concurrency", tc.DetailConcurrency)

	sc := tcsync.DefaultConfig()
	v.SetDefault("sync.enabled", sc.Enabled)
	v.SetDefault("sync.schedule", sc.Schedule)
	v.SetDefault("sync.run_on_start", sc.RunOnStart)

	ac := analytics.DefaultConfig()
	v.SetDefault("analytics.timezone", ac.Timezone)
	v.SetDefault("analytics.finish_inactivity_days", ac.FinishInactivityDays)
}

// bindEnvVars binds environment variables to config keys.
// This allows using both nested keys (MYSQL__DSN) and flat keys (MYSQL_DSN).
func bindEnvVars(v *viper.Viper) error {
	bindings := [][]string{
		// MySQL
		{"mysql.dsn", "MYSQL_DSN"},
		{"mysql.automigrate", "MYSQL_AUTOMIGRATE"},
		{"mysql.max_open_connections", "MYSQL_MAX_OPEN_CONNECTIONS"},
		{"mysql.max_idle_connections", "MYSQL_MAX_IDLE_CONNECTIONS"},
		{"mysql.tls_ca_path", "MYSQL_TLS_CA_PATH"},

		// Logger
		{"logger.level", "LOG_LEVEL"},
		{"logger.add_source", "LOG_ADD_SOURCE"},

		// HTTP
		{"http.port", "HTTP_PORT", "PORT"},
		{"http.address", "HTTP_ADDRESS"},
		{"http.allowed_origins", "HTTP_ALLOWED_ORIGINS"},
		{"http.jwt_secret", "HTTP_JWT_SECRET"},
		{"http.request_timeout", "HTTP_REQUEST_TIMEOUT"},
		{"http.send_limit_per_hour", "HTTP_SEND_LIMIT_PER_HOUR"},

		// TutorCruncher
		{"tutorcruncher.base_url", "TUTORCRUNCHER_BASE_URL", "BASE_URL"},
		{"tutorcruncher.token", "TUTORCRUNCHER_API_TOKEN"},
		{"tutorcruncher.enabled", "TUTORCRUNCHER_ENABLED"},
		{"tutorcruncher.detail_concurrency", "TUTORCRUNCHER_DETAIL_CONCURRENCY"},

		// Sync
		{"sync.enabled", "SYNC_ENABLED"},
		{"sync.schedule", "SYNC_SCHEDULE"},
		{"sync.run_on_start", "SYNC_RUN_ON_START"},

		// Analytics
		{"analytics.timezone", "ANALYTICS_TIMEZONE"},
		{"analytics.finish_inactivity_days", "ANALYTICS_FINISH_INACTIVITY_DAYS"},

		// Mailer
		{"mailer.sendgrid_api_key", "MAILER_SENDGRID_API_KEY"},
		{"mailer.from_email", "MAILER_FROM_EMAIL"},
		{"mailer.from_email_name", "MAILER_FROM_EMAIL_NAME"},
		{"mailer.reply_to", "MAILER_REPLY_TO"},
		{"mailer.recipients", "MAILER_RECIPIENTS"},
		{"mailer.apply_url", "MAILER_APPLY_URL"},
	}
	for _, b := range bindings {
		if err := v.BindEnv(b...); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the settings the service cannot run without.
func (c *Config) Validate() error {
	var errs []error
	if err := c.TutorCruncher.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tutorcruncher: %w", err))
	}
	if c.Sync.Enabled && strings.TrimSpace(c.Sync.Schedule) == "" {
		errs = append(errs, errors.New("sync: schedule is required"))
	}
	if c.Analytics.FinishInactivityDays < 0 {
		errs = append(errs, errors.New("analytics: finish_inactivity_days must not be negative"))
	}
	for _, r := range c.Mailer.Recipients {
		if !govalidator.IsEmail(r) {
			errs = append(errs, fmt.Errorf("mailer: invalid recipient %q", r))
		}
	}
	if c.Mailer.FromEmail != "" && !govalidator.IsEmail(c.Mailer.FromEmail) {
		errs = append(errs, fmt.Errorf("mailer: invalid from_email %q", c.Mailer.FromEmail))
	}
	return errors.Join(errs...)
}
