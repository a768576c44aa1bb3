package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Upstream  UpstreamConfig  `mapstructure:"upstream"`
	Session   SessionConfig   `mapstructure:"session"`
	Occupancy OccupancyConfig `mapstructure:"occupancy"`
	Triage    TriageConfig    `mapstructure:"triage"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Audit     AuditConfig     `mapstructure:"audit"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxHeaderBytes int           `mapstructure:"max_header_bytes"`
}

// UpstreamConfig holds the base URLs of the external collaborators.
// The gateway implements none of them, only the contracts it expects.
type UpstreamConfig struct {
	AuthURL       string        `mapstructure:"auth_url"`
	ClassifierURL string        `mapstructure:"classifier_url"`
	PatientsURL   string        `mapstructure:"patients_url"`
	OccupancyURL  string        `mapstructure:"occupancy_url"`
	TemplatesURL  string        `mapstructure:"templates_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

type SessionConfig struct {
	// DefaultTTL applies when the upstream token carries no usable
	// expiry claim.
	DefaultTTL      time.Duration `mapstructure:"default_ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type OccupancyConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	SettleDelay  time.Duration `mapstructure:"settle_delay"`
}

type TriageConfig struct {
	// FallbackDepartments is used for the department selector when the
	// prediction carries no candidate list.
	FallbackDepartments []string `mapstructure:"fallback_departments"`
	// FlowTTL bounds how long an unconfirmed preview stays addressable.
	FlowTTL time.Duration `mapstructure:"flow_ttl"`
	// ConfirmCloseDelay is how long a confirmed flow stays readable so
	// the UI can render the success state before the panel closes.
	ConfirmCloseDelay time.Duration `mapstructure:"confirm_close_delay"`
}

type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type AuditConfig struct {
	// Retention bounds how long decision-audit entries are kept.
	Retention       time.Duration `mapstructure:"retention"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type RedisConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetEnvPrefix("TRIAGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 15*time.Second)
	viper.SetDefault("server.write_timeout", 15*time.Second)
	viper.SetDefault("server.max_header_bytes", 1<<20)

	viper.SetDefault("upstream.timeout", 10*time.Second)

	viper.SetDefault("session.default_ttl", 8*time.Hour)
	viper.SetDefault("session.cleanup_interval", 10*time.Minute)

	viper.SetDefault("occupancy.poll_interval", 30*time.Second)
	viper.SetDefault("occupancy.settle_delay", 2*time.Second)

	viper.SetDefault("triage.fallback_departments", []string{
		"SOR", "Interna", "Kardiologia", "Chirurgia",
		"Ortopedia", "Neurologia", "Pediatria", "Ginekologia",
	})
	viper.SetDefault("triage.flow_ttl", 30*time.Minute)
	viper.SetDefault("triage.confirm_close_delay", 3*time.Second)

	viper.SetDefault("database.enabled", false)
	viper.SetDefault("database.sslmode", "disable")

	viper.SetDefault("audit.retention", 90*24*time.Hour)
	viper.SetDefault("audit.cleanup_interval", 24*time.Hour)

	viper.SetDefault("redis.enabled", false)

	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests_per_second", 50.0)
	viper.SetDefault("rate_limit.burst", 100)
}
