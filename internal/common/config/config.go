// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct. It is resolved once at
// process start and passed explicitly into each component.
type Config struct {
	App          AppConfig          `mapstructure:"app"`
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Identity     IdentityConfig     `mapstructure:"identity"`
	Verification VerificationConfig `mapstructure:"verification"`
	Integrations IntegrationConfig  `mapstructure:"integrations"`
	APIs         APIsConfig         `mapstructure:"apis"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Audit        AuditConfig        `mapstructure:"audit"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	MetricsAddress  string `mapstructure:"metrics_address"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// IdentityConfig holds credentials for the external identity provider.
// ServiceCredential is the privileged server-side key; AnonCredential is the
// public key handed to browser clients and accepted for token resolution only.
type IdentityConfig struct {
	BaseURL           string `mapstructure:"base_url"`
	ServiceCredential string `mapstructure:"service_credential"`
	AnonCredential    string `mapstructure:"anon_credential"`
	TimeoutMs         int    `mapstructure:"timeout_ms"`
	CacheTTLSeconds   int    `mapstructure:"cache_ttl_seconds"`
}

// VerificationConfig tunes the background-check simulator.
type VerificationConfig struct {
	DelayMs   int `mapstructure:"delay_ms"`   // simulated vendor round-trip
	TimeoutMs int `mapstructure:"timeout_ms"` // per-invocation deadline
}

// IntegrationConfig holds settings for notification delivery.
type IntegrationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
		SES    struct {
			Enabled   bool   `mapstructure:"enabled"`
			FromEmail string `mapstructure:"from_email"`
		} `mapstructure:"ses"`
		SNS struct {
			Enabled bool `mapstructure:"enabled"`
		} `mapstructure:"sns"`
	} `mapstructure:"aws"`
}

// APIsConfig holds settings for external API integrations.
type APIsConfig struct {
	Maps struct {
		BaseURL        string `mapstructure:"base_url"`
		ExternalAPIKey string `mapstructure:"external_api_key"`
		Timeout        int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"maps"`
}

// AuditConfig holds settings for the review audit trail.
type AuditConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Index   string `mapstructure:"index"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
