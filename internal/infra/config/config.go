package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"github.com/spounge-ai/postgresql-connector/internal/domain"
	customvalidator "github.com/spounge-ai/postgresql-connector/pkg/validator"
)

// Config is built once at startup and shared read-only afterwards.
type Config struct {
	Service     ServiceConfig     `mapstructure:"service"`
	Server      ServerConfig      `mapstructure:"server"`
	Auth        AuthConfig        `mapstructure:"auth"`
	DataCatalog DataCatalogConfig `mapstructure:"datacatalog"`
	Source      SourceConfig      `mapstructure:"source"`
	Sync        SyncConfig        `mapstructure:"sync"`
	Audit       AuditConfig       `mapstructure:"audit"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	AWS         AWSConfig         `mapstructure:"aws"`
}

type ServiceConfig struct {
	Name    string `mapstructure:"name"    validate:"required"`
	Version string `mapstructure:"version" validate:"required"`
}

// envBindings maps every config key onto the environment variables that
// may set it. Unmarshal only sees keys viper already knows about, so a key
// missing here cannot come from the environment unless it has a default.
var envBindings = map[string][]string{
	"service.name":                  {"SERVICE_NAME"},
	"service.version":               {"VERSION"},
	"auth.public_key_path":          {"PUB_KEY_PATH"},
	"auth.public_key_ssm_parameter": {"PUB_KEY_SSM_PARAMETER"},
	"datacatalog.project_id":        {"DATACATALOG_PROJECT_ID"},
	"datacatalog.location_id":       {"DATACATALOG_LOCATION_ID"},
	"source.host":                   {"POSTGRESQL_SERVER"},
	"source.user":                   {"POSTGRES_USER"},
	"source.password":               {"POSTGRES_PASSWORD"},
	"source.database":               {"POSTGRES_DB"},
	"server.port":                   {"PORT"},
	"server.tls.enabled":            {"SERVER_TLS_ENABLED"},
	"server.tls.cert_file":          {"SERVER_TLS_CERT_FILE"},
	"server.tls.key_file":           {"SERVER_TLS_KEY_FILE"},
	"server.tls.client_ca_file":     {"SERVER_TLS_CLIENT_CA_FILE"},
	"server.tls.client_auth":        {"SERVER_TLS_CLIENT_AUTH"},
	"server.shutdown_timeout":       {"SERVER_SHUTDOWN_TIMEOUT"},
	"sync.connector_binary":         {"SYNC_CONNECTOR_BINARY"},
	"sync.timeout":                  {"SYNC_TIMEOUT"},
	"sync.max_concurrent":           {"SYNC_MAX_CONCURRENT"},
	"sync.rate_limit":               {"SYNC_RATE_LIMIT"},
	"sync.rate_burst":               {"SYNC_RATE_BURST"},
	"sync.max_output_bytes":         {"SYNC_MAX_OUTPUT_BYTES"},
	"audit.database_url":            {"AUDIT_DATABASE_URL"},
	"audit.migrate":                 {"AUDIT_MIGRATE"},
	"logging.level":                 {"LOG_LEVEL"},
	"logging.format":                {"LOG_FORMAT"},
	"aws.region":                    {"AWS_REGION"},

	"audit.connection.max_conns":           {"AUDIT_CONNECTION_MAX_CONNS"},
	"audit.connection.min_conns":           {"AUDIT_CONNECTION_MIN_CONNS"},
	"audit.connection.max_conn_lifetime":   {"AUDIT_CONNECTION_MAX_CONN_LIFETIME"},
	"audit.connection.max_conn_idle_time":  {"AUDIT_CONNECTION_MAX_CONN_IDLE_TIME"},
	"audit.connection.health_check_period": {"AUDIT_CONNECTION_HEALTH_CHECK_PERIOD"},
}

// Load reads configuration from an optional YAML file and the environment.
// An empty path looks for connector.yaml in ./configs and the working
// directory and carries on without one.
func Load(path string) (*Config, error) {
	vip := viper.New()
	if path != "" {
		vip.SetConfigFile(path)
	} else {
		vip.SetConfigName("connector")
		vip.AddConfigPath("./configs")
		vip.AddConfigPath(".")
	}

	vip.SetConfigType("yaml")
	vip.AutomaticEnv()
	vip.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for key, envs := range envBindings {
		if err := vip.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	vip.SetDefault("service.name", "postgresql-connector")
	vip.SetDefault("service.version", "unknown")
	vip.SetDefault("server.port", 8080)
	vip.SetDefault("server.shutdown_timeout", "10s")
	vip.SetDefault("sync.connector_binary", "google-datacatalog-postgresql-connector")
	vip.SetDefault("sync.timeout", "0s")
	vip.SetDefault("sync.max_concurrent", 0)
	vip.SetDefault("sync.rate_limit", 0)
	vip.SetDefault("sync.rate_burst", 1)
	vip.SetDefault("sync.max_output_bytes", 64*1024)
	vip.SetDefault("audit.migrate", true)
	vip.SetDefault("audit.connection.max_conns", 4)
	vip.SetDefault("logging.level", "info")
	vip.SetDefault("logging.format", "json")

	if err := vip.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the struct tags of cfg.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := customvalidator.RegisterCustomValidators(validate); err != nil {
		return fmt.Errorf("failed to register custom validators: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// ConnectionParams returns the values handed to the external connector.
func (c *Config) ConnectionParams() domain.ConnectionParams {
	return domain.ConnectionParams{
		ProjectID:  c.DataCatalog.ProjectID,
		LocationID: c.DataCatalog.LocationID,
		Host:       c.Source.Host,
		User:       c.Source.User,
		Password:   c.Source.Password,
		Database:   c.Source.Database,
	}
}
