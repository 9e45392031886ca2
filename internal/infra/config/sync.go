package config

import "time"

// SyncConfig controls how the external connector is invoked. Zero values
// keep the default behaviour: no timeout, no concurrency limit and no rate
// limit on /sync.
type SyncConfig struct {
	ConnectorBinary string        `mapstructure:"connector_binary" validate:"required"`
	Timeout         time.Duration `mapstructure:"timeout"          validate:"gte=0"`
	MaxConcurrent   int64         `mapstructure:"max_concurrent"   validate:"gte=0"`
	RateLimit       float64       `mapstructure:"rate_limit"       validate:"gte=0"`
	RateBurst       int           `mapstructure:"rate_burst"       validate:"gte=0"`
	MaxOutputBytes  int           `mapstructure:"max_output_bytes" validate:"gte=0"`
}

// DataCatalogConfig identifies the catalog the connector writes into.
type DataCatalogConfig struct {
	ProjectID  string `mapstructure:"project_id"`
	LocationID string `mapstructure:"location_id"`
}

// SourceConfig holds the PostgreSQL connection the connector reads from.
// Values are handed to the connector unvalidated.
type SourceConfig struct {
	Host     string `mapstructure:"host"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// LoggingConfig selects the log level and encoding.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}
