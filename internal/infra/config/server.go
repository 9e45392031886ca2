package config

import "time"

// ServerConfig represents the HTTP server configuration.
type ServerConfig struct {
	Port            int           `mapstructure:"port"             validate:"gte=0,lte=65535"`
	TLS             TLS           `mapstructure:"tls"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0"`
}

// TLS represents the TLS configuration.
type TLS struct {
	Enabled      bool   `mapstructure:"enabled"`
	CertFile     string `mapstructure:"cert_file"      validate:"required_if=Enabled true"`
	KeyFile      string `mapstructure:"key_file"       validate:"required_if=Enabled true"`
	ClientCAFile string `mapstructure:"client_ca_file"`
	ClientAuth   string `mapstructure:"client_auth"`
}
