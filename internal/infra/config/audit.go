package config

// AuditConfig controls where sync invocations are recorded. Without a
// database URL the audit trail is written to the structured log only.
type AuditConfig struct {
	DatabaseURL string             `mapstructure:"database_url" validate:"omitempty,postgres_url"`
	Migrate     bool               `mapstructure:"migrate"`
	Connection  DBConnectionConfig `mapstructure:"connection"`
}
