package config

// AWSConfig represents the AWS configuration.
type AWSConfig struct {
	Region string `mapstructure:"region"`
}
