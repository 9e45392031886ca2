package config

// AuthConfig names the source of the RS256 public key. Exactly one source
// must be set.
type AuthConfig struct {
	PublicKeyPath         string `mapstructure:"public_key_path"          validate:"required_without=PublicKeySSMParameter,excluded_with=PublicKeySSMParameter"`
	PublicKeySSMParameter string `mapstructure:"public_key_ssm_parameter" validate:"required_without=PublicKeyPath"`
}
