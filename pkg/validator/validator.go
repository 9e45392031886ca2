package validator

import (
	"net/url"

	"github.com/go-playground/validator/v10"
)

// isPostgresURL checks that a string is a postgres:// or postgresql:// URL
// with a host.
func isPostgresURL(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil {
		return false
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return false
	}
	return u.Host != ""
}

// RegisterCustomValidators registers custom validation functions with the validator.
func RegisterCustomValidators(validate *validator.Validate) error {
	return validate.RegisterValidation("postgres_url", isPostgresURL)
}
