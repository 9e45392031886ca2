package validator_test

import (
	"testing"

	"github.com/go-playground/validator/v10"
	customvalidator "github.com/spounge-ai/postgresql-connector/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type auditTarget struct {
	URL string `validate:"omitempty,postgres_url"`
}

func TestPostgresURL(t *testing.T) {
	validate := validator.New()
	require.NoError(t, customvalidator.RegisterCustomValidators(validate))

	assert.NoError(t, validate.Struct(auditTarget{URL: "postgres://user:pw@db:5432/audit?sslmode=disable"}))
	assert.NoError(t, validate.Struct(auditTarget{URL: "postgresql://db/audit"}))
	assert.NoError(t, validate.Struct(auditTarget{}))
	assert.Error(t, validate.Struct(auditTarget{URL: "mysql://db/audit"}))
	assert.Error(t, validate.Struct(auditTarget{URL: "postgres:///audit"}))
	assert.Error(t, validate.Struct(auditTarget{URL: "not a url"}))
}
