package wiring_test

import (
	"crypto/tls"
	"path/filepath"
	"testing"

	"github.com/spounge-ai/postgresql-connector/internal/infra/config"
	"github.com/spounge-ai/postgresql-connector/internal/wiring"
	"github.com/spounge-ai/postgresql-connector/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureTLSDisabled(t *testing.T) {
	tlsConfig, err := wiring.ConfigureTLS(config.TLS{})
	require.NoError(t, err)
	assert.Nil(t, tlsConfig)
}

func TestConfigureTLSMissingFiles(t *testing.T) {
	dir := t.TempDir()
	_, err := wiring.ConfigureTLS(config.TLS{
		Enabled:  true,
		CertFile: filepath.Join(dir, "cert.pem"),
		KeyFile:  filepath.Join(dir, "key.pem"),
	})
	require.Error(t, err)
}

func TestConfigureTLSWithCertificate(t *testing.T) {
	certFile, keyFile := testutil.WriteSelfSignedCert(t)

	tlsConfig, err := wiring.ConfigureTLS(config.TLS{
		Enabled:    true,
		CertFile:   certFile,
		KeyFile:    keyFile,
		ClientAuth: "VerifyClientCertIfGiven",
	})
	require.NoError(t, err)
	assert.Len(t, tlsConfig.Certificates, 1)
	assert.Equal(t, tls.VerifyClientCertIfGiven, tlsConfig.ClientAuth)
	assert.EqualValues(t, tls.VersionTLS12, tlsConfig.MinVersion)

	_, err = wiring.ConfigureTLS(config.TLS{Enabled: true, CertFile: certFile, KeyFile: keyFile, ClientAuth: "Sometimes"})
	require.Error(t, err)
}
