package testutil

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const (
	AuthHeader   = "Authorization"
	BearerPrefix = "Bearer "
)

// KeyPair is an RSA-2048 key pair for signing test tokens.
type KeyPair struct {
	Private   *rsa.PrivateKey
	PublicPEM []byte
}

// NewKeyPair generates a fresh key pair. The public half is PKIX encoded,
// the format a deployment mounts at PUB_KEY_PATH.
func NewKeyPair(t testing.TB) KeyPair {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	publicKeyBytes, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	require.NoError(t, err)

	return KeyPair{
		Private: privateKey,
		PublicPEM: pem.EncodeToMemory(&pem.Block{
			Type:  "PUBLIC KEY",
			Bytes: publicKeyBytes,
		}),
	}
}

// PKCS1PublicPEM returns the public key in "RSA PUBLIC KEY" form.
func (k KeyPair) PKCS1PublicPEM() []byte {
	return pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PUBLIC KEY",
		Bytes: x509.MarshalPKCS1PublicKey(&k.Private.PublicKey),
	})
}

// Sign returns an RS256 token over claims.
func (k KeyPair) Sign(t testing.TB, claims jwt.Claims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(k.Private)
	require.NoError(t, err)
	return token
}
