package auth_test

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spounge-ai/postgresql-connector/internal/domain"
	app_errors "github.com/spounge-ai/postgresql-connector/internal/errors"
	"github.com/spounge-ai/postgresql-connector/internal/infra/auth"
	"github.com/spounge-ai/postgresql-connector/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVerifier(t *testing.T) (*auth.Verifier, testutil.KeyPair) {
	t.Helper()
	keys := testutil.NewKeyPair(t)
	verifier, err := auth.NewVerifier(keys.PublicPEM)
	require.NoError(t, err)
	return verifier, keys
}

func requireRejected(t *testing.T, verdict domain.AuthVerdict, target error) {
	t.Helper()
	require.False(t, verdict.IsValid())
	assert.ErrorIs(t, verdict.Reason(), target)
	assert.ErrorIs(t, verdict.Reason(), app_errors.ErrAuthentication)
}

func TestVerifyAcceptsSignedToken(t *testing.T) {
	verifier, keys := newVerifier(t)

	verdict := verifier.Verify(keys.Sign(t, jwt.MapClaims{"sub": "scheduler"}))

	require.True(t, verdict.IsValid())
	assert.NoError(t, verdict.Reason())
	assert.Equal(t, "scheduler", verdict.Claims().Subject())
}

func TestVerifyAcceptsEmptyObjectPayload(t *testing.T) {
	verifier, keys := newVerifier(t)

	verdict := verifier.Verify(keys.Sign(t, jwt.MapClaims{}))

	require.True(t, verdict.IsValid())
	assert.Empty(t, verdict.Claims())
}

func TestVerifyAcceptsPKCS1PublicKey(t *testing.T) {
	keys := testutil.NewKeyPair(t)
	verifier, err := auth.NewVerifier(keys.PKCS1PublicPEM())
	require.NoError(t, err)

	assert.True(t, verifier.Verify(keys.Sign(t, jwt.MapClaims{})).IsValid())
}

func TestVerifyRejectsEmptyToken(t *testing.T) {
	verifier, _ := newVerifier(t)

	requireRejected(t, verifier.Verify(""), auth.ErrTokenRejected)
}

func TestVerifyRejectsMalformedToken(t *testing.T) {
	verifier, _ := newVerifier(t)

	for _, raw := range []string{"foo", "a.b", "a.b.c", "Bearer"} {
		requireRejected(t, verifier.Verify(raw), auth.ErrTokenRejected)
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	verifier, _ := newVerifier(t)
	other := testutil.NewKeyPair(t)

	requireRejected(t, verifier.Verify(other.Sign(t, jwt.MapClaims{})), auth.ErrTokenRejected)
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	verifier, keys := newVerifier(t)
	parts := strings.Split(keys.Sign(t, jwt.MapClaims{"sub": "scheduler"}), ".")
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"admin"}`))

	requireRejected(t, verifier.Verify(strings.Join(parts, ".")), auth.ErrTokenRejected)
}

func TestVerifyRejectsUnsignedToken(t *testing.T) {
	verifier, _ := newVerifier(t)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	requireRejected(t, verifier.Verify(unsigned), auth.ErrTokenRejected)
}

func TestVerifyRejectsHMACWithPublicKey(t *testing.T) {
	verifier, keys := newVerifier(t)
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{}).SignedString(keys.PublicPEM)
	require.NoError(t, err)

	requireRejected(t, verifier.Verify(forged), auth.ErrTokenRejected)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	verifier, keys := newVerifier(t)
	expired := keys.Sign(t, jwt.MapClaims{"exp": time.Now().Add(-time.Hour).Unix()})

	requireRejected(t, verifier.Verify(expired), auth.ErrTokenRejected)
}

func TestVerifyRejectsTokenIssuedInTheFuture(t *testing.T) {
	verifier, keys := newVerifier(t)
	future := keys.Sign(t, jwt.MapClaims{"iat": time.Now().Add(time.Hour).Unix()})

	verdict := verifier.Verify(future)

	requireRejected(t, verdict, auth.ErrTokenRejected)
	assert.ErrorIs(t, verdict.Reason(), jwt.ErrTokenUsedBeforeIssued)
}

func TestVerifyAcceptsPastIssuedAt(t *testing.T) {
	verifier, keys := newVerifier(t)
	token := keys.Sign(t, jwt.MapClaims{"iat": time.Now().Add(-time.Minute).Unix()})

	assert.True(t, verifier.Verify(token).IsValid())
}

func TestVerifyRejectsNullPayload(t *testing.T) {
	verifier, keys := newVerifier(t)

	enc := base64.RawURLEncoding
	signingString := enc.EncodeToString([]byte(`{"alg":"RS256","typ":"JWT"}`)) + "." + enc.EncodeToString([]byte("null"))
	signature, err := jwt.SigningMethodRS256.Sign(signingString, keys.Private)
	require.NoError(t, err)

	verdict := verifier.Verify(signingString + "." + enc.EncodeToString(signature))

	requireRejected(t, verdict, auth.ErrEmptyPayload)
	assert.NotErrorIs(t, verdict.Reason(), auth.ErrTokenRejected)
}

func TestNewVerifierRejectsBadKey(t *testing.T) {
	_, err := auth.NewVerifier([]byte("foo"))
	require.Error(t, err)
}
