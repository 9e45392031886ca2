package auth

import (
	"bytes"
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spounge-ai/postgresql-connector/internal/domain"
	app_errors "github.com/spounge-ai/postgresql-connector/internal/errors"
)

var (
	// ErrTokenRejected covers missing, malformed, unsigned, tampered and
	// expired tokens as well as tokens signed with another key or algorithm.
	ErrTokenRejected = fmt.Errorf("%w: token rejected", app_errors.ErrAuthentication)
	// ErrEmptyPayload is returned for a correctly signed token whose payload
	// decodes to null.
	ErrEmptyPayload = fmt.Errorf("%w: empty token payload", app_errors.ErrAuthentication)

	errMissingToken = errors.New("token is empty")
)

// Verifier checks RS256 bearer tokens against a single public key. It holds
// no mutable state and is safe for concurrent use.
type Verifier struct {
	publicKey *rsa.PublicKey
	parser    *jwt.Parser
}

// NewVerifier parses a PEM encoded RSA public key (PKIX, PKCS#1 or an X.509
// certificate).
func NewVerifier(publicKeyPEM []byte) (*Verifier, error) {
	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RSA public key: %w", err)
	}

	return &Verifier{
		publicKey: publicKey,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithIssuedAt(),
		),
	}, nil
}

// Verify decodes the token and checks its signature. Registered time claims
// are enforced only when the token carries them; no other claim is checked.
func (v *Verifier) Verify(raw string) domain.AuthVerdict {
	if raw == "" {
		return domain.Invalid(fmt.Errorf("%w: %w", ErrTokenRejected, errMissingToken))
	}

	claims := jwt.MapClaims{}
	token, err := v.parser.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.publicKey, nil
	})
	if err != nil {
		return domain.Invalid(fmt.Errorf("%w: %w", ErrTokenRejected, err))
	}
	if !token.Valid {
		return domain.Invalid(fmt.Errorf("%w: %w", ErrTokenRejected, jwt.ErrSignatureInvalid))
	}

	empty, err := v.nullPayload(raw)
	if err != nil {
		return domain.Invalid(fmt.Errorf("%w: %w", ErrTokenRejected, err))
	}
	if empty {
		return domain.Invalid(ErrEmptyPayload)
	}

	return domain.Valid(domain.Claims(claims))
}

// nullPayload reports whether the payload segment is the JSON literal null.
// The claims map cannot tell null apart from {}.
func (v *Verifier) nullPayload(raw string) (bool, error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return false, jwt.ErrTokenMalformed
	}
	payload, err := v.parser.DecodeSegment(parts[1])
	if err != nil {
		return false, err
	}
	return bytes.Equal(bytes.TrimSpace(payload), []byte("null")), nil
}
