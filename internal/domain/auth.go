package domain

// Claims is the decoded payload of a verified bearer token.
type Claims map[string]any

// Subject returns the "sub" claim, or an empty string when absent.
func (c Claims) Subject() string {
	sub, _ := c["sub"].(string)
	return sub
}

// AuthVerdict is the outcome of verifying a bearer token. It is either
// valid and carries the decoded claims, or invalid and carries the reason.
// The zero value is invalid.
type AuthVerdict struct {
	valid  bool
	claims Claims
	reason error
}

// Valid returns a verdict for a token whose signature checked out.
func Valid(claims Claims) AuthVerdict {
	if claims == nil {
		claims = Claims{}
	}
	return AuthVerdict{valid: true, claims: claims}
}

// Invalid returns a verdict for a rejected token.
func Invalid(reason error) AuthVerdict {
	return AuthVerdict{reason: reason}
}

func (v AuthVerdict) IsValid() bool { return v.valid }

func (v AuthVerdict) Claims() Claims { return v.claims }

// Reason explains why the token was rejected. It is nil for valid verdicts.
func (v AuthVerdict) Reason() error { return v.reason }

// TokenVerifier checks a raw bearer token.
type TokenVerifier interface {
	Verify(token string) AuthVerdict
}
