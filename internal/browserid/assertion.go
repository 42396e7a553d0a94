package browserid

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jws"
)

// BundleSeparator joins certificates and the assertion in a bundle.
const BundleSeparator = "~"

// AssertionParams are the envelope claims of a signed assertion.
type AssertionParams struct {
	Audience  string
	ExpiresAt time.Time
	IssuedAt  time.Time
	Issuer    string
}

// Claims are the claims found in certificates and assertions.
// Times are milliseconds since the epoch.
type Claims struct {
	Audience  string           `json:"aud,omitempty"`
	ExpiresAt int64            `json:"exp,omitempty"`
	IssuedAt  int64            `json:"iat,omitempty"`
	Issuer    string           `json:"iss,omitempty"`
	PublicKey *PublicKeyObject `json:"public-key,omitempty"`
	Principal map[string]any   `json:"principal,omitempty"`
}

// Expiry returns ExpiresAt as a time.
func (c Claims) Expiry() time.Time {
	return time.UnixMilli(c.ExpiresAt)
}

// SignAssertion signs claims together with the audience and expiry in params.
// Extra claims may be nil.
func SignAssertion(claims map[string]any, params AssertionParams, key *PrivateKey) (string, error) {
	if key.Destroyed() {
		return "", ErrKeyDestroyed
	}
	if params.Audience == "" {
		return "", ErrMissingAudience
	}
	if params.ExpiresAt.IsZero() {
		return "", ErrMissingExpiry
	}

	payload := make(map[string]any, len(claims)+4)
	for k, v := range claims {
		payload[k] = v
	}
	payload["aud"] = params.Audience
	payload["exp"] = params.ExpiresAt.UnixMilli()
	if !params.IssuedAt.IsZero() {
		payload["iat"] = params.IssuedAt.UnixMilli()
	}
	if params.Issuer != "" {
		payload["iss"] = params.Issuer
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal assertion payload: %w", err)
	}

	alg, err := jwsAlgorithm(key.keySize)
	if err != nil {
		return "", err
	}
	signed, err := jws.Sign(body, jws.WithKey(alg, key))
	if err != nil {
		return "", fmt.Errorf("failed to sign assertion: %w", err)
	}
	return string(signed), nil
}

// VerifyAssertion checks the signature of a signed assertion or certificate
// against pub and returns its claims. Expiry is not checked.
func VerifyAssertion(token string, pub *PublicKey) (*Claims, error) {
	alg, err := jwsAlgorithm(pub.keySize)
	if err != nil {
		return nil, err
	}
	payload, err := jws.Verify([]byte(token), jws.WithKey(alg, pub))
	if err != nil {
		return nil, fmt.Errorf("failed to verify assertion: %w", err)
	}
	return decodeClaims(payload)
}

// ParseClaims extracts claims without verifying the signature.
func ParseClaims(token string) (*Claims, error) {
	msg, err := jws.Parse([]byte(token))
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWS: %w", err)
	}
	return decodeClaims(msg.Payload())
}

func decodeClaims(payload []byte) (*Claims, error) {
	var c Claims
	if err := json.Unmarshal(payload, &c); err != nil {
		return nil, fmt.Errorf("failed to decode claims: %w", err)
	}
	return &c, nil
}

// Bundle packages certificates and an assertion into one string.
func Bundle(certs []string, assertion string) string {
	parts := make([]string, 0, len(certs)+1)
	parts = append(parts, certs...)
	parts = append(parts, assertion)
	return strings.Join(parts, BundleSeparator)
}

// Unbundled is a bundle split into its parts.
type Unbundled struct {
	Certificates []string
	Assertion    string
}

// ParseBundle splits a bundle produced by Bundle.
func ParseBundle(bundle string) (*Unbundled, error) {
	parts := strings.Split(bundle, BundleSeparator)
	if len(parts) < 2 {
		return nil, fmt.Errorf("%w: expected at least one certificate", ErrInvalidBundle)
	}
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("%w: empty segment", ErrInvalidBundle)
		}
	}
	return &Unbundled{
		Certificates: parts[:len(parts)-1],
		Assertion:    parts[len(parts)-1],
	}, nil
}
