package browserid

import "context"

// Provider exposes the package functions as a value so callers can swap it
// out in tests.
type Provider struct{}

// NewProvider returns the default signing provider.
func NewProvider() *Provider {
	return &Provider{}
}

// GenerateKeyPair creates an ephemeral key pair.
func (Provider) GenerateKeyPair(ctx context.Context, params KeyParams) (*KeyPair, error) {
	return GenerateKeyPair(ctx, params)
}

// SignAssertion signs an assertion with key.
func (Provider) SignAssertion(claims map[string]any, params AssertionParams, key *PrivateKey) (string, error) {
	return SignAssertion(claims, params, key)
}

// Bundle joins certificates and an assertion.
func (Provider) Bundle(certs []string, assertion string) string {
	return Bundle(certs, assertion)
}
