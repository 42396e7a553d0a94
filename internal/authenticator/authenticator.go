// Package authenticator turns account credentials into a BrowserID
// assertion bundle that the OAuth server accepts in place of a password.
//
// The sequence is fixed by the identity service:
//
//  1. sign in with email and password to obtain a session token
//  2. generate an ephemeral key pair (concurrently with 1)
//  3. have the identity service certify the public key
//  4. sign an assertion for the audience with the private key (concurrently with 3)
//  5. bundle certificate and assertion
//
// Nothing is cached between calls; every bundle comes from a fresh sign-in
// and a fresh key pair.
package authenticator

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/jrschumacher/fxa-oauth/internal/browserid"
	"github.com/jrschumacher/fxa-oauth/internal/fxa"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultCertificateDuration is the validity requested for the certificate.
	DefaultCertificateDuration = 10 * time.Minute
	// DefaultAssertionDuration is the validity of the signed assertion.
	DefaultAssertionDuration = 5 * time.Minute
)

// IdentityClient is the part of the account service the sequence needs.
type IdentityClient interface {
	SignIn(ctx context.Context, email, password string) (*fxa.Session, error)
	CertificateSign(ctx context.Context, sessionToken string, publicKey browserid.PublicKeyObject, duration time.Duration) (string, error)
}

// Signer generates keys and signs and bundles assertions.
type Signer interface {
	GenerateKeyPair(ctx context.Context, params browserid.KeyParams) (*browserid.KeyPair, error)
	SignAssertion(claims map[string]any, params browserid.AssertionParams, key *browserid.PrivateKey) (string, error)
	Bundle(certs []string, assertion string) string
}

// Credentials are the user's login material.
type Credentials struct {
	Email    string
	Password string
}

// Authenticator produces assertion bundles.
type Authenticator struct {
	identity IdentityClient
	signer   Signer

	keyParams         browserid.KeyParams
	certDuration      time.Duration
	assertionDuration time.Duration
	now               func() time.Time
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithKeyParams overrides the key algorithm and size.
func WithKeyParams(p browserid.KeyParams) Option {
	return func(a *Authenticator) { a.keyParams = p }
}

// WithDurations overrides the certificate and assertion validity windows.
func WithDurations(cert, assertion time.Duration) Option {
	return func(a *Authenticator) {
		a.certDuration = cert
		a.assertionDuration = assertion
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) { a.now = now }
}

// New creates an Authenticator. The certificate window must outlast the
// assertion window so the bundle stays valid for its whole lifetime.
func New(identity IdentityClient, signer Signer, opts ...Option) (*Authenticator, error) {
	a := &Authenticator{
		identity:          identity,
		signer:            signer,
		keyParams:         browserid.DefaultKeyParams,
		certDuration:      DefaultCertificateDuration,
		assertionDuration: DefaultAssertionDuration,
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.identity == nil || a.signer == nil {
		return nil, errors.New("identity client and signer are required")
	}
	if a.assertionDuration <= 0 || a.certDuration <= a.assertionDuration {
		return nil, fmt.Errorf("certificate duration %s must exceed assertion duration %s", a.certDuration, a.assertionDuration)
	}
	return a, nil
}

// Audience reduces rawURL to scheme://host, the form the identity provider
// matches assertions against.
func Audience(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAudience, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidAudience, rawURL)
	}
	return u.Scheme + "://" + u.Host, nil
}

// Authenticate runs the full sequence and returns the bundle. Failures are
// always *Error; no partial bundle is ever returned.
func (a *Authenticator) Authenticate(ctx context.Context, creds Credentials, audienceURL string) (string, error) {
	if creds.Email == "" || creds.Password == "" {
		return "", &Error{Kind: KindAuth, Message: ErrMissingCredentials.Error(), Err: ErrMissingCredentials}
	}
	audience, err := Audience(audienceURL)
	if err != nil {
		return "", &Error{Kind: KindSigning, Message: err.Error(), Err: err}
	}
	if err := ctx.Err(); err != nil {
		return "", newError(ctx, KindAuth, err)
	}

	session, keys, err := a.signInAndGenerate(ctx, creds)
	if err != nil {
		return "", err
	}

	cert, assertion, err := a.certifyAndSign(ctx, session.SessionToken, keys, audience)
	if err != nil {
		return "", err
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", newError(ctx, KindTimeout, ctx.Err())
	}
	return a.signer.Bundle([]string{cert}, assertion), nil
}

// signInAndGenerate runs steps 1 and 2. They are independent, so they run
// concurrently; the first failure cancels the other.
func (a *Authenticator) signInAndGenerate(ctx context.Context, creds Credentials) (*fxa.Session, *browserid.KeyPair, error) {
	var (
		session *fxa.Session
		keys    *browserid.KeyPair
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := a.identity.SignIn(gctx, creds.Email, creds.Password)
		if err != nil {
			return newError(ctx, KindAuth, err)
		}
		if s == nil || s.SessionToken == "" {
			return newError(ctx, KindAuth, fxa.ErrEmptySession)
		}
		session = s
		return nil
	})
	g.Go(func() error {
		kp, err := a.signer.GenerateKeyPair(gctx, a.keyParams)
		if err != nil {
			return newError(ctx, KindSigning, err)
		}
		keys = kp
		return nil
	})

	if err := g.Wait(); err != nil {
		if keys != nil {
			keys.Private.Destroy()
		}
		return nil, nil, err
	}
	return session, keys, nil
}

// certifyAndSign runs steps 3 and 4. The private key is destroyed as soon
// as the assertion is signed, or when either step fails.
func (a *Authenticator) certifyAndSign(ctx context.Context, sessionToken string, keys *browserid.KeyPair, audience string) (string, string, error) {
	defer keys.Private.Destroy()

	var cert, assertion string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := a.identity.CertificateSign(gctx, sessionToken, keys.Public.SimpleObject(), a.certDuration)
		if err != nil {
			return newError(ctx, KindCertificate, err)
		}
		cert = c
		return nil
	})
	g.Go(func() error {
		defer keys.Private.Destroy()
		signed, err := a.signer.SignAssertion(map[string]any{}, browserid.AssertionParams{
			Audience:  audience,
			ExpiresAt: a.now().Add(a.assertionDuration),
		}, keys.Private)
		if err != nil {
			return newError(ctx, KindSigning, err)
		}
		assertion = signed
		return nil
	})

	if err := g.Wait(); err != nil {
		return "", "", err
	}
	return cert, assertion, nil
}
