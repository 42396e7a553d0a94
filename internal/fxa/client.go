// Package fxa is a client for the account (identity) service: password
// sign-in and BrowserID certificate signing.
package fxa

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-uuid"
	"github.com/jrschumacher/fxa-oauth/internal/browserid"
	"github.com/jrschumacher/fxa-oauth/internal/httputil"
)

// Client talks to the account service rooted at BaseURL.
type Client struct {
	baseURL string
	http    *http.Client

	// overwritten in tests
	now      func() time.Time
	genNonce func() (string, error)
}

// Session is the result of a successful sign-in.
type Session struct {
	UID          string `json:"uid"`
	SessionToken string `json:"sessionToken"`
	Verified     bool   `json:"verified"`
	AuthAt       int64  `json:"authAt"`
}

// NewClient creates a client for the account service. A nil httpClient uses
// httputil.NewClient.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = httputil.NewClient()
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     httpClient,
		now:      time.Now,
		genNonce: hawkNonce,
	}
}

func hawkNonce() (string, error) {
	b, err := uuid.GenerateRandomBytes(6)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// SignIn authenticates with email and password. Service errors are returned
// as *httputil.APIError.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	if email == "" {
		return nil, ErrMissingEmail
	}
	if password == "" {
		return nil, ErrMissingPassword
	}
	authPW, err := deriveAuthPW(email, password)
	if err != nil {
		return nil, fmt.Errorf("failed to derive authPW: %w", err)
	}

	body := map[string]string{"email": email, "authPW": authPW}
	var session Session
	if err := httputil.DoJSON(ctx, c.http, http.MethodPost, c.baseURL+"/v1/account/login", body, &session); err != nil {
		return nil, err
	}
	if session.SessionToken == "" {
		return nil, ErrEmptySession
	}
	return &session, nil
}

// CertificateSign asks the service to certify publicKey for duration, using
// the session token for Hawk authentication.
func (c *Client) CertificateSign(ctx context.Context, sessionToken string, publicKey browserid.PublicKeyObject, duration time.Duration) (string, error) {
	creds, err := deriveTokenCredentials(sessionToken, "sessionToken")
	if err != nil {
		return "", err
	}

	body := map[string]any{
		"publicKey": publicKey,
		"duration":  duration.Milliseconds(),
	}
	var out struct {
		Cert string `json:"cert"`
	}
	err = httputil.DoJSON(ctx, c.http, http.MethodPost, c.baseURL+"/v1/certificate/sign", body, &out, c.hawkAuth(creds))
	if err != nil {
		return "", err
	}
	if out.Cert == "" {
		return "", ErrEmptyCertificate
	}
	return out.Cert, nil
}

func (c *Client) hawkAuth(creds *tokenCredentials) httputil.RequestOption {
	return func(req *http.Request, body []byte) error {
		nonce, err := c.genNonce()
		if err != nil {
			return fmt.Errorf("failed to generate hawk nonce: %w", err)
		}
		req.Header.Set("Authorization", newHawkRequest(req, body, c.now(), nonce).header(creds))
		return nil
	}
}
