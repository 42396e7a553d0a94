// Package oauth is a client for the OAuth server: token issuance via
// BrowserID assertions and administration of registered clients.
package oauth

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-uuid"
	"github.com/jrschumacher/fxa-oauth/internal/authenticator"
	"github.com/jrschumacher/fxa-oauth/internal/httputil"
	"golang.org/x/oauth2"
)

var (
	ErrMissingClientID = errors.New("client id is required")
	ErrMissingScope    = errors.New("scope is required")
	ErrMissingToken    = errors.New("access token is required")
	ErrEmptyToken      = errors.New("authorization returned no access token")
)

// AssertionSource produces a fresh assertion bundle for an audience.
type AssertionSource interface {
	Authenticate(ctx context.Context, creds authenticator.Credentials, audienceURL string) (string, error)
}

// Service talks to the OAuth server rooted at baseURL on behalf of one user.
type Service struct {
	baseURL    string
	http       *http.Client
	assertions AssertionSource
	creds      authenticator.Credentials

	// overwritten in tests
	genState func() (string, error)
}

// NewService creates an OAuth service client. A nil httpClient uses
// httputil.NewClient.
func NewService(baseURL string, httpClient *http.Client, assertions AssertionSource, creds authenticator.Credentials) *Service {
	if httpClient == nil {
		httpClient = httputil.NewClient()
	}
	return &Service{
		baseURL:    strings.TrimRight(baseURL, "/"),
		http:       httpClient,
		assertions: assertions,
		creds:      creds,
		genState:   randomState,
	}
}

// BaseURL returns the server root.
func (s *Service) BaseURL() string {
	return s.baseURL
}

func randomState() (string, error) {
	b, err := uuid.GenerateRandomBytes(8)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GetToken signs in, builds an assertion for this server and exchanges it
// for an implicit-grant access token.
func (s *Service) GetToken(ctx context.Context, clientID, scope string) (*Token, error) {
	if clientID == "" {
		return nil, ErrMissingClientID
	}
	if scope == "" {
		return nil, ErrMissingScope
	}
	state, err := s.genState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state: %w", err)
	}

	assertion, err := s.assertions.Authenticate(ctx, s.creds, s.baseURL)
	if err != nil {
		return nil, err
	}

	req := authorizationRequest{
		Assertion:    assertion,
		Scope:        scope,
		ResponseType: "token",
		State:        state,
		ClientID:     clientID,
	}
	var tok Token
	if err := httputil.DoJSON(ctx, s.http, http.MethodPost, s.baseURL+"/v1/authorization", req, &tok); err != nil {
		return nil, err
	}
	if tok.AccessToken == "" {
		return nil, ErrEmptyToken
	}
	return &tok, nil
}

// DestroyToken revokes an access token.
func (s *Service) DestroyToken(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return ErrMissingToken
	}
	body := map[string]string{"token": accessToken}
	return httputil.DoJSON(ctx, s.http, http.MethodPost, s.baseURL+"/v1/destroy", body, nil)
}

// Admin performs client administration with a bearer token.
type Admin struct {
	baseURL string
	http    *http.Client
}

// Admin returns an administration client authenticated with tok.
func (s *Service) Admin(ctx context.Context, tok *Token) *Admin {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.http)
	return &Admin{
		baseURL: s.baseURL,
		http:    oauth2.NewClient(ctx, oauth2.StaticTokenSource(tok.OAuth2())),
	}
}

func (a *Admin) clientURL(id string) string {
	return a.baseURL + "/v1/client/" + url.PathEscape(id)
}

// ListClients returns every registered client.
func (a *Admin) ListClients(ctx context.Context) ([]Client, error) {
	var out clientList
	if err := httputil.DoJSON(ctx, a.http, http.MethodGet, a.baseURL+"/v1/clients", nil, &out); err != nil {
		return nil, err
	}
	return out.Clients, nil
}

// GetClient returns one client.
func (a *Admin) GetClient(ctx context.Context, id string) (*Client, error) {
	if id == "" {
		return nil, ErrMissingClientID
	}
	var out Client
	if err := httputil.DoJSON(ctx, a.http, http.MethodGet, a.clientURL(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RegisterClient registers a new client and returns it as stored, including
// its generated id and secret.
func (a *Admin) RegisterClient(ctx context.Context, c Client) (*Client, error) {
	var out Client
	if err := httputil.DoJSON(ctx, a.http, http.MethodPost, a.baseURL+"/v1/client", c, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateClient changes the given properties of a client.
func (a *Admin) UpdateClient(ctx context.Context, id string, props map[string]any) error {
	if id == "" {
		return ErrMissingClientID
	}
	return httputil.DoJSON(ctx, a.http, http.MethodPost, a.clientURL(id), props, nil)
}

// DeleteClient removes a client.
func (a *Admin) DeleteClient(ctx context.Context, id string) error {
	if id == "" {
		return ErrMissingClientID
	}
	return httputil.DoJSON(ctx, a.http, http.MethodDelete, a.clientURL(id), nil, nil)
}
