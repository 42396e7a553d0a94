package cmd

import (
	"context"
	"net/http"

	"github.com/jrschumacher/fxa-oauth/internal/authenticator"
	"github.com/jrschumacher/fxa-oauth/internal/browserid"
	"github.com/jrschumacher/fxa-oauth/internal/config"
	"github.com/jrschumacher/fxa-oauth/internal/fxa"
	"github.com/jrschumacher/fxa-oauth/internal/httputil"
	"github.com/jrschumacher/fxa-oauth/internal/oauth"
	"github.com/jrschumacher/fxa-oauth/internal/output"
	"github.com/jrschumacher/fxa-oauth/internal/prompt"
	"github.com/jrschumacher/fxa-oauth/internal/session"
)

// adminScope is the scope client administration requires.
const adminScope = "oauth"

// app is the state shared by all commands once configuration is loaded.
type app struct {
	cfg      *config.Config
	printer  *output.Printer
	prompter *prompt.Prompter
	http     *http.Client
}

func newApp(cfg *config.Config, printer *output.Printer, prompter *prompt.Prompter) *app {
	client := httputil.NewClient()
	client.Timeout = cfg.Timeout
	return &app{cfg: cfg, printer: printer, prompter: prompter, http: client}
}

// withTimeout bounds non-interactive work by the configured timeout.
func (a *app) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.cfg.Timeout)
}

// credentials returns the configured account, prompting for what is missing.
func (a *app) credentials(ctx context.Context) (authenticator.Credentials, error) {
	email := a.cfg.User
	if email == "" {
		var err error
		if email, err = a.prompter.Required(ctx, "Email"); err != nil {
			return authenticator.Credentials{}, err
		}
	}
	password, err := a.prompter.Password(ctx, a.cfg.Password)
	if err != nil {
		return authenticator.Credentials{}, err
	}
	return authenticator.Credentials{Email: email, Password: password}, nil
}

func (a *app) authenticator() (*authenticator.Authenticator, error) {
	identity := fxa.NewClient(a.cfg.AuthURL, a.http)
	return authenticator.New(identity, browserid.NewProvider(),
		authenticator.WithKeyParams(browserid.KeyParams{
			Algorithm: browserid.AlgorithmDS,
			KeySize:   a.cfg.KeySize,
		}),
	)
}

// service builds an OAuth client for the configured user. Credentials are
// collected here so prompts happen before any deadline starts.
func (a *app) service(ctx context.Context) (*oauth.Service, error) {
	creds, err := a.credentials(ctx)
	if err != nil {
		return nil, err
	}
	auth, err := a.authenticator()
	if err != nil {
		return nil, err
	}
	return oauth.NewService(a.cfg.OAuthURL, a.http, auth, creds), nil
}

// withAdmin runs fn with an administration client backed by a temporary
// token that is destroyed afterwards.
func (a *app) withAdmin(ctx context.Context, svc *oauth.Service, fn func(ctx context.Context, admin *oauth.Admin) error) error {
	tt := session.TempToken{Issuer: svc, ClientID: a.cfg.CLIClientID, Scope: adminScope}
	return tt.Do(ctx, func(ctx context.Context, tok *oauth.Token) error {
		return fn(ctx, svc.Admin(ctx, tok))
	})
}
