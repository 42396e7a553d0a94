// Package session scopes the lifetime of temporary OAuth tokens used by
// administrative commands.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jrschumacher/fxa-oauth/internal/logger"
	"github.com/jrschumacher/fxa-oauth/internal/oauth"
)

// DefaultCleanupTimeout bounds the token destroy call made on exit.
const DefaultCleanupTimeout = 15 * time.Second

// ErrTokenNotCleaned marks a token that is still live on the server.
var ErrTokenNotCleaned = errors.New("temporary token was not cleaned up")

// TokenIssuer issues and revokes access tokens.
type TokenIssuer interface {
	GetToken(ctx context.Context, clientID, scope string) (*oauth.Token, error)
	DestroyToken(ctx context.Context, accessToken string) error
}

// CleanupError carries the token that must be deleted by hand.
type CleanupError struct {
	Token string
	Err   error
}

func (e *CleanupError) Error() string {
	return fmt.Sprintf("%s: %v", ErrTokenNotCleaned, e.Err)
}

func (e *CleanupError) Unwrap() []error {
	return []error{ErrTokenNotCleaned, e.Err}
}

// TempToken acquires a token for clientID and scope, runs fn with it and
// destroys the token on every exit path, including cancellation and panics.
type TempToken struct {
	Issuer         TokenIssuer
	ClientID       string
	Scope          string
	CleanupTimeout time.Duration
}

// Do runs fn with a freshly issued token.
func (t TempToken) Do(ctx context.Context, fn func(ctx context.Context, tok *oauth.Token) error) (err error) {
	tok, err := t.Issuer.GetToken(ctx, t.ClientID, t.Scope)
	if err != nil {
		return err
	}
	logger.Debug("token", "msg", "temp token stored", "token", logger.Secret(tok.AccessToken))

	defer func() {
		timeout := t.CleanupTimeout
		if timeout <= 0 {
			timeout = DefaultCleanupTimeout
		}
		// ctx may already be cancelled by an interrupt
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()

		logger.Debug("token", "msg", "temp token found, deleting")
		if derr := t.Issuer.DestroyToken(cctx, tok.AccessToken); derr != nil {
			err = errors.Join(err, &CleanupError{Token: tok.AccessToken, Err: derr})
			return
		}
		logger.Debug("token", "msg", "deleted temporary token")
	}()

	return fn(ctx, tok)
}
