package session

import (
	"context"
	"errors"
	"testing"

	"github.com/jrschumacher/fxa-oauth/internal/oauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIssuer struct {
	getErr     error
	destroyErr error

	issued       []string
	destroyed    []string
	destroyCtxOK bool
}

func (f *fakeIssuer) GetToken(_ context.Context, clientID, scope string) (*oauth.Token, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.issued = append(f.issued, clientID+"/"+scope)
	return &oauth.Token{AccessToken: "temp-token"}, nil
}

func (f *fakeIssuer) DestroyToken(ctx context.Context, tok string) error {
	f.destroyCtxOK = ctx.Err() == nil
	if f.destroyErr != nil {
		return f.destroyErr
	}
	f.destroyed = append(f.destroyed, tok)
	return nil
}

func TestTempToken_DestroyedOnSuccess(t *testing.T) {
	issuer := &fakeIssuer{}
	var seen string
	err := TempToken{Issuer: issuer, ClientID: "cli", Scope: "oauth"}.Do(context.Background(),
		func(_ context.Context, tok *oauth.Token) error {
			seen = tok.AccessToken
			return nil
		})
	require.NoError(t, err)
	assert.Equal(t, "temp-token", seen)
	assert.Equal(t, []string{"cli/oauth"}, issuer.issued)
	assert.Equal(t, []string{"temp-token"}, issuer.destroyed)
}

func TestTempToken_DestroyedOnError(t *testing.T) {
	issuer := &fakeIssuer{}
	boom := errors.New("boom")
	err := TempToken{Issuer: issuer, ClientID: "cli", Scope: "oauth"}.Do(context.Background(),
		func(context.Context, *oauth.Token) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"temp-token"}, issuer.destroyed)
}

func TestTempToken_DestroyedAfterCancel(t *testing.T) {
	issuer := &fakeIssuer{}
	ctx, cancel := context.WithCancel(context.Background())
	err := TempToken{Issuer: issuer, ClientID: "cli", Scope: "oauth"}.Do(ctx,
		func(ctx context.Context, _ *oauth.Token) error {
			cancel()
			return ctx.Err()
		})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"temp-token"}, issuer.destroyed)
	assert.True(t, issuer.destroyCtxOK, "cleanup must not inherit the cancellation")
}

func TestTempToken_DestroyedOnPanic(t *testing.T) {
	issuer := &fakeIssuer{}
	assert.Panics(t, func() {
		_ = TempToken{Issuer: issuer, ClientID: "cli", Scope: "oauth"}.Do(context.Background(),
			func(context.Context, *oauth.Token) error { panic("boom") })
	})
	assert.Equal(t, []string{"temp-token"}, issuer.destroyed)
}

func TestTempToken_CleanupFailure(t *testing.T) {
	issuer := &fakeIssuer{destroyErr: errors.New("network down")}
	err := TempToken{Issuer: issuer, ClientID: "cli", Scope: "oauth"}.Do(context.Background(),
		func(context.Context, *oauth.Token) error { return nil })
	require.ErrorIs(t, err, ErrTokenNotCleaned)

	var cleanup *CleanupError
	require.True(t, errors.As(err, &cleanup))
	assert.Equal(t, "temp-token", cleanup.Token)
}

func TestTempToken_IssueFailure(t *testing.T) {
	issuer := &fakeIssuer{getErr: errors.New("rejected")}
	called := false
	err := TempToken{Issuer: issuer, ClientID: "cli", Scope: "oauth"}.Do(context.Background(),
		func(context.Context, *oauth.Token) error { called = true; return nil })
	assert.Error(t, err)
	assert.False(t, called)
	assert.Empty(t, issuer.destroyed)
}
