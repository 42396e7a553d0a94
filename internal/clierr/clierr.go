// Package clierr maps errors from the service clients to user facing
// failures and process exit codes.
package clierr

import (
	"context"
	"errors"
	"fmt"

	"github.com/jrschumacher/fxa-oauth/internal/authenticator"
	"github.com/jrschumacher/fxa-oauth/internal/httputil"
	"github.com/jrschumacher/fxa-oauth/internal/logger"
	"github.com/jrschumacher/fxa-oauth/internal/prompt"
	"github.com/jrschumacher/fxa-oauth/internal/session"
	"github.com/jrschumacher/fxa-oauth/internal/validation"
)

// Exit codes
const (
	ExitSuccess     = 0
	ExitGeneral     = 1
	ExitUsage       = 2
	ExitToken       = 3
	ExitTimeout     = 5
	ExitInterrupted = 130
)

// Kind classifies a failure.
type Kind int

const (
	KindWeird Kind = iota
	KindRequired
	KindInvalid
	KindAuth
	KindOAuth
	KindTimeout
	KindInterrupted
	KindToken
)

// Codes and errnos for failures that did not come from a server.
const (
	CodeRequired    = "EREQUIRED"
	CodeInvalid     = "EINVALID"
	CodeAuth        = "EAUTH"
	CodeOAuth       = "EOAUTH"
	CodeTimeout     = "ETIMEOUT"
	CodeInterrupted = "EINTERRUPTED"
	CodeToken       = "ETOKEN"
	CodeWeird       = "EWEIRD"

	ErrnoRequired = 100
	ErrnoWeird    = 999
)

// Error is a classified failure.
type Error struct {
	Kind    Kind
	Code    string
	Errno   int
	Message string
	// Token is set for KindToken: the access token left on the server
	Token string
	Err   error
}

func (e *Error) Error() string {
	if e.Errno != 0 {
		return fmt.Sprintf("%s (%s, errno %d)", e.Message, e.Code, e.Errno)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ExitCode returns the process exit code for the failure.
func (e *Error) ExitCode() int {
	switch e.Kind {
	case KindRequired, KindInvalid:
		return ExitUsage
	case KindTimeout:
		return ExitTimeout
	case KindInterrupted:
		return ExitInterrupted
	case KindToken:
		return ExitToken
	default:
		return ExitGeneral
	}
}

// Required returns a KindRequired error for a missing value.
func Required(what string) *Error {
	return &Error{Kind: KindRequired, Code: CodeRequired, Errno: ErrnoRequired, Message: what + " is required"}
}

// Translate classifies err. A token cleanup failure joined to another
// error does not hide that error; see Handle.
func Translate(err error) *Error {
	if err == nil {
		return nil
	}
	rest, cleanup := splitCleanup(err)
	if rest == nil && cleanup != nil {
		return &Error{
			Kind:    KindToken,
			Code:    CodeToken,
			Message: "temporary token was not deleted",
			Token:   cleanup.Token,
			Err:     cleanup,
		}
	}
	return classify(rest)
}

func classify(err error) *Error {
	var cliErr *Error
	if errors.As(err, &cliErr) {
		return cliErr
	}

	if errors.Is(err, context.Canceled) {
		return &Error{Kind: KindInterrupted, Code: CodeInterrupted, Message: "interrupted", Err: err}
	}

	if errors.Is(err, prompt.ErrRequired) || errors.Is(err, authenticator.ErrMissingCredentials) {
		e := Required("a value")
		e.Message = err.Error()
		e.Err = err
		return e
	}

	var authErr *authenticator.Error
	if errors.As(err, &authErr) {
		switch authErr.Kind {
		case authenticator.KindTimeout:
			return &Error{Kind: KindTimeout, Code: CodeTimeout, Message: authErr.Message, Err: err}
		case authenticator.KindAuth, authenticator.KindCertificate:
			return &Error{Kind: KindAuth, Code: CodeAuth, Errno: authErr.Errno, Message: authErr.Message, Err: err}
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Code: CodeTimeout, Message: "request timed out", Err: err}
	}

	var apiErr *httputil.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.FromAuthServer():
			return &Error{Kind: KindAuth, Code: CodeAuth, Errno: apiErr.Errno, Message: apiErr.Message, Err: err}
		case apiErr.FromOAuthServer():
			return &Error{Kind: KindOAuth, Code: CodeOAuth, Errno: apiErr.Errno, Message: apiErr.Message, Err: err}
		}
	}

	var invalid validation.Errors
	if errors.As(err, &invalid) {
		return &Error{Kind: KindInvalid, Code: CodeInvalid, Message: invalid.Error(), Err: err}
	}

	return &Error{Kind: KindWeird, Code: CodeWeird, Errno: ErrnoWeird, Message: err.Error(), Err: err}
}

// splitCleanup separates a token cleanup failure from the error it was
// joined to.
func splitCleanup(err error) (rest error, cleanup *session.CleanupError) {
	if c, ok := err.(*session.CleanupError); ok {
		return nil, c
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return err, nil
	}
	var others []error
	for _, e := range joined.Unwrap() {
		if c, ok := e.(*session.CleanupError); ok {
			cleanup = c
			continue
		}
		others = append(others, e)
	}
	if cleanup == nil {
		return err, nil
	}
	return errors.Join(others...), cleanup
}

// Handle logs err and returns the exit code for it.
func Handle(err error) int {
	if err == nil {
		return ExitSuccess
	}
	_, cleanup := splitCleanup(err)
	e := Translate(err)

	switch e.Kind {
	case KindRequired:
		logger.Error("missing required value", "code", e.Code, "errno", e.Errno, "error", e.Message)
	case KindInvalid:
		logger.Error("invalid input", "code", e.Code, "error", e.Message)
	case KindAuth:
		logger.Error("authentication failed", "code", e.Code, "errno", e.Errno, "error", e.Message)
	case KindOAuth:
		logger.Error("oauth server rejected the request", "code", e.Code, "errno", e.Errno, "error", e.Message)
	case KindTimeout:
		logger.Error("request timed out", "code", e.Code, "error", e.Message)
	case KindInterrupted:
		logger.Warn("interrupted", "code", e.Code)
	case KindToken:
		// logged below
	default:
		logger.Error("unexpected error", "code", e.Code, "errno", e.Errno, "error", e.Message)
	}

	if cleanup != nil {
		logger.Error("temporary token could not be deleted, delete it manually",
			"code", CodeToken, "token", cleanup.Token, "error", cleanup.Err)
		return ExitToken
	}
	return e.ExitCode()
}
