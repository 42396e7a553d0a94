package authenticator

import (
	"context"
	"errors"
	"fmt"

	"github.com/jrschumacher/fxa-oauth/internal/httputil"
)

// Kind tags which step of the sequence failed.
type Kind int

const (
	KindAuth Kind = iota + 1
	KindCertificate
	KindSigning
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindCertificate:
		return "certificate"
	case KindSigning:
		return "signing"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is checks against an *Error's kind.
var (
	ErrAuth        = errors.New("sign-in rejected")
	ErrCertificate = errors.New("certificate signing rejected")
	ErrSigning     = errors.New("assertion signing failed")
	ErrTimeout     = errors.New("authentication deadline exceeded")

	ErrMissingCredentials = errors.New("email and password are required")
	ErrInvalidAudience    = errors.New("audience URL must have a scheme and host")
)

func (k Kind) sentinel() error {
	switch k {
	case KindAuth:
		return ErrAuth
	case KindCertificate:
		return ErrCertificate
	case KindSigning:
		return ErrSigning
	case KindTimeout:
		return ErrTimeout
	default:
		return nil
	}
}

// Error is returned by Authenticate for every failure. Code and Errno carry
// the remote service's values when the failure came from the service.
type Error struct {
	Kind    Kind
	Code    int
	Errno   int
	Message string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes both the kind sentinel and the cause.
func (e *Error) Unwrap() []error {
	errs := []error{e.Kind.sentinel()}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// newError classifies err as kind unless the caller's deadline has passed,
// in which case it is a timeout regardless of which step noticed it.
func newError(ctx context.Context, kind Kind, err error) *Error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		kind = KindTimeout
	}

	var already *Error
	if errors.As(err, &already) && kind != KindTimeout {
		return already
	}

	e := &Error{Kind: kind, Message: err.Error(), Err: err}
	var apiErr *httputil.APIError
	if errors.As(err, &apiErr) {
		e.Code = apiErr.Code
		e.Errno = apiErr.Errno
		e.Message = apiErr.Message
	}
	if kind == KindTimeout {
		e.Message = "deadline exceeded before the assertion bundle was complete"
	}
	return e
}
