package fxa

import "errors"

var (
	ErrMissingEmail        = errors.New("email cannot be blank")
	ErrMissingPassword     = errors.New("password cannot be blank")
	ErrInvalidSessionToken = errors.New("invalid session token")
	ErrEmptyCertificate    = errors.New("certificate signing returned no certificate")
	ErrEmptySession        = errors.New("sign in returned no session token")
)
