package browserid

import "errors"

var (
	ErrUnsupportedAlgorithm = errors.New("unsupported key algorithm")
	ErrInvalidPublicKey     = errors.New("invalid public key object")
	ErrKeyDestroyed         = errors.New("private key has been destroyed")
	ErrInvalidKey           = errors.New("key type not usable with DS signatures")
	ErrMissingAudience      = errors.New("missing audience")
	ErrMissingExpiry        = errors.New("missing expiry")
	ErrInvalidBundle        = errors.New("invalid assertion bundle")
)
