package fxa

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/pbkdf2"
)

const (
	kwPrefix           = "identity.mozilla.com/picl/v1/"
	quickStretchRounds = 1000
	keyLen             = 32
)

func kw(name string) []byte {
	return []byte(kwPrefix + name)
}

func kwe(name, email string) []byte {
	return []byte(kwPrefix + name + ":" + email)
}

// deriveAuthPW stretches the password the way the account server expects,
// so the raw password never leaves the process.
func deriveAuthPW(email, password string) (string, error) {
	quickStretched := pbkdf2.Key([]byte(password), kwe("quickStretch", email), quickStretchRounds, keyLen, sha256.New)
	authPW, err := hkdfExpand(quickStretched, kw("authPW"), keyLen)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(authPW), nil
}

// tokenCredentials are the Hawk id and key derived from a session token.
type tokenCredentials struct {
	ID  string
	Key []byte
}

func deriveTokenCredentials(tokenHex, name string) (*tokenCredentials, error) {
	token, err := hex.DecodeString(tokenHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSessionToken, err)
	}
	out, err := hkdfExpand(token, kw(name), 2*keyLen)
	if err != nil {
		return nil, err
	}
	return &tokenCredentials{
		ID:  hex.EncodeToString(out[:keyLen]),
		Key: out[keyLen:],
	}, nil
}

func hkdfExpand(secret, info []byte, n int) ([]byte, error) {
	out := make([]byte, n)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, info), out); err != nil {
		return nil, fmt.Errorf("hkdf: %w", err)
	}
	return out, nil
}
