// Package browserid implements the signing side of the BrowserID protocol:
// ephemeral DSA key pairs, JWS-signed assertions and certificate bundles.
package browserid

import (
	"context"
	"crypto/dsa" //nolint:staticcheck // BrowserID certificates only carry DS keys
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
)

// Algorithm is the BrowserID key algorithm family.
type Algorithm string

const (
	// AlgorithmDS is the DSA key family ("DS" in BrowserID public key objects).
	AlgorithmDS Algorithm = "DS"
)

// KeyParams selects the algorithm family and key size of a generated key pair.
type KeyParams struct {
	Algorithm Algorithm
	KeySize   int
}

// DefaultKeyParams are the parameters the identity service expects: DS with a 128 bit size class.
var DefaultKeyParams = KeyParams{Algorithm: AlgorithmDS, KeySize: 128}

type dsaSize struct {
	sizes    dsa.ParameterSizes
	jwsAlg   string
	sigWidth int
}

var dsaSizes = map[int]dsaSize{
	128: {sizes: dsa.L1024N160, jwsAlg: "DS128", sigWidth: 20},
	256: {sizes: dsa.L2048N256, jwsAlg: "DS256", sigWidth: 32},
}

// Domain parameters are public and expensive to generate, so they are shared
// per process. Key material is never shared.
var (
	paramsMu    sync.Mutex
	paramsCache = map[int]*dsa.Parameters{}
)

func domainParameters(keySize int) (*dsa.Parameters, error) {
	paramsMu.Lock()
	defer paramsMu.Unlock()

	if p, ok := paramsCache[keySize]; ok {
		return p, nil
	}
	size, ok := dsaSizes[keySize]
	if !ok {
		return nil, fmt.Errorf("%w: DS key size %d", ErrUnsupportedAlgorithm, keySize)
	}
	p := new(dsa.Parameters)
	if err := dsa.GenerateParameters(p, rand.Reader, size.sizes); err != nil {
		return nil, fmt.Errorf("failed to generate DSA parameters: %w", err)
	}
	paramsCache[keySize] = p
	return p, nil
}

// PublicKeyObject is the wire form of a public key as accepted by the
// certificate signing endpoint.
type PublicKeyObject struct {
	Algorithm Algorithm `json:"algorithm"`
	Y         string    `json:"y"`
	P         string    `json:"p"`
	Q         string    `json:"q"`
	G         string    `json:"g"`
}

// PublicKey is the public half of an ephemeral key pair.
type PublicKey struct {
	key     dsa.PublicKey
	keySize int
}

// PrivateKey is the secret half of an ephemeral key pair.
type PrivateKey struct {
	key     *dsa.PrivateKey
	keySize int
}

// KeyPair holds a freshly generated key pair.
type KeyPair struct {
	Public  *PublicKey
	Private *PrivateKey
}

// GenerateKeyPair creates a new key pair for the given parameters.
func GenerateKeyPair(ctx context.Context, params KeyParams) (*KeyPair, error) {
	if params.Algorithm != AlgorithmDS {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, params.Algorithm)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	domain, err := domainParameters(params.KeySize)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	priv := &dsa.PrivateKey{PublicKey: dsa.PublicKey{Parameters: *domain}}
	if err := dsa.GenerateKey(priv, rand.Reader); err != nil {
		return nil, fmt.Errorf("failed to generate DSA key: %w", err)
	}

	return &KeyPair{
		Public:  &PublicKey{key: priv.PublicKey, keySize: params.KeySize},
		Private: &PrivateKey{key: priv, keySize: params.KeySize},
	}, nil
}

// SimpleObject returns the public key in its JSON exchange format.
func (k *PublicKey) SimpleObject() PublicKeyObject {
	return PublicKeyObject{
		Algorithm: AlgorithmDS,
		Y:         k.key.Y.Text(16),
		P:         k.key.P.Text(16),
		Q:         k.key.Q.Text(16),
		G:         k.key.G.Text(16),
	}
}

// ParsePublicKey converts a public key object back into a PublicKey.
func ParsePublicKey(obj PublicKeyObject) (*PublicKey, error) {
	if obj.Algorithm != AlgorithmDS {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, obj.Algorithm)
	}
	var pub dsa.PublicKey
	fields := []struct {
		dst **big.Int
		src string
	}{
		{&pub.Y, obj.Y}, {&pub.P, obj.P}, {&pub.Q, obj.Q}, {&pub.G, obj.G},
	}
	for _, f := range fields {
		n, ok := new(big.Int).SetString(f.src, 16)
		if !ok {
			return nil, ErrInvalidPublicKey
		}
		*f.dst = n
	}

	keySize := 0
	for size, s := range dsaSizes {
		if pub.Q.BitLen() == s.sigWidth*8 {
			keySize = size
		}
	}
	if keySize == 0 {
		return nil, fmt.Errorf("%w: q has %d bits", ErrUnsupportedAlgorithm, pub.Q.BitLen())
	}
	return &PublicKey{key: pub, keySize: keySize}, nil
}

// Equal reports whether two public keys hold the same key material.
func (k *PublicKey) Equal(other *PublicKey) bool {
	if k == nil || other == nil {
		return k == other
	}
	return k.key.Y.Cmp(other.key.Y) == 0 &&
		k.key.P.Cmp(other.key.P) == 0 &&
		k.key.Q.Cmp(other.key.Q) == 0 &&
		k.key.G.Cmp(other.key.G) == 0
}

// Destroy zeroes the secret exponent. The key cannot sign afterwards.
func (k *PrivateKey) Destroy() {
	if k == nil || k.key == nil {
		return
	}
	if k.key.X != nil {
		k.key.X.SetInt64(0)
	}
	k.key = nil
}

// Destroyed reports whether Destroy has been called.
func (k *PrivateKey) Destroyed() bool {
	return k == nil || k.key == nil
}
