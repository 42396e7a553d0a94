package browserid

import (
	"crypto"
	"crypto/dsa" //nolint:staticcheck
	"crypto/rand"
	"crypto/sha1" //nolint:gosec // DS128 is defined over SHA-1
	"crypto/sha256"
	"errors"
	"fmt"
	"math/big"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
)

// JWS algorithm names used in BrowserID headers.
const (
	DS128 jwa.SignatureAlgorithm = "DS128"
	DS256 jwa.SignatureAlgorithm = "DS256"
)

func init() {
	for _, alg := range []jwa.SignatureAlgorithm{DS128, DS256} {
		jwa.RegisterSignatureAlgorithm(alg)
		jws.RegisterSigner(alg, jws.SignerFactoryFn(func() (jws.Signer, error) {
			return &dsSigner{alg: alg}, nil
		}))
		jws.RegisterVerifier(alg, jws.VerifierFactoryFn(func() (jws.Verifier, error) {
			return &dsVerifier{alg: alg}, nil
		}))
	}
}

func jwsAlgorithm(keySize int) (jwa.SignatureAlgorithm, error) {
	s, ok := dsaSizes[keySize]
	if !ok {
		return "", fmt.Errorf("%w: DS key size %d", ErrUnsupportedAlgorithm, keySize)
	}
	return jwa.SignatureAlgorithm(s.jwsAlg), nil
}

func algParams(alg jwa.SignatureAlgorithm) (crypto.Hash, int, error) {
	switch alg {
	case DS128:
		return crypto.SHA1, dsaSizes[128].sigWidth, nil
	case DS256:
		return crypto.SHA256, dsaSizes[256].sigWidth, nil
	default:
		return 0, 0, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, alg)
	}
}

func digest(h crypto.Hash, data []byte) []byte {
	if h == crypto.SHA1 {
		sum := sha1.Sum(data) //nolint:gosec
		return sum[:]
	}
	sum := sha256.Sum256(data)
	return sum[:]
}

type dsSigner struct {
	alg jwa.SignatureAlgorithm
}

func (s *dsSigner) Algorithm() jwa.SignatureAlgorithm {
	return s.alg
}

func (s *dsSigner) Sign(payload []byte, key interface{}) ([]byte, error) {
	var priv *dsa.PrivateKey
	switch k := key.(type) {
	case *PrivateKey:
		if k.Destroyed() {
			return nil, ErrKeyDestroyed
		}
		priv = k.key
	case *dsa.PrivateKey:
		priv = k
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidKey, key)
	}

	h, width, err := algParams(s.alg)
	if err != nil {
		return nil, err
	}
	r, sig, err := dsa.Sign(rand.Reader, priv, digest(h, payload))
	if err != nil {
		return nil, fmt.Errorf("failed to sign: %w", err)
	}

	// fixed width r || s
	out := make([]byte, 2*width)
	r.FillBytes(out[:width])
	sig.FillBytes(out[width:])
	return out, nil
}

type dsVerifier struct {
	alg jwa.SignatureAlgorithm
}

func (v *dsVerifier) Verify(payload, signature []byte, key interface{}) error {
	var pub *dsa.PublicKey
	switch k := key.(type) {
	case *PublicKey:
		pub = &k.key
	case *dsa.PublicKey:
		pub = k
	default:
		return fmt.Errorf("%w: %T", ErrInvalidKey, key)
	}

	h, width, err := algParams(v.alg)
	if err != nil {
		return err
	}
	if len(signature) != 2*width {
		return errors.New("invalid DS signature length")
	}
	r := new(big.Int).SetBytes(signature[:width])
	s := new(big.Int).SetBytes(signature[width:])
	if !dsa.Verify(pub, digest(h, payload), r, s) {
		return errors.New("DS signature verification failed")
	}
	return nil
}
