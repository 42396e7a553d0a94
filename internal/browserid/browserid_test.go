package browserid

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKeyPair_Fresh(t *testing.T) {
	ctx := context.Background()
	a, err := GenerateKeyPair(ctx, DefaultKeyParams)
	require.NoError(t, err)
	b, err := GenerateKeyPair(ctx, DefaultKeyParams)
	require.NoError(t, err)

	assert.False(t, a.Public.Equal(b.Public), "key pairs must not be reused")

	objA := a.Public.SimpleObject()
	objB := b.Public.SimpleObject()
	assert.Equal(t, AlgorithmDS, objA.Algorithm)
	assert.Equal(t, objA.P, objB.P, "domain parameters are shared")
	assert.NotEqual(t, objA.Y, objB.Y)
}

func TestGenerateKeyPair_Unsupported(t *testing.T) {
	_, err := GenerateKeyPair(context.Background(), KeyParams{Algorithm: "RS", KeySize: 64})
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)

	_, err = GenerateKeyPair(context.Background(), KeyParams{Algorithm: AlgorithmDS, KeySize: 512})
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}

func TestGenerateKeyPair_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := GenerateKeyPair(ctx, DefaultKeyParams)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPublicKeyObject_RoundTrip(t *testing.T) {
	kp, err := GenerateKeyPair(context.Background(), DefaultKeyParams)
	require.NoError(t, err)

	raw, err := json.Marshal(kp.Public.SimpleObject())
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"algorithm":"DS"`)

	var obj PublicKeyObject
	require.NoError(t, json.Unmarshal(raw, &obj))
	pub, err := ParsePublicKey(obj)
	require.NoError(t, err)
	assert.True(t, pub.Equal(kp.Public))

	obj.Y = "not-hex"
	_, err = ParsePublicKey(obj)
	assert.ErrorIs(t, err, ErrInvalidPublicKey)
}

func TestSignAssertion(t *testing.T) {
	kp, err := GenerateKeyPair(context.Background(), DefaultKeyParams)
	require.NoError(t, err)

	exp := time.Now().Add(5 * time.Minute)
	signed, err := SignAssertion(nil, AssertionParams{
		Audience:  "https://oauth.example.com",
		ExpiresAt: exp,
	}, kp.Private)
	require.NoError(t, err)
	assert.Len(t, strings.Split(signed, "."), 3)

	header, _, _ := strings.Cut(signed, ".")
	assert.Equal(t, "eyJhbGciOiJEUzEyOCJ9", header, `header must be {"alg":"DS128"}`)

	claims, err := VerifyAssertion(signed, kp.Public)
	require.NoError(t, err)
	assert.Equal(t, "https://oauth.example.com", claims.Audience)
	assert.Equal(t, exp.UnixMilli(), claims.ExpiresAt)

	other, err := GenerateKeyPair(context.Background(), DefaultKeyParams)
	require.NoError(t, err)
	_, err = VerifyAssertion(signed, other.Public)
	assert.Error(t, err)
}

func TestSignAssertion_Validation(t *testing.T) {
	kp, err := GenerateKeyPair(context.Background(), DefaultKeyParams)
	require.NoError(t, err)

	_, err = SignAssertion(nil, AssertionParams{ExpiresAt: time.Now()}, kp.Private)
	assert.ErrorIs(t, err, ErrMissingAudience)

	_, err = SignAssertion(nil, AssertionParams{Audience: "https://a.example"}, kp.Private)
	assert.ErrorIs(t, err, ErrMissingExpiry)

	kp.Private.Destroy()
	assert.True(t, kp.Private.Destroyed())
	_, err = SignAssertion(nil, AssertionParams{Audience: "https://a.example", ExpiresAt: time.Now()}, kp.Private)
	assert.ErrorIs(t, err, ErrKeyDestroyed)
}

func TestBundle(t *testing.T) {
	assert.Equal(t, "cert~assertion", Bundle([]string{"cert"}, "assertion"))
	assert.Equal(t, "a~b~c", Bundle([]string{"a", "b"}, "c"))

	u, err := ParseBundle("a~b~c")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, u.Certificates)
	assert.Equal(t, "c", u.Assertion)

	for _, bad := range []string{"", "only", "a~", "~b"} {
		_, err := ParseBundle(bad)
		assert.ErrorIs(t, err, ErrInvalidBundle, bad)
	}
}

func TestParseClaims(t *testing.T) {
	kp, err := GenerateKeyPair(context.Background(), DefaultKeyParams)
	require.NoError(t, err)

	signed, err := SignAssertion(map[string]any{"principal": map[string]any{"email": "uid@example.com"}},
		AssertionParams{Audience: "https://a.example", ExpiresAt: time.UnixMilli(1700000000123), Issuer: "api.example"},
		kp.Private)
	require.NoError(t, err)

	claims, err := ParseClaims(signed)
	require.NoError(t, err)
	assert.Equal(t, "api.example", claims.Issuer)
	assert.Equal(t, "uid@example.com", claims.Principal["email"])
	assert.Equal(t, int64(1700000000123), claims.Expiry().UnixMilli())

	_, err = ParseClaims("invalid.jws.token")
	assert.Error(t, err)
}
