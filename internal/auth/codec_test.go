package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-signing-key"

func testCodec(t *testing.T) *Codec {
	t.Helper()
	codec, err := NewCodec(testSecret, "HS256", testIssuer, testAudience)
	require.NoError(t, err)
	return codec
}

func signedToken(t *testing.T, codec *Codec, scope Scope, ttl time.Duration) string {
	t.Helper()
	claims := NewTokenClaims(testUser(), scope, testIssuer, testAudience)
	claims.ID = uuid.NewString()
	claims.stampTimes(time.Now(), ttl)

	token, err := codec.Encode(claims)
	require.NoError(t, err)
	return token
}

func TestNewCodecRejectsNonHMAC(t *testing.T) {
	_, err := NewCodec(testSecret, "RS256", testIssuer, testAudience)
	require.Error(t, err)

	_, err = NewCodec(testSecret, "bogus", testIssuer, testAudience)
	require.Error(t, err)
}

func TestCodecRoundTrip(t *testing.T) {
	codec := testCodec(t)
	token := signedToken(t, codec, ScopeAccessToken, time.Minute)

	claims, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "jdoe", claims.PreferredUsername)
	assert.Equal(t, ScopeAccessToken, claims.Scope)
	assert.NotEmpty(t, claims.ID)
}

func TestCodecDecodeExpired(t *testing.T) {
	codec := testCodec(t)
	token := signedToken(t, codec, ScopeAccessToken, -time.Minute)

	_, err := codec.Decode(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

// An expired token with a foreign audience must still report expiry, not
// a claims problem.
func TestCodecExpiryWinsOverAudience(t *testing.T) {
	other, err := NewCodec(testSecret, "HS256", testIssuer, "https://elsewhere.example/login")
	require.NoError(t, err)

	claims := NewTokenClaims(testUser(), ScopeAccessToken, testIssuer, "https://elsewhere.example/login")
	claims.ID = uuid.NewString()
	claims.stampTimes(time.Now(), -time.Minute)
	token, err := other.Encode(claims)
	require.NoError(t, err)

	_, err = testCodec(t).Decode(token)
	require.ErrorIs(t, err, ErrTokenExpired)
	assert.NotErrorIs(t, err, ErrClaimsInvalid)
}

func TestCodecDecodeWrongAudience(t *testing.T) {
	other, err := NewCodec(testSecret, "HS256", testIssuer, "https://elsewhere.example/login")
	require.NoError(t, err)

	claims := NewTokenClaims(testUser(), ScopeAccessToken, testIssuer, "https://elsewhere.example/login")
	claims.ID = uuid.NewString()
	claims.stampTimes(time.Now(), time.Minute)
	token, err := other.Encode(claims)
	require.NoError(t, err)

	_, err = testCodec(t).Decode(token)
	require.ErrorIs(t, err, ErrClaimsInvalid)
}

func TestCodecDecodeWrongIssuer(t *testing.T) {
	other, err := NewCodec(testSecret, "HS256", "https://elsewhere.example", testAudience)
	require.NoError(t, err)

	claims := NewTokenClaims(testUser(), ScopeAccessToken, "https://elsewhere.example", testAudience)
	claims.ID = uuid.NewString()
	claims.stampTimes(time.Now(), time.Minute)
	token, err := other.Encode(claims)
	require.NoError(t, err)

	_, err = testCodec(t).Decode(token)
	require.ErrorIs(t, err, ErrClaimsInvalid)
}

func TestCodecDecodeWrongKey(t *testing.T) {
	other, err := NewCodec("some-other-key", "HS256", testIssuer, testAudience)
	require.NoError(t, err)
	token := signedToken(t, other, ScopeAccessToken, time.Minute)

	_, err = testCodec(t).Decode(token)
	require.ErrorIs(t, err, ErrSignatureInvalid)
}

// A forged token that is also past its window must read as a signature
// failure; expiry is only meaningful for tokens this server signed.
func TestCodecSignatureWinsOverExpiry(t *testing.T) {
	other, err := NewCodec("some-other-key", "HS256", testIssuer, testAudience)
	require.NoError(t, err)
	token := signedToken(t, other, ScopeAccessToken, -time.Minute)

	_, err = testCodec(t).Decode(token)
	require.ErrorIs(t, err, ErrSignatureInvalid)
	assert.NotErrorIs(t, err, ErrTokenExpired)
}

func TestCodecDecodeTampered(t *testing.T) {
	codec := testCodec(t)
	token := signedToken(t, codec, ScopeAccessToken, time.Minute)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	sig := parts[2]
	if strings.HasPrefix(sig, "A") {
		sig = "B" + sig[1:]
	} else {
		sig = "A" + sig[1:]
	}
	tampered := parts[0] + "." + parts[1] + "." + sig

	_, err := codec.Decode(tampered)
	require.ErrorIs(t, err, ErrSignatureInvalid)
}

func TestCodecDecodeGarbage(t *testing.T) {
	_, err := testCodec(t).Decode("not.a.token")
	require.Error(t, err)
}

func TestCodecDecodeIncompleteClaims(t *testing.T) {
	codec := testCodec(t)

	claims := NewTokenClaims(testUser(), ScopeAccessToken, testIssuer, testAudience)
	claims.ID = uuid.NewString()
	claims.PreferredUsername = ""
	claims.stampTimes(time.Now(), time.Minute)
	token, err := codec.Encode(claims)
	require.NoError(t, err)

	_, err = codec.Decode(token)
	require.ErrorIs(t, err, ErrClaimsInvalid)
}

func TestResetTokenRoundTrip(t *testing.T) {
	codec := testCodec(t)

	token, err := codec.EncodeResetToken("jdoe@example.com", time.Hour)
	require.NoError(t, err)

	email, err := codec.DecodeResetToken(token)
	require.NoError(t, err)
	assert.Equal(t, "jdoe@example.com", email)
}

func TestResetTokenExpired(t *testing.T) {
	codec := testCodec(t)

	token, err := codec.EncodeResetToken("jdoe@example.com", -time.Hour)
	require.NoError(t, err)

	_, err = codec.DecodeResetToken(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

// Reset tokens are not interchangeable with session tokens: the strict
// decoder rejects them outright.
func TestResetTokenRejectedBySessionDecoder(t *testing.T) {
	codec := testCodec(t)

	token, err := codec.EncodeResetToken("jdoe@example.com", time.Hour)
	require.NoError(t, err)

	_, err = codec.Decode(token)
	require.Error(t, err)
}
