package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/userdir/internal/models"
)

func newTestManager(secret string) *TokenManager {
	return NewTokenManager(secret, "userdir-test", time.Hour)
}

func TestTokenManager_GenerateAndParse(t *testing.T) {
	t.Parallel()

	tm := newTestManager("super-secret")
	tok, err := tm.Generate(models.User{Login: "alice"})
	require.NoError(t, err)
	require.NotEmpty(t, tok.AccessToken)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.ExpiresAt, 2*time.Second)

	id, err := tm.Parse(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", id.Login)
	assert.False(t, id.IssuedAt.IsZero())
}

func TestTokenManager_Expired(t *testing.T) {
	t.Parallel()

	tm := newTestManager("secret")
	issued := time.Now().Add(-2 * time.Hour)
	tm.now = func() time.Time { return issued }
	tok, err := tm.Generate(models.User{Login: "u1"})
	require.NoError(t, err)

	tm.now = time.Now
	_, err = tm.Parse(tok.AccessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenManager_ValidJustBeforeExpiry(t *testing.T) {
	t.Parallel()

	tm := newTestManager("secret")
	issued := time.Now().Add(-59 * time.Minute)
	tm.now = func() time.Time { return issued }
	tok, err := tm.Generate(models.User{Login: "u1"})
	require.NoError(t, err)

	tm.now = time.Now
	_, err = tm.Parse(tok.AccessToken)
	assert.NoError(t, err)
}

func TestTokenManager_AlteredSignature(t *testing.T) {
	t.Parallel()

	tm := newTestManager("secret")
	tok, err := tm.Generate(models.User{Login: "u1"})
	require.NoError(t, err)

	parts := strings.Split(tok.AccessToken, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	// Change the first character; the last one may only carry padding bits.
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = tm.Parse(tampered)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := newTestManager("right-secret").Generate(models.User{Login: "u2"})
	require.NoError(t, err)

	_, err = newTestManager("wrong-secret").Parse(tok.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestTokenManager_Malformed(t *testing.T) {
	t.Parallel()

	tm := newTestManager("k")
	for _, raw := range []string{"", "not-a-jwt", "not.a.jwt", "a.b"} {
		_, err := tm.Parse(raw)
		assert.ErrorIs(t, err, ErrMalformedToken, "raw=%q", raw)
	}
}

func TestTokenManager_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	tm := newTestManager("secret")
	claims := Claims{
		Username: "mallory",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "userdir-test",
			Subject:   "mallory",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = tm.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = tm.Parse(unsigned)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestTokenManager_WrongIssuer(t *testing.T) {
	t.Parallel()

	tok, err := NewTokenManager("secret", "someone-else", time.Hour).Generate(models.User{Login: "u3"})
	require.NoError(t, err)

	_, err = newTestManager("secret").Parse(tok.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidClaims)
}
