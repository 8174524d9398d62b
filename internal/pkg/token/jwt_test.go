package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/culturecart/accounts-api/internal/core/domain"
)

func aliceClaims() Claims {
	return ClaimsFor(&domain.User{
		ID:       "65f1c0ffee0000000000beef",
		Username: "alice",
		Email:    "alice@example.com",
		Role:     domain.RoleUser,
	})
}

func TestJWT_Roundtrip(t *testing.T) {
	j := NewJWT("secret")

	signed, err := j.Issue(aliceClaims())
	require.NoError(t, err)

	got, err := j.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "65f1c0ffee0000000000beef", got.UserID)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Equal(t, domain.RoleUser, got.Role)
	assert.Equal(t, got.UserID, got.Subject)
}

func TestJWT_DefaultTTL(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	j := NewJWT("secret", WithClock(func() time.Time { return now }))

	signed, err := j.Issue(aliceClaims())
	require.NoError(t, err)

	got, err := j.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, now.Unix(), got.IssuedAt.Unix())
	assert.Equal(t, now.Add(7*24*time.Hour).Unix(), got.ExpiresAt.Unix())
}

func TestJWT_LongLivedTTL(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	j := NewJWT("secret", WithClock(func() time.Time { return now }))

	signed, err := j.IssueLongLived(aliceClaims())
	require.NoError(t, err)

	got, err := j.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, now.Add(30*24*time.Hour).Unix(), got.ExpiresAt.Unix())
}

func TestJWT_Expired(t *testing.T) {
	issuedAt := time.Now().Add(-8 * 24 * time.Hour)
	issuer := NewJWT("secret", WithClock(func() time.Time { return issuedAt }))

	signed, err := issuer.Issue(aliceClaims())
	require.NoError(t, err)

	_, err = NewJWT("secret").Verify(signed)
	require.ErrorIs(t, err, domain.ErrTokenExpired)
	assert.NotErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestJWT_LongLivedOutlivesDefault(t *testing.T) {
	issuedAt := time.Now().Add(-8 * 24 * time.Hour)
	issuer := NewJWT("secret", WithClock(func() time.Time { return issuedAt }))

	signed, err := issuer.IssueLongLived(aliceClaims())
	require.NoError(t, err)

	_, err = NewJWT("secret").Verify(signed)
	require.NoError(t, err)
}

func TestJWT_WrongSecret(t *testing.T) {
	signed, err := NewJWT("secret").Issue(aliceClaims())
	require.NoError(t, err)

	_, err = NewJWT("other").Verify(signed)
	require.ErrorIs(t, err, domain.ErrTokenInvalid)
	assert.NotErrorIs(t, err, domain.ErrTokenExpired)
}

func TestJWT_TamperedPayload(t *testing.T) {
	j := NewJWT("secret")
	signed, err := j.Issue(aliceClaims())
	require.NoError(t, err)

	adminClaims := aliceClaims()
	adminClaims.Role = domain.RoleAdmin
	forged, err := NewJWT("attacker").Issue(adminClaims)
	require.NoError(t, err)

	// Graft the forged payload onto the genuine signature.
	orig := strings.Split(signed, ".")
	fake := strings.Split(forged, ".")
	tampered := orig[0] + "." + fake[1] + "." + orig[2]

	_, err = j.Verify(tampered)
	require.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestJWT_RejectsOtherAlgorithms(t *testing.T) {
	claims := aliceClaims()
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = NewJWT("secret").Verify(none)
	require.ErrorIs(t, err, domain.ErrTokenInvalid)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = NewJWT("secret").Verify(hs512)
	require.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestJWT_Garbage(t *testing.T) {
	_, err := NewJWT("secret").Verify("not-a-token")
	require.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestJWT_MissingSubject(t *testing.T) {
	j := NewJWT("secret")
	signed, err := j.Issue(Claims{Username: "ghost"})
	require.NoError(t, err)

	_, err = j.Verify(signed)
	require.ErrorIs(t, err, domain.ErrTokenInvalid)
}
