package ticket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignerIssueAndParse(t *testing.T) {
	signer := NewSigner("secret", time.Minute)
	token, expiresAt, err := signer.Issue("user-1", "student:user-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := signer.Parse(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, "student:user-1", claims.Scope)
	require.WithinDuration(t, expiresAt, claims.ExpiresAt, time.Second)
}

func TestSignerRejectsExpiredAndTampered(t *testing.T) {
	signer := NewSigner("secret", time.Minute)
	token, _, err := signer.Issue("user-1", "admin:user-1")
	require.NoError(t, err)

	signer.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = signer.Parse(token)
	require.ErrorIs(t, err, ErrExpired)

	other := NewSigner("other", time.Minute)
	_, err = other.Parse(token)
	require.ErrorIs(t, err, ErrSignature)

	_, err = signer.Parse("a.b")
	require.ErrorIs(t, err, ErrMalformed)
}

func TestSignerRequiresSecret(t *testing.T) {
	_, _, err := NewSigner("", time.Minute).Issue("u", "s")
	require.Error(t, err)
}
