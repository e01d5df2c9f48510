package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyrene-ai/cyrene-server/internal/utils/platformerrors"
)

func TestIssueAndVerify(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	token, err := issuer.Issue(context.Background(), 7, "alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := issuer.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "alice", claims.Subject)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenIssuer("secret-a", time.Hour).Issue(context.Background(), 7, "alice")
	require.NoError(t, err)

	_, err = NewTokenIssuer("secret-b", time.Hour).Verify(context.Background(), token)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeUnauthorized))
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", -time.Minute)
	token, err := issuer.Issue(context.Background(), 7, "alice")
	require.NoError(t, err)

	_, err = issuer.Verify(context.Background(), token)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeUnauthorized))
}

func TestDecodeUnverified(t *testing.T) {
	token, err := NewTokenIssuer("whatever", time.Hour).Issue(context.Background(), 42, "bob")
	require.NoError(t, err)

	claims, ok := DecodeUnverified(token)
	require.True(t, ok)
	assert.Equal(t, uint(42), claims.UserID)

	_, ok = DecodeUnverified("garbage")
	assert.False(t, ok)
}

func TestBcryptHasherRoundTrip(t *testing.T) {
	hasher := NewBcryptHasher()
	hash, err := hasher.Hash("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)
	assert.True(t, hasher.Compare(hash, "hunter2"))
	assert.False(t, hasher.Compare(hash, "hunter3"))
}
