package captcha

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyrene-ai/cyrene-server/internal/infrastructure/cache"
)

// peekAnswer reads the stored answer without consuming the challenge.
func peekAnswer(t *testing.T, store *cache.Memory, id string) string {
	t.Helper()
	answer, ok, err := store.Take(context.Background(), "captcha:"+id)
	require.NoError(t, err)
	require.True(t, ok, "challenge %s not in store", id)
	require.NoError(t, store.Put(context.Background(), "captcha:"+id, answer, time.Minute))
	return answer
}

func TestGenerateProducesImageAndStoresAnswer(t *testing.T) {
	store := cache.NewMemory()
	m := NewManager(store, 5*time.Minute)

	challenge, err := m.Generate(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, challenge.ID)

	var buf bytes.Buffer
	n, err := challenge.Image.WriteTo(&buf)
	require.NoError(t, err)
	assert.Greater(t, n, int64(0))

	answer := peekAnswer(t, store, challenge.ID)
	assert.Len(t, answer, codeLength)
	assert.Equal(t, strings.ToUpper(answer), answer)
}

func TestVerifyIsSingleUse(t *testing.T) {
	store := cache.NewMemory()
	m := NewManager(store, 5*time.Minute)

	challenge, err := m.Generate(context.Background())
	require.NoError(t, err)
	answer := peekAnswer(t, store, challenge.ID)

	ok, err := m.Verify(context.Background(), challenge.ID, answer)
	require.NoError(t, err)
	assert.True(t, ok)

	// The correct answer consumed the challenge.
	ok, err = m.Verify(context.Background(), challenge.ID, answer)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyWrongCodeDoesNotConsume(t *testing.T) {
	store := cache.NewMemory()
	m := NewManager(store, 5*time.Minute)

	challenge, err := m.Generate(context.Background())
	require.NoError(t, err)
	answer := peekAnswer(t, store, challenge.ID)

	wrong := "0000"
	if wrong == answer {
		wrong = "1111"
	}
	ok, err := m.Verify(context.Background(), challenge.ID, wrong)
	require.NoError(t, err)
	assert.False(t, ok)

	// The challenge survives a wrong guess until the TTL runs out.
	ok, err = m.Verify(context.Background(), challenge.ID, answer)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyCaseInsensitive(t *testing.T) {
	store := cache.NewMemory()
	m := NewManager(store, 5*time.Minute)

	challenge, err := m.Generate(context.Background())
	require.NoError(t, err)
	answer := peekAnswer(t, store, challenge.ID)

	ok, err := m.Verify(context.Background(), challenge.ID, strings.ToLower(answer))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyRejectsMalformedInput(t *testing.T) {
	store := cache.NewMemory()
	m := NewManager(store, 5*time.Minute)

	for _, tc := range []struct{ id, code string }{
		{"", "ABCD"},
		{"some-id", ""},
		{"some-id", "TOOLONG"},
	} {
		ok, err := m.Verify(context.Background(), tc.id, tc.code)
		require.NoError(t, err)
		assert.False(t, ok, "id=%q code=%q", tc.id, tc.code)
	}
}
