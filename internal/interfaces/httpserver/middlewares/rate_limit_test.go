package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyrene-ai/cyrene-server/internal/infrastructure/auth"
	"github.com/cyrene-ai/cyrene-server/internal/infrastructure/cache"
)

func TestParseQuota(t *testing.T) {
	q, err := ParseQuota("15/minute")
	require.NoError(t, err)
	assert.Equal(t, int64(15), q.Count)
	assert.Equal(t, time.Minute, q.Period)

	q, err = ParseQuota("80/second")
	require.NoError(t, err)
	assert.Equal(t, int64(80), q.Count)
	assert.Equal(t, time.Second, q.Period)

	for _, bad := range []string{"", "15", "/minute", "x/minute", "15/fortnight", "0/minute", "-3/second"} {
		_, err := ParseQuota(bad)
		assert.Error(t, err, "quota %q should fail", bad)
	}
}

func newLimiterContext(t *testing.T) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/send_message", nil)
	c.Request.RemoteAddr = "10.0.0.9:52311"
	return c
}

func TestLimiterKeyRemoteAddr(t *testing.T) {
	c := newLimiterContext(t)
	assert.Equal(t, "10.0.0.9", LimiterKey(c))
}

func TestLimiterKeyForwardedFor(t *testing.T) {
	c := newLimiterContext(t)
	c.Request.Header.Set("X-Forwarded-For", "1.2.3.4, 5.6.7.8")
	assert.Equal(t, "1.2.3.4", LimiterKey(c))
}

func TestLimiterKeyBearerOverridesAddress(t *testing.T) {
	c := newLimiterContext(t)
	c.Request.Header.Set("X-Forwarded-For", "1.2.3.4")

	// The limiter never verifies the signature, so a token signed with any
	// secret keys the counter by its user_id claim.
	issuer := auth.NewTokenIssuer("unrelated-secret", time.Hour)
	token, err := issuer.Issue(context.Background(), 42, "someone")
	require.NoError(t, err)
	c.Request.Header.Set("Authorization", "Bearer "+token)

	assert.Equal(t, "42", LimiterKey(c))
}

func TestLimiterKeyGarbageBearerFallsBack(t *testing.T) {
	c := newLimiterContext(t)
	c.Request.Header.Set("X-Forwarded-For", "1.2.3.4")
	c.Request.Header.Set("Authorization", "Bearer not-a-token")
	assert.Equal(t, "1.2.3.4", LimiterKey(c))
}

func limiterEngine(store cache.CounterStore, quota Quota) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.POST("/send_message", RateLimitMiddleware(store, quota, zerolog.Nop()), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return engine
}

func doRequest(engine *gin.Engine) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/send_message", nil)
	req.RemoteAddr = "10.0.0.9:52311"
	engine.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitRejectsAboveQuota(t *testing.T) {
	engine := limiterEngine(cache.NewMemory(), MustQuota("3/minute"))

	for i := 0; i < 3; i++ {
		rec := doRequest(engine)
		require.Equal(t, http.StatusOK, rec.Code, "request %d should pass", i+1)
	}
	rec := doRequest(engine)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "rate_limited")
}

func TestRateLimitWindowExpiry(t *testing.T) {
	store := cache.NewMemory()
	now := time.Now()
	store.SetClock(func() time.Time { return now })
	engine := limiterEngine(store, MustQuota("2/minute"))

	require.Equal(t, http.StatusOK, doRequest(engine).Code)
	require.Equal(t, http.StatusOK, doRequest(engine).Code)
	require.Equal(t, http.StatusTooManyRequests, doRequest(engine).Code)

	// A fresh window opens once the old one has elapsed.
	now = now.Add(61 * time.Second)
	assert.Equal(t, http.StatusOK, doRequest(engine).Code)
}

type failingCounterStore struct{}

func (failingCounterStore) IncrWindow(context.Context, string, time.Duration) (int64, error) {
	return 0, assert.AnError
}

func TestRateLimitFailsOpenOnStoreError(t *testing.T) {
	engine := limiterEngine(failingCounterStore{}, MustQuota("1/minute"))
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, doRequest(engine).Code)
	}
}
