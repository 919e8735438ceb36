package cache

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) {
	t.Helper()
	require.NoError(t, InitRedis(context.Background(), ""))
	t.Cleanup(func() {
		assert.NoError(t, Close())
	})
}

func TestNotInitialized(t *testing.T) {
	ctx := context.Background()
	_, err := Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.NoError(t, InvalidateFeed(ctx))
}

func TestGetOrSetWithoutRedisCallsLoader(t *testing.T) {
	calls := 0
	loader := func() ([]string, error) {
		calls++
		return []string{"a"}, nil
	}
	for i := 0; i < 2; i++ {
		v, err := GetOrSet(context.Background(), FeedKey(10), KeyFeedGeneration, TTLFeed, loader)
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, v)
	}
	assert.Equal(t, 2, calls)
}

func TestGetOrSetCachesAndInvalidates(t *testing.T) {
	setup(t)
	assert.True(t, IsEmbedded())
	ctx := context.Background()

	calls := 0
	loader := func() ([]int, error) {
		calls++
		return []int{3, 2, 1}, nil
	}

	for i := 0; i < 3; i++ {
		v, err := GetOrSet(ctx, FeedKey(3), KeyFeedGeneration, TTLFeed, loader)
		require.NoError(t, err)
		assert.Equal(t, []int{3, 2, 1}, v)
	}
	assert.Equal(t, 1, calls)

	require.NoError(t, InvalidateFeed(ctx))
	_, err := Get(ctx, FeedKey(3))
	assert.ErrorIs(t, err, ErrMiss)

	_, err = GetOrSet(ctx, FeedKey(3), KeyFeedGeneration, TTLFeed, loader)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestGetOrSetLoaderError(t *testing.T) {
	setup(t)
	boom := errors.New("db down")
	_, err := GetOrSet(context.Background(), FeedKey(1), KeyFeedGeneration, TTLFeed, func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
	_, err = Get(context.Background(), FeedKey(1))
	assert.ErrorIs(t, err, ErrMiss)
}

func TestLoadDropsValueReadBeforeInvalidation(t *testing.T) {
	setup(t)
	ctx := context.Background()

	// news is added and the feed invalidated while the loader reads the old rows
	v, err := Load(ctx, FeedKey(2), KeyFeedGeneration, TTLFeed, func() ([]string, error) {
		require.NoError(t, InvalidateFeed(ctx))
		return []string{"old"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"old"}, v)
	_, err = Get(ctx, FeedKey(2))
	assert.ErrorIs(t, err, ErrMiss, "stale feed must not be cached")

	v, err = Load(ctx, FeedKey(2), KeyFeedGeneration, TTLFeed, func() ([]string, error) {
		return []string{"new", "old"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "old"}, v)

	var cached []string
	require.NoError(t, GetJSON(ctx, FeedKey(2), &cached))
	assert.Equal(t, []string{"new", "old"}, cached)
}

func TestSetJSONIfCurrent(t *testing.T) {
	setup(t)
	ctx := context.Background()

	assert.ErrorIs(t, SetJSONIfCurrent(ctx, FeedKey(1), []int{1}, TTLFeed, KeyFeedGeneration, "7"), ErrStale)
	require.NoError(t, SetJSONIfCurrent(ctx, FeedKey(1), []int{1}, TTLFeed, KeyFeedGeneration, ""))

	require.NoError(t, InvalidateFeed(ctx))
	gen, err := Get(ctx, KeyFeedGeneration)
	require.NoError(t, err)
	assert.Equal(t, "1", gen)
	require.NoError(t, SetJSONIfCurrent(ctx, FeedKey(1), []int{2}, TTLFeed, KeyFeedGeneration, gen))
}

func TestRedisStoreRoundTrip(t *testing.T) {
	setup(t)
	gin.SetMode(gin.TestMode)

	store := NewRedisStore(GetClient(), []byte("0123456789abcdef0123456789abcdef"))
	r := gin.New()
	r.Use(sessions.Sessions("ya-news", store))
	r.GET("/set", func(c *gin.Context) {
		s := sessions.Default(c)
		s.Set("user", "author")
		require.NoError(t, s.Save())
		c.Status(http.StatusOK)
	})
	r.GET("/get", func(c *gin.Context) {
		v, _ := sessions.Default(c).Get("user").(string)
		c.String(http.StatusOK, v)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/set", nil))
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/get", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "author", w.Body.String())

	keys, err := GetClient().Keys(context.Background(), sessionKeyPrefix+"*").Result()
	require.NoError(t, err)
	assert.Len(t, keys, 1)

	forged := httptest.NewRequest(http.MethodGet, "/get", nil)
	forged.AddCookie(&http.Cookie{Name: "ya-news", Value: "forged"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, forged)
	assert.Equal(t, "", w.Body.String())
}
