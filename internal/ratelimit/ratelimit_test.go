package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu     sync.Mutex
	counts map[string]int64
	ttls   map[string]time.Duration
	err    error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{counts: map[string]int64{}, ttls: map[string]time.Duration{}}
}

func (s *memoryStore) IncrWithTTL(_ context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	s.counts[key]++
	if s.counts[key] == 1 {
		s.ttls[key] = ttl
	}
	return s.counts[key], nil
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddlewareBlocksAfterLimit(t *testing.T) {
	store := newMemoryStore()
	policy := Policy{Name: "quote", Window: time.Minute, Limit: 2}
	handler := Middleware(policy, store, nil, nil)(okHandler())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/request-quote", nil)
		req.RemoteAddr = "203.0.113.9:4242"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
		if rec.Code == http.StatusTooManyRequests {
			assert.JSONEq(t, `{"ok":false,"error":"Too many quote requests. Please try again later."}`, rec.Body.String())
			assert.Equal(t, "60", rec.Header().Get("Retry-After"))
		}
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, time.Minute, store.ttls["helousound:rl:quote:203.0.113.9"])
}

func TestMiddlewareCountsClientsSeparately(t *testing.T) {
	store := newMemoryStore()
	handler := Middleware(Policy{Name: "quote", Window: time.Minute, Limit: 1, TrustProxy: true}, store, nil, nil)(okHandler())

	for _, ip := range []string{"198.51.100.1", "198.51.100.2"} {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("X-Forwarded-For", "10.9.9.9, "+ip)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, ip)
	}
}

func TestMiddlewareIgnoresSpoofedForwardedFor(t *testing.T) {
	store := newMemoryStore()
	handler := Middleware(Policy{Name: "quote", Window: time.Minute, Limit: 1}, store, nil, nil)(okHandler())

	codes := make([]int, 0, 3)
	for _, spoofed := range []string{"1.1.1.1", "2.2.2.2", "3.3.3.3"} {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "203.0.113.50:5000"
		req.Header.Set("X-Forwarded-For", spoofed)
		req.Header.Set("X-Real-IP", spoofed)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
}

func TestMiddlewareFailsOpenOnStoreError(t *testing.T) {
	store := newMemoryStore()
	store.err = errors.New("connection refused")
	handler := Middleware(Policy{Window: time.Minute, Limit: 1}, store, nil, nil)(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddlewareDisabledWithoutStore(t *testing.T) {
	handler := Middleware(Policy{Window: time.Minute, Limit: 1}, nil, nil, nil)(okHandler())
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:1234"
	assert.Equal(t, "192.0.2.7", ClientIP(req, true))

	req.Header.Set("X-Real-IP", "192.0.2.8")
	assert.Equal(t, "192.0.2.8", ClientIP(req, true))

	req.Header.Set("X-Forwarded-For", " 192.0.2.9 , 192.0.2.10 ")
	assert.Equal(t, "192.0.2.10", ClientIP(req, true))
	assert.Equal(t, "192.0.2.7", ClientIP(req, false))
}

// fakeRedis runs the counter script's logic in memory. Unused Scripter
// methods fall through to the nil embedded interface.
type fakeRedis struct {
	redis.Scripter
	counts map[string]int64
	ttls   map[string]int64
	keys   []string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{counts: map[string]int64{}, ttls: map[string]int64{}}
}

func (f *fakeRedis) EvalSha(_ context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	key := keys[0]
	f.keys = append(f.keys, key)
	f.counts[key]++
	if ms, _ := args[0].(int64); ms > 0 && f.ttls[key] == 0 {
		f.ttls[key] = ms
	}
	return redis.NewCmdResult(f.counts[key], nil)
}

func (f *fakeRedis) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (f *fakeRedis) Close() error { return nil }

func TestRedisStoreCountsAndExpiresInOneCall(t *testing.T) {
	fake := newFakeRedis()
	store := &RedisStore{client: fake}
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := store.IncrWithTTL(ctx, "k", time.Hour)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, []string{"k", "k", "k"}, fake.keys)
	assert.Equal(t, time.Hour.Milliseconds(), fake.ttls["k"])
	assert.NoError(t, store.Ping(ctx))
}

func TestRedisStoreRestoresMissingExpiry(t *testing.T) {
	fake := newFakeRedis()
	store := &RedisStore{client: fake}
	ctx := context.Background()

	_, err := store.IncrWithTTL(ctx, "k", time.Minute)
	require.NoError(t, err)
	delete(fake.ttls, "k")

	_, err = store.IncrWithTTL(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, time.Minute.Milliseconds(), fake.ttls["k"])
}

func TestRedisStoreAgainstServer(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}
	ctx := context.Background()
	store, err := NewRedisStore(ctx, url)
	require.NoError(t, err)
	defer store.Close()

	key := "helousound:rl:test:" + time.Now().Format(time.RFC3339Nano)
	for i := 0; i < 2; i++ {
		_, err := store.IncrWithTTL(ctx, key, time.Minute)
		require.NoError(t, err)
	}
	raw := store.client.(*redis.Client)
	ttl, err := raw.PTTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)
}

func TestNewRedisStoreRejectsBadURL(t *testing.T) {
	_, err := NewRedisStore(context.Background(), "")
	require.Error(t, err)

	_, err = NewRedisStore(context.Background(), "not a url")
	require.Error(t, err)
}
