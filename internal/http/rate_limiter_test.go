package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type mockRedisEvaler struct {
	lastCtx    context.Context
	lastScript string
	lastKeys   []string
	lastArgs   []interface{}
	result     int64
	err        error
}

func (m *mockRedisEvaler) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	m.lastCtx = ctx
	m.lastScript = script
	m.lastKeys = keys
	m.lastArgs = args
	cmd := redis.NewCmd(ctx)
	if m.err != nil {
		cmd.SetErr(m.err)
		return cmd
	}
	cmd.SetVal(m.result)
	return cmd
}

func TestRedisRateLimiterAllow(t *testing.T) {
	t.Run("allow when count within max", func(t *testing.T) {
		mock := &mockRedisEvaler{result: 2}
		l := &redisRateLimiter{
			client: mock,
			window: 2 * time.Minute,
			max:    3,
			prefix: "chat:rl:",
		}
		if !l.Allow(context.Background(), " 10.0.0.1 ") {
			t.Fatalf("expected allow when count <= max")
		}
		if len(mock.lastKeys) != 1 || mock.lastKeys[0] != "chat:rl:10.0.0.1" {
			t.Fatalf("unexpected key normalization, got %+v", mock.lastKeys)
		}
		if len(mock.lastArgs) != 1 || mock.lastArgs[0] != 120 {
			t.Fatalf("expected TTL seconds=120, got %+v", mock.lastArgs)
		}
		// La llamada a redis deriva del contexto del caller, con deadline.
		if _, ok := mock.lastCtx.Deadline(); !ok {
			t.Fatalf("expected bounded redis call")
		}
	})

	t.Run("deny when count exceeds max", func(t *testing.T) {
		l := &redisRateLimiter{
			client: &mockRedisEvaler{result: 4},
			window: time.Minute,
			max:    3,
			prefix: "chat:rl:",
		}
		if l.Allow(context.Background(), "10.0.0.1") {
			t.Fatalf("expected deny when count > max")
		}
	})

	t.Run("redis error fail-open", func(t *testing.T) {
		l := &redisRateLimiter{
			client: &mockRedisEvaler{err: errors.New("redis down")},
			window: time.Minute,
			max:    3,
			prefix: "chat:rl:",
		}
		if !l.Allow(context.Background(), "10.0.0.1") {
			t.Fatalf("expected fail-open on redis errors")
		}
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(limiter RateLimiter) *gin.Engine {
		r := gin.New()
		r.POST("/x", RateLimitMiddleware(limiter), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		return r
	}

	t.Run("nil limiter passes through", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(nil).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("denied client gets 429", func(t *testing.T) {
		limiter := &redisRateLimiter{
			client: &mockRedisEvaler{result: 99},
			window: time.Minute,
			max:    3,
			prefix: "chat:rl:",
		}
		w := httptest.NewRecorder()
		newRouter(limiter).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))
		if w.Code != http.StatusTooManyRequests {
			t.Fatalf("expected 429, got %d", w.Code)
		}
	})
}
