package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func limitedRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw)
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func hit(r *gin.Engine, ip string) int {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = ip + ":12345"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitMiddleware_RejectsAfterBurst(t *testing.T) {
	r := limitedRouter(RateLimitMiddleware(0.001, 3))

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, hit(r, "10.1.1.1"))
	}
	require.Equal(t, http.StatusTooManyRequests, hit(r, "10.1.1.1"))
	// other clients have their own bucket
	require.Equal(t, http.StatusOK, hit(r, "10.1.1.2"))
}

func TestRedisRateLimitMiddleware_FixedWindow(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})

	// floor(0.02*60)+2 = 3 requests per one-minute window; the wide window
	// keeps the test away from bucket boundaries
	r := limitedRouter(RedisRateLimitMiddleware(client, 0.02, 2, time.Minute))

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, hit(r, "10.2.2.2"))
	}
	require.Equal(t, http.StatusTooManyRequests, hit(r, "10.2.2.2"))
	require.Equal(t, http.StatusOK, hit(r, "10.2.2.3"))
}

func TestRedisRateLimitMiddleware_NilClientFallsBack(t *testing.T) {
	r := limitedRouter(RedisRateLimitMiddleware(nil, 0.001, 1, time.Second))
	require.Equal(t, http.StatusOK, hit(r, "10.3.3.3"))
	require.Equal(t, http.StatusTooManyRequests, hit(r, "10.3.3.3"))
}
