//go:build unit

package middleware_test

import (
	"net/http"
	nethttptest "net/http/httptest"
	"testing"

	"roomchat/internal/handler/middleware"
	"roomchat/internal/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := middleware.NewRateLimiter(config.RateLimitConfig{RPS: 0.001, Burst: 2})

	router := gin.New()
	router.GET("/ping", limiter.Middleware(), func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	call := func(ip string) int {
		req := nethttptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = ip + ":1234"
		w := nethttptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1"))
	assert.Equal(t, http.StatusOK, call("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1"))

	// buckets are per client
	assert.Equal(t, http.StatusOK, call("10.0.0.2"))
}
