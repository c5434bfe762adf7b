//go:build unit

package middleware_test

import (
	"io"
	"log/slog"
	"net/http"
	nethttptest "net/http/httptest"
	"testing"

	"roomchat/internal/handler/middleware"
	"roomchat/internal/pkg/config"
	"roomchat/internal/pkg/errs"
	"roomchat/tests/common/httptest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestErrorHandler_MapsPrivateErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"transient store", errs.Mark(errs.New("connection refused"), errs.ErrTransient), http.StatusServiceUnavailable, "temporarily unavailable"},
		{"unknown session", errs.Wrap(errs.ErrSessionNotFound, "load abc"), http.StatusNotFound, "Session not found"},
		{"already cancelled", errs.Mark(errs.New("cancel"), errs.ErrAlreadyCancelled), http.StatusConflict, "already cancelled"},
		{"unexpected", errs.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := gin.New()
			router.Use(middleware.ErrorHandler())
			router.GET("/x", func(c *gin.Context) {
				_ = c.Error(tc.err)
			})

			w := httptest.PerformRequest(t, router, http.MethodGet, "/x", nil)
			httptest.AssertErrorResponse(t, w, tc.status, tc.msg)
		})
	}
}

func TestErrorHandler_KeepsWrittenResponses(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.ErrorHandler())
	router.DELETE("/x", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := httptest.PerformRequest(t, router, http.MethodDelete, "/x", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestCustomRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.CustomRecovery(slog.New(slog.NewTextHandler(io.Discard, nil))))
	router.GET("/panic", func(c *gin.Context) {
		panic("mapping broke")
	})

	w := httptest.PerformRequest(t, router, http.MethodGet, "/panic", nil)
	httptest.AssertErrorResponse(t, w, http.StatusInternalServerError, "Internal server error")
}

func TestCORSExposesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := config.NewTestConfig()
	cors := config.CORSConfig{
		AllowOrigins:  []string{"http://localhost:3000"},
		AllowMethods:  []string{http.MethodGet, http.MethodPost},
		AllowHeaders:  []string{"Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := gin.New()
	router.Use(middleware.NewCORSMiddleware(cors, logger))
	router.Use(middleware.LoggingMiddleware(logger, cfg.Log))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := nethttptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := nethttptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "X-Request-Id")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
