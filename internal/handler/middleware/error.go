package middleware

import (
	"log/slog"
	"net/http"

	"roomchat/internal/handler/httperr"

	"github.com/gin-gonic/gin"
)

// ErrorHandler writes a response for requests that ended without one. Public errors
// carry their prepared httperr.Response; private ones recorded with c.Error are
// mapped through httperr.StatusFor.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			if !c.Writer.Written() && c.Writer.Status() != http.StatusOK {
				c.Status(c.Writer.Status())
				c.Writer.WriteHeaderNow()
			}
			return
		}

		// latest error wins
		for i := len(c.Errors) - 1; i >= 0; i-- {
			if resp, ok := c.Errors[i].Meta.(httperr.Response); ok && c.Errors[i].IsType(gin.ErrorTypePublic) {
				c.JSON(resp.Status, resp)
				return
			}
		}

		status, msg := httperr.StatusFor(c.Errors.Last().Err)
		resp := httperr.Response{Status: status}
		resp.Error.Message = msg
		c.JSON(status, resp)
	}
}

// CustomRecovery turns a panic into a 500 and logs it with the request and session ids.
func CustomRecovery(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				attrs := []any{"error", err, "path", c.Request.URL.Path}
				if requestID, ok := c.Get("request_id"); ok {
					attrs = append(attrs, "request_id", requestID)
				}
				logger.Error("recovered from panic", attrs...)

				resp := httperr.Response{Status: http.StatusInternalServerError}
				resp.Error.Message = "Internal server error"

				c.AbortWithStatusJSON(http.StatusInternalServerError, resp)
			}
		}()
		c.Next()
	}
}
