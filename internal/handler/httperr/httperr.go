package httperr

import (
	"context"
	"errors"
	"net/http"

	"roomchat/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

var ErrRateLimited = errors.New("rate limit exceeded")

type Response struct {
	Status int `json:"-"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

type mapping struct {
	target  error
	status  int
	message string
}

// first match wins; ErrAlreadyCancelled must precede ErrConflict
var mappings = []mapping{
	{errs.ErrValidation, http.StatusBadRequest, "Validation failed"},
	{errs.ErrSessionNotFound, http.StatusNotFound, "Session not found"},
	{errs.ErrReservationNotFound, http.StatusNotFound, "Reservation not found"},
	{errs.ErrNoSlotFound, http.StatusNotFound, "No available slot found"},
	{errs.ErrAlreadyCancelled, http.StatusConflict, "Reservation already cancelled"},
	{errs.ErrConflict, http.StatusConflict, "Slot is already booked"},
	{ErrRateLimited, http.StatusTooManyRequests, "Too many requests"},
	{errs.ErrTransient, http.StatusServiceUnavailable, "Service temporarily unavailable"},
	{context.DeadlineExceeded, http.StatusServiceUnavailable, "Service temporarily unavailable"},
}

// StatusFor maps a usecase error onto an HTTP status and a client-safe message.
// Anything unrecognised is a 500.
func StatusFor(err error) (int, string) {
	for _, m := range mappings {
		if errs.Is(err, m.target) {
			return m.status, m.message
		}
	}
	return http.StatusInternalServerError, "Internal server error"
}

// preserves original error for future monitoring
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}

	resp := Response{Status: status}
	resp.Error.Message = msg
	resp.Detail = detail

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}
