package api

import (
	"errors"
	"net/http"

	"roomchat/internal/domain/reservation"
	"roomchat/internal/handler/httperr"

	"github.com/gin-gonic/gin"
)

// abortWithUsecaseError maps usecase sentinels onto HTTP statuses. Field validation
// failures also report the offending field.
func abortWithUsecaseError(c *gin.Context, err error) {
	var verr *reservation.ValidationError
	if errors.As(err, &verr) {
		httperr.AbortWithError(c, http.StatusBadRequest, err, verr.Error(), gin.H{"field": verr.Field})
		return
	}
	status, msg := httperr.StatusFor(err)
	httperr.AbortWithError(c, status, err, msg, nil)
}
