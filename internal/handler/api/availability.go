package api

import (
	"net/http"

	"roomchat/internal/domain/reservation"
	reqdto "roomchat/internal/handler/dto/request"
	resdto "roomchat/internal/handler/dto/response"
	"roomchat/internal/handler/httperr"
	"roomchat/internal/pkg/clock"
	"roomchat/internal/usecase/availability"

	"github.com/gin-gonic/gin"
)

type AvailabilityHandler struct {
	engine availability.Engine
	policy *reservation.Policy
	clock  clock.Clock
}

func NewAvailabilityHandler(engine availability.Engine, policy *reservation.Policy, clock clock.Clock) *AvailabilityHandler {
	return &AvailabilityHandler{engine: engine, policy: policy, clock: clock}
}

// @Summary Check availability
// @Description List free slots on a date, optionally narrowed to a start time and room
// @Tags availability
// @Produce json
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param time query string false "Start time (HH:MM)"
// @Param room query int false "Room ID"
// @Param duration query string false "Duration, e.g. 1h"
// @Success 200 {object} resdto.AvailabilityResponse
// @Failure 400 {object} httperr.Response
// @Router /api/availability [get]
func (h *AvailabilityHandler) Check(c *gin.Context) {
	var req reqdto.AvailabilityQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query", nil)
		return
	}
	q, err := req.ToQuery(h.policy.Location())
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, err.Error(), nil)
		return
	}

	result, err := h.engine.CheckAvailability(c.Request.Context(), q)
	if err != nil {
		abortWithUsecaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromAvailability(result))
}

// @Summary Next available slot
// @Description Find the earliest free slot at or after from
// @Tags availability
// @Produce json
// @Param from query string false "Search start (RFC3339), defaults to now"
// @Param range query string false "morning, afternoon or all"
// @Param room query int false "Preferred room ID"
// @Param duration query string false "Duration, e.g. 1h"
// @Success 200 {object} resdto.SlotResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/availability/next [get]
func (h *AvailabilityHandler) Next(c *gin.Context) {
	var req reqdto.NextAvailableQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query", nil)
		return
	}
	q, err := req.ToQuery(h.clock.Now())
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, err.Error(), nil)
		return
	}

	slot, err := h.engine.FindNextAvailable(c.Request.Context(), q)
	if err != nil {
		abortWithUsecaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromSlot(slot))
}

// @Summary List rooms
// @Tags rooms
// @Produce json
// @Success 200 {array} resdto.RoomResponse
// @Router /api/rooms [get]
func (h *AvailabilityHandler) Rooms(c *gin.Context) {
	c.JSON(http.StatusOK, resdto.FromRooms(h.policy.Rooms().All()))
}
