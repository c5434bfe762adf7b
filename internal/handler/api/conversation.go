package api

import (
	"net/http"

	reqdto "roomchat/internal/handler/dto/request"
	resdto "roomchat/internal/handler/dto/response"
	"roomchat/internal/handler/httperr"
	"roomchat/internal/usecase/conversation"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

type ConversationHandler struct {
	orchestrator conversation.Orchestrator
}

func NewConversationHandler(orchestrator conversation.Orchestrator) *ConversationHandler {
	return &ConversationHandler{orchestrator: orchestrator}
}

// @Summary Start session
// @Description Issue a new conversation session id. The session is created on its first message.
// @Tags sessions
// @Produce json
// @Success 201 {object} resdto.NewSessionResponse
// @Router /api/sessions [post]
func (h *ConversationHandler) CreateSession(c *gin.Context) {
	id, err := gonanoid.New()
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Failed to create session", nil)
		return
	}
	c.JSON(http.StatusCreated, resdto.NewSessionResponse{SessionID: id})
}

// @Summary Send message
// @Description Process one user message and return the assistant reply
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body reqdto.SendMessageRequest true "User message"
// @Success 200 {object} resdto.ReplyResponse
// @Failure 400 {object} httperr.Response
// @Failure 503 {object} httperr.Response
// @Router /api/sessions/{id}/messages [post]
func (h *ConversationHandler) SendMessage(c *gin.Context) {
	var req reqdto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	reply, err := h.orchestrator.HandleMessage(c.Request.Context(), c.Param("id"), req.Text)
	if err != nil {
		abortWithUsecaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromReply(reply))
}

// @Summary Get session
// @Description Get the conversation log, draft and state of a session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} resdto.SessionResponse
// @Failure 404 {object} httperr.Response
// @Router /api/sessions/{id} [get]
func (h *ConversationHandler) GetSession(c *gin.Context) {
	sess, err := h.orchestrator.Session(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithUsecaseError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromSession(sess))
}

// @Summary Reset session
// @Description Drop the session. Resetting an unknown session succeeds.
// @Tags sessions
// @Param id path string true "Session ID"
// @Success 204
// @Router /api/sessions/{id} [delete]
func (h *ConversationHandler) ResetSession(c *gin.Context) {
	if err := h.orchestrator.Reset(c.Request.Context(), c.Param("id")); err != nil {
		abortWithUsecaseError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
