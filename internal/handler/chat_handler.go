package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/unihelp-api/internal/models"
	appErrors "github.com/noah-isme/unihelp-api/pkg/errors"
	"github.com/noah-isme/unihelp-api/pkg/response"
)

type chatService interface {
	VisibleHistory(ctx context.Context, owner models.SessionOwner) ([]models.ChatMessage, error)
	HandleMessage(ctx context.Context, owner models.SessionOwner, question string) (string, error)
	Reset(ctx context.Context, owner models.SessionOwner) error
}

// ChatHandler exposes the conversation endpoints.
type ChatHandler struct {
	service chatService
}

// NewChatHandler creates a new handler.
func NewChatHandler(service chatService) *ChatHandler {
	return &ChatHandler{service: service}
}

// History godoc
// @Summary Current chat
// @Description Ensure the chat session exists and return the visible rolling history
// @Tags Chat
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /chat [get]
func (h *ChatHandler) History(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	history, err := h.service.VisibleHistory(c.Request.Context(), ownerFromClaims(claims))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"historico": history})
}

// SendMessage godoc
// @Summary Ask the assistant
// @Description Run one chat turn. Provider failures come back as in-band answers.
// @Tags Chat
// @Accept json
// @Produce json
// @Param payload body models.ChatMessageRequest true "Question"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /chat/messages [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.ChatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "Pergunta vazia"))
		return
	}

	answer, err := h.service.HandleMessage(c.Request.Context(), ownerFromClaims(claims), req.Question)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, models.ChatMessageResponse{Answer: answer, Success: true})
}

// Reset godoc
// @Summary Clear chat
// @Description Discard the rolling history and start over with a fresh system prompt
// @Tags Chat
// @Success 204
// @Failure 401 {object} response.Envelope
// @Router /chat/reset [post]
func (h *ChatHandler) Reset(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Reset(c.Request.Context(), ownerFromClaims(claims)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
