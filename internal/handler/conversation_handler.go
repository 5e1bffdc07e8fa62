package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/unihelp-api/internal/models"
	"github.com/noah-isme/unihelp-api/internal/service"
	appErrors "github.com/noah-isme/unihelp-api/pkg/errors"
	"github.com/noah-isme/unihelp-api/pkg/response"
)

type conversationLister interface {
	List(ctx context.Context, ra string, limit int) []models.ConversationTurn
}

type conversationExporter interface {
	Export(ctx context.Context, ra string, format models.ExportFormat) (*service.ExportResult, error)
}

// ConversationHandler exposes the persisted conversation log.
type ConversationHandler struct {
	conversations conversationLister
	exporter      conversationExporter
}

// NewConversationHandler creates a new handler.
func NewConversationHandler(conversations conversationLister, exporter conversationExporter) *ConversationHandler {
	return &ConversationHandler{conversations: conversations, exporter: exporter}
}

// List godoc
// @Summary Conversation log
// @Description Logged turns of the current student, newest first
// @Tags Conversations
// @Produce json
// @Param limit query int false "Maximum turns (default 50)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /conversations [get]
func (h *ConversationHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "limit inválido"))
			return
		}
		limit = parsed
	}

	turns := h.conversations.List(c.Request.Context(), claims.RegistrationID, limit)
	response.JSON(c, http.StatusOK, turns, map[string]interface{}{"total": len(turns)})
}

// Export godoc
// @Summary Export conversation log
// @Tags Conversations
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /conversations/export [get]
func (h *ConversationHandler) Export(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	result, err := h.exporter.Export(c.Request.Context(), claims.RegistrationID, models.ExportFormat(c.DefaultQuery("format", string(models.ExportFormatCSV))))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Body)
}
