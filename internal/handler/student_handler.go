package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/unihelp-api/internal/models"
	appErrors "github.com/noah-isme/unihelp-api/pkg/errors"
	"github.com/noah-isme/unihelp-api/pkg/response"
)

type studentRecordService interface {
	Record(ctx context.Context, ra string) (*models.StudentRecord, error)
}

// StudentHandler exposes the academic record of the logged-in student.
type StudentHandler struct {
	service studentRecordService
}

// NewStudentHandler creates a new handler.
func NewStudentHandler(service studentRecordService) *StudentHandler {
	return &StudentHandler{service: service}
}

// Me godoc
// @Summary Own academic record
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/me [get]
func (h *StudentHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	rec, err := h.service.Record(c.Request.Context(), claims.RegistrationID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rec)
}
