package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/unihelp-api/internal/models"
	appErrors "github.com/noah-isme/unihelp-api/pkg/errors"
	"github.com/noah-isme/unihelp-api/pkg/export"
)

type documentRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
}

type turnLister interface {
	All(ctx context.Context, ra string) []models.ConversationTurn
}

// ExportResult is a rendered download.
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders the conversation log of a student as a downloadable document.
type ExportService struct {
	turns     turnLister
	renderers map[models.ExportFormat]documentRenderer
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to the defaults.
func NewExportService(turns turnLister, logger *zap.Logger, csv, pdf documentRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		turns: turns,
		renderers: map[models.ExportFormat]documentRenderer{
			models.ExportFormatCSV: csv,
			models.ExportFormatPDF: pdf,
		},
		logger: logger,
		now:    time.Now,
	}
}

// Export renders every logged turn of ra, newest first.
func (s *ExportService) Export(ctx context.Context, ra string, format models.ExportFormat) (*ExportResult, error) {
	format = models.ExportFormat(strings.ToLower(string(format)))
	if format == "" {
		format = models.ExportFormatCSV
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "formato de exportação inválido")
	}

	turns := s.turns.All(ctx, ra)
	dataset := export.Dataset{
		Title:   "Histórico de conversas - RA " + ra,
		Headers: []string{"Data", "Pergunta", "Resposta"},
		Rows:    make([][]string, 0, len(turns)),
	}
	for _, turn := range turns {
		dataset.Rows = append(dataset.Rows, []string{turn.Timestamp, turn.Question, turn.Answer})
	}

	body, err := renderer.Render(dataset)
	if err != nil {
		s.logger.Error("conversation export failed", zap.String("ra", ra), zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	return &ExportResult{
		Filename:    s.buildFilename(ra, format),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}

func (s *ExportService) buildFilename(ra string, format models.ExportFormat) string {
	timestamp := s.now().UTC().Format("20060102_150405")
	return fmt.Sprintf("conversas_%s_%s.%s", sanitizeFilename(ra), timestamp, format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_", "\"", "")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
