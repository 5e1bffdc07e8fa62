package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/unihelp-api/internal/models"
	appErrors "github.com/noah-isme/unihelp-api/pkg/errors"
	"github.com/noah-isme/unihelp-api/pkg/export"
)

func seededConversations() *mockConversationStore {
	return &mockConversationStore{turns: []models.ConversationTurn{
		{RegistrationID: "1", Timestamp: "2025-03-01 10:00:00", Question: "q1", Answer: "a1"},
		{RegistrationID: "2", Timestamp: "2025-03-01 10:01:00", Question: "outro", Answer: "outro"},
		{RegistrationID: "1", Timestamp: "2025-03-01 10:02:00", Question: "q2", Answer: "a2"},
		{RegistrationID: "1", Timestamp: "2025-03-01 10:03:00", Question: "q3", Answer: "a3"},
	}}
}

func TestConversationServiceList(t *testing.T) {
	svc := NewConversationService(seededConversations(), 2, zap.NewNop())

	turns := svc.List(context.Background(), "1", 0)
	require.Len(t, turns, 2)
	assert.Equal(t, "q3", turns[0].Question)
	assert.Equal(t, "q2", turns[1].Question)

	assert.Len(t, svc.List(context.Background(), "1", 10), 3)
	assert.NotNil(t, svc.List(context.Background(), "9", 0))
	assert.Empty(t, svc.List(context.Background(), "9", 0))
	assert.Equal(t, 4, svc.TotalTurns(context.Background()))
}

func TestExportServiceCSV(t *testing.T) {
	convs := NewConversationService(seededConversations(), 50, zap.NewNop())
	svc := NewExportService(convs, zap.NewNop(), nil, nil)
	svc.now = func() time.Time { return time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC) }

	result, err := svc.Export(context.Background(), "1", "CSV")
	require.NoError(t, err)
	assert.Equal(t, "conversas_1_20250302_080000.csv", result.Filename)
	assert.Contains(t, result.ContentType, "text/csv")

	body := string(result.Body)
	assert.Contains(t, body, "Data,Pergunta,Resposta")
	assert.Less(t, strings.Index(body, "q3"), strings.Index(body, "q1"))
	assert.NotContains(t, body, "outro")
}

func TestExportServicePDFAndInvalidFormat(t *testing.T) {
	convs := NewConversationService(seededConversations(), 50, zap.NewNop())
	svc := NewExportService(convs, zap.NewNop(), nil, nil)

	result, err := svc.Export(context.Background(), "1", models.ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".pdf"))

	_, err = svc.Export(context.Background(), "1", "xlsx")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

type failingRenderer struct{}

func (failingRenderer) Render(export.Dataset) ([]byte, error) { return nil, errors.New("boom") }
func (failingRenderer) ContentType() string                   { return "text/plain" }

func TestExportServiceRenderFailure(t *testing.T) {
	convs := NewConversationService(seededConversations(), 50, zap.NewNop())
	svc := NewExportService(convs, zap.NewNop(), failingRenderer{}, nil)

	_, err := svc.Export(context.Background(), "1", models.ExportFormatCSV)
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
	assert.Equal(t, "na", sanitizeFilename(""))
}
