package repository

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/unihelp-api/internal/models"
	"github.com/noah-isme/unihelp-api/pkg/flatfile"
)

// ConversationsHeader is written when the conversation log is created.
var ConversationsHeader = []string{
	"# ============================================",
	"# HISTÓRICO DE CONVERSAS - UNIHELP",
	"# ============================================",
}

// ConversationFileRepository is the append-only conversation log.
type ConversationFileRepository struct {
	store  *flatfile.Store
	file   flatfile.File
	logger *zap.Logger
}

// NewConversationFileRepository creates a repository over the given file name.
func NewConversationFileRepository(store *flatfile.Store, name string, logger *zap.Logger) *ConversationFileRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConversationFileRepository{store: store, file: flatfile.File{Name: name, Header: ConversationsHeader}, logger: logger}
}

// Append writes one turn at the end of the log.
func (r *ConversationFileRepository) Append(_ context.Context, turn models.ConversationTurn) bool {
	return r.store.AppendBlock(r.file, EncodeConversationBlock(turn))
}

// ListByRegistrationID returns the last limit turns of a student, newest first.
// A non-positive limit returns every turn.
func (r *ConversationFileRepository) ListByRegistrationID(_ context.Context, ra string, limit int) []models.ConversationTurn {
	var turns []models.ConversationTurn
	for _, block := range r.store.Blocks(r.file.Name, ConversationEndMarker) {
		if turn, ok := DecodeConversationBlock(block, ra); ok {
			turns = append(turns, *turn)
		}
	}
	return newestFirst(turns, limit)
}

// Count returns the number of turns in the log across all students.
func (r *ConversationFileRepository) Count(_ context.Context) int {
	return len(r.store.Blocks(r.file.Name, ConversationEndMarker))
}

func newestFirst(turns []models.ConversationTurn, limit int) []models.ConversationTurn {
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	out := make([]models.ConversationTurn, len(turns))
	for i, t := range turns {
		out[len(turns)-1-i] = t
	}
	return out
}
