package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/unihelp-api/internal/models"
)

// ConversationService reads the persisted conversation log of a student.
type ConversationService struct {
	conversations conversationStore
	defaultLimit  int
	logger        *zap.Logger
}

// NewConversationService constructs a ConversationService instance.
func NewConversationService(conversations conversationStore, defaultLimit int, logger *zap.Logger) *ConversationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultLimit <= 0 {
		defaultLimit = 50
	}
	return &ConversationService{conversations: conversations, defaultLimit: defaultLimit, logger: logger}
}

// List returns the most recent turns of ra, newest first. A non-positive limit uses the default.
func (s *ConversationService) List(ctx context.Context, ra string, limit int) []models.ConversationTurn {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	turns := s.conversations.ListByRegistrationID(ctx, ra, limit)
	if turns == nil {
		turns = []models.ConversationTurn{}
	}
	return turns
}

// All returns every turn of ra, newest first.
func (s *ConversationService) All(ctx context.Context, ra string) []models.ConversationTurn {
	return s.conversations.ListByRegistrationID(ctx, ra, 0)
}

// TotalTurns returns the number of turns logged for all students.
func (s *ConversationService) TotalTurns(ctx context.Context) int {
	return s.conversations.Count(ctx)
}
