package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/unihelp-api/internal/models"
	appErrors "github.com/noah-isme/unihelp-api/pkg/errors"
	"github.com/noah-isme/unihelp-api/pkg/llm"
)

// In-band answers for failed model calls.
const (
	AnswerAuthError     = "ERRO: Chave de API inválida."
	AnswerQuotaError    = "ERRO: Limite de requisições atingido."
	AnswerProviderError = "ERRO: Não foi possível conectar ao serviço de IA. Tente novamente."

	msgEmptyQuestion = "Pergunta vazia"
)

type sessionStore interface {
	Get(ctx context.Context, id string) (*models.SessionState, error)
	Save(ctx context.Context, state *models.SessionState) error
	Delete(ctx context.Context, id string) error
}

type conversationStore interface {
	Append(ctx context.Context, turn models.ConversationTurn) bool
	ListByRegistrationID(ctx context.Context, ra string, limit int) []models.ConversationTurn
	Count(ctx context.Context) int
}

type systemPromptBuilder interface {
	BuildSystemPrompt(ctx context.Context, ra string) string
}

type chatMetrics interface {
	ObserveChatTurn(outcome string, modelDuration time.Duration)
	RecordStorageFailure(operation string)
}

// ChatConfig bounds the rolling history.
type ChatConfig struct {
	MaxHistory int
	KeepRecent int
}

// ChatService runs the per-session conversation: rolling history, model dispatch and logging.
type ChatService struct {
	sessions      sessionStore
	conversations conversationStore
	prompts       systemPromptBuilder
	model         llm.Client
	metrics       chatMetrics
	logger        *zap.Logger
	config        ChatConfig
	now           func() time.Time
}

// NewChatService constructs a ChatService instance.
func NewChatService(sessions sessionStore, conversations conversationStore, prompts systemPromptBuilder, model llm.Client, metrics chatMetrics, logger *zap.Logger, config ChatConfig) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxHistory <= 1 {
		config.MaxHistory = 9
	}
	if config.KeepRecent <= 0 || config.KeepRecent >= config.MaxHistory {
		config.KeepRecent = config.MaxHistory - 1
	}
	return &ChatService{
		sessions:      sessions,
		conversations: conversations,
		prompts:       prompts,
		model:         model,
		metrics:       metrics,
		logger:        logger,
		config:        config,
		now:           time.Now,
	}
}

// Start creates a fresh session state seeded with the system prompt, replacing any previous one.
func (s *ChatService) Start(ctx context.Context, owner models.SessionOwner) (*models.SessionState, error) {
	state := s.newState(owner)
	s.seed(ctx, state)
	if err := s.save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

// VisibleHistory returns the non-system entries of the session, creating the session if needed.
func (s *ChatService) VisibleHistory(ctx context.Context, owner models.SessionOwner) ([]models.ChatMessage, error) {
	state, created, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	if created {
		if err := s.save(ctx, state); err != nil {
			return nil, err
		}
	}
	return state.Visible(), nil
}

// HandleMessage runs one chat turn and returns the formatted answer. Model failures come back
// as in-band answers, never as errors.
func (s *ChatService) HandleMessage(ctx context.Context, owner models.SessionOwner, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, msgEmptyQuestion)
	}

	state, _, err := s.load(ctx, owner)
	if err != nil {
		return "", err
	}

	state.Messages = append(state.Messages, models.ChatMessage{Role: models.RoleUser, Content: question})

	started := s.now()
	raw, outcome := s.complete(ctx, owner.RegistrationID, state.Messages)
	modelDuration := s.now().Sub(started)

	answer := FormatResponse(raw)
	state.Messages = append(state.Messages, models.ChatMessage{Role: models.RoleAssistant, Content: answer})

	turn := models.ConversationTurn{
		RegistrationID: owner.RegistrationID,
		Timestamp:      s.now().Format(models.TimestampLayout),
		Question:       question,
		Answer:         raw,
	}
	if !s.conversations.Append(ctx, turn) {
		s.logger.Error("conversation log append failed", zap.String("ra", owner.RegistrationID))
		if s.metrics != nil {
			s.metrics.RecordStorageFailure("conversation_append")
		}
	}

	if len(state.Messages) > s.config.MaxHistory {
		state.Messages = TruncateHistory(state.Messages, s.prompts.BuildSystemPrompt(ctx, owner.RegistrationID), s.config.MaxHistory, s.config.KeepRecent)
	}

	if err := s.save(ctx, state); err != nil {
		s.logger.Error("session save failed after chat turn", zap.String("session_id", owner.SessionID), zap.Error(err))
	}
	if s.metrics != nil {
		s.metrics.ObserveChatTurn(outcome, modelDuration)
	}

	s.logger.Info("chat turn answered",
		zap.String("ra", owner.RegistrationID),
		zap.String("outcome", outcome),
		zap.Int("history_len", len(state.Messages)),
		zap.Duration("model_duration", modelDuration),
	)
	return answer, nil
}

// Reset discards the rolling history and reseeds a system-only history when the session has a user.
func (s *ChatService) Reset(ctx context.Context, owner models.SessionOwner) error {
	if err := s.sessions.Delete(ctx, owner.SessionID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear session")
	}
	s.logger.Info("chat history cleared", zap.String("ra", owner.RegistrationID))
	if owner.RegistrationID == "" {
		return nil
	}
	_, err := s.Start(ctx, owner)
	return err
}

// End discards the session state.
func (s *ChatService) End(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to end session")
	}
	return nil
}

// TruncateHistory rebuilds a history longer than max as a fresh system entry followed by the
// keep most recent entries. Shorter histories are returned unchanged.
func TruncateHistory(history []models.ChatMessage, systemPrompt string, max, keep int) []models.ChatMessage {
	if len(history) <= max {
		return history
	}
	if keep > len(history) {
		keep = len(history)
	}
	out := make([]models.ChatMessage, 0, keep+1)
	out = append(out, models.ChatMessage{Role: models.RoleSystem, Content: systemPrompt})
	return append(out, history[len(history)-keep:]...)
}

func (s *ChatService) newState(owner models.SessionOwner) *models.SessionState {
	return &models.SessionState{
		SessionID:      owner.SessionID,
		RegistrationID: owner.RegistrationID,
		DisplayName:    owner.DisplayName,
		Program:        owner.Program,
	}
}

func (s *ChatService) seed(ctx context.Context, state *models.SessionState) {
	state.Messages = []models.ChatMessage{{
		Role:    models.RoleSystem,
		Content: s.prompts.BuildSystemPrompt(ctx, state.RegistrationID),
	}}
}

// load returns the stored state, or a freshly seeded one when the session is unknown or empty.
func (s *ChatService) load(ctx context.Context, owner models.SessionOwner) (*models.SessionState, bool, error) {
	state, err := s.sessions.Get(ctx, owner.SessionID)
	switch {
	case errors.Is(err, appErrors.ErrSessionNotFound):
		state = s.newState(owner)
	case err != nil:
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if len(state.Messages) == 0 {
		if state.RegistrationID == "" {
			state.RegistrationID = owner.RegistrationID
		}
		s.seed(ctx, state)
		return state, true, nil
	}
	return state, false, nil
}

func (s *ChatService) save(ctx context.Context, state *models.SessionState) error {
	state.UpdatedAt = s.now().UTC()
	if err := s.sessions.Save(ctx, state); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save session")
	}
	return nil
}

// complete calls the model and maps provider failures to their in-band answer.
func (s *ChatService) complete(ctx context.Context, ra string, history []models.ChatMessage) (string, string) {
	messages := make([]llm.Message, 0, len(history))
	for _, m := range history {
		role := llm.RoleModel
		if m.Role == models.RoleUser {
			role = llm.RoleUser
		}
		messages = append(messages, llm.Message{Role: role, Content: m.Content})
	}

	text, err := s.model.Complete(ctx, messages)
	if err == nil {
		return text, OutcomeAnswered
	}

	kind := llm.Classify(err)
	s.logger.Warn("model completion failed", zap.String("ra", ra), zap.String("kind", string(kind)), zap.Error(err))
	switch kind {
	case llm.KindAuth:
		return AnswerAuthError, OutcomeAuthError
	case llm.KindQuota:
		return AnswerQuotaError, OutcomeQuotaError
	default:
		return AnswerProviderError, OutcomeProviderError
	}
}
