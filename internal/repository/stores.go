package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/unihelp-api/internal/models"
	"github.com/noah-isme/unihelp-api/pkg/config"
	"github.com/noah-isme/unihelp-api/pkg/flatfile"
)

// UserStore is implemented by the flat-file and PostgreSQL user repositories.
type UserStore interface {
	FindByRegistrationID(ctx context.Context, ra string) (*models.UserRecord, bool)
	Create(ctx context.Context, user *models.UserRecord) bool
	Count(ctx context.Context) int
}

// StudentStore is implemented by the flat-file and PostgreSQL student repositories.
type StudentStore interface {
	FindBlock(ctx context.Context, ra string) (string, bool)
	Find(ctx context.Context, ra string) (*models.StudentRecord, bool)
	Seed(ctx context.Context, ra, name, program string) bool
	IDs(ctx context.Context) []string
}

// ConversationStore is implemented by the flat-file and PostgreSQL conversation repositories.
type ConversationStore interface {
	Append(ctx context.Context, turn models.ConversationTurn) bool
	ListByRegistrationID(ctx context.Context, ra string, limit int) []models.ConversationTurn
	Count(ctx context.Context) int
}

// SessionStore is implemented by the Redis and in-memory chat session repositories.
type SessionStore interface {
	Get(ctx context.Context, id string) (*models.SessionState, error)
	Save(ctx context.Context, state *models.SessionState) error
	Delete(ctx context.Context, id string) error
}

// Stores groups the record repositories of one storage driver.
type Stores struct {
	Users         UserStore
	Students      StudentStore
	Conversations ConversationStore
}

// NewFileStores builds the record repositories over the configured flat files.
func NewFileStores(store *flatfile.Store, cfg config.StorageConfig, logger *zap.Logger) Stores {
	return Stores{
		Users:         NewUserFileRepository(store, cfg.UsersFile, logger),
		Students:      NewStudentFileRepository(store, cfg.StudentsFile, logger),
		Conversations: NewConversationFileRepository(store, cfg.ConversationsFile, logger),
	}
}

// NewPostgresStores builds the record repositories over a PostgreSQL connection.
func NewPostgresStores(db *sqlx.DB, logger *zap.Logger) Stores {
	return Stores{
		Users:         NewUserPostgresRepository(db, logger),
		Students:      NewStudentPostgresRepository(db, logger),
		Conversations: NewConversationPostgresRepository(db, logger),
	}
}
