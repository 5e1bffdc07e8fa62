package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/unihelp-api/internal/models"
)

// Schema creates the tables used when STORAGE_DRIVER=postgres. Student records keep the
// same block text as the flat file so hand edits and prompts stay identical.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	registration_id TEXT PRIMARY KEY,
	full_name       TEXT NOT NULL,
	email           TEXT NOT NULL,
	national_id     TEXT NOT NULL,
	program         TEXT NOT NULL,
	password_hash   TEXT NOT NULL,
	registered_at   TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS student_records (
	registration_id TEXT PRIMARY KEY REFERENCES users (registration_id),
	block           TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS conversation_turns (
	id              BIGSERIAL PRIMARY KEY,
	registration_id TEXT NOT NULL,
	created_at      TEXT NOT NULL,
	question        TEXT NOT NULL,
	answer          TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_conversation_turns_ra ON conversation_turns (registration_id, id);
`

// EnsureSchema applies Schema.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// UserPostgresRepository stores user records in PostgreSQL.
type UserPostgresRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewUserPostgresRepository creates a new instance of UserPostgresRepository.
func NewUserPostgresRepository(db *sqlx.DB, logger *zap.Logger) *UserPostgresRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserPostgresRepository{db: db, logger: logger}
}

// FindByRegistrationID returns a user by RA.
func (r *UserPostgresRepository) FindByRegistrationID(ctx context.Context, ra string) (*models.UserRecord, bool) {
	const query = `SELECT registration_id, full_name, email, national_id, program, password_hash, registered_at FROM users WHERE registration_id = $1 LIMIT 1`
	var user models.UserRecord
	if err := r.db.GetContext(ctx, &user, query, ra); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			r.logger.Error("find user by registration id", zap.String("ra", ra), zap.Error(err))
		}
		return nil, false
	}
	return &user, true
}

// Create inserts the user.
func (r *UserPostgresRepository) Create(ctx context.Context, user *models.UserRecord) bool {
	const query = `INSERT INTO users (registration_id, full_name, email, national_id, program, password_hash, registered_at) VALUES (:registration_id, :full_name, :email, :national_id, :program, :password_hash, :registered_at)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		r.logger.Error("create user", zap.String("ra", user.RegistrationID), zap.Error(err))
		return false
	}
	return true
}

// Count returns the number of registered users.
func (r *UserPostgresRepository) Count(ctx context.Context) int {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM users`); err != nil {
		r.logger.Error("count users", zap.Error(err))
		return 0
	}
	return total
}

// StudentPostgresRepository stores student blocks in PostgreSQL.
type StudentPostgresRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewStudentPostgresRepository creates a new instance of StudentPostgresRepository.
func NewStudentPostgresRepository(db *sqlx.DB, logger *zap.Logger) *StudentPostgresRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentPostgresRepository{db: db, logger: logger}
}

// FindBlock returns the stored block text.
func (r *StudentPostgresRepository) FindBlock(ctx context.Context, ra string) (string, bool) {
	var block string
	if err := r.db.GetContext(ctx, &block, `SELECT block FROM student_records WHERE registration_id = $1`, ra); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			r.logger.Error("find student block", zap.String("ra", ra), zap.Error(err))
		}
		return "", false
	}
	return block, true
}

// Find returns the parsed student record.
func (r *StudentPostgresRepository) Find(ctx context.Context, ra string) (*models.StudentRecord, bool) {
	block, ok := r.FindBlock(ctx, ra)
	if !ok {
		return nil, false
	}
	rec, err := DecodeStudentBlock(block)
	if err != nil {
		r.logger.Error("student block unreadable", zap.String("ra", ra), zap.Error(err))
		return nil, false
	}
	return rec, true
}

// Seed inserts the default block unless one exists.
func (r *StudentPostgresRepository) Seed(ctx context.Context, ra, name, program string) bool {
	const query = `INSERT INTO student_records (registration_id, block) VALUES ($1, $2) ON CONFLICT (registration_id) DO NOTHING`
	block := EncodeStudentBlock(models.NewDefaultStudentRecord(ra, name, program))
	if _, err := r.db.ExecContext(ctx, query, ra, block); err != nil {
		r.logger.Error("seed student record", zap.String("ra", ra), zap.Error(err))
		return false
	}
	return true
}

// IDs lists the registration ids of every student record.
func (r *StudentPostgresRepository) IDs(ctx context.Context) []string {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, `SELECT registration_id FROM student_records ORDER BY registration_id`); err != nil {
		r.logger.Error("list student ids", zap.Error(err))
		return nil
	}
	return ids
}

// ConversationPostgresRepository stores conversation turns in PostgreSQL.
type ConversationPostgresRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewConversationPostgresRepository creates a new instance of ConversationPostgresRepository.
func NewConversationPostgresRepository(db *sqlx.DB, logger *zap.Logger) *ConversationPostgresRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConversationPostgresRepository{db: db, logger: logger}
}

// Append inserts one turn.
func (r *ConversationPostgresRepository) Append(ctx context.Context, turn models.ConversationTurn) bool {
	const query = `INSERT INTO conversation_turns (registration_id, created_at, question, answer) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, query, turn.RegistrationID, turn.Timestamp, turn.Question, turn.Answer); err != nil {
		r.logger.Error("append conversation turn", zap.String("ra", turn.RegistrationID), zap.Error(err))
		return false
	}
	return true
}

// ListByRegistrationID returns the last limit turns of a student, newest first.
func (r *ConversationPostgresRepository) ListByRegistrationID(ctx context.Context, ra string, limit int) []models.ConversationTurn {
	query := `SELECT registration_id, created_at, question, answer FROM conversation_turns WHERE registration_id = $1 ORDER BY id DESC`
	args := []interface{}{ra}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	var turns []models.ConversationTurn
	if err := r.db.SelectContext(ctx, &turns, query, args...); err != nil {
		r.logger.Error("list conversation turns", zap.String("ra", ra), zap.Error(err))
		return nil
	}
	return turns
}

// Count returns the number of stored turns across all students.
func (r *ConversationPostgresRepository) Count(ctx context.Context) int {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM conversation_turns`); err != nil {
		r.logger.Error("count conversation turns", zap.Error(err))
		return 0
	}
	return total
}
