package repository

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"go.uber.org/zap"
)

// NoKnowledgeBase replaces the knowledge base text when the file is missing.
const NoKnowledgeBase = "Nenhum contexto específico fornecido."

// KnowledgeFileRepository reads the institution knowledge base verbatim on every call,
// so edits are visible without a restart.
type KnowledgeFileRepository struct {
	path   string
	logger *zap.Logger
}

// NewKnowledgeFileRepository creates a loader for the given path.
func NewKnowledgeFileRepository(path string, logger *zap.Logger) *KnowledgeFileRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KnowledgeFileRepository{path: path, logger: logger}
}

// Load returns the knowledge base text or the placeholder.
func (r *KnowledgeFileRepository) Load(_ context.Context) string {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.logger.Warn("knowledge base not found", zap.String("path", r.path))
		} else {
			r.logger.Error("knowledge base unreadable", zap.String("path", r.path), zap.Error(err))
		}
		return NoKnowledgeBase
	}
	return string(raw)
}
