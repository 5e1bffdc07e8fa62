package repository

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/unihelp-api/internal/models"
	"github.com/noah-isme/unihelp-api/pkg/flatfile"
)

// UsersHeader is written when the users file is created.
var UsersHeader = []string{
	"# ============================================",
	"# BANCO DE DADOS DE USUÁRIOS - UNIHELP",
	"# ============================================",
	"# Estrutura: RA|NOME|EMAIL|CPF|CURSO|SENHA_HASH|DATA_CADASTRO",
	"# " + strings.Repeat("=", 80),
}

// UserFileRepository stores user records one per line.
type UserFileRepository struct {
	store  *flatfile.Store
	file   flatfile.File
	logger *zap.Logger
}

// NewUserFileRepository creates a repository over the given file name.
func NewUserFileRepository(store *flatfile.Store, name string, logger *zap.Logger) *UserFileRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserFileRepository{store: store, file: flatfile.File{Name: name, Header: UsersHeader}, logger: logger}
}

// FindByRegistrationID returns the first user line whose RA matches.
func (r *UserFileRepository) FindByRegistrationID(_ context.Context, ra string) (*models.UserRecord, bool) {
	var user *models.UserRecord
	_, ok := r.store.FindLine(r.file.Name, func(line string) bool {
		u, valid := DecodeUserLine(line)
		if valid && u.RegistrationID == ra {
			user = u
			return true
		}
		return false
	})
	if !ok {
		return nil, false
	}
	return user, true
}

// Create appends the user line.
func (r *UserFileRepository) Create(_ context.Context, user *models.UserRecord) bool {
	return r.store.AppendBlock(r.file, EncodeUserLine(user))
}

// Count returns the number of user lines.
func (r *UserFileRepository) Count(_ context.Context) int {
	return len(r.store.Lines(r.file.Name))
}
