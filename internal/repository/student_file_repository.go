package repository

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/unihelp-api/internal/models"
	"github.com/noah-isme/unihelp-api/pkg/flatfile"
)

// StudentsHeader is written when the student data file is created.
var StudentsHeader = []string{
	"# ============================================",
	"# DADOS PERSONALIZADOS DOS ALUNOS - UNIHELP",
	"# ============================================",
}

// StudentFileRepository stores one marker-bounded block per student.
type StudentFileRepository struct {
	store  *flatfile.Store
	file   flatfile.File
	logger *zap.Logger
}

// NewStudentFileRepository creates a repository over the given file name.
func NewStudentFileRepository(store *flatfile.Store, name string, logger *zap.Logger) *StudentFileRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentFileRepository{store: store, file: flatfile.File{Name: name, Header: StudentsHeader}, logger: logger}
}

// FindBlock returns the raw block of a student, markers included.
func (r *StudentFileRepository) FindBlock(_ context.Context, ra string) (string, bool) {
	return r.store.FindBlock(r.file.Name, StudentStartMarker(ra), StudentEndMarker)
}

// Find returns the parsed record of a student.
func (r *StudentFileRepository) Find(ctx context.Context, ra string) (*models.StudentRecord, bool) {
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

// Seed writes the default record unless the student already has one.
func (r *StudentFileRepository) Seed(ctx context.Context, ra, name, program string) bool {
	if _, exists := r.FindBlock(ctx, ra); exists {
		return true
	}
	if !r.store.AppendBlock(r.file, EncodeStudentBlock(models.NewDefaultStudentRecord(ra, name, program))) {
		return false
	}
	r.logger.Info("student record seeded", zap.String("ra", ra))
	return true
}

// IDs lists the registration ids of every student block in file order.
func (r *StudentFileRepository) IDs(_ context.Context) []string {
	var ids []string
	for _, block := range r.store.Blocks(r.file.Name, StudentEndMarker) {
		if rec, err := DecodeStudentBlock(block); err == nil {
			ids = append(ids, rec.RegistrationID)
		}
	}
	return ids
}
