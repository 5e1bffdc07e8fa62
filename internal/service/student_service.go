package service

import (
	"context"

	"github.com/noah-isme/unihelp-api/internal/models"
	appErrors "github.com/noah-isme/unihelp-api/pkg/errors"
)

// StudentService exposes the academic record of the logged-in student.
type StudentService struct {
	students studentStore
}

// NewStudentService constructs the student service.
func NewStudentService(students studentStore) *StudentService {
	return &StudentService{students: students}
}

// Record returns the parsed academic record of ra.
func (s *StudentService) Record(ctx context.Context, ra string) (*models.StudentRecord, error) {
	rec, ok := s.students.Find(ctx, ra)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "dados do aluno não encontrados")
	}
	return rec, nil
}
