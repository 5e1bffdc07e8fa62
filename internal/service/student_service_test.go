package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/unihelp-api/pkg/errors"
)

func TestStudentServiceRecord(t *testing.T) {
	students := &mockStudentStore{}
	require.True(t, students.Seed(context.Background(), "1", "Ana", "ES"))
	svc := NewStudentService(students)

	rec, err := svc.Record(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "1", rec.RegistrationID)
	assert.Len(t, rec.Grades, 4)

	_, err = svc.Record(context.Background(), "2")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}
