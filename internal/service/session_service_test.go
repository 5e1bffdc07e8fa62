package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/unihelp-api/internal/models"
	"github.com/noah-isme/unihelp-api/internal/repository"
	appErrors "github.com/noah-isme/unihelp-api/pkg/errors"
)

func TestSessionServiceIssueAndValidate(t *testing.T) {
	svc := NewSessionService(SessionTokenConfig{Secret: "test-secret", TTL: time.Hour}, nil)
	user := &models.UserRecord{RegistrationID: "2024001", FullName: "Ana", Program: "ES"}

	token, issued, err := svc.Issue(user)
	require.NoError(t, err)
	require.NotEmpty(t, issued.SessionID)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, issued.SessionID, claims.SessionID)
	assert.Equal(t, "2024001", claims.RegistrationID)
	assert.Equal(t, "Ana", claims.FullName)
	assert.Equal(t, "ES", claims.Program)

	other, _, err := svc.Issue(user)
	require.NoError(t, err)
	otherClaims, err := svc.Validate(other)
	require.NoError(t, err)
	assert.NotEqual(t, claims.SessionID, otherClaims.SessionID)
}

func TestSessionServiceRejectsTamperedAndExpired(t *testing.T) {
	svc := NewSessionService(SessionTokenConfig{Secret: "test-secret", TTL: time.Hour}, nil)
	token, _, err := svc.Issue(&models.UserRecord{RegistrationID: "1"})
	require.NoError(t, err)

	forged := NewSessionService(SessionTokenConfig{Secret: "other", TTL: time.Hour}, nil)
	_, err = forged.Validate(token)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.Validate(token)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	_, err = svc.Validate("not-a-token")
	assert.Error(t, err)
}

func TestSessionServiceRejectsOtherAlgorithms(t *testing.T) {
	svc := NewSessionService(SessionTokenConfig{Secret: "test-secret"}, nil)
	claims := &models.SessionClaims{SessionID: "s", RegistrationID: "1", RegisteredClaims: jwt.RegisteredClaims{Issuer: sessionIssuer}}
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.Validate(signed)
	assert.Error(t, err)
	assert.Equal(t, 24*time.Hour, svc.TTL())
}

func TestSessionServiceAuthorizeRequiresOpenSession(t *testing.T) {
	ctx := context.Background()
	sessions := repository.NewMemorySessionRepository(time.Hour)
	svc := NewSessionService(SessionTokenConfig{Secret: "test-secret", TTL: time.Hour}, sessions)

	token, claims, err := svc.Issue(&models.UserRecord{RegistrationID: "1", FullName: "Ana"})
	require.NoError(t, err)

	_, err = svc.Authorize(ctx, token)
	assert.True(t, errors.Is(err, appErrors.ErrSessionNotFound))

	require.NoError(t, sessions.Save(ctx, &models.SessionState{SessionID: claims.SessionID, RegistrationID: "1"}))
	got, err := svc.Authorize(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "1", got.RegistrationID)

	require.NoError(t, sessions.Delete(ctx, claims.SessionID))
	_, err = svc.Authorize(ctx, token)
	assert.True(t, errors.Is(err, appErrors.ErrSessionNotFound))

	require.NoError(t, sessions.Save(ctx, &models.SessionState{SessionID: claims.SessionID, RegistrationID: "12"}))
	_, err = svc.Authorize(ctx, token)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	_, err = svc.Authorize(ctx, "not-a-token")
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}
