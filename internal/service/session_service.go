package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/noah-isme/unihelp-api/internal/models"
	appErrors "github.com/noah-isme/unihelp-api/pkg/errors"
)

const sessionIssuer = "unihelp-api"

// SessionTokenConfig configures the signed session cookie.
type SessionTokenConfig struct {
	Secret string
	TTL    time.Duration
}

type sessionLookup interface {
	Get(ctx context.Context, id string) (*models.SessionState, error)
}

// SessionService issues and validates the signed session tokens that bind a browser to a
// session state.
type SessionService struct {
	config   SessionTokenConfig
	sessions sessionLookup
	now      func() time.Time
}

// NewSessionService constructs a SessionService instance. When sessions is set, a token is
// only accepted while its session state is still stored.
func NewSessionService(config SessionTokenConfig, sessions sessionLookup) *SessionService {
	if config.TTL <= 0 {
		config.TTL = 24 * time.Hour
	}
	return &SessionService{config: config, sessions: sessions, now: time.Now}
}

// TTL returns the token lifetime.
func (s *SessionService) TTL() time.Duration {
	return s.config.TTL
}

// Issue signs a token for a new session of user.
func (s *SessionService) Issue(user *models.UserRecord) (string, *models.SessionClaims, error) {
	issuedAt := s.now().UTC()
	claims := &models.SessionClaims{
		SessionID:      uuid.NewString(),
		RegistrationID: user.RegistrationID,
		FullName:       user.FullName,
		Program:        user.Program,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   user.RegistrationID,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.TTL)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign session token")
	}
	return signed, claims, nil
}

// Validate parses a session token and returns its claims.
func (s *SessionService) Validate(tokenString string) (*models.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithIssuer(sessionIssuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, appErrors.ErrUnauthorized.Message)
	}

	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok || !token.Valid || claims.SessionID == "" || claims.RegistrationID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "")
	}
	return claims, nil
}

// Authorize validates a session token and checks that its session is still open. Tokens of
// a session that was logged out or has expired server-side are rejected.
func (s *SessionService) Authorize(ctx context.Context, tokenString string) (*models.SessionClaims, error) {
	claims, err := s.Validate(tokenString)
	if err != nil || s.sessions == nil {
		return claims, err
	}

	state, err := s.sessions.Get(ctx, claims.SessionID)
	switch {
	case errors.Is(err, appErrors.ErrSessionNotFound):
		return nil, appErrors.Clone(appErrors.ErrSessionNotFound, "")
	case err != nil:
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	case state.RegistrationID != "" && state.RegistrationID != claims.RegistrationID:
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "")
	}
	return claims, nil
}
