package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/unihelp-api/internal/models"
	appErrors "github.com/noah-isme/unihelp-api/pkg/errors"
)

// Registration validation messages beyond the predefined errors.
const (
	msgPasswordMismatch = "As senhas não coincidem."
	msgPasswordTooShort = "A senha deve ter no mínimo 6 caracteres."
	msgForbiddenChars   = `Os campos não podem conter "|" nem quebras de linha.`
)

type userStore interface {
	FindByRegistrationID(ctx context.Context, ra string) (*models.UserRecord, bool)
	Create(ctx context.Context, user *models.UserRecord) bool
	Count(ctx context.Context) int
}

type studentStore interface {
	FindBlock(ctx context.Context, ra string) (string, bool)
	Find(ctx context.Context, ra string) (*models.StudentRecord, bool)
	Seed(ctx context.Context, ra, name, program string) bool
}

// CredentialService registers and authenticates students.
type CredentialService struct {
	users     userStore
	students  studentStore
	hasher    PasswordHasher
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewCredentialService constructs a CredentialService instance.
func NewCredentialService(users userStore, students studentStore, hasher PasswordHasher, validate *validator.Validate, logger *zap.Logger) *CredentialService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if hasher == nil {
		hasher = SHA256Hasher{}
	}
	return &CredentialService{
		users:     users,
		students:  students,
		hasher:    hasher,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Register validates the form, writes the user record and seeds the student record.
func (s *CredentialService) Register(ctx context.Context, req models.RegisterRequest) (*models.UserInfo, error) {
	req.RegistrationID = strings.TrimSpace(req.RegistrationID)
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)
	req.NationalID = strings.TrimSpace(req.NationalID)
	req.Program = strings.TrimSpace(req.Program)

	if err := s.validateRegistration(req); err != nil {
		return nil, err
	}

	if _, exists := s.users.FindByRegistrationID(ctx, req.RegistrationID); exists {
		return nil, appErrors.Clone(appErrors.ErrAlreadyExists, "")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, appErrors.ErrStorage.Message)
	}

	user := &models.UserRecord{
		RegistrationID: req.RegistrationID,
		FullName:       req.FullName,
		Email:          req.Email,
		NationalID:     req.NationalID,
		Program:        req.Program,
		PasswordHash:   hash,
		RegisteredAt:   s.now().Format(models.TimestampLayout),
	}
	if !s.users.Create(ctx, user) {
		return nil, appErrors.Clone(appErrors.ErrStorage, "")
	}
	if !s.students.Seed(ctx, user.RegistrationID, user.FullName, user.Program) {
		s.logger.Error("student record seed failed", zap.String("ra", user.RegistrationID))
	}

	s.logger.Info("user registered", zap.String("ra", user.RegistrationID), zap.String("curso", user.Program))
	info := user.Info()
	return &info, nil
}

func (s *CredentialService) validateRegistration(req models.RegisterRequest) error {
	if err := s.validator.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
		}
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, registrationMessage(verrs))
	}

	for _, field := range []string{req.RegistrationID, req.FullName, req.Email, req.NationalID, req.Program} {
		if strings.ContainsAny(field, "|\r\n") {
			return appErrors.Clone(appErrors.ErrValidation, msgForbiddenChars)
		}
	}
	return nil
}

// registrationMessage picks the message of the highest-priority failed rule.
func registrationMessage(verrs validator.ValidationErrors) string {
	priority := map[string]int{"required": 0, "eqfield": 1, "min": 2}
	best, message := len(priority), appErrors.ErrValidation.Message
	for _, fe := range verrs {
		rank, ok := priority[fe.Tag()]
		if !ok || rank >= best {
			continue
		}
		best = rank
		switch fe.Tag() {
		case "required":
			message = appErrors.ErrValidation.Message
		case "eqfield":
			message = msgPasswordMismatch
		case "min":
			message = msgPasswordTooShort
		}
	}
	return message
}

// Authenticate reports whether the password matches the stored hash of ra.
func (s *CredentialService) Authenticate(ctx context.Context, ra, password string) (*models.UserRecord, bool) {
	user, ok := s.users.FindByRegistrationID(ctx, ra)
	if !ok {
		return nil, false
	}
	if !s.hasher.Verify(user.PasswordHash, password) {
		return nil, false
	}
	return user, true
}

// Login validates the form and authenticates it. Unknown ids and wrong passwords share one error.
func (s *CredentialService) Login(ctx context.Context, req models.LoginRequest) (*models.UserRecord, error) {
	req.RegistrationID = strings.TrimSpace(req.RegistrationID)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}

	user, ok := s.Authenticate(ctx, req.RegistrationID, req.Password)
	if !ok {
		s.logger.Info("login rejected", zap.String("ra", req.RegistrationID))
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}
	s.logger.Info("login succeeded", zap.String("ra", user.RegistrationID))
	return user, nil
}

// Profile returns the public projection of a registered user.
func (s *CredentialService) Profile(ctx context.Context, ra string) (*models.UserInfo, error) {
	user, ok := s.users.FindByRegistrationID(ctx, ra)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "usuário não encontrado")
	}
	info := user.Info()
	return &info, nil
}

// UserCount returns the number of registered users.
func (s *CredentialService) UserCount(ctx context.Context) int {
	return s.users.Count(ctx)
}
