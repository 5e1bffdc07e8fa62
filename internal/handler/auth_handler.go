package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/unihelp-api/internal/models"
	appErrors "github.com/noah-isme/unihelp-api/pkg/errors"
	"github.com/noah-isme/unihelp-api/pkg/response"
)

type credentialService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.UserInfo, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.UserRecord, error)
	Profile(ctx context.Context, ra string) (*models.UserInfo, error)
}

type sessionIssuer interface {
	Issue(user *models.UserRecord) (string, *models.SessionClaims, error)
	TTL() time.Duration
}

type chatLifecycle interface {
	Start(ctx context.Context, owner models.SessionOwner) (*models.SessionState, error)
	End(ctx context.Context, sessionID string) error
}

type authMetrics interface {
	RecordRegistration()
	RecordLogin(success bool)
}

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthHandler wires registration and session endpoints.
type AuthHandler struct {
	credentials credentialService
	sessions    sessionIssuer
	chat        chatLifecycle
	metrics     authMetrics
	cookie      CookieConfig
}

// NewAuthHandler creates a new handler. metrics may be nil.
func NewAuthHandler(credentials credentialService, sessions sessionIssuer, chat chatLifecycle, metrics authMetrics, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{credentials: credentials, sessions: sessions, chat: chat, metrics: metrics, cookie: cookie}
}

// Register godoc
// @Summary Register student
// @Description Create a student account and its initial academic record
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.RegisterRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, appErrors.ErrValidation.Message))
		return
	}

	info, err := h.credentials.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordRegistration()
	}

	response.JSON(c, http.StatusCreated, info, map[string]interface{}{"message": "Cadastro realizado com sucesso! Faça login."})
}

// Login godoc
// @Summary Authenticate student
// @Description Authenticate by registration id and password; sets the session cookie
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, appErrors.ErrValidation.Message))
		return
	}

	user, err := h.credentials.Login(c.Request.Context(), req)
	if h.metrics != nil {
		h.metrics.RecordLogin(err == nil)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	token, claims, err := h.sessions.Issue(user)
	if err != nil {
		response.Error(c, err)
		return
	}
	if _, err := h.chat.Start(c.Request.Context(), ownerFromClaims(claims)); err != nil {
		response.Error(c, err)
		return
	}

	ttl := h.sessions.TTL()
	h.setCookie(c, token, int(ttl.Seconds()))
	response.JSON(c, http.StatusOK, models.LoginResponse{
		Token:     token,
		ExpiresIn: int64(ttl.Seconds()),
		User:      user.Info(),
	})
}

// Logout godoc
// @Summary Logout
// @Description Discard the chat session and clear the session cookie
// @Tags Authentication
// @Success 204
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if claims := claimsFromContext(c); claims != nil {
		if err := h.chat.End(c.Request.Context(), claims.SessionID); err != nil {
			response.Error(c, err)
			return
		}
	}
	h.setCookie(c, "", -1)
	response.NoContent(c)
}

// Me godoc
// @Summary Current user
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	info, err := h.credentials.Profile(c.Request.Context(), claims.RegistrationID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, info)
}

func (h *AuthHandler) setCookie(c *gin.Context, value string, maxAge int) {
	if h.cookie.Name == "" {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, value, maxAge, "/", "", h.cookie.Secure, true)
}
