package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/unihelp-api/internal/models"
	appErrors "github.com/noah-isme/unihelp-api/pkg/errors"
	"github.com/noah-isme/unihelp-api/pkg/logger"
)

type stubAuthorizer struct{}

func (stubAuthorizer) Authorize(_ context.Context, token string) (*models.SessionClaims, error) {
	if token == "ended" {
		return nil, appErrors.Clone(appErrors.ErrSessionNotFound, "")
	}
	if token != "good" {
		return nil, appErrors.Wrap(errors.New("bad token"), appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, appErrors.ErrUnauthorized.Message)
	}
	return &models.SessionClaims{SessionID: "s1", RegistrationID: "2024001"}, nil
}

func newSessionRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/private", mw, func(c *gin.Context) {
		_, ok := c.Get(ContextSessionKey)
		c.JSON(http.StatusOK, gin.H{"authenticated": ok, "ra": c.GetString(logger.ContextRegistrationKey)})
	})
	return r
}

func TestSessionMiddleware(t *testing.T) {
	r := newSessionRouter(Session(stubAuthorizer{}, "unihelp_session"))

	tests := []struct {
		name   string
		setup  func(req *http.Request)
		status int
	}{
		{"no token", func(*http.Request) {}, http.StatusUnauthorized},
		{"bad cookie", func(req *http.Request) { req.AddCookie(&http.Cookie{Name: "unihelp_session", Value: "bad"}) }, http.StatusUnauthorized},
		{"cookie", func(req *http.Request) { req.AddCookie(&http.Cookie{Name: "unihelp_session", Value: "good"}) }, http.StatusOK},
		{"bearer", func(req *http.Request) { req.Header.Set("Authorization", "Bearer good") }, http.StatusOK},
		{"malformed header", func(req *http.Request) { req.Header.Set("Authorization", "Token good") }, http.StatusUnauthorized},
		{"ended session", func(req *http.Request) { req.Header.Set("Authorization", "Bearer ended") }, http.StatusUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			tc.setup(req)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				assert.Contains(t, rec.Body.String(), `"ra":"2024001"`)
			}
		})
	}
}

func TestOptionalSessionMiddleware(t *testing.T) {
	r := newSessionRouter(OptionalSession(stubAuthorizer{}, "unihelp_session"))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/private", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"authenticated":false`)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Contains(t, rec.Body.String(), `"authenticated":true`)
}
