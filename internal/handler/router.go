package handler

import (
	"github.com/gin-gonic/gin"
)

// Router groups the handlers mounted under the API prefix.
type Router struct {
	Auth          *AuthHandler
	Chat          *ChatHandler
	Conversations *ConversationHandler
	Students      *StudentHandler
	Metrics       *MetricsHandler
}

// Register mounts every route. requireSession guards the student routes; optionalSession only
// attaches claims.
func (rt Router) Register(r *gin.Engine, prefix string, requireSession, optionalSession gin.HandlerFunc) {
	if rt.Metrics != nil {
		r.GET("/health", rt.Metrics.Health)
		r.GET("/ready", rt.Metrics.Ready)
		r.GET("/metrics", rt.Metrics.Prometheus)
	}

	api := r.Group(prefix)

	auth := api.Group("/auth")
	auth.POST("/register", rt.Auth.Register)
	auth.POST("/login", rt.Auth.Login)
	auth.POST("/logout", optionalSession, rt.Auth.Logout)
	auth.GET("/me", requireSession, rt.Auth.Me)

	chat := api.Group("/chat", requireSession)
	chat.GET("", rt.Chat.History)
	chat.POST("/messages", rt.Chat.SendMessage)
	chat.POST("/reset", rt.Chat.Reset)

	conversations := api.Group("/conversations", requireSession)
	conversations.GET("", rt.Conversations.List)
	conversations.GET("/export", rt.Conversations.Export)

	api.GET("/students/me", requireSession, rt.Students.Me)
}
