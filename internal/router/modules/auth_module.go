package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/argentumhq/argentum/internal/application"
	handlers "github.com/argentumhq/argentum/internal/interface/http"
	"github.com/argentumhq/argentum/internal/interface/middleware"
)

// AuthModule wires the auth HTTP handlers into routes.
// Public: POST /api/v1/auth/register, POST /api/v1/auth/login
// Protected: GET /api/v1/auth/me
type AuthModule struct {
	Handler *handlers.AuthHandler
	Tokens  application.TokenManager
}

func NewAuthModule(h *handlers.AuthHandler, tokens application.TokenManager) *AuthModule {
	return &AuthModule{Handler: h, Tokens: tokens}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rg.POST("/auth/register", m.Handler.Register)
	rg.POST("/auth/login", m.Handler.Login)

	auth := rg.Group("/")
	auth.Use(middleware.BearerAuth(m.Tokens))
	{
		auth.GET("/auth/me", m.Handler.Me)
	}
}
