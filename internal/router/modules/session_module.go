package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/nutriquest/internal/interface/http"
	"github.com/oksasatya/nutriquest/internal/interface/middleware"
)

// SessionModule exposes the demo sign-in flag.
// Public: GET /api/session, POST /api/session/login, POST /api/session/logout
type SessionModule struct {
	Handler *handlers.SessionHandler
	Redis   *redis.Client
}

func NewSessionModule(h *handlers.SessionHandler, rdb *redis.Client) *SessionModule {
	return &SessionModule{Handler: h, Redis: rdb}
}

func (m *SessionModule) Register(rg *gin.RouterGroup) {
	limiter := middleware.RateLimit(m.Redis, 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.GET("/session", m.Handler.Status)
	rg.POST("/session/login", limiter, m.Handler.Login)
	rg.POST("/session/logout", limiter, m.Handler.Logout)
}
