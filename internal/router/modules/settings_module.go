package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/nutriquest/internal/interface/http"
	"github.com/oksasatya/nutriquest/internal/interface/middleware"
)

// SettingsModule exposes user preferences behind the session guard.
// GET/PATCH /api/settings/notifications
type SettingsModule struct {
	Handler *handlers.SettingsHandler
	Guard   gin.HandlerFunc
	Redis   *redis.Client
}

func NewSettingsModule(h *handlers.SettingsHandler, guard gin.HandlerFunc, rdb *redis.Client) *SettingsModule {
	return &SettingsModule{Handler: h, Guard: guard, Redis: rdb}
}

func (m *SettingsModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/settings")
	g.Use(m.Guard, middleware.RateLimit(m.Redis, 60, time.Minute, middleware.KeyByIP(), nil))

	g.GET("/notifications", m.Handler.GetNotifications)
	g.PATCH("/notifications", m.Handler.UpdateNotifications)
}
