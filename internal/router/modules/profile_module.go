package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/nutriquest/internal/interface/http"
	"github.com/oksasatya/nutriquest/internal/interface/middleware"
)

// ProfileModule wires the profile endpoints behind the session guard.
// GET/PATCH/PUT /api/profile, POST /api/profile/avatar, POST /api/profile/reset (optional)
type ProfileModule struct {
	Handler      *handlers.ProfileHandler
	Guard        gin.HandlerFunc
	Redis        *redis.Client
	ResetEnabled bool
}

func NewProfileModule(h *handlers.ProfileHandler, guard gin.HandlerFunc, rdb *redis.Client, resetEnabled bool) *ProfileModule {
	return &ProfileModule{Handler: h, Guard: guard, Redis: rdb, ResetEnabled: resetEnabled}
}

func (m *ProfileModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/profile")
	g.Use(m.Guard, middleware.RateLimit(m.Redis, 300, time.Minute, middleware.KeyByIP(), nil))

	uploadLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIPAndPath(), nil)

	g.GET("", m.Handler.GetProfile)
	g.PATCH("", m.Handler.UpdateProfile)
	g.PUT("", m.Handler.UpdateProfile)
	g.POST("/avatar", uploadLimiter, m.Handler.UploadAvatar)
	if m.ResetEnabled {
		g.POST("/reset", m.Handler.Reset)
	}
}
