package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/nutriquest/internal/interface/http"
	"github.com/oksasatya/nutriquest/internal/interface/middleware"
)

// ChallengeModule wires challenge and meal endpoints behind the session guard.
type ChallengeModule struct {
	Handler *handlers.ChallengeHandler
	Guard   gin.HandlerFunc
	Redis   *redis.Client
}

func NewChallengeModule(h *handlers.ChallengeHandler, guard gin.HandlerFunc, rdb *redis.Client) *ChallengeModule {
	return &ChallengeModule{Handler: h, Guard: guard, Redis: rdb}
}

func (m *ChallengeModule) Register(rg *gin.RouterGroup) {
	completeLimiter := middleware.RateLimit(m.Redis, 60, time.Minute, middleware.KeyByIPAndPath(), nil)

	ch := rg.Group("/challenges")
	ch.Use(m.Guard)
	{
		ch.GET("", m.Handler.Board)
		ch.GET("/completed", m.Handler.Completed)
		ch.GET("/search", m.Handler.Search)
		ch.POST("/complete", completeLimiter, m.Handler.Complete)
		ch.POST("/:id/complete", completeLimiter, m.Handler.CompleteCatalog)
	}

	meals := rg.Group("/meals")
	meals.Use(m.Guard)
	{
		meals.GET("", m.Handler.Meals)
		meals.POST("/:id/log", completeLimiter, m.Handler.LogMeal)
	}
}
