package router

import (
	"github.com/oksasatya/nutriquest/internal/application"
	"github.com/oksasatya/nutriquest/internal/container"
	handlers "github.com/oksasatya/nutriquest/internal/interface/http"
	"github.com/oksasatya/nutriquest/internal/interface/middleware"
	"github.com/oksasatya/nutriquest/internal/router/modules"
	"github.com/oksasatya/nutriquest/pkg/helpers"
)

// Deps are the services the HTTP modules are built from.
type Deps struct {
	Store      *application.ProfileStore
	Session    *application.SessionService
	Challenges *application.ChallengeService
	Avatars    *application.AvatarService
	Settings   *application.SettingsService
}

// BuildDeps assembles services from the container singletons.
func BuildDeps() Deps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	store := container.GetProfileStore()
	cat := container.GetCatalog()

	var upload application.UploadFunc
	if gcs := container.GetGCS(); gcs != nil && cfg.GCSBucket != "" {
		upload = helpers.GCSUploader(gcs, cfg.GCSBucket)
	}

	settings := container.GetSettings()
	if settings == nil {
		settings = application.NewSettingsService(container.GetKVRepo(), logger)
	}

	return Deps{
		Store:      store,
		Session:    application.NewSessionService(container.GetKVRepo(), logger, cfg.DemoAuthenticated),
		Challenges: application.NewChallengeService(store, cat, logger, container.GetES(), cfg.ESChallengesIndex),
		Avatars:    application.NewAvatarService(store, upload, logger),
		Settings:   settings,
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	Mount(r, BuildDeps())
}

// Mount registers every module for d on r.
func Mount(r *Registry, d Deps) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	rdb := container.GetRedis()
	guard := middleware.RequireSession(d.Session)

	r.Add(modules.NewSessionModule(handlers.NewSessionHandler(d.Session, logger), rdb))
	r.Add(modules.NewProfileModule(handlers.NewProfileHandler(d.Store, d.Avatars, logger), guard, rdb, cfg.AdminResetEnabled))
	r.Add(modules.NewChallengeModule(handlers.NewChallengeHandler(d.Store, d.Challenges, logger), guard, rdb))
	r.Add(modules.NewSettingsModule(handlers.NewSettingsHandler(d.Settings, logger), guard, rdb))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(rdb))
	}
}
