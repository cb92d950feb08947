package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/nutriquest/config"
	"github.com/oksasatya/nutriquest/internal/application"
	"github.com/oksasatya/nutriquest/internal/container"
	"github.com/oksasatya/nutriquest/internal/infrastructure/catalog"
	"github.com/oksasatya/nutriquest/internal/infrastructure/kv"
	"github.com/oksasatya/nutriquest/internal/interface/middleware"
	"github.com/oksasatya/nutriquest/internal/router"
	"github.com/oksasatya/nutriquest/pkg/helpers"
	"github.com/oksasatya/nutriquest/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	// Redis is optional: rate limiting and the redis storage driver use it
	var rdb *goredis.Client
	if cfg.RedisAddr != "" {
		rdb = helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := helpers.PingRedis(ctx, rdb); err != nil {
			helpers.LogError(logger, "redis unreachable, rate limiting will fail open", err, logrus.Fields{"addr": cfg.RedisAddr})
		}
		defer func() { _ = rdb.Close() }()
	}

	kvRepo, closeKV, err := kv.Open(ctx, cfg, logger, rdb)
	if err != nil {
		log.Fatalf("failed to open %s storage: %v", cfg.StorageDriver, err)
	}
	defer closeKV()

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("failed to load challenge catalog: %v", err)
	}

	store := application.NewProfileStore(kvRepo, logger)
	store.Initialize(ctx)
	settings := application.NewSettingsService(kvRepo, logger)

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetRedis(rdb)
	container.SetKVRepo(kvRepo)
	container.SetProfileStore(store)
	container.SetCatalog(cat)
	container.SetSettings(settings)

	// GCS for avatar uploads
	if cfg.GCSBucket != "" {
		gcsClient, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			helpers.LogError(logger, "gcs init failed, avatar upload disabled", err, nil)
		} else {
			container.SetGCS(gcsClient)
			defer func() { _ = gcsClient.Close() }()
		}
	}

	// Elasticsearch for catalog search
	if cfg.SearchEngineEnabled {
		es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			helpers.LogError(logger, "elasticsearch init failed, using catalog scan", err, nil)
		} else {
			container.SetES(es)
		}
	}

	// RabbitMQ for notification jobs
	if cfg.MailSendEnabled {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQNotifyQueue)
		if err != nil {
			helpers.LogError(logger, "rabbitmq unavailable, notifications disabled", err, nil)
		} else {
			container.SetRabbitPub(pub)
			defer pub.Close()
			notifier := application.NewNotifier(pub, cat, settings, cfg, logger)
			unsubscribe := store.Subscribe(notifier.Handle)
			defer unsubscribe()
		}
	}

	deps := router.BuildDeps()
	if container.GetES() != nil {
		go func() {
			c, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()
			n, err := deps.Challenges.IndexCatalog(c)
			if err != nil {
				helpers.LogError(logger, "catalog indexing failed", err, logrus.Fields{"indexed": n})
				return
			}
			helpers.LogInfo(logger, "catalog indexed", logrus.Fields{"indexed": n, "index": cfg.ESChallengesIndex})
		}()
	}

	// Gin engine and global middleware
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	r.Use(cors.New(corsCfg))
	if cfg.HTTPLogEnabled || cfg.Env == "development" {
		r.Use(gin.Logger())
	}

	reg := router.NewRegistry(r)
	router.Mount(reg, deps)
	n := reg.RegisterAll()
	helpers.LogInfo(logger, "modules registered", logrus.Fields{"modules": n, "storage": cfg.StorageDriver})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
		return
	}
	logger.Info("server exited properly")
}
