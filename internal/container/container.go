package container

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/nutriquest/config"
	"github.com/oksasatya/nutriquest/internal/application"
	"github.com/oksasatya/nutriquest/internal/domain/repository"
	"github.com/oksasatya/nutriquest/internal/infrastructure/catalog"
	"github.com/oksasatya/nutriquest/pkg/helpers"
)

// app-level container to share constructed components across packages.
// Set once in main before the router is built; nil means "not configured".

var (
	cfg         *config.Config
	logger      *logrus.Logger
	redisClient *redis.Client
	gcsClient   *storage.Client
	rabbitPub   *helpers.RabbitPublisher
	esClient    *elasticsearch.Client

	kvRepo       repository.KeyValueRepository
	profileStore *application.ProfileStore
	settings     *application.SettingsService
	cat          *catalog.Catalog
)

func SetConfig(c *config.Config) { cfg = c }
func GetConfig() *config.Config  { return cfg }
func SetLogger(l *logrus.Logger) { logger = l }
func GetLogger() *logrus.Logger  { return logger }
func SetRedis(r *redis.Client)   { redisClient = r }
func GetRedis() *redis.Client    { return redisClient }
func SetGCS(s *storage.Client)   { gcsClient = s }
func GetGCS() *storage.Client    { return gcsClient }

func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }
func SetES(c *elasticsearch.Client)           { esClient = c }
func GetES() *elasticsearch.Client            { return esClient }

func SetKVRepo(r repository.KeyValueRepository)   { kvRepo = r }
func GetKVRepo() repository.KeyValueRepository    { return kvRepo }
func SetProfileStore(s *application.ProfileStore) { profileStore = s }
func GetProfileStore() *application.ProfileStore  { return profileStore }
func SetCatalog(c *catalog.Catalog)               { cat = c }
func GetCatalog() *catalog.Catalog                { return cat }

func SetSettings(s *application.SettingsService) { settings = s }
func GetSettings() *application.SettingsService  { return settings }
