package main

import (
	"github.com/amaumene/gotorrentstream/internal/api"
	"github.com/amaumene/gotorrentstream/internal/auth"
	"github.com/amaumene/gotorrentstream/internal/cache"
	"github.com/amaumene/gotorrentstream/internal/config"
	"github.com/amaumene/gotorrentstream/internal/constants"
	"github.com/amaumene/gotorrentstream/internal/database"
	"github.com/amaumene/gotorrentstream/pkg/httputil"
	"github.com/amaumene/gotorrentstream/pkg/logger"
	"github.com/amaumene/gotorrentstream/pkg/ratelimiter"
)

var (
	Logger      logger.Logger
	Config      *config.Config
	DB          database.Database
	memoryCache *cache.LRUCache
	apiClient   *api.Client
	tokens      auth.TokenProvider
)

func InitializeLogger() {
	Logger = logger.New()
}

func InitializeConfig() {
	var err error
	Config, err = config.Load()
	if err != nil {
		Logger.Fatalf("failed to load configuration: %v", err)
	}
}

func InitializeDatabase() {
	var err error
	DB, err = database.NewBolt(Config.DatabasePath)
	if err != nil {
		Logger.Fatalf("failed to initialize database: %v", err)
	}
	Logger.Debugf("[app] database initialized at %s", Config.DatabasePath)
}

func InitializeServices() {
	memoryCache = cache.New(Config.CacheSize, Config.CacheTTL)
	tokens = auth.NewCached(auth.StaticToken(Config.Token))

	apiClient = api.New(
		Config.BaseURL,
		httputil.NewHTTPClient(constants.APITimeout),
		memoryCache,
		ratelimiter.NewTokenBucket(constants.APIRateBurst, constants.APIRateLimit),
		Logger,
	)

	Logger.Debugf("[app] services initialized - base url: %s", Config.BaseURL)
}
