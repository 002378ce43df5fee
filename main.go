package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arcade-cabinet/beppo-laughs/api"
	api_i "github.com/arcade-cabinet/beppo-laughs/api/i"
	"github.com/arcade-cabinet/beppo-laughs/api/identity"
	mazeapi "github.com/arcade-cabinet/beppo-laughs/api/maze"
	sessionapi "github.com/arcade-cabinet/beppo-laughs/api/session"
	"github.com/arcade-cabinet/beppo-laughs/catalog"
	"github.com/arcade-cabinet/beppo-laughs/config"
	pb "github.com/arcade-cabinet/beppo-laughs/game/pb_encoder"
	"github.com/arcade-cabinet/beppo-laughs/infrastruture/cache"
	logger "github.com/arcade-cabinet/beppo-laughs/infrastruture/log"
	"github.com/arcade-cabinet/beppo-laughs/infrastruture/repo"
	"github.com/arcade-cabinet/beppo-laughs/infrastruture/token"
	"github.com/arcade-cabinet/beppo-laughs/service"
	"github.com/arcade-cabinet/beppo-laughs/service/i"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Global variables for dependencies
var (
	redisClient       *redis.Client
	mongoClient       *mongo.Client
	layoutCache       i.LayoutCache
	assetCatalog      *catalog.Catalog
	mazeService       *service.MazeService
	sessionManager    *service.SessionManager
	jwtTokenizer      i.Tokenizer
	mazeController    api_i.Controller
	sessionController api_i.Controller
	router            *api.Router
	appLogger         *logger.Logger
)

func newLogger(prefix, color string) *logger.Logger {
	l, err := logger.New(prefix, color, os.Stdout)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating %s logger: %v", prefix, err))
		os.Exit(1)
	}
	return l
}

func initLayoutCache(ctx context.Context) {
	if config.Envs.RedisAddr == "" {
		layoutCache = cache.NewMemoryLayoutCache()
		appLogger.Warning("REDIS_ADDR not set, layouts are cached in memory")
		return
	}

	redisClient = redis.NewClient(&redis.Options{
		Addr:     config.Envs.RedisAddr,
		Password: config.Envs.RedisPassword,
		DB:       config.Envs.RedisDB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		appLogger.Error(fmt.Sprintf("Redis ping failed: %v", err))
		os.Exit(1)
	}
	layoutCache = cache.NewRedisLayoutCache(redisClient)
	appLogger.Info("Connected to Redis")
}

func initMongo(ctx context.Context) {
	uri := fmt.Sprintf("mongodb://%s:%s@%s:%v", config.Envs.DBUser, config.Envs.DBPassword, config.Envs.DBHost, config.Envs.DBPort)

	clientOptions := options.Client().ApplyURI(uri)
	var err error
	mongoClient, err = mongo.Connect(ctx, clientOptions)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Failed to connect to MongoDB: %v", err))
		os.Exit(1)
	}
	if err = mongoClient.Ping(ctx, nil); err != nil {
		appLogger.Error(fmt.Sprintf("MongoDB ping failed: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Connected to MongoDB")
}

// fileCatalog reads CATALOG_PATH, or the embedded catalog when it is unset.
func fileCatalog() *catalog.Catalog {
	if config.Envs.CatalogPath == "" {
		return catalog.Default()
	}
	c, err := catalog.LoadFile(config.Envs.CatalogPath)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Loading catalog %s: %v", config.Envs.CatalogPath, err))
		os.Exit(1)
	}
	return c
}

func initCatalog(ctx context.Context) {
	if mongoClient == nil {
		assetCatalog = fileCatalog()
		appLogger.Info(fmt.Sprintf("Catalog loaded with %d obstacles", len(assetCatalog.ObstacleAssets())))
		return
	}

	catalogRepo := repo.NewCatalogRepo(mongoClient, config.Envs.DBName, "catalogs")
	var err error
	assetCatalog, err = catalogRepo.Latest(ctx)
	if errors.Is(err, repo.ErrCatalogNotFound) {
		assetCatalog = fileCatalog()
		err = catalogRepo.Save(ctx, assetCatalog)
		appLogger.Info("Seeded catalog database")
	}
	if err != nil {
		appLogger.Error(fmt.Sprintf("Loading catalog: %v", err))
		os.Exit(1)
	}
	appLogger.Info(fmt.Sprintf("Catalog loaded with %d obstacles", len(assetCatalog.ObstacleAssets())))
}

func initMazeService() {
	var err error
	mazeService, err = service.NewMazeService(service.MazeConfig{
		Cache:    layoutCache,
		Catalog:  assetCatalog,
		Geometry: config.Envs.Geometry,
		TTL:      config.Envs.LayoutCacheTTL,
		Logger:   newLogger("MAZE", config.ColorBlue),
	})
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating maze service: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Maze service initialized")
}

func initJWTTokenizer() {
	jwtTokenizer = token.NewJwtService(config.Envs.JWTSecret, config.Envs.JWTIssuer)
	appLogger.Info("JWT Tokenizer initialized")
}

func initSessionManager() {
	var err error
	sessionManager, err = service.NewSessionManager(&service.Config{
		Levels:      mazeService,
		Tokenizer:   jwtTokenizer,
		Logger:      newLogger("SESSION-MANAGER", config.ColorCyan),
		Tuning:      config.Envs.Tuning,
		MaxSanity:   config.Envs.MaxSanity,
		TickRate:    config.Envs.TickRate,
		IdleTimeout: config.Envs.IdleTimeout,
		TokenTTL:    config.Envs.TokenTTL,
		MaxSessions: config.Envs.MaxSessions,
	})
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating session manager: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Session manager initialized")
}

func initControllers() {
	apiLogger := newLogger("API", config.ColorMagenta)
	mazeController = mazeapi.NewController(mazeService, apiLogger, config.Envs.MazeWidth, config.Envs.MazeHeight)

	var err error
	sessionController, err = sessionapi.NewController(sessionapi.Config{
		Sessions:      sessionManager,
		Encoder:       &pb.Protobuf{},
		Logger:        apiLogger,
		DefaultWidth:  config.Envs.MazeWidth,
		DefaultHeight: config.Envs.MazeHeight,
	})
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating session controller: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Controllers initialized")
}

func initRouter(t i.Tokenizer) {
	gin.SetMode(config.Envs.GinMode)
	router = api.NewRouter(api.Config{
		Addr:                    fmt.Sprintf("%s:%v", config.Envs.HostIP, config.Envs.RESTPort),
		BaseURL:                 "/api",
		Controllers:             []api_i.Controller{mazeController, sessionController},
		AuthorizationMiddleware: identity.Authoriz(t),
	})
	appLogger.Info("Router initialized")
}

func main() {
	appLogger, _ = logger.New("APP", config.ColorGreen, os.Stdout)
	config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel() // Ensure the context is always canceled

	initLayoutCache(ctx)
	if redisClient != nil {
		defer redisClient.Close()
	}
	if config.Envs.DBHost != "" {
		initMongo(ctx)
		defer func() {
			_ = mongoClient.Disconnect(context.Background())
		}()
	}
	initCatalog(ctx)
	initMazeService()
	initJWTTokenizer()
	initSessionManager()
	initControllers()
	initRouter(jwtTokenizer)

	server := router.Server()
	errs := make(chan error, 1)
	go func() {
		errs <- server.ListenAndServe()
	}()
	appLogger.Info(fmt.Sprintf("Listening on %s", server.Addr))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errs:
		if !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error(fmt.Sprintf("Starting server: %v", err))
		}
	case sig := <-stop:
		appLogger.Info(fmt.Sprintf("Received %s, shutting down", sig))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Warning(fmt.Sprintf("Server shutdown: %v", err))
	}
	sessionManager.StopAll()
	appLogger.Info("Stopped")
}
