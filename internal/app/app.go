package app

import (
	"campus_connect_backend/internal/config"
	"campus_connect_backend/internal/controller"
	"campus_connect_backend/internal/repository"
	"campus_connect_backend/internal/service"
	"campus_connect_backend/pkg/configwatcher"
	"campus_connect_backend/pkg/database"
	"campus_connect_backend/pkg/logger"
	"campus_connect_backend/pkg/monitoring"
	"campus_connect_backend/pkg/security"
	"campus_connect_backend/pkg/tracing"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user         *repository.UserRepository
	resource     *repository.ResourceRepository
	engagement   *repository.EngagementRepository
	rating       *repository.RatingRepository
	notification *repository.NotificationRepository
	subscriber   *repository.SubscriberRepository
}

type services struct {
	auth           *service.AuthService
	user           *service.UserService
	storage        *service.StorageService
	resource       *service.ResourceService
	engagement     *service.EngagementService
	rating         *service.RatingService
	recommendation *service.RecommendationService
	notification   *service.NotificationService
	subscription   *service.SubscriptionService
}

type controllers struct {
	auth         *controller.AuthController
	user         *controller.UserController
	resource     *controller.ResourceController
	notification *controller.NotificationController
	subscription *controller.SubscriptionController
	health       *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:         repository.NewUserRepository(db),
		resource:     repository.NewResourceRepository(db),
		engagement:   repository.NewEngagementRepository(db),
		rating:       repository.NewRatingRepository(db),
		notification: repository.NewNotificationRepository(db),
		subscriber:   repository.NewSubscriberRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user)
	s.notification = service.NewNotificationService(repos.notification, rdb)
	s.engagement = service.NewEngagementService(repos.engagement, repos.resource, repos.rating, repos.user, s.notification)
	s.rating = service.NewRatingService(repos.rating, repos.resource, repos.user, s.notification)
	s.recommendation = service.NewRecommendationService(repos.engagement, repos.resource)
	s.resource = service.NewResourceService(repos.resource, repos.engagement, repos.rating, repos.notification, repos.user, s.notification)
	s.subscription = service.NewSubscriptionService(repos.subscriber, logger.Log)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:         controller.NewAuthController(s.auth),
		user:         controller.NewUserController(s.user, s.storage),
		resource:     controller.NewResourceController(s.resource, s.engagement, s.rating, s.recommendation, s.storage),
		notification: controller.NewNotificationController(s.notification),
		subscription: controller.NewSubscriptionController(s.subscription),
		health:       controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	if cfg.MigrateOnly {
		return &App{Config: cfg, DB: db}
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// 通知未读数缓存降级为直查数据库
		logger.Log.Warn("Redis unavailable, caching disabled", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("campus-connect", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.RegisterConfigCallback(func(next *config.Config) {
		logger.Log.Info("configuration reloaded",
			zap.String("storage", next.Storage.Type),
			zap.Strings("cors", next.CORS.AllowedOrigins))
	})
	go configwatcher.WatchConfig("configs/config.yaml", func(next *config.Config) {
		for _, cb := range app.configCallbacks {
			cb(next)
		}
	})

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
