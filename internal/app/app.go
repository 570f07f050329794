package app

import (
	"code4u_backend/internal/catalog"
	"code4u_backend/internal/config"
	"code4u_backend/internal/controller"
	"code4u_backend/internal/middleware"
	"code4u_backend/internal/repository"
	"code4u_backend/internal/service"
	"code4u_backend/pkg/configwatcher"
	"code4u_backend/pkg/database"
	"code4u_backend/pkg/logger"
	"code4u_backend/pkg/monitoring"
	"code4u_backend/pkg/scheduler"
	"code4u_backend/pkg/security"
	"code4u_backend/pkg/tracing"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 配置文件目录
const configDir = "configs"

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
	Ready  *middleware.ReadyGate

	services        *services
	scheduler       *scheduler.Scheduler
	limiter         *security.RateLimiter
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user         *repository.UserRepository
	journey      *repository.JourneyRepository
	level        *repository.LevelRepository
	progress     *repository.ProgressRepository
	badge        *repository.BadgeRepository
	activity     *repository.ActivityRepository
	legal        *repository.LegalRepository
	feedback     *repository.FeedbackRepository
	learningPath *repository.LearningPathRepository
}

type services struct {
	storage       *service.StorageService
	auth          *service.AuthService
	user          *service.UserService
	badge         *service.BadgeService
	journey       *service.JourneyService
	game          *service.GameService
	levelImport   *service.LevelImportService
	pathMigration *service.PathMigrationService
	legal         *service.LegalService
	feedback      *service.FeedbackService
}

type controllers struct {
	auth      *controller.AuthController
	user      *controller.UserController
	journey   *controller.JourneyController
	game      *controller.GameController
	badge     *controller.BadgeController
	legal     *controller.LegalController
	feedback  *controller.FeedbackController
	migration *controller.MigrationController
	health    *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:         repository.NewUserRepository(db),
		journey:      repository.NewJourneyRepository(db),
		level:        repository.NewLevelRepository(db),
		progress:     repository.NewProgressRepository(db),
		badge:        repository.NewBadgeRepository(db),
		activity:     repository.NewActivityRepository(db),
		legal:        repository.NewLegalRepository(db),
		feedback:     repository.NewFeedbackRepository(db),
		learningPath: repository.NewLearningPathRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}
	cat := catalog.MustDefault()

	// Redis 不可用时游戏会话保存在进程内存中
	var sessions service.SessionStore
	if rdb != nil {
		sessions = service.NewRedisSessionStore(rdb)
	} else {
		sessions = service.NewMemorySessionStore()
	}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user, repos.activity, s.storage, cfg.Leaderboard)
	s.badge = service.NewBadgeService(repos.badge, repos.user)
	s.journey = service.NewJourneyService(repos.journey, repos.level, repos.progress, repos.user, repos.activity, s.badge)
	s.game = service.NewGameService(repos.level, repos.user, s.badge, s.journey, sessions, service.SubstringGrader{}, cat, cfg.Game)
	s.levelImport = service.NewLevelImportService(repos.level)
	s.pathMigration = service.NewPathMigrationService(repos.learningPath, s.journey, repos.progress)
	s.legal = service.NewLegalService(repos.legal, cat)
	s.feedback = service.NewFeedbackService(repos.feedback)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:      controller.NewAuthController(s.auth),
		user:      controller.NewUserController(s.user),
		journey:   controller.NewJourneyController(s.journey),
		game:      controller.NewGameController(s.game, s.levelImport),
		badge:     controller.NewBadgeController(s.badge),
		legal:     controller.NewLegalController(s.legal),
		feedback:  controller.NewFeedbackController(s.feedback),
		migration: controller.NewMigrationController(s.pathMigration),
		health:    controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	limiter, err := security.NewRateLimiter(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window())
	if err != nil {
		logger.Log.Fatal("Invalid rate limit config", zap.Error(err))
	}
	a.limiter = limiter
	router.Use(limiter.Middleware())

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())

	router.Use(func(c *gin.Context) {
		c.Set("config", a.Config)
		c.Next()
	})
}

func NewApp(cfg *config.Config) *App {
	if err := logger.InitLogger(cfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if cfg.ForceMigrate || cfg.Server.Mode != gin.ReleaseMode {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Ready:  middleware.NewReadyGate(cfg.Server.ReadyTimeout()),
	}
	if cfg.MigrateOnly {
		return app
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Warn("Redis unavailable, game sessions will be kept in memory", zap.Error(err))
		rdb = nil
	}
	app.Redis = rdb

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("code4u-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	app.registerRoutes(router, controllers, repos)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	// 排行榜可见性支持热更新
	app.RegisterConfigCallback(func(newCfg *config.Config) {
		services.user.ApplyLeaderboardConfig(newCfg.Leaderboard)
	})

	return app
}

// WarmUp 写入内置数据并预加载旅程
func (a *App) WarmUp(ctx context.Context) error {
	if err := database.SeedDefaults(a.DB.WithContext(ctx)); err != nil {
		return err
	}
	if journeys, loadErr := a.services.journey.FetchAllJourneys(ctx); loadErr != "" {
		logger.Log.Warn("Journey preload failed", zap.String("error", loadErr))
	} else {
		logger.Log.Info("Journeys preloaded", zap.Int("count", len(journeys)))
	}
	return nil
}

// ImportLevels 从文件导入关卡，供命令行使用
func (a *App) ImportLevels(ctx context.Context, path string) (*service.ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return a.services.levelImport.ImportReader(ctx, filepath.Base(path), f)
}

// MigratePaths 将旧版学习路径迁移为旅程，供命令行使用
func (a *App) MigratePaths(ctx context.Context) (*service.PathMigrationResult, error) {
	return a.services.pathMigration.MigratePathsToJourneys(ctx)
}

func (a *App) startBackgroundTasks(ctx context.Context) {
	go a.warmUpAndOpen(ctx, warmUpBaseDelay, a.WarmUp)

	if a.limiter != nil {
		go a.limiter.Run(ctx)
	}

	go func() {
		err := configwatcher.WatchConfig(ctx, filepath.Join(configDir, "config.yaml"), func(newCfg *config.Config) {
			for _, cb := range a.configCallbacks {
				cb(newCfg)
			}
		})
		if err != nil {
			logger.Log.Warn("Config watcher stopped", zap.Error(err))
		}
	}()

	if a.Config.Scheduler.Enabled {
		a.scheduler = scheduler.New(a.services.journey)
		if err := a.scheduler.Start(a.Config.Scheduler.SyncTime); err != nil {
			logger.Log.Error("Failed to start scheduler", zap.Error(err))
			a.scheduler = nil
		}
	}
}

func (a *App) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器，初始化完成前的请求由就绪门阻塞
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	a.startBackgroundTasks(ctx)

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")
	cancel()

	if a.scheduler != nil {
		a.scheduler.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
	logger.Log.Sync()
}
