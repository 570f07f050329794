package app

import (
	"code4u_backend/docs"
	"code4u_backend/internal/middleware"
	"code4u_backend/internal/model"
	"code4u_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.HealthCheck)

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(), middleware.ActivityMiddleware(repos.user), a.Ready.Middleware())
	{
		a.registerLearnerRoutes(authGroup, c)

		// 创作者接口
		a.registerCreatorRoutes(authGroup, c)
	}

	// 3. 管理员相关接口
	a.registerAdminRoutes(router, c)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)

		auth := public.Group("/auth")
		auth.POST("/register", c.auth.Register)
		auth.POST("/login", c.auth.Login)
		auth.POST("/google", c.auth.GoogleLogin)

		public.GET("/legal/:doc", c.legal.GetDocument)
	}

	// 可选认证：游客可访问，登录用户获得个性化结果
	optional := router.Group("/api")
	optional.Use(middleware.TryAuthMiddleware(), a.Ready.Middleware())
	{
		optional.GET("/journeys", c.journey.GetJourneys)
		optional.GET("/journeys/:id", c.journey.GetJourney)
		optional.GET("/levels", c.game.ListLevels)
		optional.GET("/levels/:id", c.game.GetLevel)
		optional.GET("/badges", c.badge.ListBadges)
		optional.GET("/leaderboard", c.user.Leaderboard)
		optional.GET("/activities", c.user.RecentActivities)
	}
}

func (a *App) registerLearnerRoutes(r *gin.RouterGroup, c *controllers) {
	r.GET("/auth/me", c.auth.Me)

	users := r.Group("/users")
	{
		users.GET("/profile", c.user.GetProfile)
		users.PUT("/profile", c.user.UpdateProfile)
		users.POST("/avatar", c.user.UploadAvatar)
		users.DELETE("/avatar", c.user.DeleteAvatar)
		users.GET("/activities", c.user.MyActivities)
	}

	journeys := r.Group("/journeys")
	{
		journeys.GET("/progress", c.journey.GetProgress)
		journeys.POST("/sync", c.journey.Sync)
		journeys.POST("/:id/start", c.journey.StartJourney)
		journeys.POST("/:id/levels/:levelId/complete", c.journey.CompleteLevel)
	}

	levels := r.Group("/levels/:id")
	{
		levels.POST("/start", c.game.StartGame)
		levels.POST("/run", c.game.RunCode)
		levels.POST("/next", c.game.NextTask)
		levels.POST("/complete", c.game.CompleteLevel)
	}
	r.GET("/progress", c.game.GetProgress)

	r.GET("/badges/mine", c.badge.MyBadges)
	r.POST("/badges/check", c.badge.CheckBadges)

	r.POST("/feedback", c.feedback.Submit)
}

func (a *App) registerCreatorRoutes(r *gin.RouterGroup, c *controllers) {
	creator := r.Group("/creator")
	creator.Use(middleware.RoleMiddleware(model.RoleCreator))
	{
		creator.POST("/levels", c.game.SaveLevel)
		creator.PUT("/levels/:id", c.game.SaveLevel)
		creator.DELETE("/levels/:id", c.game.DeleteLevel)
		creator.POST("/levels/import", c.game.ImportLevels)

		creator.POST("/journeys", c.journey.SaveJourney)
		creator.PUT("/journeys/:id", c.journey.SaveJourney)
		creator.DELETE("/journeys/:id", c.journey.DeleteJourney)

		creator.POST("/badges", c.badge.SaveBadge)
		creator.PUT("/badges/:id", c.badge.SaveBadge)
		creator.DELETE("/badges/:id", c.badge.DeleteBadge)
	}
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RoleMiddleware(model.RoleAdmin), a.Ready.Middleware())
	{
		admin.GET("/users", c.user.GetUsers)
		admin.PUT("/users/:id/role", c.user.SetRole)
		admin.PUT("/users/:id/status", c.user.DisableUser)

		admin.POST("/journeys/sync", c.journey.SyncAll)

		admin.PUT("/legal/:doc", c.legal.UpdateDocument)

		admin.GET("/feedback", c.feedback.List)
		admin.GET("/feedback/:id", c.feedback.Get)

		admin.POST("/migrations/paths", c.migration.MigratePaths)
	}
}
