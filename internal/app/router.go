package app

import (
	"campus_connect_backend/docs"
	"campus_connect_backend/internal/config"
	"campus_connect_backend/internal/middleware"
	"campus_connect_backend/internal/model"
	"campus_connect_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.HealthCheck)

	a.registerPublicRoutes(router, c)
	a.registerResourceRoutes(router, c, repos, cfg)
	a.registerNotificationRoutes(router, c, repos, cfg)
	a.registerUserRoutes(router, c, repos, cfg)
	a.registerAdminRoutes(router, c, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)

		public.POST("/subscribe", c.subscription.Subscribe)
		public.GET("/subscribe/count", c.subscription.Count)
	}
}

func (a *App) registerResourceRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	resources := router.Group("/api/resources")
	resources.Use(middleware.ActivityMiddleware(repos.user))
	{
		// 列表与详情允许游客访问；登录用户访问详情会记录浏览
		resources.GET("", middleware.TryAuthMiddleware(cfg), c.resource.List)
		resources.GET("/:id", middleware.TryAuthMiddleware(cfg), c.resource.Get)
		resources.GET("/:id/ratings", middleware.TryAuthMiddleware(cfg), c.resource.ListRatings)

		authorized := resources.Group("")
		authorized.Use(middleware.AuthMiddleware(cfg))
		{
			authorized.POST("", c.resource.Create)
			authorized.PUT("/:id", c.resource.Update)
			authorized.DELETE("/:id", c.resource.Delete)

			authorized.POST("/:id/like", c.resource.ToggleLike)
			authorized.POST("/:id/save", c.resource.ToggleSave)
			authorized.POST("/:id/rate", c.resource.Rate)
			authorized.GET("/:id/views", c.resource.ListViews)

			authorized.GET("/liked", c.resource.ListLiked)
			authorized.GET("/saved", c.resource.ListSaved)
			authorized.GET("/recommended", c.resource.Recommended)
		}
	}
}

func (a *App) registerNotificationRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	notifications := router.Group("/api/notifications")
	notifications.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		notifications.GET("", c.notification.List)
		notifications.GET("/unread-count", c.notification.UnreadCount)
		notifications.PUT("/:id/read", c.notification.MarkRead)
		notifications.PUT("/read-all", c.notification.MarkAllRead)
	}
}

func (a *App) registerUserRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	users := router.Group("/api/users")
	users.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		users.GET("/me", c.user.GetProfile)
		users.PUT("/me", c.user.UpdateProfile)
		users.POST("/me/avatar", c.user.UploadAvatar)
	}
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	admin := router.Group("/api")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		admin.POST("/resources/:id/reconcile", c.resource.Reconcile)
		admin.GET("/subscribe/all", c.subscription.ListAll)
		admin.POST("/subscribe/notify", c.subscription.NotifyLaunch)
	}
}
