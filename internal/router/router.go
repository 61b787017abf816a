package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sunoy2004/yanc-cms-sub001/internal/handler"
	"github.com/sunoy2004/yanc-cms-sub001/internal/logger"
)

// Options configures the engine around the handler set.
type Options struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	// UploadDir is served under UploadURLPath when media lives on local disk.
	UploadDir     string
	UploadURLPath string
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	r.Use(logger.Middleware(log))

	// 后台前端跨域访问
	corsConfig := cors.DefaultConfig()
	if len(opts.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = opts.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", logger.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{logger.RequestIDHeader}
	corsConfig.MaxAge = 12 * time.Hour
	r.Use(cors.New(corsConfig))

	// 本地存储时直接提供上传文件
	if opts.UploadDir != "" && opts.UploadURLPath != "" {
		uploads := r.Group(opts.UploadURLPath)
		uploads.Use(handler.UploadHeaders())
		uploads.Static("/", opts.UploadDir)
	}

	r.GET("/ping", handler.Ping)
	r.GET("/healthz", api.HealthCheck)

	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/auth/login", api.Login)

		public := apiGroup.Group("/public")
		{
			public.GET("/hero", api.PublicHero)
			public.GET("/events", api.PublicEvents)
			public.GET("/programs", api.PublicPrograms)
			public.GET("/programs/:slug", api.PublicProgram)
			public.GET("/mentor-talks", api.PublicMentorTalks)
			public.GET("/team-members", api.PublicTeamMembers)
			public.GET("/testimonials", api.PublicTestimonials)
			public.GET("/sections/:key", api.PublicSection)
		}

		// 需要认证的后台路由
		auth := apiGroup.Group("")
		auth.Use(api.AuthRequired())
		{
			auth.GET("/auth/me", api.CurrentUser)
			auth.POST("/auth/refresh", api.RefreshToken)
			auth.PUT("/auth/password", api.ChangePassword)

			auth.GET("/dashboard/stats", api.DashboardStats)

			registerContent(auth.Group("/heroes"), api.Heroes())
			registerContent(auth.Group("/events"), api.Events())
			registerContent(auth.Group("/programs"), api.Programs())
			registerContent(auth.Group("/mentor-talks"), api.MentorTalks())
			registerContent(auth.Group("/team-members"), api.TeamMembers())
			registerContent(auth.Group("/testimonials"), api.Testimonials())
			registerContent(auth.Group("/sections"), api.Sections())

			auth.GET("/media", api.ListMedia)
			auth.POST("/media", api.UploadMedia)
			auth.GET("/media/:id", api.GetMedia)
			auth.PATCH("/media/:id", api.UpdateMedia)
			auth.DELETE("/media/:id", api.DeleteMedia)
			auth.GET("/media/:id/raw", api.RawMedia)
		}
	}

	return r
}

func registerContent(group *gin.RouterGroup, res handler.ContentResource) {
	group.GET("", res.List)
	group.POST("", res.Create)
	group.POST("/bulk-delete", res.BulkDelete)
	group.PUT("/order", res.Reorder)
	group.GET("/:id", res.Get)
	group.PUT("/:id", res.Update)
	group.PATCH("/:id", res.Patch)
	group.DELETE("/:id", res.Delete)
	group.PATCH("/:id/publish", res.Publish)
}
