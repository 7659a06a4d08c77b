package router

import (
	"github.com/beego/beego/v2/server/web"
	"github.com/skillroad/backend-go/app/controllers"
	"github.com/skillroad/backend-go/app/middleware"
)

// Init registers all routes. Must be called after config is loaded.
func Init() {
	web.Router("/", &controllers.RootController{}, "get:Index")
	web.Router("/health", &controllers.HealthController{}, "get:Health")
	web.Router("/metrics", &controllers.MetricsController{}, "get:Metrics")

	web.InsertFilter("/*", web.BeforeRouter, middleware.CORSMiddleware)

	// 认证路由
	authController := &controllers.AuthController{}
	web.Router("/api/auth/register", authController, "post:Register")
	web.Router("/api/auth/login", authController, "post:Login")
	web.Router("/api/auth/me", authController, "get:Me")
	web.Router("/api/auth/forgot-password", authController, "post:ForgotPassword")
	web.Router("/api/auth/reset-password", authController, "post:ResetPassword")

	// 路线图路由
	// 注意：具体路由必须在参数路由之前，否则/generate会被:id匹配
	roadmapController := &controllers.RoadmapController{}
	web.Router("/api/roadmaps/generate", roadmapController, "post:Generate")
	web.Router("/api/roadmaps/favorites", roadmapController, "get:ListFavorites")
	web.Router("/api/roadmaps", roadmapController, "get:List;post:Create")
	web.Router("/api/roadmaps/:id", roadmapController, "get:Get")
	web.Router("/api/roadmaps/:id/favorite", roadmapController, "post:AddFavorite;delete:RemoveFavorite")
	web.Router("/api/roadmaps/:id/progress", roadmapController, "get:ListProgress")
	web.Router("/api/roadmaps/:id/steps/:step_id/progress", roadmapController, "put:UpdateProgress")

	// 仪表盘
	web.Router("/api/dashboard", roadmapController, "get:Dashboard")

	// 缓存管理
	web.Router("/api/cache/clear", &controllers.CacheController{}, "post:Clear")
}
