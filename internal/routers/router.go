// Package routers 组装 HTTP 与 WebSocket 路由
package routers

import (
	"time"

	"github.com/astralvault/page-sync-service/internal/app"
	"github.com/astralvault/page-sync-service/internal/middleware"
	"github.com/astralvault/page-sync-service/internal/routers/api_router"
	"github.com/astralvault/page-sync-service/internal/routers/websocket_router"
	pkgapp "github.com/astralvault/page-sync-service/pkg/app"
	"github.com/astralvault/page-sync-service/pkg/code"
	"github.com/astralvault/page-sync-service/pkg/limiter"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var methodLimiters = limiter.NewMethodLimiter().AddBuckets(
	limiter.BucketRule{
		Key:          "/api/user",
		FillInterval: time.Second,
		Capacity:     10,
		Quantum:      10,
	},
)

// NewRouter 创建路由引擎并注册全部路由
func NewRouter(appContainer *app.App) *gin.Engine {

	cfg := appContainer.Config()
	wss := appContainer.WSS

	// 注册 WebSocket 动作处理器
	pageWSHandler := websocket_router.NewPageWSHandler(appContainer)
	wss.Use("PageSync", pageWSHandler.PageSync)

	gin.SetMode(cfg.Server.RunMode)
	r := gin.New()
	r.NoRoute(middleware.NoFound())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authKey := cfg.Security.AuthTokenKey

	api := r.Group("/api")
	{
		api.Use(middleware.AppInfo(app.Version))
		api.Use(middleware.RateLimiter(methodLimiters))
		api.Use(middleware.ContextTimeout(time.Duration(cfg.App.DefaultContextTimeout) * time.Second))
		api.Use(middleware.AccessLog(appContainer.Logger()))
		api.Use(middleware.Recovery(appContainer.Logger()))

		userHandler := api_router.NewUserHandler(appContainer)
		pageHandler := api_router.NewPageHandler(appContainer, wss)
		versionHandler := api_router.NewVersionHandler(appContainer)

		api.POST("/user/register", userHandler.Register)
		api.POST("/user/login", userHandler.Login)
		api.GET("/version", versionHandler.ServerVersion)

		auth := api.Group("", middleware.UserAuthToken(authKey))
		{
			auth.GET("/user/profile", userHandler.Profile)
			auth.PUT("/user/profile", userHandler.UpdateProfile)

			auth.GET("/pages", pageHandler.List)
			auth.POST("/pages", pageHandler.Create)
			auth.GET("/pages/:id", pageHandler.Get)
			auth.PUT("/pages/:id", pageHandler.Update)
			auth.DELETE("/pages/:id", pageHandler.Delete)

			// WebSocket 推送通道，升级前已完成令牌认证
			auth.GET("/ws", func(c *gin.Context) {
				v, _ := c.Get("user_token")
				user, ok := v.(*pkgapp.UserEntity)
				if !ok {
					pkgapp.NewResponse(c).ToResponse(code.ErrorInvalidUserAuthToken)
					return
				}
				if err := wss.Serve(user, c.Writer, c.Request); err != nil {
					appContainer.Logger().Error("websocket upgrade failed", zap.Error(err))
				}
			})
		}
	}

	return r
}
