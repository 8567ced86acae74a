// Package api_router 提供 HTTP API 路由处理器
package api_router

import (
	"github.com/astralvault/page-sync-service/internal/app"
	"github.com/astralvault/page-sync-service/internal/service"
	pkgapp "github.com/astralvault/page-sync-service/pkg/app"
	"github.com/astralvault/page-sync-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// Handler 基础 Handler 结构体，封装 App Container
// 所有 API Handler 都应该嵌入此结构体以获得依赖注入能力
type Handler struct {
	App *app.App
	WSS *pkgapp.WebsocketServer
}

// NewHandler 创建基础 Handler 实例
func NewHandler(a *app.App) *Handler {
	return &Handler{App: a}
}

// NewHandlerWithWSS 创建带 WebSocket 服务的 Handler 实例
func NewHandlerWithWSS(a *app.App, wss *pkgapp.WebsocketServer) *Handler {
	return &Handler{App: a, WSS: wss}
}

// svc 创建绑定到当前请求的 Service 实例
func (h *Handler) svc(c *gin.Context) *service.Service {
	return service.New(h.App.Dao, c).
		WithTokenManager(h.App.TokenManager).
		WithLogger(h.App.Logger()).
		WithSF(h.App.SF)
}

// toErrResponse 将业务错误写入响应，未知错误归一为服务器内部错误
func toErrResponse(response *pkgapp.Response, err error) {
	if cerr, ok := err.(*code.Code); ok {
		response.ToResponse(cerr)
		return
	}
	response.ToResponse(code.ErrorServerInternal.WithDetails(err.Error()))
}
