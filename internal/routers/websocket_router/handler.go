// Package websocket_router 提供 WebSocket 路由处理器
package websocket_router

import (
	"github.com/astralvault/page-sync-service/internal/app"
)

// WSHandler 基础 WebSocket Handler，封装 App Container
type WSHandler struct {
	App *app.App
}

// NewWSHandler 创建基础 WSHandler 实例
func NewWSHandler(a *app.App) *WSHandler {
	return &WSHandler{App: a}
}
