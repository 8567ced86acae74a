package websocket_router

import (
	"context"

	"github.com/astralvault/page-sync-service/internal/app"
	"github.com/astralvault/page-sync-service/internal/service"
	pkgapp "github.com/astralvault/page-sync-service/pkg/app"
	"github.com/astralvault/page-sync-service/pkg/code"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

// PageWSHandler WebSocket 页面处理器
type PageWSHandler struct {
	*WSHandler
}

// NewPageWSHandler 创建 PageWSHandler 实例
func NewPageWSHandler(a *app.App) *PageWSHandler {
	return &PageWSHandler{WSHandler: NewWSHandler(a)}
}

// pageSyncRequest 全量同步请求，Since 为毫秒时间戳，0 表示全量
type pageSyncRequest struct {
	Since int64 `json:"since"`
}

// PageSync replays the user's pages to the requesting connection
// PageSync 向请求连接回放该用户的页面，逐条发送后以 PageSyncEnd 结束
func (h *PageWSHandler) PageSync(c *pkgapp.WebsocketClient, msg *pkgapp.WSMessage) {
	if c.User == nil {
		c.ToResponse(code.ErrorInvalidUserAuthToken)
		return
	}

	params := &pageSyncRequest{}
	if len(msg.Data) > 0 {
		if err := sonic.Unmarshal(msg.Data, params); err != nil {
			c.ToResponse(code.ErrorInvalidParams.WithDetails(err.Error()))
			return
		}
	}

	svc := service.NewBackground(h.App.Dao, context.Background()).WithLogger(h.App.Logger())

	pages, err := svc.PageList(c.User.UID)
	if err != nil {
		h.App.Logger().Error("PageWSHandler.PageSync err",
			zap.Int64("uid", c.User.UID),
			zap.Error(err),
		)
		c.ToResponse(code.ErrorPageListFailed)
		return
	}

	count := 0
	for _, page := range pages {
		if params.Since > 0 && page.UpdatedAt <= params.Since {
			continue
		}
		c.ToResponse(code.Success.WithData(page), "PageSyncModify")
		count++
	}

	c.ToResponse(code.Success.WithData(map[string]int{"count": count}), "PageSyncEnd")
}
