package api_router

import (
	"github.com/astralvault/page-sync-service/internal/app"
	"github.com/astralvault/page-sync-service/internal/service"
	pkgapp "github.com/astralvault/page-sync-service/pkg/app"
	"github.com/astralvault/page-sync-service/pkg/code"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PageHandler 页面 API 路由处理器
// 成功的变更通过 WebSocket 推送给该用户的所有在线连接
type PageHandler struct {
	*Handler
}

// NewPageHandler 创建 PageHandler 实例
func NewPageHandler(a *app.App, wss *pkgapp.WebsocketServer) *PageHandler {
	return &PageHandler{Handler: NewHandlerWithWSS(a, wss)}
}

// List 获取当前用户全部页面
func (h *PageHandler) List(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	uid := pkgapp.GetUID(c)
	if uid == 0 {
		response.ToResponse(code.ErrorInvalidUserAuthToken)
		return
	}

	pages, err := h.svc(c).PageList(uid)
	if err != nil {
		h.App.Logger().Error("PageHandler.List err", zap.Error(err))
		toErrResponse(response, err)
		return
	}
	response.ToResponse(code.Success.WithData(pages))
}

// Get 获取单个页面
func (h *PageHandler) Get(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	uid := pkgapp.GetUID(c)
	if uid == 0 {
		response.ToResponse(code.ErrorInvalidUserAuthToken)
		return
	}

	page, err := h.svc(c).PageGet(c.Param("id"), uid)
	if err != nil {
		toErrResponse(response, err)
		return
	}
	response.ToResponse(code.Success.WithData(page))
}

// Create 创建页面并推送给其他在线连接
func (h *PageHandler) Create(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	uid := pkgapp.GetUID(c)
	if uid == 0 {
		response.ToResponse(code.ErrorInvalidUserAuthToken)
		return
	}

	params := &service.PageCreateRequest{}
	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("PageHandler.Create.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()))
		return
	}

	page, err := h.svc(c).PageCreate(uid, params)
	if err != nil {
		h.App.Logger().Error("PageHandler.Create err", zap.Error(err))
		toErrResponse(response, err)
		return
	}

	h.WSS.Broadcast(uid, code.Success.WithData(page), "PageSyncCreate", nil)
	response.ToResponse(code.Success.WithData(page))
}

// Update 部分更新页面并推送给其他在线连接
func (h *PageHandler) Update(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	uid := pkgapp.GetUID(c)
	if uid == 0 {
		response.ToResponse(code.ErrorInvalidUserAuthToken)
		return
	}

	params := &service.PageUpdateRequest{}
	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("PageHandler.Update.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()))
		return
	}

	page, err := h.svc(c).PageUpdate(c.Param("id"), uid, params)
	if err != nil {
		h.App.Logger().Error("PageHandler.Update err", zap.Error(err))
		toErrResponse(response, err)
		return
	}

	h.WSS.Broadcast(uid, code.Success.WithData(page), "PageSyncModify", nil)
	response.ToResponse(code.Success.WithData(page))
}

// Delete 软删除页面并推送给其他在线连接
// 删除不存在的页面返回成功（无更新）
func (h *PageHandler) Delete(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	uid := pkgapp.GetUID(c)
	if uid == 0 {
		response.ToResponse(code.ErrorInvalidUserAuthToken)
		return
	}

	id := c.Param("id")
	deleted, err := h.svc(c).PageDelete(id, uid)
	if err != nil {
		h.App.Logger().Error("PageHandler.Delete err", zap.Error(err))
		toErrResponse(response, err)
		return
	}

	if !deleted {
		response.ToResponse(code.SuccessNoUpdate)
		return
	}

	h.WSS.Broadcast(uid, code.Success.WithData(gin.H{"id": id}), "PageSyncDelete", nil)
	response.ToResponse(code.Success.WithData(gin.H{"id": id}))
}
