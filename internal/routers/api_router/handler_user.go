package api_router

import (
	"github.com/astralvault/page-sync-service/internal/app"
	"github.com/astralvault/page-sync-service/internal/service"
	pkgapp "github.com/astralvault/page-sync-service/pkg/app"
	"github.com/astralvault/page-sync-service/pkg/code"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler 用户 API 路由处理器
type UserHandler struct {
	*Handler
}

// NewUserHandler 创建 UserHandler 实例
func NewUserHandler(a *app.App) *UserHandler {
	return &UserHandler{Handler: NewHandler(a)}
}

// Register 用户注册
func (h *UserHandler) Register(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	if !h.App.Config().User.RegisterIsEnable {
		response.ToResponse(code.ErrorUserRegisterClosed)
		return
	}

	params := &service.UserRegisterRequest{}
	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("UserHandler.Register.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()))
		return
	}

	user, err := h.svc(c).UserRegister(params)
	if err != nil {
		h.App.Logger().Error("UserHandler.Register err", zap.Error(err))
		toErrResponse(response, err)
		return
	}
	response.ToResponse(code.Success.WithData(user))
}

// Login 用户登录
func (h *UserHandler) Login(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	params := &service.UserLoginRequest{}
	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("UserHandler.Login.BindAndValid err", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()))
		return
	}

	user, err := h.svc(c).UserLogin(params)
	if err != nil {
		h.App.Logger().Error("UserHandler.Login err", zap.Error(err))
		toErrResponse(response, err)
		return
	}
	response.ToResponse(code.Success.WithData(user))
}

// Profile 获取当前用户资料
func (h *UserHandler) Profile(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	uid := pkgapp.GetUID(c)
	if uid == 0 {
		response.ToResponse(code.ErrorInvalidUserAuthToken)
		return
	}

	user, err := h.svc(c).UserProfile(uid)
	if err != nil {
		toErrResponse(response, err)
		return
	}
	response.ToResponse(code.Success.WithData(user))
}

// UpdateProfile 更新当前用户资料
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	uid := pkgapp.GetUID(c)
	if uid == 0 {
		response.ToResponse(code.ErrorInvalidUserAuthToken)
		return
	}

	params := &service.UserUpdateRequest{}
	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()))
		return
	}

	user, err := h.svc(c).UserUpdate(uid, params)
	if err != nil {
		h.App.Logger().Error("UserHandler.UpdateProfile err", zap.Error(err))
		toErrResponse(response, err)
		return
	}
	response.ToResponse(code.Success.WithData(user))
}
