// Package service 业务逻辑层
package service

import (
	"context"

	"github.com/astralvault/page-sync-service/internal/dao"
	"github.com/astralvault/page-sync-service/pkg/app"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type Service struct {
	ctx    *gin.Context
	dao    *dao.Dao
	tokens app.TokenManager
	logger *zap.Logger
	SF     *singleflight.Group
}

// New 创建绑定到请求上下文的 Service 实例
func New(d *dao.Dao, c *gin.Context) *Service {
	svc := &Service{ctx: c, logger: zap.NewNop()}
	svc.dao = d.WithContext(c)
	svc.SF = &singleflight.Group{}
	return svc
}

// NewBackground 创建一个用于后台任务的 Service 实例 (ctx 为 nil)
func NewBackground(d *dao.Dao, ctx context.Context) *Service {
	svc := &Service{ctx: nil, logger: zap.NewNop()}
	svc.dao = d.WithContext(ctx)
	svc.SF = &singleflight.Group{}
	return svc
}

func (svc *Service) WithTokenManager(tm app.TokenManager) *Service {
	svc.tokens = tm
	return svc
}

func (svc *Service) WithLogger(logger *zap.Logger) *Service {
	svc.logger = logger
	return svc
}

func (svc *Service) WithSF(sf *singleflight.Group) *Service {
	svc.SF = sf
	return svc
}

func (svc *Service) Ctx() *gin.Context {
	return svc.ctx
}
