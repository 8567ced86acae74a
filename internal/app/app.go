package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/astralvault/page-sync-service/internal/dao"
	pkgapp "github.com/astralvault/page-sync-service/pkg/app"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// App 应用容器，封装所有依赖和服务
type App struct {
	config *AppConfig
	logger *zap.Logger
	DB     *gorm.DB
	Dao    *dao.Dao

	// 基础设施组件
	TokenManager pkgapp.TokenManager
	WSS          *pkgapp.WebsocketServer
	SF           *singleflight.Group

	// 关闭控制
	shutdownCh chan struct{}
	wg         sync.WaitGroup
}

// NewApp 创建应用容器实例并完成依赖注入
func NewApp(cfg *AppConfig, logger *zap.Logger, db *gorm.DB) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	a := &App{
		config:     cfg,
		logger:     logger,
		DB:         db,
		SF:         &singleflight.Group{},
		shutdownCh: make(chan struct{}),
	}

	a.Dao = dao.New(db, context.Background(), dao.WithLogger(logger))

	a.TokenManager = pkgapp.NewTokenManager(pkgapp.TokenConfig{
		SecretKey: cfg.Security.AuthTokenKey,
		Issuer:    pkgapp.DefaultTokenIssuer,
		Expiry:    cfg.GetTokenExpiry(),
	})

	a.WSS = pkgapp.NewWebsocketServer(pkgapp.WebsocketServerConfig{}, logger)

	return a, nil
}

// Config 返回应用配置
func (a *App) Config() *AppConfig {
	return a.config
}

// Logger 返回日志器
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// ShutdownCh 返回关闭通知通道
func (a *App) ShutdownCh() <-chan struct{} {
	return a.shutdownCh
}

// Go 启动一个受关闭控制管理的后台协程
func (a *App) Go(fn func()) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		fn()
	}()
}

// Shutdown 关闭应用，等待后台协程退出并释放数据库连接
func (a *App) Shutdown() {
	close(a.shutdownCh)
	a.wg.Wait()

	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
