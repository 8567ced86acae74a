package cmd

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/astralvault/page-sync-service/global"
	internalApp "github.com/astralvault/page-sync-service/internal/app"
	"github.com/astralvault/page-sync-service/internal/dao"
	"github.com/astralvault/page-sync-service/internal/routers"
	"github.com/astralvault/page-sync-service/internal/task"
	"github.com/astralvault/page-sync-service/pkg/logger"
	"github.com/astralvault/page-sync-service/pkg/safe_close"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// defaultSecretKeys 定义需要检测的默认密钥列表
var defaultSecretKeys = []string{
	"page-sync-Auth-Token",
	"",
}

type Server struct {
	logger     *zap.Logger
	config     *internalApp.AppConfig
	db         *gorm.DB
	httpServer *http.Server
	sc         *safe_close.SafeClose
	app        *internalApp.App
}

// checkSecurityConfig 检查安全配置，如果使用默认密钥则输出警告
func checkSecurityConfig(cfg *internalApp.AppConfig, lg *zap.Logger) {
	isDefault := false
	for _, key := range defaultSecretKeys {
		if cfg.Security.AuthTokenKey == key {
			isDefault = true
			break
		}
	}

	if isDefault {
		fmt.Println()
		fmt.Println(strings.Repeat("=", 60))
		fmt.Println("⚠️  SECURITY WARNING: Using default secret key!")
		fmt.Println()
		fmt.Println("Please modify 'security.auth-token-key' in config.yaml")
		fmt.Println("Generate a secure key with:")
		fmt.Println("  openssl rand -base64 32")
		fmt.Println(strings.Repeat("=", 60))
		fmt.Println()

		if lg != nil {
			lg.Warn("Using default secret key - please change security.auth-token-key in config.yaml")
		}
	}
}

func NewServer(runEnv *runFlags) (*Server, error) {

	appConfig, configRealpath, err := internalApp.LoadConfig(runEnv.config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 命令行参数覆盖配置文件
	if len(runEnv.runMode) > 0 {
		appConfig.Server.RunMode = runEnv.runMode
	}
	if len(runEnv.port) > 0 {
		appConfig.Server.HttpPort = runEnv.port
	}

	if len(appConfig.Server.RunMode) > 0 {
		gin.SetMode(appConfig.Server.RunMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config: appConfig,
		sc:     safe_close.NewSafeClose(),
	}

	// 初始化日志器
	lg, err := logger.NewLogger(logger.Config{
		Level:      appConfig.Log.Level,
		File:       appConfig.Log.File,
		Production: appConfig.Log.Production,
	})
	if err != nil {
		return nil, fmt.Errorf("initLogger: %w", err)
	}
	s.logger = lg
	global.Logger = lg

	checkSecurityConfig(appConfig, s.logger)

	// 初始化数据库
	db, err := dao.NewDBEngine(&dao.DatabaseConfig{
		Type:         appConfig.Database.Type,
		Path:         appConfig.Database.Path,
		UserName:     appConfig.Database.UserName,
		Password:     appConfig.Database.Password,
		Host:         appConfig.Database.Host,
		Name:         appConfig.Database.Name,
		TablePrefix:  appConfig.Database.TablePrefix,
		AutoMigrate:  appConfig.Database.AutoMigrate,
		MaxIdleConns: appConfig.Database.MaxIdleConns,
		MaxOpenConns: appConfig.Database.MaxOpenConns,
		RunMode:      appConfig.Server.RunMode,
	})
	if err != nil {
		return nil, fmt.Errorf("initDatabase: %w", err)
	}
	s.db = db

	// 初始化 App Container
	app, err := internalApp.NewApp(appConfig, s.logger, db)
	if err != nil {
		return nil, fmt.Errorf("failed to create app container: %w", err)
	}
	s.app = app

	// 启动页面清理任务
	purgeTask := task.NewPagePurgeTask(app)
	if err := purgeTask.Start(); err != nil {
		return nil, fmt.Errorf("failed to start page purge task: %w", err)
	}
	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()
		<-closeSignal
		purgeTask.Stop()
	})

	banner := `
    ___         __             __   ____
   /   |  _____/ /__________ _/ /  / __ \____ _____ ____
  / /| | / ___/ __/ ___/ __  / /  / /_/ / __  / __  / _ \
 / ___ |(__  ) /_/ /  / /_/ / /  / ____/ /_/ / /_/ /  __/
/_/  |_/____/\__/_/   \__,_/_/  /_/    \__,_/\__, /\___/
                                            /____/        `
	s.logger.Warn(fmt.Sprintf("%s\n\n%s v%s\nGit: %s\nBuildTime: %s\n", banner, global.Name, internalApp.Version, internalApp.GitTag, internalApp.BuildTime))

	s.logger.Warn("config loaded", zap.String("path", configRealpath))

	// 启动 HTTP API 服务器
	if httpAddr := appConfig.Server.HttpPort; len(httpAddr) > 0 {
		s.logger.Warn("api_router", zap.String("config.server.HttpPort", appConfig.Server.HttpPort))
		s.httpServer = &http.Server{
			Addr:           appConfig.Server.HttpPort,
			Handler:        routers.NewRouter(s.app),
			ReadTimeout:    time.Duration(appConfig.Server.ReadTimeout) * time.Second,
			WriteTimeout:   time.Duration(appConfig.Server.WriteTimeout) * time.Second,
			MaxHeaderBytes: 1 << 20,
		}
		s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
			defer done()
			errChan := make(chan error, 1)
			go func() {
				errChan <- s.httpServer.ListenAndServe()
			}()
			select {
			case err := <-errChan:
				s.logger.Error("api service err", zap.Error(err))
				s.sc.SendCloseSignal(err)
			case <-closeSignal:
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()

				if err := s.httpServer.Shutdown(ctx); err != nil {
					s.logger.Error("api service shutdown error", zap.Error(err))
				}
			}
		})
	}

	// 注册 App Container 的优雅关闭
	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()
		<-closeSignal
		if s.app != nil {
			s.app.Shutdown()
			s.logger.Info("App container shutdown gracefully")
		}
	})

	return s, nil
}
