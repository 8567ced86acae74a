// Package dao 提供数据访问层
package dao

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/astralvault/page-sync-service/internal/model"
	"github.com/astralvault/page-sync-service/pkg/fileurl"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Type         string // sqlite / mysql / postgres
	Path         string // SQLite 数据库文件路径
	UserName     string
	Password     string
	Host         string
	Name         string
	TablePrefix  string
	AutoMigrate  bool
	MaxIdleConns int
	MaxOpenConns int
	RunMode      string
}

// Dao 数据访问对象
type Dao struct {
	db     *gorm.DB
	ctx    context.Context
	logger *zap.Logger
}

// Option 配置 Dao 的可选项
type Option func(*Dao)

// WithLogger 注入 zap 日志器
func WithLogger(logger *zap.Logger) Option {
	return func(d *Dao) {
		d.logger = logger
	}
}

// New 创建 Dao 实例
func New(db *gorm.DB, ctx context.Context, opts ...Option) *Dao {
	d := &Dao{
		db:     db,
		ctx:    ctx,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DB 返回底层 gorm 连接
func (d *Dao) DB() *gorm.DB {
	return d.db
}

// WithContext 返回绑定了上下文的 Dao 副本
func (d *Dao) WithContext(ctx context.Context) *Dao {
	return &Dao{db: d.db, ctx: ctx, logger: d.logger}
}

// NewDBEngine creates the gorm engine from configuration
// NewDBEngine 根据配置创建 gorm 引擎
func NewDBEngine(c *DatabaseConfig) (*gorm.DB, error) {

	dialector, err := userDialector(c)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   c.TablePrefix,
			SingularTable: true, // 使用单数表名
		},
	})
	if err != nil {
		return nil, err
	}
	if c.RunMode == "debug" {
		db.Config.Logger = gormlogger.Default.LogMode(gormlogger.Info)
	}

	// 获取通用数据库对象 sql.DB，配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(c.MaxIdleConns)
	sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Minute * 10)

	if c.AutoMigrate {
		if err := model.AutoMigrateAll(db); err != nil {
			return nil, err
		}
	}

	return db, nil
}

func userDialector(c *DatabaseConfig) (gorm.Dialector, error) {
	switch c.Type {
	case "mysql":
		return mysql.Open(fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=true&loc=Local",
			c.UserName,
			c.Password,
			c.Host,
			c.Name,
		)), nil
	case "postgres":
		return postgres.Open(fmt.Sprintf("host=%s user=%s password=%s dbname=%s sslmode=disable",
			c.Host,
			c.UserName,
			c.Password,
			c.Name,
		)), nil
	case "sqlite":
		if !fileurl.IsExist(c.Path) {
			if err := fileurl.CreatePath(c.Path, os.ModePerm); err != nil {
				return nil, err
			}
		}
		return sqlite.Open(c.Path), nil
	}
	return nil, fmt.Errorf("unsupported database type: %s", c.Type)
}
