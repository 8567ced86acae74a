// Package task 提供后台计划任务
package task

import (
	"context"
	"time"

	"github.com/astralvault/page-sync-service/internal/app"
	"github.com/astralvault/page-sync-service/internal/service"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// PagePurgeTask 定期清理超过保留期的软删除页面
type PagePurgeTask struct {
	app    *app.App
	cron   *cron.Cron
	logger *zap.Logger
}

// NewPagePurgeTask 创建页面清理任务
func NewPagePurgeTask(a *app.App) *PagePurgeTask {
	return &PagePurgeTask{
		app:    a,
		cron:   cron.New(),
		logger: a.Logger(),
	}
}

// Start 按配置的 cron 表达式注册并启动任务
func (t *PagePurgeTask) Start() error {
	schedule := t.app.Config().App.PagePurgeSchedule
	if schedule == "" {
		schedule = "@daily"
	}

	_, err := t.cron.AddFunc(schedule, t.run)
	if err != nil {
		return err
	}

	t.cron.Start()
	t.logger.Info("page purge task started", zap.String("schedule", schedule))
	return nil
}

// Stop 停止任务，等待执行中的清理结束
func (t *PagePurgeTask) Stop() {
	ctx := t.cron.Stop()
	<-ctx.Done()
}

func (t *PagePurgeTask) run() {
	retention := t.app.Config().GetPagePurgeRetention()
	cutoff := time.Now().Add(-retention).UnixMilli()

	svc := service.NewBackground(t.app.Dao, context.Background()).WithLogger(t.logger)
	purged, err := svc.PagePurgeDeleted(cutoff)
	if err != nil {
		t.logger.Error("page purge failed", zap.Error(err))
		return
	}
	if purged > 0 {
		t.logger.Info("purged soft-deleted pages",
			zap.Int64("count", purged),
			zap.Duration("retention", retention),
		)
	}
}
