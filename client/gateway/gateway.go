// Package gateway 抽象页面的远端持久化操作
// 提供 REST 与实时推送两种实现，页面存储只依赖本接口
package gateway

import (
	"context"
	"fmt"

	"github.com/astralvault/page-sync-service/client/entity"
)

// ChangeHandlers 远端变更推送的回调集合
type ChangeHandlers struct {
	OnInsert func(page *entity.Page)
	OnUpdate func(page *entity.Page)
	OnDelete func(id string)
}

// UnsubscribeFunc 取消订阅，多次调用必须安全
type UnsubscribeFunc func()

// Gateway is the persistence contract consumed by the page store
// Gateway 是页面存储消费的持久化契约
// 所有操作都可能失败，调用方必须捕获全部错误
type Gateway interface {
	// FetchAll 拉取用户的全部页面
	FetchAll(ctx context.Context, ownerID int64) ([]*entity.Page, error)
	// Create 创建页面，ID 与时间戳由服务端分配
	Create(ctx context.Context, ownerID int64, draft *entity.PageDraft) (*entity.Page, error)
	// Update 部分字段更新
	Update(ctx context.Context, id string, updates *entity.PageUpdate) (*entity.Page, error)
	// Delete 删除页面，删除不存在的ID不算错误
	Delete(ctx context.Context, id string) error
	// SubscribeToChanges 接入远端变更推送
	// 不具备推送能力的实现返回 no-op 的取消函数且从不触发回调
	SubscribeToChanges(ctx context.Context, handlers ChangeHandlers) (UnsubscribeFunc, error)
}

// FetchError 拉取失败
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("fetch pages: %v", e.Err) }
func (e *FetchError) Unwrap() error { return e.Err }

// CreateError 创建失败
type CreateError struct {
	Err error
}

func (e *CreateError) Error() string { return fmt.Sprintf("create page: %v", e.Err) }
func (e *CreateError) Unwrap() error { return e.Err }

// UpdateError 更新失败
type UpdateError struct {
	ID  string
	Err error
}

func (e *UpdateError) Error() string { return fmt.Sprintf("update page %s: %v", e.ID, e.Err) }
func (e *UpdateError) Unwrap() error { return e.Err }

// DeleteError 删除失败
type DeleteError struct {
	ID  string
	Err error
}

func (e *DeleteError) Error() string { return fmt.Sprintf("delete page %s: %v", e.ID, e.Err) }
func (e *DeleteError) Unwrap() error { return e.Err }
