// Package store 实现页面集合的核心状态机
// 持有唯一的内存页面集合，应用乐观更新，合并持久化调用，并回放远端变更
package store

import (
	"context"
	"sync"
	"time"

	"github.com/astralvault/page-sync-service/client/entity"
	"github.com/astralvault/page-sync-service/client/gateway"
	"github.com/astralvault/page-sync-service/client/treeview"
	"github.com/astralvault/page-sync-service/pkg/debounce"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DefaultDebounceWindow 持久化合并窗口
const DefaultDebounceWindow = 1000 * time.Millisecond

var (
	// ErrCyclicParent 页面不能移动到自己的后代之下
	ErrCyclicParent = errors.New("reparent target is a descendant of the page")
	// ErrNoUser 未设置用户时的网络操作被拒绝
	ErrNoUser = errors.New("no user set")
)

// ReportFunc 错误上报回调，存储的公开操作从不向调用方抛错
type ReportFunc func(op string, err error)

// SnapshotWriter 状态快照写入回调，每次状态变化后调用
type SnapshotWriter func(user *entity.User, pages []*entity.Page)

// Store owns the authoritative in-memory page collection
// Store 持有权威的内存页面集合
// 所有变更都先同步应用到内存（乐观更新），远端写入失败不回滚
type Store struct {
	gw     gateway.Gateway
	logger *zap.Logger
	report ReportFunc
	snap   SnapshotWriter

	mu        sync.Mutex
	pages     []*entity.Page
	user      *entity.User
	isLoading bool
	pending   map[string]*entity.PageUpdate

	deb *debounce.Debouncer
}

// Option 配置 Store 的可选项
type Option func(*Store)

// WithLogger 注入 zap 日志器
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithReporter 注入错误上报回调
func WithReporter(report ReportFunc) Option {
	return func(s *Store) {
		s.report = report
	}
}

// WithSnapshotWriter 注入状态快照写入回调
func WithSnapshotWriter(w SnapshotWriter) Option {
	return func(s *Store) {
		s.snap = w
	}
}

// WithDebounceWindow 覆盖持久化合并窗口
func WithDebounceWindow(d time.Duration) Option {
	return func(s *Store) {
		s.deb = debounce.New(d, s.logger)
	}
}

// New 创建 Store 实例
func New(gw gateway.Gateway, opts ...Option) *Store {
	s := &Store{
		gw:      gw,
		logger:  zap.NewNop(),
		pending: make(map[string]*entity.PageUpdate),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.report == nil {
		logger := s.logger
		s.report = func(op string, err error) {
			logger.Warn("page store operation failed", zap.String("op", op), zap.Error(err))
		}
	}
	if s.deb == nil {
		s.deb = debounce.New(DefaultDebounceWindow, s.logger)
	}
	return s
}

// ------------------------------------> 状态读取

// Pages 返回页面集合的快照副本
func (s *Store) Pages() []*entity.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.Page, len(s.pages))
	copy(out, s.pages)
	return out
}

// PageByID 查找页面
func (s *Store) PageByID(id string) (*entity.Page, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p := s.findLocked(id); p != nil {
		return p.Clone(), true
	}
	return nil, false
}

// IsLoading 返回是否正在执行全量拉取
func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isLoading
}

// User 返回当前用户
func (s *Store) User() *entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// ------------------------------------> 生命周期

// SetUser replaces the identity context; a nil user clears the collection
// SetUser 替换身份上下文；置空用户时清空页面集合并丢弃待写入的更新
func (s *Store) SetUser(user *entity.User) {
	s.mu.Lock()
	s.user = user
	if user == nil {
		s.pages = nil
		for id := range s.pending {
			s.deb.Cancel(id)
		}
		s.pending = make(map[string]*entity.PageUpdate)
	}
	s.persistLocked()
	s.mu.Unlock()
}

// Hydrate 从本地快照恢复状态，用于启动时避免空白状态
func (s *Store) Hydrate(user *entity.User, pages []*entity.Page) {
	s.mu.Lock()
	s.user = user
	s.pages = pages
	s.mu.Unlock()
}

// Load 全量拉取并替换内存集合
// 失败时保留旧数据并上报错误，加载标记保证在结束时清除
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		s.report("load", ErrNoUser)
		return
	}
	uid := s.user.UID
	s.isLoading = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isLoading = false
		s.mu.Unlock()
	}()

	pages, err := s.gw.FetchAll(ctx, uid)
	if err != nil {
		s.report("load", err)
		return
	}

	s.mu.Lock()
	// 用户在拉取期间变更时丢弃结果
	if s.user == nil || s.user.UID != uid {
		s.mu.Unlock()
		return
	}
	s.pages = pages
	s.persistLocked()
	s.mu.Unlock()
}

// Close 冲刷待写入的更新并释放定时器
func (s *Store) Close() {
	s.deb.FlushAll()
	s.deb.Close()
}

// ------------------------------------> 变更操作

// AddPage constructs a default page under parentID and returns its id
// AddPage 在 parentID 下创建默认页面并返回其ID
// 未设置用户时立即返回空串且不发起网络调用，创建失败返回空串
func (s *Store) AddPage(ctx context.Context, parentID string) string {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return ""
	}
	uid := s.user.UID
	s.mu.Unlock()

	page, err := s.gw.Create(ctx, uid, entity.NewDraft(parentID))
	if err != nil {
		s.report("addPage", err)
		return ""
	}

	s.mu.Lock()
	// 推送回声可能先一步到达
	if s.findLocked(page.ID) == nil {
		s.pages = append([]*entity.Page{page}, s.pages...)
		s.persistLocked()
	}
	s.mu.Unlock()
	return page.ID
}

// UpdatePage applies the partial update optimistically, then optionally
// schedules a coalesced remote write
// UpdatePage 先同步应用乐观更新，persist 为 true 时经防抖窗口合并后写入远端
// 远端失败不回滚本地值，只上报错误；ID 不存在时为 no-op
func (s *Store) UpdatePage(ctx context.Context, id string, upd *entity.PageUpdate, persist bool) {
	if upd == nil || upd.IsEmpty() {
		return
	}

	s.mu.Lock()
	page := s.findLocked(id)
	if page == nil {
		s.mu.Unlock()
		return
	}

	// 拒绝把页面移动到自己的后代之下
	if upd.ParentID != nil && *upd.ParentID != "" {
		closure := treeview.DescendantClosure(s.pages, id)
		if _, ok := closure[*upd.ParentID]; ok {
			s.mu.Unlock()
			s.report("updatePage", ErrCyclicParent)
			return
		}
	}

	upd.Apply(page)
	page.UpdatedAt = time.Now().UnixMilli()

	if persist {
		acc, ok := s.pending[id]
		if !ok {
			acc = &entity.PageUpdate{}
			s.pending[id] = acc
		}
		acc.Overlay(upd)
	}
	s.persistLocked()
	s.mu.Unlock()

	if persist {
		s.deb.Call(id, func() {
			s.flush(ctx, id)
		})
	}
}

// flush 将累积的字段作为单次远端更新发送
func (s *Store) flush(ctx context.Context, id string) {
	s.mu.Lock()
	upd := s.pending[id]
	delete(s.pending, id)
	s.mu.Unlock()

	if upd == nil || upd.IsEmpty() {
		return
	}
	if _, err := s.gw.Update(ctx, id, upd); err != nil {
		// 乐观值保留，不回滚
		s.report("updatePage", err)
	}
}

// DeletePage removes the single id optimistically and issues one remote delete
// DeletePage 乐观移除单个ID并发起一次远端删除
// 远端失败时本地移除保留；级联删除由 DeletePageTree 组合完成
func (s *Store) DeletePage(ctx context.Context, id string) {
	s.mu.Lock()
	s.removeLocked(id)
	s.deb.Cancel(id)
	delete(s.pending, id)
	s.persistLocked()
	s.mu.Unlock()

	if err := s.gw.Delete(ctx, id); err != nil {
		s.report("deletePage", err)
	}
}

// DeletePageTree cascades the delete over the descendant closure
// DeletePageTree 对后代闭包内的每个ID执行删除
// 部分失败时幸存页面按悬空父指针规则重新成为根，不会变成不可达状态
func (s *Store) DeletePageTree(ctx context.Context, id string) {
	s.mu.Lock()
	closure := treeview.DescendantClosure(s.pages, id)
	s.mu.Unlock()

	for pageID := range closure {
		s.DeletePage(ctx, pageID)
	}
}

// TogglePageExpand 翻转展开状态并持久化，ID 不存在时为 no-op
func (s *Store) TogglePageExpand(ctx context.Context, id string) {
	s.mu.Lock()
	page := s.findLocked(id)
	if page == nil {
		s.mu.Unlock()
		return
	}
	next := !page.IsExpanded
	s.mu.Unlock()

	s.UpdatePage(ctx, id, &entity.PageUpdate{IsExpanded: entity.Bool(next)}, true)
}

// ------------------------------------> 远端变更回放

// SubscribeRemoteChanges attaches to the gateway push feed when available
// SubscribeRemoteChanges 接入网关推送，返回幂等的取消函数
// 插入按ID去重（本地创建的回声不会产生重复），更新原位替换保持顺序，删除按ID移除
func (s *Store) SubscribeRemoteChanges(ctx context.Context) gateway.UnsubscribeFunc {
	unsub, err := s.gw.SubscribeToChanges(ctx, gateway.ChangeHandlers{
		OnInsert: func(page *entity.Page) {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.user == nil || s.findLocked(page.ID) != nil {
				return
			}
			s.pages = append([]*entity.Page{page}, s.pages...)
			s.persistLocked()
		},
		OnUpdate: func(page *entity.Page) {
			s.mu.Lock()
			defer s.mu.Unlock()
			// 本地已删除的页面容忍迟到的更新
			for i, p := range s.pages {
				if p.ID == page.ID {
					s.pages[i] = page
					s.persistLocked()
					return
				}
			}
		},
		OnDelete: func(id string) {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.removeLocked(id)
			s.deb.Cancel(id)
			delete(s.pending, id)
			s.persistLocked()
		},
	})
	if err != nil {
		s.report("subscribe", err)
		return func() {}
	}

	var once sync.Once
	return func() {
		once.Do(unsub)
	}
}

// ------------------------------------> 内部辅助

func (s *Store) findLocked(id string) *entity.Page {
	for _, p := range s.pages {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *Store) removeLocked(id string) {
	for i, p := range s.pages {
		if p.ID == id {
			s.pages = append(s.pages[:i], s.pages[i+1:]...)
			return
		}
	}
}

// persistLocked 调用快照写入回调，须持有 s.mu
func (s *Store) persistLocked() {
	if s.snap == nil {
		return
	}
	pages := make([]*entity.Page, len(s.pages))
	copy(pages, s.pages)
	s.snap(s.user, pages)
}
