package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/astralvault/page-sync-service/client/entity"
	"github.com/astralvault/page-sync-service/client/gateway"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockGateway 记录全部调用的内存网关
type mockGateway struct {
	mu          sync.Mutex
	nextID      int
	updateCalls []mockUpdate
	deleteCalls []string
	fetchPages  []*entity.Page
	handlers    gateway.ChangeHandlers
	unsubCount  int

	failFetch  bool
	failCreate bool
	failUpdate bool
	failDelete bool
}

type mockUpdate struct {
	id  string
	upd *entity.PageUpdate
}

func (m *mockGateway) FetchAll(ctx context.Context, ownerID int64) ([]*entity.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFetch {
		return nil, &gateway.FetchError{Err: errors.New("unreachable")}
	}
	return m.fetchPages, nil
}

func (m *mockGateway) Create(ctx context.Context, ownerID int64, draft *entity.PageDraft) (*entity.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate {
		return nil, &gateway.CreateError{Err: errors.New("unreachable")}
	}
	m.nextID++
	now := time.Now().UnixMilli()
	return &entity.Page{
		ID:         fmt.Sprintf("page-%d", m.nextID),
		Title:      draft.Title,
		Content:    draft.Content,
		Tags:       draft.Tags,
		ParentID:   draft.ParentID,
		IsExpanded: draft.IsExpanded,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (m *mockGateway) Update(ctx context.Context, id string, updates *entity.PageUpdate) (*entity.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpdate {
		return nil, &gateway.UpdateError{ID: id, Err: errors.New("unreachable")}
	}
	m.updateCalls = append(m.updateCalls, mockUpdate{id: id, upd: updates})
	return nil, nil
}

func (m *mockGateway) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDelete {
		return &gateway.DeleteError{ID: id, Err: errors.New("unreachable")}
	}
	m.deleteCalls = append(m.deleteCalls, id)
	return nil
}

func (m *mockGateway) SubscribeToChanges(ctx context.Context, handlers gateway.ChangeHandlers) (gateway.UnsubscribeFunc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = handlers
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.unsubCount++
	}, nil
}

func (m *mockGateway) updates() []mockUpdate {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]mockUpdate, len(m.updateCalls))
	copy(out, m.updateCalls)
	return out
}

func (m *mockGateway) deletes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.deleteCalls))
	copy(out, m.deleteCalls)
	return out
}

func newTestStore(t *testing.T, gw *mockGateway, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithDebounceWindow(30 * time.Millisecond)}, opts...)
	s := New(gw, opts...)
	s.SetUser(&entity.User{UID: 1, Email: "a@b.c"})
	t.Cleanup(s.Close)
	return s
}

func waitFlush() {
	time.Sleep(150 * time.Millisecond)
}

func TestLoadReplacesCollection(t *testing.T) {
	gw := &mockGateway{fetchPages: []*entity.Page{{ID: "p1"}, {ID: "p2"}}}
	s := newTestStore(t, gw)

	s.Load(context.Background())

	assert.False(t, s.IsLoading())
	assert.Len(t, s.Pages(), 2)
}

func TestLoadFailureKeepsStaleData(t *testing.T) {
	gw := &mockGateway{fetchPages: []*entity.Page{{ID: "p1"}}}

	var reported []error
	s := newTestStore(t, gw, WithReporter(func(op string, err error) {
		reported = append(reported, err)
	}))

	s.Load(context.Background())
	require.Len(t, s.Pages(), 1)

	gw.failFetch = true
	s.Load(context.Background())

	// 旧数据保留，加载标记清除，错误已上报
	assert.Len(t, s.Pages(), 1)
	assert.False(t, s.IsLoading())
	assert.NotEmpty(t, reported)
}

func TestAddPagePrepends(t *testing.T) {
	gw := &mockGateway{fetchPages: []*entity.Page{{ID: "existing"}}}
	s := newTestStore(t, gw)
	s.Load(context.Background())

	id := s.AddPage(context.Background(), "")

	require.NotEmpty(t, id)
	pages := s.Pages()
	require.Len(t, pages, 2)
	assert.Equal(t, id, pages[0].ID)
	assert.Equal(t, entity.DefaultTitle, pages[0].Title)
	assert.True(t, pages[0].IsExpanded)
}

func TestAddPageWithoutUser(t *testing.T) {
	gw := &mockGateway{}
	s := New(gw, WithDebounceWindow(30*time.Millisecond))

	id := s.AddPage(context.Background(), "")

	assert.Empty(t, id)
	assert.Empty(t, s.Pages())
}

func TestAddPageFailureLeavesNoPartialPage(t *testing.T) {
	gw := &mockGateway{failCreate: true}
	var reported []error
	s := newTestStore(t, gw, WithReporter(func(op string, err error) {
		reported = append(reported, err)
	}))

	id := s.AddPage(context.Background(), "")

	assert.Empty(t, id)
	assert.Empty(t, s.Pages())
	assert.NotEmpty(t, reported)
}

func TestNoDuplicateIDs(t *testing.T) {
	gw := &mockGateway{}
	s := newTestStore(t, gw)

	for i := 0; i < 10; i++ {
		s.AddPage(context.Background(), "")
	}
	s.UpdatePage(context.Background(), "page-3", &entity.PageUpdate{Title: entity.String("x")}, true)
	s.DeletePage(context.Background(), "page-5")

	seen := map[string]bool{}
	for _, p := range s.Pages() {
		assert.False(t, seen[p.ID], "duplicate id %s", p.ID)
		seen[p.ID] = true
	}
	assert.Len(t, s.Pages(), 9)
}

func TestUpdatePageOptimistic(t *testing.T) {
	gw := &mockGateway{fetchPages: []*entity.Page{{ID: "p1", Title: "old"}}}
	s := newTestStore(t, gw)
	s.Load(context.Background())

	s.UpdatePage(context.Background(), "p1", &entity.PageUpdate{Title: entity.String("new")}, true)

	// 乐观更新立即可见，不等待防抖窗口
	page, ok := s.PageByID("p1")
	require.True(t, ok)
	assert.Equal(t, "new", page.Title)
}

func TestUpdatePageDebounceCoalesces(t *testing.T) {
	gw := &mockGateway{fetchPages: []*entity.Page{{ID: "p1"}}}
	s := newTestStore(t, gw)
	s.Load(context.Background())

	s.UpdatePage(context.Background(), "p1", &entity.PageUpdate{Title: entity.String("a")}, true)
	s.UpdatePage(context.Background(), "p1", &entity.PageUpdate{Title: entity.String("ab")}, true)
	waitFlush()

	// 窗口内两次更新合并为一次远端调用，携带最终值
	calls := gw.updates()
	require.Len(t, calls, 1)
	assert.Equal(t, "p1", calls[0].id)
	assert.Equal(t, "ab", *calls[0].upd.Title)
}

func TestUpdatePageAccumulatesFields(t *testing.T) {
	gw := &mockGateway{fetchPages: []*entity.Page{{ID: "p1"}}}
	s := newTestStore(t, gw)
	s.Load(context.Background())

	s.UpdatePage(context.Background(), "p1", &entity.PageUpdate{Title: entity.String("t")}, true)
	s.UpdatePage(context.Background(), "p1", &entity.PageUpdate{Icon: entity.String("📄")}, true)
	waitFlush()

	// 不同字段在同一窗口内累积到同一次调用
	calls := gw.updates()
	require.Len(t, calls, 1)
	assert.Equal(t, "t", *calls[0].upd.Title)
	assert.Equal(t, "📄", *calls[0].upd.Icon)
}

func TestUpdatePageIndependentTimers(t *testing.T) {
	gw := &mockGateway{fetchPages: []*entity.Page{{ID: "p1"}, {ID: "p2"}}}
	s := newTestStore(t, gw)
	s.Load(context.Background())

	s.UpdatePage(context.Background(), "p1", &entity.PageUpdate{Title: entity.String("one")}, true)
	s.UpdatePage(context.Background(), "p2", &entity.PageUpdate{Title: entity.String("two")}, true)
	waitFlush()

	// 不同页面的防抖互不干扰
	assert.Len(t, gw.updates(), 2)
}

func TestUpdatePageNoPersist(t *testing.T) {
	gw := &mockGateway{fetchPages: []*entity.Page{{ID: "p1"}}}
	s := newTestStore(t, gw)
	s.Load(context.Background())

	for i := 0; i < 20; i++ {
		s.UpdatePage(context.Background(), "p1", &entity.PageUpdate{Title: entity.String("x")}, false)
	}
	waitFlush()

	assert.Empty(t, gw.updates())
	page, _ := s.PageByID("p1")
	assert.Equal(t, "x", page.Title)
}

func TestUpdatePageNoRollbackOnFailure(t *testing.T) {
	gw := &mockGateway{fetchPages: []*entity.Page{{ID: "p1", Title: "before"}}, failUpdate: true}
	var reported []error
	s := newTestStore(t, gw, WithReporter(func(op string, err error) {
		reported = append(reported, err)
	}))
	s.Load(context.Background())

	s.UpdatePage(context.Background(), "p1", &entity.PageUpdate{Title: entity.String("after")}, true)
	waitFlush()

	// 远端失败不回滚乐观值
	page, _ := s.PageByID("p1")
	assert.Equal(t, "after", page.Title)
	assert.NotEmpty(t, reported)
}

func TestUpdatePageUnknownIDIsNoop(t *testing.T) {
	gw := &mockGateway{}
	s := newTestStore(t, gw)

	s.UpdatePage(context.Background(), "ghost", &entity.PageUpdate{Title: entity.String("x")}, true)
	waitFlush()

	assert.Empty(t, gw.updates())
}

func TestUpdatePageRejectsCyclicReparent(t *testing.T) {
	gw := &mockGateway{fetchPages: []*entity.Page{
		{ID: "A"},
		{ID: "B", ParentID: "A"},
		{ID: "C", ParentID: "B"},
	}}
	var reported []error
	s := newTestStore(t, gw, WithReporter(func(op string, err error) {
		reported = append(reported, err)
	}))
	s.Load(context.Background())

	s.UpdatePage(context.Background(), "A", &entity.PageUpdate{ParentID: entity.String("C")}, true)
	waitFlush()

	page, _ := s.PageByID("A")
	assert.Empty(t, page.ParentID, "环状移动被拒绝")
	assert.Empty(t, gw.updates())
	require.NotEmpty(t, reported)
	assert.ErrorIs(t, reported[0], ErrCyclicParent)
}

func TestDeletePage(t *testing.T) {
	gw := &mockGateway{fetchPages: []*entity.Page{{ID: "p1"}, {ID: "p2"}}}
	s := newTestStore(t, gw)
	s.Load(context.Background())

	s.DeletePage(context.Background(), "p1")

	assert.Len(t, s.Pages(), 1)
	assert.Equal(t, []string{"p1"}, gw.deletes())
}

func TestDeletePageCancelsPendingWrite(t *testing.T) {
	gw := &mockGateway{fetchPages: []*entity.Page{{ID: "p1"}}}
	s := newTestStore(t, gw)
	s.Load(context.Background())

	s.UpdatePage(context.Background(), "p1", &entity.PageUpdate{Title: entity.String("x")}, true)
	s.DeletePage(context.Background(), "p1")
	waitFlush()

	// 删除取消了同页面的待写入更新
	assert.Empty(t, gw.updates())
	assert.Equal(t, []string{"p1"}, gw.deletes())
}

func TestDeletePageFailureKeepsRemoval(t *testing.T) {
	gw := &mockGateway{fetchPages: []*entity.Page{{ID: "p1"}}, failDelete: true}
	var reported []error
	s := newTestStore(t, gw, WithReporter(func(op string, err error) {
		reported = append(reported, err)
	}))
	s.Load(context.Background())

	s.DeletePage(context.Background(), "p1")

	assert.Empty(t, s.Pages())
	assert.NotEmpty(t, reported)
}

func TestDeletePageTreeCascades(t *testing.T) {
	gw := &mockGateway{fetchPages: []*entity.Page{
		{ID: "A"},
		{ID: "B", ParentID: "A"},
		{ID: "C", ParentID: "B"},
		{ID: "other"},
	}}
	s := newTestStore(t, gw)
	s.Load(context.Background())

	s.DeletePageTree(context.Background(), "A")

	pages := s.Pages()
	require.Len(t, pages, 1)
	assert.Equal(t, "other", pages[0].ID)
	assert.ElementsMatch(t, []string{"A", "B", "C"}, gw.deletes())
}

func TestTogglePageExpand(t *testing.T) {
	gw := &mockGateway{fetchPages: []*entity.Page{{ID: "p1", IsExpanded: true}}}
	s := newTestStore(t, gw)
	s.Load(context.Background())

	s.TogglePageExpand(context.Background(), "p1")

	page, _ := s.PageByID("p1")
	assert.False(t, page.IsExpanded)

	waitFlush()
	calls := gw.updates()
	require.Len(t, calls, 1)
	assert.False(t, *calls[0].upd.IsExpanded)

	// ID 不存在时 no-op
	s.TogglePageExpand(context.Background(), "ghost")
}

func TestSetUserNilClearsPages(t *testing.T) {
	gw := &mockGateway{fetchPages: []*entity.Page{{ID: "p1"}}}
	s := newTestStore(t, gw)
	s.Load(context.Background())
	require.Len(t, s.Pages(), 1)

	s.UpdatePage(context.Background(), "p1", &entity.PageUpdate{Title: entity.String("x")}, true)
	s.SetUser(nil)
	waitFlush()

	// 登出清空集合并丢弃待写入的更新
	assert.Empty(t, s.Pages())
	assert.Nil(t, s.User())
	assert.Empty(t, gw.updates())
}

func TestRemoteInsertEchoDeduped(t *testing.T) {
	gw := &mockGateway{}
	s := newTestStore(t, gw)
	s.SubscribeRemoteChanges(context.Background())

	id := s.AddPage(context.Background(), "")
	require.NotEmpty(t, id)

	// 本地创建的推送回声不会产生重复
	gw.handlers.OnInsert(&entity.Page{ID: id})
	assert.Len(t, s.Pages(), 1)

	gw.handlers.OnInsert(&entity.Page{ID: "remote-1"})
	assert.Len(t, s.Pages(), 2)
}

func TestRemoteUpdateReplacesInPlace(t *testing.T) {
	gw := &mockGateway{fetchPages: []*entity.Page{{ID: "p1"}, {ID: "p2", Title: "old"}, {ID: "p3"}}}
	s := newTestStore(t, gw)
	s.Load(context.Background())
	s.SubscribeRemoteChanges(context.Background())

	gw.handlers.OnUpdate(&entity.Page{ID: "p2", Title: "remote"})

	pages := s.Pages()
	require.Len(t, pages, 3)
	assert.Equal(t, "p2", pages[1].ID, "顺序保持")
	assert.Equal(t, "remote", pages[1].Title)

	// 本地已删除的页面容忍迟到的更新
	gw.handlers.OnUpdate(&entity.Page{ID: "ghost", Title: "late"})
	assert.Len(t, s.Pages(), 3)
}

func TestRemoteDeleteRemoves(t *testing.T) {
	gw := &mockGateway{fetchPages: []*entity.Page{{ID: "p1"}, {ID: "p2"}}}
	s := newTestStore(t, gw)
	s.Load(context.Background())
	s.SubscribeRemoteChanges(context.Background())

	gw.handlers.OnDelete("p1")
	assert.Len(t, s.Pages(), 1)

	// 重复删除幂等
	gw.handlers.OnDelete("p1")
	assert.Len(t, s.Pages(), 1)
}

func TestUnsubscribeIdempotent(t *testing.T) {
	gw := &mockGateway{}
	s := newTestStore(t, gw)

	unsub := s.SubscribeRemoteChanges(context.Background())
	unsub()
	unsub()
	unsub()

	gw.mu.Lock()
	defer gw.mu.Unlock()
	assert.Equal(t, 1, gw.unsubCount)
}

func TestSnapshotWriterCalledOnStateChange(t *testing.T) {
	gw := &mockGateway{fetchPages: []*entity.Page{{ID: "p1"}}}

	var mu sync.Mutex
	var writes int
	var lastPages []*entity.Page
	s := newTestStore(t, gw, WithSnapshotWriter(func(user *entity.User, pages []*entity.Page) {
		mu.Lock()
		defer mu.Unlock()
		writes++
		lastPages = pages
	}))

	s.Load(context.Background())
	s.AddPage(context.Background(), "")

	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, writes, 2)
	assert.Len(t, lastPages, 2)
}
