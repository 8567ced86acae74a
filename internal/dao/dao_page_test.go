package dao

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDao(t *testing.T) *Dao {
	t.Helper()
	db, err := NewDBEngine(&DatabaseConfig{
		Type:         "sqlite",
		Path:         ":memory:",
		AutoMigrate:  true,
		MaxIdleConns: 1,
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	return New(db, context.Background())
}

func TestPageCreate(t *testing.T) {
	d := newTestDao(t)

	page, err := d.PageCreate(&PageSet{
		UID:        1,
		Title:      "",
		Content:    `{"type":"doc","content":[]}`,
		Tags:       []string{"a", "b"},
		ParentID:   "",
		IsExpanded: true,
	})
	require.NoError(t, err)

	// 服务端分配 ID 与时间戳，空标题落为默认值
	assert.NotEmpty(t, page.ID)
	assert.Equal(t, "Untitled", page.Title)
	assert.Equal(t, []string{"a", "b"}, page.Tags)
	assert.True(t, page.IsExpanded)
	assert.NotZero(t, page.CreatedTimestamp)
	assert.Equal(t, page.CreatedTimestamp, page.UpdatedTimestamp)
}

func TestPageUpdatePartial(t *testing.T) {
	d := newTestDao(t)

	page, err := d.PageCreate(&PageSet{UID: 1, Title: "First"})
	require.NoError(t, err)

	updated, err := d.PageUpdate(page.ID, 1, map[string]interface{}{
		"title": "Renamed",
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Renamed", updated.Title)
	// 其余字段不受影响
	assert.Equal(t, page.ID, updated.ID)
	assert.GreaterOrEqual(t, updated.UpdatedTimestamp, page.UpdatedTimestamp)

	// 更新不存在的ID返回 nil
	missing, err := d.PageUpdate("no-such-id", 1, map[string]interface{}{"title": "x"})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPageSoftDeleteIdempotent(t *testing.T) {
	d := newTestDao(t)

	page, err := d.PageCreate(&PageSet{UID: 1, Title: "Doomed"})
	require.NoError(t, err)

	deleted, err := d.PageSoftDelete(page.ID, 1)
	require.NoError(t, err)
	assert.True(t, deleted)

	// 重复删除不算错误
	deleted, err = d.PageSoftDelete(page.ID, 1)
	require.NoError(t, err)
	assert.False(t, deleted)

	pages, err := d.PageGetAllByUID(1)
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestPageGetAllOrder(t *testing.T) {
	d := newTestDao(t)

	a, err := d.PageCreate(&PageSet{UID: 7, Title: "a"})
	require.NoError(t, err)
	b, err := d.PageCreate(&PageSet{UID: 7, Title: "b"})
	require.NoError(t, err)

	// b 更新后应排在最前（按更新时间倒序）
	_, err = d.PageUpdate(b.ID, 7, map[string]interface{}{"title": "b2"})
	require.NoError(t, err)

	pages, err := d.PageGetAllByUID(7)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, b.ID, pages[0].ID)
	assert.Equal(t, a.ID, pages[1].ID)
}
