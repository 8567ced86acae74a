package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDraftDefaults(t *testing.T) {
	draft := NewDraft("parent-1")

	assert.Equal(t, DefaultTitle, draft.Title)
	assert.Equal(t, "parent-1", draft.ParentID)
	assert.True(t, draft.IsExpanded)
	assert.Empty(t, draft.Tags)
}

func TestPageUpdateOverlay(t *testing.T) {
	u := &PageUpdate{Title: String("a")}
	u.Overlay(&PageUpdate{Title: String("ab")})
	u.Overlay(&PageUpdate{Icon: String("📄")})

	// 后写覆盖先写，不同字段累积
	assert.Equal(t, "ab", *u.Title)
	assert.Equal(t, "📄", *u.Icon)
	assert.Nil(t, u.Content)
}

func TestPageUpdateApply(t *testing.T) {
	page := &Page{ID: "p1", Title: "old", IsExpanded: false}

	u := &PageUpdate{
		Title:      String("new"),
		Tags:       Tags([]string{"a", "b", "a"}),
		IsExpanded: Bool(true),
	}
	u.Apply(page)

	assert.Equal(t, "new", page.Title)
	assert.Equal(t, []string{"a", "b"}, page.Tags, "标签去重")
	assert.True(t, page.IsExpanded)
	assert.Equal(t, "p1", page.ID)
}

func TestPageUpdateIsEmpty(t *testing.T) {
	assert.True(t, (&PageUpdate{}).IsEmpty())
	assert.False(t, (&PageUpdate{Title: String("")}).IsEmpty())
}

func TestPageClone(t *testing.T) {
	page := &Page{ID: "p1", Tags: []string{"x"}}
	c := page.Clone()
	c.Tags[0] = "y"
	c.Title = "changed"

	assert.Equal(t, "x", page.Tags[0])
	assert.Empty(t, page.Title)
}
