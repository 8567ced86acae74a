// Package entity 定义页面同步引擎的核心数据模型
package entity

import (
	"github.com/astralvault/page-sync-service/pkg/util"
)

// DefaultTitle 新建页面的默认标题
const DefaultTitle = "Untitled"

// Page is the persisted document node, the unit of the page tree
// Page 是持久化的文档节点，页面树的基本单元
// Content 为富文本文档的序列化 JSON，引擎只负责传输与存储，不解析其结构
type Page struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Icon       string   `json:"icon"`
	CoverImage string   `json:"coverImage"`
	Content    string   `json:"content"`
	Tags       []string `json:"tags"`
	ParentID   string   `json:"parentId"`   // 为空表示根页面
	IsExpanded bool     `json:"isExpanded"` // 展开状态，持久化
	CreatedAt  int64    `json:"createdAt"`  // 毫秒时间戳
	UpdatedAt  int64    `json:"updatedAt"`  // 毫秒时间戳，每次内容变更都会刷新
}

// Clone 返回页面的深拷贝
func (p *Page) Clone() *Page {
	c := *p
	if p.Tags != nil {
		c.Tags = make([]string, len(p.Tags))
		copy(c.Tags, p.Tags)
	}
	return &c
}

// User 身份上下文，仅作为远端网关的归属键
type User struct {
	UID      int64  `json:"uid"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	Token    string `json:"token,omitempty"`
}

// PageDraft 创建页面的初始字段，ID 与时间戳由服务端分配
type PageDraft struct {
	Title      string   `json:"title"`
	Icon       string   `json:"icon"`
	CoverImage string   `json:"coverImage"`
	Content    string   `json:"content"`
	Tags       []string `json:"tags"`
	ParentID   string   `json:"parentId"`
	IsExpanded bool     `json:"isExpanded"`
}

// NewDraft 构造带默认值的页面草稿
func NewDraft(parentID string) *PageDraft {
	return &PageDraft{
		Title:      DefaultTitle,
		Content:    "",
		Tags:       []string{},
		ParentID:   parentID,
		IsExpanded: true,
	}
}

// PageUpdate is a partial update, nil fields are left untouched
// PageUpdate 部分更新，nil 字段保持不变
type PageUpdate struct {
	Title      *string   `json:"title,omitempty"`
	Icon       *string   `json:"icon,omitempty"`
	CoverImage *string   `json:"coverImage,omitempty"`
	Content    *string   `json:"content,omitempty"`
	Tags       *[]string `json:"tags,omitempty"`
	ParentID   *string   `json:"parentId,omitempty"`
	IsExpanded *bool     `json:"isExpanded,omitempty"`
}

// IsEmpty 判断是否没有任何待更新字段
func (u *PageUpdate) IsEmpty() bool {
	return u.Title == nil && u.Icon == nil && u.CoverImage == nil &&
		u.Content == nil && u.Tags == nil && u.ParentID == nil && u.IsExpanded == nil
}

// Overlay merges the non-nil fields of other on top of u
// Overlay 将 other 的非 nil 字段叠加到 u 上，后写的字段值覆盖先写的
func (u *PageUpdate) Overlay(other *PageUpdate) {
	if other == nil {
		return
	}
	if other.Title != nil {
		u.Title = other.Title
	}
	if other.Icon != nil {
		u.Icon = other.Icon
	}
	if other.CoverImage != nil {
		u.CoverImage = other.CoverImage
	}
	if other.Content != nil {
		u.Content = other.Content
	}
	if other.Tags != nil {
		u.Tags = other.Tags
	}
	if other.ParentID != nil {
		u.ParentID = other.ParentID
	}
	if other.IsExpanded != nil {
		u.IsExpanded = other.IsExpanded
	}
}

// Apply 将更新就地应用到页面，标签会去重
func (u *PageUpdate) Apply(p *Page) {
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Icon != nil {
		p.Icon = *u.Icon
	}
	if u.CoverImage != nil {
		p.CoverImage = *u.CoverImage
	}
	if u.Content != nil {
		p.Content = *u.Content
	}
	if u.Tags != nil {
		p.Tags = util.RemoveDuplicate(*u.Tags)
	}
	if u.ParentID != nil {
		p.ParentID = *u.ParentID
	}
	if u.IsExpanded != nil {
		p.IsExpanded = *u.IsExpanded
	}
}

// 指针字段构造辅助

func String(s string) *string   { return &s }
func Bool(b bool) *bool         { return &b }
func Tags(t []string) *[]string { return &t }
