// Package treeview 从平铺的父指针页面集合派生树结构
// 所有函数都是纯函数，不修改传入的集合
package treeview

import (
	"sort"

	"github.com/astralvault/page-sync-service/client/entity"
)

// Children returns the pages whose parent is parentID, ordered by updatedAt
// ascending with ties broken by original sequence order
// Children 返回父节点为 parentID 的页面，按 updatedAt 升序稳定排序
func Children(pages []*entity.Page, parentID string) []*entity.Page {
	var out []*entity.Page
	for _, p := range pages {
		if p.ParentID == parentID {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt < out[j].UpdatedAt
	})
	return out
}

// Roots returns pages without a resolvable parent
// Roots 返回没有可解析父节点的页面，悬空父指针的页面按根处理而不是消失
func Roots(pages []*entity.Page) []*entity.Page {
	ids := make(map[string]struct{}, len(pages))
	for _, p := range pages {
		ids[p.ID] = struct{}{}
	}

	var out []*entity.Page
	for _, p := range pages {
		if p.ParentID == "" {
			out = append(out, p)
			continue
		}
		if _, ok := ids[p.ParentID]; !ok {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt < out[j].UpdatedAt
	})
	return out
}

// DescendantClosure returns id plus every page transitively reachable by
// following parent pointers downward, computed by fixed-point iteration
// DescendantClosure 返回 id 及其全部后代的集合，用不动点迭代计算
// 每轮要么扩大集合要么终止，集合上界为页面总数，畸形的父指针图也不会死循环
func DescendantClosure(pages []*entity.Page, id string) map[string]struct{} {
	closure := map[string]struct{}{id: {}}

	for {
		grown := false
		for _, p := range pages {
			if _, done := closure[p.ID]; done {
				continue
			}
			if _, ok := closure[p.ParentID]; ok {
				closure[p.ID] = struct{}{}
				grown = true
			}
		}
		if !grown {
			return closure
		}
	}
}

// WordCount 返回与序列化内容大小成正比的近似字数，仅用于展示统计
func WordCount(p *entity.Page) int {
	if p == nil || len(p.Content) == 0 {
		return 0
	}
	// 按平均每词 6 字节估算
	return (len(p.Content) + 5) / 6
}
