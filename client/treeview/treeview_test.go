package treeview

import (
	"fmt"
	"testing"

	"github.com/astralvault/page-sync-service/client/entity"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func page(id, parentID string, updatedAt int64) *entity.Page {
	return &entity.Page{ID: id, ParentID: parentID, UpdatedAt: updatedAt}
}

func TestChildrenOrder(t *testing.T) {
	pages := []*entity.Page{
		page("c", "root", 300),
		page("a", "root", 100),
		page("b", "root", 200),
		page("x", "other", 50),
	}

	children := Children(pages, "root")

	assert.Len(t, children, 3)
	assert.Equal(t, "a", children[0].ID)
	assert.Equal(t, "b", children[1].ID)
	assert.Equal(t, "c", children[2].ID)
}

func TestChildrenStableOnTies(t *testing.T) {
	// updatedAt 相同时保持原序
	pages := []*entity.Page{
		page("first", "root", 100),
		page("second", "root", 100),
	}

	children := Children(pages, "root")
	assert.Equal(t, "first", children[0].ID)
	assert.Equal(t, "second", children[1].ID)
}

func TestRootsIncludeDanglingParent(t *testing.T) {
	pages := []*entity.Page{
		page("a", "", 100),
		page("b", "a", 200),
		page("d", "nonexistent", 300),
	}

	roots := Roots(pages)

	ids := make([]string, 0, len(roots))
	for _, p := range roots {
		ids = append(ids, p.ID)
	}
	// 悬空父指针的页面按根处理
	assert.ElementsMatch(t, []string{"a", "d"}, ids)
}

func TestDescendantClosureCascade(t *testing.T) {
	pages := []*entity.Page{
		page("A", "", 1),
		page("B", "A", 2),
		page("C", "B", 3),
		page("other", "", 4),
	}

	closure := DescendantClosure(pages, "A")

	assert.Len(t, closure, 3)
	assert.Contains(t, closure, "A")
	assert.Contains(t, closure, "B")
	assert.Contains(t, closure, "C")
	assert.NotContains(t, closure, "other")
}

func TestDescendantClosureTerminatesOnCycle(t *testing.T) {
	// 自引用与环状父指针不会导致死循环
	pages := []*entity.Page{
		page("self", "self", 1),
		page("a", "b", 2),
		page("b", "a", 3),
	}

	closure := DescendantClosure(pages, "self")
	assert.Contains(t, closure, "self")

	closure = DescendantClosure(pages, "a")
	assert.Contains(t, closure, "a")
	assert.Contains(t, closure, "b")
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, WordCount(nil))
	assert.Equal(t, 0, WordCount(&entity.Page{}))

	short := WordCount(&entity.Page{Content: "abc"})
	long := WordCount(&entity.Page{Content: `{"type":"doc","content":[{"type":"paragraph"}]}`})
	assert.Greater(t, long, short)
}

// genForest 生成一个随机页面森林，父指针只指向序号更小的页面，保证无环
func genForest() gopter.Gen {
	return gen.IntRange(1, 40).Map(func(n int) []*entity.Page {
		pages := make([]*entity.Page, n)
		for i := 0; i < n; i++ {
			parent := ""
			if i > 0 && i%3 != 0 {
				parent = fmt.Sprintf("p%d", i%7)
			}
			pages[i] = page(fmt.Sprintf("p%d", i), parent, int64(i*10))
		}
		return pages
	})
}

// 验证后代闭包的不动点性质
func TestPropertyDescendantClosureIdempotent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("closure of a closure member stays inside the closure", prop.ForAll(
		func(pages []*entity.Page) bool {
			closure := DescendantClosure(pages, "p0")
			for id := range closure {
				sub := DescendantClosure(pages, id)
				for subID := range sub {
					if _, ok := closure[subID]; !ok {
						return false
					}
				}
			}
			return true
		},
		genForest(),
	))

	properties.Property("closure is bounded by the collection plus the seed", prop.ForAll(
		func(pages []*entity.Page) bool {
			closure := DescendantClosure(pages, "p0")
			return len(closure) <= len(pages)+1
		},
		genForest(),
	))

	properties.TestingRun(t)
}

// 验证派生函数不修改输入集合
func TestPropertyDerivationIsPure(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("children and roots leave the input order untouched", prop.ForAll(
		func(pages []*entity.Page) bool {
			before := make([]string, len(pages))
			for i, p := range pages {
				before[i] = p.ID
			}

			Children(pages, "p0")
			Roots(pages)
			DescendantClosure(pages, "p0")

			for i, p := range pages {
				if before[i] != p.ID {
					return false
				}
			}
			return true
		},
		genForest(),
	))

	properties.TestingRun(t)
}
