package debounce

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncer_LastCallWins(t *testing.T) {
	d := New(50*time.Millisecond, nil)
	defer d.Close()

	var calls int32
	var got atomic.Value

	// 窗口期内连续两次调用，只有最后一次生效
	d.Call("page-1", func() {
		atomic.AddInt32(&calls, 1)
		got.Store("a")
	})
	d.Call("page-1", func() {
		atomic.AddInt32(&calls, 1)
		got.Store("ab")
	})

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, "ab", got.Load())
}

func TestDebouncer_KeysAreIndependent(t *testing.T) {
	d := New(30*time.Millisecond, nil)
	defer d.Close()

	var mu sync.Mutex
	fired := map[string]int{}
	record := func(key string) func() {
		return func() {
			mu.Lock()
			fired[key]++
			mu.Unlock()
		}
	}

	d.Call("a", record("a"))
	d.Call("b", record("b"))
	// 对 a 的重复调用不得影响 b
	d.Call("a", record("a"))

	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, fired["a"])
	assert.Equal(t, 1, fired["b"])
}

func TestDebouncer_Cancel(t *testing.T) {
	d := New(30*time.Millisecond, nil)
	defer d.Close()

	var calls int32
	d.Call("x", func() { atomic.AddInt32(&calls, 1) })
	d.Cancel("x")

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
	assert.False(t, d.Pending("x"))
}

func TestDebouncer_Flush(t *testing.T) {
	d := New(10*time.Second, nil)
	defer d.Close()

	var calls int32
	d.Call("x", func() { atomic.AddInt32(&calls, 1) })
	assert.True(t, d.Pending("x"))

	d.Flush("x")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.False(t, d.Pending("x"))

	// Flush 之后再次 Flush 为空操作
	d.Flush("x")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDebouncer_CloseDropsPending(t *testing.T) {
	d := New(30*time.Millisecond, nil)

	var calls int32
	d.Call("x", func() { atomic.AddInt32(&calls, 1) })
	d.Close()

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))

	// Close 之后 Call 不再生效
	d.Call("y", func() { atomic.AddInt32(&calls, 1) })
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}
