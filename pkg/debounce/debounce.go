// Package debounce provides a per-key coalescing timer
// Package debounce 提供按键位独立的防抖定时器
// A new call within the window cancels the pending call for the same key,
// so only the last call in any window ever fires. Different keys never interfere.
// 窗口期内的新调用会取消同键位的待执行调用，任意窗口内只有最后一次调用会生效。不同键位互不干扰。
package debounce

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Debouncer manages one timer per key
// Debouncer 为每个键位维护一个定时器
type Debouncer struct {
	delay  time.Duration
	logger *zap.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
	fns    map[string]func()
	closed bool
}

// New creates a debouncer with the given window
// New 创建指定窗口期的防抖器
// logger: zap logger, if nil use nop logger
// logger: zap 日志器，如果为 nil 则使用 nop logger
func New(delay time.Duration, logger *zap.Logger) *Debouncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Debouncer{
		delay:  delay,
		logger: logger,
		timers: make(map[string]*time.Timer),
		fns:    make(map[string]func()),
	}
}

// Call schedules fn for the key, superseding any pending call for the same key.
// The call is fire-and-forget; fn runs on a timer goroutine after the window elapses.
// Call 为键位安排 fn，取代同键位的待执行调用。
// 调用即发即忘；窗口期过后 fn 在定时器 goroutine 上运行。
func (d *Debouncer) Call(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	if t, ok := d.timers[key]; ok {
		t.Stop()
	}
	d.fns[key] = fn
	d.timers[key] = time.AfterFunc(d.delay, func() {
		d.fire(key)
	})
}

// fire runs the pending fn for the key, if it is still the scheduled one
// fire 执行键位的待执行函数（若仍是当前安排的那个）
func (d *Debouncer) fire(key string) {
	d.mu.Lock()
	fn, ok := d.fns[key]
	if ok {
		delete(d.fns, key)
		delete(d.timers, key)
	}
	d.mu.Unlock()
	if ok && fn != nil {
		fn()
	}
}

// Flush fires the pending call for the key immediately, if any
// Flush 立即执行键位的待执行调用（如有）
func (d *Debouncer) Flush(key string) {
	d.mu.Lock()
	if t, ok := d.timers[key]; ok {
		t.Stop()
	}
	d.mu.Unlock()
	d.fire(key)
}

// FlushAll fires every pending call immediately
// FlushAll 立即执行所有待执行调用
func (d *Debouncer) FlushAll() {
	d.mu.Lock()
	keys := make([]string, 0, len(d.fns))
	for _, t := range d.timers {
		t.Stop()
	}
	for key := range d.fns {
		keys = append(keys, key)
	}
	d.mu.Unlock()
	for _, key := range keys {
		d.fire(key)
	}
}

// Cancel drops the pending call for the key without running it
// Cancel 丢弃键位的待执行调用，不再运行
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[key]; ok {
		t.Stop()
		delete(d.timers, key)
	}
	delete(d.fns, key)
}

// Pending reports whether the key has a scheduled call
// Pending 报告键位是否有已安排的调用
func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.fns[key]
	return ok
}

// Close cancels everything; subsequent Call invocations are no-ops
// Close 取消全部待执行调用，之后的 Call 均为空操作
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	for key, t := range d.timers {
		t.Stop()
		delete(d.timers, key)
	}
	for key := range d.fns {
		delete(d.fns, key)
	}
	d.logger.Debug("debouncer closed")
}
