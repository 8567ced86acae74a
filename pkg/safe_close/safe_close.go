// Package safe_close 提供多组件协同的优雅关闭控制
package safe_close

import (
	"sync"
)

// SafeClose 协调多个组件的关闭流程
// 每个组件通过 Attach 注册，收到关闭信号后自行清理并调用 done
type SafeClose struct {
	mu          sync.Mutex
	closeSignal chan struct{}
	closed      bool
	err         error

	wg sync.WaitGroup
}

// NewSafeClose 创建 SafeClose 实例
func NewSafeClose() *SafeClose {
	return &SafeClose{
		closeSignal: make(chan struct{}),
	}
}

// Attach 注册一个受关闭控制管理的组件
// fn 在独立协程中运行，收到 closeSignal 后应完成清理并调用 done
func (s *SafeClose) Attach(fn func(done func(), closeSignal <-chan struct{})) {
	s.wg.Add(1)
	go fn(s.wg.Done, s.closeSignal)
}

// SendCloseSignal 发出关闭信号，首个错误会被保留
func (s *SafeClose) SendCloseSignal(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.err = err
	close(s.closeSignal)
}

// WaitClosed 阻塞等待全部组件退出，返回首个关闭错误
func (s *SafeClose) WaitClosed() error {
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// CloseSignal 返回关闭信号通道
func (s *SafeClose) CloseSignal() <-chan struct{} {
	return s.closeSignal
}
