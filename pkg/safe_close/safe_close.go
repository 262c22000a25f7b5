package safe_close

import (
	"sync"
)

// SafeClose 协调多个后台协程的关闭：广播关闭信号并等待全部退出
// SafeClose broadcasts a close signal to attached goroutines and waits for all of them
type SafeClose struct {
	closeOnce   sync.Once
	closeSignal chan struct{}
	wg          sync.WaitGroup
	err         error
}

func NewSafeClose() *SafeClose {
	return &SafeClose{
		closeSignal: make(chan struct{}),
	}
}

// Attach 在新协程中运行 fn，fn 退出前必须调用 done
func (s *SafeClose) Attach(fn func(done func(), closeSignal <-chan struct{})) {
	s.wg.Add(1)
	var once sync.Once
	done := func() { once.Do(s.wg.Done) }
	go fn(done, s.closeSignal)
}

// SendCloseSignal 广播关闭信号，可重复调用；只保留第一次调用的 err
func (s *SafeClose) SendCloseSignal(err error) {
	s.closeOnce.Do(func() {
		s.err = err
		close(s.closeSignal)
	})
}

// CloseSignal 关闭信号通道
func (s *SafeClose) CloseSignal() <-chan struct{} {
	return s.closeSignal
}

// WaitClosed 等待全部协程退出，返回触发关闭的错误
func (s *SafeClose) WaitClosed() error {
	s.wg.Wait()
	return s.err
}
