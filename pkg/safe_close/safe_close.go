// Package safe_close coordinates graceful shutdown across long-running
// components. Components Attach a handler that blocks on closeSignal and
// calls done() when finished; SendCloseSignal broadcasts shutdown and
// WaitClosed blocks until every attached handler has completed.
package safe_close

import (
	"sync"
)

type SafeClose struct {
	mu        sync.Mutex
	closeOnce sync.Once
	closeCh   chan struct{}
	wg        sync.WaitGroup
	err       error
}

func NewSafeClose() *SafeClose {
	return &SafeClose{
		closeCh: make(chan struct{}),
	}
}

// Attach runs f in its own goroutine. f must call done() when it has fully
// stopped and should begin teardown once closeSignal is closed.
func (s *SafeClose) Attach(f func(done func(), closeSignal <-chan struct{})) {
	s.wg.Add(1)
	go f(s.wg.Done, s.closeCh)
}

// SendCloseSignal broadcasts shutdown. The first non-nil err wins and is
// returned from WaitClosed. Safe to call multiple times.
func (s *SafeClose) SendCloseSignal(err error) {
	s.mu.Lock()
	if s.err == nil && err != nil {
		s.err = err
	}
	s.mu.Unlock()

	s.closeOnce.Do(func() {
		close(s.closeCh)
	})
}

// WaitClosed blocks until all attached handlers have called done.
func (s *SafeClose) WaitClosed() error {
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// CloseSignal exposes the shared close channel for components that only
// need to observe shutdown without attaching a handler.
func (s *SafeClose) CloseSignal() <-chan struct{} {
	return s.closeCh
}
