package feed

import (
	"time"
)

// WaitForPush blocks until either a new push commits or timeout elapses.
// It returns true if woken by a push, false on timeout.
func (f *Feed) WaitForPush(timeout time.Duration) bool {
	f.mu.Lock()
	ch := f.notifyCh
	f.mu.Unlock()
	if timeout <= 0 {
		<-ch
		return true
	}
	select {
	case <-ch:
		return true
	case <-time.After(timeout):
		return false
	}
}
