// Synchronization primitives for RxGo
// 可重入锁与同步投递模式
package rxgo

import (
	"sync"
	"sync/atomic"
)

// RecursiveLock 可重入互斥锁
//
// 同一个goroutine可以重复加锁，加锁次数与解锁次数必须相等。
// 调度器在锁内同步触发回调时不会死锁。
type RecursiveLock struct {
	mu    sync.Mutex
	owner atomic.Int64
	depth int
}

// Lock 加锁
func (l *RecursiveLock) Lock() {
	gid := goroutineID()
	if l.owner.Load() == gid {
		l.depth++
		return
	}
	l.mu.Lock()
	l.owner.Store(gid)
	l.depth = 1
}

// Unlock 解锁，只有持有锁的goroutine可以解锁
func (l *RecursiveLock) Unlock() {
	switch owner := l.owner.Load(); {
	case owner == 0:
		fatalError("RecursiveLock: unlock of unlocked lock")
	case owner != goroutineID():
		fatalError("RecursiveLock: unlock by goroutine %d, lock is held by goroutine %d", goroutineID(), owner)
	}
	l.depth--
	if l.depth == 0 {
		l.owner.Store(0)
		l.mu.Unlock()
	}
}

// PerformLocked 在锁内执行action
func (l *RecursiveLock) PerformLocked(action func()) {
	l.Lock()
	defer l.Unlock()
	action()
}

// SynchronizedOn 在锁内执行事件的状态转换
//
// 同一个Sink收到的所有事件都经过同一把锁，下游观察者不会看到交错的事件。
func SynchronizedOn[T any](lock *RecursiveLock, event Event[T], on func(Event[T])) {
	lock.Lock()
	defer lock.Unlock()
	on(event)
}
