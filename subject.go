// Subject implementations for RxGo
// 实现PublishSubject：既是Observable也是Observer的热序列
package rxgo

import (
	"sync"
)

// ============================================================================
// PublishSubject - 发布主题
// ============================================================================

type subjectEntry[T any] struct {
	key      uint64
	observer Observer[T]
}

// PublishSubject 发布主题，只向当前订阅者发送新的值
//
// 终止之后订阅的观察者立即收到同一个终止事件。
// 事件按调用On的顺序同步投递，调用方负责串行地调用On。
type PublishSubject[T any] struct {
	mu        sync.Mutex
	observers []subjectEntry[T]
	nextKey   uint64
	stopEvent *Event[T]
	disposed  bool
}

// NewPublishSubject 创建新的发布主题
func NewPublishSubject[T any]() *PublishSubject[T] {
	return &PublishSubject[T]{}
}

// Subscribe 订阅观察者
func (ps *PublishSubject[T]) Subscribe(observer Observer[T]) Disposable {
	ps.mu.Lock()
	if ps.disposed {
		ps.mu.Unlock()
		return NopDisposable
	}
	if ps.stopEvent != nil {
		event := *ps.stopEvent
		ps.mu.Unlock()
		observer.On(event)
		return NopDisposable
	}

	ps.nextKey++
	key := ps.nextKey
	ps.observers = append(ps.observers, subjectEntry[T]{key: key, observer: observer})
	ps.mu.Unlock()

	return NewDisposable(func() {
		ps.removeObserver(key)
	})
}

// On 向所有当前观察者发送事件
func (ps *PublishSubject[T]) On(event Event[T]) {
	ps.mu.Lock()
	if ps.disposed || ps.stopEvent != nil {
		ps.mu.Unlock()
		return
	}
	observers := make([]subjectEntry[T], len(ps.observers))
	copy(observers, ps.observers)
	if event.IsStopEvent() {
		ps.stopEvent = &event
		ps.observers = nil
	}
	ps.mu.Unlock()

	for _, entry := range observers {
		entry.observer.On(event)
	}
}

// OnNext 发送下一个值
func (ps *PublishSubject[T]) OnNext(value T) {
	ps.On(NextEvent(value))
}

// OnError 发送错误
func (ps *PublishSubject[T]) OnError(err error) {
	ps.On(ErrorEvent[T](err))
}

// OnCompleted 发送完成信号
func (ps *PublishSubject[T]) OnCompleted() {
	ps.On(CompletedEvent[T]())
}

// HasObservers 检查是否有观察者
func (ps *PublishSubject[T]) HasObservers() bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return len(ps.observers) > 0
}

// ObserverCount 获取观察者数量
func (ps *PublishSubject[T]) ObserverCount() int {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return len(ps.observers)
}

// IsDisposed 检查是否已释放
func (ps *PublishSubject[T]) IsDisposed() bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.disposed
}

// Dispose 释放主题，移除所有观察者且不再发送事件
func (ps *PublishSubject[T]) Dispose() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.disposed = true
	ps.observers = nil
}

// removeObserver 移除观察者
func (ps *PublishSubject[T]) removeObserver(key uint64) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	for i, entry := range ps.observers {
		if entry.key == key {
			ps.observers = append(ps.observers[:i], ps.observers[i+1:]...)
			return
		}
	}
}
