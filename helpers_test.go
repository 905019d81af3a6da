package rxgo

import (
	"sync"
	"time"
)

// recorder 记录收到的所有事件，可以在任意goroutine中使用
type recorder[T any] struct {
	mu     sync.Mutex
	events []Event[T]
	done   chan struct{}
	once   sync.Once
}

func newRecorder[T any]() *recorder[T] {
	return &recorder[T]{done: make(chan struct{})}
}

func (r *recorder[T]) On(event Event[T]) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
	if event.IsStopEvent() {
		r.once.Do(func() { close(r.done) })
	}
}

func (r *recorder[T]) Events() []Event[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := make([]Event[T], len(r.events))
	copy(events, r.events)
	return events
}

func (r *recorder[T]) Values() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	values := make([]T, 0, len(r.events))
	for _, event := range r.events {
		if value, ok := event.Element(); ok {
			values = append(values, value)
		}
	}
	return values
}

// Wait 等待终止事件，超时返回false
func (r *recorder[T]) Wait(timeout time.Duration) bool {
	select {
	case <-r.done:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (r *recorder[T]) Completed() bool {
	events := r.Events()
	return len(events) > 0 && events[len(events)-1].Kind == KindCompleted
}

func (r *recorder[T]) Err() error {
	events := r.Events()
	if len(events) > 0 && events[len(events)-1].Kind == KindError {
		return events[len(events)-1].Err
	}
	return nil
}

const testTimeout = time.Second

// epoch 虚拟时间调度器的起点
var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
