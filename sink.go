package rxgo

import (
	"sync/atomic"
)

// Sink 每个订阅独有的操作符阶段，连接上游订阅与下游观察者
//
// 操作符的Sink嵌入Sink并独占自己的状态（缓冲区、计数器、最新值）。
// 转发终止事件之后Sink释放自己，之后上游的事件都会被忽略。
type Sink[T any] struct {
	observer Observer[T]
	cancel   Cancelable
	disposed atomic.Bool
}

// Init 绑定下游观察者与订阅级别的取消句柄
func (s *Sink[T]) Init(observer Observer[T], cancel Cancelable) {
	s.observer = observer
	s.cancel = cancel
}

// ForwardOn 向下游转发事件，Sink释放后不再转发
func (s *Sink[T]) ForwardOn(event Event[T]) {
	if s.disposed.Load() {
		return
	}
	s.observer.On(event)
}

// Dispose 释放Sink以及整个订阅
func (s *Sink[T]) Dispose() {
	s.disposed.Store(true)
	s.cancel.Dispose()
}

// IsDisposed 检查是否已释放
func (s *Sink[T]) IsDisposed() bool {
	return s.disposed.Load()
}

// ============================================================================
// Create 匿名Observable
// ============================================================================

// anonymousSink 保证终止事件只转发一次
type anonymousSink[T any] struct {
	Sink[T]
	stopped atomic.Bool
}

func (s *anonymousSink[T]) On(event Event[T]) {
	switch event.Kind {
	case KindNext:
		if s.stopped.Load() {
			return
		}
		s.ForwardOn(event)
	case KindError, KindCompleted:
		if s.stopped.Swap(true) {
			Logger().Debug().Stringer("event", event).Msg("rxgo: Create: event after termination ignored")
			return
		}
		s.ForwardOn(event)
		s.Dispose()
	}
}

// Create 从subscribe函数创建Observable
//
// subscribe收到的观察者保证终止事件之后的事件被忽略，
// 终止时subscribe返回的Disposable会被释放。
func Create[T any](subscribe func(observer Observer[T]) Disposable) Observable[T] {
	return NewProducer[T](RunnerFunc[T](func(observer Observer[T], cancel Cancelable) (Disposable, Disposable) {
		sink := &anonymousSink[T]{}
		sink.Init(observer, cancel)
		subscription := subscribe(sink)
		return sink, subscription
	}))
}
