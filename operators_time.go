// Time-based operators for RxGo
// 时间操作符实现，包含Debounce, SkipDuration
package rxgo

import (
	"sync/atomic"
	"time"
)

// ============================================================================
// Debounce 防抖
// ============================================================================

// debounceSink 缓存最新值，计时器的id与当前id一致时才发射
type debounceSink[T any] struct {
	Sink[T]
	lock        RecursiveLock
	dueTime     time.Duration
	scheduler   Scheduler
	id          uint64
	value       T
	hasValue    bool
	cancellable *SerialDisposable
}

// Debounce 防抖操作符，只有在dueTime内没有新值时才发射最后一个值
//
// 源完成时如果还有缓存的值，立即发射它然后完成。
func Debounce[T any](source Observable[T], dueTime time.Duration, scheduler Scheduler) Observable[T] {
	return NewProducer[T](RunnerFunc[T](func(observer Observer[T], cancel Cancelable) (Disposable, Disposable) {
		sink := &debounceSink[T]{
			dueTime:     dueTime,
			scheduler:   scheduler,
			cancellable: NewSerialDisposable(),
		}
		sink.Init(observer, cancel)
		return sink, sink.run(source)
	}))
}

func (s *debounceSink[T]) run(source Observable[T]) Disposable {
	subscription := source.Subscribe(s)
	return ComposeDisposables(subscription, s.cancellable)
}

func (s *debounceSink[T]) On(event Event[T]) {
	SynchronizedOn(&s.lock, event, s.synchronizedOn)
}

func (s *debounceSink[T]) synchronizedOn(event Event[T]) {
	switch event.Kind {
	case KindNext:
		s.id++
		currentID := s.id
		s.value = event.Value
		s.hasValue = true

		d := NewSingleAssignmentDisposable()
		s.cancellable.SetDisposable(d)
		d.SetDisposable(s.scheduler.ScheduleRelative(currentID, s.dueTime, s.propagate))
	case KindError:
		s.clear()
		s.ForwardOn(event)
		s.Dispose()
	case KindCompleted:
		if s.hasValue {
			value := s.value
			s.clear()
			s.ForwardOn(NextEvent(value))
		}
		s.ForwardOn(event)
		s.Dispose()
	}
}

// propagate 计时器到期，过期的计时器不做任何事
func (s *debounceSink[T]) propagate(state any) Disposable {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.hasValue && s.id == state.(uint64) {
		value := s.value
		s.clear()
		s.ForwardOn(NextEvent(value))
	}
	return NopDisposable
}

func (s *debounceSink[T]) clear() {
	var zero T
	s.value = zero
	s.hasValue = false
}

// ============================================================================
// SkipDuration 按时间跳过
// ============================================================================

type skipTimeSink[T any] struct {
	Sink[T]
	open atomic.Bool
}

// SkipDuration 跳过订阅后duration时间内的所有值
func SkipDuration[T any](source Observable[T], duration time.Duration, scheduler Scheduler) Observable[T] {
	return NewProducer[T](RunnerFunc[T](func(observer Observer[T], cancel Cancelable) (Disposable, Disposable) {
		sink := &skipTimeSink[T]{}
		sink.Init(observer, cancel)
		return sink, sink.run(source, duration, scheduler)
	}))
}

func (s *skipTimeSink[T]) run(source Observable[T], duration time.Duration, scheduler Scheduler) Disposable {
	timer := scheduler.ScheduleRelative(nil, duration, func(any) Disposable {
		s.open.Store(true)
		return NopDisposable
	})
	subscription := source.Subscribe(s)
	return ComposeDisposables(timer, subscription)
}

func (s *skipTimeSink[T]) On(event Event[T]) {
	switch event.Kind {
	case KindNext:
		if s.open.Load() {
			s.ForwardOn(event)
		}
	case KindError, KindCompleted:
		s.ForwardOn(event)
		s.Dispose()
	}
}
