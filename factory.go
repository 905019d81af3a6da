// Factory functions for RxGo
// 工厂函数，提供符合Go习惯的API设计
package rxgo

// ============================================================================
// 基础工厂函数
// ============================================================================

// Just 发射给定的值然后完成
func Just[T any](values ...T) Observable[T] {
	return FromSlice(values)
}

// Empty 立即完成
func Empty[T any]() Observable[T] {
	return Create(func(observer Observer[T]) Disposable {
		observer.On(CompletedEvent[T]())
		return NopDisposable
	})
}

// Throw 立即以err终止
func Throw[T any](err error) Observable[T] {
	return Create(func(observer Observer[T]) Disposable {
		observer.On(ErrorEvent[T](err))
		return NopDisposable
	})
}

// neverObservable 永远不发射任何事件
type neverObservable[T any] struct{}

func (neverObservable[T]) Subscribe(Observer[T]) Disposable {
	return NopDisposable
}

// Never 创建一个永不发射任何事件的Observable
func Never[T any]() Observable[T] {
	return neverObservable[T]{}
}

// Defer 每次订阅时调用factory创建新的Observable
func Defer[T any](factory func() (Observable[T], error)) Observable[T] {
	return NewProducer[T](RunnerFunc[T](func(observer Observer[T], cancel Cancelable) (Disposable, Disposable) {
		sink := &anonymousSink[T]{}
		sink.Init(observer, cancel)

		source, err := factory()
		if err != nil {
			source = Throw[T](err)
		}
		return sink, source.Subscribe(sink)
	}))
}

// ============================================================================
// 序列生成
// ============================================================================

type sequenceSink[T any] struct {
	Sink[T]
	next func(index int) (T, bool)
}

func (s *sequenceSink[T]) run(scheduler ImmediateScheduler) Disposable {
	return ScheduleRecursive(scheduler, 0, func(index int, recurse func(int)) {
		if s.IsDisposed() {
			return
		}
		if value, ok := s.next(index); ok {
			s.ForwardOn(NextEvent(value))
			recurse(index + 1)
			return
		}
		s.ForwardOn(CompletedEvent[T]())
		s.Dispose()
	})
}

// FromSlice 按顺序发射切片中的元素然后完成
func FromSlice[T any](items []T) Observable[T] {
	return FromSliceOn(items, CurrentThread)
}

// FromSliceOn 在scheduler上按顺序发射切片中的元素
func FromSliceOn[T any](items []T, scheduler ImmediateScheduler) Observable[T] {
	if scheduler == nil {
		scheduler = CurrentThread
	}
	return NewProducer[T](RunnerFunc[T](func(observer Observer[T], cancel Cancelable) (Disposable, Disposable) {
		sink := &sequenceSink[T]{
			next: func(index int) (T, bool) {
				if index < len(items) {
					return items[index], true
				}
				var zero T
				return zero, false
			},
		}
		sink.Init(observer, cancel)
		return sink, sink.run(scheduler)
	}))
}

// Range 在scheduler上发射start开始的count个连续整数
//
// scheduler为nil时使用CurrentThread，任意长度的序列都不会增加栈深度。
// count为负数或者start+count-1溢出时panic。
func Range[T Integer](start, count T, scheduler ImmediateScheduler) Observable[T] {
	if count < 0 {
		fatalError("Range: count can't be negative, got %v", count)
	}
	if count > 0 && start+(count-1) < start {
		fatalError("Range: start %v + count %v overflows", start, count)
	}
	if scheduler == nil {
		scheduler = CurrentThread
	}

	return NewProducer[T](RunnerFunc[T](func(observer Observer[T], cancel Cancelable) (Disposable, Disposable) {
		sink := &rangeSink[T]{start: start, count: count}
		sink.Init(observer, cancel)
		return sink, sink.run(scheduler)
	}))
}

type rangeSink[T Integer] struct {
	Sink[T]
	start T
	count T
}

func (s *rangeSink[T]) run(scheduler ImmediateScheduler) Disposable {
	return ScheduleRecursive(scheduler, T(0), func(i T, recurse func(T)) {
		if s.IsDisposed() {
			return
		}
		if i < s.count {
			s.ForwardOn(NextEvent(s.start + i))
			recurse(i + 1)
			return
		}
		s.ForwardOn(CompletedEvent[T]())
		s.Dispose()
	})
}

// ============================================================================
// 从数据源创建
// ============================================================================

// FromChannel 在新goroutine中读取ch并发射其中的值，ch关闭时完成
//
// 取消订阅后读取goroutine在下一次接收时退出，不会关闭ch。
func FromChannel[T any](ch <-chan T) Observable[T] {
	return Create(func(observer Observer[T]) Disposable {
		done := make(chan struct{})

		go func() {
			for {
				select {
				case <-done:
					return
				case value, ok := <-ch:
					if !ok {
						observer.On(CompletedEvent[T]())
						return
					}
					select {
					case <-done:
						return
					default:
					}
					observer.On(NextEvent(value))
				}
			}
		}()

		return NewDisposable(func() {
			close(done)
		})
	})
}
