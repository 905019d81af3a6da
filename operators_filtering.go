// Filtering operators for RxGo
// 过滤操作符实现，包含Skip, TakeLast
package rxgo

// ============================================================================
// Skip 按数量跳过
// ============================================================================

type skipCountSink[T any] struct {
	Sink[T]
	remaining int
}

// Skip 跳过前count个值，count小于等于0时转发所有值
func Skip[T any](source Observable[T], count int) Observable[T] {
	return NewProducer[T](RunnerFunc[T](func(observer Observer[T], cancel Cancelable) (Disposable, Disposable) {
		sink := &skipCountSink[T]{remaining: count}
		sink.Init(observer, cancel)
		return sink, source.Subscribe(sink)
	}))
}

func (s *skipCountSink[T]) On(event Event[T]) {
	switch event.Kind {
	case KindNext:
		if s.remaining <= 0 {
			s.ForwardOn(event)
		} else {
			s.remaining--
		}
	case KindError, KindCompleted:
		s.ForwardOn(event)
		s.Dispose()
	}
}

// ============================================================================
// TakeLast 取最后N个
// ============================================================================

// takeLastInitialCapacity 缓冲区初始容量，之后随元素到达扩容，最多count+1
const takeLastInitialCapacity = 16

type takeLastSink[T any] struct {
	Sink[T]
	count    int
	elements *queue[T]
}

// TakeLast 源完成时按顺序发射最后count个值
//
// 源完成之前不发射任何值。count为负数时panic。
func TakeLast[T any](source Observable[T], count int) Observable[T] {
	if count < 0 {
		fatalError("TakeLast: count can't be negative, got %d", count)
	}
	return NewProducer[T](RunnerFunc[T](func(observer Observer[T], cancel Cancelable) (Disposable, Disposable) {
		sink := &takeLastSink[T]{
			count:    count,
			elements: newQueue[T](min(count+1, takeLastInitialCapacity)),
		}
		sink.Init(observer, cancel)
		return sink, source.Subscribe(sink)
	}))
}

func (s *takeLastSink[T]) On(event Event[T]) {
	switch event.Kind {
	case KindNext:
		s.elements.Enqueue(event.Value)
		if s.elements.Len() > s.count {
			s.elements.Dequeue()
		}
	case KindError:
		s.elements = newQueue[T](1)
		s.ForwardOn(event)
		s.Dispose()
	case KindCompleted:
		for {
			value, ok := s.elements.Dequeue()
			if !ok {
				break
			}
			s.ForwardOn(NextEvent(value))
		}
		s.ForwardOn(event)
		s.Dispose()
	}
}
