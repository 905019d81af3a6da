// Aggregation operators for RxGo
// 聚合操作符实现，包含ToArray, Single
package rxgo

// ============================================================================
// ToArray
// ============================================================================

type toArraySink[T any] struct {
	Sink[[]T]
	list []T
}

// ToArray 源完成时把所有值作为一个切片发射
//
// 源没有任何值时发射空切片。
func ToArray[T any](source Observable[T]) Observable[[]T] {
	return NewProducer[[]T](RunnerFunc[[]T](func(observer Observer[[]T], cancel Cancelable) (Disposable, Disposable) {
		sink := &toArraySink[T]{list: make([]T, 0)}
		sink.Init(observer, cancel)
		return sink, source.Subscribe(ObserverFunc[T](sink.on))
	}))
}

func (s *toArraySink[T]) on(event Event[T]) {
	switch event.Kind {
	case KindNext:
		s.list = append(s.list, event.Value)
	case KindError:
		s.ForwardOn(ErrorEvent[[]T](event.Err))
		s.Dispose()
	case KindCompleted:
		list := s.list
		s.list = nil
		s.ForwardOn(NextEvent(list))
		s.ForwardOn(CompletedEvent[[]T]())
		s.Dispose()
	}
}

// ============================================================================
// Single
// ============================================================================

type singleSink[T any] struct {
	Sink[T]
	predicate func(T) (bool, error)
	seenValue bool
}

// Single 源必须恰好发射一个值
//
// 没有值时以ErrNoElements失败，多于一个值时以ErrMoreThanOneElement失败。
func Single[T any](source Observable[T]) Observable[T] {
	return SingleWhere(source, nil)
}

// SingleWhere 满足predicate的值必须恰好有一个，predicate返回的错误会终止序列
func SingleWhere[T any](source Observable[T], predicate func(T) (bool, error)) Observable[T] {
	return NewProducer[T](RunnerFunc[T](func(observer Observer[T], cancel Cancelable) (Disposable, Disposable) {
		sink := &singleSink[T]{predicate: predicate}
		sink.Init(observer, cancel)
		return sink, source.Subscribe(sink)
	}))
}

func (s *singleSink[T]) On(event Event[T]) {
	switch event.Kind {
	case KindNext:
		if s.predicate != nil {
			ok, err := s.predicate(event.Value)
			if err != nil {
				s.ForwardOn(ErrorEvent[T](err))
				s.Dispose()
				return
			}
			if !ok {
				return
			}
		}
		if s.seenValue {
			s.ForwardOn(ErrorEvent[T](ErrMoreThanOneElement))
			s.Dispose()
			return
		}
		s.seenValue = true
		s.ForwardOn(event)
	case KindError:
		s.ForwardOn(event)
		s.Dispose()
	case KindCompleted:
		if s.seenValue {
			s.ForwardOn(event)
		} else {
			s.ForwardOn(ErrorEvent[T](ErrNoElements))
		}
		s.Dispose()
	}
}
