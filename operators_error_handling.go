// Error handling operators for RxGo
// 错误处理操作符实现，包含Catch, CatchAndReturn
package rxgo

// ============================================================================
// Catch
// ============================================================================

type catchSink[T any] struct {
	Sink[T]
	handler      func(error) (Observable[T], error)
	subscription *SerialDisposable
}

// Catch 源出错时切换到handler返回的Observable
//
// handler返回错误时以该错误终止序列。
func Catch[T any](source Observable[T], handler func(err error) (Observable[T], error)) Observable[T] {
	return NewProducer[T](RunnerFunc[T](func(observer Observer[T], cancel Cancelable) (Disposable, Disposable) {
		sink := &catchSink[T]{
			handler:      handler,
			subscription: NewSerialDisposable(),
		}
		sink.Init(observer, cancel)

		d := NewSingleAssignmentDisposable()
		sink.subscription.SetDisposable(d)
		d.SetDisposable(source.Subscribe(sink))
		return sink, sink.subscription
	}))
}

func (s *catchSink[T]) On(event Event[T]) {
	switch event.Kind {
	case KindNext:
		s.ForwardOn(event)
	case KindCompleted:
		s.ForwardOn(event)
		s.Dispose()
	case KindError:
		next, err := s.handler(event.Err)
		if err != nil {
			s.ForwardOn(ErrorEvent[T](err))
			s.Dispose()
			return
		}

		forward := &anonymousSink[T]{}
		forward.Init(s.observer, s.cancel)

		d := NewSingleAssignmentDisposable()
		s.subscription.SetDisposable(d)
		d.SetDisposable(next.Subscribe(forward))
	}
}

// CatchAndReturn 源出错时发射value然后完成
func CatchAndReturn[T any](source Observable[T], value T) Observable[T] {
	return Catch(source, func(error) (Observable[T], error) {
		return Just(value), nil
	})
}
