// Combination operators for RxGo
// 组合操作符实现，包含WithLatestFrom
package rxgo

// ============================================================================
// WithLatestFrom
// ============================================================================

// withLatestFromSink 处理first的事件，second的最新值由secondObserver写入
//
// 两个源的事件都在同一把锁内处理。
type withLatestFromSink[A, B, R any] struct {
	Sink[R]
	lock      RecursiveLock
	selector  func(A, B) (R, error)
	latest    B
	hasLatest bool
}

// WithLatestFrom 用second的最新值与first的每个值组合
//
// second还没有发射过值之前，first的值被丢弃。second完成只停止更新最新值，
// first完成或任意一方出错时整个序列终止。selector返回的错误会终止序列。
func WithLatestFrom[A, B, R any](first Observable[A], second Observable[B], selector func(A, B) (R, error)) Observable[R] {
	return NewProducer[R](RunnerFunc[R](func(observer Observer[R], cancel Cancelable) (Disposable, Disposable) {
		sink := &withLatestFromSink[A, B, R]{selector: selector}
		sink.Init(observer, cancel)
		return sink, sink.run(first, second)
	}))
}

// WithLatestFromSecond 只发射second的最新值
func WithLatestFromSecond[A, B any](first Observable[A], second Observable[B]) Observable[B] {
	return WithLatestFrom(first, second, func(_ A, b B) (B, error) {
		return b, nil
	})
}

func (s *withLatestFromSink[A, B, R]) run(first Observable[A], second Observable[B]) Disposable {
	sndSubscription := NewSingleAssignmentDisposable()
	sndObserver := &withLatestFromSecondObserver[A, B, R]{
		parent:     s,
		disposable: sndSubscription,
	}

	sndSubscription.SetDisposable(second.Subscribe(sndObserver))
	fstSubscription := first.Subscribe(ObserverFunc[A](s.on))

	return ComposeDisposables(fstSubscription, sndSubscription)
}

func (s *withLatestFromSink[A, B, R]) on(event Event[A]) {
	SynchronizedOn(&s.lock, event, s.synchronizedOn)
}

func (s *withLatestFromSink[A, B, R]) synchronizedOn(event Event[A]) {
	switch event.Kind {
	case KindNext:
		if !s.hasLatest {
			return
		}
		result, err := s.selector(event.Value, s.latest)
		if err != nil {
			s.ForwardOn(ErrorEvent[R](err))
			s.Dispose()
			return
		}
		s.ForwardOn(NextEvent(result))
	case KindError:
		s.ForwardOn(ErrorEvent[R](event.Err))
		s.Dispose()
	case KindCompleted:
		s.ForwardOn(CompletedEvent[R]())
		s.Dispose()
	}
}

// withLatestFromSecondObserver 记录second的最新值
type withLatestFromSecondObserver[A, B, R any] struct {
	parent     *withLatestFromSink[A, B, R]
	disposable Disposable
}

func (o *withLatestFromSecondObserver[A, B, R]) On(event Event[B]) {
	SynchronizedOn(&o.parent.lock, event, o.synchronizedOn)
}

func (o *withLatestFromSecondObserver[A, B, R]) synchronizedOn(event Event[B]) {
	switch event.Kind {
	case KindNext:
		o.parent.latest = event.Value
		o.parent.hasLatest = true
	case KindError:
		o.parent.ForwardOn(ErrorEvent[R](event.Err))
		o.parent.Dispose()
	case KindCompleted:
		o.disposable.Dispose()
	}
}
