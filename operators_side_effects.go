// Side effect operators for RxGo
// 副作用操作符实现，包含Do, DoOnDispose, Log
package rxgo

import (
	"github.com/rs/zerolog"
)

// ============================================================================
// Do
// ============================================================================

type doSink[T any] struct {
	Sink[T]
	onEvent func(Event[T]) error
}

// Do 在事件转发之前执行回调，任意回调可以为nil
//
// 回调返回的错误会替代原事件以Error终止序列。
func Do[T any](source Observable[T], onNext func(T) error, onError func(error), onCompleted func()) Observable[T] {
	onEvent := func(event Event[T]) error {
		switch event.Kind {
		case KindNext:
			if onNext != nil {
				return onNext(event.Value)
			}
		case KindError:
			if onError != nil {
				onError(event.Err)
			}
		case KindCompleted:
			if onCompleted != nil {
				onCompleted()
			}
		}
		return nil
	}

	return NewProducer[T](RunnerFunc[T](func(observer Observer[T], cancel Cancelable) (Disposable, Disposable) {
		sink := &doSink[T]{onEvent: onEvent}
		sink.Init(observer, cancel)
		return sink, source.Subscribe(sink)
	}))
}

func (s *doSink[T]) On(event Event[T]) {
	if err := s.onEvent(event); err != nil {
		s.ForwardOn(ErrorEvent[T](err))
		s.Dispose()
		return
	}
	s.ForwardOn(event)
	if event.IsStopEvent() {
		s.Dispose()
	}
}

// DoOnDispose 订阅释放时执行action，只执行一次
func DoOnDispose[T any](source Observable[T], action func()) Observable[T] {
	return NewProducer[T](RunnerFunc[T](func(observer Observer[T], cancel Cancelable) (Disposable, Disposable) {
		sink := &anonymousSink[T]{}
		sink.Init(observer, cancel)
		return sink, ComposeDisposables(source.Subscribe(sink), NewDisposable(action))
	}))
}

// ============================================================================
// Log
// ============================================================================

// Log 用库的日志记录器在debug级别记录所有事件和订阅释放
func Log[T any](source Observable[T], name string) Observable[T] {
	return NewProducer[T](RunnerFunc[T](func(observer Observer[T], cancel Cancelable) (Disposable, Disposable) {
		log := Logger().With().Str("observable", name).Logger()
		log.Debug().Msg("subscribed")

		sink := &doSink[T]{onEvent: func(event Event[T]) error {
			logEvent(&log, event)
			return nil
		}}
		sink.Init(observer, cancel)

		subscription := source.Subscribe(sink)
		return sink, ComposeDisposables(subscription, NewDisposable(func() {
			log.Debug().Msg("disposed")
		}))
	}))
}

func logEvent[T any](log *zerolog.Logger, event Event[T]) {
	switch event.Kind {
	case KindNext:
		log.Debug().Interface("value", event.Value).Msg("next")
	case KindError:
		log.Debug().Err(event.Err).Msg("error")
	case KindCompleted:
		log.Debug().Msg("completed")
	}
}
