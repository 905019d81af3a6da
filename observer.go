package rxgo

import (
	"sync/atomic"
)

// ObserverFunc 函数形式的Observer
type ObserverFunc[T any] func(event Event[T])

// On 接收一个事件
func (f ObserverFunc[T]) On(event Event[T]) {
	f(event)
}

// anonymousObserver 回调形式的观察者，保证终止事件只处理一次
type anonymousObserver[T any] struct {
	stopped     atomic.Bool
	onNext      func(T)
	onError     func(error)
	onCompleted func()
}

// NewObserver 使用回调函数创建观察者
//
// 终止事件之后收到的事件会被忽略。任意回调可以为nil。
func NewObserver[T any](onNext func(T), onError func(error), onCompleted func()) Observer[T] {
	return &anonymousObserver[T]{
		onNext:      onNext,
		onError:     onError,
		onCompleted: onCompleted,
	}
}

// On 接收一个事件
func (o *anonymousObserver[T]) On(event Event[T]) {
	switch event.Kind {
	case KindNext:
		if o.stopped.Load() {
			Logger().Debug().Stringer("event", event).Msg("rxgo: event after termination ignored")
			return
		}
		if o.onNext != nil {
			o.onNext(event.Value)
		}
	case KindError:
		if o.stopped.Swap(true) {
			Logger().Debug().Stringer("event", event).Msg("rxgo: event after termination ignored")
			return
		}
		if o.onError != nil {
			o.onError(event.Err)
		}
	case KindCompleted:
		if o.stopped.Swap(true) {
			Logger().Debug().Stringer("event", event).Msg("rxgo: event after termination ignored")
			return
		}
		if o.onCompleted != nil {
			o.onCompleted()
		}
	}
}

// Subscribe 使用回调函数订阅
func Subscribe[T any](source Observable[T], onNext func(T), onError func(error), onCompleted func()) Disposable {
	return source.Subscribe(NewObserver(onNext, onError, onCompleted))
}
