package rxgo

import (
	"fmt"
)

// EventKind 事件类型
type EventKind uint8

const (
	// KindNext 下一个元素
	KindNext EventKind = iota
	// KindError 序列以错误终止
	KindError
	// KindCompleted 序列正常完成
	KindCompleted
)

func (k EventKind) String() string {
	switch k {
	case KindNext:
		return "next"
	case KindError:
		return "error"
	case KindCompleted:
		return "completed"
	default:
		return fmt.Sprintf("EventKind(%d)", uint8(k))
	}
}

// Event 表示序列中的一个事件：Next(T) | Error(err) | Completed
//
// Error或Completed送达之后，同一订阅上不会再有任何事件。
type Event[T any] struct {
	Kind  EventKind
	Value T
	Err   error
}

// NextEvent 创建包含值的事件
func NextEvent[T any](value T) Event[T] {
	return Event[T]{Kind: KindNext, Value: value}
}

// ErrorEvent 创建错误事件
func ErrorEvent[T any](err error) Event[T] {
	return Event[T]{Kind: KindError, Err: err}
}

// CompletedEvent 创建完成事件
func CompletedEvent[T any]() Event[T] {
	return Event[T]{Kind: KindCompleted}
}

// IsStopEvent 是否为终止事件（Error或Completed）
func (e Event[T]) IsStopEvent() bool {
	return e.Kind == KindError || e.Kind == KindCompleted
}

// Element 返回Next事件的值
func (e Event[T]) Element() (T, bool) {
	if e.Kind != KindNext {
		var zero T
		return zero, false
	}
	return e.Value, true
}

func (e Event[T]) String() string {
	switch e.Kind {
	case KindNext:
		return fmt.Sprintf("next(%v)", e.Value)
	case KindError:
		return fmt.Sprintf("error(%v)", e.Err)
	default:
		return e.Kind.String()
	}
}

// MapEvent 转换事件的元素类型，终止事件原样保留
func MapEvent[A, B any](event Event[A], transform func(A) B) Event[B] {
	switch event.Kind {
	case KindNext:
		return NextEvent(transform(event.Value))
	case KindError:
		return ErrorEvent[B](event.Err)
	default:
		return CompletedEvent[B]()
	}
}

// stopEvent 将终止事件转换为另一种元素类型
func stopEvent[B, A any](event Event[A]) Event[B] {
	if event.Kind == KindError {
		return ErrorEvent[B](event.Err)
	}
	return CompletedEvent[B]()
}
