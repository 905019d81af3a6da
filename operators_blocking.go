// Blocking operators for RxGo
// 阻塞操作符实现，包含BlockingToSlice, BlockingFirst, BlockingLast等
package rxgo

import (
	"context"
	"sync"
	"sync/atomic"
)

// ============================================================================
// 阻塞操作符实现
// ============================================================================

// blockingRun 订阅source并等待终止事件或ctx结束，返回前取消订阅
//
// onNext返回false时提前结束等待。
func blockingRun[T any](ctx context.Context, source Observable[T], onNext func(T) bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	done := make(chan error, 1)
	var stopped atomic.Bool
	finish := func(err error) {
		if !stopped.Swap(true) {
			done <- err
		}
	}

	subscription := source.Subscribe(ObserverFunc[T](func(event Event[T]) {
		if stopped.Load() {
			return
		}
		switch event.Kind {
		case KindNext:
			if !onNext(event.Value) {
				finish(nil)
			}
		case KindError:
			finish(event.Err)
		case KindCompleted:
			finish(nil)
		}
	}))
	defer subscription.Dispose()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		stopped.Store(true)
		return ctx.Err()
	}
}

// BlockingForEach 对每个值执行action，直到序列终止或ctx结束
func BlockingForEach[T any](ctx context.Context, source Observable[T], action func(T)) error {
	return blockingRun(ctx, source, func(value T) bool {
		action(value)
		return true
	})
}

// BlockingToSlice 阻塞收集所有值到切片
func BlockingToSlice[T any](ctx context.Context, source Observable[T]) ([]T, error) {
	var (
		mu    sync.Mutex
		items = make([]T, 0)
	)

	err := blockingRun(ctx, source, func(value T) bool {
		mu.Lock()
		items = append(items, value)
		mu.Unlock()
		return true
	})
	if err != nil {
		return nil, err
	}

	mu.Lock()
	defer mu.Unlock()
	return items, nil
}

// BlockingFirst 阻塞获取第一个值，序列为空时返回ErrNoElements
func BlockingFirst[T any](ctx context.Context, source Observable[T]) (T, error) {
	var (
		mu       sync.Mutex
		first    T
		hasValue bool
	)

	err := blockingRun(ctx, source, func(value T) bool {
		mu.Lock()
		first, hasValue = value, true
		mu.Unlock()
		return false
	})

	mu.Lock()
	defer mu.Unlock()
	if err != nil {
		var zero T
		return zero, err
	}
	if !hasValue {
		return first, ErrNoElements
	}
	return first, nil
}

// BlockingLast 阻塞获取最后一个值，序列为空时返回ErrNoElements
func BlockingLast[T any](ctx context.Context, source Observable[T]) (T, error) {
	var (
		mu       sync.Mutex
		last     T
		hasValue bool
	)

	err := blockingRun(ctx, source, func(value T) bool {
		mu.Lock()
		last, hasValue = value, true
		mu.Unlock()
		return true
	})

	mu.Lock()
	defer mu.Unlock()
	if err != nil {
		var zero T
		return zero, err
	}
	if !hasValue {
		return last, ErrNoElements
	}
	return last, nil
}
